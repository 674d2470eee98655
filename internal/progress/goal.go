package progress

import (
	"math"
	"strconv"

	"trainwise/fitness-app/internal/domain"
)

type Status string

const (
	StatusGood Status = "good"
	StatusBad  Status = "bad"
)

// Round1 rounds to one decimal place, halves away from zero.
func Round1(v float64) float64 {
	r := math.Round(v*10) / 10
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

// FormatNumber renders v rounded to one decimal, without a trailing ".0".
func FormatNumber(v float64) string {
	return strconv.FormatFloat(Round1(v), 'f', -1, 64)
}

// Classify compares current against baseline. For an increase goal a
// non-negative delta is good; for a decrease goal a non-positive one is.
func Classify(direction domain.GoalDirection, baseline, current float64) (delta float64, status Status) {
	delta = current - baseline
	switch direction {
	case domain.DirectionIncrease:
		if delta >= 0 {
			return delta, StatusGood
		}
	case domain.DirectionDecrease:
		if delta <= 0 {
			return delta, StatusGood
		}
	}
	return delta, StatusBad
}

// Label describes a target: "to 80", "by 10%" or "by 5".
func Label(targetType domain.GoalTargetType, targetValue float64) string {
	switch targetType {
	case domain.TargetAbsoluteValue:
		return "to " + FormatNumber(targetValue)
	case domain.TargetPercentChange:
		return "by " + FormatNumber(targetValue) + "%"
	case domain.TargetAbsoluteChange:
		return "by " + FormatNumber(targetValue)
	default:
		return ""
	}
}

// GoalProgress is the evaluation of one goal for one user.
type GoalProgress struct {
	Baseline      float64  `json:"baseline_value"`
	Current       float64  `json:"current_value"`
	Delta         float64  `json:"delta"`
	PercentChange *float64 `json:"percent_change"` // nil when the baseline is 0
	Status        Status   `json:"status"`
	Label         string   `json:"label"`
	TargetReached bool     `json:"target_reached"`
}

// Evaluate classifies progress from baseline to current and checks the
// goal's target. Comparisons use the rounded values that are displayed.
func Evaluate(goal domain.PlanGoal, baseline, current float64) GoalProgress {
	delta, status := Classify(goal.Direction, baseline, current)
	out := GoalProgress{
		Baseline: baseline,
		Current:  current,
		Delta:    Round1(delta),
		Status:   status,
		Label:    Label(goal.TargetType, goal.TargetValue),
	}

	var pct float64
	if baseline != 0 {
		pct = Round1(delta * 100 / math.Abs(baseline))
		out.PercentChange = &pct
	}

	target := math.Abs(goal.TargetValue)
	// gain is the movement in the goal's direction; negative means regress
	gain := out.Delta
	if goal.Direction == domain.DirectionDecrease {
		gain = -gain
	}

	switch goal.TargetType {
	case domain.TargetAbsoluteValue:
		if goal.Direction == domain.DirectionDecrease {
			out.TargetReached = current <= goal.TargetValue
		} else {
			out.TargetReached = current >= goal.TargetValue
		}
	case domain.TargetAbsoluteChange:
		out.TargetReached = gain >= target
	case domain.TargetPercentChange:
		if out.PercentChange != nil {
			pctGain := pct
			if goal.Direction == domain.DirectionDecrease {
				pctGain = -pctGain
			}
			out.TargetReached = pctGain >= target
		}
	}
	return out
}
