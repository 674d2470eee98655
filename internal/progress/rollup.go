package progress

import "trainwise/fitness-app/internal/domain"

// Rollup summarizes the shape of a plan.
type Rollup struct {
	NumWeeks       int `json:"num_weeks"`
	TotalDays      int `json:"total_days"`
	WorkoutDays    int `json:"workout_days"`
	RestDays       int `json:"rest_days"`
	TotalSessions  int `json:"total_sessions"`
	TotalExercises int `json:"total_exercises"`
	TotalSets      int `json:"total_sets"`
}

// RollupWeeks counts every level of a plan hierarchy. Nil collections at any
// level count as empty. RestDays is always TotalDays - WorkoutDays.
func RollupWeeks(weeks []domain.WeekNode) Rollup {
	var r Rollup
	r.NumWeeks = len(weeks)
	for _, w := range weeks {
		r.TotalDays += len(w.Days)
		for _, d := range w.Days {
			if !d.IsRestDay {
				r.WorkoutDays++
			}
			r.TotalSessions += len(d.Sessions)
			for _, s := range d.Sessions {
				r.TotalExercises += len(s.Exercises)
				for _, e := range s.Exercises {
					r.TotalSets += len(e.Sets)
				}
			}
		}
	}
	r.RestDays = r.TotalDays - r.WorkoutDays
	return r
}

// CompletionPercent is done/total as a percentage in [0, 100], rounded to one
// decimal. A zero total yields 0.
func CompletionPercent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	p := float64(done) * 100 / float64(total)
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return Round1(p)
}
