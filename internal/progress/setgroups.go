package progress

import "trainwise/fitness-app/internal/domain"

// SetGroup is a run of sets displayed together.
type SetGroup struct {
	SetType domain.SetType                  `json:"set_type"`
	Sets    []domain.PlanSessionExerciseSet `json:"sets"`
}

// GroupConsecutiveSets merges each run of adjacent pyramid sets into one
// group. Every other set becomes its own group. Order and count are preserved.
func GroupConsecutiveSets(sets []domain.PlanSessionExerciseSet) []SetGroup {
	groups := make([]SetGroup, 0, len(sets))
	for _, s := range sets {
		if n := len(groups); n > 0 && s.SetType == domain.SetTypePyramid && groups[n-1].SetType == domain.SetTypePyramid {
			groups[n-1].Sets = append(groups[n-1].Sets, s)
			continue
		}
		groups = append(groups, SetGroup{
			SetType: s.SetType,
			Sets:    []domain.PlanSessionExerciseSet{s},
		})
	}
	return groups
}
