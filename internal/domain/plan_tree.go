package domain

// The *Node types are the nested view of a plan returned by a hierarchy fetch.
// Nil child slices mean the level was not loaded or is empty; consumers treat
// both the same way.

type PlanHierarchy struct {
	Plan  Plan       `json:"plan"`
	Weeks []WeekNode `json:"plan_weeks"`
}

type WeekNode struct {
	PlanWeek
	Days []DayNode `json:"plan_days"`
}

type DayNode struct {
	PlanDay
	Sessions []SessionNode `json:"plan_sessions"`
}

type SessionNode struct {
	PlanSession
	Exercises []SessionExerciseNode `json:"plan_session_exercises"`
}

type SessionExerciseNode struct {
	PlanSessionExercise
	Sets []PlanSessionExerciseSet `json:"plan_session_exercise_sets"`
}
