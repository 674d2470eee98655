package service

import (
	"context"
	"slices"
	"sort"
	"strings"
	"time"
	"trainwise/fitness-app/internal/domain"
	"trainwise/fitness-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory repositories. They mirror the conditional-write semantics of the
// Mongo implementations: owner mismatches report repository.ErrNoRowsAffected.

type fakeProfileRepo struct {
	profiles map[primitive.ObjectID]*domain.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: map[primitive.ObjectID]*domain.Profile{}}
}

func (r *fakeProfileRepo) Create(_ context.Context, p *domain.Profile) (primitive.ObjectID, error) {
	for _, existing := range r.profiles {
		if strings.EqualFold(existing.Email, p.Email) {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	p.ID = primitive.NewObjectID()
	p.Email = strings.ToLower(p.Email)
	cp := *p
	r.profiles[p.ID] = &cp
	return p.ID, nil
}

func (r *fakeProfileRepo) GetByEmail(_ context.Context, email string) (*domain.Profile, error) {
	for _, p := range r.profiles {
		if strings.EqualFold(p.Email, email) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *fakeProfileRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

// fakeExerciseRepo records the order of inserts so multi-step creates can be checked.
type fakeExerciseRepo struct {
	exercises  map[primitive.ObjectID]*domain.Exercise
	categories []domain.ExerciseCategory
	types      []domain.ExerciseType
	muscles    []domain.ExerciseMuscle

	inserts     []string
	lastFilter  repository.ExerciseFilter
	failAddType error
	failDelete  error
}

func newFakeExerciseRepo() *fakeExerciseRepo {
	return &fakeExerciseRepo{exercises: map[primitive.ObjectID]*domain.Exercise{}}
}

func (r *fakeExerciseRepo) Create(_ context.Context, e *domain.Exercise) (primitive.ObjectID, error) {
	e.ID = primitive.NewObjectID()
	e.CreatedAt = time.Now().UTC()
	cp := *e
	r.exercises[e.ID] = &cp
	r.inserts = append(r.inserts, "exercises")
	return e.ID, nil
}

func (r *fakeExerciseRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	e, ok := r.exercises[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (r *fakeExerciseRepo) List(_ context.Context, filter repository.ExerciseFilter) ([]domain.Exercise, error) {
	r.lastFilter = filter
	out := []domain.Exercise{}
	for _, e := range r.exercises {
		if filter.CreatedBy != nil && e.CreatedBy != *filter.CreatedBy {
			continue
		}
		out = append(out, *e)
	}
	return out, nil
}

func (r *fakeExerciseRepo) UpdateOwned(_ context.Context, id, ownerID primitive.ObjectID, fields repository.Fields) error {
	e, ok := r.exercises[id]
	if !ok || e.CreatedBy != ownerID {
		return repository.ErrNoRowsAffected
	}
	for k, v := range fields {
		switch k {
		case "name":
			e.Name = v.(string)
		case "description":
			e.Description = v.(string)
		case "instructions":
			e.Instructions = v.(string)
		case "difficulty":
			e.Difficulty = v.(int)
		case "environment":
			e.Environment = v.(string)
		case "image_path":
			e.ImagePath = v.(string)
		}
	}
	return nil
}

func (r *fakeExerciseRepo) DeleteOwned(_ context.Context, id, ownerID primitive.ObjectID) error {
	e, ok := r.exercises[id]
	if !ok || e.CreatedBy != ownerID {
		return repository.ErrNoRowsAffected
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	if r.failDelete != nil {
		return r.failDelete
	}
	delete(r.exercises, id)
	return nil
}

func (r *fakeExerciseRepo) AddCategory(_ context.Context, link *domain.ExerciseCategory) (primitive.ObjectID, error) {
	link.ID = primitive.NewObjectID()
	r.categories = append(r.categories, *link)
	r.inserts = append(r.inserts, "exercise_to_category")
	return link.ID, nil
}

func (r *fakeExerciseRepo) AddType(_ context.Context, link *domain.ExerciseType) (primitive.ObjectID, error) {
	if r.failAddType != nil {
		return primitive.NilObjectID, r.failAddType
	}
	link.ID = primitive.NewObjectID()
	r.types = append(r.types, *link)
	r.inserts = append(r.inserts, "exercise_to_type")
	return link.ID, nil
}

func (r *fakeExerciseRepo) AddMuscle(_ context.Context, link *domain.ExerciseMuscle) (primitive.ObjectID, error) {
	link.ID = primitive.NewObjectID()
	r.muscles = append(r.muscles, *link)
	r.inserts = append(r.inserts, "exercise_muscle")
	return link.ID, nil
}

func (r *fakeExerciseRepo) ListCategories(_ context.Context, ids []primitive.ObjectID) ([]domain.ExerciseCategory, error) {
	out := []domain.ExerciseCategory{}
	for _, c := range r.categories {
		if slices.Contains(ids, c.ExerciseID) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) ListTypes(_ context.Context, ids []primitive.ObjectID) ([]domain.ExerciseType, error) {
	out := []domain.ExerciseType{}
	for _, t := range r.types {
		if slices.Contains(ids, t.ExerciseID) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) ListMuscles(_ context.Context, ids []primitive.ObjectID) ([]domain.ExerciseMuscle, error) {
	out := []domain.ExerciseMuscle{}
	for _, m := range r.muscles {
		if slices.Contains(ids, m.ExerciseID) {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeExerciseRepo) DeleteRelations(_ context.Context, exerciseID primitive.ObjectID) error {
	r.categories = slices.DeleteFunc(r.categories, func(c domain.ExerciseCategory) bool { return c.ExerciseID == exerciseID })
	r.types = slices.DeleteFunc(r.types, func(t domain.ExerciseType) bool { return t.ExerciseID == exerciseID })
	r.muscles = slices.DeleteFunc(r.muscles, func(m domain.ExerciseMuscle) bool { return m.ExerciseID == exerciseID })
	return nil
}

type fakeReferenceRepo struct {
	refs map[primitive.ObjectID]*domain.ExerciseReference
}

func newFakeReferenceRepo() *fakeReferenceRepo {
	return &fakeReferenceRepo{refs: map[primitive.ObjectID]*domain.ExerciseReference{}}
}

func (r *fakeReferenceRepo) Create(_ context.Context, ref *domain.ExerciseReference) (primitive.ObjectID, error) {
	ref.ID = primitive.NewObjectID()
	cp := *ref
	r.refs[ref.ID] = &cp
	return ref.ID, nil
}

func (r *fakeReferenceRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.ExerciseReference, error) {
	ref, ok := r.refs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *ref
	return &cp, nil
}

func (r *fakeReferenceRepo) ListByExercise(_ context.Context, exerciseID primitive.ObjectID) ([]domain.ExerciseReference, error) {
	out := []domain.ExerciseReference{}
	for _, ref := range r.refs {
		if ref.ExerciseID == exerciseID {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (r *fakeReferenceRepo) ListByUser(_ context.Context, userID primitive.ObjectID) ([]domain.ExerciseReference, error) {
	out := []domain.ExerciseReference{}
	for _, ref := range r.refs {
		if ref.UserID == userID {
			out = append(out, *ref)
		}
	}
	return out, nil
}

func (r *fakeReferenceRepo) UpdateOwned(_ context.Context, id, userID primitive.ObjectID, fields repository.Fields) error {
	ref, ok := r.refs[id]
	if !ok || ref.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	if v, ok := fields["url"]; ok {
		ref.URL = v.(string)
	}
	if v, ok := fields["title"]; ok {
		ref.Title = v.(string)
	}
	return nil
}

func (r *fakeReferenceRepo) DeleteOwned(_ context.Context, id, userID primitive.ObjectID) error {
	ref, ok := r.refs[id]
	if !ok || ref.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	delete(r.refs, id)
	return nil
}

type fakePlanRepo struct {
	plans      map[primitive.ObjectID]*domain.Plan
	lastFilter repository.PlanFilter
}

func newFakePlanRepo() *fakePlanRepo {
	return &fakePlanRepo{plans: map[primitive.ObjectID]*domain.Plan{}}
}

func (r *fakePlanRepo) Create(_ context.Context, p *domain.Plan) (primitive.ObjectID, error) {
	p.ID = primitive.NewObjectID()
	cp := *p
	r.plans[p.ID] = &cp
	return p.ID, nil
}

func (r *fakePlanRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Plan, error) {
	p, ok := r.plans[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakePlanRepo) List(_ context.Context, filter repository.PlanFilter) ([]domain.Plan, error) {
	r.lastFilter = filter
	out := []domain.Plan{}
	for _, p := range r.plans {
		if filter.OnlyMine && p.CreatedBy != filter.ViewerID {
			continue
		}
		if p.IsPrivate && p.CreatedBy != filter.ViewerID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakePlanRepo) UpdateOwned(_ context.Context, id, ownerID primitive.ObjectID, fields repository.Fields) error {
	p, ok := r.plans[id]
	if !ok || p.CreatedBy != ownerID {
		return repository.ErrNoRowsAffected
	}
	for k, v := range fields {
		switch k {
		case "title":
			p.Title = v.(string)
		case "description":
			p.Description = v.(string)
		case "difficulty":
			p.Difficulty = v.(int)
		case "sport":
			p.Sport = v.(string)
		case "is_private":
			p.IsPrivate = v.(bool)
		}
	}
	return nil
}

func (r *fakePlanRepo) DeleteOwned(_ context.Context, id, ownerID primitive.ObjectID) error {
	p, ok := r.plans[id]
	if !ok || p.CreatedBy != ownerID {
		return repository.ErrNoRowsAffected
	}
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	delete(r.plans, id)
	return nil
}

func (r *fakePlanRepo) IncrementCounter(_ context.Context, id primitive.ObjectID, counter string) error {
	p, ok := r.plans[id]
	if !ok {
		return repository.ErrNotFound
	}
	switch counter {
	case repository.CounterForks:
		p.ForkCount++
	case repository.CounterLikes:
		p.LikeCount++
	case repository.CounterViews:
		p.ViewCount++
	}
	return nil
}

// fakeHierarchyRepo keeps every level in insertion order.
type fakeHierarchyRepo struct {
	weeks     []domain.PlanWeek
	days      []domain.PlanDay
	sessions  []domain.PlanSession
	exercises []domain.PlanSessionExercise
	sets      []domain.PlanSessionExerciseSet

	failCreateSet error
}

func (r *fakeHierarchyRepo) CreateWeek(_ context.Context, w *domain.PlanWeek) (primitive.ObjectID, error) {
	w.ID = primitive.NewObjectID()
	r.weeks = append(r.weeks, *w)
	return w.ID, nil
}

func (r *fakeHierarchyRepo) CreateDay(_ context.Context, d *domain.PlanDay) (primitive.ObjectID, error) {
	d.ID = primitive.NewObjectID()
	r.days = append(r.days, *d)
	return d.ID, nil
}

func (r *fakeHierarchyRepo) CreateSession(_ context.Context, s *domain.PlanSession) (primitive.ObjectID, error) {
	s.ID = primitive.NewObjectID()
	r.sessions = append(r.sessions, *s)
	return s.ID, nil
}

func (r *fakeHierarchyRepo) CreateSessionExercise(_ context.Context, e *domain.PlanSessionExercise) (primitive.ObjectID, error) {
	e.ID = primitive.NewObjectID()
	r.exercises = append(r.exercises, *e)
	return e.ID, nil
}

func (r *fakeHierarchyRepo) CreateSet(_ context.Context, s *domain.PlanSessionExerciseSet) (primitive.ObjectID, error) {
	if r.failCreateSet != nil {
		return primitive.NilObjectID, r.failCreateSet
	}
	s.ID = primitive.NewObjectID()
	r.sets = append(r.sets, *s)
	return s.ID, nil
}

func (r *fakeHierarchyRepo) PlanIDOf(_ context.Context, level repository.Level, id primitive.ObjectID) (primitive.ObjectID, error) {
	switch level {
	case repository.LevelWeek:
		for _, w := range r.weeks {
			if w.ID == id {
				return w.PlanID, nil
			}
		}
	case repository.LevelDay:
		for _, d := range r.days {
			if d.ID == id {
				return d.PlanID, nil
			}
		}
	case repository.LevelSession:
		for _, s := range r.sessions {
			if s.ID == id {
				return s.PlanID, nil
			}
		}
	case repository.LevelExercise:
		for _, e := range r.exercises {
			if e.ID == id {
				return e.PlanID, nil
			}
		}
	case repository.LevelSet:
		for _, s := range r.sets {
			if s.ID == id {
				return s.PlanID, nil
			}
		}
	}
	return primitive.NilObjectID, repository.ErrNotFound
}

func (r *fakeHierarchyRepo) Update(ctx context.Context, level repository.Level, id primitive.ObjectID, fields repository.Fields) error {
	if _, err := r.PlanIDOf(ctx, level, id); err != nil {
		return err
	}
	if level == repository.LevelWeek {
		for i := range r.weeks {
			if r.weeks[i].ID == id {
				if v, ok := fields["week_number"]; ok {
					r.weeks[i].WeekNumber = v.(int)
				}
				if v, ok := fields["description"]; ok {
					r.weeks[i].Description = v.(string)
				}
			}
		}
	}
	return nil
}

// Delete cascades through the levels below id.
func (r *fakeHierarchyRepo) Delete(ctx context.Context, level repository.Level, id primitive.ObjectID) error {
	if _, err := r.PlanIDOf(ctx, level, id); err != nil {
		return err
	}
	r.deleteCascade(level, []primitive.ObjectID{id})
	return nil
}

func (r *fakeHierarchyRepo) deleteCascade(level repository.Level, ids []primitive.ObjectID) {
	var children []primitive.ObjectID
	switch level {
	case repository.LevelWeek:
		r.weeks = slices.DeleteFunc(r.weeks, func(w domain.PlanWeek) bool { return slices.Contains(ids, w.ID) })
		for _, d := range r.days {
			if slices.Contains(ids, d.PlanWeekID) {
				children = append(children, d.ID)
			}
		}
		if len(children) > 0 {
			r.deleteCascade(repository.LevelDay, children)
		}
	case repository.LevelDay:
		r.days = slices.DeleteFunc(r.days, func(d domain.PlanDay) bool { return slices.Contains(ids, d.ID) })
		for _, s := range r.sessions {
			if slices.Contains(ids, s.PlanDayID) {
				children = append(children, s.ID)
			}
		}
		if len(children) > 0 {
			r.deleteCascade(repository.LevelSession, children)
		}
	case repository.LevelSession:
		r.sessions = slices.DeleteFunc(r.sessions, func(s domain.PlanSession) bool { return slices.Contains(ids, s.ID) })
		for _, e := range r.exercises {
			if slices.Contains(ids, e.PlanSessionID) {
				children = append(children, e.ID)
			}
		}
		if len(children) > 0 {
			r.deleteCascade(repository.LevelExercise, children)
		}
	case repository.LevelExercise:
		r.exercises = slices.DeleteFunc(r.exercises, func(e domain.PlanSessionExercise) bool { return slices.Contains(ids, e.ID) })
		r.sets = slices.DeleteFunc(r.sets, func(s domain.PlanSessionExerciseSet) bool {
			return slices.Contains(ids, s.PlanSessionExerciseID)
		})
	case repository.LevelSet:
		r.sets = slices.DeleteFunc(r.sets, func(s domain.PlanSessionExerciseSet) bool { return slices.Contains(ids, s.ID) })
	}
}

func (r *fakeHierarchyRepo) DeleteByPlan(_ context.Context, planID primitive.ObjectID) error {
	r.weeks = slices.DeleteFunc(r.weeks, func(w domain.PlanWeek) bool { return w.PlanID == planID })
	r.days = slices.DeleteFunc(r.days, func(d domain.PlanDay) bool { return d.PlanID == planID })
	r.sessions = slices.DeleteFunc(r.sessions, func(s domain.PlanSession) bool { return s.PlanID == planID })
	r.exercises = slices.DeleteFunc(r.exercises, func(e domain.PlanSessionExercise) bool { return e.PlanID == planID })
	r.sets = slices.DeleteFunc(r.sets, func(s domain.PlanSessionExerciseSet) bool { return s.PlanID == planID })
	return nil
}

func filterByPlan[T any](rows []T, planID primitive.ObjectID, planOf func(T) primitive.ObjectID) []T {
	out := []T{}
	for _, row := range rows {
		if planOf(row) == planID {
			out = append(out, row)
		}
	}
	return out
}

func (r *fakeHierarchyRepo) ListWeeks(_ context.Context, planID primitive.ObjectID) ([]domain.PlanWeek, error) {
	out := filterByPlan(r.weeks, planID, func(w domain.PlanWeek) primitive.ObjectID { return w.PlanID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

func (r *fakeHierarchyRepo) ListDays(_ context.Context, planID primitive.ObjectID) ([]domain.PlanDay, error) {
	out := filterByPlan(r.days, planID, func(d domain.PlanDay) primitive.ObjectID { return d.PlanID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].DayNumber < out[j].DayNumber })
	return out, nil
}

func (r *fakeHierarchyRepo) ListSessions(_ context.Context, planID primitive.ObjectID) ([]domain.PlanSession, error) {
	out := filterByPlan(r.sessions, planID, func(s domain.PlanSession) primitive.ObjectID { return s.PlanID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeHierarchyRepo) ListSessionExercises(_ context.Context, planID primitive.ObjectID) ([]domain.PlanSessionExercise, error) {
	out := filterByPlan(r.exercises, planID, func(e domain.PlanSessionExercise) primitive.ObjectID { return e.PlanID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].OrderIndex < out[j].OrderIndex })
	return out, nil
}

func (r *fakeHierarchyRepo) ListSets(_ context.Context, planID primitive.ObjectID) ([]domain.PlanSessionExerciseSet, error) {
	out := filterByPlan(r.sets, planID, func(s domain.PlanSessionExerciseSet) primitive.ObjectID { return s.PlanID })
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (r *fakeHierarchyRepo) ListSetsForEntry(_ context.Context, entryID primitive.ObjectID) ([]domain.PlanSessionExerciseSet, error) {
	out := []domain.PlanSessionExerciseSet{}
	for _, s := range r.sets {
		if s.PlanSessionExerciseID == entryID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

// fakeSessionLogRepo counts write calls so tests can assert that a rejected
// conditional write left the row untouched.
type fakeSessionLogRepo struct {
	logs         map[primitive.ObjectID]*domain.SessionLog
	sets         map[primitive.ObjectID]*domain.SetLog
	updateCalls  int
	lastListPage repository.Page
}

func newFakeSessionLogRepo() *fakeSessionLogRepo {
	return &fakeSessionLogRepo{
		logs: map[primitive.ObjectID]*domain.SessionLog{},
		sets: map[primitive.ObjectID]*domain.SetLog{},
	}
}

func (r *fakeSessionLogRepo) Create(_ context.Context, l *domain.SessionLog) (primitive.ObjectID, error) {
	l.ID = primitive.NewObjectID()
	cp := *l
	r.logs[l.ID] = &cp
	return l.ID, nil
}

func (r *fakeSessionLogRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.SessionLog, error) {
	l, ok := r.logs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeSessionLogRepo) ListByUser(_ context.Context, userID primitive.ObjectID, page repository.Page) ([]domain.SessionLog, error) {
	r.lastListPage = page
	out := []domain.SessionLog{}
	for _, l := range r.logs {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *fakeSessionLogRepo) UpdateOwned(_ context.Context, id, userID primitive.ObjectID, fields repository.Fields) error {
	r.updateCalls++
	l, ok := r.logs[id]
	if !ok || l.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	if v, ok := fields["title"]; ok {
		l.Title = v.(string)
	}
	if v, ok := fields["notes"]; ok {
		l.Notes = v.(string)
	}
	if v, ok := fields["completed_at"]; ok {
		t := v.(time.Time)
		l.CompletedAt = &t
	}
	return nil
}

func (r *fakeSessionLogRepo) DeleteOwned(_ context.Context, id, userID primitive.ObjectID) error {
	l, ok := r.logs[id]
	if !ok || l.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	delete(r.logs, id)
	return nil
}

func (r *fakeSessionLogRepo) CountCompletedSessions(_ context.Context, userID, planID primitive.ObjectID) (int, error) {
	seen := map[primitive.ObjectID]bool{}
	for _, l := range r.logs {
		if l.UserID != userID || l.PlanID == nil || *l.PlanID != planID || l.PlanSessionID == nil || l.CompletedAt == nil {
			continue
		}
		seen[*l.PlanSessionID] = true
	}
	return len(seen), nil
}

func (r *fakeSessionLogRepo) CreateSet(_ context.Context, s *domain.SetLog) (primitive.ObjectID, error) {
	s.ID = primitive.NewObjectID()
	cp := *s
	r.sets[s.ID] = &cp
	return s.ID, nil
}

func (r *fakeSessionLogRepo) ListSets(_ context.Context, sessionLogID primitive.ObjectID) ([]domain.SetLog, error) {
	out := []domain.SetLog{}
	for _, s := range r.sets {
		if s.SessionLogID == sessionLogID {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SetNumber < out[j].SetNumber })
	return out, nil
}

func (r *fakeSessionLogRepo) DeleteSetOwned(_ context.Context, id, userID primitive.ObjectID) error {
	s, ok := r.sets[id]
	if !ok || s.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	delete(r.sets, id)
	return nil
}

func (r *fakeSessionLogRepo) DeleteSetsBySession(_ context.Context, sessionLogID primitive.ObjectID) error {
	for id, s := range r.sets {
		if s.SessionLogID == sessionLogID {
			delete(r.sets, id)
		}
	}
	return nil
}

type fakeGoalRepo struct {
	goals     map[primitive.ObjectID]*domain.PlanGoal
	baselines map[[2]primitive.ObjectID]*domain.UserBaseline
}

func newFakeGoalRepo() *fakeGoalRepo {
	return &fakeGoalRepo{
		goals:     map[primitive.ObjectID]*domain.PlanGoal{},
		baselines: map[[2]primitive.ObjectID]*domain.UserBaseline{},
	}
}

func (r *fakeGoalRepo) Create(_ context.Context, g *domain.PlanGoal) (primitive.ObjectID, error) {
	g.ID = primitive.NewObjectID()
	cp := *g
	r.goals[g.ID] = &cp
	return g.ID, nil
}

func (r *fakeGoalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.PlanGoal, error) {
	g, ok := r.goals[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (r *fakeGoalRepo) ListByPlan(_ context.Context, planID primitive.ObjectID) ([]domain.PlanGoal, error) {
	out := []domain.PlanGoal{}
	for _, g := range r.goals {
		if g.PlanID == planID {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGoalRepo) UpdateOwned(_ context.Context, id, ownerID primitive.ObjectID, fields repository.Fields) error {
	g, ok := r.goals[id]
	if !ok || g.CreatedBy != ownerID {
		return repository.ErrNoRowsAffected
	}
	if v, ok := fields["target_value"]; ok {
		g.TargetValue = v.(float64)
	}
	if v, ok := fields["metric"]; ok {
		g.Metric = v.(string)
	}
	return nil
}

func (r *fakeGoalRepo) DeleteOwned(_ context.Context, id, ownerID primitive.ObjectID) error {
	g, ok := r.goals[id]
	if !ok || g.CreatedBy != ownerID {
		return repository.ErrNoRowsAffected
	}
	delete(r.goals, id)
	return nil
}

func (r *fakeGoalRepo) DeleteByPlan(_ context.Context, planID primitive.ObjectID) error {
	for id, g := range r.goals {
		if g.PlanID == planID {
			delete(r.goals, id)
		}
	}
	return nil
}

func (r *fakeGoalRepo) UpsertBaseline(_ context.Context, b *domain.UserBaseline) error {
	key := [2]primitive.ObjectID{b.UserID, b.GoalID}
	if existing, ok := r.baselines[key]; ok {
		b.ID = existing.ID
	} else {
		b.ID = primitive.NewObjectID()
	}
	cp := *b
	r.baselines[key] = &cp
	return nil
}

func (r *fakeGoalRepo) GetBaseline(_ context.Context, userID, goalID primitive.ObjectID) (*domain.UserBaseline, error) {
	b, ok := r.baselines[[2]primitive.ObjectID{userID, goalID}]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

type fakeMeasurementRepo struct {
	items map[primitive.ObjectID]*domain.UserMeasurement
}

func newFakeMeasurementRepo() *fakeMeasurementRepo {
	return &fakeMeasurementRepo{items: map[primitive.ObjectID]*domain.UserMeasurement{}}
}

func (r *fakeMeasurementRepo) Create(_ context.Context, m *domain.UserMeasurement) (primitive.ObjectID, error) {
	for _, existing := range r.items {
		if existing.UserID == m.UserID && existing.Date == m.Date {
			return primitive.NilObjectID, repository.ErrDuplicate
		}
	}
	m.ID = primitive.NewObjectID()
	cp := *m
	r.items[m.ID] = &cp
	return m.ID, nil
}

func (r *fakeMeasurementRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.UserMeasurement, error) {
	m, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *fakeMeasurementRepo) ListByUser(_ context.Context, userID primitive.ObjectID, _ repository.Page) ([]domain.UserMeasurement, error) {
	out := []domain.UserMeasurement{}
	for _, m := range r.items {
		if m.UserID == userID {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out, nil
}

func (r *fakeMeasurementRepo) DeleteOwned(_ context.Context, id, userID primitive.ObjectID) error {
	m, ok := r.items[id]
	if !ok || m.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	delete(r.items, id)
	return nil
}

func (r *fakeMeasurementRepo) AddPhoto(_ context.Context, id, userID primitive.ObjectID, key string) error {
	m, ok := r.items[id]
	if !ok || m.UserID != userID {
		return repository.ErrNoRowsAffected
	}
	if !slices.Contains(m.PhotoPaths, key) {
		m.PhotoPaths = append(m.PhotoPaths, key)
	}
	return nil
}

type fakeTeamRepo struct {
	teams       map[primitive.ObjectID]*domain.Team
	invitations map[primitive.ObjectID]*domain.TeamInvitation
}

func newFakeTeamRepo() *fakeTeamRepo {
	return &fakeTeamRepo{
		teams:       map[primitive.ObjectID]*domain.Team{},
		invitations: map[primitive.ObjectID]*domain.TeamInvitation{},
	}
}

func (r *fakeTeamRepo) Create(_ context.Context, t *domain.Team) (primitive.ObjectID, error) {
	t.ID = primitive.NewObjectID()
	if !slices.Contains(t.MemberIDs, t.CreatedBy) {
		t.MemberIDs = append(t.MemberIDs, t.CreatedBy)
	}
	cp := *t
	cp.MemberIDs = slices.Clone(t.MemberIDs)
	r.teams[t.ID] = &cp
	return t.ID, nil
}

func (r *fakeTeamRepo) GetByID(_ context.Context, id primitive.ObjectID) (*domain.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	cp.MemberIDs = slices.Clone(t.MemberIDs)
	return &cp, nil
}

func (r *fakeTeamRepo) ListByMember(_ context.Context, userID primitive.ObjectID) ([]domain.Team, error) {
	out := []domain.Team{}
	for _, t := range r.teams {
		if slices.Contains(t.MemberIDs, userID) {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) AddMember(_ context.Context, teamID, userID primitive.ObjectID) error {
	t, ok := r.teams[teamID]
	if !ok {
		return repository.ErrNotFound
	}
	if !slices.Contains(t.MemberIDs, userID) {
		t.MemberIDs = append(t.MemberIDs, userID)
	}
	return nil
}

func (r *fakeTeamRepo) CreateInvitation(_ context.Context, inv *domain.TeamInvitation) (primitive.ObjectID, error) {
	inv.ID = primitive.NewObjectID()
	cp := *inv
	r.invitations[inv.ID] = &cp
	return inv.ID, nil
}

func (r *fakeTeamRepo) GetInvitation(_ context.Context, id primitive.ObjectID) (*domain.TeamInvitation, error) {
	inv, ok := r.invitations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (r *fakeTeamRepo) ListInvitations(_ context.Context, teamID primitive.ObjectID) ([]domain.TeamInvitation, error) {
	out := []domain.TeamInvitation{}
	for _, inv := range r.invitations {
		if inv.TeamID == teamID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *fakeTeamRepo) RespondToInvitation(_ context.Context, id primitive.ObjectID, email string, status domain.InvitationStatus) error {
	inv, ok := r.invitations[id]
	if !ok || !strings.EqualFold(inv.Email, email) || inv.Status != domain.InvitationPending {
		return repository.ErrNoRowsAffected
	}
	inv.Status = status
	return nil
}

// fakeStorage resolves keys against a fixed CDN host and records deletes.
type fakeStorage struct {
	deleted []string
}

func (s *fakeStorage) GeneratePresignedUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://upload.example.com/" + key + "?sig=1", nil
}

func (s *fakeStorage) GeneratePresignedDownloadURL(_ context.Context, key string, _ time.Duration) (string, error) {
	return "https://download.example.com/" + key + "?sig=1", nil
}

func (s *fakeStorage) PublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

func (s *fakeStorage) DeleteObject(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}
