package cache

import (
	"fmt"
	"net/url"
	"reflect"
)

// Family groups cache entries that one kind of mutation makes stale.
type Family string

const (
	FamilyExercises          Family = "exercises"
	FamilyExerciseReferences Family = "exercise_references"
	FamilyPlans              Family = "plans"
	FamilyPlanHierarchy      Family = "plan_hierarchy"
	FamilySessionLogs        Family = "session_logs"
	FamilyGoals              Family = "goals"
	FamilyMeasurements       Family = "measurements"
	FamilyTeams              Family = "teams"
	FamilyInvitations        Family = "invitations"
)

// DefaultInvalidations maps a mutated family to every family whose entries
// may now be stale. Plan summaries live under plans and depend on both the
// hierarchy and the session logs.
var DefaultInvalidations = map[Family][]Family{
	FamilyExercises:          {FamilyExercises},
	FamilyExerciseReferences: {FamilyExerciseReferences},
	FamilyPlans:              {FamilyPlans, FamilyPlanHierarchy, FamilyGoals},
	FamilyPlanHierarchy:      {FamilyPlanHierarchy, FamilyPlans},
	FamilySessionLogs:        {FamilySessionLogs, FamilyPlans},
	FamilyGoals:              {FamilyGoals},
	FamilyMeasurements:       {FamilyMeasurements, FamilyGoals},
	FamilyTeams:              {FamilyTeams, FamilyInvitations, FamilyPlans},
	FamilyInvitations:        {FamilyInvitations, FamilyTeams},
}

// Key identifies one cached query result.
type Key struct {
	Family   Family
	Resource string
	Params   map[string]any
}

func NewKey(family Family, resource string, params map[string]any) Key {
	return Key{Family: family, Resource: resource, Params: params}
}

// String renders family:resource:params with params sorted by name, so two
// keys built from equal maps are always equal. Slice params add one value per
// element.
func (k Key) String() string {
	values := url.Values{}
	for name, v := range k.Params {
		if strs := paramStrings(v); len(strs) > 0 {
			values[name] = strs
		}
	}
	return familyPrefix(k.Family) + k.Resource + ":" + values.Encode()
}

func familyPrefix(f Family) string {
	return string(f) + ":"
}

func paramStrings(v any) []string {
	v, ok := deref(v)
	if !ok {
		return nil
	}
	if _, isID := v.(interface{ Hex() string }); !isID {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			out := make([]string, 0, rv.Len())
			for i := 0; i < rv.Len(); i++ {
				if str, ok := paramString(rv.Index(i).Interface()); ok {
					out = append(out, str)
				}
			}
			return out
		}
	}
	str, _ := paramString(v)
	return []string{str}
}

// paramString prints pointer params by value so *int(3) and 3 build the
// same key. Nil pointers are skipped. Object ids print as bare hex.
func paramString(v any) (string, bool) {
	v, ok := deref(v)
	if !ok {
		return "", false
	}
	if h, ok := v.(interface{ Hex() string }); ok {
		return h.Hex(), true
	}
	return fmt.Sprint(v), true
}

func deref(v any) (any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		return rv.Elem().Interface(), true
	}
	return v, true
}
