package services

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildScopeFilterGlobal(t *testing.T) {
	filter, err := BuildScopeFilter(ScopeGlobal, ScopeParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if filter != nil {
		t.Errorf("global scope should produce a nil filter, got %+v", filter)
	}
	// A nil filter renders to no predicate for either backend.
	if filter.MongoFilter() != nil {
		t.Error("nil filter should render nil Mongo predicate")
	}
	if filter.QdrantFilter() != nil {
		t.Error("nil filter should render nil Qdrant predicate")
	}
}

func TestBuildScopeFilterRequiresArgument(t *testing.T) {
	cases := []Scope{ScopePerson, ScopeDepartment, ScopeWork, ScopeProject}
	for _, scope := range cases {
		if _, err := BuildScopeFilter(scope, ScopeParams{}); !errors.Is(err, ErrInvalidScopeParameters) {
			t.Errorf("scope %q with empty params: got %v, want ErrInvalidScopeParameters", scope, err)
		}
	}
}

func TestBuildScopeFilterUnknownScope(t *testing.T) {
	if _, err := BuildScopeFilter(Scope("team"), ScopeParams{PersonID: "p1"}); !errors.Is(err, ErrInvalidScopeParameters) {
		t.Errorf("unknown scope: got %v, want ErrInvalidScopeParameters", err)
	}
}

func TestScopeFilterMongoRendering(t *testing.T) {
	cases := []struct {
		scope  Scope
		params ScopeParams
		want   bson.M
	}{
		{ScopePerson, ScopeParams{PersonID: "p7"}, bson.M{"person_ids": "p7"}},
		{ScopeDepartment, ScopeParams{DeptName: "sales"}, bson.M{"dept_name": "sales"}},
		{ScopeWork, ScopeParams{WorkID: "n42"}, bson.M{"note_id": "n42"}},
		{ScopeProject, ScopeParams{ProjectID: "proj-1"}, bson.M{"project_id": "proj-1"}},
	}
	for _, tc := range cases {
		filter, err := BuildScopeFilter(tc.scope, tc.params)
		if err != nil {
			t.Fatalf("scope %q: %v", tc.scope, err)
		}
		got := filter.MongoFilter()
		if len(got) != 1 {
			t.Fatalf("scope %q: expected one clause, got %v", tc.scope, got)
		}
		for k, v := range tc.want {
			if got[k] != v {
				t.Errorf("scope %q: filter[%q] = %v, want %v", tc.scope, k, got[k], v)
			}
		}
	}
}

func TestScopeFilterQdrantRendering(t *testing.T) {
	filter, err := BuildScopeFilter(ScopeDepartment, ScopeParams{DeptName: "ops"})
	if err != nil {
		t.Fatal(err)
	}
	rendered := filter.QdrantFilter()
	must, ok := rendered["must"].([]map[string]any)
	if !ok || len(must) != 1 {
		t.Fatalf("expected one must clause, got %v", rendered)
	}
	if must[0]["key"] != "dept_name" {
		t.Errorf("key = %v, want dept_name", must[0]["key"])
	}
	match, ok := must[0]["match"].(map[string]any)
	if !ok || match["value"] != "ops" {
		t.Errorf("match = %v, want value ops", must[0]["match"])
	}
}
