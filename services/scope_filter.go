package services

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// Scope selects which slice of the vector index a query may match.
type Scope string

const (
	ScopeGlobal     Scope = "global"
	ScopePerson     Scope = "person"
	ScopeDepartment Scope = "department"
	ScopeWork       Scope = "work"
	ScopeProject    Scope = "project"
)

// ScopeFilter is the metadata predicate handed to the vector index gateway.
// A nil *ScopeFilter (or the global scope) matches every record; otherwise
// exactly one of the id fields is set.
type ScopeFilter struct {
	Scope     Scope
	PersonID  string
	DeptName  string
	WorkID    string
	ProjectID string
}

// ScopeParams carries the raw (optional) scope arguments from a request.
type ScopeParams struct {
	PersonID  string `json:"person_id,omitempty"`
	DeptName  string `json:"dept_name,omitempty"`
	WorkID    string `json:"work_id,omitempty"`
	ProjectID string `json:"project_id,omitempty"`
}

// BuildScopeFilter validates the scope arguments and produces the filter.
// Global returns nil. A missing required argument or an unknown scope is an
// ErrInvalidScopeParameters.
func BuildScopeFilter(scope Scope, params ScopeParams) (*ScopeFilter, error) {
	switch scope {
	case ScopeGlobal:
		return nil, nil
	case ScopePerson:
		if params.PersonID == "" {
			return nil, fmt.Errorf("%w: scope %q requires person_id", ErrInvalidScopeParameters, scope)
		}
		return &ScopeFilter{Scope: scope, PersonID: params.PersonID}, nil
	case ScopeDepartment:
		if params.DeptName == "" {
			return nil, fmt.Errorf("%w: scope %q requires dept_name", ErrInvalidScopeParameters, scope)
		}
		return &ScopeFilter{Scope: scope, DeptName: params.DeptName}, nil
	case ScopeWork:
		if params.WorkID == "" {
			return nil, fmt.Errorf("%w: scope %q requires work_id", ErrInvalidScopeParameters, scope)
		}
		return &ScopeFilter{Scope: scope, WorkID: params.WorkID}, nil
	case ScopeProject:
		if params.ProjectID == "" {
			return nil, fmt.Errorf("%w: scope %q requires project_id", ErrInvalidScopeParameters, scope)
		}
		return &ScopeFilter{Scope: scope, ProjectID: params.ProjectID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown scope %q", ErrInvalidScopeParameters, scope)
	}
}

// MongoFilter renders the predicate as an Atlas $vectorSearch filter
// document. Nil means no filter clause.
func (f *ScopeFilter) MongoFilter() bson.M {
	if f == nil {
		return nil
	}
	switch f.Scope {
	case ScopePerson:
		// person_ids is an array; equality matches any element
		return bson.M{"person_ids": f.PersonID}
	case ScopeDepartment:
		return bson.M{"dept_name": f.DeptName}
	case ScopeWork:
		return bson.M{"note_id": f.WorkID}
	case ScopeProject:
		return bson.M{"project_id": f.ProjectID}
	default:
		return nil
	}
}

// QdrantFilter renders the predicate as a Qdrant payload filter.
func (f *ScopeFilter) QdrantFilter() map[string]any {
	if f == nil {
		return nil
	}
	var key, value string
	switch f.Scope {
	case ScopePerson:
		key, value = "person_ids", f.PersonID
	case ScopeDepartment:
		key, value = "dept_name", f.DeptName
	case ScopeWork:
		key, value = "note_id", f.WorkID
	case ScopeProject:
		key, value = "project_id", f.ProjectID
	default:
		return nil
	}
	return map[string]any{
		"must": []map[string]any{
			{"key": key, "match": map[string]any{"value": value}},
		},
	}
}
