package querybuilder

import (
	"fmt"
	"strings"
)

// QueryDefinition is the structured, UI-driven description of a content query.
type QueryDefinition struct {
	ContentType    string               `json:"contentType" yaml:"contentType"`
	Locale         string               `json:"locale,omitempty" yaml:"locale,omitempty"`
	Filters        []FilterDefinition   `json:"filters,omitempty" yaml:"filters,omitempty"`
	Sorts          []SortDefinition     `json:"sorts,omitempty" yaml:"sorts,omitempty"`
	Pagination     PaginationDefinition `json:"pagination" yaml:"pagination"`
	SearchTerm     string               `json:"searchTerm,omitempty" yaml:"searchTerm,omitempty"`
	Facets         []FacetDefinition    `json:"facets,omitempty" yaml:"facets,omitempty"`
	SelectedFields []string             `json:"selectedFields,omitempty" yaml:"selectedFields,omitempty"`
	IncludeTotal   bool                 `json:"includeTotal,omitempty" yaml:"includeTotal,omitempty"`
}

// FilterDefinition is one where-clause condition. Filters with an empty
// Field are ignored.
type FilterDefinition struct {
	Field    string   `json:"field" yaml:"field"`
	Operator Operator `json:"operator" yaml:"operator"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	// Values is used by In and NotIn.
	Values []string `json:"values,omitempty" yaml:"values,omitempty"`
	Logic  Logic    `json:"logic,omitempty" yaml:"logic,omitempty"`
}

// SortDefinition is one orderBy entry; Order positions it among the others.
type SortDefinition struct {
	Field     string        `json:"field" yaml:"field"`
	Direction SortDirection `json:"direction" yaml:"direction"`
	Order     int           `json:"order,omitempty" yaml:"order,omitempty"`
}

type PaginationDefinition struct {
	Skip                *int   `json:"skip,omitempty" yaml:"skip,omitempty"`
	Limit               *int   `json:"limit,omitempty" yaml:"limit,omitempty"`
	Cursor              string `json:"cursor,omitempty" yaml:"cursor,omitempty"`
	UseCursorPagination bool   `json:"useCursorPagination,omitempty" yaml:"useCursorPagination,omitempty"`
}

type FacetDefinition struct {
	Field string `json:"field" yaml:"field"`
}

// Operator is a where-clause comparison.
type Operator int

const (
	Eq Operator = iota
	NotEq
	Like
	Gt
	Gte
	Lt
	Lte
	Exist
	StartsWith
	EndsWith
	In
	NotIn
	Boost
	Synonyms
)

var operatorNames = [...]string{
	Eq:         "eq",
	NotEq:      "notEq",
	Like:       "like",
	Gt:         "gt",
	Gte:        "gte",
	Lt:         "lt",
	Lte:        "lte",
	Exist:      "exist",
	StartsWith: "startsWith",
	EndsWith:   "endsWith",
	In:         "in",
	NotIn:      "notIn",
	Boost:      "boost",
	Synonyms:   "synonyms",
}

// String returns the GraphQL literal of o; unknown operators render as "eq".
func (o Operator) String() string {
	if o >= 0 && int(o) < len(operatorNames) {
		return operatorNames[o]
	}
	return operatorNames[Eq]
}

// ParseOperator parses a GraphQL operator literal case-insensitively.
func ParseOperator(s string) (Operator, error) {
	for i, name := range operatorNames {
		if strings.EqualFold(name, strings.TrimSpace(s)) {
			return Operator(i), nil
		}
	}
	return Eq, fmt.Errorf("unknown filter operator %q", s)
}

func (o Operator) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Operator) UnmarshalText(text []byte) error {
	parsed, err := ParseOperator(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// Logic says how a filter combines with the others.
type Logic int

const (
	And Logic = iota
	Or
)

func (l Logic) String() string {
	if l == Or {
		return "or"
	}
	return "and"
}

func (l Logic) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Logic) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "and":
		*l = And
	case "or":
		*l = Or
	default:
		return fmt.Errorf("unknown filter logic %q", text)
	}
	return nil
}

type SortDirection int

const (
	Asc SortDirection = iota
	Desc
)

func (d SortDirection) String() string {
	if d == Desc {
		return "desc"
	}
	return "asc"
}

func (d SortDirection) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *SortDirection) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "", "asc":
		*d = Asc
	case "desc":
		*d = Desc
	default:
		return fmt.Errorf("unknown sort direction %q", text)
	}
	return nil
}
