package mockserver

import (
	"slices"
	"strings"
)

// Input objects of the schema. graphql-go matches fields by name ignoring
// case and underscores, so Or receives _or.

type stringFilter struct {
	Eq         *string
	NotEq      *string
	Like       *string
	StartsWith *string
	EndsWith   *string
	In         *[]*string
	NotIn      *[]*string
	Exist      *bool
	Boost      *float64
	Synonyms   *string
}

type intFilter struct {
	Eq    *int32
	NotEq *int32
	Gt    *int32
	Gte   *int32
	Lt    *int32
	Lte   *int32
	In    *[]*int32
	NotIn *[]*int32
	Exist *bool
	Boost *float64
}

type boolFilter struct {
	Eq    *bool
	Exist *bool
	Boost *float64
}

type contentWhere struct {
	ContentType *stringFilter
	Name        *stringFilter
	Or          *[]*contentWhere
}

type articleWhere struct {
	Title    *stringFilter
	Category *stringFilter
	Tags     *stringFilter
	Rating   *intFilter
	Featured *boolFilter
	Or       *[]*articleWhere
}

func (w *contentWhere) match(e contentEntry) bool {
	if w == nil {
		return true
	}
	if !w.ContentType.match(present(e.contentType)) || !w.Name.match(present(e.name)) {
		return false
	}
	return anyOf(w.Or, func(o *contentWhere) bool { return o.match(e) })
}

func (w *articleWhere) match(a Article) bool {
	if w == nil {
		return true
	}
	if !w.Title.match(present(a.Title)) ||
		!w.Category.match(present(a.Category)) ||
		!w.Tags.match(a.Tags) ||
		!w.Rating.match(a.Rating) ||
		!w.Featured.match(a.Featured) {
		return false
	}
	return anyOf(w.Or, func(o *articleWhere) bool { return o.match(a) })
}

// anyOf reports whether some clause of an _or list matches. An absent or
// empty list matches.
func anyOf[T any](clauses *[]*T, match func(*T) bool) bool {
	if clauses == nil || len(*clauses) == 0 {
		return true
	}
	return slices.ContainsFunc(*clauses, match)
}

func present(s string) []string {
	if s == "" {
		return nil
	}
	return []string{s}
}

// match reports whether some value satisfies every condition of f. Boost and
// synonyms only affect ranking and are ignored.
func (f *stringFilter) match(values []string) bool {
	if f == nil {
		return true
	}
	if f.Exist != nil && *f.Exist != (len(values) > 0) {
		return false
	}
	if f.Eq == nil && f.NotEq == nil && f.Like == nil && f.StartsWith == nil &&
		f.EndsWith == nil && f.In == nil && f.NotIn == nil {
		return true
	}
	return slices.ContainsFunc(values, f.matchValue)
}

func (f *stringFilter) matchValue(v string) bool {
	switch {
	case f.Eq != nil && v != *f.Eq:
		return false
	case f.NotEq != nil && v == *f.NotEq:
		return false
	case f.Like != nil && !strings.Contains(strings.ToLower(v), strings.ToLower(strings.Trim(*f.Like, "%*"))):
		return false
	case f.StartsWith != nil && !strings.HasPrefix(v, *f.StartsWith):
		return false
	case f.EndsWith != nil && !strings.HasSuffix(v, *f.EndsWith):
		return false
	case f.In != nil && !containsPtr(*f.In, v):
		return false
	case f.NotIn != nil && containsPtr(*f.NotIn, v):
		return false
	}
	return true
}

func (f *intFilter) match(v *int32) bool {
	if f == nil {
		return true
	}
	if f.Exist != nil && *f.Exist != (v != nil) {
		return false
	}
	if f.Eq == nil && f.NotEq == nil && f.Gt == nil && f.Gte == nil &&
		f.Lt == nil && f.Lte == nil && f.In == nil && f.NotIn == nil {
		return true
	}
	if v == nil {
		return false
	}
	n := *v
	switch {
	case f.Eq != nil && n != *f.Eq:
		return false
	case f.NotEq != nil && n == *f.NotEq:
		return false
	case f.Gt != nil && n <= *f.Gt:
		return false
	case f.Gte != nil && n < *f.Gte:
		return false
	case f.Lt != nil && n >= *f.Lt:
		return false
	case f.Lte != nil && n > *f.Lte:
		return false
	case f.In != nil && !containsPtr(*f.In, n):
		return false
	case f.NotIn != nil && containsPtr(*f.NotIn, n):
		return false
	}
	return true
}

func (f *boolFilter) match(v *bool) bool {
	if f == nil {
		return true
	}
	if f.Exist != nil && *f.Exist != (v != nil) {
		return false
	}
	if f.Eq != nil && (v == nil || *v != *f.Eq) {
		return false
	}
	return true
}

func containsPtr[T comparable](list []*T, v T) bool {
	return slices.ContainsFunc(list, func(p *T) bool { return p != nil && *p == v })
}
