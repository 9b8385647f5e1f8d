// Package querybuilder turns structured query definitions into GraphQL query
// text for the content API, and offers a light formatter and validator for
// hand-edited queries.
//
// The builder emits a fixed subset of GraphQL:
//
//	query { ArticlePage(where: { Title: { eq: "News" } }, limit: 5) { total items { Title } } }
//
// Everything here is pure and safe for concurrent use.
package querybuilder

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/llehouerou/go-contentgraph-client/types"
)

// Placeholder is returned by BuildQuery when no content type is selected.
const Placeholder = "# Select a content type to build a query"

// defaultItemFields is selected when a definition selects no fields.
const defaultItemFields = types.MetadataField + " { key displayName types }"

// BuildQuery renders d as GraphQL query text.
func BuildQuery(d QueryDefinition) string {
	if strings.TrimSpace(d.ContentType) == "" {
		return Placeholder
	}

	var b strings.Builder
	b.WriteString("query { ")
	b.WriteString(d.ContentType)
	if args := arguments(d); len(args) > 0 {
		b.WriteString("(")
		writeEntries(&b, args)
		b.WriteString(")")
	}
	b.WriteString(" { ")
	b.WriteString(strings.Join(selection(d), " "))
	b.WriteString(" } }")
	return b.String()
}

// arguments returns the argument list in its fixed order: locale, where,
// searchTerm, orderBy, skip, limit, cursor.
func arguments(d QueryDefinition) []entry {
	var args []entry
	if d.Locale != "" {
		args = append(args, entry{"locale", listLit{rawLit(d.Locale)}})
	}
	if where := whereClause(d.Filters); where != nil {
		args = append(args, entry{"where", where})
	}
	if d.SearchTerm != "" {
		args = append(args, entry{"searchTerm", stringLit(d.SearchTerm)})
	}
	if orderBy := orderByClause(d.Sorts); orderBy != nil {
		args = append(args, entry{"orderBy", orderBy})
	}
	p := d.Pagination
	if p.Skip != nil && *p.Skip > 0 {
		args = append(args, entry{"skip", rawLit(strconv.Itoa(*p.Skip))})
	}
	if p.Limit != nil {
		args = append(args, entry{"limit", rawLit(strconv.Itoa(*p.Limit))})
	}
	if p.Cursor != "" {
		args = append(args, entry{"cursor", stringLit(p.Cursor)})
	}
	return args
}

func selection(d QueryDefinition) []string {
	var fields []string
	if d.IncludeTotal {
		fields = append(fields, "total")
	}
	if d.Pagination.UseCursorPagination {
		fields = append(fields, "cursor")
	}

	items := defaultItemFields
	if len(d.SelectedFields) > 0 {
		items = strings.Join(d.SelectedFields, " ")
	}
	fields = append(fields, "items { "+items+" }")

	for _, f := range d.Facets {
		fields = append(fields, f.Field+types.FacetSuffix+" { name count }")
	}
	return fields
}

// whereClause returns nil when no filter names a field. And-filters become
// sibling entries; Or-filters are collected into one _or list after them.
func whereClause(filters []FilterDefinition) literal {
	var where objectLit
	var or listLit
	for _, f := range filters {
		if f.Field == "" {
			continue
		}
		cond := entry{f.Field, objectLit{{f.Operator.String(), filterValue(f)}}}
		if f.Logic == Or {
			or = append(or, objectLit{cond})
			continue
		}
		where = append(where, cond)
	}
	if len(or) > 0 {
		where = append(where, entry{types.OrField, or})
	}
	if len(where) == 0 {
		return nil
	}
	return where
}

// filterValue formats a filter's value for its operator.
func filterValue(f FilterDefinition) literal {
	switch f.Operator {
	case In, NotIn:
		values := f.Values
		if len(values) == 0 {
			values = []string{f.Value}
		}
		list := make(listLit, 0, len(values))
		for _, v := range values {
			list = append(list, stringLit(v))
		}
		return list
	case Exist:
		return rawLit(strconv.FormatBool(strings.EqualFold(f.Value, "true")))
	case Boost:
		return rawLit(f.Value)
	case Gt, Gte, Lt, Lte:
		if isNumber(f.Value) {
			return rawLit(f.Value)
		}
		return stringLit(f.Value)
	default:
		return stringLit(f.Value)
	}
}

// isNumber reports whether s is a finite decimal number.
func isNumber(s string) bool {
	if strings.ContainsAny(s, "xX_") {
		return false
	}
	n, err := strconv.ParseFloat(s, 64)
	return err == nil && !math.IsInf(n, 0) && !math.IsNaN(n)
}

// orderByClause returns nil when no sort names a field.
func orderByClause(sorts []SortDefinition) literal {
	valid := make([]SortDefinition, 0, len(sorts))
	for _, s := range sorts {
		if s.Field != "" {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return nil
	}
	slices.SortStableFunc(valid, func(a, b SortDefinition) int {
		return cmp.Compare(a.Order, b.Order)
	})

	orderBy := make(objectLit, 0, len(valid))
	for _, s := range valid {
		orderBy = append(orderBy, entry{s.Field, rawLit(strings.ToUpper(s.Direction.String()))})
	}
	return orderBy
}
