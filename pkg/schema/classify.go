package schema

import (
	"slices"
	"strings"

	"github.com/llehouerou/go-contentgraph-client/types"
)

var builtinScalars = map[string]bool{
	"Int":            true,
	"Float":          true,
	"String":         true,
	"Boolean":        true,
	"ID":             true,
	"DateTime":       true,
	"Date":           true,
	"Time":           true,
	"DateTimeOffset": true,
	"Decimal":        true,
	"Long":           true,
	"Short":          true,
	"Byte":           true,
	"Uri":            true,
	"Guid":           true,
	"TimeSpan":       true,
}

var excludedTypeNames = map[string]bool{
	"Query":               true,
	"Mutation":            true,
	"Subscription":        true,
	"__Schema":            true,
	"__Type":              true,
	"__Field":             true,
	"__InputValue":        true,
	"__EnumValue":         true,
	"__Directive":         true,
	"__TypeKind":          true,
	"__DirectiveLocation": true,
}

// excludedTypeSuffixes mark auxiliary types generated around content types.
var excludedTypeSuffixes = []string{
	"Input",
	"Output",
	"Connection",
	"Edge",
	"WhereInput",
	"OrderByInput",
	"Facet",
	"Autocomplete",
}

var (
	stringOperators  = []string{"eq", "notEq", "like", "startsWith", "endsWith", "in", "notIn", "exist"}
	numericOperators = []string{"eq", "notEq", "gt", "gte", "lt", "lte", "in", "notIn", "exist"}
	dateOperators    = []string{"eq", "notEq", "gt", "gte", "lt", "lte", "exist"}
	defaultOperators = []string{"eq", "exist"}
)

// IsScalar reports whether name is one of the built-in scalar types.
func IsScalar(name string) bool {
	return builtinScalars[name]
}

// OperatorsFor returns the filter operators available for a field whose
// underlying type is name. The result is a fresh slice.
func OperatorsFor(name string) []string {
	switch name {
	case "String":
		return slices.Clone(stringOperators)
	case "Int", "Float", "Decimal", "Long", "Short":
		return slices.Clone(numericOperators)
	case "DateTime", "Date", "DateTimeOffset":
		return slices.Clone(dateOperators)
	default:
		// Boolean and every non-scalar type
		return slices.Clone(defaultOperators)
	}
}

// isListedType reports whether an OBJECT type should become a content type
// candidate.
func isListedType(name string) bool {
	if excludedTypeNames[name] || builtinScalars[name] {
		return false
	}
	if strings.HasPrefix(name, types.IntrospectionPrefix) ||
		strings.HasPrefix(name, "Query") ||
		strings.HasPrefix(name, "Mutation") {
		return false
	}
	for _, suffix := range excludedTypeSuffixes {
		if strings.HasSuffix(name, suffix) {
			return false
		}
	}
	return true
}

func newFieldInfo(f fieldDef) FieldInfo {
	ti := unwrap(decodeTypeRef(f.Type))
	scalar := IsScalar(ti.underlyingType)
	return FieldInfo{
		Name:               f.Name,
		Description:        deref(f.Description),
		Type:               ti.typeName,
		UnderlyingType:     ti.underlyingType,
		IsNullable:         ti.isNullable,
		IsList:             ti.isList,
		IsScalar:           scalar,
		IsFilterable:       true,
		IsSortable:         scalar,
		IsSearchable:       ti.underlyingType == "String",
		AvailableOperators: OperatorsFor(ti.underlyingType),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
