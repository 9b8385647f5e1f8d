package schema

import "time"

// SchemaInfo is the classified result of one introspection run.
type SchemaInfo struct {
	FetchedAt time.Time `json:"fetchedAt"`
	// ContentTypes lists queryable types first, then the rest, each group
	// sorted by name.
	ContentTypes []ContentTypeInfo `json:"contentTypes"`
	// QueryableTypeNames holds every root query field name except
	// introspection meta fields, sorted.
	QueryableTypeNames []string `json:"queryableTypeNames"`
}

// ContentType returns the content type with the given name.
func (s *SchemaInfo) ContentType(name string) (ContentTypeInfo, bool) {
	for _, ct := range s.ContentTypes {
		if ct.Name == name {
			return ct, true
		}
	}
	return ContentTypeInfo{}, false
}

// ContentTypeInfo describes one OBJECT type of the schema.
type ContentTypeInfo struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	IsQueryable bool        `json:"isQueryable"`
	Fields      []FieldInfo `json:"fields"`
	Interfaces  []string    `json:"interfaces"`
}

// Field returns the field with the given name.
func (c ContentTypeInfo) Field(name string) (FieldInfo, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldInfo{}, false
}

// FieldInfo describes one field of a content type.
type FieldInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	// Type is the display form, e.g. "[String!]!".
	Type string `json:"type"`
	// UnderlyingType is the innermost named type.
	UnderlyingType     string   `json:"underlyingType"`
	IsNullable         bool     `json:"isNullable"`
	IsList             bool     `json:"isList"`
	IsScalar           bool     `json:"isScalar"`
	IsFilterable       bool     `json:"isFilterable"`
	IsSortable         bool     `json:"isSortable"`
	IsSearchable       bool     `json:"isSearchable"`
	AvailableOperators []string `json:"availableOperators"`
}
