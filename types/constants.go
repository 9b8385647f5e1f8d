package types

// GraphQL naming constants shared by the schema cache and the query builder.
// Centralizing these prevents typos and makes refactoring safer.
const (
	// IntrospectionPrefix marks introspection meta fields and meta types
	// (e.g. "__schema", "__Type"). Names carrying it are never listed.
	IntrospectionPrefix = "__"

	// ReservedPrefix marks reserved/system root fields (e.g. "_health").
	// They are listed as queryable names but are not content types.
	ReservedPrefix = "_"

	// OrField is the where-clause key holding alternative conditions.
	OrField = "_or"

	// MetadataField is the per-item metadata block of the content API.
	MetadataField = "_metadata"

	// FacetSuffix is appended to a field name to select its facet block.
	FacetSuffix = "Facet"
)
