package schema

// IntrospectionQuery is the fixed query used to discover the schema. Field
// types are unwrapped up to three wrapper levels.
const IntrospectionQuery = `query IntrospectionQuery {
  __schema {
    queryType { name }
    types {
      kind
      name
      description
      fields(includeDeprecated: false) {
        name
        description
        type {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
              ofType {
                kind
                name
              }
            }
          }
        }
      }
      interfaces { name }
    }
  }
}`

const (
	kindObject  = "OBJECT"
	kindNonNull = "NON_NULL"
	kindList    = "LIST"
)

// introspectionResult mirrors the data payload of IntrospectionQuery.
type introspectionResult struct {
	Schema *struct {
		QueryType *struct {
			Name string `json:"name"`
		} `json:"queryType"`
		Types []fullType `json:"types"`
	} `json:"__schema"`
}

type fullType struct {
	Kind        string      `json:"kind"`
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Fields      []fieldDef  `json:"fields"`
	Interfaces  []namedType `json:"interfaces"`
}

type namedType struct {
	Name string `json:"name"`
}

type fieldDef struct {
	Name        string      `json:"name"`
	Description *string     `json:"description"`
	Type        *rawTypeRef `json:"type"`
}

type rawTypeRef struct {
	Kind   string      `json:"kind"`
	Name   *string     `json:"name"`
	OfType *rawTypeRef `json:"ofType"`
}

// typeRef is a decoded field type: nonNullRef, listRef or namedRef.
type typeRef interface {
	isTypeRef()
}

type nonNullRef struct{ inner typeRef }

type listRef struct{ inner typeRef }

type namedRef struct{ name string }

func (nonNullRef) isTypeRef() {}
func (listRef) isTypeRef()    {}
func (namedRef) isTypeRef()   {}

const unknownTypeName = "Unknown"

// decodeTypeRef converts the raw kind/ofType chain. A missing node decodes
// to an unnamed type.
func decodeTypeRef(r *rawTypeRef) typeRef {
	if r == nil {
		return namedRef{}
	}
	switch r.Kind {
	case kindNonNull:
		return nonNullRef{inner: decodeTypeRef(r.OfType)}
	case kindList:
		return listRef{inner: decodeTypeRef(r.OfType)}
	default:
		if r.Name == nil {
			return namedRef{}
		}
		return namedRef{name: *r.Name}
	}
}

// typeInfo is the reduced form of a typeRef.
type typeInfo struct {
	typeName       string
	underlyingType string
	isNullable     bool
	isList         bool
}

func unwrap(t typeRef) typeInfo {
	switch t := t.(type) {
	case nonNullRef:
		inner := unwrap(t.inner)
		return typeInfo{
			typeName:       inner.typeName + "!",
			underlyingType: inner.underlyingType,
			isNullable:     false,
			isList:         inner.isList,
		}
	case listRef:
		inner := unwrap(t.inner)
		return typeInfo{
			typeName:       "[" + inner.typeName + "]",
			underlyingType: inner.underlyingType,
			isNullable:     true,
			isList:         true,
		}
	case namedRef:
		name := t.name
		if name == "" {
			name = unknownTypeName
		}
		return typeInfo{
			typeName:       name,
			underlyingType: name,
			isNullable:     true,
		}
	default:
		return typeInfo{typeName: unknownTypeName, underlyingType: unknownTypeName, isNullable: true}
	}
}
