package schema

import (
	"cmp"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/llehouerou/go-contentgraph-client/types"
)

// Parse classifies the data payload of IntrospectionQuery.
func Parse(data json.RawMessage, fetchedAt time.Time) (*SchemaInfo, error) {
	var result introspectionResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("problem decoding introspection result: %w", err)
	}
	if result.Schema == nil {
		return nil, errors.New("introspection result has no __schema")
	}
	if result.Schema.QueryType == nil || result.Schema.QueryType.Name == "" {
		return nil, errors.New("introspection result has no query type")
	}

	queryTypeName := result.Schema.QueryType.Name
	var rootFields []fieldDef
	for _, t := range result.Schema.Types {
		if t.Name == queryTypeName {
			rootFields = t.Fields
			break
		}
	}

	queryable := make([]string, 0, len(rootFields))
	contentRoots := make(map[string]bool, len(rootFields))
	for _, f := range rootFields {
		if strings.HasPrefix(f.Name, types.IntrospectionPrefix) {
			continue
		}
		queryable = append(queryable, f.Name)
		if !strings.HasPrefix(f.Name, types.ReservedPrefix) {
			contentRoots[f.Name] = true
		}
	}
	slices.Sort(queryable)

	contentTypes := make([]ContentTypeInfo, 0)
	for _, t := range result.Schema.Types {
		if t.Kind != kindObject || !isListedType(t.Name) {
			continue
		}
		ct := ContentTypeInfo{
			Name:        t.Name,
			Description: deref(t.Description),
			IsQueryable: contentRoots[t.Name],
			Interfaces:  make([]string, 0, len(t.Interfaces)),
		}
		for _, iface := range t.Interfaces {
			if iface.Name != "" {
				ct.Interfaces = append(ct.Interfaces, iface.Name)
			}
		}
		for _, f := range t.Fields {
			if strings.HasPrefix(f.Name, types.IntrospectionPrefix) {
				continue
			}
			ct.Fields = append(ct.Fields, newFieldInfo(f))
		}
		if len(ct.Fields) > 0 {
			contentTypes = append(contentTypes, ct)
		}
	}

	slices.SortStableFunc(contentTypes, func(a, b ContentTypeInfo) int {
		if a.IsQueryable != b.IsQueryable {
			if a.IsQueryable {
				return -1
			}
			return 1
		}
		return cmp.Compare(a.Name, b.Name)
	})

	return &SchemaInfo{
		FetchedAt:          fetchedAt,
		ContentTypes:       contentTypes,
		QueryableTypeNames: queryable,
	}, nil
}
