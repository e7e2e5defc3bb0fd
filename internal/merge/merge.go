// Package merge joins two parsed documents on shared key paths: a left
// join that keeps every matched primary record, fills in fields the
// secondary record has and the primary lacks, and re-embeds the merged
// rows into the primary document's container shape.
package merge

import (
	"encoding/json"
	"math/big"
	"strings"

	"github.com/jsift/jsift/internal/errors"
	"github.com/jsift/jsift/internal/extractor"
	"github.com/jsift/jsift/internal/models"
	"github.com/jsift/jsift/internal/paths"
)

// Stats summarizes one merge run.
type Stats struct {
	PrimaryTotal   int
	SecondaryTotal int
	MatchPairs     int
	PrimaryOnly    int
	SecondaryOnly  int
}

// Merge joins primary and secondary on joinKeys, iterating each dataset at
// its own root path. Grouped primaries ([[...],[...]]) keep their group
// structure; a primary record matching several secondary records is
// duplicated once per match. The merged rows replace the value at the
// primary root path inside a copy of the primary document.
func Merge(primary, secondary models.JSONValue, primaryRoot, secondaryRoot string, joinKeys []string) (models.JSONValue, Stats, error) {
	if primary == nil || secondary == nil {
		return nil, Stats{}, errors.NewMergeError("both datasets must be loaded before merging", errors.ErrEmptyInput)
	}

	keep := joinKeys[:0:0]
	for _, k := range joinKeys {
		if strings.TrimSpace(k) != "" {
			keep = append(keep, k)
		}
	}
	if len(keep) == 0 {
		return nil, Stats{}, errors.NewMergeError("select at least one join key", errors.ErrNoJoinKeys)
	}

	primaryGroups, primaryGrouped := extractor.ResolveGroups(primary, primaryRoot)
	secondaryGroups, _ := extractor.ResolveGroups(secondary, secondaryRoot)

	var secondaryRecords []*models.JSONObject
	for _, g := range secondaryGroups {
		secondaryRecords = append(secondaryRecords, g...)
	}

	primaryTotal := 0
	for _, g := range primaryGroups {
		primaryTotal += len(g)
	}
	if primaryTotal == 0 {
		return nil, Stats{}, errors.NewMergeError("primary dataset has no iterable items for the selected root path", errors.ErrNoRecords)
	}
	if len(secondaryRecords) == 0 {
		return nil, Stats{}, errors.NewMergeError("secondary dataset has no iterable items for the selected root path", errors.ErrNoRecords)
	}

	index := make(map[string][]int, len(secondaryRecords))
	for i, rec := range secondaryRecords {
		k := joinKey(rec, keep)
		index[k] = append(index[k], i)
	}

	stats := Stats{
		PrimaryTotal:   primaryTotal,
		SecondaryTotal: len(secondaryRecords),
	}
	matched := make(map[int]struct{})

	var flatRows models.JSONArray
	groupedRows := make([]models.JSONArray, len(primaryGroups))

	for gi, group := range primaryGroups {
		for _, item := range group {
			hits := index[joinKey(item, keep)]
			if len(hits) == 0 {
				stats.PrimaryOnly++
				continue
			}
			for _, si := range hits {
				row := mergeRecords(item, secondaryRecords[si])
				if primaryGrouped {
					groupedRows[gi] = append(groupedRows[gi], row)
				} else {
					flatRows = append(flatRows, row)
				}
				matched[si] = struct{}{}
				stats.MatchPairs++
			}
		}
	}
	stats.SecondaryOnly = len(secondaryRecords) - len(matched)

	var payload models.JSONValue
	if primaryGrouped {
		arr := make(models.JSONArray, len(groupedRows))
		for i, g := range groupedRows {
			arr[i] = g
		}
		payload = arr
	} else {
		payload = flatRows
	}

	return embed(primary, primaryRoot, payload), stats, nil
}

// mergeRecords copies the primary record and fills in secondary fields
// only where the primary has no value (absent or null). The inputs are
// never mutated.
func mergeRecords(primary, secondary *models.JSONObject) *models.JSONObject {
	out := primary.Clone()
	for _, key := range secondary.Keys() {
		existing, present := out.Get(key)
		if present && existing != nil {
			continue
		}
		v, _ := secondary.Get(key)
		out.Set(key, models.Clone(v))
	}
	return out
}

// embed places the merged rows back at the primary root path inside a
// copy of the primary container, so surrounding metadata survives. A
// root-level merge just returns the rows.
func embed(primary models.JSONValue, primaryRoot string, payload models.JSONValue) models.JSONValue {
	if paths.IsRoot(primaryRoot) {
		return payload
	}
	if obj, ok := primary.(*models.JSONObject); ok {
		return extractor.SetByPath(obj.Clone(), primaryRoot, payload)
	}
	return payload
}

// joinKey builds the composite lookup key for one record: each join path
// resolved and normalized, joined with an unprintable separator.
func joinKey(rec *models.JSONObject, joinPaths []string) string {
	parts := make([]string, len(joinPaths))
	for i, p := range joinPaths {
		parts[i] = normalizeComponent(extractor.ResolveField(rec, p))
	}
	return strings.Join(parts, "\x1f")
}

// normalizeComponent renders a join-key component so equal values compare
// equal across documents: strings are trimmed, numbers reduce to one
// canonical spelling, composites serialize to canonical JSON with sorted
// object keys.
func normalizeComponent(v models.JSONValue) string {
	switch val := v.(type) {
	case nil:
		return "\x00"
	case string:
		return strings.TrimSpace(val)
	case json.Number:
		// 1, 1.0 and 1e0 must share a key.
		if r, ok := new(big.Rat).SetString(val.String()); ok {
			return r.RatString()
		}
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	default:
		return canonicalJSON(v)
	}
}

func canonicalJSON(v models.JSONValue) string {
	out, err := json.Marshal(normalizeValue(v))
	if err != nil {
		return ""
	}
	return string(out)
}

// normalizeValue converts ordered objects into plain maps so encoding/json
// sorts their keys, giving an order-independent encoding.
func normalizeValue(v models.JSONValue) interface{} {
	switch val := v.(type) {
	case *models.JSONObject:
		m := make(map[string]interface{}, val.Len())
		for _, k := range val.Keys() {
			cv, _ := val.Get(k)
			m[k] = normalizeValue(cv)
		}
		return m
	case models.JSONArray:
		out := make([]interface{}, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return val
	}
}
