// Package extractor re-walks a parsed document to produce flat records:
// one per element of the array at the chosen root path (or a single record
// when the root resolves to anything else), with each selected field
// resolved relative to that element.
package extractor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jsift/jsift/internal/errors"
	"github.com/jsift/jsift/internal/models"
	"github.com/jsift/jsift/internal/paths"
	"github.com/jsift/jsift/internal/schema"
)

// Extract resolves rootPath within doc and builds one record per
// iteration element. A missing field in one record degrades to a nil
// value; a root path that does not resolve fails the whole call with no
// partial output.
func Extract(doc models.Document, rootPath string, selections []models.FieldSelection) (models.ExtractionResult, error) {
	if len(selections) == 0 {
		return models.ExtractionResult{}, errors.NewExtractError("no fields selected", errors.ErrEmptySelection)
	}

	target, ok := ResolveRoot(doc.Root, rootPath)
	if !ok {
		return models.ExtractionResult{}, errors.NewExtractError(
			fmt.Sprintf("root path %q does not resolve within the document", rootPath),
			errors.ErrInvalidPath,
		)
	}

	items := iterationSet(target)

	result := models.ExtractionResult{
		Columns: make([]string, 0, len(selections)),
		Records: make([]*models.Record, 0, len(items)),
	}
	for _, sel := range selections {
		result.Columns = append(result.Columns, OutputName(sel))
	}

	for _, item := range items {
		rec := models.NewRecord()
		for _, sel := range selections {
			rec.Set(OutputName(sel), resolveSelection(doc.Root, item, sel.SourcePath, rootPath))
		}
		result.Records = append(result.Records, rec)
	}
	return result, nil
}

// OutputName returns the name a selection carries in the output,
// defaulting to the last segment of its source path.
func OutputName(sel models.FieldSelection) string {
	if sel.OutputName != "" {
		return sel.OutputName
	}
	if name := paths.Last(sel.SourcePath); name != "" {
		return name
	}
	return sel.SourcePath
}

// ResolveRoot resolves a root path against the document. The root path
// itself ("(root)" or "") resolves to the whole document.
func ResolveRoot(root models.JSONValue, rootPath string) (models.JSONValue, bool) {
	if paths.IsRoot(rootPath) {
		return root, true
	}
	v, ok, _ := resolve(root, paths.Split(rootPath))
	return v, ok
}

// iterationSet turns the resolved root value into the sequence of record
// sources: array elements in order, or the value itself. A null root holds
// nothing to iterate and yields no records.
func iterationSet(v models.JSONValue) []models.JSONValue {
	if v == nil {
		return nil
	}
	if arr, ok := v.(models.JSONArray); ok {
		return arr
	}
	return []models.JSONValue{v}
}

// resolveSelection resolves one selected path for one iteration element.
// Paths under the root are applied relative to the element; anything else
// is resolved against the whole document, so constant-per-document fields
// can ride along with per-element ones.
func resolveSelection(root, item models.JSONValue, sourcePath, rootPath string) models.JSONValue {
	if rel, under := paths.Relative(rootPath, sourcePath); under {
		return ResolveField(item, rel)
	}
	return ResolveField(root, sourcePath)
}

// ResolveField resolves a field path, tolerating absence: a missing key or
// empty match set yields nil rather than an error. When the path crosses a
// nested array the first match wins; callers needing every combination
// must pick a deeper root path instead.
func ResolveField(v models.JSONValue, path string) models.JSONValue {
	segs := paths.Split(path)
	if len(segs) == 0 {
		return v
	}
	out, ok, spread := resolve(v, segs)
	if !ok {
		return nil
	}
	if spread {
		if arr, isArr := out.(models.JSONArray); isArr && len(arr) > 0 {
			return arr[0]
		}
	}
	return out
}

// resolve walks segments from v. Descending into an array mid-path
// broadcasts the remaining segments across its elements and collects the
// matches (spread=true); a value selected directly is returned as-is.
func resolve(v models.JSONValue, segs []paths.Segment) (models.JSONValue, bool, bool) {
	for len(segs) > 0 {
		seg := segs[0]

		if seg.Key == "" && seg.Array {
			// Bare "[]": iterate the value itself.
			arr, ok := v.(models.JSONArray)
			if !ok {
				return nil, false, false
			}
			if len(segs) == 1 {
				return arr, true, false
			}
			return broadcast(arr, segs[1:])
		}

		switch cur := v.(type) {
		case *models.JSONObject:
			next, ok := cur.Get(seg.Key)
			if !ok {
				return nil, false, false
			}
			if next == nil {
				// A key explicitly holding null resolves (to null) only as
				// the final segment; there is nothing to descend into.
				if len(segs) == 1 && !seg.Array {
					return nil, true, false
				}
				return nil, false, false
			}
			if seg.Array {
				arr, isArr := next.(models.JSONArray)
				if !isArr {
					return nil, false, false
				}
				if len(segs) == 1 {
					return arr, true, false
				}
				return broadcast(arr, segs[1:])
			}
			v = next
			segs = segs[1:]
		case models.JSONArray:
			return broadcast(cur, segs)
		default:
			return nil, false, false
		}
	}
	return v, true, false
}

// broadcast applies the remaining segments to every element, flattening
// nested match collections the way the path language promises: one flat
// candidate list, first match taken by ResolveField.
func broadcast(arr models.JSONArray, segs []paths.Segment) (models.JSONValue, bool, bool) {
	if len(segs) == 0 {
		return arr, true, true
	}
	out := make(models.JSONArray, 0, len(arr))
	for _, e := range arr {
		r, ok, spread := resolve(e, segs)
		if !ok || r == nil {
			continue
		}
		if inner, isArr := r.(models.JSONArray); isArr && spread {
			out = append(out, inner...)
			continue
		}
		out = append(out, r)
	}
	if len(out) == 0 {
		return nil, false, false
	}
	return out, true, true
}

// SetByPath sets a value at path inside data, creating intermediate
// objects as needed. Traversal is object-only: array markers contribute
// their key but do not descend into elements. When data is not an object
// (or path is the root) the value replaces data outright.
func SetByPath(data models.JSONValue, path string, value models.JSONValue) models.JSONValue {
	if paths.IsRoot(path) {
		return value
	}
	obj, ok := data.(*models.JSONObject)
	if !ok {
		return value
	}
	segs := paths.Split(path)
	cur := obj
	for _, seg := range segs[:len(segs)-1] {
		next, _ := cur.Get(seg.Key)
		child, isObj := next.(*models.JSONObject)
		if !isObj {
			child = models.NewJSONObject()
			cur.Set(seg.Key, child)
		}
		cur = child
	}
	cur.Set(segs[len(segs)-1].Key, value)
	return data
}

// ResolveGroups resolves the root into record groups. A root holding
// nested arrays ([[...],[...]]) yields one group per inner array
// (grouped=true); a flat array of objects collapses into a single group;
// a lone object is one group of one. Non-object entries are skipped.
func ResolveGroups(root models.JSONValue, rootPath string) ([][]*models.JSONObject, bool) {
	target, ok := ResolveRoot(root, rootPath)
	if !ok || target == nil {
		return nil, false
	}

	grouped := false
	var groups [][]*models.JSONObject
	for _, entry := range iterationSet(target) {
		switch e := entry.(type) {
		case models.JSONArray:
			grouped = true
			group := make([]*models.JSONObject, 0, len(e))
			for _, x := range e {
				if obj, isObj := x.(*models.JSONObject); isObj {
					group = append(group, obj)
				}
			}
			groups = append(groups, group)
		case *models.JSONObject:
			groups = append(groups, []*models.JSONObject{e})
		}
	}

	if !grouped && len(groups) > 0 {
		flat := make([]*models.JSONObject, 0, len(groups))
		for _, g := range groups {
			flat = append(flat, g...)
		}
		groups = [][]*models.JSONObject{flat}
	}
	return groups, grouped
}

// Count reports the number of records (and groups, for grouped datasets)
// under a root path. Used for status display, never for extraction.
func Count(root models.JSONValue, rootPath string) (records, groups int) {
	gs, grouped := ResolveGroups(root, rootPath)
	for _, g := range gs {
		records += len(g)
	}
	if grouped {
		groups = len(gs)
	}
	return records, groups
}

// RecordKeys lists the leaf field paths observed across the iteration
// elements under rootPath, sampled up to sampleLimit records, sorted.
// Container paths with children are skipped and array markers are dropped,
// so each entry is directly usable as a selection with the root prefix
// applied by the caller.
func RecordKeys(root models.JSONValue, rootPath string, sampleLimit int) []string {
	groups, _ := ResolveGroups(root, rootPath)
	if sampleLimit <= 0 {
		sampleLimit = 1
	}
	seen := make(map[string]struct{})
	var out []string
	remaining := sampleLimit
	for _, group := range groups {
		for _, record := range group {
			for _, p := range leafFieldPaths(schema.Infer(record)) {
				if _, dup := seen[p]; !dup {
					seen[p] = struct{}{}
					out = append(out, p)
				}
			}
			remaining--
			if remaining <= 0 {
				sort.Strings(out)
				return out
			}
		}
	}
	sort.Strings(out)
	return out
}

// leafFieldPaths walks a schema tree and collects childless node paths,
// folding array element markers back onto the array path itself.
func leafFieldPaths(n *schema.Node) []string {
	var out []string
	n.Walk(func(node *schema.Node, depth int) {
		if node.Path == "" || len(node.Children) > 0 {
			return
		}
		p := node.Path
		for strings.HasSuffix(p, "[]") {
			p = p[:len(p)-2]
		}
		if p != "" {
			out = append(out, p)
		}
	})
	return out
}
