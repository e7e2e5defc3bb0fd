package extractor

import (
	"encoding/json"
	"testing"

	stderrors "errors"

	"github.com/stretchr/testify/require"

	"github.com/jsift/jsift/internal/errors"
	"github.com/jsift/jsift/internal/models"
	"github.com/jsift/jsift/internal/parser"
	"github.com/jsift/jsift/internal/paths"
)

func mustParse(t *testing.T, in string) models.Document {
	t.Helper()
	doc, err := parser.ParseString(in)
	require.NoError(t, err)
	return doc
}

func TestExtract_RoundTrip(t *testing.T) {
	doc := mustParse(t, `{"a":[{"x":1},{"x":2,"y":3}]}`)
	result, err := Extract(doc, "a", []models.FieldSelection{
		{SourcePath: "a[].x", OutputName: "X"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"X"}, result.Columns)
	require.Len(t, result.Records, 2)

	v0, _ := result.Records[0].Get("X")
	require.Equal(t, json.Number("1"), v0)
	v1, _ := result.Records[1].Get("X")
	require.Equal(t, json.Number("2"), v1)
}

func TestExtract_MissingFieldTolerance(t *testing.T) {
	doc := mustParse(t, `{"a":[{"x":1},{"x":2,"y":3}]}`)
	result, err := Extract(doc, "a", []models.FieldSelection{
		{SourcePath: "a[].y", OutputName: "Y"},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2, "missing field must not drop the record")

	v0, present := result.Records[0].Get("Y")
	require.True(t, present)
	require.Nil(t, v0)
	v1, _ := result.Records[1].Get("Y")
	require.Equal(t, json.Number("3"), v1)
}

func TestExtract_InvalidRootPath(t *testing.T) {
	doc := mustParse(t, `{"a":[{"x":1}]}`)
	result, err := Extract(doc, "zzz", []models.FieldSelection{
		{SourcePath: "zzz[].x", OutputName: "X"},
	})
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.ErrInvalidPath))
	require.Empty(t, result.Records, "no partial output on invalid root")
}

func TestExtract_NullRootYieldsNoRecords(t *testing.T) {
	doc := mustParse(t, `{"a":null}`)
	result, err := Extract(doc, "a", []models.FieldSelection{
		{SourcePath: "a[].x", OutputName: "X"},
	})
	require.NoError(t, err, "a root holding null is resolvable, just empty")
	require.Empty(t, result.Records)
	require.Equal(t, []string{"X"}, result.Columns, "columns survive for a header-only export")
}

func TestExtract_EmptySelection(t *testing.T) {
	doc := mustParse(t, `{"a":1}`)
	_, err := Extract(doc, paths.Root, nil)
	require.Error(t, err)
	require.True(t, stderrors.Is(err, errors.ErrEmptySelection))
}

func TestExtract_ScalarRootYieldsSingleRecord(t *testing.T) {
	doc := mustParse(t, `{"name":"n","count":2}`)
	result, err := Extract(doc, paths.Root, []models.FieldSelection{
		{SourcePath: "name"},
		{SourcePath: "count"},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	v, _ := result.Records[0].Get("name")
	require.Equal(t, "n", v)
}

func TestExtract_AbsolutePathOutsideRoot(t *testing.T) {
	doc := mustParse(t, `{"meta":{"v":"1.2"},"items":[{"id":1},{"id":2}]}`)
	result, err := Extract(doc, "items", []models.FieldSelection{
		{SourcePath: "items[].id", OutputName: "id"},
		{SourcePath: "meta.v", OutputName: "version"},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	for _, rec := range result.Records {
		v, _ := rec.Get("version")
		require.Equal(t, "1.2", v, "document-level fields ride along with every record")
	}
}

func TestExtract_NestedArrayFirstMatch(t *testing.T) {
	doc := mustParse(t, `{"rows":[{"tags":[{"n":"t1"},{"n":"t2"}]}]}`)
	result, err := Extract(doc, "rows", []models.FieldSelection{
		{SourcePath: "rows[].tags[].n", OutputName: "tag"},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 1)

	v, _ := result.Records[0].Get("tag")
	require.Equal(t, "t1", v, "nested multi-valued sub-paths keep the first match")
}

func TestExtract_DirectArraySelection(t *testing.T) {
	doc := mustParse(t, `{"rows":[{"tags":["a","b"]}]}`)
	result, err := Extract(doc, "rows", []models.FieldSelection{
		{SourcePath: "rows[].tags", OutputName: "tags"},
	})
	require.NoError(t, err)

	v, _ := result.Records[0].Get("tags")
	arr, ok := v.(models.JSONArray)
	require.True(t, ok, "a directly selected array stays an array, got %T", v)
	require.Len(t, arr, 2)
}

func TestExtract_ArrayRootedDocument(t *testing.T) {
	doc := mustParse(t, `[{"id":1},{"id":2}]`)
	result, err := Extract(doc, paths.Root, []models.FieldSelection{
		{SourcePath: "id"},
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	v, _ := result.Records[1].Get("id")
	require.Equal(t, json.Number("2"), v)
}

func TestOutputName_Defaults(t *testing.T) {
	require.Equal(t, "city", OutputName(models.FieldSelection{SourcePath: "user.addresses[].city"}))
	require.Equal(t, "X", OutputName(models.FieldSelection{SourcePath: "a[].x", OutputName: "X"}))
	require.Equal(t, "a", OutputName(models.FieldSelection{SourcePath: "a[]"}))
}

func TestResolveField_MissingIntermediate(t *testing.T) {
	doc := mustParse(t, `{"a":{"b":1}}`)
	require.Nil(t, ResolveField(doc.Root, "a.missing.deeper"))
	require.Nil(t, ResolveField(doc.Root, "nope"))
	require.Equal(t, json.Number("1"), ResolveField(doc.Root, "a.b"))
}

func TestResolveGroups_Flat(t *testing.T) {
	doc := mustParse(t, `[{"id":1},{"id":2},3]`)
	groups, grouped := ResolveGroups(doc.Root, paths.Root)
	require.False(t, grouped)
	require.Len(t, groups, 1)
	require.Len(t, groups[0], 2, "non-object entries are skipped")
}

func TestResolveGroups_Grouped(t *testing.T) {
	doc := mustParse(t, `[[{"id":1}],[{"id":2},{"id":3}]]`)
	groups, grouped := ResolveGroups(doc.Root, paths.Root)
	require.True(t, grouped)
	require.Len(t, groups, 2)
	require.Len(t, groups[0], 1)
	require.Len(t, groups[1], 2)
}

func TestCount(t *testing.T) {
	doc := mustParse(t, `[[{"id":1}],[{"id":2},{"id":3}]]`)
	records, groups := Count(doc.Root, paths.Root)
	require.Equal(t, 3, records)
	require.Equal(t, 2, groups)

	flat := mustParse(t, `{"a":[{"id":1},{"id":2}]}`)
	records, groups = Count(flat.Root, "a")
	require.Equal(t, 2, records)
	require.Equal(t, 0, groups)
}

func TestRecordKeys(t *testing.T) {
	doc := mustParse(t, `{"a":[{"x":1},{"y":{"z":2}}]}`)
	keys := RecordKeys(doc.Root, "a", 50)
	require.Equal(t, []string{"x", "y.z"}, keys, "containers with children are not listed")
}

func TestRecordKeys_ArrayFieldsListedOnce(t *testing.T) {
	doc := mustParse(t, `{"a":[{"tags":["p","q"],"empty":[]}]}`)
	keys := RecordKeys(doc.Root, "a", 50)
	require.Equal(t, []string{"empty", "tags"}, keys, "array markers are folded onto the field path")
}

func TestRecordKeys_SampleLimit(t *testing.T) {
	doc := mustParse(t, `{"a":[{"x":1},{"y":2}]}`)
	keys := RecordKeys(doc.Root, "a", 1)
	require.Equal(t, []string{"x"}, keys, "sampling stops after the limit")
}

func TestSetByPath(t *testing.T) {
	doc := mustParse(t, `{"data":{"users":[1],"meta":"m"}}`)
	out := SetByPath(doc.Root, "data.users", "replaced")

	obj := out.(*models.JSONObject)
	dataVal, _ := obj.Get("data")
	data := dataVal.(*models.JSONObject)
	users, _ := data.Get("users")
	require.Equal(t, "replaced", users)
	meta, _ := data.Get("meta")
	require.Equal(t, "m", meta, "siblings survive")
}

func TestSetByPath_CreatesIntermediates(t *testing.T) {
	root := models.NewJSONObject()
	out := SetByPath(root, "a.b.c", json.Number("1"))
	obj := out.(*models.JSONObject)
	a, _ := obj.Get("a")
	b, _ := a.(*models.JSONObject).Get("b")
	c, _ := b.(*models.JSONObject).Get("c")
	require.Equal(t, json.Number("1"), c)
}
