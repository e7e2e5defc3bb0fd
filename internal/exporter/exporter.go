// Package exporter serializes extraction results to CSV or JSON. Output
// is deterministic: the same result yields identical bytes across calls.
package exporter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jsift/jsift/internal/errors"
	"github.com/jsift/jsift/internal/models"
)

// Format is the requested output encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat validates a user-supplied format string.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", errors.NewExportError(
			fmt.Sprintf("format %q is not supported", s),
			errors.ErrUnsupportedFormat,
		)
	}
}

// Options controls tabular rendering.
type Options struct {
	// Delimiter is the CSV field separator. Zero means ','.
	Delimiter rune
	// NullText is what a nil cell renders as in CSV. Defaults to empty.
	NullText string
}

// Export serializes result in the given format.
func Export(result models.ExtractionResult, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ToCSV(result, opts)
	case FormatJSON:
		return ToJSON(result)
	default:
		return nil, errors.NewExportError(
			fmt.Sprintf("format %q is not supported", format),
			errors.ErrUnsupportedFormat,
		)
	}
}

// ToCSV renders records as CSV: a header of the deduplicated output names
// in first-seen order, then one row per record. Fields missing from a
// record render as empty cells. Zero records still produce the header row.
func ToCSV(result models.ExtractionResult, opts Options) ([]byte, error) {
	header, err := columns(result)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if opts.Delimiter != 0 {
		w.Comma = opts.Delimiter
	}

	if err := w.Write(header); err != nil {
		return nil, errors.NewExportError("failed to write CSV header", err)
	}
	row := make([]string, len(header))
	for _, rec := range result.Records {
		for i, name := range header {
			v, ok := rec.Get(name)
			if !ok {
				row[i] = ""
				continue
			}
			row[i] = cellString(v, opts.NullText)
		}
		if err := w.Write(row); err != nil {
			return nil, errors.NewExportError("failed to write CSV row", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errors.NewExportError("failed to flush CSV output", err)
	}
	return buf.Bytes(), nil
}

// ToJSON renders records as an indented JSON array of objects, preserving
// each record's field insertion order and native value types.
func ToJSON(result models.ExtractionResult) ([]byte, error) {
	if _, err := columns(result); err != nil {
		return nil, err
	}
	records := result.Records
	if records == nil {
		records = []*models.Record{}
	}
	out, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, errors.NewExportError("failed to encode records as JSON", err)
	}
	return out, nil
}

// columns computes the output header: the result's selection-order
// columns (or, absent those, names gathered from the records first-seen),
// rejecting duplicate output names.
func columns(result models.ExtractionResult) ([]string, error) {
	names := result.Columns
	if len(names) == 0 {
		for _, rec := range result.Records {
			names = append(names, rec.Names()...)
		}
	}

	seen := make(map[string]struct{}, len(names))
	header := make([]string, 0, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			// Duplicates within the original selection columns are a caller
			// error; repeats collected across records are just deduped.
			if len(result.Columns) > 0 {
				return nil, errors.NewExportError(
					fmt.Sprintf("output name %q is used by more than one selection", name),
					errors.ErrDuplicateOutputName,
				)
			}
			continue
		}
		seen[name] = struct{}{}
		header = append(header, name)
	}
	return header, nil
}

// cellString reduces a value to its CSV cell text. Scalars stringify
// plainly; arrays of scalars join with ", "; any other composite value is
// serialized as compact JSON so every cell stays representable as text.
func cellString(v models.JSONValue, nullText string) string {
	switch val := v.(type) {
	case nil:
		return nullText
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		if val {
			return "true"
		}
		return "false"
	case models.JSONArray:
		allScalar := true
		for _, e := range val {
			if !models.IsScalar(e) {
				allScalar = false
				break
			}
		}
		if allScalar {
			parts := make([]string, len(val))
			for i, e := range val {
				parts[i] = cellString(e, "")
			}
			return strings.Join(parts, ", ")
		}
		return compactJSON(val)
	default:
		return compactJSON(val)
	}
}

func compactJSON(v models.JSONValue) string {
	out, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

// SuggestedFilename normalizes a requested output name for a format,
// generating a unique name when none was given and appending the format's
// extension when missing.
func SuggestedFilename(base string, format Format) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = "export_" + uuid.NewString()
	}
	ext := "." + string(format)
	if !strings.HasSuffix(strings.ToLower(base), ext) {
		base += ext
	}
	return base
}
