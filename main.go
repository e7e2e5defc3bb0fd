package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/olekukonko/tablewriter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jsift/jsift/internal/config"
	"github.com/jsift/jsift/internal/errors"
	"github.com/jsift/jsift/internal/exporter"
	"github.com/jsift/jsift/internal/extractor"
	"github.com/jsift/jsift/internal/merge"
	"github.com/jsift/jsift/internal/models"
	"github.com/jsift/jsift/internal/parser"
	"github.com/jsift/jsift/internal/paths"
	"github.com/jsift/jsift/internal/schema"
)

// CLI defines the command-line interface
var CLI struct {
	Input   string           `help:"Path to input JSON file. If not specified, reads from stdin." short:"i" type:"path"`
	Config  string           `help:"Path to config file. Defaults to the nearest .jsift.yml." short:"c" type:"path"`
	Debug   bool             `help:"Enable debug logging." short:"d"`
	Version kong.VersionFlag `help:"Show version information." short:"v"`

	Schema  SchemaCmd  `cmd:"" help:"Infer and print the document's schema tree."`
	Extract ExtractCmd `cmd:"" help:"Extract selected fields into CSV or JSON records."`
	Merge   MergeCmd   `cmd:"" help:"Join a secondary dataset into the primary on shared keys."`
}

// Context holds the runtime context shared by commands
type Context struct {
	Config *config.Config
}

// Version information
const (
	Version = "0.1.0"
)

func main() {
	parser := kong.Must(&CLI,
		kong.Name("jsift"),
		kong.Description("Infer the schema of a JSON document and extract selected fields to CSV or JSON"),
		kong.UsageOnError(),
		kong.Vars{"version": "jsift version " + Version},
	)

	ctx, err := parser.Parse(os.Args[1:])
	if err != nil {
		// Usage is already shown by kong.UsageOnError()
		os.Exit(1)
	}

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, NoColor: true})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if CLI.Debug || cfg.Dev.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Debug().Msg("debug logging enabled")
	}

	if err := ctx.Run(&Context{Config: cfg}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		fmt.Fprintf(os.Stderr, "\nFor help, run: jsift --help\n")
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	path := CLI.Config
	if path == "" {
		path = config.FindConfigFile()
	}
	if path == "" {
		return config.NewConfig(), nil
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.NewInputError(fmt.Sprintf("failed to load config '%s'", path), err)
	}
	log.Debug().Str("path", path).Msg("loaded config file")
	return cfg, nil
}

// parseInput reads JSON from file or stdin
func parseInput() (models.Document, error) {
	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input)
	}

	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to access stdin", err)
	}
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal without piped input
		return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	jsonData, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}
	if len(jsonData) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}
	return parser.ParseString(string(jsonData))
}

// writeOutput writes bytes to a file or stdout
func writeOutput(data []byte, path string) error {
	if path != "" {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", path), err)
		}
		fmt.Fprintf(os.Stderr, "Output written to %s\n", path)
		return nil
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Println()
	}
	return nil
}

// SchemaCmd prints the inferred schema tree, one line per discovered path.
type SchemaCmd struct {
	Root   string `help:"List field paths relative to the records under this root path instead of the full tree."`
	Arrays bool   `help:"List only the array paths usable as extraction roots."`
}

func (c *SchemaCmd) Run(ctx *Context) error {
	doc, err := parseInput()
	if err != nil {
		return err
	}

	if c.Arrays {
		for _, p := range schema.ArrayPaths(doc.Root) {
			fmt.Println(p)
		}
		return nil
	}

	if c.Root != "" && !paths.IsRoot(c.Root) {
		if _, ok := extractor.ResolveRoot(doc.Root, c.Root); !ok {
			return errors.NewExtractError(
				fmt.Sprintf("root path %q does not resolve within the document", c.Root),
				errors.ErrInvalidPath,
			)
		}
		for _, key := range extractor.RecordKeys(doc.Root, c.Root, ctx.Config.Schema.SampleLimit) {
			fmt.Println(key)
		}
		return nil
	}

	tree := schema.Infer(doc.Root)
	records, groups := extractor.Count(doc.Root, paths.Root)
	log.Debug().Int("records", records).Int("groups", groups).Msg("document loaded")

	tree.Walk(func(node *schema.Node, depth int) {
		if node.Path == "" {
			return
		}
		indent := strings.Repeat("  ", depth-1)
		line := fmt.Sprintf("%s%s  (%s)", indent, node.Path, node.Kind)
		if node.Sample != nil {
			line += fmt.Sprintf("  e.g. %v", node.Sample)
		}
		fmt.Println(line)
	})
	return nil
}

// ExtractCmd re-walks the document and serializes the selected fields.
type ExtractCmd struct {
	Root    string   `help:"Root path used as the unit of iteration: one record per element of the array at this path." default:"(root)"`
	Select  []string `help:"Field to extract, as 'path' or 'path=name'. Repeatable." short:"s"`
	Format  string   `help:"Output format: csv or json. Overrides the config default." short:"f"`
	Output  string   `help:"Path to output file. If not specified, writes to stdout." short:"o"`
	Preview bool     `help:"Render the first rows as a table instead of exporting." short:"P"`
}

func (c *ExtractCmd) Run(ctx *Context) error {
	doc, err := parseInput()
	if err != nil {
		return err
	}

	formatStr := c.Format
	if formatStr == "" {
		formatStr = ctx.Config.Output.Format
	}
	format, err := exporter.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	selections, err := parseSelections(c.Select, ctx.Config)
	if err != nil {
		return err
	}

	result, err := extractor.Extract(doc, c.Root, selections)
	if err != nil {
		return err
	}
	log.Debug().Int("records", len(result.Records)).Int("fields", len(result.Columns)).Msg("extraction complete")

	if c.Preview {
		return renderPreview(result, ctx.Config)
	}

	data, err := exporter.Export(result, format, exporter.Options{
		Delimiter: ctx.Config.DelimiterRune(),
		NullText:  ctx.Config.Output.NullText,
	})
	if err != nil {
		return err
	}

	out := c.Output
	if out != "" {
		out = exporter.SuggestedFilename(out, format)
	}
	return writeOutput(data, out)
}

// parseSelections turns --select values into field selections, applying
// the configured header naming to defaulted names.
func parseSelections(raw []string, cfg *config.Config) ([]models.FieldSelection, error) {
	selections := make([]models.FieldSelection, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		path, name, renamed := strings.Cut(s, "=")
		sel := models.FieldSelection{SourcePath: path}
		if renamed && strings.TrimSpace(name) != "" {
			sel.OutputName = strings.TrimSpace(name)
		} else {
			sel.OutputName = cfg.HeaderName(extractor.OutputName(sel))
		}
		selections = append(selections, sel)
	}
	if len(selections) == 0 {
		return nil, errors.NewExtractError("no fields selected", errors.ErrEmptySelection)
	}
	return selections, nil
}

func renderPreview(result models.ExtractionResult, cfg *config.Config) error {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetRowLine(true)

	header := make([]string, 0, len(result.Columns))
	seen := make(map[string]struct{})
	for _, name := range result.Columns {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		header = append(header, name)
	}
	table.SetHeader(header)

	limit := cfg.Preview.Rows
	for i, rec := range result.Records {
		if i >= limit {
			break
		}
		row := make([]string, len(header))
		for j, name := range header {
			v, _ := rec.Get(name)
			row[j] = previewCell(v)
		}
		table.Append(row)
	}
	table.Render()
	if len(result.Records) > limit {
		fmt.Printf("... and %d more records\n", len(result.Records)-limit)
	}
	return nil
}

func previewCell(v models.JSONValue) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		if b, err := json.Marshal(val); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", val)
	}
}

// MergeCmd joins a secondary dataset into the primary document.
type MergeCmd struct {
	Secondary     string   `arg:"" help:"Path to the secondary JSON file." type:"path"`
	Root          string   `help:"Primary root path." default:"(root)"`
	SecondaryRoot string   `help:"Secondary root path." default:"(root)"`
	JoinKey       []string `help:"Field path present in both datasets to join on. Repeatable." short:"k"`
	Output        string   `help:"Path to output file. If not specified, writes to stdout." short:"o"`
}

func (c *MergeCmd) Run(ctx *Context) error {
	primary, err := parseInput()
	if err != nil {
		return err
	}
	secondary, err := parser.ParseFile(c.Secondary)
	if err != nil {
		return err
	}

	mergedValue, stats, err := merge.Merge(primary.Root, secondary.Root, c.Root, c.SecondaryRoot, c.JoinKey)
	if err != nil {
		return err
	}

	log.Info().
		Int("matches", stats.MatchPairs).
		Int("primary_total", stats.PrimaryTotal).
		Int("primary_only", stats.PrimaryOnly).
		Int("secondary_total", stats.SecondaryTotal).
		Int("secondary_only", stats.SecondaryOnly).
		Msg("merge complete")

	data, err := json.MarshalIndent(mergedValue, "", "  ")
	if err != nil {
		return errors.NewOutputError("failed to encode merged document", err)
	}

	out := c.Output
	if out != "" {
		out = exporter.SuggestedFilename(out, exporter.FormatJSON)
	}
	return writeOutput(data, out)
}
