package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/davecgh/go-spew/spew"
	"github.com/rom111419/formtree/internal/config"
	"github.com/rom111419/formtree/internal/errors"
	"github.com/rom111419/formtree/internal/formatter"
	"github.com/rom111419/formtree/internal/generator"
	"github.com/rom111419/formtree/internal/logging"
	"github.com/rom111419/formtree/internal/models"
	"github.com/rom111419/formtree/internal/parser"
	"github.com/rom111419/formtree/internal/schema"
	"github.com/rom111419/formtree/pkg/formtree"
)

// CLI defines the command-line interface
var CLI struct {
	Input       string `help:"Path to input JSON or YAML file. If not specified, reads from stdin." short:"i" type:"path"`
	Output      string `help:"Path to output file. If not specified, writes to stdout." short:"o" type:"path"`
	Schema      string `help:"Path to a JSON Schema; builds the tree for a sample value seeded from it." short:"s" type:"path"`
	InputFormat string `help:"Input format: auto, json or yaml." name:"input-format"`
	Format      string `help:"Output format: json, yaml or outline." short:"f"`
	Root        string `help:"Wrap the tree in a group with this single field name." short:"r"`
	Nested      string `help:"What to do with objects nested in objects: nest or drop."`
	MaxDepth    int    `help:"Maximum nesting depth of the tree." name:"max-depth"`
	Config      string `help:"Path to config file. If not specified, searches for .formtree.yml up from the working directory." short:"c" type:"path"`
	NoColor     bool   `help:"Disable coloured outline output." name:"no-color"`
	Debug       bool   `help:"Enable debug logging and dump the built tree to stderr." short:"d"`
	Version     bool   `help:"Show version information." short:"v"`
	Interactive bool   `help:"Run in interactive mode, allowing direct input with Ctrl+D to process." short:"I"`
}

// Context holds the runtime context
type Context struct {
	Debug  bool
	Config *config.Config
	Logger *slog.Logger
}

// Version information
const (
	Version = "0.1.0"
)

var dumper = spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true, SortKeys: true}

func main() {
	parser := kong.Must(&CLI,
		kong.Name("formtree"),
		kong.Description("A tool to turn JSON and YAML values into editable form field trees"),
		kong.UsageOnError(),
	)

	// Check if no arguments provided and set interactive mode by default
	if len(os.Args) == 1 {
		CLI.Interactive = true
	}

	if _, err := parser.Parse(os.Args[1:]); err != nil {
		// If there's an error parsing arguments, the usage will already be shown by kong.UsageOnError()
		os.Exit(1)
	}

	if CLI.Version {
		fmt.Printf("formtree version %s\n", Version)
		return
	}

	configPath := CLI.Config
	if configPath == "" {
		configPath = config.FindConfigFile()
	}
	cfg, err := config.LoadConfigWithCLI(configPath, config.CLIOverrides{
		RootField:     CLI.Root,
		NestedObjects: CLI.Nested,
		MaxDepth:      CLI.MaxDepth,
		InputFormat:   CLI.InputFormat,
		OutputFormat:  CLI.Format,
		NoColor:       CLI.NoColor,
		Debug:         CLI.Debug,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		os.Exit(1)
	}

	logger := logging.New(logging.LevelFor(cfg.Dev.Debug))
	if configPath != "" {
		logger.Debug("loaded config", "path", configPath)
	}

	if err := run(&Context{Debug: cfg.Dev.Debug, Config: cfg, Logger: logger}); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", errors.UserFriendlyError(err))
		logger.Debug("run failed", "error", err)

		fmt.Fprintf(os.Stderr, "\nFor help, run: formtree --help\n")

		os.Exit(1)
	}
}

// run executes the main program logic
func run(ctx *Context) error {
	// 1. Read or seed the input value
	root, err := loadInput(ctx)
	if err != nil {
		return err
	}

	// 2. Build the form tree
	builder, err := config.NewBuilderWithConfig(ctx.Config, ctx.Logger)
	if err != nil {
		return err
	}
	tree, err := builder.Build(root, ctx.Config.Build.RootField)
	if err != nil {
		return errors.NewBuildError("failed to build form tree", err)
	}
	nodes, depth := treeSummary(tree)
	ctx.Logger.Debug("built form tree", "nodes", nodes, "depth", depth)
	if ctx.Debug {
		fmt.Fprint(os.Stderr, dumper.Sdump(tree))
	}

	// 3. Render it
	format, err := generator.ParseOutputFormat(ctx.Config.Output.Format)
	if err != nil {
		return err
	}
	colors := formatter.NoColors()
	if CLI.Output == "" {
		colors = formatter.ColorsFor(os.Stdout, ctx.Config.Output.Color)
	}
	out, err := generator.NewGeneratorWithConfig(ctx.Config, colors).Generate(tree, format)
	if err != nil {
		return err
	}

	// 4. Output the result
	return writeOutput(out)
}

// loadInput returns the value to build: a seed when a schema is given, otherwise the
// parsed input document.
func loadInput(ctx *Context) (any, error) {
	if CLI.Schema != "" {
		if CLI.Input != "" {
			return nil, errors.NewInputError("cannot specify both --input and --schema", nil)
		}
		s, err := schema.ParseFile(CLI.Schema)
		if err != nil {
			return nil, err
		}
		seed, err := schema.NewSeeder(s, schema.WithLogger(ctx.Logger)).Seed()
		if err != nil {
			return nil, err
		}
		ctx.Logger.Debug("seeded value from schema", "path", CLI.Schema)
		return seed, nil
	}

	doc, err := parseInput(models.Format(ctx.Config.Input.Format))
	if err != nil {
		return nil, err
	}
	ctx.Logger.Debug("parsed input", "format", doc.Format, "root", doc.RootKind, "source", doc.Source)
	return doc.Root, nil
}

// parseInput reads a document from file or stdin
func parseInput(format models.Format) (models.Document, error) {
	if CLI.Input != "" {
		return parser.ParseFile(CLI.Input, format)
	}

	// Check if stdin has data
	stdinInfo, err := os.Stdin.Stat()
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to access stdin", err)
	}

	// Interactive mode or piped input
	if (stdinInfo.Mode() & os.ModeCharDevice) != 0 {
		// Terminal is interactive (not piped)
		if CLI.Interactive {
			return readInteractiveInput(format)
		}
		return models.Document{}, errors.NewInputError("no input provided", errors.ErrNoInput)
	}

	// Read from stdin (piped input)
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return models.Document{}, errors.NewInputError("failed to read from stdin", err)
	}

	if len(data) == 0 {
		return models.Document{}, errors.NewInputError("empty input received from stdin", errors.ErrEmptyInput)
	}

	return parser.ParseBytes(data, format)
}

// writeOutput writes the rendered tree to file or stdout
func writeOutput(out string) error {
	if CLI.Output != "" {
		err := os.WriteFile(CLI.Output, []byte(out), 0644)
		if err != nil {
			return errors.NewOutputError(fmt.Sprintf("failed to write to file '%s'", CLI.Output), err)
		}
		fmt.Fprintf(os.Stderr, "Form tree written to %s\n", CLI.Output)
		return nil
	}

	_, err := fmt.Fprint(os.Stdout, out)
	if err != nil {
		return errors.NewOutputError("failed to write to stdout", err)
	}
	return nil
}

// readInteractiveInput provides an interactive mode for users to paste JSON or YAML
// and signal completion with Ctrl+D (EOF)
func readInteractiveInput(format models.Format) (models.Document, error) {
	fmt.Fprintln(os.Stderr, "formtree Interactive Mode")
	fmt.Fprintln(os.Stderr, "Paste your JSON or YAML below and press Ctrl+D (or Ctrl+Z on Windows) when done:")

	reader := bufio.NewReader(os.Stdin)
	var input strings.Builder

	for {
		line, err := reader.ReadString('\n')
		input.WriteString(line)
		if err == io.EOF {
			break
		}
		if err != nil {
			return models.Document{}, errors.NewInputError("error reading input", err)
		}
	}

	data := input.String()
	if strings.TrimSpace(data) == "" {
		return models.Document{}, errors.NewInputError("empty input received", errors.ErrEmptyInput)
	}

	fmt.Fprintln(os.Stderr, "\nProcessing input...")
	return parser.ParseString(data, format)
}

// treeSummary counts the nodes of n and the length of its deepest path.
func treeSummary(n formtree.Node) (nodes int, depth int) {
	_ = formtree.Walk(n, func(path formtree.Path, _ formtree.Node) error {
		nodes++
		if len(path) > depth {
			depth = len(path)
		}
		return nil
	})
	return nodes, depth
}
