// Copyright IBM Corp. 2021, 2025
// SPDX-License-Identifier: MPL-2.0

package command

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/pii-obfuscator/obfuscator/agent"
	"github.com/pii-obfuscator/obfuscator/format"
	"github.com/pii-obfuscator/obfuscator/hcl"
	"github.com/pii-obfuscator/obfuscator/location"
	"github.com/pii-obfuscator/obfuscator/op"
	"github.com/pii-obfuscator/obfuscator/storage"
)

var _ cli.Command = &RunCommand{}

type RunCommand struct {
	ui    cli.Ui
	flags *flag.FlagSet

	input  string
	output string

	// fields holds -pii_fields; positional arguments are appended after parsing
	fields []string

	// HCL file location
	config string

	// manifest is where the run manifest is written, if anywhere
	manifest string

	// newGateway builds the storage for a run; tests swap it for a fake
	newGateway func(ctx context.Context, cfg storage.Config, l hclog.Logger, schemes ...string) (storage.Gateway, error)
}

func (c *RunCommand) init() {
	const (
		inputUsageText     = "Location of the file to obfuscate: a local path, or an s3://, gs:// or file:// URI. The file extension selects the format."
		outputUsageText    = "Location the obfuscated file is written to: a local path, or an s3://, gs:// or file:// URI. The file keeps the input's format."
		piiFieldsUsageText = "Comma-separated names of the fields to obfuscate; e.g. 'name,email_address'. Arguments after the options are added as more fields."
		configUsageText    = "Path to HCL configuration file"
		manifestUsageText  = "Path to write a JSON manifest of the run to. The manifest names fields but never contains their values."
	)

	// flag.ContinueOnError allows flag.Parse to return an error if one comes up, rather than doing an `os.Exit(2)`
	// on its own.
	c.flags = flag.NewFlagSet("run", flag.ContinueOnError)

	c.flags.StringVar(&c.input, "input_file_path", "", inputUsageText)
	c.flags.StringVar(&c.output, "output_file_path", "", outputUsageText)
	c.flags.Var(&CSVFlag{&c.fields}, "pii_fields", piiFieldsUsageText)
	c.flags.StringVar(&c.config, "config", "", configUsageText)
	c.flags.StringVar(&c.manifest, "manifest", "", manifestUsageText)

	// When invalid flags are provided, Go will output a usage message of its own. If we direct our flag set to
	// io.Discard, it will effectively be hidden, allowing us to print our own Help message upon failure.
	c.flags.SetOutput(io.Discard)

	c.newGateway = func(ctx context.Context, cfg storage.Config, l hclog.Logger, schemes ...string) (storage.Gateway, error) {
		return storage.New(ctx, cfg, l, schemes...)
	}
}

// NewRunCommand produces a new *command pointer, initialized for use in a CLI application.
func NewRunCommand(ui cli.Ui) *RunCommand {
	c := &RunCommand{ui: ui}
	c.init()
	return c
}

// RunCommandFactory provides a cli.CommandFactory that will produce an appropriately-initiated *command.
func RunCommandFactory(ui cli.Ui) cli.CommandFactory {
	return func() (cli.Command, error) {
		return NewRunCommand(ui), nil
	}
}

// Help provides help text to users who pass in the --help flag or who enter invalid options.
func (c *RunCommand) Help() string {
	helpText := `Usage: obfuscator run [options] [field ...]

Replaces the values of the given PII fields with *** and writes the result to the output location. The first
field of every record is its primary key and is never obfuscated.
`

	return Usage(helpText, c.flags, Section{
		Title: "Supported Formats",
		Body:  strings.Join(format.Extensions(), ", "),
	})
}

// Synopsis provides a brief description of the command, for inclusion in the application's primary --help.
func (c *RunCommand) Synopsis() string {
	return "Obfuscate the PII fields of a file"
}

// Run executes the command.
func (c *RunCommand) Run(args []string) int {
	if err := c.parseFlags(args); err != nil {
		// Output the specific error to help the user understand what went wrong.
		c.ui.Warn(err.Error())
		// Since there was an issue in input, let's show our Help to try and assist the user.
		c.ui.Warn(c.Help())
		return FlagParseError
	}

	l := configureLogging("obfuscator")

	var hclCfg hcl.HCL
	if c.config != "" {
		var err error
		hclCfg, err = hcl.Parse(c.config)
		if err != nil {
			l.Error("Failed to load configuration", "config", c.config, "error", err)
			return ConfigError
		}
		l.Debug("HCL config is", "hcl", hclCfg)
	}

	cfg := c.mergeAgentConfig(hclCfg)
	if len(cfg.PIIFields) == 0 {
		c.ui.Warn(ArgumentError{Arg: "pii_fields", Reason: "at least one field is required"}.Error())
		c.ui.Warn(c.Help())
		return FlagParseError
	}
	l.Debug("merged cfg", "cfg", fmt.Sprintf("%+v", cfg))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	storageCfg, err := hclCfg.StorageConfig()
	if err != nil {
		l.Error("Failed to load configuration", "config", c.config, "error", err)
		return ConfigError
	}

	gw, err := c.newGateway(ctx, storageCfg, l,
		location.Parse(cfg.Input).Scheme, location.Parse(cfg.Output).Scheme)
	if err != nil {
		l.Error("Failed to set up storage", "error", err)
		return StorageSetupError
	}

	a := agent.NewAgent(cfg, gw, l)
	runErr := a.Run(ctx)

	if c.manifest != "" {
		if err := writeManifest(c.manifest, a.Manifest()); err != nil {
			l.Error("Failed to write manifest", "manifest", c.manifest, "error", err)
			if runErr == nil {
				return OutputError
			}
		}
	}

	if runErr != nil {
		return returnCode(runErr)
	}

	if err := writeSummary(os.Stdout, cfg.Output, a.Ops); err != nil {
		l.Warn("failed to generate report summary; the output file was written", "err", err)
		return RunError
	}

	return Success
}

// configureLogging takes a logger name, sets the default configuration, grabs the LOG_LEVEL from our ENV vars, and
// returns a configured and usable logger.
func configureLogging(loggerName string) hclog.Logger {
	// Create logger, set default and log level
	appLogger := hclog.New(&hclog.LoggerOptions{
		Name:  loggerName,
		Color: hclog.AutoColor,
	})
	hclog.SetDefault(appLogger)
	if logStr := os.Getenv("LOG_LEVEL"); logStr != "" {
		if level := hclog.LevelFromString(logStr); level != hclog.NoLevel {
			appLogger.SetLevel(level)
			appLogger.Debug("Logger configuration change", "LOG_LEVEL", hclog.Fmt("%s", logStr))
		}
	}
	return hclog.Default()
}

type CSVFlag struct {
	Values *[]string
}

func (s CSVFlag) String() string {
	if s.Values == nil {
		return ""
	}
	return strings.Join(*s.Values, ",")
}

// Set splits v on commas. Blank entries are dropped and repeated flags accumulate.
func (s CSVFlag) Set(v string) error {
	for _, f := range strings.Split(v, ",") {
		if f = strings.TrimSpace(f); f != "" {
			*s.Values = append(*s.Values, f)
		}
	}
	return nil
}

// ArgumentError reports a missing or invalid command line argument.
type ArgumentError struct {
	Arg    string
	Reason string
}

func (e ArgumentError) Error() string {
	return fmt.Sprintf("invalid argument -%s: %s", e.Arg, e.Reason)
}

// parseFlags parses args and checks the required flags. Positional arguments are PII fields; flags may follow them,
// as in `-pii_fields name email -manifest m.json`, and everything after "--" is a field.
func (c *RunCommand) parseFlags(args []string) error {
	rest, terminated, err := c.parse(args)
	for err == nil && len(rest) > 0 {
		a := rest[0]
		switch {
		case terminated:
			err = c.addFields(rest...)
			rest = nil
		case len(a) > 1 && strings.HasPrefix(a, "-"):
			rest, terminated, err = c.parse(rest)
		default:
			err = c.addFields(a)
			rest = rest[1:]
		}
	}
	if err != nil {
		return err
	}
	if c.input == "" {
		return ArgumentError{Arg: "input_file_path", Reason: "a value is required"}
	}
	if c.output == "" {
		return ArgumentError{Arg: "output_file_path", Reason: "a value is required"}
	}
	return nil
}

// parse runs the flag set over args and reports whether it stopped at a "--" terminator.
func (c *RunCommand) parse(args []string) ([]string, bool, error) {
	if err := c.flags.Parse(args); err != nil {
		return nil, false, err
	}
	rest := c.flags.Args()
	n := len(args) - len(rest)
	return rest, n > 0 && args[n-1] == "--", nil
}

func (c *RunCommand) addFields(values ...string) error {
	for _, v := range values {
		if err := (CSVFlag{&c.fields}).Set(v); err != nil {
			return err
		}
	}
	return nil
}

// mergeAgentConfig builds the agent.Config from flags, adding any PII fields named in the HCL config.
func (c *RunCommand) mergeAgentConfig(h hcl.HCL) agent.Config {
	fields := make([]string, 0, len(c.fields)+len(h.PIIFields))
	fields = append(fields, c.fields...)
	fields = append(fields, h.PIIFields...)

	return agent.Config{
		Input:     c.input,
		Output:    c.output,
		PIIFields: fields,
	}
}

// returnCode maps a run error onto the most specific return code.
func returnCode(err error) int {
	var (
		unsupported format.UnsupportedFormatError
		formatErr   format.FormatError
		storageErr  storage.StorageError
	)
	switch {
	case errors.As(err, &unsupported):
		return UnsupportedFormatError
	case errors.As(err, &formatErr):
		return FormatError
	case errors.As(err, &storageErr):
		return StorageError
	default:
		return RunError
	}
}

func writeManifest(path string, m agent.Manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := m.WriteJSON(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func writeSummary(writer io.Writer, output string, ops []op.Op) error {
	if output == "" {
		output = "<unknown>"
	}
	helpText := fmt.Sprintf("File successfully obfuscated and saved to %s\n", output)
	_, err := writer.Write([]byte(helpText))
	if err != nil {
		return err
	}

	t := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
	headers := []string{"op", "status", "duration"}

	_, err = fmt.Fprint(t, formatReportLine(headers...))
	if err != nil {
		return err
	}

	for _, o := range ops {
		duration := "-"
		if o.Status != op.Skip {
			duration = o.Duration().String()
		}
		_, err := fmt.Fprint(t, formatReportLine(o.Identifier, string(o.Status), duration))
		if err != nil {
			return err
		}
	}

	err = t.Flush()
	if err != nil {
		return err
	}

	counts, err := op.StatusCounts(ops)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(writer, "\n%d %s, %d %s, %d %s, %d %s\n",
		counts[op.Success], op.Success, counts[op.Fail], op.Fail, counts[op.Skip], op.Skip, counts[op.Canceled], op.Canceled)
	return err
}

func formatReportLine(cells ...string) string {
	format := ""

	// The coercion from the argument of type []string to type []interface is required for the later
	// call to fmt.Sprintf, in which variadic arguments must be of type any/interface{}.
	strValues := make([]interface{}, len(cells))
	for i, cell := range cells {
		format += "%s\t"
		strValues[i] = cell
	}

	format += "\n"

	return fmt.Sprintf(format, strValues...)
}
