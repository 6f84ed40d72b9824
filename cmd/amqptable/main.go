// amqptable converts AMQP 0-9-1 field tables between their wire form and a
// tagged YAML rendering. It is meant for inspecting tables lifted out of
// captured frames and for producing test fixtures.
//
//	amqptable encode args.yaml > args.bin
//	amqptable decode --input-format hex --offset 12 frame.hex
package main

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/justicz/amqptable"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) < 1 {
		printUsage(stderr)
		return errors.New("missing command")
	}

	var err error
	switch args[0] {
	case "encode":
		err = encodeCmd(args[1:], stdin, stdout, stderr)
	case "decode":
		err = decodeCmd(args[1:], stdin, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	default:
		printUsage(stderr)
		return fmt.Errorf("unknown command %q", args[0])
	}

	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

func printUsage(w io.Writer) {
	fmt.Fprint(w, `Usage: amqptable <command> [flags] [file]

Commands:
  encode   read a YAML or JSONC table and write its wire form
  decode   read a wire-form table and print it as tagged YAML

Reads standard input when no file (or "-") is given. Run
"amqptable <command> --help" for the flags of each command.

YAML tags: !short (short string), !int32, !int64, !decimal "1.25",
!timestamp <seconds>. Untagged integers use the narrowest width,
floats become decimals and RFC 3339 times become timestamps.
`)
}

// commonFlags are shared by both commands
type commonFlags struct {
	maxDepth int
	verbose  bool
}

func (f *commonFlags) add(flagSet *pflag.FlagSet) {
	flagSet.IntVar(&f.maxDepth, "max-depth", amqptable.DefaultMaxDepth, "maximum nesting of tables and arrays")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log debug details to stderr")
}

func (f *commonFlags) codec() amqptable.Codec {
	return amqptable.Codec{MaxDepth: f.maxDepth}
}

func encodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var common commonFlags
	var inputFormat, output string

	flagSet := pflag.NewFlagSet("amqptable encode", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	common.add(flagSet)
	flagSet.StringVar(&inputFormat, "input-format", "", "yaml or jsonc (default: from the file extension, else yaml)")
	flagSet.StringVar(&output, "output", "", "raw or hex (default: hex on a terminal, raw otherwise)")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, common.verbose).With("command", "encode")

	data, source, err := readInput(flagSet.Args(), stdin)
	if err != nil {
		return err
	}
	if inputFormat == "" {
		inputFormat = formatFromExtension(source)
	}

	table, err := parseTable(data, inputFormat, common.maxDepth)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}

	encoded, err := common.codec().EncodeTable(table)
	if err != nil {
		return err
	}
	logger.Debug("encoded table", "source", source, "entries", table.Len(), "bytes", len(encoded))

	if output == "" {
		output = "raw"
		if isTerminal(stdout) {
			output = "hex"
		}
	}
	switch output {
	case "raw":
		_, err = stdout.Write(encoded)
	case "hex":
		_, err = fmt.Fprintln(stdout, hex.EncodeToString(encoded))
	default:
		return fmt.Errorf("unknown output format %q (want raw or hex)", output)
	}
	return err
}

func decodeCmd(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	var common commonFlags
	var inputFormat, output string
	var offset int

	flagSet := pflag.NewFlagSet("amqptable decode", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	common.add(flagSet)
	flagSet.StringVar(&inputFormat, "input-format", "raw", "raw or hex (whitespace in hex input is ignored)")
	flagSet.StringVar(&output, "output", "yaml", "yaml, cbor or diag (CBOR diagnostic notation)")
	flagSet.IntVar(&offset, "offset", 0, "byte offset of the table's length prefix")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	logger := newLogger(stderr, common.verbose).With("command", "decode")

	data, source, err := readInput(flagSet.Args(), stdin)
	if err != nil {
		return err
	}
	switch inputFormat {
	case "raw":
	case "hex":
		data, err = hex.DecodeString(strings.Join(strings.Fields(string(data)), ""))
		if err != nil {
			return fmt.Errorf("%s: %w", source, err)
		}
	default:
		return fmt.Errorf("unknown input format %q (want raw or hex)", inputFormat)
	}

	table, next, err := common.codec().DecodeTable(data, offset)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	logger.Debug("decoded table", "source", source, "entries", table.Len(), "consumed", next-offset)
	if trailing := len(data) - next; trailing > 0 {
		logger.Warn("trailing bytes after table", "source", source, "offset", next, "count", trailing)
	}

	var rendered []byte
	switch output {
	case "yaml":
		rendered, err = marshalTableYAML(table)
	case "cbor":
		rendered, err = marshalTableCBOR(table)
	case "diag":
		var encoded []byte
		if encoded, err = marshalTableCBOR(table); err == nil {
			var notation string
			notation, err = cbor.Diagnose(encoded)
			rendered = []byte(notation + "\n")
		}
	default:
		return fmt.Errorf("unknown output format %q (want yaml, cbor or diag)", output)
	}
	if err != nil {
		return err
	}

	_, err = stdout.Write(rendered)
	return err
}

// readInput reads the single file argument, or stdin when there is none
func readInput(args []string, stdin io.Reader) ([]byte, string, error) {
	if len(args) > 1 {
		return nil, "", fmt.Errorf("unexpected argument: %s", args[1])
	}
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, "", fmt.Errorf("reading stdin: %w", err)
		}
		return data, "-", nil
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, "", fmt.Errorf("reading %s: %w", args[0], err)
	}
	return data, args[0], nil
}

func formatFromExtension(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return "jsonc"
	default:
		return "yaml"
	}
}

// newLogger writes human-readable text to a terminal and JSON records
// everywhere else
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	options := &slog.HandlerOptions{Level: slog.LevelInfo}
	if verbose {
		options.Level = slog.LevelDebug
	}
	if isTerminal(w) {
		return slog.New(slog.NewTextHandler(w, options))
	}
	return slog.New(slog.NewJSONHandler(w, options))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
