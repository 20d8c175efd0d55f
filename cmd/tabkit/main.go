// Command tabkit splits and combines CSV and spreadsheet files from the
// command line.
//
//	tabkit chunk [-rows N] [-format F] [-sheet S] [-delim D] [-validate] [-contract K] [-contracts file.yaml] [-out file.zip] <input>
//	tabkit combine -mode union|left|right [-left-key N] [-right-key N] [-sheets a,b] [-delim D] [-format F] [-out name] [-dir D] <inputs...>
//	tabkit sheets <workbook>
//	tabkit columns [-sheet S] [-delim D] <input>
//
// The input delimiter defaults to tab for .tsv and .tab files and comma
// otherwise.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/JonMunkholm/tabkit/internal/core"
	"github.com/JonMunkholm/tabkit/internal/core/contracts"
	"github.com/JonMunkholm/tabkit/internal/logging"
)

const usage = `usage: tabkit [-log-level L] <command> [flags] <files>

commands:
  chunk     split one file into a zip of chunk files
  combine   union or join 2-5 files into one file
  sheets    list the sheets of a workbook
  columns   print the header columns of a file with their indexes
`

// errUsage marks a command line error. The flag set has already printed
// the details; run exits 2.
var errUsage = errors.New("usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("tabkit", flag.ContinueOnError)
	global.SetOutput(stderr)
	logLevel := global.String("log-level", "warn", "log level: debug, info, warn, error")
	global.Usage = func() { fmt.Fprint(stderr, usage) }
	if err := global.Parse(args); err != nil {
		return 2
	}

	logger := logging.New(stderr, *logLevel, "text")
	slog.SetDefault(logger)

	rest := global.Args()
	if len(rest) == 0 {
		fmt.Fprint(stderr, usage)
		return 2
	}

	var err error
	switch cmd, cmdArgs := rest[0], rest[1:]; cmd {
	case "chunk":
		err = runChunk(ctx, cmdArgs, stdout, stderr)
	case "combine":
		err = runCombine(ctx, cmdArgs, stdout, stderr)
	case "sheets":
		err = runSheets(cmdArgs, stdout, stderr)
	case "columns":
		err = runColumns(cmdArgs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "tabkit: unknown command %q\n\n%s", cmd, usage)
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage):
		return 2
	default:
		fmt.Fprintf(stderr, "tabkit: %v\n", err)
		if core.IsUserFacing(err) {
			fmt.Fprintf(stderr, "  %s\n", core.FormatUserError(err))
		}
		return 1
	}
}

func runChunk(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("chunk", stderr)
	rows := fs.String("rows", strconv.Itoa(core.DefaultChunkSize), "data rows per chunk file")
	format := fs.String("format", "csv", "output format: csv, semicolon, tab, xlsx")
	sheet := fs.String("sheet", "", "workbook sheet (default first)")
	delim := fs.String("delim", "", "input delimiter: csv, semicolon, tab (default from extension)")
	validate := fs.Bool("validate", false, "check the header against a contract")
	contract := fs.String("contract", "", "contract key (default inventory_tracking)")
	contractsFile := fs.String("contracts", "", "YAML file with extra contracts")
	out := fs.String("out", "", "output zip path (default <input>_chunks.zip)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "tabkit chunk: expected exactly one input file")
		return errUsage
	}

	n, err := core.ParseChunkSize(*rows)
	if err != nil {
		return err
	}
	f, err := loadSource(fs.Arg(0), *sheet, *delim)
	if err != nil {
		return err
	}
	of, err := core.ParseOutputFormat(*format)
	if err != nil {
		return err
	}

	registry := core.DefaultContracts()
	if *contractsFile != "" {
		if err := registry.LoadFile(*contractsFile); err != nil {
			return err
		}
	}
	svc := newService(registry)

	art, err := svc.Chunk(ctx, core.ChunkRequest{
		File:         f,
		RowsPerChunk: n,
		Format:       of,
		Validate:     *validate,
		Contract:     *contract,
		ArchiveName:  f.Name,
	})
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = filepath.Join(filepath.Dir(fs.Arg(0)), art.FileName)
	}
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "%s\n%s\n", art.Message, path)
	return nil
}

func runCombine(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("combine", stderr)
	mode := fs.String("mode", "union", "combine mode: union, left, right")
	leftKey := fs.Int("left-key", core.NoKey, "0-based key column in the first file")
	rightKey := fs.Int("right-key", core.NoKey, "0-based key column in the second file")
	sheets := fs.String("sheets", "", "comma-separated sheet per input, in order")
	delim := fs.String("delim", "", "input delimiter for every file: csv, semicolon, tab (default from extension)")
	format := fs.String("format", "csv", "output format: csv, semicolon, tab, xlsx")
	out := fs.String("out", core.DefaultOutputName, "output base name")
	dir := fs.String("dir", ".", "output directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() == 0 {
		fmt.Fprintln(stderr, "tabkit combine: no input files")
		return errUsage
	}

	m, err := core.ParseJoinMode(*mode)
	if err != nil {
		return err
	}
	of, err := core.ParseOutputFormat(*format)
	if err != nil {
		return err
	}

	var sheetNames []string
	if *sheets != "" {
		sheetNames = strings.Split(*sheets, ",")
	}
	files := make([]core.SourceFile, 0, fs.NArg())
	for i, path := range fs.Args() {
		sheet := ""
		if i < len(sheetNames) {
			sheet = strings.TrimSpace(sheetNames[i])
		}
		f, err := loadSource(path, sheet, *delim)
		if err != nil {
			return err
		}
		files = append(files, f)
	}

	art, err := newService(core.DefaultContracts()).Combine(ctx, core.CombineRequest{
		Mode:       m,
		Files:      files,
		LeftKey:    *leftKey,
		RightKey:   *rightKey,
		Format:     of,
		OutputName: *out,
	})
	if err != nil {
		return err
	}

	path := filepath.Join(*dir, art.FileName)
	if err := os.WriteFile(path, art.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	fmt.Fprintf(stdout, "%s\n%s (%d rows)\n", art.Message, path, art.Rows)
	return nil
}

func runSheets(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("sheets", stderr)
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "tabkit sheets: expected exactly one workbook")
		return errUsage
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	sheets, err := newService(nil).ListSheets(data)
	if err != nil {
		return err
	}
	for _, name := range sheets {
		fmt.Fprintln(stdout, name)
	}
	return nil
}

func runColumns(args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("columns", stderr)
	sheet := fs.String("sheet", "", "workbook sheet (default first)")
	delim := fs.String("delim", "", "input delimiter: csv, semicolon, tab (default from extension)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(stderr, "tabkit columns: expected exactly one input file")
		return errUsage
	}

	f, err := loadSource(fs.Arg(0), *sheet, *delim)
	if err != nil {
		return err
	}
	columns, err := newService(nil).Columns(f)
	if err != nil {
		return err
	}

	for i, name := range columns {
		fmt.Fprintf(stdout, "%d\t%s\n", i, name)
	}
	return nil
}

func newFlagSet(name string, stderr io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("tabkit "+name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

func newService(registry *core.ContractRegistry) *core.Service {
	return core.NewService(core.ServiceConfig{
		MaxConcurrentJobs: 1,
		DefaultContract:   contracts.InventoryTrackingKey,
	}, registry)
}

// loadSource reads a file from disk. The service applies the size limit.
func loadSource(path, sheet, delim string) (core.SourceFile, error) {
	d, err := core.ParseDelimiter(delim)
	if err != nil {
		return core.SourceFile{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return core.SourceFile{}, fmt.Errorf("read %s: %w", path, err)
	}
	return core.SourceFile{
		Name:      filepath.Base(path),
		Data:      data,
		Sheet:     sheet,
		Delimiter: d,
	}, nil
}
