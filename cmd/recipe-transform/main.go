package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	flag "github.com/spf13/pflag"

	"github.com/cognicore/recipebook/internal/logging"
	"github.com/cognicore/recipebook/pkg/recipebook"
	"github.com/cognicore/recipebook/pkg/recipebook/config"
	"github.com/cognicore/recipebook/pkg/recipebook/internalerr"
	"github.com/cognicore/recipebook/pkg/recipebook/store"
	"github.com/cognicore/recipebook/pkg/recipebook/store/sqlite"
)

// Exit codes: 0=success, 1=general, 2=usage, 3=input/output.
const (
	ExitSuccess = 0
	ExitGeneral = 1
	ExitUsage   = 2
	ExitIO      = 3
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	input      string
	sheet      string
	coverDir   string
	noCovers   bool
	maxEdge    int
	quality    int
	output     string
	sqlitePath string
	stripHTML  bool
	logLevel   string
	logFormat  string
}

func parseFlags(args []string, stderr io.Writer) (*flag.FlagSet, *options, error) {
	o := &options{}
	fs := flag.NewFlagSet("recipe-transform", flag.ContinueOnError)
	fs.SetOutput(stderr)

	fs.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	fs.StringVarP(&o.input, "input", "i", "", "recipe sheet (.xlsx or .csv)")
	fs.StringVar(&o.sheet, "sheet", "", "worksheet name (default: active sheet)")
	fs.StringVar(&o.coverDir, "cover-dir", "", "directory of <recipe name>.jpg covers (default: cover/ next to the input)")
	fs.BoolVar(&o.noCovers, "no-covers", false, "skip cover lookup")
	fs.IntVar(&o.maxEdge, "max-edge", 0, "longest cover edge in pixels")
	fs.IntVar(&o.quality, "quality", 0, "cover JPEG quality (1-100)")
	fs.StringVarP(&o.output, "output", "o", "", "backup JSON path (default: recipes_backup_<time>.json next to the input)")
	fs.StringVar(&o.sqlitePath, "sqlite", "", "also import into this SQLite database")
	fs.BoolVar(&o.stripHTML, "strip-html", false, "flatten rich-text cells before parsing")
	fs.StringVar(&o.logLevel, "log-level", "", "debug, info, warn or error")
	fs.StringVar(&o.logFormat, "log-format", "", "console or json")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 && o.input == "" {
		o.input = fs.Arg(0)
	}
	return fs, o, nil
}

// resolveConfig layers file, environment and flags, in that order.
func resolveConfig(fs *flag.FlagSet, o *options, lookup func(string) (string, bool)) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	config.ApplyEnv(&cfg, lookup)

	if o.input != "" {
		cfg.Input.Path = o.input
	}
	if fs.Changed("sheet") {
		cfg.Input.Sheet = o.sheet
	}
	if fs.Changed("strip-html") {
		cfg.Input.StripHTML = o.stripHTML
	}
	if fs.Changed("cover-dir") {
		cfg.Cover.Dir = o.coverDir
	}
	if fs.Changed("max-edge") {
		cfg.Cover.MaxEdge = o.maxEdge
	}
	if fs.Changed("quality") {
		cfg.Cover.Quality = o.quality
	}
	if fs.Changed("output") {
		cfg.Output.JSON = o.output
	}
	if fs.Changed("sqlite") {
		cfg.Output.SQLite = o.sqlitePath
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = o.logFormat
	}

	if cfg.Cover.Dir == "" {
		cfg.Cover.Dir = filepath.Join(filepath.Dir(cfg.Input.Path), "cover")
	}
	if o.noCovers {
		cfg.Cover.Dir = ""
	}

	return cfg, cfg.Validate()
}

func run(args []string, stdout, stderr io.Writer) int {
	fs, o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	cfg, err := resolveConfig(fs, o, os.LookupEnv)
	if err != nil {
		fmt.Fprintln(stderr, "config:", err)
		return ExitUsage
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	defer logger.Sync()

	ctx := context.Background()

	var st store.Store
	if cfg.Output.SQLite != "" {
		st, err = sqlite.OpenSQLite(ctx, cfg.Output.SQLite)
		if err != nil {
			fmt.Fprintln(stderr, "open store:", err)
			return ExitIO
		}
		defer st.Close()
	}

	output := cfg.Output.JSON
	if output == "" {
		output = config.DefaultOutputPath(cfg.Input.Path, time.Now())
	}

	conv := recipebook.NewConverter(recipebook.Options{Store: st, Logger: logger})
	res, err := conv.Convert(ctx, recipebook.ConvertRequest{
		InputPath:  cfg.Input.Path,
		Sheet:      cfg.Input.Sheet,
		CoverDir:   cfg.Cover.Dir,
		Cover:      cfg.CoverOptions(),
		StripHTML:  cfg.Input.StripHTML,
		OutputPath: output,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitCodeFor(err)
	}

	if err := res.Report.WriteSummary(stdout, res.OutputPath); err != nil {
		return ExitIO
	}
	return ExitSuccess
}

func exitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, internalerr.ErrUnsupportedFormat), errors.Is(err, internalerr.ErrInvalidConfig),
		errors.Is(err, internalerr.ErrNotFound):
		return ExitUsage
	case errors.Is(err, os.ErrNotExist), errors.Is(err, os.ErrPermission), errors.Is(err, internalerr.ErrStoreUnavailable):
		return ExitIO
	default:
		return ExitGeneral
	}
}
