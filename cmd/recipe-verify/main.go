package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/oklog/ulid/v2"
	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cognicore/recipebook/internal/logging"
	"github.com/cognicore/recipebook/pkg/recipebook/backup"
	"github.com/cognicore/recipebook/pkg/recipebook/config"
	"github.com/cognicore/recipebook/pkg/recipebook/store"
	"github.com/cognicore/recipebook/pkg/recipebook/store/sqlite"
)

// Exit codes: 0=valid, 1=integrity violations, 2=usage, 3=input/output.
const (
	ExitSuccess   = 0
	ExitIntegrity = 1
	ExitUsage     = 2
	ExitIO        = 3
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "load .env:", err)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	var (
		sqlitePath string
		logLevel   string
	)
	fs := flag.NewFlagSet("recipe-verify", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&sqlitePath, "sqlite", "", "import the document into this SQLite database when valid")
	fs.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: recipe-verify [flags] backup.json")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return ExitUsage
	}
	if !fs.Changed("sqlite") {
		if v, ok := os.LookupEnv(config.EnvSQLite); ok {
			sqlitePath = v
		}
	}

	logger, err := logging.New(logging.Options{Level: logLevel})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	defer logger.Sync()

	path := fs.Arg(0)
	doc, err := backup.ReadFile(path)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitIO
	}

	c := store.CountsOf(doc)
	fmt.Fprintf(stdout, "%s: version %d, exported %s\n", path, doc.Version,
		time.UnixMilli(doc.ExportTime).Format(time.RFC3339))
	fmt.Fprintf(stdout, "  categories %d, recipes %d, ingredients %d, steps %d\n",
		c.Categories, c.Recipes, c.Ingredients, c.Steps)

	if err := backup.Verify(doc); err != nil {
		fmt.Fprintln(stdout, "integrity violations:")
		for _, e := range unjoin(err) {
			fmt.Fprintf(stdout, "  - %v\n", e)
		}
		return ExitIntegrity
	}
	fmt.Fprintln(stdout, "  ok")

	if sqlitePath == "" {
		return ExitSuccess
	}

	ctx := context.Background()
	st, err := sqlite.OpenSQLite(ctx, sqlitePath)
	if err != nil {
		fmt.Fprintln(stderr, "open store:", err)
		return ExitIO
	}
	defer st.Close()

	runID := ulid.MustNew(ulid.Now(), rand.Reader).String()
	if err := st.Import(ctx, runID, doc); err != nil {
		fmt.Fprintln(stderr, "import:", err)
		return ExitIO
	}
	logger.Info("backup imported", zap.String("run_id", runID), zap.String("db", sqlitePath))
	fmt.Fprintf(stdout, "  imported into %s (run %s)\n", sqlitePath, runID)
	return ExitSuccess
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
