package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/timetabl/positano/internal/cache"
	"github.com/timetabl/positano/internal/calendar"
	"github.com/timetabl/positano/internal/catalog"
	"github.com/timetabl/positano/internal/config"
	"github.com/timetabl/positano/internal/database"
	"github.com/timetabl/positano/internal/logger"
	"github.com/timetabl/positano/internal/model"
	"github.com/timetabl/positano/internal/repository"
	"github.com/timetabl/positano/internal/sqlgen"
	"github.com/timetabl/positano/internal/worker"
)

const cacheNamespace = "positano:"

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// stdout carries the generated script.
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	args := os.Args[1:]
	if len(args) < 1 {
		printUsage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch args[0] {
	case "import":
		err = runImport(ctx, cfg, log, args[1:])
	case "stash":
		err = runStash(ctx, cfg, log, args[1:])
	default:
		printUsage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal().Err(err).Str("command", args[0]).Msg("catalog command failed")
	}
}

func runImport(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	format := fs.String("format", "sql", "Output format: sql, json or ics")
	out := fs.String("o", "-", "Output file, - for stdout")
	persist := fs.Bool("persist", false, "Upsert the lectures into PostgreSQL")
	enqueue := fs.Bool("enqueue", false, "Queue the lectures for the server's persist worker")
	fs.Parse(args)

	if fs.NArg() != 2 {
		return fmt.Errorf("usage: catalog import [flags] <univ> <YEAR_TERM>")
	}
	univ, sem, err := parseTarget(fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	adapter, err := catalog.AdapterFor(univ, sem)
	if err != nil {
		return err
	}

	store, rdb, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	lectures, run, err := catalog.NewImporter(store, log).Import(ctx, adapter)
	if err != nil {
		return err
	}

	if *persist {
		pool, err := database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := repository.NewLectureRepository(pool).SaveImport(ctx, run, lectures); err != nil {
			return fmt.Errorf("persist import: %w", err)
		}
		log.Info().Str("run_id", run.ID.String()).Int("lectures", len(lectures)).Msg("import persisted")
	}

	if *enqueue {
		if rdb == nil {
			if rdb, err = database.NewRedisClient(ctx, cfg, log); err != nil {
				return err
			}
			defer rdb.Close()
		}
		if err := worker.Enqueue(ctx, rdb, lectures); err != nil {
			return fmt.Errorf("enqueue lectures: %w", err)
		}
		log.Info().Int("lectures", len(lectures)).Msg("lectures queued")
	}

	w, err := openOutput(*out)
	if err != nil {
		return err
	}
	return emit(w, func(w io.Writer) error {
		switch *format {
		case "sql":
			return sqlgen.Generate(w, lectures)
		case "json":
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(catalog.Views(lectures))
		case "ics":
			return calendar.Export(w, lectures, calendar.DefaultTerm(sem))
		default:
			return fmt.Errorf("unknown format %q", *format)
		}
	})
}

func runStash(ctx context.Context, cfg *config.Config, log zerolog.Logger, args []string) error {
	if len(args) != 4 {
		return fmt.Errorf("usage: catalog stash <univ> <YEAR_TERM> <sweep> <file|->")
	}
	univ, sem, err := parseTarget(args[0], args[1])
	if err != nil {
		return err
	}

	var page io.Reader = os.Stdin
	if args[3] != "-" {
		f, err := os.Open(args[3])
		if err != nil {
			return err
		}
		defer f.Close()
		page = f
	}

	store, rdb, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
	}

	n, err := catalog.NewImporter(store, log).Stash(ctx, univ, sem, args[2], page)
	if err != nil {
		return err
	}
	log.Info().Str("sweep", args[2]).Int("rows", n).Msg("sweep stashed")
	return nil
}

func parseTarget(univText, semText string) (model.University, model.Semester, error) {
	univ, err := model.ParseUniversity(univText)
	if err != nil {
		return 0, model.Semester{}, err
	}
	sem, err := model.ParseSemester(semText)
	if err != nil {
		return 0, model.Semester{}, err
	}
	return univ, sem, nil
}

// openStore returns the page cache selected by CACHE_BACKEND, and the
// Redis client backing it when there is one.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (cache.Store, *redis.Client, error) {
	if cfg.CacheBackend == "redis" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return cache.NewRedisStore(rdb, cacheNamespace, cfg.CacheTTL), rdb, nil
	}
	store, err := cache.NewDiskStore(cfg.CacheDir)
	return store, nil, err
}

// nopCloser keeps stdout open after the output is written.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// emit runs write against wc and closes it. A failed close is reported
// so a truncated output file is never mistaken for success.
func emit(wc io.WriteCloser, write func(io.Writer) error) error {
	err := write(wc)
	if cerr := wc.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("close output: %w", cerr)
	}
	return err
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: catalog <command> [flags] <args>")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  import [-format sql|json|ics] [-o file] [-persist] [-enqueue] <univ> <YEAR_TERM>")
	fmt.Fprintln(os.Stderr, "  stash <univ> <YEAR_TERM> <sweep> <file|->")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
