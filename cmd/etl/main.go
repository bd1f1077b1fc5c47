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
	"syscall"
	"time"

	"eventetl/internal/config"
	"eventetl/internal/engine"
	apperrors "eventetl/internal/errors"
	"eventetl/internal/extract"
	"eventetl/internal/geo"
	"eventetl/internal/infrastructure"
	"eventetl/internal/report"
	"eventetl/internal/transform"
	"eventetl/pkg/contracts"
)

// shutdownTimeout bounds the final telemetry flush and push
const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options are the command-line overrides applied on top of the configuration
type options struct {
	configPath string
	workDir    string
	format     string
	topN       int
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("etl", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "path to a YAML config file (defaults to eventetl.yaml or configs/eventetl.yaml when present)")
	fs.StringVar(&opts.workDir, "workdir", "", "directory the input path is resolved against (defaults to the current directory)")
	fs.StringVar(&opts.format, "format", "", "report format: table or json")
	fs.IntVar(&opts.topN, "top", 0, "number of rows per aggregate")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// run executes the job and returns the process exit code
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(stderr, "etl: %v\n", err)
		return apperrors.ExitCode(err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "etl: failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	ctx = infrastructure.WithRunID(ctx, infrastructure.GenerateRunID())

	if err := execute(ctx, cfg, logger, stdout, stderr); err != nil {
		logger.ErrorContext(ctx, "Job failed",
			slog.String("error", err.Error()),
			slog.String("error_type", string(apperrors.TypeOf(err))))
		fmt.Fprintf(stderr, "etl: %v\n", err)
		return apperrors.ExitCode(err)
	}
	return 0
}

func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	if opts.workDir != "" {
		cfg.Input.WorkDir = opts.workDir
	}
	if opts.format != "" {
		cfg.Report.Format = opts.format
	}
	if opts.topN != 0 {
		cfg.Report.TopN = opts.topN
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// execute wires the stages: extract, transform, report
func execute(ctx context.Context, cfg *config.Config, logger *slog.Logger, stdout, traceOut io.Writer) error {
	logger.InfoContext(ctx, "Starting job",
		slog.String("app", cfg.Engine.AppName),
		slog.String("version", contracts.Version),
		slog.String("run_id", infrastructure.GetRunID(ctx)))

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger, traceOut)
	if err != nil {
		return apperrors.NewConfigError("failed to initialize telemetry", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if serr := providers.Shutdown(shutdownCtx); serr != nil {
			logger.WarnContext(ctx, "Telemetry shutdown failed", slog.String("error", serr.Error()))
		}
	}()

	sess, err := engine.NewSessionFromConfig(cfg.Engine, logger, providers)
	if err != nil {
		return err
	}
	defer sess.Close()

	workDir, err := cfg.ResolveWorkDir()
	if err != nil {
		return apperrors.NewIOError("failed to resolve working directory", err)
	}

	raw, err := extract.NewExtractor(cfg.Input, cfg.Engine.QuietLevel, logger).Extract(ctx, sess, workDir)
	if err != nil {
		return err
	}

	locator, err := geo.Open(cfg.Geo, workDir, logger)
	if err != nil {
		return err
	}
	defer locator.Close()

	enriched, err := transform.New(transform.Options{Locator: locator, Logger: logger}).Transform(ctx, sess, raw)
	if err != nil {
		return err
	}

	if err := report.New(cfg.Report, logger).Report(ctx, sess, enriched, stdout); err != nil {
		return err
	}

	runtimeMetrics, err := infrastructure.NewRuntimeMetrics(providers.Meter)
	if err != nil {
		logger.WarnContext(ctx, "Runtime metrics unavailable", slog.String("error", err.Error()))
	}
	logger.InfoContext(ctx, "Job finished",
		slog.Int("input_rows", raw.Len()),
		slog.Int("output_rows", enriched.Len()),
		slog.Any("runtime", runtimeMetrics.Collect(ctx, sess.StartTime())))

	return nil
}
