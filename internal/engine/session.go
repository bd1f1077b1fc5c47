package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"
	_ "time/tzdata" // time zones resolve in minimal containers

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"eventetl/internal/config"
	apperrors "eventetl/internal/errors"
	"eventetl/internal/infrastructure"
)

// ErrSessionClosed is returned by operations started after Close
var ErrSessionClosed = apperrors.NewEngineError("session is closed", nil)

// Options configures a Session. Zero values fall back to defaults.
type Options struct {
	AppName       string
	Parallelism   int
	PartitionRows int
	Location      *time.Location
	Logger        *slog.Logger
	Level         slog.Level
	Tracer        trace.Tracer
	Metrics       *infrastructure.PipelineMetrics
}

// Session is the processing context shared by all pipeline stages
type Session struct {
	appName       string
	parallelism   int
	partitionRows int
	location      *time.Location
	level         *slog.LevelVar
	logger        *slog.Logger
	tracer        trace.Tracer
	metrics       *infrastructure.PipelineMetrics
	startTime     time.Time
	closed        atomic.Bool
}

// NewSession creates a Session from opts
func NewSession(opts Options) *Session {
	if opts.AppName == "" {
		opts.AppName = config.DefaultAppName
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	if opts.PartitionRows <= 0 {
		opts.PartitionRows = config.DefaultPartitionRows
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracenoop.NewTracerProvider().Tracer(infrastructure.MeterName)
	}

	level := new(slog.LevelVar)
	level.Set(opts.Level)

	logger := slog.New(&levelHandler{level: level, Handler: opts.Logger.Handler()}).
		With(slog.String("component", "engine"), slog.String("app", opts.AppName))

	return &Session{
		appName:       opts.AppName,
		parallelism:   opts.Parallelism,
		partitionRows: opts.PartitionRows,
		location:      opts.Location,
		level:         level,
		logger:        logger,
		tracer:        opts.Tracer,
		metrics:       opts.Metrics,
		startTime:     time.Now(),
	}
}

// NewSessionFromConfig builds a Session from the engine section of the configuration
func NewSessionFromConfig(cfg config.EngineConfig, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Session, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("unknown time zone %q", cfg.TimeZone), err)
	}

	opts := Options{
		AppName:       cfg.AppName,
		Parallelism:   cfg.Parallelism,
		PartitionRows: cfg.PartitionRows,
		Location:      loc,
		Logger:        logger,
		// the parent logger's own level applies until SetLogLevel narrows it
		Level: slog.LevelDebug,
	}

	if providers != nil {
		opts.Tracer = providers.Tracer
		metrics, err := infrastructure.CreatePipelineMetrics(providers.Meter)
		if err != nil {
			return nil, apperrors.NewEngineError("failed to create pipeline metrics", err)
		}
		opts.Metrics = metrics
	}

	sess := NewSession(opts)
	sess.logger.Info("Session started",
		slog.Int("parallelism", sess.parallelism),
		slog.Int("partition_rows", sess.partitionRows),
		slog.String("time_zone", loc.String()))

	return sess, nil
}

// AppName returns the job name
func (s *Session) AppName() string { return s.appName }

// Parallelism returns the maximum number of partitions processed at once
func (s *Session) Parallelism() int { return s.parallelism }

// PartitionRows returns the row count of a full partition
func (s *Session) PartitionRows() int { return s.partitionRows }

// Location returns the time zone timestamps are interpreted in
func (s *Session) Location() *time.Location { return s.location }

// Logger returns the engine logger, filtered by the session log level
func (s *Session) Logger() *slog.Logger { return s.logger }

// Tracer returns the session tracer
func (s *Session) Tracer() trace.Tracer { return s.tracer }

// Metrics returns the pipeline metrics; nil when telemetry is off
func (s *Session) Metrics() *infrastructure.PipelineMetrics { return s.metrics }

// StartTime returns when the session was created
func (s *Session) StartTime() time.Time { return s.startTime }

// SetLogLevel changes the verbosity of engine logging for the rest of the run.
// Accepts debug, info, warn or error.
func (s *Session) SetLogLevel(level string) {
	s.level.Set(infrastructure.ParseLogLevel(level))
}

// LogLevel returns the current engine log level
func (s *Session) LogLevel() slog.Level {
	return s.level.Level()
}

// StartStage opens a span for a pipeline stage. The returned func ends the
// span and records the stage's output rows and duration.
func (s *Session) StartStage(ctx context.Context, name string) (context.Context, func(rows int, err error)) {
	ctx, span := s.tracer.Start(ctx, name)
	started := time.Now()

	return ctx, func(rows int, err error) {
		elapsed := time.Since(started)
		span.SetAttributes(attribute.Int("rows", rows))
		if err != nil {
			infrastructure.RecordError(ctx, err)
		} else {
			s.metrics.RecordStage(ctx, name, rows, elapsed)
		}
		span.End()

		s.logger.DebugContext(ctx, "Stage finished",
			slog.String("stage", name),
			slog.Int("rows", rows),
			slog.Duration("duration", elapsed))
	}
}

// Close ends the session. Later operations fail with ErrSessionClosed.
// Calling Close more than once is safe.
func (s *Session) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.logger.Info("Session closed", slog.Duration("uptime", time.Since(s.startTime)))
	return nil
}

// Closed reports whether Close has been called
func (s *Session) Closed() bool {
	return s.closed.Load()
}

func (s *Session) check(ctx context.Context) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	return ctx.Err()
}

// levelHandler drops records below a level that can change at runtime
type levelHandler struct {
	level slog.Leveler
	slog.Handler
}

func (h *levelHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level() && h.Handler.Enabled(ctx, level)
}

func (h *levelHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithAttrs(attrs)}
}

func (h *levelHandler) WithGroup(name string) slog.Handler {
	return &levelHandler{level: h.level, Handler: h.Handler.WithGroup(name)}
}
