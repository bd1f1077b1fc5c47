// Package extract reads the raw event log into an engine table.
package extract

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"eventetl/internal/config"
	"eventetl/internal/engine"
	apperrors "eventetl/internal/errors"
	"eventetl/internal/validation"
	"eventetl/pkg/contracts/domain"
)

// Input formats
const (
	FormatAuto = "auto"
	FormatTSV  = "tsv"
	FormatXLSX = "xlsx"
)

// StageName is the span and metric label of the extract stage
const StageName = "etl.extract"

// Extractor loads the event log located relative to a working directory
type Extractor struct {
	cfg        config.InputConfig
	quietLevel string
	validator  *validation.FileValidator
	logger     *slog.Logger
}

// NewExtractor creates an Extractor. quietLevel is applied to the session
// once the read completes; empty leaves the level unchanged.
func NewExtractor(cfg config.InputConfig, quietLevel string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Path == "" {
		cfg.Path = config.DefaultInputPath
	}
	if cfg.Format == "" {
		cfg.Format = FormatAuto
	}
	logger = logger.With(slog.String("component", "extract"))
	return &Extractor{
		cfg:        cfg,
		quietLevel: quietLevel,
		validator:  validation.NewFileValidator(logger),
		logger:     logger,
	}
}

// Extract reads the input file under workDir into a table of raw events,
// partitioned in file order. A missing file is a NOT_FOUND error and any
// other read failure an IO or PARSING error; none are retried.
func (e *Extractor) Extract(ctx context.Context, sess *engine.Session, workDir string) (*engine.Table[domain.RawEvent], error) {
	ctx, end := sess.StartStage(ctx, StageName)

	path := config.ResolvePath(workDir, e.cfg.Path)
	format := DetectFormat(path, e.cfg.Format)

	e.logger.InfoContext(ctx, "Reading input",
		slog.String("path", path),
		slog.String("format", format))

	rows, err := e.read(path, format)
	if err != nil {
		end(0, err)
		return nil, err
	}

	table := engine.FromSlice(rows, sess.PartitionRows())
	end(table.Len(), nil)
	sess.Metrics().RecordPartitions(ctx, StageName, table.NumPartitions())

	e.logger.InfoContext(ctx, "Input loaded",
		slog.Int("rows", table.Len()),
		slog.Int("partitions", table.NumPartitions()))

	if e.quietLevel != "" {
		sess.SetLogLevel(e.quietLevel)
	}

	return table, nil
}

func (e *Extractor) read(path, format string) ([]domain.RawEvent, error) {
	switch format {
	case FormatXLSX:
		check := e.validator.ValidateFile
		if e.cfg.Format == FormatAuto {
			check = e.validator.ValidateExcelFile
		}
		if err := check(path); err != nil {
			return nil, err
		}
		return ReadXLSX(path, e.cfg.Sheet)
	default:
		if err := e.validator.ValidateFile(path); err != nil {
			return nil, err
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, apperrors.NewIOError(fmt.Sprintf("cannot open input %s", path), err)
		}
		defer f.Close()
		return ReadTSV(f)
	}
}

// DetectFormat resolves "auto" by file extension
func DetectFormat(path, format string) string {
	if format != "" && format != FormatAuto {
		return format
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatTSV
}

// ReadTSV parses tab-separated records. No header is skipped; short records
// are padded with empty fields and extra fields are ignored.
func ReadTSV(r io.Reader) ([]domain.RawEvent, error) {
	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []domain.RawEvent
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, apperrors.NewParsingError(fmt.Sprintf("malformed record at line %d", parseErr.Line), err)
			}
			return nil, apperrors.NewIOError("failed to read input", err)
		}
		rows = append(rows, domain.RawEventFromFields(record))
	}

	return rows, nil
}

// ReadXLSX reads records from sheet, or from the first sheet when sheet is empty
func ReadXLSX(path, sheet string) ([]domain.RawEvent, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewIOError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	records, err := f.GetRows(sheet)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read sheet %q", sheet), err)
	}

	rows := make([]domain.RawEvent, 0, len(records))
	for _, record := range records {
		// blank lines carry no record, as in the TSV reader
		if len(record) == 0 {
			continue
		}
		rows = append(rows, domain.RawEventFromFields(record))
	}
	return rows, nil
}
