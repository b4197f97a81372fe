package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mvp-joe/rbx-ripper/internal/document"
	"github.com/mvp-joe/rbx-ripper/internal/runlock"
)

var (
	// ErrNoInput indicates the request has no input path.
	ErrNoInput = errors.New("no input document")

	// ErrNoOutput indicates the request has no output directory.
	ErrNoOutput = errors.New("no output directory")
)

// Request describes one extraction run.
type Request struct {
	Input    string
	Output   string
	Settings *Settings
	Options  Options
}

// Stats tracks what a run produced.
type Stats struct {
	RunID    string
	Total    int
	Objects  int
	Scripts  int
	Duration time.Duration
}

// Run loads the input document, counts the surviving nodes and extracts
// them under req.Output. The reporter receives exactly one terminal
// notification: OnFinished("<total> objects") or OnError(message).
//
// A document with nothing to extract finishes with "0 objects" and does not
// create the output directory.
func Run(ctx context.Context, req Request, reporter ProgressReporter) (*Stats, error) {
	if reporter == nil {
		reporter = &NoOpProgressReporter{}
	}

	stats, err := run(ctx, req, reporter)
	if err != nil {
		reporter.OnError(err.Error())
		return stats, err
	}
	reporter.OnFinished(fmt.Sprintf("%d objects", stats.Total))
	return stats, nil
}

func run(ctx context.Context, req Request, reporter ProgressReporter) (*Stats, error) {
	start := time.Now()
	stats := &Stats{RunID: uuid.NewString()}
	logger := log.With().Str("run_id", stats.RunID).Logger()

	if req.Input == "" {
		return stats, ErrNoInput
	}
	if req.Output == "" {
		return stats, ErrNoOutput
	}

	doc, err := document.Load(req.Input)
	if err != nil {
		return stats, err
	}
	items := doc.TopItems()

	stats.Total = CountAll(items, req.Settings)
	reporter.OnCountComplete(stats.Total)
	logger.Info().Str("input", req.Input).Int("items", len(items)).Int("total", stats.Total).Msg("counted objects")

	if stats.Total == 0 {
		stats.Duration = time.Since(start)
		logger.Info().Msg("nothing to extract")
		return stats, nil
	}

	lock := runlock.New(req.Output)
	if err := lock.TryLock(); err != nil {
		return stats, err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn().Err(err).Msg("failed to release output lock")
		}
	}()

	if err := os.MkdirAll(req.Output, 0755); err != nil {
		return stats, fmt.Errorf("failed to create output directory: %w", err)
	}

	extractor := NewExtractor(req.Settings, req.Options, reporter, logger)
	res, err := extractor.Extract(ctx, items, req.Output, stats.Total)
	stats.Objects = res.Objects
	stats.Scripts = res.Scripts
	stats.Duration = time.Since(start)
	if err != nil {
		logger.Error().Err(err).Int("objects", res.Objects).Msg("extraction failed")
		return stats, err
	}

	logger.Info().
		Str("output", req.Output).
		Int("objects", stats.Objects).
		Int("scripts", stats.Scripts).
		Dur("duration", stats.Duration).
		Msg("extraction complete")
	return stats, nil
}

// CountReport is the result of a counting-only run.
type CountReport struct {
	Total   int
	ByClass map[string]int
}

// CountFile loads path and runs only the counting pass.
func CountFile(path string, s *Settings) (*CountReport, error) {
	doc, err := document.Load(path)
	if err != nil {
		return nil, err
	}
	items := doc.TopItems()
	return &CountReport{
		Total:   CountAll(items, s),
		ByClass: CountByClass(items, s),
	}, nil
}

// DefaultOutputDir derives the output root for input: the input path
// without its extension, suffixed with "_extracted".
func DefaultOutputDir(input string) string {
	return strings.TrimSuffix(input, filepath.Ext(input)) + "_extracted"
}
