package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"alsdoctor/internal/config"
	"alsdoctor/internal/diagnosis"
	"alsdoctor/internal/fileutil"
	"alsdoctor/internal/logging"
)

// Recorder receives each successful result of a run.
// Implementations must be safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, runID string, result Result) error
}

// Scanner walks a directory tree and analyses the documents it finds.
type Scanner struct {
	Concurrency int
	SkipBackups bool
	Extensions  []string
	Options     diagnosis.Options
	Logger      *slog.Logger
	Recorder    Recorder
}

// New builds a scanner from configuration.
func New(cfg *config.Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		Concurrency: cfg.Scan.Concurrency,
		SkipBackups: cfg.Scan.SkipBackups,
		Extensions:  cfg.Scan.Extensions,
		Options:     cfg.DiagnosisOptions(),
		Logger:      logging.NewComponentLogger(logger, "scan"),
	}
}

// Discover lists matching documents under root in lexical order.
func (s *Scanner) Discover(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan root: %w", err)
	}
	if !info.IsDir() {
		if s.matches(root) {
			return []string{root}, nil
		}
		return nil, fmt.Errorf("scan root %s is not a directory", root)
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			s.logger().Debug("skipping unreadable path", logging.String("path", path), logging.Error(err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && s.SkipBackups && d.Name() == fileutil.BackupDir {
				return fs.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && s.matches(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	slices.Sort(paths)
	return paths, nil
}

// Run analyses every document under root. Per-document failures are kept in
// the summary and never abort the run.
func (s *Scanner) Run(ctx context.Context, root string) (*Summary, error) {
	started := time.Now()
	paths, err := s.Discover(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		RunID:   uuid.NewString(),
		Root:    root,
		Results: make([]Result, len(paths)),
	}
	ctx = logging.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, s.logger())
	logger.Info("scan started", logging.String("root", root), logging.Int("documents", len(paths)))

	var recorded atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := Analyze(path, s.Options)
			summary.Results[i] = res
			docLogger := logging.WithContext(logging.WithDocument(gctx, path), s.logger())
			if res.Failed() {
				logging.WarnWithContext(docLogger, "document failed", "document_failed",
					logging.Error(res.Err),
					logging.String(logging.FieldErrorHint, "open the set in Live and re-save it"),
				)
				return nil
			}
			docLogger.Debug("document analysed",
				logging.Int("health_score", res.Diagnosis.HealthScore),
				logging.Int("issues", len(res.Diagnosis.Issues)),
			)
			if s.Recorder != nil {
				if err := s.Recorder.Record(gctx, summary.RunID, res); err != nil {
					if errors.Is(err, context.Canceled) {
						return err
					}
					logging.WarnWithContext(docLogger, "history record failed", "history_record_failed", logging.Error(err))
					return nil
				}
				recorded.Add(1)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, r := range summary.Results {
		if r.Failed() {
			summary.Failed++
		}
	}
	summary.Recorded = int(recorded.Load())
	summary.Duration = time.Since(started)
	logger.Info("scan finished",
		logging.String("summary", summary.String()),
		logging.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (s *Scanner) matches(path string) bool {
	exts := s.Extensions
	if len(exts) == 0 {
		exts = []string{".als"}
	}
	return slices.Contains(exts, strings.ToLower(filepath.Ext(path)))
}

func (s *Scanner) logger() *slog.Logger {
	if s.Logger == nil {
		return logging.NewNop()
	}
	return s.Logger
}
