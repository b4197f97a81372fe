package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/mvp-joe/rbx-ripper/internal/document"
)

const (
	// DefaultProgressInterval is how many nodes pass between progress events.
	DefaultProgressInterval = 20

	DefaultPropertiesFile = "properties.json"
	DefaultScriptFile     = "script.lua"

	propClassName = "ClassName"
	propName      = "Name"
	propSource    = "Source"
)

// Options controls output naming and scheduling.
type Options struct {
	PropertiesFile   string
	ScriptFile       string
	ProgressInterval int
	Workers          int // 0 means runtime.GOMAXPROCS(0)
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		PropertiesFile:   DefaultPropertiesFile,
		ScriptFile:       DefaultScriptFile,
		ProgressInterval: DefaultProgressInterval,
	}
}

// Extractor materializes a filtered node tree as directories.
type Extractor struct {
	settings *Settings
	opts     Options
	progress ProgressReporter
	logger   zerolog.Logger
}

// NewExtractor creates an Extractor. A nil reporter disables progress.
func NewExtractor(settings *Settings, opts Options, progress ProgressReporter, logger zerolog.Logger) *Extractor {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	defaults := DefaultOptions()
	if opts.PropertiesFile == "" {
		opts.PropertiesFile = defaults.PropertiesFile
	}
	if opts.ScriptFile == "" {
		opts.ScriptFile = defaults.ScriptFile
	}
	if opts.ProgressInterval <= 0 {
		opts.ProgressInterval = defaults.ProgressInterval
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Extractor{
		settings: settings,
		opts:     opts,
		progress: progress,
		logger:   logger,
	}
}

// Result summarizes an extraction pass.
type Result struct {
	Objects int
	Scripts int
}

// extraction is the state shared by all workers of one pass.
type extraction struct {
	*Extractor
	group     *errgroup.Group
	publisher *progressPublisher
	processed atomic.Int64
	scripts   atomic.Int64
}

// Extract writes every surviving node under outputDir, which must exist.
// total is the Counting Pass result for the same items and settings. The
// first error stops scheduling of further subtrees and is returned; output
// already written stays on disk.
func (e *Extractor) Extract(ctx context.Context, items []*document.Node, outputDir string, total int) (*Result, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	x := &extraction{
		Extractor: e,
		group:     g,
		publisher: newProgressPublisher(e.progress, total, e.opts.ProgressInterval),
	}

	for _, item := range items {
		item := item
		g.Go(func() error {
			return x.visit(gctx, item, outputDir)
		})
	}

	err := g.Wait()
	res := &Result{
		Objects: int(x.processed.Load()),
		Scripts: int(x.scripts.Load()),
	}
	return res, err
}

// visit extracts n into parentDir and schedules its children. Children go
// to a free worker when one is available and are processed inline
// otherwise, so recursive scheduling never waits on the pool.
func (x *extraction) visit(ctx context.Context, n *document.Node, parentDir string) error {
	if ShouldExclude(n, x.settings) {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	x.publisher.observe(x.processed.Add(1))

	dir, err := x.write(n, parentDir)
	if err != nil {
		return err
	}

	for _, child := range n.Items() {
		child := child
		if err := ctx.Err(); err != nil {
			return err
		}
		if x.group.TryGo(func() error { return x.visit(ctx, child, dir) }) {
			continue
		}
		if err := x.visit(ctx, child, dir); err != nil {
			return err
		}
	}
	return nil
}

// write creates the object's directory and files and returns the directory.
func (x *extraction) write(n *document.Node, parentDir string) (string, error) {
	class := n.ClassName()
	name := class
	props := map[string]string{propClassName: class}

	var (
		source    string
		hasSource bool
	)
	if container := n.Properties(); container != nil {
		for _, p := range container.Children {
			key := p.PropertyName()
			text, ok := p.Text()
			if key == propSource {
				source, hasSource = text, ok
				continue
			}
			if !ok {
				continue
			}
			if key == propName {
				name = text
			}
			props[key] = text
		}
	}

	dir, err := createUniqueDir(parentDir, FolderName(name, class))
	if err != nil {
		return "", err
	}

	data, err := marshalProperties(props)
	if err != nil {
		return "", fmt.Errorf("failed to encode properties for %s: %w", dir, err)
	}
	if err := os.WriteFile(filepath.Join(dir, x.opts.PropertiesFile), data, 0644); err != nil {
		return "", fmt.Errorf("failed to write properties: %w", err)
	}

	if hasSource {
		if err := os.WriteFile(filepath.Join(dir, x.opts.ScriptFile), []byte(source), 0644); err != nil {
			return "", fmt.Errorf("failed to write script: %w", err)
		}
		x.scripts.Add(1)
	}

	x.logger.Debug().Str("class", class).Str("dir", dir).Bool("script", hasSource).Msg("extracted object")
	return dir, nil
}

// marshalProperties renders props as an indented JSON object with sorted
// keys. HTML characters are left unescaped so values read as in the source.
func marshalProperties(props map[string]string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(props); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
