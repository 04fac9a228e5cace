package summary

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/tjma12/gwsumm/internal/config"
)

// WatchRequest configures watch mode.
type WatchRequest struct {
	Generate GenerateRequest
	// OnResult is called after every generation, successful or not.
	OnResult func(*GenerateResult, error)
}

// Watch generates once and then again whenever a configuration file or a
// file in the CSV data directory changes, until ctx is done.
func Watch(ctx context.Context, req WatchRequest) error {
	if len(req.Generate.ConfigFiles) == 0 {
		return fmt.Errorf("at least one --config-file is required")
	}
	configPaths := make([]string, 0, len(req.Generate.ConfigFiles))
	for _, path := range req.Generate.ConfigFiles {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve config path: %w", err)
		}
		configPaths = append(configPaths, absPath)
	}
	dataDirs := collectDataDirs(configPaths)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, dir := range watchDirs(configPaths, dataDirs) {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	coalescer := newGenerationCoalescer(func() {
		result, err := Generate(ctx, req.Generate)
		if req.OnResult != nil {
			req.OnResult(result, err)
		}
	})
	coalescer.Trigger()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if isRelevantChange(event, configPaths, dataDirs) {
				go coalescer.Trigger()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch: %w", err)
		}
	}
}

// collectDataDirs returns the CSV data directory named by the
// configuration, if any. Unreadable configuration yields nothing; the next
// generation reports the error.
func collectDataDirs(configPaths []string) []string {
	cfg, err := config.Load(configPaths...)
	if err != nil {
		return nil
	}
	if !strings.EqualFold(strings.TrimSpace(cfg.GetDefault("datafind", "source", "")), "csv") {
		return nil
	}
	dir := strings.TrimSpace(cfg.GetDefault("datafind", "path", ""))
	if dir == "" {
		return nil
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(filepath.Dir(configPaths[0]), dir)
	}
	return []string{filepath.Clean(dir)}
}

func watchDirs(configPaths, dataDirs []string) []string {
	seen := make(map[string]bool)
	var dirs []string
	add := func(dir string) {
		if !seen[dir] {
			seen[dir] = true
			dirs = append(dirs, dir)
		}
	}
	for _, path := range configPaths {
		add(filepath.Dir(path))
	}
	for _, dir := range dataDirs {
		add(dir)
	}
	return dirs
}

// isRelevantChange reports whether event should trigger a regeneration:
// a write or create of a configuration file, or of a CSV or markdown file
// inside a data directory.
func isRelevantChange(event fsnotify.Event, configPaths, dataDirs []string) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return false
	}
	name := filepath.Clean(event.Name)
	for _, path := range configPaths {
		if name == filepath.Clean(path) {
			return true
		}
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".md":
	default:
		return false
	}
	dir := filepath.Dir(name)
	for _, dataDir := range dataDirs {
		if dir == filepath.Clean(dataDir) {
			return true
		}
	}
	return false
}

// generationCoalescer runs fn serially. Triggers that arrive while a run is
// in progress collapse into a single follow-up run.
type generationCoalescer struct {
	mu      sync.Mutex
	running bool
	pending bool
	fn      func()
}

func newGenerationCoalescer(fn func()) *generationCoalescer {
	return &generationCoalescer{fn: fn}
}

// Trigger runs fn, or schedules a follow-up if a run is in progress. The
// caller that starts a run also runs any follow-up before returning.
func (c *generationCoalescer) Trigger() {
	c.mu.Lock()
	if c.running {
		c.pending = true
		c.mu.Unlock()
		return
	}
	c.running = true
	c.mu.Unlock()

	for {
		c.fn()
		c.mu.Lock()
		if !c.pending {
			c.running = false
			c.mu.Unlock()
			return
		}
		c.pending = false
		c.mu.Unlock()
	}
}
