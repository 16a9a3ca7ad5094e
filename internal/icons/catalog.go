package icons

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const iconExt = ".svg"

// reloadDelay coalesces bursts of filesystem events into one reload
var reloadDelay = 250 * time.Millisecond

// Catalog is the set of store icons available in a directory. An icon name
// is the file stem of an .svg file.
type Catalog struct {
	dir string

	mu    sync.RWMutex
	names map[string]struct{}

	watcher *fsnotify.Watcher
	running bool
	timer   *time.Timer
	timerMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a catalog over dir and loads it once
func New(dir string) (*Catalog, error) {
	c := &Catalog{
		dir:   dir,
		names: make(map[string]struct{}),
	}
	if err := c.Reload(); err != nil {
		return nil, err
	}
	return c, nil
}

// Dir returns the icon directory
func (c *Catalog) Dir() string {
	return c.dir
}

// Reload rereads the directory
func (c *Catalog) Reload() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("failed to read icon directory: %w", err)
	}

	names := make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if stem, ok := strings.CutSuffix(entry.Name(), iconExt); ok && stem != "" {
			names[stem] = struct{}{}
		}
	}

	c.mu.Lock()
	c.names = names
	c.mu.Unlock()

	log.Debug().Str("dir", c.dir).Int("icons", len(names)).Msg("Icon catalog loaded")
	return nil
}

// Names returns the sorted icon names
func (c *Catalog) Names() []string {
	c.mu.RLock()
	names := make([]string, 0, len(c.names))
	for name := range c.names {
		names = append(names, name)
	}
	c.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Exists reports whether name is a known icon
func (c *Catalog) Exists(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.names[name]
	return ok
}

// Start watches the directory and reloads on changes
func (c *Catalog) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create icon watcher: %w", err)
	}
	if err := watcher.Add(c.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch icon directory: %w", err)
	}

	c.watcher = watcher
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.running = true

	c.wg.Add(1)
	go c.eventLoop()

	log.Info().Str("dir", c.dir).Msg("Icon watcher started")
	return nil
}

// Stop stops the watcher
func (c *Catalog) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	c.mu.Unlock()

	c.cancel()
	c.watcher.Close()
	c.wg.Wait()

	c.timerMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()

	log.Info().Msg("Icon watcher stopped")
}

func (c *Catalog) eventLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return

		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.handleEvent(event)

		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Icon watcher error")
		}
	}
}

func (c *Catalog) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if filepath.Ext(event.Name) != iconExt {
		return
	}

	log.Trace().Str("path", event.Name).Str("op", event.Op.String()).Msg("Icon directory changed")

	c.timerMu.Lock()
	defer c.timerMu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(reloadDelay, func() {
		if err := c.Reload(); err != nil {
			log.Error().Err(err).Msg("Failed to reload icon catalog")
		}
	})
}
