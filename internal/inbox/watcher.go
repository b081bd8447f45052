// Package inbox runs task workflows for task definition files dropped into a directory.
//
// Files are picked up once they stop changing for the settle delay. Writers
// should still write under another extension and rename into place.
// Handled files move to processed/, failures to failed/ next to a .err note.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/devteam/pkg/models"
)

// DefaultSettle is how long a file must stay quiet before it is read.
const DefaultSettle = 500 * time.Millisecond

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// Handler runs a workflow for one task loaded from path.
type Handler func(ctx context.Context, path string, item *models.WorkItem) error

// Watcher feeds task files from a directory to a Handler.
type Watcher struct {
	dir    string
	handle Handler
	settle time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
	active  map[string]struct{}
	wg      sync.WaitGroup
}

// New prepares dir and its processed/ and failed/ subdirectories.
func New(dir string, handle Handler) (*Watcher, error) {
	if handle == nil {
		return nil, errors.New("inbox: nil handler")
	}
	for _, d := range []string{dir, filepath.Join(dir, processedDir), filepath.Join(dir, failedDir)} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, fmt.Errorf("create %s: %w", d, err)
		}
	}
	return &Watcher{
		dir:     dir,
		handle:  handle,
		settle:  DefaultSettle,
		pending: make(map[string]*time.Timer),
		active:  make(map[string]struct{}),
	}, nil
}

// SetSettle changes the quiet period before a file is read.
func (w *Watcher) SetSettle(d time.Duration) {
	w.settle = d
}

// Dir returns the watched directory.
func (w *Watcher) Dir() string {
	return w.dir
}

// Run handles files already present, then watches for new ones until ctx is done.
// In-flight handlers are awaited before Run returns.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	existing, err := w.scan()
	if err != nil {
		return err
	}
	for _, path := range existing {
		w.schedule(ctx, path)
	}
	log.Printf("[inbox] watching %s (%d queued)", w.dir, len(existing))

	defer w.drain()
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) && isTaskFile(event.Name) {
				w.schedule(ctx, event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[inbox] fsnotify error: %v", err)
		}
	}
}

// Process loads one task file, runs the handler, and files it away.
func (w *Watcher) Process(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	item, err := models.ParseTaskDefinition(data)
	if err == nil {
		err = w.handle(ctx, path, item)
	}
	if err != nil {
		w.file(path, failedDir)
		note := filepath.Join(w.dir, failedDir, filepath.Base(path)+".err")
		if werr := os.WriteFile(note, []byte(err.Error()+"\n"), 0644); werr != nil {
			log.Printf("[inbox] write %s: %v", note, werr)
		}
		return err
	}
	w.file(path, processedDir)
	return nil
}

// scan lists task files already waiting in the inbox, oldest name first.
func (w *Watcher) scan() ([]string, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return nil, fmt.Errorf("read inbox: %w", err)
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() || !isTaskFile(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(w.dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// schedule (re)starts the settle timer for path.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, busy := w.active[path]; busy {
		return
	}
	if t, ok := w.pending[path]; ok {
		// A timer that already fired reads the file after this write anyway.
		if t.Stop() {
			t.Reset(w.settle)
		}
		return
	}
	w.wg.Add(1)
	w.pending[path] = time.AfterFunc(w.settle, func() {
		defer w.wg.Done()
		w.mu.Lock()
		delete(w.pending, path)
		w.active[path] = struct{}{}
		w.mu.Unlock()

		if ctx.Err() == nil {
			if err := w.Process(ctx, path); err != nil {
				log.Printf("[inbox] %s failed: %v", filepath.Base(path), err)
			} else {
				log.Printf("[inbox] %s done", filepath.Base(path))
			}
		}

		w.mu.Lock()
		delete(w.active, path)
		w.mu.Unlock()
	})
}

// drain stops timers that have not fired and waits for running handlers.
func (w *Watcher) drain() {
	w.mu.Lock()
	for path, t := range w.pending {
		if t.Stop() {
			w.wg.Done()
		}
		delete(w.pending, path)
	}
	w.mu.Unlock()
	w.wg.Wait()
}

// file moves path into the named subdirectory, replacing any earlier file of the same name.
func (w *Watcher) file(path, sub string) {
	dst := filepath.Join(w.dir, sub, filepath.Base(path))
	if err := os.Rename(path, dst); err != nil {
		log.Printf("[inbox] move %s to %s: %v", filepath.Base(path), sub, err)
	}
}

func isTaskFile(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".json")
}
