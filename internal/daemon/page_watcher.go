package daemon

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/formtrack/internal/foundation/errors"
	"git.home.luguber.info/inful/formtrack/internal/logfields"
	"git.home.luguber.info/inful/formtrack/internal/pipeline"
)

// FileProcessor handles one page file.
type FileProcessor interface {
	ProcessFile(ctx context.Context, path string) (*pipeline.Result, error)
}

// PageWatcher processes *.html files created or written in a directory.
// Each file is handled once its events have been quiet for the debounce window.
type PageWatcher struct {
	dir       string
	processor FileProcessor
	debounce  time.Duration
	watcher   *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
	stopped bool
	wg      sync.WaitGroup
	done    chan struct{}
}

// NewPageWatcher creates a watcher for dir, which must be an existing directory.
func NewPageWatcher(dir string, debounce time.Duration, processor FileProcessor) (*PageWatcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "failed to resolve watch directory").
			WithContext("dir", dir).
			Build()
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryFileSystem, "watch directory is not accessible").
			WithContext("dir", abs).
			Build()
	}
	if !info.IsDir() {
		return nil, errors.FileSystemError("watch path is not a directory").
			WithContext("dir", abs).
			Build()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryRuntime, "failed to create file watcher").Build()
	}
	return &PageWatcher{
		dir:       abs,
		processor: processor,
		debounce:  debounce,
		watcher:   w,
		pending:   make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}, nil
}

// Dir returns the watched directory.
func (pw *PageWatcher) Dir() string { return pw.dir }

// Start begins watching. The loop ends when ctx is done or Stop is called.
func (pw *PageWatcher) Start(ctx context.Context) error {
	if err := pw.watcher.Add(pw.dir); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to watch directory").
			WithContext("dir", pw.dir).
			Build()
	}
	slog.Info("Starting page watcher", logfields.Path(pw.dir))

	pw.wg.Add(1)
	go pw.watchLoop(ctx)
	return nil
}

// Stop ends the watch loop, drops files still in their debounce window and
// waits for files being processed.
func (pw *PageWatcher) Stop() error {
	pw.mu.Lock()
	if pw.stopped {
		pw.mu.Unlock()
		return nil
	}
	pw.stopped = true
	for path, t := range pw.pending {
		if t.Stop() {
			pw.wg.Done()
		}
		delete(pw.pending, path)
	}
	pw.mu.Unlock()

	close(pw.done)
	err := pw.watcher.Close()
	pw.wg.Wait()
	slog.Info("Stopped page watcher", logfields.Path(pw.dir))
	return err
}

func (pw *PageWatcher) watchLoop(ctx context.Context) {
	defer pw.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pw.done:
			return
		case event, ok := <-pw.watcher.Events:
			if !ok {
				return
			}
			if isPage(event.Name) && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				pw.schedule(ctx, event.Name)
			}
		case err, ok := <-pw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Page watcher error", logfields.Error(err))
		}
	}
}

// schedule starts or extends the debounce window of path.
func (pw *PageWatcher) schedule(ctx context.Context, path string) {
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if pw.stopped {
		return
	}
	if t, ok := pw.pending[path]; ok && t.Stop() {
		t.Reset(pw.debounce)
		return
	}

	pw.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(pw.debounce, func() {
		defer pw.wg.Done()
		pw.mu.Lock()
		if pw.pending[path] == t {
			delete(pw.pending, path)
		}
		pw.mu.Unlock()
		pw.process(ctx, path)
	})
	pw.pending[path] = t
}

func (pw *PageWatcher) process(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	res, err := pw.processor.ProcessFile(ctx, path)
	if err != nil {
		slog.Error("Failed to process page", logfields.Path(path), logfields.Error(err))
		return
	}
	slog.Info("Processed page",
		logfields.Path(path),
		logfields.PageView(res.PageView.ID),
		logfields.Count(len(res.Events)))
}

func isPage(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}
