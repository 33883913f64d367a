package am

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
)

// ChangeCallback is called once per burst of changes to the watched file
type ChangeCallback func(path string)

// FileWatcher watches a single file and reports debounced changes. It watches
// the parent directory so editors that replace the file on save are seen too.
type FileWatcher struct {
	path           string
	watcher        *fsnotify.Watcher
	callbacks      []ChangeCallback
	mu             sync.Mutex
	debounceTimer  *time.Timer
	debouncePeriod time.Duration
	done           chan struct{}
}

// NewFileWatcher creates a watcher for path. A non-positive debounce uses
// DefaultDebounceMS.
func NewFileWatcher(path string, debounce time.Duration) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounceMS * time.Millisecond
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, errors.Wrapf(err, "failed to watch %s", path)
	}

	return &FileWatcher{
		path:           abs,
		watcher:        watcher,
		debouncePeriod: debounce,
		done:           make(chan struct{}),
	}, nil
}

// OnChange registers a callback
func (fw *FileWatcher) OnChange(callback ChangeCallback) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	fw.callbacks = append(fw.callbacks, callback)
}

// Start begins watching in a background goroutine
func (fw *FileWatcher) Start() {
	go fw.watchLoop()
}

// Done is closed when the watch loop exits
func (fw *FileWatcher) Done() <-chan struct{} {
	return fw.done
}

func (fw *FileWatcher) watchLoop() {
	defer close(fw.done)
	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debugw("Watcher detected change",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			fw.scheduleNotify()

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// scheduleNotify debounces rapid changes into one callback round
func (fw *FileWatcher) scheduleNotify() {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.debounceTimer = time.AfterFunc(fw.debouncePeriod, fw.notify)
}

func (fw *FileWatcher) notify() {
	fw.mu.Lock()
	callbacks := make([]ChangeCallback, len(fw.callbacks))
	copy(callbacks, fw.callbacks)
	fw.mu.Unlock()

	for _, callback := range callbacks {
		callback(fw.path)
	}
}

// Stop stops watching
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.debounceTimer != nil {
		fw.debounceTimer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}
