package assets

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/formation/engine/core"
)

var ErrWatcherClosed = errors.New("config watcher already closed")

// ConfigWatcher reports writes to a single file. The parent directory is
// watched so editors that replace the file on save are still noticed.
type ConfigWatcher struct {
	path string
	base string

	mutex      sync.RWMutex
	lastLoaded time.Time
	isClosed   bool

	done     chan struct{}
	stopped  chan struct{}
	fsnotify *fsnotify.Watcher
	changes  chan string
	errors   chan error
}

func NewConfigWatcher(path string) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		path:     abs,
		base:     filepath.Base(abs),
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		changes:  make(chan string, 1),
		errors:   make(chan error, 1),
	}
	go cw.start()
	return cw, nil
}

// Changes delivers the watched path after every write. Pending notifications
// are coalesced so a slow reader only sees the latest one.
func (cw *ConfigWatcher) Changes() <-chan string {
	return cw.changes
}

func (cw *ConfigWatcher) Errors() <-chan error {
	return cw.errors
}

func (cw *ConfigWatcher) Path() string {
	return cw.path
}

// LastChanged is the time the most recent change was observed.
func (cw *ConfigWatcher) LastChanged() time.Time {
	cw.mutex.RLock()
	defer cw.mutex.RUnlock()
	return cw.lastLoaded
}

func (cw *ConfigWatcher) Close() error {
	cw.mutex.Lock()
	if cw.isClosed {
		cw.mutex.Unlock()
		return ErrWatcherClosed
	}
	cw.isClosed = true
	cw.mutex.Unlock()

	close(cw.done)
	<-cw.stopped
	return nil
}

func (cw *ConfigWatcher) start() {
	defer close(cw.stopped)
	for {
		select {
		case e, ok := <-cw.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Base(e.Name) != cw.base {
				continue
			}
			// Handle create or modify events
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				cw.handleFileEvent()
			}

		case err, ok := <-cw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("config watcher: %s", err)
			select {
			case cw.errors <- err:
			default:
			}

		case <-cw.done:
			cw.fsnotify.Close()
			close(cw.changes)
			close(cw.errors)
			return
		}
	}
}

func (cw *ConfigWatcher) handleFileEvent() {
	cw.mutex.Lock()
	cw.lastLoaded = time.Now()
	cw.mutex.Unlock()

	core.LogDebug("config file %s changed", cw.path)
	select {
	case cw.changes <- cw.path:
	default:
		// A notification is already pending.
	}
}
