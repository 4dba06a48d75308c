package backend

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigChangedMsg is sent when the config file was written or replaced.
type ConfigChangedMsg struct {
	Path string
}

// Watcher monitors the config file via fsnotify.
type Watcher struct {
	w      *fsnotify.Watcher
	sender Sender
	path   string
	log    *zap.Logger
}

// NewWatcher watches the directory holding path so that editors which
// replace the file (write to temp + rename) are noticed too.
func NewWatcher(path string, sender Sender, log *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	watcher := &Watcher{
		w:      fw,
		sender: sender,
		path:   filepath.Clean(path),
		log:    log,
	}
	go watcher.loop()
	return watcher, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	return w.w.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			w.log.Debug("config file changed", zap.String("path", event.Name))
			w.sender.Send(ConfigChangedMsg{Path: w.path})

		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			w.log.Warn("watcher error", zap.Error(err))
		}
	}
}
