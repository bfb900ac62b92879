package cvseq

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a sequence script whenever it is written.
type Watcher struct {
	path string
	w    *fsnotify.Watcher
}

// NewWatcher starts watching the directory holding path. Editors often
// replace files instead of writing them, so the directory is watched rather
// than the file.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{path: abs, w: w}, nil
}

// Run delivers each successfully reloaded sequence to reload and every load
// or watch error to report, until ctx is done.
func (w *Watcher) Run(ctx context.Context, reload func(*Sequence), report func(error)) error {
	defer w.w.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path || ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			seq, err := Load(w.path)
			if err != nil {
				report(err)
				continue
			}
			reload(seq)
		case err, ok := <-w.w.Errors:
			if !ok {
				return nil
			}
			report(err)
		}
	}
}
