package cvseq

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seq.lua")
	if err := os.WriteFile(path, []byte(`steps = { 0 }`), 0o644); err != nil {
		t.Fatal(err)
	}
	w, err := NewWatcher(path)
	if err != nil {
		t.Fatalf("watcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Sequence, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(s *Sequence) { reloaded <- s }, func(error) {})
	}()

	if err := os.WriteFile(path, []byte(`steps = { 1, 2 }`), 0o644); err != nil {
		t.Fatal(err)
	}
	timeout := time.After(5 * time.Second)
	for {
		select {
		case seq := <-reloaded:
			if len(seq.Steps) == 2 {
				cancel()
				if err := <-done; err != nil {
					t.Fatalf("run: %v", err)
				}
				return
			}
		case <-timeout:
			t.Fatal("sequence was not reloaded")
		}
	}
}
