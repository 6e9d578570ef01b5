package batch

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// debounceWindow is how long a file must stay quiet before it is
// considered fully written and enqueued.
const debounceWindow = 500 * time.Millisecond

// Watch processes files already in dir matching pattern, then keeps
// watching for created or modified files until the context is
// cancelled. pattern is matched against the base name.
func Watch(ctx context.Context, dir, pattern string, p Pipeline, workers int) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(dir); err != nil {
		return err
	}

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				r := p.ProcessFile(path)
				if r.Err != nil {
					log.Warn("file failed", "file", r.File, "error", r.Err)
				} else {
					log.Info("file processed", "file", r.File, "output", r.Output)
				}
			}
		}()
	}

	// Existing files first.
	if files, err := Discover(filepath.Join(dir, pattern)); err == nil {
		for _, f := range files {
			select {
			case jobs <- f:
			case <-ctx.Done():
			}
		}
	}

	// Debounce: a file is enqueued once no event touched it for a full
	// window.
	pending := map[string]time.Time{}
	ticker := time.NewTicker(debounceWindow / 2)
	defer ticker.Stop()

	log.Info("watching", "dir", dir, "pattern", pattern)
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if match, _ := doublestar.Match(pattern, filepath.Base(ev.Name)); match {
				pending[ev.Name] = time.Now()
			}

		case err, ok := <-w.Errors:
			if !ok {
				close(jobs)
				wg.Wait()
				return nil
			}
			log.Warn("watch error", "error", err)

		case now := <-ticker.C:
			for path, last := range pending {
				if now.Sub(last) < debounceWindow {
					continue
				}
				delete(pending, path)
				select {
				case jobs <- path:
				case <-ctx.Done():
				}
			}
		}
	}
}
