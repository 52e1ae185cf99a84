package dashboard

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 200 * time.Millisecond

// Sender receives reload messages. *tea.Program implements it.
type Sender interface {
	Send(msg tea.Msg)
}

// StartWatcher watches the SQLite database file (and its -wal/-journal
// siblings) and sends ReloadMsg once writes settle. The returned stop function may be
// called more than once.
func StartWatcher(dbPath string, sender Sender) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	base := filepath.Base(dbPath)
	if err := watcher.Add(filepath.Dir(dbPath)); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	done := make(chan struct{})

	go func() {
		var debounceTimer *time.Timer
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasPrefix(filepath.Base(event.Name), base) {
					continue
				}
				if event.Op == fsnotify.Chmod {
					continue
				}
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(reloadDebounce, func() {
					sender.Send(ReloadMsg{})
				})
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			case <-done:
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				return
			}
		}
	}()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			close(done)
			_ = watcher.Close()
		})
	}
	return cleanup, nil
}
