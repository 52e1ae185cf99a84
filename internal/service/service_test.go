package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/gerrardelliot83-create/floe/internal/logging"
	"github.com/gerrardelliot83-create/floe/internal/store"
)

func openStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.OpenSQLite(filepath.Join(t.TempDir(), "floe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%03d", n)
	}
}

var tuesday = time.Date(2024, 3, 5, 10, 15, 0, 0, time.UTC)

func newTestTasks(st store.Store) *Tasks {
	s := NewTasks(st, logging.Nop())
	s.newID = sequentialIDs()
	return s
}

func newTestFocus(st store.Store) *Focus {
	s := NewFocus(st, logging.Nop())
	s.newID = sequentialIDs()
	return s
}

var ctx = context.Background()
