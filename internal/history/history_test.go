package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "nested", "history.json"))
}

func TestAppendAppendListOne(t *testing.T) {
	store := newTestStore(t)

	e1 := NewEntry(fixedNow, []string{"chatgpt"}, "first", map[string]string{"chatgpt": "one"})
	e2 := NewEntry(fixedNow.Add(time.Minute), []string{"claude", "gemini"}, "second", map[string]string{"claude": "two", "gemini": "deux"})
	require.NoError(t, store.Append(e1))
	require.NoError(t, store.Append(e2))

	got, err := store.List(1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e2, got[0])

	all, err := store.List(0)
	require.NoError(t, err)
	assert.Equal(t, []Entry{e1, e2}, all)

	last, ok, err := store.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "second", last.Prompt)
}

func TestClearThenList(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(NewEntry(fixedNow, []string{"a"}, "p", map[string]string{"a": "x"})))

	removed, err := store.Clear()
	require.NoError(t, err)
	assert.True(t, removed)

	got, err := store.List(5)
	require.NoError(t, err)
	assert.Empty(t, got)

	removed, err = store.Clear()
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMissingLog(t *testing.T) {
	store := newTestStore(t)

	got, err := store.List(0)
	require.NoError(t, err)
	assert.Empty(t, got)

	_, ok, err := store.Last()
	require.NoError(t, err)
	assert.False(t, ok)

	err = store.Export(filepath.Join(t.TempDir(), "out.json"))
	assert.ErrorIs(t, err, ErrNoHistory)
}

func TestFileFormat(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(NewEntry(fixedNow, []string{"echoA", "echoB"}, "2+2?", map[string]string{"echoA": "4", "echoB": "four"})))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	var raw []map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	require.Len(t, raw, 1)
	assert.Equal(t, "2026-03-14T09:26:53Z", raw[0]["timestamp"])
	assert.Equal(t, []any{"echoA", "echoB"}, raw[0]["agents"])
	assert.Equal(t, "2+2?", raw[0]["prompt"])
	assert.Equal(t, map[string]any{"echoA": "4", "echoB": "four"}, raw[0]["results"])
}

func TestExportCopiesLog(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Append(NewEntry(fixedNow, []string{"a"}, "p", map[string]string{"a": "x"})))

	dst := filepath.Join(t.TempDir(), "exports", "history_export.json")
	require.NoError(t, store.Export(dst))

	want, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCorruptLogIsReported(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(store.Path()), 0o755))
	require.NoError(t, os.WriteFile(store.Path(), []byte("{not json"), 0o644))

	err := store.Append(NewEntry(fixedNow, nil, "p", nil))
	require.Error(t, err)

	data, readErr := os.ReadFile(store.Path())
	require.NoError(t, readErr)
	assert.Equal(t, "{not json", string(data), "a failed append must leave the old log intact")
}

func TestNewEntryCopiesInputs(t *testing.T) {
	backends := []string{"a"}
	results := map[string]string{"a": "x"}
	entry := NewEntry(fixedNow, backends, "p", results)

	backends[0] = "mutated"
	results["a"] = "mutated"

	assert.Equal(t, []string{"a"}, entry.Backends)
	assert.Equal(t, "x", entry.Results["a"])
}

func TestConcurrentAppendsAreSerialized(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Append(NewEntry(fixedNow, []string{"a"}, "p", map[string]string{"a": "x"})))
		}()
	}
	wg.Wait()

	got, err := store.List(0)
	require.NoError(t, err)
	assert.Len(t, got, 20)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(store.Path()), ".history-*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}
