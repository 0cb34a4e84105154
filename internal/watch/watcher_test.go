package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) paths() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, filepath.Base(ev.Path))
	}
	return out
}

func startWatcher(t *testing.T, dir, pattern string, rec *recorder) {
	t.Helper()
	w, err := New(dir, pattern, 50*time.Millisecond, rec.record)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the event loop time to start
	time.Sleep(50 * time.Millisecond)
}

func TestWatcher_ReportsWrittenFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "messages.xlf")
	require.NoError(t, os.WriteFile(path, []byte("<a>"), 0600))

	rec := &recorder{}
	startWatcher(t, dir, "", rec)

	require.NoError(t, os.WriteFile(path, []byte("<a></a>"), 0600))

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, "messages.xlf", rec.paths()[0])
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, "", rec)

	path := filepath.Join(dir, "burst.xliff")
	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(path, []byte("<a/>"), 0600))
	}

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"burst.xliff"}, rec.paths())
}

func TestWatcher_IgnoresOutputsAndOtherFiles(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, "", rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "messages_fixed.xlf"), []byte("<a/>"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "real.xml"), []byte("<a/>"), 0600))

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"real.xml"}, rec.paths())
}

func TestWatcher_WatchesNewSubdirectories(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, "", rec)

	sub := filepath.Join(dir, "de")
	require.NoError(t, os.Mkdir(sub, 0755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "messages.xlf"), []byte("<a/>"), 0600))

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcher_ReportsFilesInsideMovedDirectory(t *testing.T) {
	dir := t.TempDir()
	staging := t.TempDir()
	writeFile := func(rel string) {
		path := filepath.Join(staging, "fr", rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("<a/>"), 0600))
	}
	writeFile("messages.xlf")
	writeFile("nested/données.xliff")
	writeFile("messages_fixed.xlf")
	writeFile("readme.txt")

	rec := &recorder{}
	startWatcher(t, dir, "", rec)

	require.NoError(t, os.Rename(filepath.Join(staging, "fr"), filepath.Join(dir, "fr")))

	assert.Eventually(t, func() bool {
		return len(rec.paths()) >= 2
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.ElementsMatch(t, []string{"messages.xlf", "données.xliff"}, rec.paths())
}

func TestWatcher_CustomPattern(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatcher(t, dir, "*.xlf", rec)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "skip.xml"), []byte("<a/>"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.xlf"), []byte("<a/>"), 0600))

	assert.Eventually(t, func() bool {
		return len(rec.paths()) > 0
	}, 2*time.Second, 20*time.Millisecond)
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, []string{"keep.xlf"}, rec.paths())
}

func TestNew_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent"), "", 0, nil)
	assert.Error(t, err)
}
