package watcher

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/conneroisu/ciclowiki/internal/errors"
	"github.com/conneroisu/ciclowiki/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// collector records handler batches.
type collector struct {
	mutex   sync.Mutex
	batches [][]ChangeEvent
}

func (c *collector) handle(_ context.Context, events []ChangeEvent) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.batches = append(c.batches, events)
	return nil
}

func (c *collector) paths() []string {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	var out []string
	for _, batch := range c.batches {
		for _, e := range batch {
			out = append(out, filepath.Base(e.Path))
		}
	}
	return out
}

func (c *collector) count() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.batches)
}

func startWatcher(t *testing.T, dir string, delay time.Duration) *collector {
	t.Helper()

	fw, err := NewFileWatcher(delay, logging.Discard())
	require.NoError(t, err)
	fw.AddFilter(MarkdownFilter)
	fw.AddFilter(NoHiddenFilter)

	c := &collector{}
	fw.AddHandler(c.handle)
	require.NoError(t, fw.AddRecursive(dir))

	ctx, cancel := context.WithCancel(context.Background())
	fw.Start(ctx)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, fw.Stop())
	})
	return c
}

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(42), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestNewFileWatcher(t *testing.T) {
	fw, err := NewFileWatcher(100*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	assert.NotNil(t, fw.watcher)
	assert.NotNil(t, fw.debouncer)
	assert.Empty(t, fw.filters)
	assert.Empty(t, fw.handlers)

	fw.AddFilter(MarkdownFilter)
	fw.AddHandler(func(context.Context, []ChangeEvent) error { return nil })
	assert.Len(t, fw.filters, 1)
	assert.Len(t, fw.handlers, 1)
}

func TestAddPathValidation(t *testing.T) {
	fw, err := NewFileWatcher(DefaultDebounce, nil)
	require.NoError(t, err)
	defer fw.Stop()

	dir := t.TempDir()
	file := filepath.Join(dir, "page.md")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))

	assert.NoError(t, fw.AddPath(dir))
	assert.Error(t, fw.AddPath(file), "files are not directories")
	assert.Error(t, fw.AddPath(filepath.Join(dir, "missing")))
	assert.Error(t, fw.AddPath("../../etc"))
}

func TestWatcherReportsMarkdownChanges(t *testing.T) {
	dir := t.TempDir()
	c := startWatcher(t, dir, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "cascada.md"), []byte("one"), 0o600))

	require.Eventually(t, func() bool {
		return assert.ObjectsAreEqual([]string{"cascada.md"}, c.paths())
	}, 2*time.Second, 20*time.Millisecond)
}

func TestWatcherIgnoresFilteredFiles(t *testing.T) {
	dir := t.TempDir()
	c := startWatcher(t, dir, 30*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".cascada.md.swp"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".hidden.md"), []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rad.md"), []byte("x"), 0o600))

	require.Eventually(t, func() bool { return c.count() > 0 }, 2*time.Second, 20*time.Millisecond)
	time.Sleep(100 * time.Millisecond)

	for _, p := range c.paths() {
		assert.Equal(t, "rad.md", p)
	}
}

func TestWatcherWatchesSubdirectories(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "modelos")
	require.NoError(t, os.Mkdir(sub, 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, ".git"), 0o755))

	c := startWatcher(t, dir, 30*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "espiral.md"), []byte("x"), 0o600))

	require.Eventually(t, func() bool {
		for _, p := range c.paths() {
			if p == "espiral.md" {
				return true
			}
		}
		return false
	}, 2*time.Second, 20*time.Millisecond)
}

// syncBuffer is a log sink safe to read while the watcher writes to it.
type syncBuffer struct {
	mutex sync.Mutex
	buf   bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) lineWith(text string) string {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, line := range strings.Split(b.buf.String(), "\n") {
		if strings.Contains(line, text) {
			return line
		}
	}
	return ""
}

func TestHandlerFailuresLoggedBySeverity(t *testing.T) {
	dir := t.TempDir()
	var logs syncBuffer

	fw, err := NewFileWatcher(20*time.Millisecond, logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.LevelDebug,
		Output: &logs,
	}))
	require.NoError(t, err)
	fw.AddFilter(MarkdownFilter)
	fw.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		if filepath.Base(events[0].Path) == "draft.md" {
			return errors.NewContentError(errors.ErrCodeContentLoad, "half written article", nil)
		}
		return errors.NewInternalError(errors.ErrCodeRender, "renderer broke", nil)
	})
	require.NoError(t, fw.AddPath(dir))

	ctx, cancel := context.WithCancel(context.Background())
	fw.Start(ctx)
	t.Cleanup(func() {
		cancel()
		require.NoError(t, fw.Stop())
	})

	require.NoError(t, os.WriteFile(filepath.Join(dir, "draft.md"), []byte("x"), 0o600))
	require.Eventually(t, func() bool { return logs.lineWith("half written article") != "" }, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, logs.lineWith("half written article"), "level=WARN")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "final.md"), []byte("x"), 0o600))
	require.Eventually(t, func() bool { return logs.lineWith("renderer broke") != "" }, 2*time.Second, 20*time.Millisecond)
	assert.Contains(t, logs.lineWith("renderer broke"), "level=ERROR")
}

func TestDebouncerGroupsBursts(t *testing.T) {
	d := &Debouncer{
		delay:  40 * time.Millisecond,
		events: make(chan ChangeEvent, 100),
		output: make(chan []ChangeEvent, 10),
	}

	for i := 0; i < 5; i++ {
		d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.md"})
	}
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "a.md"})
	d.addEvent(ChangeEvent{Type: EventTypeDeleted, Path: "b.md"})

	select {
	case events := <-d.output:
		require.Len(t, events, 2)
		assert.Equal(t, "a.md", events[0].Path)
		assert.Equal(t, "b.md", events[1].Path)
		assert.Equal(t, EventTypeDeleted, events[1].Type, "latest event per path wins")
	case <-time.After(time.Second):
		t.Fatal("debouncer never flushed")
	}

	select {
	case events := <-d.output:
		t.Fatalf("unexpected second batch: %v", events)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestDebouncerStopCancelsFlush(t *testing.T) {
	d := &Debouncer{
		delay:  30 * time.Millisecond,
		events: make(chan ChangeEvent, 1),
		output: make(chan []ChangeEvent, 1),
	}
	d.addEvent(ChangeEvent{Path: "a.md"})
	d.stop()

	select {
	case <-d.output:
		t.Fatal("flush after stop")
	case <-time.After(80 * time.Millisecond):
	}
}

func TestFilters(t *testing.T) {
	tests := []struct {
		path     string
		markdown bool
		visible  bool
		backup   bool
	}{
		{"content/cascada.md", true, true, false},
		{"content/RAD.MD", true, true, false},
		{"content/notes.markdown", true, true, false},
		{"content/page.md~", false, true, true},
		{"content/.page.md.swp", false, false, false},
		{"content/.hidden.md", true, false, false},
		{"content/image.png", false, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.markdown, MarkdownFilter(tt.path))
			assert.Equal(t, tt.visible, NoHiddenFilter(tt.path))
			assert.Equal(t, !tt.backup, NoBackupFilter(tt.path))
		})
	}
}
