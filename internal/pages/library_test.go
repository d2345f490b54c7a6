package pages

import (
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadEmbedded(t *testing.T) *Library {
	t.Helper()
	lib := NewLibrary(Embedded())
	require.NoError(t, lib.Load())
	return lib
}

func TestLibraryLoadEmbedded(t *testing.T) {
	lib := loadEmbedded(t)

	assert.Equal(t, len(All()), lib.Count())
	for _, k := range All() {
		doc, ok := lib.Get(k)
		require.True(t, ok, "missing document for %s", k)
		assert.Equal(t, k, doc.Key)
		assert.NotEmpty(t, doc.Title)
		assert.NotEmpty(t, doc.Body)
		assert.NotEmpty(t, doc.Hash)
	}

	docs := lib.Documents()
	require.Len(t, docs, len(All()))
	assert.Equal(t, Home, docs[0].Key)
	assert.Equal(t, Docente, docs[len(docs)-1].Key)
}

func TestLibraryLookup(t *testing.T) {
	lib := loadEmbedded(t)

	doc, found := lib.Lookup("cascada")
	assert.True(t, found)
	assert.Equal(t, "Modelo Lineal Secuencial (Cascada)", doc.Title)
	assert.True(t, doc.HasBack)
	assert.Equal(t, CicloVida, doc.Back)
	assert.Equal(t, "Volver a Ciclo de Vida del Software", doc.BackLabel)

	doc, found = lib.Lookup("foo")
	assert.False(t, found)
	assert.Equal(t, Home, doc.Key)
}

func TestLibraryLoadRejectsIncompleteContent(t *testing.T) {
	fsys := fstest.MapFS{
		"home.md": {Data: []byte("---\nkey: home\ntitle: Inicio\n---\nhola\n")},
	}
	lib := NewLibrary(fsys)

	err := lib.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cascada")
	assert.Equal(t, 0, lib.Count())
}

func TestLibraryOverride(t *testing.T) {
	override := fstest.MapFS{
		"rad.md":     {Data: []byte("---\nkey: rad\ntitle: RAD revisado\nback: ciclo-vida\n---\nNuevo texto.\n")},
		"notes.txt":  {Data: []byte("ignored")},
		".hidden.md": {Data: []byte("ignored")},
	}
	lib := NewLibrary(Embedded(), override)
	require.NoError(t, lib.Load())

	doc, ok := lib.Get(RAD)
	require.True(t, ok)
	assert.Equal(t, "RAD revisado", doc.Title)
	assert.Contains(t, doc.Body, "Nuevo texto.")
	assert.Equal(t, "rad.md", doc.Source)
}

func TestLibraryWatchReportsUpdates(t *testing.T) {
	override := fstest.MapFS{}
	lib := NewLibrary(Embedded(), override)
	require.NoError(t, lib.Load())

	events := lib.Watch()
	defer lib.Unwatch(events)

	override["espiral.md"] = &fstest.MapFile{Data: []byte("---\nkey: espiral\ntitle: Espiral\n---\nCambio.\n")}
	require.NoError(t, lib.Load())

	select {
	case event := <-events:
		assert.Equal(t, EventTypeUpdated, event.Type)
		assert.Equal(t, Espiral, event.Key)
	case <-time.After(time.Second):
		t.Fatal("expected an update event")
	}

	// Reloading unchanged content emits nothing.
	require.NoError(t, lib.Load())
	select {
	case event := <-events:
		t.Fatalf("unexpected event %v for %s", event.Type, event.Key)
	default:
	}
}

func TestLibraryKeepsContentOnFailedReload(t *testing.T) {
	override := fstest.MapFS{}
	lib := NewLibrary(Embedded(), override)
	require.NoError(t, lib.Load())

	override["broken.md"] = &fstest.MapFile{Data: []byte("---\nkey: nope\ntitle: x\n---\n")}
	require.Error(t, lib.Load())

	assert.Equal(t, len(All()), lib.Count())
}

func TestUnwatchClosesChannel(t *testing.T) {
	lib := NewLibrary()
	ch := lib.Watch()
	lib.Unwatch(ch)

	_, open := <-ch
	assert.False(t, open)
}
