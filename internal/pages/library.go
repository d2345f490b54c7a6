package pages

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"
	"time"
)

//go:embed content/*.md
var embedded embed.FS

// Embedded returns the articles compiled into the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "content")
	if err != nil {
		panic(fmt.Sprintf("pages: embedded content: %v", err))
	}
	return sub
}

// Library manages the parsed documents for every page key.
type Library struct {
	sources  []fs.FS
	docs     map[Key]*Document
	mutex    sync.RWMutex
	watchers []chan Event
}

// Event reports a change in the library after a reload.
type Event struct {
	Type      EventType
	Key       Key
	Timestamp time.Time
}

// EventType represents the type of library event. Every key always has a
// document, so there is no removal event.
type EventType int

const (
	EventTypeAdded EventType = iota
	EventTypeUpdated
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeAdded:
		return "added"
	case EventTypeUpdated:
		return "updated"
	default:
		return "unknown"
	}
}

// NewLibrary creates a library reading from the given sources. Later sources
// override documents with the same key from earlier ones.
func NewLibrary(sources ...fs.FS) *Library {
	return &Library{
		sources:  sources,
		docs:     make(map[Key]*Document),
		watchers: make([]chan Event, 0),
	}
}

// Load parses every source and replaces the library contents. A document is
// required for every key; the previous contents are kept on failure.
func (l *Library) Load() error {
	docs := make(map[Key]*Document, len(allKeys))
	for _, src := range l.sources {
		if err := readSource(src, docs); err != nil {
			return err
		}
	}

	var missing []string
	for _, k := range allKeys {
		if _, ok := docs[k]; !ok {
			missing = append(missing, k.String())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no content for pages: %s", strings.Join(missing, ", "))
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	now := time.Now()
	var events []Event
	for k, doc := range docs {
		prev, exists := l.docs[k]
		switch {
		case !exists:
			events = append(events, Event{Type: EventTypeAdded, Key: k, Timestamp: now})
		case prev.Hash != doc.Hash:
			events = append(events, Event{Type: EventTypeUpdated, Key: k, Timestamp: now})
		}
	}
	l.docs = docs

	for _, event := range events {
		for _, watcher := range l.watchers {
			select {
			case watcher <- event:
			default:
				// Skip if channel is full
			}
		}
	}
	return nil
}

func readSource(src fs.FS, docs map[Key]*Document) error {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return fmt.Errorf("read content directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != ".md" || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		data, err := fs.ReadFile(src, entry.Name())
		if err != nil {
			return fmt.Errorf("read %s: %w", entry.Name(), err)
		}
		doc, err := ParseDocument(entry.Name(), data)
		if err != nil {
			return err
		}
		docs[doc.Key] = doc
	}
	return nil
}

// Get retrieves the document for a key.
func (l *Library) Get(k Key) (*Document, bool) {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	doc, ok := l.docs[k]
	return doc, ok
}

// Lookup resolves a raw page string, falling back to the home document when
// the string is not a known key. found reports whether the key was known.
func (l *Library) Lookup(raw string) (doc *Document, found bool) {
	k, found := Parse(raw)
	doc, ok := l.Get(k)
	if !ok {
		doc, _ = l.Get(DefaultKey)
		return doc, false
	}
	return doc, found
}

// Documents returns all documents in sidebar order.
func (l *Library) Documents() []*Document {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	out := make([]*Document, 0, len(l.docs))
	for _, doc := range l.docs {
		out = append(out, doc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Count returns the number of loaded documents.
func (l *Library) Count() int {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	return len(l.docs)
}

// Watch returns a channel that receives library events.
func (l *Library) Watch() <-chan Event {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	ch := make(chan Event, 100)
	l.watchers = append(l.watchers, ch)
	return ch
}

// Unwatch removes a watcher channel and closes it.
func (l *Library) Unwatch(ch <-chan Event) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	for i, watcher := range l.watchers {
		if watcher == ch {
			close(watcher)
			l.watchers = append(l.watchers[:i], l.watchers[i+1:]...)
			break
		}
	}
}
