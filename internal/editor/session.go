// Package editor holds editable documents. A Session owns one live markup tree; every read
// and write of that tree goes through the session lock, and everything handed out is a
// rendered copy, never a reference into the tree.
package editor

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docedit/internal/markup"
	"github.com/dgallion1/docedit/internal/parser"
	"github.com/dgallion1/docedit/internal/walker"
	"github.com/gofrs/uuid"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrInvalidSelection = errors.New("invalid selection")
	ErrUnknownCommand   = errors.New("unknown command")
	ErrInvalidValue     = errors.New("invalid command value")
)

// Session is one open document.
type Session struct {
	mu sync.Mutex

	ID        string
	filename  string
	title     string
	root      *markup.Node
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// Snapshot is an immutable copy of a session's state.
type Snapshot struct {
	ID        string    `json:"doc_id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title"`
	Version   int       `json:"version"`
	Blocks    int       `json:"blocks"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	HTML      []byte    `json:"-"`
}

// NewSession creates a session holding an empty document.
func NewSession() *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.Must(uuid.NewV4()).String(),
		root:      markup.Document(parser.Stylesheet()),
		createdAt: now,
		updatedAt: now,
	}
}

// Install replaces the tree with a successfully imported document.
func (s *Session) Install(imp *parser.Imported, filename string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = imp.Root
	s.filename = filename
	s.title = imp.Title
	s.touch()
}

// SetContent replaces the body with sanitized markup. The stylesheet is kept.
func (s *Session) SetContent(html string) error {
	doc, err := markup.ParseString(markup.Sanitize(html))
	if err != nil {
		return fmt.Errorf("set content: %w", err)
	}
	var children []*markup.Node
	body := markup.Body(doc)
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = markup.Document(s.stylesheet(), children...)
	s.touch()
	return nil
}

func (s *Session) stylesheet() string {
	if st := markup.Find(s.root, "style"); st != nil {
		return markup.TextContent(st)
	}
	return ""
}

// Apply validates cmd against the current tree and, only if valid, mutates it.
func (s *Session) Apply(cmd Command) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := apply(markup.Body(s.root), cmd); err != nil {
		return err
	}
	s.touch()
	return nil
}

// Snapshot renders the tree under the lock.
func (s *Session) Snapshot() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, err := markup.Render(s.root)
	if err != nil {
		return Snapshot{}, fmt.Errorf("render session %s: %w", s.ID, err)
	}
	snap := s.infoLocked()
	snap.HTML = out
	return snap, nil
}

// Content renders only the body markup, the form SetContent accepts back.
func (s *Session) Content() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return markup.InnerHTML(markup.Body(s.root))
}

// Info is Snapshot without the rendered markup.
func (s *Session) Info() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.infoLocked()
}

func (s *Session) infoLocked() Snapshot {
	return Snapshot{
		ID:        s.ID,
		Filename:  s.filename,
		Title:     s.title,
		Version:   s.version,
		Blocks:    len(selectable(markup.Body(s.root))),
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
	}
}

// Model walks a private copy of the current tree.
func (s *Session) Model() (walker.Result, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return walker.Result{}, err
	}
	return WalkSnapshot(snap.HTML)
}

// WalkSnapshot parses rendered markup and walks it.
func WalkSnapshot(html []byte) (walker.Result, error) {
	root, err := markup.ParseString(string(html))
	if err != nil {
		return walker.Result{}, err
	}
	return walker.Walk(root), nil
}

// LastUsed reports when the session last changed.
func (s *Session) LastUsed() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updatedAt
}

func (s *Session) touch() {
	s.version++
	s.updatedAt = time.Now()
}
