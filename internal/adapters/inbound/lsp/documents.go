package lsp

import (
	"sync"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/nix-mox/moxlint/internal/domain"
)

type document struct {
	uri     protocol.DocumentUri
	version protocol.Integer
	text    string
}

// documentStore holds the text of every open document.
type documentStore struct {
	mu   sync.RWMutex
	docs map[protocol.DocumentUri]*document
}

func newDocumentStore() *documentStore {
	return &documentStore{docs: map[protocol.DocumentUri]*document{}}
}

func (s *documentStore) open(uri protocol.DocumentUri, version protocol.Integer, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[uri] = &document{uri: uri, version: version, text: text}
}

// change applies content changes in order and returns the new text. Changes
// to unknown documents are ignored.
func (s *documentStore) change(uri protocol.DocumentUri, version protocol.Integer, changes []any) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, ok := s.docs[uri]
	if !ok {
		return "", false
	}
	doc.text = applyChanges(doc.text, changes)
	doc.version = version
	return doc.text, true
}

func (s *documentStore) close(uri protocol.DocumentUri) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

func (s *documentStore) get(uri protocol.DocumentUri) (domain.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[uri]
	if !ok {
		return domain.Document{}, false
	}
	return domain.NewDocument(doc.text), true
}

func applyChanges(text string, changes []any) string {
	for _, change := range changes {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case *protocol.TextDocumentContentChangeEventWhole:
			text = c.Text
		case protocol.TextDocumentContentChangeEvent:
			text = applyRangeChange(text, c)
		case *protocol.TextDocumentContentChangeEvent:
			text = applyRangeChange(text, *c)
		}
	}
	return text
}

func applyRangeChange(text string, c protocol.TextDocumentContentChangeEvent) string {
	if c.Range == nil {
		return c.Text
	}
	start := offsetAt(text, c.Range.Start)
	end := offsetAt(text, c.Range.End)
	if end < start {
		end = start
	}
	return text[:start] + c.Text + text[end:]
}
