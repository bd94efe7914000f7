package mock

import (
	"context"

	"github.com/fwojciec/clipnote"
)

var _ clipnote.NoteService = (*NoteService)(nil)

// NoteService is a mock implementation of clipnote.NoteService.
type NoteService struct {
	CreateNoteFn func(ctx context.Context, note *clipnote.PublishedNote) error
	FindNotesFn  func(ctx context.Context, filter clipnote.NoteFilter) ([]*clipnote.PublishedNote, error)
	DeleteNoteFn func(ctx context.Context, id string) error
}

func (s *NoteService) CreateNote(ctx context.Context, note *clipnote.PublishedNote) error {
	return s.CreateNoteFn(ctx, note)
}

func (s *NoteService) FindNotes(ctx context.Context, filter clipnote.NoteFilter) ([]*clipnote.PublishedNote, error) {
	return s.FindNotesFn(ctx, filter)
}

func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	return s.DeleteNoteFn(ctx, id)
}

var _ clipnote.NoteWriter = (*NoteWriter)(nil)

// NoteWriter is a mock implementation of clipnote.NoteWriter.
type NoteWriter struct {
	WriteNoteFn func(ctx context.Context, note *clipnote.PublishedNote, doc *clipnote.AIDocument) error
}

func (w *NoteWriter) WriteNote(ctx context.Context, note *clipnote.PublishedNote, doc *clipnote.AIDocument) error {
	return w.WriteNoteFn(ctx, note, doc)
}
