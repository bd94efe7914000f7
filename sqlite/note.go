package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/clipnote"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ clipnote.NoteService = (*NoteService)(nil)

// NoteService implements clipnote.NoteService using SQLite.
type NoteService struct {
	db *DB
}

// NewNoteService creates a new NoteService.
func NewNoteService(db *DB) *NoteService {
	return &NoteService{db: db}
}

// CreateNote records a published note with a generated ID and timestamp.
func (s *NoteService) CreateNote(ctx context.Context, note *clipnote.PublishedNote) error {
	if err := note.Validate(); err != nil {
		return err
	}

	note.ID = uuid.New().String()
	note.CreatedAt = time.Now().UTC()

	tags, err := json.Marshal(nonNil(note.Tags))
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO notes (id, task_id, tab_id, source_url, title, note_id, content_hash, tags, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, note.ID, note.TaskID, note.TabID, note.SourceURL, note.Title, note.NoteID, note.ContentHash,
		string(tags), note.CreatedAt.Format(time.RFC3339Nano))

	return err
}

// FindNotes retrieves history records matching the filter, newest first.
func (s *NoteService) FindNotes(ctx context.Context, filter clipnote.NoteFilter) ([]*clipnote.PublishedNote, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, task_id, tab_id, source_url, title, note_id, content_hash, tags, created_at FROM notes WHERE 1=1")

	if filter.SourceURL != nil {
		query.WriteString(" AND source_url = ?")
		args = append(args, *filter.SourceURL)
	}
	if filter.ContentHash != nil {
		query.WriteString(" AND content_hash = ?")
		args = append(args, *filter.ContentHash)
	}

	query.WriteString(" ORDER BY created_at DESC, rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []*clipnote.PublishedNote
	for rows.Next() {
		var note clipnote.PublishedNote
		var tags, createdAt string

		if err := rows.Scan(&note.ID, &note.TaskID, &note.TabID, &note.SourceURL, &note.Title,
			&note.NoteID, &note.ContentHash, &tags, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tags), &note.Tags); err != nil {
			return nil, err
		}
		if note.CreatedAt, err = parseRFC3339(createdAt, "created_at"); err != nil {
			return nil, err
		}

		notes = append(notes, &note)
	}

	return notes, rows.Err()
}

// DeleteNote permanently removes a history record.
func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return clipnote.Errorf(clipnote.ENOTFOUND, "note not found")
	}

	return nil
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
