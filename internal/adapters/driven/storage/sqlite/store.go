package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/gavel-labs/gavel/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/gavel-labs/gavel/internal/core/domain"
	"github.com/gavel-labs/gavel/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to the
// catalog and chat history store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.gavel/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".gavel", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Enable foreign keys
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// CatalogStore returns a CatalogStore interface backed by this store.
func (s *Store) CatalogStore() driven.CatalogStore {
	return &catalogStore{store: s}
}

// ChatStore returns a ChatStore interface backed by this store.
func (s *Store) ChatStore() driven.ChatStore {
	return &chatStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Catalog Store ====================

// catalogStore implements driven.CatalogStore.
type catalogStore struct {
	store *Store
}

var _ driven.CatalogStore = (*catalogStore)(nil)

// SaveMeetings upserts discovered meetings by ID.
func (s *catalogStore) SaveMeetings(ctx context.Context, meetings []domain.Meeting) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO meetings (id, date, title, agenda_url, minutes_url)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			date = excluded.date,
			title = excluded.title,
			agenda_url = excluded.agenda_url,
			minutes_url = excluded.minutes_url
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, meeting := range meetings {
		if meeting.ID == "" {
			return domain.ErrInvalidInput
		}

		if _, err := stmt.ExecContext(ctx, meeting.ID, nullTime(meeting.Date),
			meeting.Title, meeting.AgendaURL, meeting.MinutesURL); err != nil {
			return fmt.Errorf("saving meeting %s: %w", meeting.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// ListMeetings returns all meetings, newest first. Meetings without a
// parseable date sort last.
func (s *catalogStore) ListMeetings(ctx context.Context) ([]domain.Meeting, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, date, title, agenda_url, minutes_url
		FROM meetings
		ORDER BY date IS NULL, date DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying meetings: %w", err)
	}
	defer rows.Close()

	var meetings []domain.Meeting //nolint:prealloc // size unknown from query
	for rows.Next() {
		meeting, err := scanMeetingRows(rows)
		if err != nil {
			return nil, err
		}
		meetings = append(meetings, *meeting)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating meetings: %w", err)
	}

	return meetings, nil
}

// GetMeeting retrieves a meeting by ID.
func (s *catalogStore) GetMeeting(ctx context.Context, id string) (*domain.Meeting, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, date, title, agenda_url, minutes_url
		FROM meetings WHERE id = ?
	`, id)

	var meeting domain.Meeting
	var date sql.NullTime
	if err := row.Scan(&meeting.ID, &date, &meeting.Title,
		&meeting.AgendaURL, &meeting.MinutesURL); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning meeting: %w", err)
	}

	if date.Valid {
		meeting.Date = date.Time
	}

	return &meeting, nil
}

// SaveDocument stores or updates an extracted document.
func (s *catalogStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	if doc.ID == "" {
		return domain.ErrInvalidInput
	}

	sectionsJSON, err := json.Marshal(doc.Sections)
	if err != nil {
		return fmt.Errorf("marshalling sections: %w", err)
	}

	pagesJSON, err := json.Marshal(doc.Pages)
	if err != nil {
		return fmt.Errorf("marshalling pages: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO documents
			(id, type, clip_id, source_url, title, content, sections, pages,
			 extracted_at, character_count, word_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			clip_id = excluded.clip_id,
			source_url = excluded.source_url,
			title = excluded.title,
			content = excluded.content,
			sections = excluded.sections,
			pages = excluded.pages,
			extracted_at = excluded.extracted_at,
			character_count = excluded.character_count,
			word_count = excluded.word_count
	`, doc.ID, string(doc.Type), doc.ClipID, doc.SourceURL, doc.Title, doc.Content,
		string(sectionsJSON), string(pagesJSON),
		nullTime(doc.ExtractedAt), doc.CharacterCount, doc.WordCount)

	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}
	return nil
}

// ListDocuments returns all catalogued documents without content.
func (s *catalogStore) ListDocuments(ctx context.Context) ([]domain.Document, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, type, clip_id, source_url, title, extracted_at,
		       character_count, word_count
		FROM documents
		ORDER BY clip_id, type
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document //nolint:prealloc // size unknown from query
	for rows.Next() {
		var doc domain.Document
		var docType string
		var extractedAt sql.NullTime
		if err := rows.Scan(&doc.ID, &docType, &doc.ClipID, &doc.SourceURL,
			&doc.Title, &extractedAt, &doc.CharacterCount, &doc.WordCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}

		doc.Type = domain.DocumentType(docType)
		if extractedAt.Valid {
			doc.ExtractedAt = extractedAt.Time
		}
		docs = append(docs, doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}

	return docs, nil
}

// GetDocument retrieves a document with content by ID.
func (s *catalogStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, type, clip_id, source_url, title, content, sections, pages,
		       extracted_at, character_count, word_count
		FROM documents WHERE id = ?
	`, id)

	var doc domain.Document
	var docType string
	var sectionsJSON, pagesJSON sql.NullString
	var extractedAt sql.NullTime
	if err := row.Scan(&doc.ID, &docType, &doc.ClipID, &doc.SourceURL,
		&doc.Title, &doc.Content, &sectionsJSON, &pagesJSON,
		&extractedAt, &doc.CharacterCount, &doc.WordCount); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}

	doc.Type = domain.DocumentType(docType)
	if extractedAt.Valid {
		doc.ExtractedAt = extractedAt.Time
	}

	if sectionsJSON.Valid && sectionsJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(sectionsJSON.String), &doc.Sections); err != nil {
			return nil, fmt.Errorf("unmarshaling sections: %w", err)
		}
	}

	if pagesJSON.Valid && pagesJSON.String != jsonNull {
		if err := json.Unmarshal([]byte(pagesJSON.String), &doc.Pages); err != nil {
			return nil, fmt.Errorf("unmarshaling pages: %w", err)
		}
	}

	return &doc, nil
}

// Close closes the underlying database.
func (s *catalogStore) Close() error {
	return s.store.Close()
}

// ==================== Chat Store ====================

// chatStore implements driven.ChatStore.
type chatStore struct {
	store *Store
}

var _ driven.ChatStore = (*chatStore)(nil)

// CreateSession records a new chat session.
func (s *chatStore) CreateSession(ctx context.Context, session *domain.ChatSession) error {
	if session.ID == "" {
		return domain.ErrInvalidInput
	}

	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (id, started_at, title)
		VALUES (?, ?, ?)
	`, session.ID, session.StartedAt, session.Title)

	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	return nil
}

// AppendMessage appends one turn to a session, assigning the next
// sequence number.
func (s *chatStore) AppendMessage(ctx context.Context, msg *domain.StoredMessage) error {
	if msg.SessionID == "" {
		return domain.ErrInvalidInput
	}

	sourcesJSON, err := json.Marshal(msg.Sources)
	if err != nil {
		return fmt.Errorf("marshalling sources: %w", err)
	}

	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	row := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq) + 1, 0) FROM chat_messages WHERE session_id = ?",
		msg.SessionID)
	if err := row.Scan(&msg.Seq); err != nil {
		return fmt.Errorf("assigning sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO chat_messages (session_id, seq, role, content, sources, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.SessionID, msg.Seq, string(msg.Message.Role), msg.Message.Content,
		string(sourcesJSON), msg.CreatedAt); err != nil {
		return fmt.Errorf("appending message: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Messages returns a session's turns in order.
func (s *chatStore) Messages(ctx context.Context, sessionID string) ([]domain.StoredMessage, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT session_id, seq, role, content, sources, created_at
		FROM chat_messages WHERE session_id = ?
		ORDER BY seq
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("querying messages: %w", err)
	}
	defer rows.Close()

	var messages []domain.StoredMessage //nolint:prealloc // size unknown from query
	for rows.Next() {
		var msg domain.StoredMessage
		var role string
		var sourcesJSON sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&msg.SessionID, &msg.Seq, &role,
			&msg.Message.Content, &sourcesJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning message: %w", err)
		}

		msg.Message.Role = domain.Role(role)
		if createdAt.Valid {
			msg.CreatedAt = createdAt.Time
		}

		if sourcesJSON.Valid && sourcesJSON.String != jsonNull {
			if err := json.Unmarshal([]byte(sourcesJSON.String), &msg.Sources); err != nil {
				return nil, fmt.Errorf("unmarshaling sources: %w", err)
			}
		}
		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating messages: %w", err)
	}

	return messages, nil
}

// Sessions returns recent sessions, newest first. A non-positive limit
// returns all sessions.
func (s *chatStore) Sessions(ctx context.Context, limit int) ([]domain.ChatSession, error) {
	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, started_at, title
		FROM chat_sessions
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.ChatSession //nolint:prealloc // size unknown from query
	for rows.Next() {
		var session domain.ChatSession
		var startedAt sql.NullTime
		if err := rows.Scan(&session.ID, &startedAt, &session.Title); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}

		if startedAt.Valid {
			session.StartedAt = startedAt.Time
		}
		sessions = append(sessions, session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating sessions: %w", err)
	}

	return sessions, nil
}

// Close closes the underlying database.
func (s *chatStore) Close() error {
	return s.store.Close()
}

// ==================== Helper Functions ====================

// scanMeetingRows scans a meeting from *sql.Rows.
func scanMeetingRows(rows *sql.Rows) (*domain.Meeting, error) {
	var meeting domain.Meeting
	var date sql.NullTime
	if err := rows.Scan(&meeting.ID, &date, &meeting.Title,
		&meeting.AgendaURL, &meeting.MinutesURL); err != nil {
		return nil, fmt.Errorf("scanning meeting: %w", err)
	}

	if date.Valid {
		meeting.Date = date.Time
	}

	return &meeting, nil
}

// nullTime converts a zero time to a SQL NULL.
func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
