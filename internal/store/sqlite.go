package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/studyloom/studyloom/internal/model"
)

// SQLiteStore persists records in a SQLite database. Embedded sequences
// (messages, questions, attempts) are stored as JSON columns since they
// have no identity outside their parent record.
type SQLiteStore struct {
	conn *sql.DB
	path string
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite creates or opens the database at dbPath and migrates the
// schema.
func OpenSQLite(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &SQLiteStore{conn: conn, path: dbPath}, nil
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

func migrate(conn *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS topics (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			content TEXT NOT NULL,
			customizations TEXT NOT NULL,
			generated_content TEXT NOT NULL DEFAULT '',
			conversation_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			processing_error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_topics_owner ON topics(owner_id)`,
		`CREATE TABLE IF NOT EXISTS documents (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			filename TEXT NOT NULL,
			original_name TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size INTEGER NOT NULL,
			file_path TEXT NOT NULL DEFAULT '',
			extracted_text TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			conversation_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			processing_error TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_documents_owner ON documents(owner_id)`,
		`CREATE TABLE IF NOT EXISTS websites (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			url TEXT NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			extracted_content TEXT NOT NULL DEFAULT '',
			summary TEXT NOT NULL DEFAULT '',
			conversation_id TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			processing_error TEXT NOT NULL DEFAULT '',
			scraped_at TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_websites_owner ON websites(owner_id)`,
		`CREATE TABLE IF NOT EXISTS conversations (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			kind TEXT NOT NULL,
			source_id TEXT NOT NULL DEFAULT '',
			messages TEXT NOT NULL,
			active INTEGER NOT NULL DEFAULT 1,
			last_activity TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversations_owner ON conversations(owner_id)`,
		`CREATE TABLE IF NOT EXISTS quizzes (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			source_kind TEXT NOT NULL,
			source_id TEXT NOT NULL DEFAULT '',
			questions TEXT NOT NULL,
			settings TEXT NOT NULL,
			attempts TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_quizzes_owner ON quizzes(owner_id)`,
	}

	for _, stmt := range schema {
		if _, err := conn.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func encodeJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encoding record field: %w", err)
	}
	return string(data), nil
}

func decodeJSON(data string, v any) error {
	if data == "" {
		return nil
	}
	return json.Unmarshal([]byte(data), v)
}

func encodeTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }

func decodeTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (s *SQLiteStore) PutTopic(ctx context.Context, t *model.Topic) error {
	customizations, err := encodeJSON(t.Customizations)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO topics (id, owner_id, title, description, content, customizations,
			generated_content, conversation_id, status, processing_error, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			content = excluded.content,
			customizations = excluded.customizations,
			generated_content = excluded.generated_content,
			conversation_id = excluded.conversation_id,
			status = excluded.status,
			processing_error = excluded.processing_error,
			updated_at = excluded.updated_at
		WHERE topics.owner_id = excluded.owner_id`,
		t.ID, t.OwnerID, t.Title, t.Description, t.Content, customizations,
		t.GeneratedContent, t.ConversationID, string(t.Status), t.ProcessingError,
		encodeTime(t.CreatedAt), encodeTime(t.UpdatedAt))
	return err
}

func (s *SQLiteStore) scanTopic(row interface{ Scan(...any) error }) (*model.Topic, error) {
	var t model.Topic
	var customizations, status, createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Content, &customizations,
		&t.GeneratedContent, &t.ConversationID, &status, &t.ProcessingError, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeJSON(customizations, &t.Customizations); err != nil {
		return nil, err
	}
	t.Status = model.ProcessingStatus(status)
	t.CreatedAt = decodeTime(createdAt)
	t.UpdatedAt = decodeTime(updatedAt)
	return &t, nil
}

const topicColumns = `id, owner_id, title, description, content, customizations,
	generated_content, conversation_id, status, processing_error, created_at, updated_at`

func (s *SQLiteStore) GetTopic(ctx context.Context, ownerID, id string) (*model.Topic, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE id = ? AND owner_id = ?`, id, ownerID)
	t, err := s.scanTopic(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "topic", ID: id}
	}
	return t, err
}

func (s *SQLiteStore) ListTopics(ctx context.Context, ownerID string) ([]*model.Topic, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+topicColumns+` FROM topics WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Topic
	for rows.Next() {
		t, err := s.scanTopic(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteTopic(ctx context.Context, ownerID, id string) error {
	return s.deleteRecord(ctx, "topics", "topic", ownerID, id)
}

func (s *SQLiteStore) PutDocument(ctx context.Context, d *model.Document) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, filename, original_name, mime_type, size,
			file_path, extracted_text, summary, conversation_id, status, processing_error,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			filename = excluded.filename,
			original_name = excluded.original_name,
			mime_type = excluded.mime_type,
			size = excluded.size,
			file_path = excluded.file_path,
			extracted_text = excluded.extracted_text,
			summary = excluded.summary,
			conversation_id = excluded.conversation_id,
			status = excluded.status,
			processing_error = excluded.processing_error,
			updated_at = excluded.updated_at
		WHERE documents.owner_id = excluded.owner_id`,
		d.ID, d.OwnerID, d.Filename, d.OriginalName, d.MimeType, d.Size,
		d.FilePath, d.ExtractedText, d.Summary, d.ConversationID, string(d.Status),
		d.ProcessingError, encodeTime(d.CreatedAt), encodeTime(d.UpdatedAt))
	return err
}

const documentColumns = `id, owner_id, filename, original_name, mime_type, size,
	file_path, extracted_text, summary, conversation_id, status, processing_error,
	created_at, updated_at`

func (s *SQLiteStore) scanDocument(row interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var status, createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.OwnerID, &d.Filename, &d.OriginalName, &d.MimeType, &d.Size,
		&d.FilePath, &d.ExtractedText, &d.Summary, &d.ConversationID, &status,
		&d.ProcessingError, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	d.Status = model.ProcessingStatus(status)
	d.CreatedAt = decodeTime(createdAt)
	d.UpdatedAt = decodeTime(updatedAt)
	return &d, nil
}

func (s *SQLiteStore) GetDocument(ctx context.Context, ownerID, id string) (*model.Document, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = ? AND owner_id = ?`, id, ownerID)
	d, err := s.scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "document", ID: id}
	}
	return d, err
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, ownerID string) ([]*model.Document, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Document
	for rows.Next() {
		d, err := s.scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, ownerID, id string) error {
	return s.deleteRecord(ctx, "documents", "document", ownerID, id)
}

func (s *SQLiteStore) PutWebsite(ctx context.Context, w *model.Website) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO websites (id, owner_id, url, title, extracted_content, summary,
			conversation_id, status, processing_error, scraped_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			extracted_content = excluded.extracted_content,
			summary = excluded.summary,
			conversation_id = excluded.conversation_id,
			status = excluded.status,
			processing_error = excluded.processing_error,
			scraped_at = excluded.scraped_at,
			updated_at = excluded.updated_at
		WHERE websites.owner_id = excluded.owner_id`,
		w.ID, w.OwnerID, w.URL, w.Title, w.ExtractedContent, w.Summary,
		w.ConversationID, string(w.Status), w.ProcessingError,
		encodeTime(w.ScrapedAt), encodeTime(w.CreatedAt), encodeTime(w.UpdatedAt))
	return err
}

const websiteColumns = `id, owner_id, url, title, extracted_content, summary,
	conversation_id, status, processing_error, scraped_at, created_at, updated_at`

func (s *SQLiteStore) scanWebsite(row interface{ Scan(...any) error }) (*model.Website, error) {
	var w model.Website
	var status, scrapedAt, createdAt, updatedAt string
	err := row.Scan(&w.ID, &w.OwnerID, &w.URL, &w.Title, &w.ExtractedContent, &w.Summary,
		&w.ConversationID, &status, &w.ProcessingError, &scrapedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	w.Status = model.ProcessingStatus(status)
	w.ScrapedAt = decodeTime(scrapedAt)
	w.CreatedAt = decodeTime(createdAt)
	w.UpdatedAt = decodeTime(updatedAt)
	return &w, nil
}

func (s *SQLiteStore) GetWebsite(ctx context.Context, ownerID, id string) (*model.Website, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+websiteColumns+` FROM websites WHERE id = ? AND owner_id = ?`, id, ownerID)
	w, err := s.scanWebsite(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "website", ID: id}
	}
	return w, err
}

func (s *SQLiteStore) ListWebsites(ctx context.Context, ownerID string) ([]*model.Website, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+websiteColumns+` FROM websites WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Website
	for rows.Next() {
		w, err := s.scanWebsite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteWebsite(ctx context.Context, ownerID, id string) error {
	return s.deleteRecord(ctx, "websites", "website", ownerID, id)
}

func (s *SQLiteStore) PutConversation(ctx context.Context, c *model.Conversation) error {
	messages, err := encodeJSON(c.Messages)
	if err != nil {
		return err
	}
	active := 0
	if c.Active {
		active = 1
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO conversations (id, owner_id, title, kind, source_id, messages,
			active, last_activity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			kind = excluded.kind,
			source_id = excluded.source_id,
			messages = excluded.messages,
			active = excluded.active,
			last_activity = excluded.last_activity,
			updated_at = excluded.updated_at
		WHERE conversations.owner_id = excluded.owner_id`,
		c.ID, c.OwnerID, c.Title, string(c.Kind), c.SourceID, messages,
		active, encodeTime(c.LastActivity), encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt))
	return err
}

const conversationColumns = `id, owner_id, title, kind, source_id, messages,
	active, last_activity, created_at, updated_at`

func (s *SQLiteStore) scanConversation(row interface{ Scan(...any) error }) (*model.Conversation, error) {
	var c model.Conversation
	var kind, messages, lastActivity, createdAt, updatedAt string
	var active int
	err := row.Scan(&c.ID, &c.OwnerID, &c.Title, &kind, &c.SourceID, &messages,
		&active, &lastActivity, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	c.Messages = []model.Message{}
	if err := decodeJSON(messages, &c.Messages); err != nil {
		return nil, err
	}
	c.Kind = model.SourceKind(kind)
	c.Active = active != 0
	c.LastActivity = decodeTime(lastActivity)
	c.CreatedAt = decodeTime(createdAt)
	c.UpdatedAt = decodeTime(updatedAt)
	return &c, nil
}

func (s *SQLiteStore) GetConversation(ctx context.Context, ownerID, id string) (*model.Conversation, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE id = ? AND owner_id = ?`, id, ownerID)
	c, err := s.scanConversation(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "conversation", ID: id}
	}
	return c, err
}

func (s *SQLiteStore) ListConversations(ctx context.Context, ownerID string) ([]*model.Conversation, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+conversationColumns+` FROM conversations WHERE owner_id = ? ORDER BY last_activity DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Conversation
	for rows.Next() {
		c, err := s.scanConversation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteConversation(ctx context.Context, ownerID, id string) error {
	return s.deleteRecord(ctx, "conversations", "conversation", ownerID, id)
}

func (s *SQLiteStore) PutQuiz(ctx context.Context, q *model.Quiz) error {
	questions, err := encodeJSON(q.Questions)
	if err != nil {
		return err
	}
	settings, err := encodeJSON(q.Settings)
	if err != nil {
		return err
	}
	attempts, err := encodeJSON(q.Attempts)
	if err != nil {
		return err
	}
	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO quizzes (id, owner_id, title, description, source_kind, source_id,
			questions, settings, attempts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			source_kind = excluded.source_kind,
			source_id = excluded.source_id,
			questions = excluded.questions,
			settings = excluded.settings,
			attempts = excluded.attempts,
			updated_at = excluded.updated_at
		WHERE quizzes.owner_id = excluded.owner_id`,
		q.ID, q.OwnerID, q.Title, q.Description, string(q.SourceKind), q.SourceID,
		questions, settings, attempts, encodeTime(q.CreatedAt), encodeTime(q.UpdatedAt))
	return err
}

const quizColumns = `id, owner_id, title, description, source_kind, source_id,
	questions, settings, attempts, created_at, updated_at`

func (s *SQLiteStore) scanQuiz(row interface{ Scan(...any) error }) (*model.Quiz, error) {
	var q model.Quiz
	var sourceKind, questions, settings, attempts, createdAt, updatedAt string
	err := row.Scan(&q.ID, &q.OwnerID, &q.Title, &q.Description, &sourceKind, &q.SourceID,
		&questions, &settings, &attempts, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	q.Questions = []model.Question{}
	q.Attempts = []model.Attempt{}
	if err := decodeJSON(questions, &q.Questions); err != nil {
		return nil, err
	}
	if err := decodeJSON(settings, &q.Settings); err != nil {
		return nil, err
	}
	if err := decodeJSON(attempts, &q.Attempts); err != nil {
		return nil, err
	}
	q.SourceKind = model.SourceKind(sourceKind)
	q.CreatedAt = decodeTime(createdAt)
	q.UpdatedAt = decodeTime(updatedAt)
	return &q, nil
}

func (s *SQLiteStore) GetQuiz(ctx context.Context, ownerID, id string) (*model.Quiz, error) {
	row := s.conn.QueryRowContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE id = ? AND owner_id = ?`, id, ownerID)
	q, err := s.scanQuiz(row)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "quiz", ID: id}
	}
	return q, err
}

func (s *SQLiteStore) ListQuizzes(ctx context.Context, ownerID string) ([]*model.Quiz, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT `+quizColumns+` FROM quizzes WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Quiz
	for rows.Next() {
		q, err := s.scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) DeleteQuiz(ctx context.Context, ownerID, id string) error {
	return s.deleteRecord(ctx, "quizzes", "quiz", ownerID, id)
}

func (s *SQLiteStore) deleteRecord(ctx context.Context, table, kind, ownerID, id string) error {
	res, err := s.conn.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = ? AND owner_id = ?`, id, ownerID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
