package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/havenlabs/haven/backend/internal/analysis/sentiment"
	"github.com/havenlabs/haven/backend/internal/model/wellness"
)

// SQLiteStore implements Store on an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL keeps concurrent readers from blocking the turn's writes.
	dsn := dbPath + "?_journal=WAL&_sync=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	PRAGMA busy_timeout = 5000;
	CREATE TABLE IF NOT EXISTS conversations (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		message TEXT NOT NULL,
		sentiment_json TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conversations_user ON conversations(user_id, created_at);

	CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		text TEXT NOT NULL,
		mood TEXT,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_journal_user ON journal_entries(user_id, created_at);

	CREATE TABLE IF NOT EXISTS mood_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		mood TEXT NOT NULL,
		emoji TEXT,
		date TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_mood_user ON mood_entries(user_id, created_at);

	CREATE TABLE IF NOT EXISTS counselor_requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT,
		email TEXT,
		phone TEXT,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendMessage(ctx context.Context, record wellness.ConversationRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	var sentimentJSON sql.NullString
	if record.Sentiment != nil {
		data, err := json.Marshal(record.Sentiment)
		if err != nil {
			return fmt.Errorf("marshal sentiment: %w", err)
		}
		sentimentJSON = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, message, sentiment_json, created_at) VALUES (?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.Message, sentimentJSON, record.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendMood(ctx context.Context, entry wellness.MoodEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if entry.Date == "" {
		entry.Date = entry.CreatedAt.Format("2006-01-02")
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mood_entries (id, user_id, mood, emoji, date, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Mood, entry.Emoji, entry.Date, entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert mood entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendJournal(ctx context.Context, entry wellness.JournalEntry) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO journal_entries (id, user_id, text, mood, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.UserID, entry.Text, entry.Mood, entry.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AppendCounselorRequest(ctx context.Context, request wellness.CounselorRequest) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.CreatedAt.IsZero() {
		request.CreatedAt = time.Now().UTC()
	}
	if request.Status == "" {
		request.Status = wellness.StatusPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO counselor_requests (id, user_id, name, email, phone, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		request.ID, request.UserID, request.Name, request.Email, request.Phone, request.Status, request.CreatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert counselor request: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ReadAnalytics(ctx context.Context, userID string) (wellness.Analytics, error) {
	analytics := wellness.Analytics{
		Conversations:  []wellness.ConversationRecord{},
		JournalEntries: []wellness.JournalEntry{},
		MoodEntries:    []wellness.MoodEntry{},
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, message, sentiment_json, created_at FROM conversations WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return analytics, fmt.Errorf("query conversations: %w", err)
	}
	for rows.Next() {
		var record wellness.ConversationRecord
		var sentimentJSON sql.NullString
		var createdAt int64
		if err := rows.Scan(&record.ID, &record.UserID, &record.Message, &sentimentJSON, &createdAt); err != nil {
			rows.Close()
			return analytics, fmt.Errorf("scan conversation row: %w", err)
		}
		if sentimentJSON.Valid {
			var signal sentiment.Signal
			if err := json.Unmarshal([]byte(sentimentJSON.String), &signal); err == nil {
				record.Sentiment = &signal
			}
		}
		record.CreatedAt = time.Unix(createdAt, 0).UTC()
		analytics.Conversations = append(analytics.Conversations, record)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return analytics, fmt.Errorf("iterate conversations: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, user_id, text, mood, created_at FROM journal_entries WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return analytics, fmt.Errorf("query journal entries: %w", err)
	}
	for rows.Next() {
		var entry wellness.JournalEntry
		var mood sql.NullString
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Text, &mood, &createdAt); err != nil {
			rows.Close()
			return analytics, fmt.Errorf("scan journal row: %w", err)
		}
		entry.Mood = mood.String
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		analytics.JournalEntries = append(analytics.JournalEntries, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return analytics, fmt.Errorf("iterate journal entries: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT id, user_id, mood, emoji, date, created_at FROM mood_entries WHERE user_id = ? ORDER BY created_at DESC LIMIT 100`,
		userID,
	)
	if err != nil {
		return analytics, fmt.Errorf("query mood entries: %w", err)
	}
	for rows.Next() {
		var entry wellness.MoodEntry
		var emoji sql.NullString
		var createdAt int64
		if err := rows.Scan(&entry.ID, &entry.UserID, &entry.Mood, &emoji, &entry.Date, &createdAt); err != nil {
			rows.Close()
			return analytics, fmt.Errorf("scan mood row: %w", err)
		}
		entry.Emoji = emoji.String
		entry.CreatedAt = time.Unix(createdAt, 0).UTC()
		analytics.MoodEntries = append(analytics.MoodEntries, entry)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return analytics, fmt.Errorf("iterate mood entries: %w", err)
	}

	return analytics, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
