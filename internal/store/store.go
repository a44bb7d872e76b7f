// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/typeroo/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

var (
	// ErrNotFound reports a missing row.
	ErrNotFound = errors.New("not found")
	// ErrBlankText reports custom text content with nothing to type.
	ErrBlankText = errors.New("custom text is blank")
)

// Store wraps SQLite access for results and custom texts.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY,
			mode TEXT NOT NULL,
			duration INTEGER NOT NULL,
			text_id INTEGER NOT NULL DEFAULT 0,
			wpm INTEGER NOT NULL,
			raw_wpm INTEGER NOT NULL,
			accuracy INTEGER NOT NULL,
			duration_seconds INTEGER NOT NULL,
			correct_chars INTEGER NOT NULL,
			incorrect_chars INTEGER NOT NULL,
			correct_words INTEGER NOT NULL,
			incorrect_words INTEGER NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS custom_texts (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			is_public INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_results_ended_at ON results(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_results_mode_duration ON results(mode, duration);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// SaveResult stores a finished test and returns its id.
func (s *Store) SaveResult(ctx context.Context, res model.Result) (int64, error) {
	out, err := s.db.ExecContext(ctx,
		`INSERT INTO results (mode, duration, text_id, wpm, raw_wpm, accuracy, duration_seconds,
			correct_chars, incorrect_chars, correct_words, incorrect_words, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(res.Mode),
		res.Duration,
		res.TextID,
		res.WPM,
		res.RawWPM,
		res.Accuracy,
		res.DurationSeconds,
		res.CorrectChars,
		res.IncorrectChars,
		res.CorrectWords,
		res.IncorrectWords,
		res.StartedAt.Format(time.RFC3339Nano),
		res.EndedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("insert result: %w", err)
	}
	return out.LastInsertId()
}

// ListResults returns results in chronological order. Last keeps only the
// most recent N after filtering.
func (s *Store) ListResults(ctx context.Context, filter model.HistoryFilter) ([]model.Result, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.Mode != "" {
		clauses = append(clauses, "mode = ?")
		args = append(args, string(filter.Mode))
	}
	if filter.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, filter.Since.Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, mode, duration, text_id, wpm, raw_wpm, accuracy, duration_seconds,
			correct_chars, incorrect_chars, correct_words, incorrect_words, started_at, ended_at
		FROM results
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var results []model.Result
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if filter.Last > 0 && len(results) > filter.Last {
		results = results[len(results)-filter.Last:]
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (model.Result, error) {
	var res model.Result
	var mode, startedAt, endedAt string
	if err := row.Scan(&res.ID, &mode, &res.Duration, &res.TextID, &res.WPM, &res.RawWPM, &res.Accuracy,
		&res.DurationSeconds, &res.CorrectChars, &res.IncorrectChars, &res.CorrectWords, &res.IncorrectWords,
		&startedAt, &endedAt); err != nil {
		return model.Result{}, err
	}
	res.Mode = model.Mode(mode)
	var err error
	if res.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
		return model.Result{}, err
	}
	if res.EndedAt, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
		return model.Result{}, err
	}
	return res, nil
}

// PersonalBests returns the best timed result for each duration, in the
// order given. Durations without results are reported with zero WPM.
func (s *Store) PersonalBests(ctx context.Context, durations []int) ([]model.PersonalBest, error) {
	bests := make([]model.PersonalBest, 0, len(durations))
	for _, d := range durations {
		best := model.PersonalBest{Duration: d}
		var endedAt string
		err := s.db.QueryRowContext(ctx,
			`SELECT wpm, accuracy, ended_at FROM results
			 WHERE mode = ? AND duration = ?
			 ORDER BY wpm DESC, accuracy DESC, ended_at ASC
			 LIMIT 1`, string(model.ModeTimed), d).Scan(&best.WPM, &best.Accuracy, &endedAt)
		switch {
		case errors.Is(err, sql.ErrNoRows):
		case err != nil:
			return nil, err
		default:
			if best.At, err = time.Parse(time.RFC3339Nano, endedAt); err != nil {
				return nil, err
			}
		}
		bests = append(bests, best)
	}
	return bests, nil
}

// AddCustomText stores a custom text after validating it has words to type.
func (s *Store) AddCustomText(ctx context.Context, content string, public bool) (int64, error) {
	if strings.TrimSpace(content) == "" {
		return 0, ErrBlankText
	}
	out, err := s.db.ExecContext(ctx,
		`INSERT INTO custom_texts (content, is_public, created_at) VALUES (?, ?, ?)`,
		content, public, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return 0, fmt.Errorf("insert custom text: %w", err)
	}
	return out.LastInsertId()
}

// CustomTexts returns all stored custom texts, oldest first.
func (s *Store) CustomTexts(ctx context.Context) ([]model.CustomText, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, is_public, created_at FROM custom_texts ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var texts []model.CustomText
	for rows.Next() {
		text, err := scanCustomText(rows)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

// CustomText returns one custom text by id.
func (s *Store) CustomText(ctx context.Context, id int64) (model.CustomText, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, is_public, created_at FROM custom_texts WHERE id = ?`, id)
	text, err := scanCustomText(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.CustomText{}, fmt.Errorf("custom text %d: %w", id, ErrNotFound)
	}
	return text, err
}

// DeleteCustomText removes a custom text by id.
func (s *Store) DeleteCustomText(ctx context.Context, id int64) error {
	out, err := s.db.ExecContext(ctx, `DELETE FROM custom_texts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := out.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("custom text %d: %w", id, ErrNotFound)
	}
	return nil
}

func scanCustomText(row scanner) (model.CustomText, error) {
	var text model.CustomText
	var createdAt string
	if err := row.Scan(&text.ID, &text.Content, &text.Public, &createdAt); err != nil {
		return model.CustomText{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return model.CustomText{}, err
	}
	text.CreatedAt = parsed
	return text, nil
}
