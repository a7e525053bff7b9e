// Package quotes stores user-submitted attributed quotes in SQLite.
package quotes

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

var ErrNoQuotes = errors.New("no quotes found")

// Quote is one saved quote.
type Quote struct {
	ID          int64  `json:"id"`
	SubmitterID string `json:"submitterId"`
	Author      string `json:"author"`
	Text        string `json:"quote"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// NormalizeAuthor trims, lowercases, then capitalises the first letter.
func NormalizeAuthor(a string) string {
	a = strings.ToLower(strings.TrimSpace(a))
	r, size := utf8.DecodeRuneInString(a)
	if r == utf8.RuneError {
		return a
	}
	return string(unicode.ToUpper(r)) + a[size:]
}

// Add saves a quote and returns it with its normalised author.
func (s *Store) Add(ctx context.Context, submitterID, author, text string) (Quote, error) {
	q := Quote{SubmitterID: submitterID, Author: NormalizeAuthor(author), Text: text}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO quotes (submitter_id, author, quote) VALUES (?, ?, ?)`,
		q.SubmitterID, q.Author, q.Text,
	)
	if err != nil {
		return Quote{}, err
	}
	q.ID, _ = res.LastInsertId()
	return q, nil
}

// Random returns a random quote, restricted to author when it is not empty.
// ErrNoQuotes is returned when nothing matches.
func (s *Store) Random(ctx context.Context, author string) (Quote, error) {
	var q Quote
	var row *sql.Row
	if strings.TrimSpace(author) == "" {
		row = s.db.QueryRowContext(ctx,
			`SELECT id, submitter_id, author, quote FROM quotes ORDER BY RANDOM() LIMIT 1`)
	} else {
		row = s.db.QueryRowContext(ctx,
			`SELECT id, submitter_id, author, quote FROM quotes WHERE author = ? ORDER BY RANDOM() LIMIT 1`,
			NormalizeAuthor(author))
	}
	if err := row.Scan(&q.ID, &q.SubmitterID, &q.Author, &q.Text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Quote{}, ErrNoQuotes
		}
		return Quote{}, err
	}
	return q, nil
}

// Count returns the number of stored quotes.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM quotes`).Scan(&n)
	return n, err
}
