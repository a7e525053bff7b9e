// Package history records finished Wordle games in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/robalobadob/smitebot/internal/game"
)

// Game is one finished session as stored.
type Game struct {
	ID         string    `json:"id"`
	ChannelID  string    `json:"channelId"`
	Answer     string    `json:"answer"`
	Status     string    `json:"status"`
	Attempts   int       `json:"attempts"`
	WinnerID   string    `json:"winnerId,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

type Store struct{ db *sql.DB }

func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// Record saves a terminal session and its guesses. Recording the same
// session twice is ignored.
func (s *Store) Record(ctx context.Context, g *game.Session, finishedAt time.Time) error {
	if !g.Status.Terminal() {
		return fmt.Errorf("history: session %s still active", g.ID)
	}
	var winner any
	if g.Status == game.StatusWon && len(g.Attempts) > 0 {
		winner = g.Attempts[len(g.Attempts)-1].GuesserID
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO games
			(id, channel_id, answer, status, attempts, winner_id, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, g.ChannelID, g.Answer, string(g.Status), len(g.Attempts), winner,
		g.StartedAt.UTC().Format(time.RFC3339), finishedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	for i, a := range g.Attempts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO game_guesses (game_id, position, guesser_id, word, points)
			VALUES (?, ?, ?, ?, ?)`,
			g.ID, i+1, a.GuesserID, a.Word, a.Points,
		); err != nil {
			return fmt.Errorf("insert guess: %w", err)
		}
	}
	return tx.Commit()
}

// Recent returns the latest finished games in a channel, newest first.
// An empty channelID lists all channels.
func (s *Store) Recent(ctx context.Context, channelID string, limit int) ([]Game, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, channel_id, answer, status, attempts, COALESCE(winner_id, ''), started_at, finished_at
		FROM games
		WHERE ? = '' OR channel_id = ?
		ORDER BY finished_at DESC
		LIMIT ?`, channelID, channelID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Game{}
	for rows.Next() {
		var g Game
		var started, finished string
		if err := rows.Scan(&g.ID, &g.ChannelID, &g.Answer, &g.Status, &g.Attempts, &g.WinnerID, &started, &finished); err != nil {
			return nil, err
		}
		g.StartedAt = mustParse(started)
		g.FinishedAt = mustParse(finished)
		out = append(out, g)
	}
	return out, rows.Err()
}

// mustParse parses RFC3339 timestamps; on error returns zero time.
func mustParse(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
