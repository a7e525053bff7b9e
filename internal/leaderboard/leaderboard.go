// Package leaderboard accumulates Wordle points per player for the current
// scoring epoch. The epoch ends when Reset is called by the scheduler.
package leaderboard

import (
	"errors"
	"sort"
	"sync"

	"github.com/samber/lo"
)

var ErrNegativeDelta = errors.New("leaderboard: negative delta")

// Entry is one ranked player.
type Entry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// Board is a concurrency-safe score table. Players keep the position they
// were first seen at, which is the tie-break for equal scores.
type Board struct {
	mu     sync.Mutex
	order  []string       // player IDs in first-accumulated order
	scores map[string]int // player ID → score
}

// New returns an empty Board.
func New() *Board {
	return &Board{scores: make(map[string]int)}
}

// Add credits delta points to playerID.
func (b *Board) Add(playerID string, delta int) error {
	if delta < 0 {
		return ErrNegativeDelta
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.scores[playerID]; !ok {
		b.order = append(b.order, playerID)
	}
	b.scores[playerID] += delta
	return nil
}

// Score returns playerID's current score.
func (b *Board) Score(playerID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.scores[playerID]
}

// Rank lists players by score, highest first, ties in first-accumulated order.
func (b *Board) Rank() []Entry {
	b.mu.Lock()
	out := lo.Map(b.order, func(id string, _ int) Entry {
		return Entry{PlayerID: id, Score: b.scores[id]}
	})
	b.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

// Reset zeroes the board, starting a new epoch.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.order = nil
	b.scores = make(map[string]int)
}
