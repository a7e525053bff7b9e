// internal/game/evaluate.go
//
// Guess scoring.
//   - Evaluate classifies each letter with the two-pass algorithm so a letter
//     is never credited more times than it appears in the answer.
//   - Budget tracks the depletable per-letter points for one session.

package game

import "fmt"

// Evaluate implements the standard Wordle two-pass scoring algorithm.
//
// Pass 1:
//   - Mark exact matches and consume that letter from the answer counts.
//
// Pass 2:
//   - For each remaining guess letter: if the answer still has that letter
//     left, mark Present and consume it; otherwise mark Absent.
//
// Inputs are expected to be validated lowercase a–z of equal length.
// A length mismatch is a programming error and panics.
func Evaluate(answer, guess string) []Mark {
	if len(answer) != len(guess) {
		panic(fmt.Sprintf("game: evaluate length mismatch: answer=%d guess=%d", len(answer), len(guess)))
	}
	n := len(guess)
	res := make([]Mark, n)

	var counts [26]int
	for i := 0; i < n; i++ {
		counts[idx(answer[i])]++
	}

	for i := 0; i < n; i++ {
		if guess[i] == answer[i] {
			res[i] = MarkExact
			counts[idx(guess[i])]--
		}
	}

	for i := 0; i < n; i++ {
		if res[i] == MarkExact {
			continue
		}
		j := idx(guess[i])
		if counts[j] > 0 {
			res[i] = MarkPresent
			counts[j]--
		} else {
			res[i] = MarkAbsent
		}
	}
	return res
}

// idx maps a lowercase ASCII letter to 0..25.
func idx(b byte) int {
	if b < 'a' || b > 'z' {
		panic(fmt.Sprintf("game: non-letter byte %q", b))
	}
	return int(b - 'a')
}

// Budget is the remaining point pool per answer letter.
// Each occurrence of a letter in the answer contributes 2 points.
type Budget map[byte]int

// NewBudget builds the initial pool for answer.
func NewBudget(answer string) Budget {
	b := make(Budget, len(answer))
	for i := 0; i < len(answer); i++ {
		b[answer[i]] += 2
	}
	return b
}

// Spend takes the points earned by marks out of the pool and returns them.
// Exact may take up to 2, Present up to 1, Absent nothing.
func (b Budget) Spend(guess string, marks []Mark) int {
	score := 0
	for i, m := range marks {
		want := 0
		switch m {
		case MarkExact:
			want = 2
		case MarkPresent:
			want = 1
		}
		c := guess[i]
		got := min(want, b[c])
		b[c] -= got
		score += got
	}
	return score
}

func allExact(m []Mark) bool {
	for _, x := range m {
		if x != MarkExact {
			return false
		}
	}
	return true
}
