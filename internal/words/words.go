// internal/words/words.go
//
// Provides word list management for the game engine.
//
// Responsibilities:
//   - Load answer and valid-guess lists from configured files or fall back
//     to the built-in list from the assets package.
//   - Maintain sets for quick lookups (answers only, answers∪valid).
//   - Supply Pick, IsValid, IsAnswer, and Stats.
//
// Source resolution (Load):
//  1. Both files readable: answers from the first, valid = answers ∪ second.
//  2. Only the answers file readable: it serves as both lists.
//  3. Only the valid file readable: it serves as both lists.
//  4. Neither readable (or unset): built-in fallback for both.
//
// Lines are trimmed and lowercased; blank lines and "#" comments are skipped.
// Nothing else is filtered, so malformed entries propagate as-is.
//
// A Set is never mutated after Load and is safe for concurrent reads.

package words

import (
	"bufio"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/robalobadob/smitebot/assets"
)

// RandomSource picks a uniform index in [0, n).
type RandomSource interface {
	Intn(n int) int
}

// CryptoSource draws indexes from crypto/rand.
type CryptoSource struct{}

// Intn implements RandomSource.
func (CryptoSource) Intn(n int) int {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

// Set is an immutable pair of word lists.
type Set struct {
	answers    []string
	answersSet map[string]struct{}
	validSet   map[string]struct{} // answers ∪ valid
	fallback   bool
}

// Load reads the configured lists, falling back to the built-in list when
// neither path yields any words. It never fails; problems are logged.
func Load(answersPath, validPath string) *Set {
	ans, ansErr := readWordFile(answersPath)
	valid, validErr := readWordFile(validPath)

	switch {
	case ansErr == nil && validErr == nil:
		return newSet(ans, valid, false)
	case ansErr == nil:
		logSkipped(validPath, validErr)
		return newSet(ans, nil, false)
	case validErr == nil:
		logSkipped(answersPath, ansErr)
		return newSet(valid, nil, false)
	default:
		logSkipped(answersPath, ansErr)
		logSkipped(validPath, validErr)
		log.Warn().Msg("words: using built-in fallback list")
		fb := assets.FallbackWords()
		return newSet(fb, nil, true)
	}
}

// FromLists builds a Set directly from slices.
func FromLists(answers, valid []string) *Set {
	return newSet(normalize(answers), normalize(valid), false)
}

func newSet(answers, valid []string, fallback bool) *Set {
	answers = lo.Uniq(answers)
	s := &Set{
		answers:    answers,
		answersSet: toSet(answers),
		validSet:   toSet(answers),
		fallback:   fallback,
	}
	for _, w := range valid {
		s.validSet[w] = struct{}{}
	}
	return s
}

var errNoPath = errors.New("no path configured")

// readWordFile loads one word per line from a file.
// An unset path or a file with no words is reported as an error.
func readWordFile(path string) ([]string, error) {
	if path == "" {
		return nil, errNoPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if w, ok := normalizeLine(sc.Text()); ok {
			out = append(out, w)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: no words", path)
	}
	return out, nil
}

func normalizeLine(line string) (string, bool) {
	w := strings.ToLower(strings.TrimSpace(line))
	if w == "" || strings.HasPrefix(w, "#") {
		return "", false
	}
	return w, true
}

func normalize(list []string) []string {
	return lo.FilterMap(list, func(w string, _ int) (string, bool) {
		return normalizeLine(w)
	})
}

func logSkipped(path string, err error) {
	if errors.Is(err, errNoPath) {
		return
	}
	log.Warn().Err(err).Str("path", path).Msg("words: list unreadable")
}

// toSet converts a list of strings into a lookup set.
func toSet(list []string) map[string]struct{} {
	m := make(map[string]struct{}, len(list))
	for _, w := range list {
		m[w] = struct{}{}
	}
	return m
}

// Pick returns a uniformly random answer. Draws are independent, so a word
// may come up again in a later session.
func (s *Set) Pick(r RandomSource) string {
	return s.answers[r.Intn(len(s.answers))]
}

// IsValid reports whether w is an acceptable guess (answers ∪ valid).
func (s *Set) IsValid(w string) bool {
	_, ok := s.validSet[strings.ToLower(w)]
	return ok
}

// IsAnswer reports whether w is an answer word.
func (s *Set) IsAnswer(w string) bool {
	_, ok := s.answersSet[strings.ToLower(w)]
	return ok
}

// Fallback reports whether the built-in list is in use.
func (s *Set) Fallback() bool { return s.fallback }

// Stats returns counts of loaded words: (answers, valid).
func (s *Set) Stats() (answersCount int, validCount int) {
	return len(s.answers), len(s.validSet)
}
