package words

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeList(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

type fixedSource int

func (f fixedSource) Intn(n int) int { return int(f) % n }

func TestLoad_BothFiles(t *testing.T) {
	ans := writeList(t, "answers.txt", " Crane\nslate\n\n# comment\n")
	valid := writeList(t, "valid.txt", "adieu\nroate\n")

	s := Load(ans, valid)
	assert.False(t, s.Fallback())

	a, v := s.Stats()
	assert.Equal(t, 2, a)
	assert.Equal(t, 4, v)
	assert.True(t, s.IsAnswer("crane"))
	assert.True(t, s.IsValid("CRANE"))
	assert.True(t, s.IsValid("adieu"))
	assert.False(t, s.IsAnswer("adieu"))
}

func TestLoad_OnlyAnswers(t *testing.T) {
	ans := writeList(t, "answers.txt", "crane\n")
	s := Load(ans, filepath.Join(t.TempDir(), "missing.txt"))
	a, v := s.Stats()
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, v)
	assert.False(t, s.Fallback())
}

func TestLoad_Fallback(t *testing.T) {
	s := Load("", filepath.Join(t.TempDir(), "missing.txt"))
	assert.True(t, s.Fallback())
	a, v := s.Stats()
	assert.Equal(t, 10, a)
	assert.Equal(t, 10, v)
	assert.True(t, s.IsAnswer("piano"))
}

func TestLoad_MalformedEntriesKept(t *testing.T) {
	ans := writeList(t, "answers.txt", "crane\nto-long\n")
	s := Load(ans, "")
	assert.True(t, s.IsValid("to-long"))
}

func TestPick(t *testing.T) {
	s := FromLists([]string{"crane", "slate", "plant"}, nil)
	assert.Equal(t, "slate", s.Pick(fixedSource(1)))
	assert.Equal(t, "crane", s.Pick(fixedSource(3)))

	for i := 0; i < 20; i++ {
		assert.True(t, s.IsAnswer(s.Pick(CryptoSource{})))
	}
}

func TestFromLists_Normalisation(t *testing.T) {
	s := FromLists([]string{" Crane", "crane", "# header", "", "SL-TE"}, []string{"slate"})
	a, v := s.Stats()
	assert.Equal(t, 2, a, "duplicates collapse, comments and blanks skipped")
	assert.Equal(t, 3, v)
	assert.True(t, s.IsAnswer("sl-te"), "malformed entries are kept")
}
