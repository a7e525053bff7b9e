// Package assets embeds the built-in word list used when no word files are
// configured or readable.
package assets

import (
	"bufio"
	"embed"
	"strings"
)

//go:embed fallback.txt
var FS embed.FS

func readLines(name string) ([]string, error) {
	f, err := FS.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}

// FallbackWords returns the built-in ten-word list.
func FallbackWords() []string {
	words, err := readLines("fallback.txt")
	if err != nil {
		// The file is compiled in; failing here means the binary is broken.
		panic("assets: " + err.Error())
	}
	return words
}
