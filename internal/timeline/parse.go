package timeline

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/keagan/lyricsmith/pkg/util"
)

// lrcTag matches one [mm:ss.xx] timestamp tag; a line may carry several.
var lrcTag = regexp.MustCompile(`\[(\d+:\d+(?:\.\d+)?)\]`)

// ParseLRC reads LRC-format lyrics ("[mm:ss.xx] text"). Lines with multiple
// tags produce one entry per tag. Metadata tags ([ar:], [ti:], ...) and
// untagged lines are skipped.
func ParseLRC(r io.Reader) ([]Line, error) {
	var lines []Line

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		tags := lrcTag.FindAllStringSubmatch(raw, -1)
		if len(tags) == 0 {
			continue
		}
		text := strings.TrimSpace(lrcTag.ReplaceAllString(raw, ""))

		for _, tag := range tags {
			start, err := util.ParseTimestamp(tag[1])
			if err != nil {
				return nil, fmt.Errorf("bad timestamp %q: %w", tag[1], err)
			}
			lines = append(lines, Line{Text: text, Start: start})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading lyrics: %w", err)
	}

	return lines, nil
}

type jsonLine struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
}

// ParseJSON reads lyrics as a JSON array of {"text": ..., "start": ...}.
func ParseJSON(r io.Reader) ([]Line, error) {
	var raw []jsonLine
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parsing lyrics JSON: %w", err)
	}

	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		if l.Start < 0 {
			return nil, fmt.Errorf("negative start time %.3f for %q", l.Start, l.Text)
		}
		lines = append(lines, Line{Text: l.Text, Start: l.Start})
	}
	return lines, nil
}

// LoadFile parses a lyric file by extension (.lrc or .json) and builds a
// timeline from it.
func LoadFile(path string) (*Timeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening lyrics: %w", err)
	}
	defer f.Close()

	var lines []Line
	ext := strings.ToLower(util.GetExtension(path))
	switch ext {
	case ".lrc":
		lines, err = ParseLRC(f)
	case ".json":
		lines, err = ParseJSON(f)
	default:
		return nil, fmt.Errorf("unsupported lyrics format %q (want .lrc or .json)", ext)
	}
	if err != nil {
		return nil, err
	}

	return New(lines), nil
}
