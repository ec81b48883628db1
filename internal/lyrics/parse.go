package lyrics

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Line is one timed lyric entry.
type Line struct {
	TimestampMillis int64
	Text            string
}

const bom = "\ufeff"

// ParseFile parses an LRC file. A path that is empty or does not exist
// yields no lines and no error.
func ParseFile(path string) ([]Line, error) {
	if path == "" {
		return nil, nil
	}

	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open lrc file: %w", err)
	}
	defer f.Close()

	lines, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return lines, nil
}

// Parse reads LRC text and returns its timed lines ordered by timestamp.
// Lines may carry several time tags; ID tags are skipped and an [offset:]
// tag shifts every line.
func Parse(r io.Reader) ([]Line, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var result []Line
	var offsetMillis int64
	first := true

	for scanner.Scan() {
		raw := scanner.Text()
		if first {
			raw = strings.TrimPrefix(raw, bom)
			first = false
		}

		stamps, text, offset, hasOffset := splitTags(strings.TrimSpace(raw))
		if hasOffset {
			offsetMillis = offset
		}
		if len(stamps) == 0 || text == "" {
			continue
		}

		for _, ms := range stamps {
			result = append(result, Line{TimestampMillis: ms, Text: text})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if offsetMillis != 0 {
		for i := range result {
			// a positive offset makes lyrics appear sooner
			result[i].TimestampMillis -= offsetMillis
			if result[i].TimestampMillis < 0 {
				result[i].TimestampMillis = 0
			}
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimestampMillis < result[j].TimestampMillis
	})

	return result, nil
}

// ParseString is Parse for in-memory text; malformed input yields nil.
func ParseString(raw string) []Line {
	if raw == "" {
		return nil
	}
	lines, err := Parse(strings.NewReader(raw))
	if err != nil {
		return nil
	}
	return lines
}

// FindCurrentLineIndex returns the last line whose timestamp is at or
// before the position, or -1 when the position precedes every line.
func FindCurrentLineIndex(lines []Line, positionMillis int64) int {
	if len(lines) == 0 {
		return -1
	}

	index := -1

	for i, line := range lines {
		if line.TimestampMillis <= positionMillis {
			index = i
			continue
		}
		break
	}

	return index
}

// FormatTimestamp renders milliseconds as an LRC time tag body (mm:ss.xx).
func FormatTimestamp(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	minutes := ms / 60000
	seconds := float64(ms%60000) / 1000
	return fmt.Sprintf("%02d:%05.2f", minutes, seconds)
}

func splitTags(line string) (stamps []int64, text string, offset int64, hasOffset bool) {
	rest := line
	for strings.HasPrefix(rest, "[") {
		end := strings.Index(rest, "]")
		if end <= 1 {
			break
		}

		tag := rest[1:end]
		rest = rest[end+1:]

		if ms, err := parseTimeTag(tag); err == nil {
			stamps = append(stamps, ms)
			continue
		}

		key, value, ok := strings.Cut(tag, ":")
		if ok && strings.EqualFold(strings.TrimSpace(key), "offset") {
			v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
			if err == nil {
				offset = v
				hasOffset = true
			}
		}
	}

	return stamps, strings.TrimSpace(rest), offset, hasOffset
}

func parseTimeTag(raw string) (int64, error) {
	if raw == "" {
		return 0, errors.New("empty time value")
	}

	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time format: %s", raw)
	}

	var hours, minutes, seconds float64
	var err error

	if len(parts) == 3 {
		hours, err = parseFloatSafe(parts[0])
		if err != nil {
			return 0, err
		}
		parts = parts[1:]
	}

	minutes, err = parseFloatSafe(parts[0])
	if err != nil {
		return 0, err
	}
	seconds, err = parseFloatSafe(parts[1])
	if err != nil {
		return 0, err
	}

	total := hours*3600 + minutes*60 + seconds
	if total < 0 {
		return 0, errors.New("negative time not allowed")
	}

	return int64(math.Round(total * 1000)), nil
}

func parseFloatSafe(s string) (float64, error) {
	s = strings.TrimSpace(s)
	// signs and exponents never appear in a time tag
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse float %q: %w", s, err)
	}
	return value, nil
}
