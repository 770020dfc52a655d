package applog

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// Tail returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Tail(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var all []string
		for scanner.Scan() {
			all = append(all, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return all, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Level extracts the three-letter level zerolog's console writer puts after
// the timestamp, or "" for continuation lines.
func Level(line string) string {
	if len(line) < len(TimeFormat)+4 {
		return ""
	}
	if _, err := time.Parse(TimeFormat, line[:len(TimeFormat)]); err != nil {
		return ""
	}
	fields := strings.Fields(line[len(TimeFormat):])
	if len(fields) == 0 {
		return ""
	}
	switch fields[0] {
	case "TRC", "DBG", "INF", "WRN", "ERR", "FTL", "PNC":
		return fields[0]
	}
	return ""
}

// Filter keeps lines at or above minLevel. Lines without a level inherit the
// level of the line before them.
func Filter(lines []string, minLevel string) []string {
	threshold := levelRank(minLevel)
	if threshold <= 0 {
		return lines
	}
	out := make([]string, 0, len(lines))
	current := 0
	for _, line := range lines {
		if lvl := Level(line); lvl != "" {
			current = levelRank(lvl)
		}
		if current >= threshold {
			out = append(out, line)
		}
	}
	return out
}

func levelRank(level string) int {
	switch strings.ToUpper(level) {
	case "TRC":
		return 1
	case "DBG":
		return 2
	case "INF":
		return 3
	case "WRN":
		return 4
	case "ERR":
		return 5
	case "FTL", "PNC":
		return 6
	}
	return 0
}
