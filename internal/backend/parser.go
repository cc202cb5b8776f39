package backend

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// Common key names for the timestamp, level and message of a JSON log line.
var (
	timeKeys  = []string{"time", "ts", "timestamp", "@timestamp"}
	levelKeys = []string{"level", "lvl", "severity"}
	msgKeys   = []string{"msg", "message", "text"}
)

// ParseLine decodes a JSON object line into an Entry. Other lines, including
// malformed JSON, come back with Raw set.
func ParseLine(line string) Entry {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "{") {
		return Entry{Raw: line}
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(trimmed), &fields); err != nil {
		return Entry{Raw: line}
	}

	e := Entry{Fields: fields}
	if v, ok := take(fields, timeKeys); ok {
		switch t := v.(type) {
		case string:
			e.Time, _ = time.Parse(time.RFC3339Nano, t)
		case float64:
			e.Time = time.Unix(0, int64(t*float64(time.Second)))
		}
	}
	if v, ok := take(fields, levelKeys); ok {
		e.Level = strings.ToUpper(fmt.Sprint(v))
	}
	if v, ok := take(fields, msgKeys); ok {
		e.Message = fmt.Sprint(v)
	}
	return e
}

func take(fields map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			delete(fields, k)
			return v, true
		}
	}
	return nil, false
}

// FormatEntry renders an entry as a single line: time, level, message and
// the remaining fields sorted by key.
func FormatEntry(e Entry) string {
	if !e.IsStructured() {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	if e.Level != "" {
		fmt.Fprintf(&b, "%-5s ", e.Level)
	}
	b.WriteString(e.Message)

	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := json.Marshal(e.Fields[k])
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	return strings.TrimSpace(b.String())
}

// ReadLastLines returns up to n trailing lines of path and the file size.
// A missing file yields no lines and no error.
func ReadLastLines(path string, n int) ([]string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	lines, err := scanLines(f, n)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	off, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return nil, 0, fmt.Errorf("seek %s: %w", path, err)
	}
	return lines, off, nil
}

// scanLines keeps the last n lines of r in a ring; n <= 0 keeps all.
func scanLines(r io.Reader, n int) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
		if n > 0 && len(lines) > 2*n {
			lines = append(lines[:0:0], lines[len(lines)-n:]...)
		}
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, scanner.Err()
}
