package backend

import "time"

// Document is what a fetch produced, reduced to what the fetch screen shows.
type Document struct {
	Source      string
	ContentType string
	Size        int
	Lines       int
	// Preview is the first non-blank line, trimmed.
	Preview  string
	Duration time.Duration
}

// Entry is one line of a followed file. JSON lines are decoded into the
// well known fields; anything else is kept as Raw.
type Entry struct {
	Time    time.Time
	Level   string
	Message string
	Fields  map[string]any
	Raw     string
}

// IsStructured reports whether the line was a JSON object.
func (e Entry) IsStructured() bool { return e.Raw == "" }

// LinesMsg carries lines appended to a followed file.
type LinesMsg struct {
	Path  string
	Lines []string
	// Reset is set when the file was truncated or replaced and the lines
	// start from its beginning.
	Reset bool
}

// WatchErrorMsg reports a watcher failure for a followed file.
type WatchErrorMsg struct {
	Path string
	Err  error
}
