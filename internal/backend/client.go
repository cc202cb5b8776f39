package backend

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultMaxBytes caps how much of a source is read.
const DefaultMaxBytes = 4 << 20

// ErrTooLarge is returned when a source exceeds the client's size limit.
var ErrTooLarge = errors.New("source too large")

// Client loads sources for the fetch screen. A source is an http(s) URL,
// an "exec:" command line, or a file path (optionally with file://).
type Client struct {
	http     *http.Client
	timeout  time.Duration
	maxBytes int64
}

// NewClient creates a client. A zero timeout means no per-fetch limit
// beyond the caller's context.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http:     &http.Client{},
		timeout:  timeout,
		maxBytes: DefaultMaxBytes,
	}
}

// Fetch loads source and summarises it. It honors ctx cancellation.
func (c *Client) Fetch(ctx context.Context, source string) (Document, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	start := time.Now()
	var (
		body []byte
		ct   string
		err  error
	)
	switch {
	case strings.HasPrefix(source, "http://"), strings.HasPrefix(source, "https://"):
		body, ct, err = c.get(ctx, source)
	case strings.HasPrefix(source, "exec:"):
		body, err = c.run(ctx, strings.TrimSpace(strings.TrimPrefix(source, "exec:")))
		ct = "text/plain"
	default:
		body, err = c.read(ctx, strings.TrimPrefix(source, "file://"))
	}
	if err != nil {
		return Document{Source: source, Duration: time.Since(start)}, err
	}
	if ct == "" {
		ct = http.DetectContentType(body)
	}

	doc := Summarize(body)
	doc.Source = source
	doc.ContentType = ct
	doc.Duration = time.Since(start)
	return doc, nil
}

// Summarize counts lines and picks the preview line of body.
func Summarize(body []byte) Document {
	doc := Document{Size: len(body)}
	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 256*1024), 1024*1024)
	for scanner.Scan() {
		doc.Lines++
		if doc.Preview == "" {
			doc.Preview = strings.TrimSpace(scanner.Text())
		}
	}
	return doc
}

func (c *Client) get(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("get %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, "", fmt.Errorf("get %s: %s", url, resp.Status)
	}
	body, err := c.limit(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", url, err)
	}
	return body, resp.Header.Get("Content-Type"), nil
}

func (c *Client) read(ctx context.Context, path string) ([]byte, error) {
	path = expandHome(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	body, err := c.limit(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return body, nil
}

func (c *Client) run(ctx context.Context, line string) ([]byte, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return nil, errors.New("exec: empty command")
	}
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout := &cappedBuffer{max: c.maxBytes}
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	// Once the cap is hit the pipe is closed and the command usually dies
	// of it, so the overflow is checked before the exit status.
	if stdout.over {
		return nil, ErrTooLarge
	}
	if err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = stdout.buf.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", line, err, strings.TrimSpace(msg))
	}
	return stdout.buf.Bytes(), nil
}

// cappedBuffer collects command output and fails writes past max bytes.
type cappedBuffer struct {
	buf  bytes.Buffer
	max  int64
	over bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	if int64(b.buf.Len()+len(p)) > b.max {
		b.over = true
		return 0, ErrTooLarge
	}
	return b.buf.Write(p)
}

func (c *Client) limit(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, c.maxBytes+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxBytes {
		return nil, ErrTooLarge
	}
	return body, nil
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
