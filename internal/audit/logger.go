package audit

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"
)

// Entry records one lookup. The address is stored only as a fingerprint.
type Entry struct {
	Timestamp   time.Time `json:"ts"`
	LookupID    string    `json:"lookup_id"`
	EmailHash   string    `json:"email_hash"`
	Source      string    `json:"source,omitempty"`
	Result      string    `json:"result"`
	DurationMs  int64     `json:"duration_ms"`
	TriggeredBy string    `json:"triggered_by,omitempty"`
	Error       string    `json:"error,omitempty"`
}

type QueryOptions struct {
	Source string
	Result string
	Hours  int
}

// Logger appends entries to a JSON-lines file.
type Logger struct {
	mu   sync.Mutex
	f    *os.File
	path string
}

func New(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		return nil, err
	}
	return &Logger{f: f, path: path}, nil
}

func (l *Logger) Close() error { return l.f.Close() }

func (l *Logger) Log(e Entry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = l.f.Write(append(data, '\n'))
	return err
}

// Prune removes entries older than retentionDays, rewriting the file.
// No-op if retentionDays is 0.
func (l *Logger) Prune(retentionDays int) (int, error) {
	if retentionDays <= 0 {
		return 0, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	f, err := os.Open(l.path)
	if err != nil {
		return 0, err
	}
	var keep [][]byte
	removed := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		line := scanner.Bytes()
		if err := json.Unmarshal(line, &e); err != nil {
			keep = append(keep, append([]byte{}, line...)) // preserve unparseable lines
			continue
		}
		if e.Timestamp.Before(cutoff) {
			removed++
			continue
		}
		keep = append(keep, append([]byte{}, line...))
	}
	f.Close()
	if err := scanner.Err(); err != nil {
		return 0, err
	}

	tmp := l.path + ".tmp"
	out, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0640)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(out)
	for _, line := range keep {
		w.Write(line)
		w.WriteByte('\n')
	}
	if err := w.Flush(); err != nil {
		out.Close()
		return 0, err
	}
	out.Close()

	if err := os.Rename(tmp, l.path); err != nil {
		return 0, err
	}

	// Re-open the append handle to point to the new file
	l.f.Close()
	l.f, err = os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	return removed, err
}

func (l *Logger) Query(opts QueryOptions) ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cutoff time.Time
	if opts.Hours > 0 {
		cutoff = time.Now().Add(-time.Duration(opts.Hours) * time.Hour)
	}

	var results []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e Entry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			continue
		}
		if opts.Source != "" && !strings.EqualFold(e.Source, opts.Source) {
			continue
		}
		if opts.Result != "" && !strings.EqualFold(e.Result, opts.Result) {
			continue
		}
		if !cutoff.IsZero() && e.Timestamp.Before(cutoff) {
			continue
		}
		results = append(results, e)
	}
	return results, scanner.Err()
}
