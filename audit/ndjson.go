// Package audit appends link decisions to daily NDJSON files so that
// AMBIGUOUS and UNMATCHED cases can be reconciled by an administrator.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	PrefixWebhook  = "WEBHOOK"
	PrefixRegister = "REGISTER"
)

var jst = time.FixedZone("JST", 9*60*60)

// Record is one NDJSON line. Result holds the outcome name.
type Record struct {
	TS          string `json:"ts"`
	Kind        string `json:"kind"`
	Mode        string `json:"mode,omitempty"`
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName,omitempty"`
	InputName   string `json:"inputName,omitempty"`
	Normalized  string `json:"normalized,omitempty"`
	Result      string `json:"result"`
	MemberID    int64  `json:"member_id,omitempty"`
	MemberName  string `json:"member_name,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

type Log struct {
	base string
	now  func() time.Time
	mu   sync.Mutex
}

func New(basePath string) *Log {
	return &Log{base: basePath, now: time.Now}
}

// Append writes rec to <base>/line/<prefix>-<UTC date>.ndjson. TS is filled
// with the current JST time when empty.
func (l *Log) Append(prefix string, rec Record) error {
	now := l.now()
	if rec.TS == "" {
		rec.TS = FormatJST(now)
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode audit record: %w", err)
	}
	line = append(line, '\n')

	path := l.path(prefix, now)

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create audit dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("append audit log: %w", err)
	}
	return f.Close()
}

func (l *Log) path(prefix string, now time.Time) string {
	return filepath.Join(l.base, "line", prefix+"-"+now.UTC().Format(time.DateOnly)+".ndjson")
}

// FormatJST renders t as ISO 8601 in Japan time, e.g. 2025-09-01T18:30:00+09:00.
func FormatJST(t time.Time) string {
	return t.In(jst).Format("2006-01-02T15:04:05-07:00")
}
