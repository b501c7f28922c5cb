// Package ledger persists which pools the discovery scan has already
// evaluated, as a flat CSV file read whole at scan start and rewritten
// whole at scan end.
package ledger

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TimeFormat matches the market API's pool_created_at strings.
const TimeFormat = "2006-01-02T15:04:05Z"

// Row is one scanned-pool record.
type Row struct {
	CreatedAt string
	Pool      string
	Token     string
	Passed    bool
}

// Ledger holds the scanned-token rows for one scan batch. Safe for
// concurrent use.
type Ledger struct {
	path   string
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	rows []Row
}

// Open reads the full ledger file, creating an empty one when missing.
func Open(path string, window time.Duration) (*Ledger, error) {
	l := &Ledger{
		path:   path,
		window: window,
		now:    func() time.Time { return time.Now().UTC() },
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		if werr := os.WriteFile(path, nil, 0o644); werr != nil {
			return nil, werr
		}
		return l, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w", path, err)
	}
	for _, rec := range records {
		if len(rec) != 4 {
			return nil, fmt.Errorf("read ledger %s: row has %d fields, want 4", path, len(rec))
		}
		l.rows = append(l.rows, Row{
			CreatedAt: rec[0],
			Pool:      rec[1],
			Token:     rec[2],
			Passed:    rec[3] == "1",
		})
	}
	return l, nil
}

// ShouldScan decides whether a token needs evaluation. Tokens that
// already passed are skipped forever; tokens recorded within the rescan
// window are skipped for now. Anything else has its stale row removed and
// gets re-evaluated.
func (l *Ledger) ShouldScan(token string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i, row := range l.rows {
		if row.Token != token {
			continue
		}
		if row.Passed {
			return false
		}
		if created, err := time.Parse(TimeFormat, row.CreatedAt); err == nil {
			if l.now().Sub(created) < l.window {
				return false
			}
		}
		l.rows = append(l.rows[:i], l.rows[i+1:]...)
		return true
	}
	return true
}

// Record appends a row for a freshly evaluated pool.
func (l *Ledger) Record(createdAt, pool, token string, passed bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rows = append(l.rows, Row{CreatedAt: createdAt, Pool: pool, Token: token, Passed: passed})
}

// Len reports the current row count.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rows)
}

// Save rewrites the whole file in one atomic step (temp file + rename),
// so an interrupted batch never leaves a half-written ledger behind.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(l.path), ".ledger-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	for _, row := range l.rows {
		passed := "0"
		if row.Passed {
			passed = "1"
		}
		if err := w.Write([]string{row.CreatedAt, row.Pool, row.Token, passed}); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), l.path)
}
