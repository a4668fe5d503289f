package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

// Store is the sqlite-backed roster source. It owns the tasks,
// submissions and results tables; everything else in the pipeline
// consumes it through reads plus the round write-back.
type Store struct {
	db *sql.DB
}

// RosterEntry is one participant's tracked state across rounds, read
// from the latest submission on record for that participant.
type RosterEntry struct {
	ID        string
	Email     string
	Task      string
	Round     int
	Endpoint  string
	RepoURL   string
	CommitSHA string
	PagesURL  string
}

// TaskRecord is a dispatched (or received) task, kept so notify
// callbacks can be matched against what was actually sent.
type TaskRecord struct {
	ID            string
	Timestamp     int64
	Email         string
	Task          string
	Round         int
	Nonce         string
	Brief         string
	Checks        []string
	EvaluationURL string
	SecretOK      bool
	RawRequest    string
}

// Submission is a participant's notify callback: where their artifact
// lives and where the rendered page is published.
type Submission struct {
	ID        string
	Timestamp int64
	Email     string
	Task      string
	Round     int
	Nonce     string
	Endpoint  string
	RepoURL   string
	CommitSHA string
	PagesURL  string
}

// Result is one recorded check outcome for a submission.
type Result struct {
	ID        string
	Timestamp int64
	Email     string
	Task      string
	Round     int
	RepoURL   string
	CommitSHA string
	PagesURL  string
	CheckName string
	Score     float64
	Reason    string
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open roster db")
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS tasks (
			id TEXT PRIMARY KEY, timestamp INTEGER, email TEXT, task TEXT, round INTEGER, nonce TEXT,
			brief TEXT, checks TEXT, evaluation_url TEXT, secret_ok INTEGER, raw_request TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			id TEXT PRIMARY KEY, timestamp INTEGER, email TEXT, task TEXT, round INTEGER, nonce TEXT,
			endpoint TEXT, repo_url TEXT, commit_sha TEXT, pages_url TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY, timestamp INTEGER, email TEXT, task TEXT, round INTEGER,
			repo_url TEXT, commit_sha TEXT, pages_url TEXT,
			check_name TEXT, score REAL, reason TEXT
		)`,
	}
	for _, q := range schema {
		if _, err := s.db.Exec(q); err != nil {
			return errors.Wrap(err, "init roster schema")
		}
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// writeWithRetry retries sqlite busy errors with Fibonacci backoff and
// jitter. Anything else fails immediately.
func (s *Store) writeWithRetry(ctx context.Context, op func() error) error {
	b := retry.NewFibonacci(50 * time.Millisecond)
	b = retry.WithMaxRetries(5, b)
	b = retry.WithJitter(20*time.Millisecond, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		err := op()
		if err != nil && strings.Contains(err.Error(), "database is locked") {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (s *Store) SaveTask(ctx context.Context, t TaskRecord) error {
	checks, err := json.Marshal(t.Checks)
	if err != nil {
		return errors.Wrap(err, "marshal task checks")
	}
	secretOK := 0
	if t.SecretOK {
		secretOK = 1
	}
	return s.writeWithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO tasks (id,timestamp,email,task,round,nonce,brief,checks,evaluation_url,secret_ok,raw_request)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			t.ID, t.Timestamp, t.Email, t.Task, t.Round, t.Nonce, t.Brief, string(checks), t.EvaluationURL, secretOK, t.RawRequest)
		return errors.Wrap(err, "insert task")
	})
}

// FindTask looks up a dispatched task by the notify idempotency key.
// A miss returns (nil, nil).
func (s *Store) FindTask(ctx context.Context, email, taskLabel string, round int, nonce string) (*TaskRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,timestamp,email,task,round,nonce,brief,checks,evaluation_url,secret_ok,raw_request
		 FROM tasks WHERE email=? AND task=? AND round=? AND nonce=?`,
		email, taskLabel, round, nonce)

	var t TaskRecord
	var checks string
	var secretOK int
	err := row.Scan(&t.ID, &t.Timestamp, &t.Email, &t.Task, &t.Round, &t.Nonce, &t.Brief, &checks, &t.EvaluationURL, &secretOK, &t.RawRequest)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "find task")
	}
	if err := json.Unmarshal([]byte(checks), &t.Checks); err != nil {
		return nil, errors.Wrap(err, "unmarshal task checks")
	}
	t.SecretOK = secretOK == 1
	return &t, nil
}

func (s *Store) SaveSubmission(ctx context.Context, sub Submission) error {
	return s.writeWithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO submissions (id,timestamp,email,task,round,nonce,endpoint,repo_url,commit_sha,pages_url)
			 VALUES (?,?,?,?,?,?,?,?,?,?)`,
			sub.ID, sub.Timestamp, sub.Email, sub.Task, sub.Round, sub.Nonce, sub.Endpoint, sub.RepoURL, sub.CommitSHA, sub.PagesURL)
		return errors.Wrap(err, "insert submission")
	})
}

// ListRoster returns the latest submission per participant, in email
// order. This is the iteration order the pipeline processes.
func (s *Store) ListRoster(ctx context.Context) ([]RosterEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id,email,task,round,endpoint,repo_url,commit_sha,pages_url
		 FROM submissions s
		 WHERE timestamp = (SELECT MAX(timestamp) FROM submissions WHERE email = s.email)
		 ORDER BY email`)
	if err != nil {
		return nil, errors.Wrap(err, "list roster")
	}
	defer rows.Close()

	var entries []RosterEntry
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.ID, &e.Email, &e.Task, &e.Round, &e.Endpoint, &e.RepoURL, &e.CommitSHA, &e.PagesURL); err != nil {
			return nil, errors.Wrap(err, "scan roster entry")
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "iterate roster")
}

// UpdateRound persists a participant's new current round.
func (s *Store) UpdateRound(ctx context.Context, email string, round int) error {
	return s.writeWithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `UPDATE submissions SET round=? WHERE email=?`, round, email)
		return errors.Wrap(err, "update round")
	})
}

func (s *Store) SaveResult(ctx context.Context, r Result) error {
	return s.writeWithRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx,
			`INSERT INTO results (id,timestamp,email,task,round,repo_url,commit_sha,pages_url,check_name,score,reason)
			 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			r.ID, r.Timestamp, r.Email, r.Task, r.Round, r.RepoURL, r.CommitSHA, r.PagesURL, r.CheckName, r.Score, r.Reason)
		return errors.Wrap(err, "insert result")
	})
}
