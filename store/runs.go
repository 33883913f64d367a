package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teranos/almanac/errors"
	"github.com/teranos/almanac/logger"
)

// Run statuses.
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// DefaultListLimit caps ListRuns when no limit is given.
const DefaultListLimit = 50

// Run is one recorded resolution.
type Run struct {
	ID          string            `json:"id"`
	InputDigest string            `json:"input_digest"`
	Source      string            `json:"source"`
	Strategy    string            `json:"strategy"`
	Value       *uint64           `json:"value,omitempty"`
	Candidates  uint64            `json:"candidates"`
	DurationMS  int64             `json:"duration_ms"`
	Status      string            `json:"status"`
	Error       string            `json:"error,omitempty"`
	Options     map[string]string `json:"options,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewRun starts a run record with a fresh ID and creation time.
func NewRun(inputDigest, source, strategy string) *Run {
	return &Run{
		ID:          uuid.NewString(),
		InputDigest: inputDigest,
		Source:      source,
		Strategy:    strategy,
		CreatedAt:   time.Now().UTC(),
	}
}

// Succeed marks the run successful with the given value.
func (r *Run) Succeed(value, candidates uint64, elapsed time.Duration) {
	r.Value = &value
	r.Candidates = candidates
	r.DurationMS = elapsed.Milliseconds()
	r.Status = StatusOK
	r.Error = ""
}

// Fail marks the run failed.
func (r *Run) Fail(err error, elapsed time.Duration) {
	r.Value = nil
	r.DurationMS = elapsed.Milliseconds()
	r.Status = StatusFailed
	r.Error = err.Error()
}

// ListFilter narrows ListRuns.
type ListFilter struct {
	InputDigest string
	Strategy    string
	Limit       int
}

// Store reads and writes runs.
type Store struct {
	db  *sql.DB
	log *zap.SugaredLogger
}

// New wraps an open, migrated database. A nil log uses the "store" component
// logger.
func New(db *sql.DB, log *zap.SugaredLogger) *Store {
	if log == nil {
		log = logger.ComponentLogger("store")
	}
	return &Store{db: db, log: log}
}

// RecordRun inserts r.
func (s *Store) RecordRun(ctx context.Context, r *Run) error {
	if r.ID == "" {
		return errors.New("run has no ID")
	}
	options, err := json.Marshal(r.Options)
	if err != nil {
		return errors.Wrap(err, "encode run options")
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, input_digest, source, strategy, value, candidates, duration_ms, status, error, options, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.InputDigest,
		r.Source,
		r.Strategy,
		encodeValue(r.Value),
		int64(r.Candidates),
		r.DurationMS,
		r.Status,
		nullString(r.Error),
		string(options),
		r.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert run %s", r.ID)
	}

	s.log.Debugw("Run recorded",
		logger.FieldRunID, r.ID,
		logger.FieldStrategy, r.Strategy,
		"status", r.Status)
	return nil
}

const runColumns = `id, input_digest, source, strategy, value, candidates, duration_ms, status, error, options, created_at`

// GetRun loads a run by ID. A unique ID prefix is accepted too.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ? OR id LIKE ? ORDER BY id LIMIT 2`,
		id, id+"%")
	if err != nil {
		return nil, errors.Wrapf(err, "query run %s", id)
	}
	defer rows.Close()

	var found []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		if r.ID == id {
			return r, nil
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "read run %s", id)
	}

	switch len(found) {
	case 0:
		return nil, errors.NewNotFoundError("run %s", id)
	case 1:
		return found[0], nil
	default:
		return nil, errors.WithHint(
			errors.Newf("run prefix %s is ambiguous", id),
			"give more characters of the run ID")
	}
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(ctx context.Context, filter ListFilter) ([]*Run, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT ` + runColumns + ` FROM runs WHERE 1 = 1`
	var args []interface{}
	if filter.InputDigest != "" {
		query += ` AND input_digest = ?`
		args = append(args, filter.InputDigest)
	}
	if filter.Strategy != "" {
		query += ` AND strategy = ?`
		args = append(args, filter.Strategy)
	}
	query += ` ORDER BY created_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "query runs")
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "read runs")
	}
	return runs, nil
}

// DeleteRunsBefore removes runs created before cutoff and returns how many
// were removed.
func (s *Store) DeleteRunsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "delete runs")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "count deleted runs")
	}
	s.log.Infow("Pruned runs", logger.FieldCount, n)
	return n, nil
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		r          Run
		value      sql.NullString
		candidates int64
		errText    sql.NullString
		options    string
	)
	if err := rows.Scan(&r.ID, &r.InputDigest, &r.Source, &r.Strategy, &value, &candidates,
		&r.DurationMS, &r.Status, &errText, &options, &r.CreatedAt); err != nil {
		return nil, errors.Wrap(err, "scan run")
	}

	if value.Valid {
		v, err := strconv.ParseUint(value.String, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "run %s has invalid value %q", r.ID, value.String)
		}
		r.Value = &v
	}
	r.Candidates = uint64(candidates)
	r.Error = errText.String
	if options != "" && options != "null" {
		if err := json.Unmarshal([]byte(options), &r.Options); err != nil {
			return nil, errors.Wrapf(err, "run %s has invalid options", r.ID)
		}
	}
	return &r, nil
}

func encodeValue(v *uint64) interface{} {
	if v == nil {
		return nil
	}
	return strconv.FormatUint(*v, 10)
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
