package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/mapper"
	"github.com/kanishqbagri/microservice-testing-lab-sub000/internal/pipeline"
)

// ErrNotFound is returned when no row has the requested ID.
var ErrNotFound = errors.New("interpretation not found")

// Entry is one recorded interpretation.
type Entry struct {
	ID          string                  `json:"id"`
	Input       string                  `json:"input"`
	Intent      string                  `json:"intent"`
	ActionType  string                  `json:"action_type"`
	TestType    string                  `json:"test_type"`
	ServiceName string                  `json:"service_name"`
	Confidence  float64                 `json:"confidence"`
	Confident   bool                    `json:"confident"`
	Failures    int                     `json:"failures"`
	Action      mapper.ExecutableAction `json:"action"`
	Duration    time.Duration           `json:"duration"`
	CreatedAt   time.Time               `json:"created_at"`
}

// IntentCount aggregates the rows of one intent.
type IntentCount struct {
	Intent            string  `json:"intent"`
	Count             int64   `json:"count"`
	AverageConfidence float64 `json:"average_confidence"`
}

// Summary aggregates the whole history.
type Summary struct {
	Total             int64         `json:"total"`
	Confident         int64         `json:"confident"`
	Fallbacks         int64         `json:"fallbacks"`
	AverageConfidence float64       `json:"average_confidence"`
	ByIntent          []IntentCount `json:"by_intent"`
}

const entryColumns = `id, input, intent, action_type, test_type, service_name,
	confidence, confident, failures, action_json, duration_us, created_at`

// Record stores interp and trims rows beyond the retention limit. It
// implements pipeline.Recorder.
func (s *Store) Record(ctx context.Context, interp *pipeline.Interpretation) error {
	if interp == nil {
		return errors.New("record interpretation: nil interpretation")
	}
	id := interp.ID
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := interp.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	actionJSON, err := json.Marshal(interp.Action)
	if err != nil {
		return fmt.Errorf("encode action: %w", err)
	}

	return s.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO interpretations (`+entryColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			id,
			interp.Input,
			string(interp.Intent.Type),
			interp.Action.ActionType,
			interp.Action.TestType,
			interp.Action.ServiceName,
			interp.Action.Confidence,
			interp.Confident,
			len(interp.Failures),
			string(actionJSON),
			interp.Duration.Microseconds(),
			createdAt.UnixNano(),
		)
		if err != nil {
			return fmt.Errorf("insert interpretation: %w", err)
		}

		if s.retention > 0 {
			// seq at the retention boundary; NULL when under the limit
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM interpretations WHERE seq <= (
					SELECT seq FROM interpretations ORDER BY seq DESC LIMIT 1 OFFSET ?
				)`, s.retention); err != nil {
				return fmt.Errorf("trim history: %w", err)
			}
		}
		return nil
	})
}

// List returns up to limit entries, newest first. A non-positive limit
// returns every entry.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+entryColumns+` FROM interpretations ORDER BY seq DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history: %w", err)
	}
	return entries, nil
}

// Get returns the entry with the given ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM interpretations WHERE id = ?`, id)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Stats aggregates the history by intent, most frequent first.
func (s *Store) Stats(ctx context.Context) (Summary, error) {
	var sum Summary
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*),
			COALESCE(SUM(confident), 0),
			COALESCE(SUM(CASE WHEN action_type IN (?, ?) THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(confidence), 0)
		FROM interpretations`,
		mapper.ActionUnknown, mapper.ActionError,
	).Scan(&sum.Total, &sum.Confident, &sum.Fallbacks, &sum.AverageConfidence)
	if err != nil {
		return Summary{}, fmt.Errorf("query history totals: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT intent, COUNT(*), AVG(confidence)
		FROM interpretations
		GROUP BY intent
		ORDER BY COUNT(*) DESC, intent ASC`)
	if err != nil {
		return Summary{}, fmt.Errorf("query history by intent: %w", err)
	}
	defer rows.Close()

	sum.ByIntent = []IntentCount{}
	for rows.Next() {
		var ic IntentCount
		if err := rows.Scan(&ic.Intent, &ic.Count, &ic.AverageConfidence); err != nil {
			return Summary{}, fmt.Errorf("scan intent count: %w", err)
		}
		sum.ByIntent = append(sum.ByIntent, ic)
	}
	if err := rows.Err(); err != nil {
		return Summary{}, fmt.Errorf("iterate intent counts: %w", err)
	}
	return sum, nil
}

// Clear deletes every entry and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM interpretations`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var (
		e          Entry
		actionJSON string
		durationUS int64
		createdAt  int64
	)
	err := sc.Scan(
		&e.ID, &e.Input, &e.Intent, &e.ActionType, &e.TestType, &e.ServiceName,
		&e.Confidence, &e.Confident, &e.Failures, &actionJSON, &durationUS, &createdAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, err
	}
	if err != nil {
		return Entry{}, fmt.Errorf("scan interpretation: %w", err)
	}

	if err := json.Unmarshal([]byte(actionJSON), &e.Action); err != nil {
		return Entry{}, fmt.Errorf("decode action %s: %w", e.ID, err)
	}
	e.Duration = time.Duration(durationUS) * time.Microsecond
	e.CreatedAt = time.Unix(0, createdAt).UTC()
	return e, nil
}

var _ pipeline.Recorder = (*Store)(nil)
