package state

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Outcome is how a workflow run ended.
type Outcome string

const (
	OutcomeRunning Outcome = "running"
	// OutcomeCompleted means every phase ran; a task may still await changes.
	OutcomeCompleted Outcome = "completed"
	OutcomeMerged    Outcome = "merged"
	OutcomeChanges   Outcome = "changes_requested"
	OutcomeFailed    Outcome = "failed"
)

// Run is one journaled workflow run.
type Run struct {
	ID          string        `json:"id"`
	WorkItemID  string        `json:"work_item_id"`
	Title       string        `json:"title"`
	ItemType    string        `json:"item_type"`
	Workflow    string        `json:"workflow"`
	Phase       string        `json:"phase"`
	Outcome     Outcome       `json:"outcome"`
	ItemStatus  string        `json:"item_status"`
	TokensUsed  int64         `json:"tokens_used"`
	PRNumber    int           `json:"pr_number,omitempty"`
	Errors      []string      `json:"errors,omitempty"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt *time.Time    `json:"completed_at,omitempty"`
	Calls       []PersonaCall `json:"calls,omitempty"`
}

// PersonaCall is one persona response recorded against a run.
type PersonaCall struct {
	Persona        string        `json:"persona"`
	Action         string        `json:"action"`
	Decision       string        `json:"decision"`
	ReviewDecision string        `json:"review_decision,omitempty"`
	TokensUsed     int64         `json:"tokens_used"`
	Duration       time.Duration `json:"duration"`
	CreatedAt      time.Time     `json:"created_at"`
}

// RecordRun inserts or replaces a run together with its persona calls.
func (db *DB) RecordRun(r *Run) error {
	errs, err := json.Marshal(r.Errors)
	if err != nil {
		return fmt.Errorf("marshal errors: %w", err)
	}
	var completedAt sql.NullString
	if r.CompletedAt != nil {
		completedAt = sql.NullString{String: formatTime(*r.CompletedAt), Valid: true}
	}

	return db.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT OR REPLACE INTO workflow_runs
				(id, work_item_id, title, item_type, workflow, phase, outcome, item_status,
				 tokens_used, pr_number, errors, started_at, completed_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.ID, r.WorkItemID, r.Title, r.ItemType, r.Workflow, r.Phase, string(r.Outcome), r.ItemStatus,
			r.TokensUsed, r.PRNumber, string(errs), formatTime(r.StartedAt), completedAt)
		if err != nil {
			return fmt.Errorf("record run: %w", err)
		}

		if _, err := tx.Exec(`DELETE FROM persona_calls WHERE run_id = ?`, r.ID); err != nil {
			return fmt.Errorf("clear persona calls: %w", err)
		}
		for i, c := range r.Calls {
			var review sql.NullString
			if c.ReviewDecision != "" {
				review = sql.NullString{String: c.ReviewDecision, Valid: true}
			}
			_, err := tx.Exec(`
				INSERT INTO persona_calls
					(run_id, seq, persona, action, decision, review_decision, tokens_used, duration_ms, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, r.ID, i, c.Persona, c.Action, c.Decision, review, c.TokensUsed,
				c.Duration.Milliseconds(), formatTime(c.CreatedAt))
			if err != nil {
				return fmt.Errorf("record persona call %s: %w", c.Persona, err)
			}
		}
		return nil
	})
}

// GetRun retrieves a run and its calls by ID. A missing run returns nil, nil.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, work_item_id, title, item_type, workflow, phase, outcome, item_status,
		       tokens_used, pr_number, errors, started_at, completed_at
		FROM workflow_runs WHERE id = ?
	`, id)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	calls, err := db.ListCalls(id)
	if err != nil {
		return nil, err
	}
	r.Calls = calls
	return r, nil
}

// ListRuns returns the most recent runs first, without their calls.
// A limit of zero or less returns every run.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT id, work_item_id, title, item_type, workflow, phase, outcome, item_status,
		       tokens_used, pr_number, errors, started_at, completed_at
		FROM workflow_runs ORDER BY started_at DESC, id`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// ListCalls returns the persona calls of a run in call order.
func (db *DB) ListCalls(runID string) ([]PersonaCall, error) {
	rows, err := db.Query(`
		SELECT persona, action, decision, review_decision, tokens_used, duration_ms, created_at
		FROM persona_calls WHERE run_id = ? ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list persona calls: %w", err)
	}
	defer rows.Close()

	var calls []PersonaCall
	for rows.Next() {
		var c PersonaCall
		var review sql.NullString
		var durationMS int64
		var createdAt string
		if err := rows.Scan(&c.Persona, &c.Action, &c.Decision, &review, &c.TokensUsed, &durationMS, &createdAt); err != nil {
			return nil, fmt.Errorf("scan persona call: %w", err)
		}
		c.ReviewDecision = review.String
		c.Duration = time.Duration(durationMS) * time.Millisecond
		c.CreatedAt, _ = parseTime(createdAt)
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// PurgeOldRuns deletes runs started before now minus olderThan.
// Returns the number of runs deleted.
func (db *DB) PurgeOldRuns(olderThan time.Duration) (int64, error) {
	cutoff := formatTime(time.Now().Add(-olderThan))

	var count int64
	err := db.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`
			DELETE FROM persona_calls
			WHERE run_id IN (SELECT id FROM workflow_runs WHERE started_at < ?)
		`, cutoff); err != nil {
			return fmt.Errorf("purge persona calls: %w", err)
		}
		result, err := tx.Exec(`DELETE FROM workflow_runs WHERE started_at < ?`, cutoff)
		if err != nil {
			return fmt.Errorf("purge old runs: %w", err)
		}
		count, err = result.RowsAffected()
		if err != nil {
			return fmt.Errorf("get rows affected: %w", err)
		}
		return nil
	})
	return count, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var outcome, errs sql.NullString
	var startedAt string
	var completedAt sql.NullString
	err := s.Scan(&r.ID, &r.WorkItemID, &r.Title, &r.ItemType, &r.Workflow, &r.Phase, &outcome, &r.ItemStatus,
		&r.TokensUsed, &r.PRNumber, &errs, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	r.Outcome = Outcome(outcome.String)
	if errs.Valid && errs.String != "" && errs.String != "null" {
		if err := json.Unmarshal([]byte(errs.String), &r.Errors); err != nil {
			return nil, fmt.Errorf("unmarshal errors: %w", err)
		}
	}
	r.StartedAt, _ = parseTime(startedAt)
	r.CompletedAt = parseNullableTime(completedAt)
	return &r, nil
}
