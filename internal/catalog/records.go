// File path: internal/catalog/records.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/SalvucciFacundo/ClasificadorIA/internal/trainer"
)

// Stages distinguish the two curation passes in the commits table.
const (
	StageClassification    = "classification"
	StageSubclassification = "subclassification"
)

// CommitItem is one row to mirror into the catalog after a batch persists.
type CommitItem struct {
	Filename string
	Label    string
	Hash     string
	Path     string
}

// Commit is a stored commit row.
type Commit struct {
	ID        int64     `db:"id" json:"id"`
	BatchID   string    `db:"batch_id" json:"batch_id"`
	Stage     string    `db:"stage" json:"stage"`
	Filename  string    `db:"filename" json:"filename"`
	Label     string    `db:"label" json:"label"`
	Hash      string    `db:"hash" json:"hash,omitempty"`
	DestPath  string    `db:"dest_path" json:"dest_path,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RecordBatch mirrors the committed items of one batch in a single
// transaction.
func (s *Store) RecordBatch(ctx context.Context, batchID, stage string, items []CommitItem) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return withTx(ctx, s.db, func(tx *sqlx.Tx) error {
		for _, item := range items {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO commits (batch_id, stage, filename, label, hash, dest_path) VALUES (?, ?, ?, ?, ?, ?)`,
				batchID, stage, item.Filename, item.Label, item.Hash, item.Path); err != nil {
				return fmt.Errorf("insert commit %s: %w", item.Filename, err)
			}
		}
		return nil
	})
}

// LabelCounts aggregates committed items per label within a stage.
func (s *Store) LabelCounts(ctx context.Context, stage string) (map[string]int, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryxContext(ctx,
		`SELECT label, COUNT(*) AS count FROM commits WHERE stage = ? GROUP BY label`, stage)
	if err != nil {
		return nil, fmt.Errorf("query label counts: %w", err)
	}
	defer rows.Close()
	counts := make(map[string]int)
	for rows.Next() {
		var label string
		var count int
		if err := rows.Scan(&label, &count); err != nil {
			return nil, fmt.Errorf("scan label count: %w", err)
		}
		counts[label] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate label counts: %w", err)
	}
	return counts, nil
}

// RecentCommits returns the newest commit rows, most recent first.
func (s *Store) RecentCommits(ctx context.Context, limit int) ([]Commit, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	var commits []Commit
	if err := s.db.SelectContext(ctx, &commits,
		`SELECT id, batch_id, stage, filename, label, hash, dest_path, created_at
                 FROM commits ORDER BY id DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("query recent commits: %w", err)
	}
	return commits, nil
}

// KnownHashes returns the set of content hashes already mirrored for a stage.
func (s *Store) KnownHashes(ctx context.Context, stage string) (map[string]struct{}, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}
	var hashes []string
	if err := s.db.SelectContext(ctx, &hashes,
		`SELECT hash FROM commits WHERE stage = ? AND hash != ''`, stage); err != nil {
		return nil, fmt.Errorf("query known hashes: %w", err)
	}
	known := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		known[h] = struct{}{}
	}
	return known, nil
}

// RecordTrainingRun upserts one coordinator run; it implements
// trainer.RunRecorder.
func (s *Store) RecordTrainingRun(ctx context.Context, run trainer.Run) error {
	if err := s.ensureReady(); err != nil {
		return err
	}
	var completed sql.NullTime
	if run.CompletedAt != nil {
		completed = sql.NullTime{Time: *run.CompletedAt, Valid: true}
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO training_runs (run_id, status, accuracy, loss, error, started_at, completed_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)
                 ON CONFLICT(run_id) DO UPDATE SET
                         status = excluded.status,
                         accuracy = excluded.accuracy,
                         loss = excluded.loss,
                         error = excluded.error,
                         completed_at = excluded.completed_at`,
		run.ID, run.Status, run.Metrics.Accuracy, run.Metrics.Loss, run.Error, run.StartedAt, completed); err != nil {
		return fmt.Errorf("record training run: %w", err)
	}
	return nil
}
