package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenbank/mortgage-engine/internal/domain/port"
	"github.com/lumenbank/mortgage-engine/internal/domain/valueobject"
	pkgpostgres "github.com/lumenbank/mortgage-engine/pkg/postgres"
)

// ScheduleStore implements port.ScheduleStore on one row per account and
// event kind.
type ScheduleStore struct {
	pool *pgxpool.Pool
}

// NewScheduleStore creates a PostgreSQL-backed schedule store.
func NewScheduleStore(pool *pgxpool.Pool) *ScheduleStore {
	return &ScheduleStore{pool: pool}
}

// Create inserts the schedule rows raised at activation.
func (s *ScheduleStore) Create(ctx context.Context, accountID string, rows []valueobject.ScheduledEvent) error {
	return pkgpostgres.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		for _, row := range rows {
			_, err := tx.Exec(ctx, `
				INSERT INTO schedules (
					account_id, kind, next_run_at, skip,
					recur_day, recur_hour, recur_minute, recur_second, last_valid_day
				)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
				ON CONFLICT (account_id, kind) DO UPDATE SET
					next_run_at    = EXCLUDED.next_run_at,
					skip           = EXCLUDED.skip,
					recur_day      = EXCLUDED.recur_day,
					recur_hour     = EXCLUDED.recur_hour,
					recur_minute   = EXCLUDED.recur_minute,
					recur_second   = EXCLUDED.recur_second,
					last_valid_day = EXCLUDED.last_valid_day
			`,
				accountID, string(row.Kind), row.NextRunAt, row.Skip,
				row.Recurrence.Day, row.Recurrence.Hour, row.Recurrence.Minute,
				row.Recurrence.Second, row.Recurrence.LastValidDay,
			)
			if err != nil {
				return fmt.Errorf("insert schedule %s: %w", row.Kind, err)
			}
		}
		return nil
	})
}

// Apply moves or skips existing schedule rows.
func (s *ScheduleStore) Apply(ctx context.Context, accountID string, updates []valueobject.ScheduleUpdate) error {
	return pkgpostgres.WithTransaction(ctx, s.pool, func(tx pgx.Tx) error {
		for _, u := range updates {
			tag, err := tx.Exec(ctx, `
				UPDATE schedules SET next_run_at = $3, skip = $4
				WHERE account_id = $1 AND kind = $2
			`, accountID, string(u.Kind), u.NextRunAt, u.Skip)
			if err != nil {
				return fmt.Errorf("update schedule %s: %w", u.Kind, err)
			}
			if tag.RowsAffected() == 0 {
				return fmt.Errorf("update schedule %s: %w", u.Kind, port.ErrNotFound)
			}
		}
		return nil
	})
}

// FindByAccount lists the account's schedule rows.
func (s *ScheduleStore) FindByAccount(ctx context.Context, accountID string) ([]valueobject.ScheduledEvent, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT kind, next_run_at, skip, recur_day, recur_hour, recur_minute, recur_second, last_valid_day
		FROM schedules
		WHERE account_id = $1
		ORDER BY kind
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("query schedules: %w", err)
	}
	defer rows.Close()

	var out []valueobject.ScheduledEvent
	for rows.Next() {
		row, err := scanScheduledEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// FindDue lists non-skipped rows ready to run at asOf, oldest first.
func (s *ScheduleStore) FindDue(ctx context.Context, asOf time.Time, limit int) ([]port.DueScheduleEntry, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.pool.Query(ctx, `
		SELECT account_id, kind, next_run_at, skip, recur_day, recur_hour, recur_minute, recur_second, last_valid_day
		FROM schedules
		WHERE skip = FALSE AND next_run_at <= $1
		ORDER BY next_run_at
		LIMIT $2
	`, asOf, limit)
	if err != nil {
		return nil, fmt.Errorf("query due schedules: %w", err)
	}
	defer rows.Close()

	var out []port.DueScheduleEntry
	for rows.Next() {
		var accountID string
		var event valueobject.ScheduledEvent
		var kind string
		err := rows.Scan(
			&accountID, &kind, &event.NextRunAt, &event.Skip,
			&event.Recurrence.Day, &event.Recurrence.Hour, &event.Recurrence.Minute,
			&event.Recurrence.Second, &event.Recurrence.LastValidDay,
		)
		if err != nil {
			return nil, fmt.Errorf("scan due schedule: %w", err)
		}
		event.Kind = valueobject.EventKind(kind)
		out = append(out, port.DueScheduleEntry{AccountID: accountID, Event: event})
	}
	return out, rows.Err()
}

// LastRunAt returns when the kind last ran for the account, the zero time
// when it never did.
func (s *ScheduleStore) LastRunAt(ctx context.Context, accountID string, kind valueobject.EventKind) (time.Time, error) {
	var lastRun *time.Time
	err := s.pool.QueryRow(ctx, `
		SELECT last_run_at FROM schedules WHERE account_id = $1 AND kind = $2
	`, accountID, string(kind)).Scan(&lastRun)
	if errors.Is(err, pgx.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("query last run: %w", err)
	}
	if lastRun == nil {
		return time.Time{}, nil
	}
	return *lastRun, nil
}

// MarkRun records a completed tick.
func (s *ScheduleStore) MarkRun(ctx context.Context, accountID string, kind valueobject.EventKind, ranAt time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE schedules SET last_run_at = $3 WHERE account_id = $1 AND kind = $2
	`, accountID, string(kind), ranAt)
	if err != nil {
		return fmt.Errorf("mark schedule run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("mark schedule run %s: %w", kind, port.ErrNotFound)
	}
	return nil
}

func scanScheduledEvent(s scannable) (valueobject.ScheduledEvent, error) {
	var event valueobject.ScheduledEvent
	var kind string
	err := s.Scan(
		&kind, &event.NextRunAt, &event.Skip,
		&event.Recurrence.Day, &event.Recurrence.Hour, &event.Recurrence.Minute,
		&event.Recurrence.Second, &event.Recurrence.LastValidDay,
	)
	if err != nil {
		return event, fmt.Errorf("scan schedule: %w", err)
	}
	event.Kind = valueobject.EventKind(kind)
	return event, nil
}
