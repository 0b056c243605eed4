// Package repo contains all database access for the Wayfarer API.
// No business logic lives here — only SQL and type mapping. The trip
// aggregate is loaded and stored as a whole; the service layer transforms it
// in memory and hands it back for a full replace.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows
// integration tests to pass a transaction that is rolled back after each
// test, giving free per-test isolation. Begin on a pgx.Tx opens a savepoint,
// so aggregate saves stay transactional inside test transactions too.
type db interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TripRepo defines the persistence operations for trip aggregates.
// The service layer depends on this interface, not the Postgres
// implementation, so it can be unit-tested with a mock.
type TripRepo interface {
	// Create inserts a new trip aggregate and returns the persisted record
	// (with DB-generated id and timestamps populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID loads a full trip aggregate: details, members, invites, and the
	// ordered item list. Returns domain.ErrNotFound if the trip is absent.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListByMemberPaged returns the trips userID belongs to, most recent
	// start date first, without child collections, plus the total count.
	ListByMemberPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Save replaces the stored aggregate with trip. Child collections are
	// reconciled by diff — rows that survive the edit keep their identity —
	// rather than delete-all/insert-all. Returns domain.ErrNotFound if the
	// trip row is absent.
	Save(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip; children cascade. Returns domain.ErrNotFound if
	// it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByPendingInviteEmail loads every trip holding a PENDING invite for
	// the given email (case-insensitive). Used to link invites when an
	// account is registered.
	ListByPendingInviteEmail(ctx context.Context, email string) ([]domain.Trip, error)
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback
// isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

// Create inserts the trip row and its children and returns the stored
// aggregate.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var created domain.Trip
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		const q = `
			INSERT INTO trips (owner_id, name, start_date, end_date, visibility)
			VALUES (@owner_id, @name, @start_date, @end_date, @visibility)
			RETURNING id`

		args := pgx.NamedArgs{
			"owner_id":   trip.OwnerID,
			"name":       trip.Name,
			"start_date": trip.StartDate,
			"end_date":   trip.EndDate,
			"visibility": string(trip.Visibility),
		}

		var id pgtype.UUID
		if err := tx.QueryRow(ctx, q, args).Scan(&id); err != nil {
			return err
		}
		trip.ID = uuid.UUID(id.Bytes)

		if err := reconcileChildren(ctx, tx, trip); err != nil {
			return err
		}

		var err error
		created, err = loadAggregate(ctx, tx, trip.ID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return created, nil
}

// GetByID loads the full aggregate.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	trip, err := loadAggregate(ctx, r.db, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return trip, nil
}

// ListByMemberPaged returns trip rows (no children) for the member's trips.
func (r *pgTripRepo) ListByMemberPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const q = `
		SELECT t.id, t.owner_id, t.name, t.start_date, t.end_date, t.visibility,
		       t.created_at, t.updated_at, count(*) OVER () AS total
		FROM trips t
		JOIN trip_members m ON m.trip_id = t.id
		WHERE m.user_id = @user_id
		ORDER BY t.start_date DESC, t.created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMemberPaged: %w", err)
	}
	defer rows.Close()

	var (
		trips []domain.Trip
		total int64
	)
	for rows.Next() {
		t, n, err := scanTripWithTotal(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListByMemberPaged: scan: %w", err)
		}
		trips = append(trips, t)
		total = n
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListByMemberPaged: rows: %w", err)
	}

	return trips, total, nil
}

// Save replaces the aggregate: trip row update plus child reconciliation.
func (r *pgTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	var saved domain.Trip
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		const q = `
			UPDATE trips
			SET owner_id   = @owner_id,
			    name       = @name,
			    start_date = @start_date,
			    end_date   = @end_date,
			    visibility = @visibility,
			    updated_at = now()
			WHERE id = @id`

		tag, err := tx.Exec(ctx, q, pgx.NamedArgs{
			"id":         trip.ID,
			"owner_id":   trip.OwnerID,
			"name":       trip.Name,
			"start_date": trip.StartDate,
			"end_date":   trip.EndDate,
			"visibility": string(trip.Visibility),
		})
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}

		if err := reconcileChildren(ctx, tx, trip); err != nil {
			return err
		}

		saved, err = loadAggregate(ctx, tx, trip.ID)
		return err
	})
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Save: %w", err)
	}
	return saved, nil
}

// Delete removes the trip row; members, invites, and items cascade.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM trips WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// ListByPendingInviteEmail loads full aggregates for every trip with a
// PENDING invite for email.
func (r *pgTripRepo) ListByPendingInviteEmail(ctx context.Context, email string) ([]domain.Trip, error) {
	const q = `
		SELECT trip_id FROM trip_invites
		WHERE email = lower(@email) AND status = 'PENDING'
		ORDER BY created_at`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"email": email})
	if err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByPendingInviteEmail: %w", err)
	}
	var ids []uuid.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("repo.TripRepo.ListByPendingInviteEmail: scan: %w", err)
		}
		ids = append(ids, uuid.UUID(id.Bytes))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TripRepo.ListByPendingInviteEmail: rows: %w", err)
	}

	trips := make([]domain.Trip, 0, len(ids))
	for _, id := range ids {
		t, err := loadAggregate(ctx, r.db, id)
		if err != nil {
			return nil, fmt.Errorf("repo.TripRepo.ListByPendingInviteEmail: %w", err)
		}
		trips = append(trips, t)
	}
	return trips, nil
}

// withTx runs fn inside a transaction, committing on success.
func (r *pgTripRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanTrip maps a trips row into a domain.Trip without child collections.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t          domain.Trip
		id, owner  pgtype.UUID
		start, end pgtype.Date
		visibility string
	)

	err := s.Scan(&id, &owner, &t.Name, &start, &end, &visibility, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	t.StartDate = domain.DateOnly(start.Time)
	t.EndDate = domain.DateOnly(end.Time)
	t.Visibility = domain.Visibility(visibility)
	return t, nil
}

// scanTripWithTotal scans a trips row followed by a count(*) OVER () column.
func scanTripWithTotal(s scanner) (domain.Trip, int64, error) {
	var (
		t          domain.Trip
		id, owner  pgtype.UUID
		start, end pgtype.Date
		visibility string
		total      int64
	)

	err := s.Scan(&id, &owner, &t.Name, &start, &end, &visibility, &t.CreatedAt, &t.UpdatedAt, &total)
	if err != nil {
		return domain.Trip{}, 0, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(owner.Bytes)
	t.StartDate = domain.DateOnly(start.Time)
	t.EndDate = domain.DateOnly(end.Time)
	t.Visibility = domain.Visibility(visibility)
	return t, total, nil
}
