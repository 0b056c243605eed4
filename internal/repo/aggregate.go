package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// loadAggregate assembles a full trip aggregate from its four tables.
// Children come back in stored position order, so the domain's flat item
// list and member ordering round-trip exactly.
func loadAggregate(ctx context.Context, db db, id uuid.UUID) (domain.Trip, error) {
	const tripQ = `
		SELECT id, owner_id, name, start_date, end_date, visibility, created_at, updated_at
		FROM trips
		WHERE id = @id`

	trip, err := scanTrip(db.QueryRow(ctx, tripQ, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, err
	}

	if trip.Members, err = loadMembers(ctx, db, id); err != nil {
		return domain.Trip{}, err
	}
	if trip.Invites, err = loadInvites(ctx, db, id); err != nil {
		return domain.Trip{}, err
	}
	if trip.Items, err = loadItems(ctx, db, id); err != nil {
		return domain.Trip{}, err
	}
	return trip, nil
}

func loadMembers(ctx context.Context, db db, tripID uuid.UUID) ([]domain.TripMembership, error) {
	const q = `
		SELECT user_id, role
		FROM trip_members
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.TripMembership
	for rows.Next() {
		var (
			userID pgtype.UUID
			role   string
		)
		if err := rows.Scan(&userID, &role); err != nil {
			return nil, err
		}
		members = append(members, domain.TripMembership{
			UserID: uuid.UUID(userID.Bytes),
			Role:   domain.Role(role),
		})
	}
	return members, rows.Err()
}

func loadInvites(ctx context.Context, db db, tripID uuid.UUID) ([]domain.TripInvite, error) {
	const q = `
		SELECT email, role, status, created_at
		FROM trip_invites
		WHERE trip_id = @trip_id
		ORDER BY created_at, email`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invites []domain.TripInvite
	for rows.Next() {
		var (
			inv          domain.TripInvite
			role, status string
		)
		if err := rows.Scan(&inv.Email, &role, &status, &inv.CreatedAt); err != nil {
			return nil, err
		}
		inv.Role = domain.Role(role)
		inv.Status = domain.InviteStatus(status)
		invites = append(invites, inv)
	}
	return invites, rows.Err()
}

func loadItems(ctx context.Context, db db, tripID uuid.UUID) ([]domain.ItineraryItem, error) {
	const q = `
		SELECT id, place_name, item_date, notes, latitude, longitude, in_places_to_visit
		FROM itinerary_items
		WHERE trip_id = @trip_id
		ORDER BY position`

	rows, err := db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.ItineraryItem
	for rows.Next() {
		var (
			it   domain.ItineraryItem
			id   pgtype.UUID
			date pgtype.Date
		)
		if err := rows.Scan(&id, &it.PlaceName, &date, &it.Notes, &it.Latitude, &it.Longitude, &it.InPlacesToVisit); err != nil {
			return nil, err
		}
		it.ID = uuid.UUID(id.Bytes)
		it.Date = domain.DateOnly(date.Time)
		items = append(items, it)
	}
	return items, rows.Err()
}

// reconcileChildren diffs the aggregate's child collections against the
// stored rows: surviving rows are updated in place (keeping their stable row
// identity — clients cache invite ids), new rows are inserted, and rows no
// longer in the aggregate are deleted. Never delete-all/insert-all.
func reconcileChildren(ctx context.Context, tx pgx.Tx, trip domain.Trip) error {
	if err := reconcileMembers(ctx, tx, trip); err != nil {
		return err
	}
	if err := reconcileInvites(ctx, tx, trip); err != nil {
		return err
	}
	return reconcileItems(ctx, tx, trip)
}

func reconcileMembers(ctx context.Context, tx pgx.Tx, trip domain.Trip) error {
	const upsert = `
		INSERT INTO trip_members (trip_id, user_id, role, position)
		VALUES (@trip_id, @user_id, @role, @position)
		ON CONFLICT (trip_id, user_id)
		DO UPDATE SET role = EXCLUDED.role, position = EXCLUDED.position`

	keep := make([]string, 0, len(trip.Members))
	for i, m := range trip.Members {
		keep = append(keep, m.UserID.String())
		_, err := tx.Exec(ctx, upsert, pgx.NamedArgs{
			"trip_id":  trip.ID,
			"user_id":  m.UserID,
			"role":     string(m.Role),
			"position": i,
		})
		if err != nil {
			return err
		}
	}

	const prune = `
		DELETE FROM trip_members
		WHERE trip_id = @trip_id AND NOT (user_id = ANY(@keep::uuid[]))`
	_, err := tx.Exec(ctx, prune, pgx.NamedArgs{"trip_id": trip.ID, "keep": keep})
	return err
}

func reconcileInvites(ctx context.Context, tx pgx.Tx, trip domain.Trip) error {
	const upsert = `
		INSERT INTO trip_invites (trip_id, email, role, status, created_at)
		VALUES (@trip_id, lower(@email), @role, @status, @created_at)
		ON CONFLICT (trip_id, email)
		DO UPDATE SET role = EXCLUDED.role, status = EXCLUDED.status, created_at = EXCLUDED.created_at`

	keep := make([]string, 0, len(trip.Invites))
	for _, inv := range trip.Invites {
		keep = append(keep, domain.NormalizeEmail(inv.Email))
		_, err := tx.Exec(ctx, upsert, pgx.NamedArgs{
			"trip_id":    trip.ID,
			"email":      inv.Email,
			"role":       string(inv.Role),
			"status":     string(inv.Status),
			"created_at": inv.CreatedAt,
		})
		if err != nil {
			return err
		}
	}

	const prune = `
		DELETE FROM trip_invites
		WHERE trip_id = @trip_id AND NOT (email = ANY(@keep))`
	_, err := tx.Exec(ctx, prune, pgx.NamedArgs{"trip_id": trip.ID, "keep": keep})
	return err
}

func reconcileItems(ctx context.Context, tx pgx.Tx, trip domain.Trip) error {
	const upsert = `
		INSERT INTO itinerary_items
			(id, trip_id, place_name, item_date, notes, latitude, longitude, in_places_to_visit, position)
		VALUES
			(@id, @trip_id, @place_name, @item_date, @notes, @latitude, @longitude, @in_places_to_visit, @position)
		ON CONFLICT (id)
		DO UPDATE SET
			place_name         = EXCLUDED.place_name,
			item_date          = EXCLUDED.item_date,
			notes              = EXCLUDED.notes,
			latitude           = EXCLUDED.latitude,
			longitude          = EXCLUDED.longitude,
			in_places_to_visit = EXCLUDED.in_places_to_visit,
			position           = EXCLUDED.position`

	keep := make([]string, 0, len(trip.Items))
	for i, it := range trip.Items {
		keep = append(keep, it.ID.String())
		_, err := tx.Exec(ctx, upsert, pgx.NamedArgs{
			"id":                 it.ID,
			"trip_id":            trip.ID,
			"place_name":         it.PlaceName,
			"item_date":          it.Date,
			"notes":              it.Notes,
			"latitude":           it.Latitude,
			"longitude":          it.Longitude,
			"in_places_to_visit": it.InPlacesToVisit,
			"position":           i,
		})
		if err != nil {
			return err
		}
	}

	const prune = `
		DELETE FROM itinerary_items
		WHERE trip_id = @trip_id AND NOT (id = ANY(@keep::uuid[]))`
	_, err := tx.Exec(ctx, prune, pgx.NamedArgs{"trip_id": trip.ID, "keep": keep})
	return err
}
