package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoglund/wayfarer/backend/internal/domain"
	"github.com/skoglund/wayfarer/backend/internal/repo"
	"github.com/skoglund/wayfarer/backend/internal/service"
)

// mockTripRepo is a hand-written test double for repo.TripRepo.
// Each method is a function field — set only the ones your test needs.
// This is idiomatic Go: no mock generation library required for simple cases.
type mockTripRepo struct {
	create                   func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	getByID                  func(ctx context.Context, id uuid.UUID) (domain.Trip, error)
	listByMemberPaged        func(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	save                     func(ctx context.Context, trip domain.Trip) (domain.Trip, error)
	delete                   func(ctx context.Context, id uuid.UUID) error
	listByPendingInviteEmail func(ctx context.Context, email string) ([]domain.Trip, error)
}

func (m *mockTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.create(ctx, trip)
}
func (m *mockTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	return m.getByID(ctx, id)
}
func (m *mockTripRepo) ListByMemberPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	return m.listByMemberPaged(ctx, userID, p)
}
func (m *mockTripRepo) Save(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	return m.save(ctx, trip)
}
func (m *mockTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockTripRepo) ListByPendingInviteEmail(ctx context.Context, email string) ([]domain.Trip, error) {
	return m.listByPendingInviteEmail(ctx, email)
}

// compile-time check: mockTripRepo must satisfy repo.TripRepo.
var _ repo.TripRepo = (*mockTripRepo)(nil)

// ---- helpers ---------------------------------------------------------------

var (
	tripStart = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	tripEnd   = time.Date(2026, 6, 5, 0, 0, 0, 0, time.UTC)
)

func validDetails() service.TripDetails {
	return service.TripDetails{
		Name:       "Coastal Loop",
		StartDate:  tripStart,
		EndDate:    tripEnd,
		Visibility: domain.VisibilityPrivate,
	}
}

// newTrip builds a persisted-looking trip owned by ownerID.
func newTrip(t *testing.T, ownerID uuid.UUID, vis domain.Visibility) domain.Trip {
	t.Helper()
	trip, err := domain.NewTrip(ownerID, "Coastal Loop", tripStart, tripEnd, vis)
	require.NoError(t, err)
	trip.ID = uuid.New()
	return trip
}

// withMember adds a member with the given role via the invite flow.
func withMember(t *testing.T, trip domain.Trip, userID uuid.UUID, role domain.Role) domain.Trip {
	t.Helper()
	email := userID.String() + "@example.com"
	next, err := trip.InviteMember(trip.OwnerID, email, role)
	require.NoError(t, err)
	next, err = next.RespondToInvite(email, userID, true)
	require.NoError(t, err)
	return next
}

// repoFor returns a repo that serves trip on GetByID and echoes Save.
func repoFor(trip domain.Trip) *mockTripRepo {
	return &mockTripRepo{
		getByID: func(_ context.Context, id uuid.UUID) (domain.Trip, error) {
			if id != trip.ID {
				return domain.Trip{}, domain.ErrNotFound
			}
			return trip, nil
		},
		save: func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
	}
}

func echoRepo() *mockTripRepo {
	return &mockTripRepo{
		create: func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
		save:   func(_ context.Context, t domain.Trip) (domain.Trip, error) { return t, nil },
	}
}

// ---- Create tests ----------------------------------------------------------

func TestTripService_Create_Valid(t *testing.T) {
	svc := service.NewTripService(echoRepo())
	owner := uuid.New()

	got, err := svc.Create(context.Background(), owner, validDetails())

	require.NoError(t, err)
	assert.Equal(t, "Coastal Loop", got.Name)
	assert.Equal(t, owner, got.OwnerID)
	require.Len(t, got.Members, 1)
	assert.Equal(t, domain.RoleOwner, got.Members[0].Role)
}

func TestTripService_Create_MissingName(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	d := validDetails()
	d.Name = "   " // whitespace-only should be treated as empty

	_, err := svc.Create(context.Background(), uuid.New(), d)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_EndBeforeStart(t *testing.T) {
	svc := service.NewTripService(echoRepo())

	d := validDetails()
	d.EndDate = d.StartDate.AddDate(0, 0, -1)

	_, err := svc.Create(context.Background(), uuid.New(), d)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestTripService_Create_RepoError(t *testing.T) {
	repoErr := errors.New("db exploded")
	r := &mockTripRepo{
		create: func(_ context.Context, _ domain.Trip) (domain.Trip, error) {
			return domain.Trip{}, repoErr
		},
	}
	svc := service.NewTripService(r)

	_, err := svc.Create(context.Background(), uuid.New(), validDetails())

	// The service should propagate repo errors unchanged.
	assert.ErrorIs(t, err, repoErr)
}

// ---- read access -----------------------------------------------------------

func TestTripService_GetByID_Member(t *testing.T) {
	owner := uuid.New()
	trip := newTrip(t, owner, domain.VisibilityPrivate)
	svc := service.NewTripService(repoFor(trip))

	got, err := svc.GetByID(context.Background(), owner, trip.ID)

	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
}

func TestTripService_GetByID_NonMemberPrivate(t *testing.T) {
	trip := newTrip(t, uuid.New(), domain.VisibilityPrivate)
	svc := service.NewTripService(repoFor(trip))

	_, err := svc.GetByID(context.Background(), uuid.New(), trip.ID)

	// Private trips must look nonexistent to outsiders, never forbidden.
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.NotErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_GetByID_NonMemberPublic(t *testing.T) {
	trip := newTrip(t, uuid.New(), domain.VisibilityPublic)
	svc := service.NewTripService(repoFor(trip))

	got, err := svc.GetByID(context.Background(), uuid.New(), trip.ID)

	require.NoError(t, err)
	assert.Equal(t, trip.ID, got.ID)
}

// ---- List ------------------------------------------------------------------

func TestTripService_List_Empty(t *testing.T) {
	r := &mockTripRepo{
		listByMemberPaged: func(_ context.Context, _ uuid.UUID, _ domain.PaginationParams) ([]domain.Trip, int64, error) {
			return nil, 0, nil
		},
	}
	svc := service.NewTripService(r)

	got, total, err := svc.List(context.Background(), uuid.New(), domain.PaginationParams{Page: 1, Limit: 20})

	require.NoError(t, err)
	assert.Zero(t, total)
	// Should return an empty slice, not nil — callers can safely range over it.
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTripService_List_PassesPagination(t *testing.T) {
	var gotParams domain.PaginationParams
	r := &mockTripRepo{
		listByMemberPaged: func(_ context.Context, _ uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
			gotParams = p
			return []domain.Trip{{}, {}}, 42, nil
		},
	}
	svc := service.NewTripService(r)

	got, total, err := svc.List(context.Background(), uuid.New(), domain.PaginationParams{Page: 3, Limit: 10})

	require.NoError(t, err)
	assert.Len(t, got, 2)
	assert.Equal(t, int64(42), total)
	assert.Equal(t, domain.PaginationParams{Page: 3, Limit: 10}, gotParams)
}

// ---- write access ----------------------------------------------------------

func TestTripService_UpdateDetails_Editor(t *testing.T) {
	editor := uuid.New()
	trip := withMember(t, newTrip(t, uuid.New(), domain.VisibilityPrivate), editor, domain.RoleEditor)
	svc := service.NewTripService(repoFor(trip))

	d := validDetails()
	d.Name = "Renamed Loop"

	got, err := svc.UpdateDetails(context.Background(), editor, trip.ID, d)

	require.NoError(t, err)
	assert.Equal(t, "Renamed Loop", got.Name)
}

func TestTripService_UpdateDetails_ViewerForbidden(t *testing.T) {
	viewer := uuid.New()
	trip := withMember(t, newTrip(t, uuid.New(), domain.VisibilityPrivate), viewer, domain.RoleViewer)
	svc := service.NewTripService(repoFor(trip))

	_, err := svc.UpdateDetails(context.Background(), viewer, trip.ID, validDetails())

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestTripService_UpdateDetails_NonMemberNotFound(t *testing.T) {
	trip := newTrip(t, uuid.New(), domain.VisibilityPrivate)
	svc := service.NewTripService(repoFor(trip))

	_, err := svc.UpdateDetails(context.Background(), uuid.New(), trip.ID, validDetails())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTripService_Delete_Owner(t *testing.T) {
	owner := uuid.New()
	trip := newTrip(t, owner, domain.VisibilityPrivate)
	r := repoFor(trip)
	deleted := false
	r.delete = func(_ context.Context, id uuid.UUID) error {
		deleted = true
		assert.Equal(t, trip.ID, id)
		return nil
	}
	svc := service.NewTripService(r)

	err := svc.Delete(context.Background(), owner, trip.ID)

	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestTripService_Delete_EditorForbidden(t *testing.T) {
	editor := uuid.New()
	trip := withMember(t, newTrip(t, uuid.New(), domain.VisibilityPrivate), editor, domain.RoleEditor)
	svc := service.NewTripService(repoFor(trip))

	err := svc.Delete(context.Background(), editor, trip.ID)

	assert.ErrorIs(t, err, domain.ErrForbidden)
}
