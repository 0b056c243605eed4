package domain_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// addMember joins userID to the trip with the given role via the invite flow,
// so the aggregate stays valid at every step.
func addMember(t *testing.T, trip domain.Trip, userID uuid.UUID, email string, role domain.Role) domain.Trip {
	t.Helper()
	trip, err := trip.InviteMember(trip.OwnerID, email, role)
	require.NoError(t, err)
	trip, err = trip.RespondToInvite(email, userID, true)
	require.NoError(t, err)
	return trip
}

// ---- invites ---------------------------------------------------------------

func TestInviteMember_CreatesPendingInvite(t *testing.T) {
	trip := newTrip(t)

	trip, err := trip.InviteMember(trip.OwnerID, "Kari@Example.COM", domain.RoleEditor)

	require.NoError(t, err)
	require.Len(t, trip.Invites, 1)
	assert.Equal(t, "kari@example.com", trip.Invites[0].Email, "invite email is stored normalized")
	assert.Equal(t, domain.InvitePending, trip.Invites[0].Status)
	assert.Equal(t, domain.RoleEditor, trip.Invites[0].Role)
}

func TestInviteMember_RequiresOwner(t *testing.T) {
	editor := uuid.New()
	trip := addMember(t, newTrip(t), editor, "editor@example.com", domain.RoleEditor)

	_, err := trip.InviteMember(editor, "someone@example.com", domain.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestInviteMember_ActiveInviteBlocksDuplicate(t *testing.T) {
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)

	// Same email, different casing: still a duplicate.
	_, err = trip.InviteMember(trip.OwnerID, "KARI@example.com", domain.RoleEditor)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInviteMember_ReplacesDeclinedInvite(t *testing.T) {
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)
	trip, err = trip.RespondToInvite("kari@example.com", uuid.New(), false)
	require.NoError(t, err)

	trip, err = trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleEditor)

	require.NoError(t, err)
	require.Len(t, trip.Invites, 1)
	assert.Equal(t, domain.InvitePending, trip.Invites[0].Status)
	assert.Equal(t, domain.RoleEditor, trip.Invites[0].Role)
}

func TestRespondToInvite_AcceptCreatesMembership(t *testing.T) {
	userID := uuid.New()
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleEditor)
	require.NoError(t, err)

	trip, err = trip.RespondToInvite("KARI@example.com", userID, true)

	require.NoError(t, err)
	assert.Equal(t, domain.InviteAccepted, trip.Invites[0].Status)
	role, ok := trip.RoleOf(userID)
	require.True(t, ok)
	assert.Equal(t, domain.RoleEditor, role)
}

func TestRespondToInvite_AcceptIsIdempotentForExistingMember(t *testing.T) {
	userID := uuid.New()
	trip := addMember(t, newTrip(t), userID, "kari@example.com", domain.RoleEditor)

	// A second invite cannot be created while one is ACCEPTED, and accepting
	// again must not duplicate the membership.
	_, err := trip.RespondToInvite("kari@example.com", userID, true)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Len(t, trip.Members, 2)
}

func TestRespondToInvite_DeclineLeavesNoMembership(t *testing.T) {
	userID := uuid.New()
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)

	trip, err = trip.RespondToInvite("kari@example.com", userID, false)

	require.NoError(t, err)
	assert.Equal(t, domain.InviteDeclined, trip.Invites[0].Status)
	_, ok := trip.RoleOf(userID)
	assert.False(t, ok)
}

func TestRespondToInvite_UnknownEmail(t *testing.T) {
	_, err := newTrip(t).RespondToInvite("nobody@example.com", uuid.New(), true)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveInvite_NeverRemovesAccepted(t *testing.T) {
	trip := addMember(t, newTrip(t), uuid.New(), "kari@example.com", domain.RoleViewer)

	_, err := trip.RemoveInvite(trip.OwnerID, "kari@example.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemoveInvite_RemovesPendingAndDeclined(t *testing.T) {
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)

	trip, err = trip.RemoveInvite(trip.OwnerID, "kari@example.com")
	require.NoError(t, err)
	assert.Empty(t, trip.Invites)
}

func TestRevokeInvite_OnlyPending(t *testing.T) {
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)

	trip, err = trip.RevokeInvite(trip.OwnerID, "kari@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.InviteRevoked, trip.Invites[0].Status)

	_, err = trip.RevokeInvite(trip.OwnerID, "kari@example.com")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestInviteMember_ReplacesRevokedInvite(t *testing.T) {
	trip := newTrip(t)
	trip, err := trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)
	trip, err = trip.RevokeInvite(trip.OwnerID, "kari@example.com")
	require.NoError(t, err)

	trip, err = trip.InviteMember(trip.OwnerID, "kari@example.com", domain.RoleViewer)
	require.NoError(t, err)
	assert.Equal(t, domain.InvitePending, trip.Invites[0].Status)
}

// ---- roles and removal -----------------------------------------------------

func TestChangeMemberRole_DemotingPrimaryOwnerRejected(t *testing.T) {
	trip := newTrip(t)

	_, err := trip.ChangeMemberRole(trip.OwnerID, trip.OwnerID, domain.RoleViewer)
	assert.ErrorIs(t, err, domain.ErrInvariant)
}

func TestAddOwner_PromotesMember(t *testing.T) {
	editor := uuid.New()
	trip := addMember(t, newTrip(t), editor, "editor@example.com", domain.RoleEditor)

	trip, err := trip.AddOwner(trip.OwnerID, editor)

	require.NoError(t, err)
	role, _ := trip.RoleOf(editor)
	assert.Equal(t, domain.RoleOwner, role)
}

func TestAddOwner_RequiresOwner(t *testing.T) {
	editor := uuid.New()
	trip := addMember(t, newTrip(t), editor, "editor@example.com", domain.RoleEditor)

	_, err := trip.AddOwner(editor, editor)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestRemoveMember_OwnerRemovesViewer(t *testing.T) {
	viewer := uuid.New()
	trip := addMember(t, newTrip(t), viewer, "viewer@example.com", domain.RoleViewer)

	trip, err := trip.RemoveMember(trip.OwnerID, viewer)

	require.NoError(t, err)
	_, ok := trip.RoleOf(viewer)
	assert.False(t, ok)
}

func TestRemoveMember_CannotRemoveAnotherOwner(t *testing.T) {
	second := uuid.New()
	trip := addMember(t, newTrip(t), second, "second@example.com", domain.RoleEditor)
	trip, err := trip.AddOwner(trip.OwnerID, second)
	require.NoError(t, err)

	_, err = trip.RemoveMember(trip.OwnerID, second)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestRemoveMember_PrimaryOwnerCannotBeRemoved(t *testing.T) {
	second := uuid.New()
	trip := addMember(t, newTrip(t), second, "second@example.com", domain.RoleEditor)
	trip, err := trip.AddOwner(trip.OwnerID, second)
	require.NoError(t, err)

	// Even the primary owner removing themself must transfer first.
	_, err = trip.RemoveMember(trip.OwnerID, trip.OwnerID)
	assert.ErrorIs(t, err, domain.ErrInvariant)
}

func TestRemoveMember_SecondaryOwnerRemovesSelf(t *testing.T) {
	second := uuid.New()
	trip := addMember(t, newTrip(t), second, "second@example.com", domain.RoleEditor)
	trip, err := trip.AddOwner(trip.OwnerID, second)
	require.NoError(t, err)

	trip, err = trip.RemoveMember(second, second)

	require.NoError(t, err)
	_, ok := trip.RoleOf(second)
	assert.False(t, ok)
}

func TestRemoveMember_RequiresOwner(t *testing.T) {
	viewer := uuid.New()
	trip := addMember(t, newTrip(t), viewer, "viewer@example.com", domain.RoleViewer)

	_, err := trip.RemoveMember(viewer, viewer)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// ---- leaving ---------------------------------------------------------------

func TestLeaveTrip_NonOwnerJustLeaves(t *testing.T) {
	viewer := uuid.New()
	trip := addMember(t, newTrip(t), viewer, "viewer@example.com", domain.RoleViewer)

	trip, err := trip.LeaveTrip(viewer, nil)

	require.NoError(t, err)
	_, ok := trip.RoleOf(viewer)
	assert.False(t, ok)
}

func TestLeaveTrip_LastOwnerNeedsSuccessor(t *testing.T) {
	trip := newTrip(t)

	_, err := trip.LeaveTrip(trip.OwnerID, nil)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLeaveTrip_SoleOwnerHandsOffToEditor(t *testing.T) {
	editor := uuid.New()
	trip := addMember(t, newTrip(t), editor, "editor@example.com", domain.RoleEditor)
	formerOwner := trip.OwnerID

	trip, err := trip.LeaveTrip(trip.OwnerID, &editor)

	require.NoError(t, err)
	assert.Equal(t, editor, trip.OwnerID, "successor becomes the primary owner")
	role, ok := trip.RoleOf(editor)
	require.True(t, ok)
	assert.Equal(t, domain.RoleOwner, role)
	_, ok = trip.RoleOf(formerOwner)
	assert.False(t, ok, "the leaving owner is removed from memberships")
}

func TestLeaveTrip_SuccessorMustBeMember(t *testing.T) {
	trip := newTrip(t)
	stranger := uuid.New()

	_, err := trip.LeaveTrip(trip.OwnerID, &stranger)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLeaveTrip_SecondaryOwnerLeavesWithoutSuccessor(t *testing.T) {
	second := uuid.New()
	trip := addMember(t, newTrip(t), second, "second@example.com", domain.RoleEditor)
	trip, err := trip.AddOwner(trip.OwnerID, second)
	require.NoError(t, err)

	trip, err = trip.LeaveTrip(second, nil)

	require.NoError(t, err)
	_, ok := trip.RoleOf(second)
	assert.False(t, ok)
	assert.Equal(t, 1, len(trip.Members))
}

func TestLeaveTrip_NotAMember(t *testing.T) {
	_, err := newTrip(t).LeaveTrip(uuid.New(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
