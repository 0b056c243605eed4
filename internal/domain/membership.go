package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// TripMembership links a user to a trip with a role.
// Membership order is preserved as stored, so member lists render stably.
type TripMembership struct {
	UserID uuid.UUID
	Role   Role
}

// TripInvite is an email-addressed grant of a role on a trip.
// It is keyed by email rather than user id because the invitee may not have
// an account yet; a PENDING invite becomes a membership on acceptance or when
// a matching account is registered.
type TripInvite struct {
	Email     string
	Role      Role
	Status    InviteStatus
	CreatedAt time.Time
}

// NormalizeEmail lower-cases and trims an email so invites can be compared
// case-insensitively. Invite identity is always the normalized form.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
