package domain

import "github.com/google/uuid"

// Identity is the authenticated principal attached to a request: the user id
// plus the account email used to match invites case-insensitively.
type Identity struct {
	UserID uuid.UUID
	Email  string
}
