package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// GetMembers handles GET /trips/{tripID}/members. Returns the memberships
// and the full invite list with statuses.
func (s *Server) GetMembers(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}

	trip, err := s.members.Get(r.Context(), actor.UserID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// CreateInvite handles POST /trips/{tripID}/invites. Owner only.
func (s *Server) CreateInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	var req InviteRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	trip, err := s.members.Invite(r.Context(), actor.UserID, tripID, string(req.Email), role)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, membersToResponse(trip))
}

// RespondToInvite handles POST /trips/{tripID}/invites/respond. The caller
// accepts or declines their own pending invite, matched against the email in
// their token.
func (s *Server) RespondToInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	var req RespondRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.members.Respond(r.Context(), actor, tripID, req.Accept)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// UpdateInvite handles PUT /trips/{tripID}/invites/{email}. Owner only.
// A body with a role changes the invite's role; {"status":"REVOKED"} cancels
// a pending invite.
func (s *Server) UpdateInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	email := chi.URLParam(r, "email")
	var req InviteUpdateRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	var (
		trip domain.Trip
		err  error
	)
	switch {
	case req.Status != nil:
		if domain.InviteStatus(strings.ToUpper(*req.Status)) != domain.InviteRevoked {
			s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: "status can only be set to REVOKED"})
			return
		}
		trip, err = s.members.RevokeInvite(r.Context(), actor.UserID, tripID, email)
	case req.Role != nil:
		var role domain.Role
		role, err = parseRole(*req.Role)
		if err != nil {
			s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: err.Error()})
			return
		}
		trip, err = s.members.ChangeInviteRole(r.Context(), actor.UserID, tripID, email, role)
	default:
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: "role or status is required"})
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// RemoveInvite handles DELETE /trips/{tripID}/invites/{email}. Owner only;
// accepted invites cannot be removed.
func (s *Server) RemoveInvite(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	email := chi.URLParam(r, "email")

	trip, err := s.members.RemoveInvite(r.Context(), actor.UserID, tripID, email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// ChangeMemberRole handles PUT /trips/{tripID}/members/{userID}. Owner only.
func (s *Server) ChangeMemberRole(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	userID, ok := s.pathUUID(w, r, "userID", "user id")
	if !ok {
		return
	}
	var req MemberRoleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	role, err := parseRole(req.Role)
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	trip, err := s.members.ChangeMemberRole(r.Context(), actor.UserID, tripID, userID, role)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// RemoveMember handles DELETE /trips/{tripID}/members/{userID}. Owner only;
// owners cannot remove other owners.
func (s *Server) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	userID, ok := s.pathUUID(w, r, "userID", "user id")
	if !ok {
		return
	}

	trip, err := s.members.RemoveMember(r.Context(), actor.UserID, tripID, userID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// AddOwner handles POST /trips/{tripID}/owners. Promotes an existing member
// to OWNER; a trip can have several owners.
func (s *Server) AddOwner(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	var req OwnerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.members.AddOwner(r.Context(), actor.UserID, tripID, req.UserID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, membersToResponse(trip))
}

// LeaveTrip handles POST /trips/{tripID}/leave. A sole owner must name a
// successor, who is promoted to OWNER and becomes the primary owner.
func (s *Server) LeaveTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	req := LeaveRequest{}
	// The body is optional: leaving without a successor needs none.
	if r.ContentLength != 0 {
		if !s.decodeJSON(w, r, &req) {
			return
		}
	}

	if _, err := s.members.Leave(r.Context(), actor.UserID, tripID, req.SuccessorID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// LinkInvites handles POST /registrations/link-invites. Called once when an
// account is created: every pending invite matching the account email is
// accepted, creating the promised memberships.
func (s *Server) LinkInvites(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}

	linked, err := s.members.LinkPendingInvites(r.Context(), actor)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, LinkInvitesResponse{Linked: linked})
}
