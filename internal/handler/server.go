// Package handler implements the HTTP handlers for the Wayfarer API.
// All handlers are methods on Server. Methods are split into resource-specific
// files (health.go, trip.go, itinerary.go, membership.go) but all share the
// same Server struct so they can access its dependencies.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/skoglund/wayfarer/backend/internal/domain"
	"github.com/skoglund/wayfarer/backend/internal/middleware"
	"github.com/skoglund/wayfarer/backend/internal/service"
)

// TripServicer defines the trip-level business operations the handlers depend
// on. Defining the interface here (in the consumer package) follows the Go
// convention: "accept interfaces, return concrete types". It lets handler
// tests inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, ownerID uuid.UUID, d service.TripDetails) (domain.Trip, error)
	GetByID(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, actorID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)
	UpdateDetails(ctx context.Context, actorID, tripID uuid.UUID, d service.TripDetails) (domain.Trip, error)
	Delete(ctx context.Context, actorID, tripID uuid.UUID) error
}

// ItineraryServicer defines the itinerary operations the handlers depend on.
type ItineraryServicer interface {
	Get(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error)
	AddItem(ctx context.Context, actorID, tripID uuid.UUID, item domain.ItineraryItem) (domain.Trip, error)
	UpdateItem(ctx context.Context, actorID, tripID, itemID uuid.UUID, item domain.ItineraryItem) (domain.Trip, error)
	RemoveItem(ctx context.Context, actorID, tripID, itemID uuid.UUID) (domain.Trip, error)
	Move(ctx context.Context, actorID, tripID, itemID uuid.UUID, targetDay *int, beforeID, afterID *uuid.UUID) (domain.Trip, error)
}

// MembershipServicer defines the membership and invite operations the
// handlers depend on.
type MembershipServicer interface {
	Get(ctx context.Context, actorID, tripID uuid.UUID) (domain.Trip, error)
	Invite(ctx context.Context, actorID, tripID uuid.UUID, email string, role domain.Role) (domain.Trip, error)
	Respond(ctx context.Context, actor domain.Identity, tripID uuid.UUID, accept bool) (domain.Trip, error)
	ChangeMemberRole(ctx context.Context, actorID, tripID, targetID uuid.UUID, role domain.Role) (domain.Trip, error)
	ChangeInviteRole(ctx context.Context, actorID, tripID uuid.UUID, email string, role domain.Role) (domain.Trip, error)
	RemoveInvite(ctx context.Context, actorID, tripID uuid.UUID, email string) (domain.Trip, error)
	RevokeInvite(ctx context.Context, actorID, tripID uuid.UUID, email string) (domain.Trip, error)
	RemoveMember(ctx context.Context, actorID, tripID, targetID uuid.UUID) (domain.Trip, error)
	AddOwner(ctx context.Context, actorID, tripID, targetID uuid.UUID) (domain.Trip, error)
	Leave(ctx context.Context, actorID, tripID uuid.UUID, successorID *uuid.UUID) (domain.Trip, error)
	LinkPendingInvites(ctx context.Context, user domain.Identity) (int, error)
}

// Server holds the dependencies shared by all API endpoints.
type Server struct {
	log       *slog.Logger
	trips     TripServicer
	itinerary ItineraryServicer
	members   MembershipServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(log *slog.Logger, trips TripServicer, itinerary ItineraryServicer, members MembershipServicer) *Server {
	return &Server{log: log, trips: trips, itinerary: itinerary, members: members}
}

// Router assembles the API route table. The auth middleware guards everything
// except the health check, which load balancers probe without credentials.
func (s *Server) Router(auth func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)

	r.Group(func(r chi.Router) {
		r.Use(auth)

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", s.CreateTrip)
			r.Get("/", s.ListTrips)

			r.Route("/{tripID}", func(r chi.Router) {
				r.Get("/", s.GetTrip)
				r.Put("/", s.UpdateTrip)
				r.Delete("/", s.DeleteTrip)

				r.Route("/itinerary", func(r chi.Router) {
					r.Get("/", s.GetItinerary)
					r.Post("/", s.AddItineraryItem)
					r.Put("/{itemID}", s.UpdateItineraryItem)
					r.Delete("/{itemID}", s.RemoveItineraryItem)
					r.Post("/{itemID}/move", s.MoveItineraryItem)
				})

				r.Get("/members", s.GetMembers)
				r.Put("/members/{userID}", s.ChangeMemberRole)
				r.Delete("/members/{userID}", s.RemoveMember)

				r.Route("/invites", func(r chi.Router) {
					r.Post("/", s.CreateInvite)
					r.Post("/respond", s.RespondToInvite)
					r.Put("/{email}", s.UpdateInvite)
					r.Delete("/{email}", s.RemoveInvite)
				})

				r.Post("/owners", s.AddOwner)
				r.Post("/leave", s.LeaveTrip)
			})
		})

		r.Post("/registrations/link-invites", s.LinkInvites)
	})

	return r
}

// identity extracts the authenticated identity placed in the context by the
// auth middleware. Writes 401 and returns false when it is missing, which
// only happens if a route was wired outside the auth group by mistake.
func (s *Server) identity(w http.ResponseWriter, r *http.Request) (domain.Identity, bool) {
	id, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusUnauthorized)
	}
	return id, ok
}

// pathUUID parses a uuid path parameter. Writes a 400 with a message naming
// the parameter and returns false when the value is malformed.
func (s *Server) pathUUID(w http.ResponseWriter, r *http.Request, param, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON writes v as a JSON response with the given status.
func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.ErrorContext(r.Context(), "write response", "error", err)
	}
}

// decodeJSON decodes the request body into dst. Writes the appropriate error
// response and returns false on failure: 413 when the body-size middleware
// cut the read short, 400 otherwise.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return false
		}
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: "invalid request body"})
		return false
	}
	return true
}
