package handler

import (
	"net/http"
	"strconv"

	"github.com/skoglund/wayfarer/backend/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	var req TripRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	details, err := detailsFromRequest(req)
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	created, err := s.trips.Create(r.Context(), actor.UserID, details)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, tripToResponse(created))
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20,
// max=100). Only trips the caller is a member of are listed.
func (s *Server) ListTrips(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	params := domain.NewPaginationParams(queryInt(r, "page"), queryInt(r, "limit"))

	trips, total, err := s.trips.List(r.Context(), actor.UserID, params)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	data := make([]Trip, len(trips))
	for i, t := range trips {
		data[i] = tripToResponse(t)
	}
	s.writeJSON(w, r, http.StatusOK, TripList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: total,
		},
	})
}

// GetTrip handles GET /trips/{tripID}.
func (s *Server) GetTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}

	trip, err := s.trips.GetByID(r.Context(), actor.UserID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tripToResponse(trip))
}

// UpdateTrip handles PUT /trips/{tripID}. Shrinking the date range moves
// newly out-of-range items to Places to Visit in the same request.
func (s *Server) UpdateTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	var req TripRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	details, err := detailsFromRequest(req)
	if err != nil {
		s.writeJSON(w, r, http.StatusBadRequest, errorBody{Message: err.Error()})
		return
	}

	updated, err := s.trips.UpdateDetails(r.Context(), actor.UserID, tripID, details)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, tripToResponse(updated))
}

// DeleteTrip handles DELETE /trips/{tripID}.
func (s *Server) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}

	if err := s.trips.Delete(r.Context(), actor.UserID, tripID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// queryInt parses an optional integer query parameter. Malformed values are
// ignored, falling back to the pagination defaults.
func queryInt(r *http.Request, key string) *int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil
	}
	return &n
}
