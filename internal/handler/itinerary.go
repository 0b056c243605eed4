package handler

import "net/http"

// GetItinerary handles GET /trips/{tripID}/itinerary. Returns the derived
// day/backlog view; the flat item list itself never goes over the wire.
func (s *Server) GetItinerary(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}

	trip, err := s.itinerary.Get(r.Context(), actor.UserID, tripID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, itineraryToResponse(trip))
}

// AddItineraryItem handles POST /trips/{tripID}/itinerary. Items without a
// date land in Places to Visit; new items always go to the end of their
// container.
func (s *Server) AddItineraryItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	var req ItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.itinerary.AddItem(r.Context(), actor.UserID, tripID, itemFromRequest(req))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusCreated, itineraryToResponse(trip))
}

// UpdateItineraryItem handles PUT /trips/{tripID}/itinerary/{itemID}.
// Editable fields only; the item keeps its position in the list.
func (s *Server) UpdateItineraryItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	itemID, ok := s.pathUUID(w, r, "itemID", "item id")
	if !ok {
		return
	}
	var req ItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.itinerary.UpdateItem(r.Context(), actor.UserID, tripID, itemID, itemFromRequest(req))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, itineraryToResponse(trip))
}

// RemoveItineraryItem handles DELETE /trips/{tripID}/itinerary/{itemID}.
func (s *Server) RemoveItineraryItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	itemID, ok := s.pathUUID(w, r, "itemID", "item id")
	if !ok {
		return
	}

	trip, err := s.itinerary.RemoveItem(r.Context(), actor.UserID, tripID, itemID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, itineraryToResponse(trip))
}

// MoveItineraryItem handles POST /trips/{tripID}/itinerary/{itemID}/move.
// A nil targetDayNumber means Places to Visit. At most one of beforeItemId
// and afterItemId may be set; with neither, the item goes to the end of the
// target container.
func (s *Server) MoveItineraryItem(w http.ResponseWriter, r *http.Request) {
	actor, ok := s.identity(w, r)
	if !ok {
		return
	}
	tripID, ok := s.pathUUID(w, r, "tripID", "trip id")
	if !ok {
		return
	}
	itemID, ok := s.pathUUID(w, r, "itemID", "item id")
	if !ok {
		return
	}
	var req MoveRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	trip, err := s.itinerary.Move(r.Context(), actor.UserID, tripID, itemID,
		req.TargetDayNumber, req.BeforeItemID, req.AfterItemID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeJSON(w, r, http.StatusOK, itineraryToResponse(trip))
}
