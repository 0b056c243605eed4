package handler

import (
	"errors"
	"strings"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/google/uuid"

	"github.com/skoglund/wayfarer/backend/internal/domain"
	"github.com/skoglund/wayfarer/backend/internal/service"
)

// placesToVisitLabel is the display label of the backlog container in the
// itinerary view.
const placesToVisitLabel = "Places to Visit"

// Wire types for the JSON API. Date-only fields use openapi_types.Date so
// they serialize as "2006-01-02" instead of full RFC 3339 timestamps.

type HealthResponse struct {
	Status string `json:"status"`
}

type errorBody struct {
	Message string `json:"message"`
}

type TripRequest struct {
	Name       string             `json:"name"`
	StartDate  openapi_types.Date `json:"startDate"`
	EndDate    openapi_types.Date `json:"endDate"`
	Visibility *string            `json:"visibility,omitempty"`
}

type Trip struct {
	ID         uuid.UUID          `json:"id"`
	OwnerID    uuid.UUID          `json:"ownerId"`
	Name       string             `json:"name"`
	StartDate  openapi_types.Date `json:"startDate"`
	EndDate    openapi_types.Date `json:"endDate"`
	Visibility string             `json:"visibility"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type ItemRequest struct {
	PlaceName string              `json:"placeName"`
	Date      *openapi_types.Date `json:"date,omitempty"`
	Notes     string              `json:"notes,omitempty"`
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
}

type Item struct {
	ID              uuid.UUID           `json:"id"`
	PlaceName       string              `json:"placeName"`
	Date            *openapi_types.Date `json:"date,omitempty"`
	Notes           string              `json:"notes,omitempty"`
	Latitude        float64             `json:"latitude"`
	Longitude       float64             `json:"longitude"`
	InPlacesToVisit bool                `json:"inPlacesToVisit"`
}

type DayView struct {
	DayNumber int                `json:"dayNumber"`
	Date      openapi_types.Date `json:"date"`
	Items     []Item             `json:"items"`
}

type BacklogView struct {
	Label string `json:"label"`
	Items []Item `json:"items"`
}

type ItineraryView struct {
	Days          []DayView   `json:"days"`
	PlacesToVisit BacklogView `json:"placesToVisit"`
}

type MoveRequest struct {
	TargetDayNumber *int       `json:"targetDayNumber,omitempty"`
	BeforeItemID    *uuid.UUID `json:"beforeItemId,omitempty"`
	AfterItemID     *uuid.UUID `json:"afterItemId,omitempty"`
}

type Membership struct {
	UserID uuid.UUID `json:"userId"`
	Role   string    `json:"role"`
}

type Invite struct {
	Email     openapi_types.Email `json:"email"`
	Role      string              `json:"role"`
	Status    string              `json:"status"`
	CreatedAt time.Time           `json:"createdAt"`
}

type MembersView struct {
	Memberships []Membership `json:"memberships"`
	Invites     []Invite     `json:"invites"`
}

type InviteRequest struct {
	Email openapi_types.Email `json:"email"`
	Role  string              `json:"role"`
}

type InviteUpdateRequest struct {
	Role   *string `json:"role,omitempty"`
	Status *string `json:"status,omitempty"`
}

type RespondRequest struct {
	Accept bool `json:"accept"`
}

type MemberRoleRequest struct {
	Role string `json:"role"`
}

type OwnerRequest struct {
	UserID uuid.UUID `json:"userId"`
}

type LeaveRequest struct {
	SuccessorID *uuid.UUID `json:"successorId,omitempty"`
}

type LinkInvitesResponse struct {
	Linked int `json:"linked"`
}

// --- mapping helpers --------------------------------------------------------

// detailsFromRequest converts a TripRequest into the service details struct.
// Visibility defaults to PRIVATE when omitted.
func detailsFromRequest(req TripRequest) (service.TripDetails, error) {
	if req.StartDate.Time.IsZero() {
		return service.TripDetails{}, errors.New("startDate is required")
	}
	if req.EndDate.Time.IsZero() {
		return service.TripDetails{}, errors.New("endDate is required")
	}
	vis := domain.VisibilityPrivate
	if req.Visibility != nil {
		vis = domain.Visibility(strings.ToUpper(strings.TrimSpace(*req.Visibility)))
		if !vis.Valid() {
			return service.TripDetails{}, errors.New("visibility must be PUBLIC or PRIVATE")
		}
	}
	return service.TripDetails{
		Name:       req.Name,
		StartDate:  domain.DateOnly(req.StartDate.Time),
		EndDate:    domain.DateOnly(req.EndDate.Time),
		Visibility: vis,
	}, nil
}

// parseRole converts a wire role string into a domain.Role.
func parseRole(s string) (domain.Role, error) {
	role := domain.Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", errors.New("role must be OWNER, EDITOR, or VIEWER")
	}
	return role, nil
}

// itemFromRequest converts an ItemRequest into a domain item. An item without
// a date goes to the Places-to-Visit backlog.
func itemFromRequest(req ItemRequest) domain.ItineraryItem {
	item := domain.ItineraryItem{
		PlaceName: req.PlaceName,
		Notes:     req.Notes,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if req.Date != nil {
		item.Date = domain.DateOnly(req.Date.Time)
	} else {
		item.InPlacesToVisit = true
	}
	return item
}

// itemToResponse converts a domain item into the wire shape. Backlog items
// carry no date on the wire: their stored date is a placeholder.
func itemToResponse(it domain.ItineraryItem) Item {
	resp := Item{
		ID:              it.ID,
		PlaceName:       it.PlaceName,
		Notes:           it.Notes,
		Latitude:        it.Latitude,
		Longitude:       it.Longitude,
		InPlacesToVisit: it.InPlacesToVisit,
	}
	if !it.InPlacesToVisit {
		d := openapi_types.Date{Time: it.Date}
		resp.Date = &d
	}
	return resp
}

func itemsToResponse(items []domain.ItineraryItem) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = itemToResponse(it)
	}
	return out
}

// tripToResponse converts a domain.Trip into the wire shape.
func tripToResponse(t domain.Trip) Trip {
	return Trip{
		ID:         t.ID,
		OwnerID:    t.OwnerID,
		Name:       t.Name,
		StartDate:  openapi_types.Date{Time: t.StartDate},
		EndDate:    openapi_types.Date{Time: t.EndDate},
		Visibility: string(t.Visibility),
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

// itineraryToResponse projects the aggregate into the day/backlog view the
// board UI renders.
func itineraryToResponse(t domain.Trip) ItineraryView {
	days := t.Days()
	view := ItineraryView{
		Days: make([]DayView, len(days)),
		PlacesToVisit: BacklogView{
			Label: placesToVisitLabel,
			Items: itemsToResponse(t.PlacesToVisit()),
		},
	}
	for i, d := range days {
		view.Days[i] = DayView{
			DayNumber: d.Number,
			Date:      openapi_types.Date{Time: d.Date},
			Items:     itemsToResponse(d.Items),
		}
	}
	return view
}

// membersToResponse projects the aggregate into the memberships/invites view.
func membersToResponse(t domain.Trip) MembersView {
	view := MembersView{
		Memberships: make([]Membership, len(t.Members)),
		Invites:     make([]Invite, len(t.Invites)),
	}
	for i, m := range t.Members {
		view.Memberships[i] = Membership{UserID: m.UserID, Role: string(m.Role)}
	}
	for i, inv := range t.Invites {
		view.Invites[i] = Invite{
			Email:     openapi_types.Email(inv.Email),
			Role:      string(inv.Role),
			Status:    string(inv.Status),
			CreatedAt: inv.CreatedAt,
		}
	}
	return view
}
