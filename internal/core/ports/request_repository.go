package ports

import (
	"context"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// ListRequestsFilter carries all query parameters for the moderated listing.
// Absent (empty) filters impose no constraint; provided filters are ANDed.
type ListRequestsFilter struct {
	Status     string // optional: filter by lifecycle status
	BloodGroup string // optional: exact match on blood group
	District   string // optional: case-insensitive exact match
	Page       int    // 1-based
	Limit      int    // max rows per page (capped at 100 by service)
}

// RequestPatch holds the editable fields of a pending request. Nil fields
// are left untouched.
type RequestPatch struct {
	RecipientName  *string
	BloodGroup     *string
	District       *string
	Upazila        *string
	HospitalName   *string
	FullAddress    *string
	DonationDate   *string
	DonationTime   *string
	RequestMessage *string
}

// RequestRepository defines persistence operations for donation requests.
//
// Every status-guarded mutation (UpdatePending, Pledge, Transition,
// DeletePending) is a single conditional write: the status precondition is
// part of the query filter, never a separate read. When the precondition
// fails on an existing record the repository returns domain.ErrRequestConflict;
// when the record is absent it returns domain.ErrRequestNotFound.
type RequestRepository interface {
	// Create inserts a new request and fills in the generated ID.
	Create(ctx context.Context, r *domain.DonationRequest) error
	FindByID(ctx context.Context, id string) (*domain.DonationRequest, error)
	// List returns a page of requests matching filter and the total count,
	// ordered by creation time descending.
	List(ctx context.Context, filter ListRequestsFilter) ([]*domain.DonationRequest, int64, error)
	// ListPending returns every pending request, newest first.
	ListPending(ctx context.Context) ([]*domain.DonationRequest, error)
	// ListByRequester returns the requester's requests, newest first,
	// truncated to limit when limit > 0.
	ListByRequester(ctx context.Context, email string, limit int) ([]*domain.DonationRequest, error)
	// UpdatePending applies patch iff the request is still pending.
	UpdatePending(ctx context.Context, id string, patch RequestPatch) error
	// Pledge atomically moves a pending request to inprogress and sets both
	// donor fields in the same write. Exactly one concurrent caller wins.
	Pledge(ctx context.Context, id, donorName, donorEmail string) (*domain.DonationRequest, error)
	// Transition moves the request from one specific status to another.
	Transition(ctx context.Context, id string, from, to domain.RequestStatus) error
	// Delete removes the request regardless of status (admin moderation).
	Delete(ctx context.Context, id string) error
	// DeletePending removes the request iff it is still pending.
	DeletePending(ctx context.Context, id string) error
}
