package ports

import (
	"context"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// CreateRequestInput carries all data needed to create a donation request.
// Requester name and email are taken from the caller identity, never from
// the request body.
type CreateRequestInput struct {
	Caller         Identity
	RecipientName  string
	BloodGroup     string
	District       string
	Upazila        string
	HospitalName   string
	FullAddress    string
	DonationDate   string
	DonationTime   string
	RequestMessage string
}

// UpdateRequestInput holds the optional field updates for a pending request.
type UpdateRequestInput struct {
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

// ListRequestsInput carries all parameters for the moderated list endpoint.
type ListRequestsInput struct {
	Status     string
	BloodGroup string
	District   string
	Page       int
	Limit      int
}

// ListRequestsResult is returned by List.
type ListRequestsResult struct {
	Items      []*domain.DonationRequest
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// RequestService defines use-case operations for donation requests. Every
// mutating operation takes the caller identity explicitly and resolves the
// caller's role and status from the user directory before deciding.
type RequestService interface {
	Create(ctx context.Context, input CreateRequestInput) (*domain.DonationRequest, error)
	Get(ctx context.Context, id string) (*domain.DonationRequest, error)
	// ListPending is the public "available requests" view; no authorization.
	ListPending(ctx context.Context) ([]*domain.DonationRequest, error)
	// ListByRequester is readable by the requester itself or a moderator.
	ListByRequester(ctx context.Context, caller Identity, email string, limit int) ([]*domain.DonationRequest, error)
	// List is the unrestricted moderated listing (admin/volunteer only).
	List(ctx context.Context, caller Identity, input ListRequestsInput) (*ListRequestsResult, error)
	// Update edits a still-pending request; owner only.
	Update(ctx context.Context, caller Identity, id string, input UpdateRequestInput) (*domain.DonationRequest, error)
	// Pledge commits the caller as donor, moving pending → inprogress.
	Pledge(ctx context.Context, caller Identity, id string) (*domain.DonationRequest, error)
	// Transition moves an inprogress request to done or canceled.
	Transition(ctx context.Context, caller Identity, id string, to domain.RequestStatus) error
	// Delete removes a pending request (owner) or any request (admin).
	Delete(ctx context.Context, caller Identity, id string) error
}
