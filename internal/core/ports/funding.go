package ports

import (
	"context"
	"time"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

// FundingEventInput is the DTO passed from the webhook handler to the
// funding service via the dispatcher.
type FundingEventInput struct {
	DonorName     string
	DonorEmail    string
	AmountCents   int64
	Currency      string
	TransactionID string
	OccurredAt    time.Time
}

// FundingListResult is returned by List. TotalCents is the running total
// across all recorded fundings, not just the current page.
type FundingListResult struct {
	Items      []*domain.Funding
	Total      int64
	TotalCents int64
	Page       int
	Limit      int
	TotalPages int
}

// FundingRepository persists recorded fundings.
type FundingRepository interface {
	// Insert persists a funding; returns domain.ErrDuplicateFunding when the
	// transaction id was already recorded.
	Insert(ctx context.Context, f *domain.Funding) error
	// List returns a page of fundings, newest first, with the total count.
	List(ctx context.Context, page, limit int) ([]*domain.Funding, int64, error)
	// TotalCents sums the amount of every recorded funding.
	TotalCents(ctx context.Context) (int64, error)
}

// FundingService processes incoming payment webhook events and serves the
// funding history.
type FundingService interface {
	Record(ctx context.Context, event FundingEventInput) error
	List(ctx context.Context, page, limit int) (*FundingListResult, error)
}
