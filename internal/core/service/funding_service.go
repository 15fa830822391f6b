package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

// FundingDedup abstracts the idempotency store (Redis) for webhook events.
type FundingDedup interface {
	IsDuplicate(ctx context.Context, transactionID string) (bool, error)
	Mark(ctx context.Context, transactionID string) error
}

type fundingService struct {
	repo  ports.FundingRepository
	dedup FundingDedup
	log   zerolog.Logger
}

// NewFundingService returns a FundingService implementation.
func NewFundingService(repo ports.FundingRepository, dedup FundingDedup, log zerolog.Logger) ports.FundingService {
	return &fundingService{repo: repo, dedup: dedup, log: log}
}

// Record validates, deduplicates, and persists one checkout-completion
// event. Replays of an already-recorded transaction are silently skipped;
// the unique index on transaction_id is the durable backstop when the
// dedup cache is unavailable.
func (s *fundingService) Record(ctx context.Context, in ports.FundingEventInput) error {
	if in.TransactionID == "" || in.AmountCents <= 0 {
		return fmt.Errorf("record funding: invalid event (txn=%q amount=%d)", in.TransactionID, in.AmountCents)
	}

	isDup, err := s.dedup.IsDuplicate(ctx, in.TransactionID)
	if err != nil {
		s.log.Warn().Err(err).Str("transaction_id", in.TransactionID).Msg("dedup check failed, processing anyway")
	} else if isDup {
		s.log.Debug().Str("transaction_id", in.TransactionID).Msg("duplicate funding event skipped")
		return nil
	}

	f := &domain.Funding{
		DonorName:     in.DonorName,
		DonorEmail:    in.DonorEmail,
		AmountCents:   in.AmountCents,
		Currency:      in.Currency,
		TransactionID: in.TransactionID,
		CreatedAt:     in.OccurredAt.UTC(),
	}
	if err := s.repo.Insert(ctx, f); err != nil {
		if errors.Is(err, domain.ErrDuplicateFunding) {
			s.log.Debug().Str("transaction_id", in.TransactionID).Msg("funding already recorded")
			return nil
		}
		return fmt.Errorf("record funding: %w", err)
	}

	if markErr := s.dedup.Mark(ctx, in.TransactionID); markErr != nil {
		s.log.Warn().Err(markErr).Str("transaction_id", in.TransactionID).Msg("failed to set dedup key")
	}

	s.log.Info().
		Str("transaction_id", in.TransactionID).
		Int64("amount_cents", in.AmountCents).
		Str("donor", in.DonorEmail).
		Msg("funding recorded")
	return nil
}

// List returns a page of fundings, newest first, with the running total.
func (s *fundingService) List(ctx context.Context, page, limit int) (*ports.FundingListResult, error) {
	page, limit = normalizePage(page, limit)

	items, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	totalCents, err := s.repo.TotalCents(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.FundingListResult{
		Items:      items,
		Total:      total,
		TotalCents: totalCents,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages(total, limit),
	}, nil
}
