package domain

import (
	"errors"
	"time"
)

var ErrDuplicateFunding = errors.New("funding already recorded")

// Funding is one completed payment recorded from the payment provider's
// checkout webhook. The core never mutates fundings after insertion.
type Funding struct {
	ID            string    `json:"id" bson:"_id,omitempty"`
	DonorName     string    `json:"donor_name" bson:"donor_name"`
	DonorEmail    string    `json:"donor_email" bson:"donor_email"`
	AmountCents   int64     `json:"amount_cents" bson:"amount_cents"`
	Currency      string    `json:"currency" bson:"currency"`
	TransactionID string    `json:"transaction_id" bson:"transaction_id"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at"`
}
