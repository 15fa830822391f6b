package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodcare/donation-system/internal/core/domain"
)

const collectionFundings = "fundings"

type FundingRepository struct {
	col *mongo.Collection
}

func NewFundingRepository(db *mongo.Database) *FundingRepository {
	return &FundingRepository{col: db.Collection(collectionFundings)}
}

type fundingDoc struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"`
	DonorName     string             `bson:"donor_name"`
	DonorEmail    string             `bson:"donor_email"`
	AmountCents   int64              `bson:"amount_cents"`
	Currency      string             `bson:"currency"`
	TransactionID string             `bson:"transaction_id"`
	CreatedAt     time.Time          `bson:"created_at"`
}

func fromFundingDoc(d *fundingDoc) *domain.Funding {
	return &domain.Funding{
		ID:            d.ID.Hex(),
		DonorName:     d.DonorName,
		DonorEmail:    d.DonorEmail,
		AmountCents:   d.AmountCents,
		Currency:      d.Currency,
		TransactionID: d.TransactionID,
		CreatedAt:     d.CreatedAt,
	}
}

// Insert persists a funding. The unique index on transaction_id makes
// webhook replays surface as duplicates.
func (r *FundingRepository) Insert(ctx context.Context, f *domain.Funding) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := fundingDoc{
		DonorName:     f.DonorName,
		DonorEmail:    f.DonorEmail,
		AmountCents:   f.AmountCents,
		Currency:      f.Currency,
		TransactionID: f.TransactionID,
		CreatedAt:     f.CreatedAt.UTC(),
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicateFunding
		}
		return fmt.Errorf("insert funding: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		f.ID = oid.Hex()
	}
	return nil
}

// List returns a page of fundings, newest first, with the total count.
func (r *FundingRepository) List(ctx context.Context, page, limit int) ([]*domain.Funding, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count fundings: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list fundings: %w", err)
	}
	defer cur.Close(ctx)

	var out []*domain.Funding
	for cur.Next(ctx) {
		var doc fundingDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, 0, fmt.Errorf("decode funding: %w", err)
		}
		out = append(out, fromFundingDoc(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate fundings: %w", err)
	}
	return out, total, nil
}

// TotalCents sums the amount of every recorded funding.
func (r *FundingRepository) TotalCents(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": nil, "total": bson.M{"$sum": "$amount_cents"}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("sum fundings: %w", err)
	}
	defer cur.Close(ctx)

	var res struct {
		Total int64 `bson:"total"`
	}
	if cur.Next(ctx) {
		if err := cur.Decode(&res); err != nil {
			return 0, fmt.Errorf("decode funding total: %w", err)
		}
	}
	return res.Total, cur.Err()
}

// EnsureIndexes creates the unique transaction index.
func (r *FundingRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "transaction_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
