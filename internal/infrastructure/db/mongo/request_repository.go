package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

const collectionRequests = "donation_requests"

type RequestRepository struct {
	col *mongo.Collection
}

func NewRequestRepository(db *mongo.Database) *RequestRepository {
	return &RequestRepository{col: db.Collection(collectionRequests)}
}

// requestDoc is the storage shape; the ObjectID is mapped to a hex string at
// the domain boundary.
type requestDoc struct {
	ID             primitive.ObjectID `bson:"_id,omitempty"`
	RequesterName  string             `bson:"requester_name"`
	RequesterEmail string             `bson:"requester_email"`
	RecipientName  string             `bson:"recipient_name"`
	BloodGroup     string             `bson:"blood_group"`
	District       string             `bson:"district"`
	Upazila        string             `bson:"upazila"`
	HospitalName   string             `bson:"hospital_name"`
	FullAddress    string             `bson:"full_address"`
	DonationDate   string             `bson:"donation_date"`
	DonationTime   string             `bson:"donation_time"`
	RequestMessage string             `bson:"request_message"`
	Status         string             `bson:"status"`
	DonorName      string             `bson:"donor_name,omitempty"`
	DonorEmail     string             `bson:"donor_email,omitempty"`
	CreatedAt      time.Time          `bson:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at"`
}

func toRequestDoc(r *domain.DonationRequest) requestDoc {
	return requestDoc{
		RequesterName:  r.RequesterName,
		RequesterEmail: r.RequesterEmail,
		RecipientName:  r.RecipientName,
		BloodGroup:     r.BloodGroup,
		District:       r.District,
		Upazila:        r.Upazila,
		HospitalName:   r.HospitalName,
		FullAddress:    r.FullAddress,
		DonationDate:   r.DonationDate,
		DonationTime:   r.DonationTime,
		RequestMessage: r.RequestMessage,
		Status:         string(r.Status),
		DonorName:      r.DonorName,
		DonorEmail:     r.DonorEmail,
		CreatedAt:      r.CreatedAt.UTC(),
		UpdatedAt:      r.UpdatedAt.UTC(),
	}
}

func fromRequestDoc(d *requestDoc) *domain.DonationRequest {
	return &domain.DonationRequest{
		ID:             d.ID.Hex(),
		RequesterName:  d.RequesterName,
		RequesterEmail: d.RequesterEmail,
		RecipientName:  d.RecipientName,
		BloodGroup:     d.BloodGroup,
		District:       d.District,
		Upazila:        d.Upazila,
		HospitalName:   d.HospitalName,
		FullAddress:    d.FullAddress,
		DonationDate:   d.DonationDate,
		DonationTime:   d.DonationTime,
		RequestMessage: d.RequestMessage,
		Status:         domain.RequestStatus(d.Status),
		DonorName:      d.DonorName,
		DonorEmail:     d.DonorEmail,
		CreatedAt:      d.CreatedAt,
		UpdatedAt:      d.UpdatedAt,
	}
}

func requestID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, domain.ErrRequestNotFound
	}
	return oid, nil
}

// Create inserts a new request document and fills in the generated ID.
func (r *RequestRepository) Create(ctx context.Context, req *domain.DonationRequest) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.InsertOne(ctx, toRequestDoc(req))
	if err != nil {
		return fmt.Errorf("insert request: %w", err)
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid.Hex()
	}
	return nil
}

func (r *RequestRepository) FindByID(ctx context.Context, id string) (*domain.DonationRequest, error) {
	oid, err := requestID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc requestDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find request: %w", err)
	}
	return fromRequestDoc(&doc), nil
}

// List returns a page of requests matching filter and the total count,
// newest first. District matching is a case-insensitive exact match.
func (r *RequestRepository) List(ctx context.Context, f ports.ListRequestsFilter) ([]*domain.DonationRequest, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.BloodGroup != "" {
		filter["blood_group"] = f.BloodGroup
	}
	if f.District != "" {
		filter["district"] = caseInsensitiveExact(f.District)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count requests: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list requests: %w", err)
	}
	items, err := decodeRequests(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *RequestRepository) ListPending(ctx context.Context) ([]*domain.DonationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"status": string(domain.StatusPending)}, opts)
	if err != nil {
		return nil, fmt.Errorf("list pending requests: %w", err)
	}
	return decodeRequests(ctx, cur)
}

func (r *RequestRepository) ListByRequester(ctx context.Context, email string, limit int) ([]*domain.DonationRequest, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}
	cur, err := r.col.Find(ctx, bson.M{"requester_email": email}, opts)
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	return decodeRequests(ctx, cur)
}

// UpdatePending applies patch iff the request is still pending. The pending
// precondition is part of the update filter, so a concurrently pledged
// request surfaces as a conflict instead of being overwritten.
func (r *RequestRepository) UpdatePending(ctx context.Context, id string, patch ports.RequestPatch) error {
	oid, err := requestID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	setIf(set, "recipient_name", patch.RecipientName)
	setIf(set, "blood_group", patch.BloodGroup)
	setIf(set, "district", patch.District)
	setIf(set, "upazila", patch.Upazila)
	setIf(set, "hospital_name", patch.HospitalName)
	setIf(set, "full_address", patch.FullAddress)
	setIf(set, "donation_date", patch.DonationDate)
	setIf(set, "donation_time", patch.DonationTime)
	setIf(set, "request_message", patch.RequestMessage)

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(domain.StatusPending)},
		bson.M{"$set": set},
	)
	if err != nil {
		return fmt.Errorf("update pending request: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, oid)
	}
	return nil
}

// Pledge atomically moves a pending request to inprogress, setting both
// donor fields in the same write. Of two concurrent pledges exactly one
// matches the pending filter; the other gets a conflict.
func (r *RequestRepository) Pledge(ctx context.Context, id, donorName, donorEmail string) (*domain.DonationRequest, error) {
	oid, err := requestID(id)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"status":      string(domain.StatusInProgress),
		"donor_name":  donorName,
		"donor_email": donorEmail,
		"updated_at":  time.Now().UTC(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc requestDoc
	err = r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "status": string(domain.StatusPending)},
		update, opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, r.missReason(ctx, oid)
		}
		return nil, fmt.Errorf("pledge request: %w", err)
	}
	return fromRequestDoc(&doc), nil
}

// Transition moves the request from one specific status to another as a
// single conditional write.
func (r *RequestRepository) Transition(ctx context.Context, id string, from, to domain.RequestStatus) error {
	oid, err := requestID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "status": string(from)},
		bson.M{"$set": bson.M{"status": string(to), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("transition request: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, oid)
	}
	return nil
}

func (r *RequestRepository) Delete(ctx context.Context, id string) error {
	oid, err := requestID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrRequestNotFound
	}
	return nil
}

func (r *RequestRepository) DeletePending(ctx context.Context, id string) error {
	oid, err := requestID(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid, "status": string(domain.StatusPending)})
	if err != nil {
		return fmt.Errorf("delete pending request: %w", err)
	}
	if res.DeletedCount == 0 {
		return r.missReason(ctx, oid)
	}
	return nil
}

// missReason distinguishes an absent record from a failed status
// precondition after a conditional write matched nothing.
func (r *RequestRepository) missReason(ctx context.Context, oid primitive.ObjectID) error {
	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("check request existence: %w", err)
	}
	if n == 0 {
		return domain.ErrRequestNotFound
	}
	return domain.ErrRequestConflict
}

// EnsureIndexes creates the indexes backing the listing queries.
func (r *RequestRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "requester_email", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "blood_group", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeRequests(ctx context.Context, cur *mongo.Cursor) ([]*domain.DonationRequest, error) {
	defer cur.Close(ctx)

	var out []*domain.DonationRequest
	for cur.Next(ctx) {
		var doc requestDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		out = append(out, fromRequestDoc(&doc))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate requests: %w", err)
	}
	return out, nil
}
