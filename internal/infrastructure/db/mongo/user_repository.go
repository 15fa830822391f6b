package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/bloodcare/donation-system/internal/core/domain"
	"github.com/bloodcare/donation-system/internal/core/ports"
)

const collectionUsers = "users"

// donorSearchLimit caps the public donor search result size.
const donorSearchLimit = 100

type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{col: db.Collection(collectionUsers)}
}

// Create inserts a new directory record. The email is the document key, so
// a duplicate registration surfaces as a key collision.
func (r *UserRepository) Create(ctx context.Context, u *domain.UserRecord) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.UserRecord
	if err := r.col.FindOne(ctx, bson.M{"_id": email}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// List returns a page of records ordered by creation time ascending and the
// total count matching the filter.
func (r *UserRepository) List(ctx context.Context, f ports.ListUsersFilter) ([]*domain.UserRecord, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}}).
		SetSkip(int64((f.Page - 1) * f.Limit)).
		SetLimit(int64(f.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	items, err := decodeUsers(ctx, cur)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, email string, patch ports.ProfilePatch) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set := bson.M{"updated_at": time.Now().UTC()}
	setIf(set, "name", patch.Name)
	setIf(set, "avatar_url", patch.AvatarURL)
	setIf(set, "blood_group", patch.BloodGroup)
	setIf(set, "district", patch.District)
	setIf(set, "upazila", patch.Upazila)

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": email}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) SetRole(ctx context.Context, email string, role domain.Role) error {
	return r.setField(ctx, email, "role", string(role))
}

func (r *UserRepository) SetStatus(ctx context.Context, email string, status domain.UserStatus) error {
	return r.setField(ctx, email, "status", string(status))
}

func (r *UserRepository) setField(ctx context.Context, email, field, value string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": email},
		bson.M{"$set": bson.M{field: value, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("set user %s: %w", field, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// SearchDonors returns active accounts matching the filter, sorted by name.
func (r *UserRepository) SearchDonors(ctx context.Context, f ports.DonorSearchFilter) ([]*domain.UserRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"status": string(domain.UserActive)}
	if f.BloodGroup != "" {
		filter["blood_group"] = f.BloodGroup
	}
	if f.District != "" {
		filter["district"] = caseInsensitiveExact(f.District)
	}
	if f.Upazila != "" {
		filter["upazila"] = caseInsensitiveExact(f.Upazila)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(donorSearchLimit)

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("search donors: %w", err)
	}
	return decodeUsers(ctx, cur)
}

// EnsureIndexes creates the indexes backing listing and donor search.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
		{Keys: bson.D{{Key: "blood_group", Value: 1}, {Key: "district", Value: 1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

func decodeUsers(ctx context.Context, cur *mongo.Cursor) ([]*domain.UserRecord, error) {
	defer cur.Close(ctx)

	var out []*domain.UserRecord
	for cur.Next(ctx) {
		var u domain.UserRecord
		if err := cur.Decode(&u); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		out = append(out, &u)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return out, nil
}
