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

	"github.com/lusail/account-service/internal/core/domain"
	"github.com/lusail/account-service/internal/core/ports"
	"github.com/lusail/account-service/internal/pkg/clock"
)

const collectionAccounts = "accounts"

type AccountRepository struct {
	col   *mongo.Collection
	clock clock.Clock
}

// NewAccountRepository stamps updated_at with clk, the same clock the
// services use for created_at and OTP expiry. A nil clk means clock.New().
func NewAccountRepository(db *mongo.Database, clk clock.Clock) *AccountRepository {
	if clk == nil {
		clk = clock.New()
	}
	return &AccountRepository{col: db.Collection(collectionAccounts), clock: clk}
}

type accountDocument struct {
	ID              primitive.ObjectID   `bson:"_id,omitempty"`
	Name            string               `bson:"name"`
	Email           string               `bson:"email"`
	Password        string               `bson:"password"`
	Role            string               `bson:"role"`
	Status          string               `bson:"status"`
	OTP             string               `bson:"otp,omitempty"`
	OTPExpires      *time.Time           `bson:"otp_expires,omitempty"`
	ProfileImage    *domain.ProfileImage `bson:"profile_image,omitempty"`
	SessionIssuedAt *time.Time           `bson:"session_issued_at,omitempty"`
	CreatedAt       time.Time            `bson:"created_at"`
	UpdatedAt       time.Time            `bson:"updated_at"`
}

func toDocument(a *domain.Account) accountDocument {
	return accountDocument{
		Name:            a.Name,
		Email:           a.Email,
		Password:        a.PasswordHash,
		Role:            a.Role,
		Status:          string(a.Status),
		OTP:             a.OTP,
		OTPExpires:      a.OTPExpires,
		ProfileImage:    a.ProfileImage,
		SessionIssuedAt: a.SessionIssuedAt,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func (d accountDocument) toDomain() *domain.Account {
	return &domain.Account{
		ID:              d.ID.Hex(),
		Name:            d.Name,
		Email:           d.Email,
		PasswordHash:    d.Password,
		Role:            d.Role,
		Status:          domain.AccountStatus(d.Status),
		OTP:             d.OTP,
		OTPExpires:      utcPtr(d.OTPExpires),
		ProfileImage:    d.ProfileImage,
		SessionIssuedAt: utcPtr(d.SessionIssuedAt),
		CreatedAt:       d.CreatedAt.UTC(),
		UpdatedAt:       d.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

// Create inserts a new account. The unique email index turns a concurrent
// duplicate signup into domain.ErrAccountExists.
func (r *AccountRepository) Create(ctx context.Context, a *domain.Account) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := toDocument(a)
	doc.ID = primitive.NewObjectID()
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return doc.toDomain(), nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*domain.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*domain.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*domain.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc accountDocument
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return doc.toDomain(), nil
}

// List returns one page of accounts ordered by creation time, newest first,
// together with the total number of accounts.
func (r *AccountRepository) List(ctx context.Context, filter ports.ListAccountsFilter) ([]*domain.Account, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	total, err := r.col.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, fmt.Errorf("count accounts: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetSkip(int64((filter.Page - 1) * filter.Limit)).
		SetLimit(int64(filter.Limit))

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list accounts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []accountDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("decode accounts: %w", err)
	}

	accounts := make([]*domain.Account, 0, len(docs))
	for _, d := range docs {
		accounts = append(accounts, d.toDomain())
	}
	return accounts, total, nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) UpdateProfile(ctx context.Context, id string, changes ports.ProfileChanges) error {
	set := bson.M{}
	if changes.Name != nil {
		set["name"] = *changes.Name
	}
	if changes.Role != nil {
		set["role"] = *changes.Role
	}
	if changes.Image != nil {
		set["profile_image"] = changes.Image
	}
	return r.update(ctx, id, set, nil)
}

func (r *AccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	return r.update(ctx, id, bson.M{"password": passwordHash}, nil)
}

func (r *AccountRepository) MarkVerified(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{"status": string(domain.StatusVerified)}, nil)
}

// SetOTP writes code and expiry in one update so they never diverge.
func (r *AccountRepository) SetOTP(ctx context.Context, id string, code string, expires time.Time) error {
	return r.update(ctx, id, bson.M{"otp": code, "otp_expires": expires.UTC()}, nil)
}

// ClearOTP removes code and expiry in one update.
func (r *AccountRepository) ClearOTP(ctx context.Context, id string) error {
	return r.update(ctx, id, bson.M{}, bson.M{"otp": "", "otp_expires": ""})
}

func (r *AccountRepository) SetSessionIssued(ctx context.Context, id string, at *time.Time) error {
	if at == nil {
		return r.update(ctx, id, bson.M{}, bson.M{"session_issued_at": ""})
	}
	return r.update(ctx, id, bson.M{"session_issued_at": at.UTC()}, nil)
}

// update applies $set and $unset to a single account, always bumping updated_at.
func (r *AccountRepository) update(ctx context.Context, id string, set, unset bson.M) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrAccountNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	set["updated_at"] = r.clock.Now().UTC()
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

// EnsureIndexes creates the unique email index on the accounts collection.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
