package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

const accountCollection = "accounts"

// AccountRepository persists profile sub-accounts. Account names are unique
// across the application, matching the original product behaviour.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

// EnsureIndexes creates the unique name index and the owner lookup index.
func (r *AccountRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "user_id", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create account indexes: %w", err)
	}
	return nil
}

type accountDoc struct {
	UUID         string `bson:"_id"`
	Name         string `bson:"name"`
	BioData      string `bson:"bio_data"`
	DisplayPhoto string `bson:"display_photo"`
	UserUUID     string `bson:"user_id"`
	CreatedAt    int64  `bson:"created_at"`
	UpdatedAt    int64  `bson:"updated_at"`
}

func (d accountDoc) toDomain() *domain.Account {
	return &domain.Account{
		UUID:         d.UUID,
		Name:         d.Name,
		BioData:      d.BioData,
		DisplayPhoto: d.DisplayPhoto,
		UserUUID:     d.UserUUID,
		CreatedAt:    unixToTime(d.CreatedAt),
		UpdatedAt:    unixToTime(d.UpdatedAt),
	}
}

func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	doc := accountDoc{
		UUID:         account.UUID,
		Name:         account.Name,
		BioData:      account.BioData,
		DisplayPhoto: account.DisplayPhoto,
		UserUUID:     account.UserUUID,
		CreatedAt:    account.CreatedAt.Unix(),
		UpdatedAt:    account.UpdatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrAccountExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}
	return r.FindByUUID(ctx, account.UUID)
}

func (r *AccountRepository) FindByUUID(ctx context.Context, uuid string) (*domain.Account, error) {
	var d accountDoc
	if err := r.coll.FindOne(ctx, bson.M{"_id": uuid}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return d.toDomain(), nil
}

func (r *AccountRepository) ListByUser(ctx context.Context, userUUID string) ([]*domain.Account, error) {
	cur, err := r.coll.Find(ctx, bson.M{"user_id": userUUID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*domain.Account
	for cur.Next(ctx) {
		var d accountDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode account: %w", err)
		}
		accounts = append(accounts, d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	return accounts, nil
}

func (r *AccountRepository) Update(ctx context.Context, account *domain.Account) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": account.UUID}, bson.M{
		"$set": bson.M{
			"name":          account.Name,
			"bio_data":      account.BioData,
			"display_photo": account.DisplayPhoto,
			"updated_at":    account.UpdatedAt.Unix(),
		},
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrAccountExists
		}
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, uuid string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": uuid})
	if err != nil {
		return fmt.Errorf("delete account: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrAccountNotFound
	}
	return nil
}
