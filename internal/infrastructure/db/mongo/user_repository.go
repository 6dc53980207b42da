package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spaceyatech/identity-api/internal/core/domain"
)

const userCollection = "users"

// UserRepository persists users in MongoDB. The user's uuid is the document
// id; username, email and phone number carry unique indexes so duplicate
// registration fails at the storage layer.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique indexes. Call once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "phone_number", Value: 1}}, Options: unique},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type userDoc struct {
	UUID             string   `bson:"_id"`
	Username         string   `bson:"username"`
	Email            string   `bson:"email"`
	PhoneNumber      string   `bson:"phone_number"`
	PasswordHash     string   `bson:"password_hash"`
	IsEmailConfirmed bool     `bson:"is_email_confirmed"`
	EmailToken       string   `bson:"email_token,omitempty"`
	AuthToken        string   `bson:"auth_token,omitempty"`
	Roles            []string `bson:"roles"`
	CreatedAt        int64    `bson:"created_at"`
	UpdatedAt        int64    `bson:"updated_at"`
}

func toUserDoc(u *domain.User) userDoc {
	return userDoc{
		UUID:             u.UUID,
		Username:         u.Username,
		Email:            u.Email,
		PhoneNumber:      u.PhoneNumber,
		PasswordHash:     u.PasswordHash,
		IsEmailConfirmed: u.IsEmailConfirmed,
		EmailToken:       u.EmailToken,
		AuthToken:        u.AuthToken,
		Roles:            u.Roles,
		CreatedAt:        u.CreatedAt.Unix(),
		UpdatedAt:        u.UpdatedAt.Unix(),
	}
}

func (d userDoc) toDomain() *domain.User {
	roles := d.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.User{
		UUID:             d.UUID,
		Username:         d.Username,
		Email:            d.Email,
		PhoneNumber:      d.PhoneNumber,
		PasswordHash:     d.PasswordHash,
		IsEmailConfirmed: d.IsEmailConfirmed,
		EmailToken:       d.EmailToken,
		AuthToken:        d.AuthToken,
		Roles:            roles,
		CreatedAt:        unixToTime(d.CreatedAt),
		UpdatedAt:        unixToTime(d.UpdatedAt),
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if _, err := r.coll.InsertOne(ctx, toUserDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, duplicateFieldError(err)
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return r.FindByUUID(ctx, user.UUID)
}

// duplicateFieldError maps a duplicate-key error to the conflicting field by
// the unique index named in the server message. Registration conflicts are
// disclosive so the caller learns which field to change.
func duplicateFieldError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "username_1"):
		return domain.ErrUsernameExists
	case strings.Contains(msg, "email_1"):
		return domain.ErrEmailExists
	case strings.Contains(msg, "phone_number_1"):
		return domain.ErrPhoneExists
	}
	return domain.ErrUserExists
}

func (r *UserRepository) FindByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": uuid})
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var d userDoc
	if err := r.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return d.toDomain(), nil
}

func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []*domain.User
	for cur.Next(ctx) {
		var d userDoc
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, d.toDomain())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) SetEmailToken(ctx context.Context, uuid, token string) error {
	update := bson.M{
		"$set": bson.M{"email_token": token, "updated_at": time.Now().UTC().Unix()},
	}
	if token == "" {
		update = bson.M{
			"$unset": bson.M{"email_token": ""},
			"$set":   bson.M{"updated_at": time.Now().UTC().Unix()},
		}
	}
	return r.updateOne(ctx, uuid, update)
}

func (r *UserRepository) ConfirmEmail(ctx context.Context, uuid string) error {
	return r.updateOne(ctx, uuid, bson.M{
		"$set":   bson.M{"is_email_confirmed": true, "updated_at": time.Now().UTC().Unix()},
		"$unset": bson.M{"email_token": ""},
	})
}

func (r *UserRepository) SetAuthToken(ctx context.Context, uuid, token string) error {
	return r.updateOne(ctx, uuid, bson.M{
		"$set": bson.M{"auth_token": token, "updated_at": time.Now().UTC().Unix()},
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, uuid, passwordHash string) error {
	return r.updateOne(ctx, uuid, bson.M{
		"$set": bson.M{"password_hash": passwordHash, "updated_at": time.Now().UTC().Unix()},
	})
}

func (r *UserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	set := bson.M{
		"username":           user.Username,
		"email":              user.Email,
		"phone_number":       user.PhoneNumber,
		"is_email_confirmed": user.IsEmailConfirmed,
		"updated_at":         time.Now().UTC().Unix(),
	}
	update := bson.M{"$set": set}
	if user.EmailToken != "" {
		set["email_token"] = user.EmailToken
	} else {
		update["$unset"] = bson.M{"email_token": ""}
	}
	return r.updateOne(ctx, user.UUID, update)
}

func (r *UserRepository) GrantRole(ctx context.Context, uuid, roleName string) error {
	return r.updateOne(ctx, uuid, bson.M{
		"$addToSet": bson.M{"roles": roleName},
		"$set":      bson.M{"updated_at": time.Now().UTC().Unix()},
	})
}

func (r *UserRepository) updateOne(ctx context.Context, uuid string, update bson.M) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": uuid}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateFieldError(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
