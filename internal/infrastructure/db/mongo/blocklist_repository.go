package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const blocklistCollection = "token_blocklist"

// BlocklistRepository is the revocation ledger. The jti is the document id;
// Revoke uses an upsert with $setOnInsert so a repeated revocation neither
// errors nor rewrites the original timestamp. Lookups always hit the
// collection directly; revocation must be visible on the very next request.
type BlocklistRepository struct {
	coll *mongo.Collection
}

func NewBlocklistRepository(db *mongo.Database) *BlocklistRepository {
	return &BlocklistRepository{coll: db.Collection(blocklistCollection)}
}

func (r *BlocklistRepository) Revoke(ctx context.Context, jti string, when time.Time) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": jti},
		bson.M{"$setOnInsert": bson.M{"revoked_at": when.Unix()}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// A concurrent upsert can race to a duplicate key; the record
		// exists either way, which is all revocation requires.
		if mongo.IsDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("insert revoked token: %w", err)
	}
	return nil
}

func (r *BlocklistRepository) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := r.coll.FindOne(ctx, bson.M{"_id": jti}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return false, nil
		}
		return false, fmt.Errorf("blocklist lookup: %w", err)
	}
	return true, nil
}
