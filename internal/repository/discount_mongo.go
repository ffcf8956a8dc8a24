package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const discountCollection = "discount_codes"

// expiredCodeRetention keeps expired codes around long enough to report them as expired.
const expiredCodeRetention = 30 * 24 * time.Hour

type MongoDiscountStore struct {
	collection *mongo.Collection
}

func NewMongoDiscountStore(db *mongo.Database) *MongoDiscountStore {
	return &MongoDiscountStore{collection: db.Collection(discountCollection)}
}

func (s *MongoDiscountStore) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(expiredCodeRetention.Seconds())),
		},
	}

	_, err := s.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

func (s *MongoDiscountStore) Insert(ctx context.Context, code domain.DiscountCode) error {
	_, err := s.collection.InsertOne(ctx, code)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrCodeCollision
	}
	if err != nil {
		return fmt.Errorf("insert discount code: %w", err)
	}
	return nil
}

func (s *MongoDiscountStore) Find(ctx context.Context, code string) (*domain.DiscountCode, error) {
	var dc domain.DiscountCode
	err := s.collection.FindOne(ctx, bson.M{"code": code}).Decode(&dc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find discount code: %w", err)
	}
	return &dc, nil
}

// IncrementIfRedeemable relies on a single conditional update so concurrent redeems
// cannot push used_count past max_uses.
func (s *MongoDiscountStore) IncrementIfRedeemable(ctx context.Context, code string, now time.Time) (bool, error) {
	filter := bson.M{
		"code":       code,
		"expires_at": bson.M{"$gt": now},
		"$expr":      bson.M{"$lt": bson.A{"$used_count", "$max_uses"}},
	}
	update := bson.M{"$inc": bson.M{"used_count": 1}}

	res, err := s.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("redeem discount code: %w", err)
	}
	return res.ModifiedCount == 1, nil
}
