package enquiry

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/nkoudou/veltrabackend/models"
)

type MongoRepository struct {
	col *mongo.Collection
}

func NewMongoRepository(col *mongo.Collection) *MongoRepository {
	return &MongoRepository{col: col}
}

func (r *MongoRepository) Insert(ctx context.Context, rec *models.TradeEnquiry) error {
	now := time.Now().UTC()
	if rec.ID.IsZero() {
		rec.ID = bson.NewObjectID()
	}
	if rec.Status == "" {
		rec.Status = models.TradeEnquiryStatusNew
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if _, err := r.col.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert trade enquiry: %w", err)
	}
	return nil
}

func (r *MongoRepository) List(ctx context.Context, f ListFilter) ([]models.TradeEnquiry, int64, error) {
	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Email != "" {
		filter["email"] = f.Email
	}
	if f.Query != "" {
		escaped := regexp.QuoteMeta(f.Query)
		filter["$or"] = []bson.M{
			{"name": bson.M{"$regex": escaped, "$options": "i"}},
			{"company": bson.M{"$regex": escaped, "$options": "i"}},
			{"email": bson.M{"$regex": escaped, "$options": "i"}},
			{"message": bson.M{"$regex": escaped, "$options": "i"}},
		}
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = 20
	}
	skip := int64((page - 1) * limit)

	opts := options.Find().
		SetSkip(skip).
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("list trade enquiries: %w", err)
	}
	defer cursor.Close(ctx)

	items := make([]models.TradeEnquiry, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, fmt.Errorf("decode trade enquiries: %w", err)
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("count trade enquiries: %w", err)
	}
	return items, total, nil
}

func (r *MongoRepository) Get(ctx context.Context, id string) (*models.TradeEnquiry, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	var rec models.TradeEnquiry
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get trade enquiry: %w", err)
	}
	return &rec, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, status models.TradeEnquiryStatus) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	res, err := r.col.UpdateByID(ctx, oid, bson.M{
		"$set": bson.M{
			"status":    string(status),
			"updatedAt": time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("update trade enquiry status: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
