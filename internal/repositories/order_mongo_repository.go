package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/apperr"
	"storefront/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoOrderRepository is a MongoDB implementation of OrderRepository.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates a new instance of MongoOrderRepository.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(ordersCollection)}
}

func (r *MongoOrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	order.CreatedAt, order.UpdatedAt = now, now
	if _, err := r.coll.InsertOne(ctx, order); err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("order with ID %s not found: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) find(ctx context.Context, filter bson.M) ([]models.Order, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	orders := []models.Order{}
	if err := cur.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetByUser(ctx context.Context, userID string) ([]models.Order, error) {
	orders, err := r.find(ctx, bson.M{"user": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to get orders for user %s: %w", userID, err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	orders, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// flip applies set to the order only while flag is still false.
func (r *MongoOrderRepository) flip(ctx context.Context, id, flag string, set bson.M) (*models.Order, error) {
	set["updatedAt"] = time.Now().UTC()
	var order models.Order
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, flag: false},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return r.GetByID(ctx, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update %s on order %s: %w", flag, id, err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) MarkPaid(ctx context.Context, id string, at time.Time, result *models.PaymentResult) (*models.Order, error) {
	set := bson.M{"isPaid": true, "paidAt": at}
	if result != nil {
		set["paymentResult"] = result
	}
	return r.flip(ctx, id, "isPaid", set)
}

func (r *MongoOrderRepository) MarkDelivered(ctx context.Context, id string, at time.Time) (*models.Order, error) {
	return r.flip(ctx, id, "isDelivered", bson.M{"isDelivered": true, "deliveredAt": at})
}
