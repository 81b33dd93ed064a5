package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/brandreg/crm-api/internal/core/domain"
	"github.com/brandreg/crm-api/internal/core/ports"
)

const collectionNotifications = "notifications"

// NotificationRepository implements ports.NotificationRepository on MongoDB.
type NotificationRepository struct {
	col *mongo.Collection
}

func NewNotificationRepository(db *mongo.Database) *NotificationRepository {
	return &NotificationRepository{col: db.Collection(collectionNotifications)}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domain.Notification) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if n.ID == "" {
		n.ID = primitive.NewObjectID().Hex()
	}
	_, err := r.col.InsertOne(ctx, n)
	return err
}

// ownerFilter matches notifications addressed to the user directly or to the
// user's role.
func ownerFilter(userID, role string) bson.M {
	return bson.M{"$or": []bson.M{
		{"recipient": userID},
		{"role": role},
	}}
}

func (r *NotificationRepository) List(ctx context.Context, filter ports.ListNotificationsFilter) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := ownerFilter(filter.UserID, filter.Role)
	if filter.UnreadOnly {
		query["read"] = false
	}

	limit := int64(filter.Limit)
	if limit <= 0 {
		limit = 50
	}
	cur, err := r.col.Find(ctx, query, options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []*domain.Notification
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead flips the read flag. The filter carries the ownership check, so a
// foreign id reports not found rather than leaking its existence.
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID, role string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := ownerFilter(userID, role)
	filter["_id"] = id
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"read": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%w: notification %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID, role string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := ownerFilter(userID, role)
	query["read"] = false
	return r.col.CountDocuments(ctx, query)
}

func (r *NotificationRepository) DeleteByJob(ctx context.Context, jobID string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := r.col.DeleteMany(ctx, bson.M{"job_id": jobID})
	return err
}

// EnsureIndexes creates the notification lookup indexes.
func (r *NotificationRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "recipient", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "role", Value: 1}, {Key: "read", Value: 1}}},
		{Keys: bson.D{{Key: "job_id", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	return err
}
