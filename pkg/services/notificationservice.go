package services

import (
	"context"
	"strings"
	"time"

	"agrimarket-api-io/api/internal"
	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type NotificationServiceImpl struct {
	notificationCollection *mongo.Collection
	userCollection         *mongo.Collection
	publisher              *internal.Publisher
	now                    func() time.Time
}

func NewNotificationService(db *mongo.Database, publisher *internal.Publisher) NotificationService {
	return &NotificationServiceImpl{
		notificationCollection: db.Collection(common.UserNotificationCollection),
		userCollection:         db.Collection(common.UserCollection),
		publisher:              publisher,
		now:                    time.Now,
	}
}

// notificationEvent is the payload published on the notifications channel.
type notificationEvent struct {
	Event        string                  `json:"event"`
	Notification models.UserNotification `json:"notification"`
}

func (ns *NotificationServiceImpl) Emit(ctx context.Context, userID primitive.ObjectID, req models.UserNotificationRequest) (*models.UserNotification, error) {
	if !req.Type.IsValid() {
		return nil, classify(ErrBadRequest, errors.Errorf("unknown notification type %q", req.Type))
	}

	notification := models.NewUserNotification(userID, req, ns.now().UTC())
	if _, err := ns.notificationCollection.InsertOne(ctx, notification); err != nil {
		return nil, errors.Wrap(err, "insert notification")
	}

	ns.publish(ctx, notification)
	return &notification, nil
}

func (ns *NotificationServiceImpl) EmitToRole(ctx context.Context, role models.UserRole, req models.UserNotificationRequest) (int, error) {
	if !req.Type.IsValid() {
		return 0, classify(ErrBadRequest, errors.Errorf("unknown notification type %q", req.Type))
	}

	filter := bson.M{"$or": bson.A{bson.M{"role": role}, bson.M{"roles": role}}}
	cursor, err := ns.userCollection.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return 0, errors.Wrap(err, "find recipients")
	}
	defer cursor.Close(ctx)

	var recipients []struct {
		ID primitive.ObjectID `bson:"_id"`
	}
	if err := cursor.All(ctx, &recipients); err != nil {
		return 0, errors.Wrap(err, "decode recipients")
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	now := ns.now().UTC()
	docs := make([]any, 0, len(recipients))
	notifications := make([]models.UserNotification, 0, len(recipients))
	for _, r := range recipients {
		n := models.NewUserNotification(r.ID, req, now)
		docs = append(docs, n)
		notifications = append(notifications, n)
	}

	if _, err := ns.notificationCollection.InsertMany(ctx, docs); err != nil {
		return 0, errors.Wrap(err, "insert notifications")
	}
	for _, n := range notifications {
		ns.publish(ctx, n)
	}
	return len(notifications), nil
}

func (ns *NotificationServiceImpl) publish(ctx context.Context, n models.UserNotification) {
	if err := ns.publisher.PublishEvent(ctx, notificationEvent{Event: string(n.Type), Notification: n}); err != nil {
		util.WithFields(logrus.Fields{"notification_id": n.ID.Hex(), "type": n.Type}).
			WithError(err).Warn("notification stored but not published")
	}
	if err := ns.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateUserNotifications, n.UserID.Hex()); err != nil {
		util.LogError("failed to invalidate notification cache", err)
	}
}

func (ns *NotificationServiceImpl) Count(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	count, err := ns.notificationCollection.CountDocuments(ctx, unreadFilter(userID, ns.now()))
	return count, errors.Wrap(err, "count unread notifications")
}

func (ns *NotificationServiceImpl) List(ctx context.Context, userID primitive.ObjectID, filters models.NotificationFilters, pagination util.PaginationArgs) ([]models.UserNotification, int64, error) {
	filter := notificationFilter(userID, filters, ns.now())
	opts := options.Find().
		SetSort(inboxSort(pagination.Sort)).
		SetSkip(int64(pagination.Skip)).
		SetLimit(int64(pagination.Limit))

	return countAndFind[models.UserNotification](ctx, ns.notificationCollection, filter, opts)
}

// Create lets a user add to their own inbox. Admins may target another user.
func (ns *NotificationServiceImpl) Create(ctx context.Context, actor Actor, req models.UserNotificationRequest) (*models.UserNotification, error) {
	recipient := actor.UserID
	if req.UserID != nil && *req.UserID != actor.UserID {
		if !actor.IsAdmin() {
			return nil, classify(ErrForbidden, errors.New("only admins can notify other users"))
		}
		recipient = *req.UserID
	}
	return ns.Emit(ctx, recipient, req)
}

func (ns *NotificationServiceImpl) MarkRead(ctx context.Context, userID, id primitive.ObjectID) error {
	now := ns.now().UTC()
	res, err := ns.notificationCollection.UpdateOne(ctx,
		bson.M{"_id": id, "user_id": userID},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
	)
	if err != nil {
		return errors.Wrap(err, "mark notification read")
	}
	if res.MatchedCount == 0 {
		return classify(ErrNotFound, errors.New("notification not found"))
	}
	return nil
}

func (ns *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	now := ns.now().UTC()
	res, err := ns.notificationCollection.UpdateMany(ctx,
		bson.M{"user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true, "read_at": now}},
	)
	if err != nil {
		return 0, errors.Wrap(err, "mark all notifications read")
	}
	return res.ModifiedCount, nil
}

func (ns *NotificationServiceImpl) Delete(ctx context.Context, userID, id primitive.ObjectID) error {
	res, err := ns.notificationCollection.DeleteOne(ctx, bson.M{"_id": id, "user_id": userID})
	if err != nil {
		return errors.Wrap(err, "delete notification")
	}
	if res.DeletedCount == 0 {
		return classify(ErrNotFound, errors.New("notification not found"))
	}
	return nil
}

// inboxSort adds "priority_asc|_desc" to the shared sort keys. Ties within a
// priority are broken newest first.
func inboxSort(sort string) bson.D {
	field := strings.TrimSuffix(strings.TrimSuffix(sort, "_asc"), "_desc")
	if field != "priority" {
		return util.GetSortBson(sort)
	}
	value := -1
	if strings.HasSuffix(sort, "_asc") {
		value = 1
	}
	return bson.D{
		{Key: "priority_weight", Value: value},
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: -1},
	}
}

// notExpired matches notifications without an expiry or expiring after now.
// The TTL index removes expired documents eventually, not immediately.
func notExpired(now time.Time) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"expires_at": nil},
		bson.M{"expires_at": bson.M{"$gt": now}},
	}}
}

func unreadFilter(userID primitive.ObjectID, now time.Time) bson.M {
	return bson.M{
		"user_id": userID,
		"is_read": false,
		"$and":    bson.A{notExpired(now)},
	}
}

func notificationFilter(userID primitive.ObjectID, f models.NotificationFilters, now time.Time) bson.M {
	filter := bson.M{
		"user_id": userID,
		"$and":    bson.A{notExpired(now)},
	}
	if len(f.Types) > 0 {
		filter["type"] = bson.M{"$in": f.Types}
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.IsRead != nil {
		filter["is_read"] = *f.IsRead
	}
	return filter
}
