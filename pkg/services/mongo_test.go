package services

import (
	"context"
	"testing"
	"time"

	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

// recordingNotifications captures what services emit instead of storing it.
type recordingNotifications struct {
	NotificationService
	recipients []primitive.ObjectID
	requests   []models.UserNotificationRequest
	roles      []models.UserRole
}

func (r *recordingNotifications) Emit(_ context.Context, userID primitive.ObjectID, req models.UserNotificationRequest) (*models.UserNotification, error) {
	r.recipients = append(r.recipients, userID)
	r.requests = append(r.requests, req)
	n := models.NewUserNotification(userID, req, time.Now())
	return &n, nil
}

func (r *recordingNotifications) EmitToRole(_ context.Context, role models.UserRole, req models.UserNotificationRequest) (int, error) {
	r.roles = append(r.roles, role)
	r.requests = append(r.requests, req)
	return 1, nil
}

func toDoc(t require.TestingT, v any) bson.D {
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func findResponse(ns string, docs ...bson.D) bson.D {
	return mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, docs...)
}

func updateResponse(matched int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: matched},
		bson.E{Key: "nModified", Value: matched},
	)
}

func mockOrderService(mt *mtest.T, notifications NotificationService) *OrderServiceImpl {
	return &OrderServiceImpl{
		client:        mt.Client,
		orders:        mt.DB.Collection(common.OrderCollection),
		products:      mt.DB.Collection(common.ProductCollection),
		farmers:       mt.DB.Collection(common.FarmerCollection),
		notifications: notifications,
		now:           time.Now,
	}
}

func mockApplicationService(mt *mtest.T, notifications NotificationService) *ApplicationServiceImpl {
	return &ApplicationServiceImpl{
		client:        mt.Client,
		db:            mt.DB,
		users:         mt.DB.Collection(common.UserCollection),
		notifications: notifications,
		now:           time.Now,
	}
}

func TestCreateOrdersEmptyCartWritesNothing(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("no items", func(mt *mtest.T) {
		ors := mockOrderService(mt, &recordingNotifications{})

		// No mock responses are queued, so any command sent would fail.
		orders, replayed, err := ors.CreateOrders(context.Background(), primitive.NewObjectID(), models.CreateOrderRequest{
			PaymentMethod: models.PayCashOnDelivery,
		}, "checkout-1")

		assert.ErrorIs(mt, err, ErrBadRequest)
		assert.ErrorIs(mt, err, models.ErrEmptyCart)
		assert.Nil(mt, orders)
		assert.False(mt, replayed)
		assert.Nil(mt, mt.GetStartedEvent())
	})
}

func TestCompareAndSwap(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("miss is a conflict", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(0))
		err := compareAndSwap(context.Background(), mt.Coll, primitive.NewObjectID(), "status",
			models.ApplicationPending, bson.M{"status": models.ApplicationApproved})
		assert.ErrorIs(mt, err, ErrConflict)
	})

	mt.Run("hit", func(mt *mtest.T) {
		mt.AddMockResponses(updateResponse(1))
		err := compareAndSwap(context.Background(), mt.Coll, primitive.NewObjectID(), "status",
			models.ApplicationPending, bson.M{"status": models.ApplicationApproved})
		assert.NoError(mt, err)
	})
}

func TestLatestVersion(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	ns := "agrimarket." + common.FarmerCollection
	user := primitive.NewObjectID()

	mt.Run("open application blocks", func(mt *mtest.T) {
		pending := models.VendorProfile{ID: primitive.NewObjectID(), UserID: user, Status: models.ApplicationPending, ApplicationVersion: 1}
		mt.AddMockResponses(findResponse(ns, toDoc(mt, pending)))

		_, err := latestVersion(context.Background(), mt.Coll, user, models.VendorFarmer)
		assert.ErrorIs(mt, err, ErrConflict)
		assert.Contains(mt, err.Error(), "pending")
	})

	mt.Run("rejected history yields highest version", func(mt *mtest.T) {
		mt.AddMockResponses(
			findResponse(ns),
			findResponse(ns, bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "application_version", Value: 2}}),
		)

		version, err := latestVersion(context.Background(), mt.Coll, user, models.VendorFarmer)
		require.NoError(mt, err)
		assert.Equal(mt, 2, version)
	})

	mt.Run("first application", func(mt *mtest.T) {
		mt.AddMockResponses(findResponse(ns), findResponse(ns))

		version, err := latestVersion(context.Background(), mt.Coll, user, models.VendorFarmer)
		require.NoError(mt, err)
		assert.Zero(mt, version)
	})
}

func TestSyncUserRole(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	ns := "agrimarket." + common.UserCollection
	now := time.Now().UTC()

	mt.Run("approval updates account", func(mt *mtest.T) {
		user := models.User{ID: primitive.NewObjectID(), Role: models.RoleClient}
		mt.AddMockResponses(findResponse(ns, toDoc(mt, user)), updateResponse(1))

		as := mockApplicationService(mt, nil)
		require.NoError(mt, as.syncUserRole(context.Background(), user.ID, models.VendorFarmer, models.ApplicationApproved, now))
	})

	mt.Run("missing account", func(mt *mtest.T) {
		mt.AddMockResponses(findResponse(ns))

		as := mockApplicationService(mt, nil)
		err := as.syncUserRole(context.Background(), primitive.NewObjectID(), models.VendorFarmer, models.ApplicationApproved, now)
		assert.ErrorIs(mt, err, ErrNotFound)
	})

	mt.Run("role already granted", func(mt *mtest.T) {
		user := models.User{ID: primitive.NewObjectID(), Role: models.RoleFarmer, Roles: []models.UserRole{models.RoleFarmer}}
		// Only the read is queued; an update would fail for lack of a response.
		mt.AddMockResponses(findResponse(ns, toDoc(mt, user)))

		as := mockApplicationService(mt, nil)
		assert.NoError(mt, as.syncUserRole(context.Background(), user.ID, models.VendorFarmer, models.ApplicationApproved, now))
	})

	mt.Run("rejection leaves account alone", func(mt *mtest.T) {
		as := mockApplicationService(mt, nil)
		assert.NoError(mt, as.syncUserRole(context.Background(), primitive.NewObjectID(), models.VendorFarmer, models.ApplicationRejected, now))
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	ns := "agrimarket." + common.OrderCollection
	newOrder := func() models.Order {
		return models.Order{
			ID:             primitive.NewObjectID(),
			ClientID:       primitive.NewObjectID(),
			FarmerID:       primitive.NewObjectID(),
			Status:         models.OrderPending,
			DeliveryStatus: models.DeliveryPending,
			PaymentStatus:  models.PaymentPending,
			CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		}
	}

	mt.Run("concurrent change is a conflict", func(mt *mtest.T) {
		order := newOrder()
		mt.AddMockResponses(findResponse(ns, toDoc(mt, order)), updateResponse(0))

		notifications := &recordingNotifications{}
		ors := mockOrderService(mt, notifications)
		actor := Actor{UserID: order.FarmerID, Role: models.RoleFarmer}

		_, err := ors.UpdateOrderStatus(context.Background(), actor, order.ID, models.UpdateOrderStatusRequest{Status: models.OrderConfirmed})
		assert.ErrorIs(mt, err, ErrConflict)
		assert.Empty(mt, notifications.recipients)
	})

	mt.Run("vendor moves order forward", func(mt *mtest.T) {
		order := newOrder()
		mt.AddMockResponses(findResponse(ns, toDoc(mt, order)), updateResponse(1))

		notifications := &recordingNotifications{}
		ors := mockOrderService(mt, notifications)
		actor := Actor{UserID: order.FarmerID, Role: models.RoleFarmer}

		updated, err := ors.UpdateOrderStatus(context.Background(), actor, order.ID, models.UpdateOrderStatusRequest{Status: models.OrderConfirmed})
		require.NoError(mt, err)
		assert.Equal(mt, models.OrderConfirmed, updated.Status)
		assert.Equal(mt, []primitive.ObjectID{order.ClientID}, notifications.recipients)
	})

	mt.Run("client cannot update status", func(mt *mtest.T) {
		order := newOrder()
		mt.AddMockResponses(findResponse(ns, toDoc(mt, order)))

		ors := mockOrderService(mt, &recordingNotifications{})
		actor := Actor{UserID: order.ClientID, Role: models.RoleClient}

		_, err := ors.UpdateOrderStatus(context.Background(), actor, order.ID, models.UpdateOrderStatusRequest{Status: models.OrderConfirmed})
		assert.ErrorIs(mt, err, ErrForbidden)
	})
}

func TestUpdatePaymentStatusConflict(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	defer mt.Close()

	mt.Run("payment changed concurrently", func(mt *mtest.T) {
		order := models.Order{
			ID:            primitive.NewObjectID(),
			ClientID:      primitive.NewObjectID(),
			FarmerID:      primitive.NewObjectID(),
			Status:        models.OrderPending,
			PaymentStatus: models.PaymentPending,
		}
		mt.AddMockResponses(findResponse("agrimarket."+common.OrderCollection, toDoc(mt, order)), updateResponse(0))

		notifications := &recordingNotifications{}
		ors := mockOrderService(mt, notifications)

		_, err := ors.UpdatePaymentStatus(context.Background(), Actor{UserID: order.ClientID, Role: models.RoleClient},
			order.ID, models.UpdatePaymentStatusRequest{PaymentStatus: models.PaymentPaid})
		assert.ErrorIs(mt, err, ErrConflict)
		assert.Empty(mt, notifications.recipients)
	})
}
