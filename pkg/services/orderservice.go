package services

import (
	"context"
	"fmt"
	"time"

	"agrimarket-api-io/api/config"
	"agrimarket-api-io/api/internal"
	"agrimarket-api-io/api/internal/common"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/util"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type OrderServiceImpl struct {
	client        *mongo.Client
	orders        *mongo.Collection
	products      *mongo.Collection
	farmers       *mongo.Collection
	publisher     *internal.Publisher
	notifications NotificationService
	idempotency   *IdempotencyStore
	now           func() time.Time
}

func NewOrderService(cfg *config.Config, db *mongo.Database, rdb *redis.Client, publisher *internal.Publisher, notifications NotificationService) OrderService {
	return &OrderServiceImpl{
		client:        db.Client(),
		orders:        db.Collection(common.OrderCollection),
		products:      db.Collection(common.ProductCollection),
		farmers:       db.Collection(common.FarmerCollection),
		publisher:     publisher,
		notifications: notifications,
		idempotency:   NewIdempotencyStore(rdb, "orders", cfg.IdempotencyTTL),
		now:           time.Now,
	}
}

// CreateOrders prices the cart from current product data and inserts one
// order per farmer in a single transaction.
func (ors *OrderServiceImpl) CreateOrders(ctx context.Context, clientID primitive.ObjectID, req models.CreateOrderRequest, idempotencyKey string) ([]models.Order, bool, error) {
	if len(req.Items) == 0 {
		return nil, false, domainError(models.ErrEmptyCart)
	}

	scope := clientID.Hex()
	var replay []models.Order
	replayed, err := ors.idempotency.Begin(ctx, scope, idempotencyKey, &replay)
	if err != nil {
		return nil, false, err
	}
	if replayed {
		return replay, true, nil
	}

	callback := func(sc mongo.SessionContext) (any, error) {
		products, vendors, err := ors.loadCatalog(sc, req.Items)
		if err != nil {
			return nil, err
		}

		orders, err := models.SplitCartByVendor(clientID, req, products, vendors, ors.now().UTC())
		if err != nil {
			return nil, err
		}

		docs := make([]any, len(orders))
		for i := range orders {
			docs[i] = orders[i]
		}
		if _, err := ors.orders.InsertMany(sc, docs); err != nil {
			return nil, errors.Wrap(err, "insert orders")
		}
		return orders, nil
	}

	result, err := ExecuteTransaction(ctx, ors.client, callback)
	if err != nil {
		ors.idempotency.Abort(ctx, scope, idempotencyKey)
		return nil, false, domainError(err)
	}

	orders := result.([]models.Order)
	util.LogError("failed to store idempotent response", ors.idempotency.Complete(ctx, scope, idempotencyKey, orders))
	ors.afterCheckout(ctx, clientID, orders)
	return orders, false, nil
}

// loadCatalog fetches the products in the cart and the approved farmers
// that own them.
func (ors *OrderServiceImpl) loadCatalog(ctx context.Context, items []models.CartItem) (map[primitive.ObjectID]models.Product, map[primitive.ObjectID]bool, error) {
	ids := make([]primitive.ObjectID, 0, len(items))
	seen := map[primitive.ObjectID]bool{}
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	cursor, err := ors.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, nil, errors.Wrap(err, "find products")
	}
	var found []models.Product
	err = cursor.All(ctx, &found)
	cursor.Close(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decode products")
	}

	products := make(map[primitive.ObjectID]models.Product, len(found))
	farmerIDs := make([]primitive.ObjectID, 0, len(found))
	for _, p := range found {
		products[p.ID] = p
		farmerIDs = append(farmerIDs, p.FarmerID)
	}

	vendors := map[primitive.ObjectID]bool{}
	if len(farmerIDs) == 0 {
		return products, vendors, nil
	}

	cursor, err = ors.farmers.Find(ctx,
		bson.M{"user_id": bson.M{"$in": farmerIDs}, "status": models.ApplicationApproved},
		options.Find().SetProjection(bson.M{"user_id": 1}),
	)
	if err != nil {
		return nil, nil, errors.Wrap(err, "find farmers")
	}
	var farmers []struct {
		UserID primitive.ObjectID `bson:"user_id"`
	}
	err = cursor.All(ctx, &farmers)
	cursor.Close(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "decode farmers")
	}
	for _, f := range farmers {
		vendors[f.UserID] = true
	}

	return products, vendors, nil
}

func (ors *OrderServiceImpl) afterCheckout(ctx context.Context, clientID primitive.ObjectID, orders []models.Order) {
	if len(orders) == 0 {
		return
	}
	util.LogError("failed to publish order invalidation", ors.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateUserOrders, clientID.Hex()))

	var grand float64
	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		grand += o.GrandTotal()
		orderIDs = append(orderIDs, o.ID.Hex())
	}

	checkoutID := orders[0].CheckoutID
	if _, err := ors.notifications.Emit(ctx, clientID, models.UserNotificationRequest{
		Type:              models.NotificationOrderPlaced,
		Title:             "Order placed",
		Message:           fmt.Sprintf("Your checkout created %d order(s) totalling %.2f.", len(orders), grand),
		Data:              map[string]any{"checkoutId": checkoutID.Hex(), "orderIds": orderIDs},
		RelatedEntityID:   &checkoutID,
		RelatedEntityType: "checkout",
	}); err != nil {
		util.LogError("failed to notify client of checkout", err)
	}

	for _, o := range orders {
		id := o.ID
		util.LogError("failed to publish order invalidation", ors.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateUserOrders, o.FarmerID.Hex()))
		if _, err := ors.notifications.Emit(ctx, o.FarmerID, models.UserNotificationRequest{
			Type:              models.NotificationOrderReceived,
			Title:             "New order received",
			Message:           fmt.Sprintf("You received an order with %d item(s) worth %.2f.", len(o.Items), o.TotalAmount),
			Data:              map[string]any{"orderId": o.ID.Hex(), "clientId": clientID.Hex()},
			RelatedEntityID:   &id,
			RelatedEntityType: "order",
		}); err != nil {
			util.LogError("failed to notify farmer of order", err)
		}
	}

	util.WithFields(logrus.Fields{
		"checkout_id": checkoutID.Hex(),
		"client_id":   clientID.Hex(),
		"orders":      len(orders),
	}).Info("checkout completed")
}

// GetOrders lists orders a farmer sells, or orders anyone else bought.
func (ors *OrderServiceImpl) GetOrders(ctx context.Context, actor Actor, filter models.OrderFilter, pagination util.PaginationArgs) ([]models.Order, int64, error) {
	query := orderFilterBson(actor, filter)
	limit := pagination.Limit
	if limit <= 0 {
		limit = common.DEFAULT_PAGE_LIMIT
	}
	opts := options.Find().
		SetSort(util.GetSortBson(pagination.Sort)).
		SetSkip(int64(pagination.Skip)).
		SetLimit(int64(limit))

	return countAndFind[models.Order](ctx, ors.orders, query, opts)
}

func orderFilterBson(actor Actor, f models.OrderFilter) bson.M {
	query := bson.M{}
	if actor.Role == models.RoleFarmer {
		query["farmer_id"] = actor.UserID
	} else {
		query["client_id"] = actor.UserID
	}
	if f.Status != "" {
		query["status"] = f.Status
	}
	if f.PaymentStatus != "" {
		query["payment_status"] = f.PaymentStatus
	}
	return query
}

func (ors *OrderServiceImpl) GetOrder(ctx context.Context, actor Actor, id primitive.ObjectID) (*models.Order, error) {
	order, err := ors.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanView(actor.UserID, actor.Role) {
		return nil, classify(ErrForbidden, models.ErrNotOrderParty)
	}
	return order, nil
}

func (ors *OrderServiceImpl) findOrder(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := ors.orders.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, classify(ErrNotFound, errors.Errorf("order %s not found", id.Hex()))
	}
	if err != nil {
		return nil, errors.Wrap(err, "find order")
	}
	return &order, nil
}

// UpdateOrderStatus lets the order's farmer move it forward. The write is
// rejected with a conflict if the status changed since it was read.
func (ors *OrderServiceImpl) UpdateOrderStatus(ctx context.Context, actor Actor, id primitive.ObjectID, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	order, err := ors.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	prevStatus, prevDelivery := order.Status, order.DeliveryStatus
	if err := models.ApplyOrderStatusUpdate(order, actor.UserID, req, ors.now().UTC()); err != nil {
		return nil, domainError(err)
	}

	filter := bson.M{"_id": order.ID, "status": prevStatus, "delivery_status": prevDelivery}
	res, err := ors.orders.UpdateOne(ctx, filter, bson.M{"$set": bson.M{
		"status":          order.Status,
		"delivery_status": order.DeliveryStatus,
		"is_delivered":    order.IsDelivered,
		"delivered_at":    order.DeliveredAt,
		"updated_at":      order.UpdatedAt,
	}})
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	if res.MatchedCount == 0 {
		return nil, classify(ErrConflict, errors.New("order status changed concurrently"))
	}

	ors.afterOrderChange(ctx, order)
	nt := models.OrderStatusNotification(*order)
	ors.notifyOrder(ctx, order, nt, order.ClientID,
		"Order update",
		fmt.Sprintf("Your order is now %s (delivery: %s).", order.Status, order.DeliveryStatus))
	return order, nil
}

// UpdatePaymentStatus records a payment change made by either party.
func (ors *OrderServiceImpl) UpdatePaymentStatus(ctx context.Context, actor Actor, id primitive.ObjectID, req models.UpdatePaymentStatusRequest) (*models.Order, error) {
	order, err := ors.findOrder(ctx, id)
	if err != nil {
		return nil, err
	}

	prev := order.PaymentStatus
	if err := models.ApplyPaymentUpdate(order, actor.UserID, req, ors.now().UTC()); err != nil {
		return nil, domainError(err)
	}

	if err := compareAndSwap(ctx, ors.orders, order.ID, "payment_status", prev, bson.M{
		"payment_status": order.PaymentStatus,
		"payment_time":   order.PaymentTime,
		"updated_at":     order.UpdatedAt,
	}); err != nil {
		return nil, err
	}

	ors.afterOrderChange(ctx, order)
	if nt, recipient, ok := models.PaymentNotification(*order); ok {
		ors.notifyOrder(ctx, order, nt, recipient,
			"Payment update",
			fmt.Sprintf("Payment of %.2f for order %s is %s.", order.GrandTotal(), order.ID.Hex(), order.PaymentStatus))
	}
	return order, nil
}

func (ors *OrderServiceImpl) afterOrderChange(ctx context.Context, order *models.Order) {
	util.LogError("failed to publish order invalidation", ors.publisher.PublishCacheMessage(ctx, internal.CacheInvalidateOrder, order.ID.Hex()))
}

func (ors *OrderServiceImpl) notifyOrder(ctx context.Context, order *models.Order, nt models.NotificationType, recipient primitive.ObjectID, title, message string) {
	id := order.ID
	_, err := ors.notifications.Emit(ctx, recipient, models.UserNotificationRequest{
		Type:    nt,
		Title:   title,
		Message: message,
		Data: map[string]any{
			"orderId":        order.ID.Hex(),
			"status":         order.Status,
			"deliveryStatus": order.DeliveryStatus,
			"paymentStatus":  order.PaymentStatus,
		},
		RelatedEntityID:   &id,
		RelatedEntityType: "order",
	})
	if err != nil {
		util.WithFields(logrus.Fields{"order_id": order.ID.Hex(), "type": nt}).WithError(err).Warn("failed to send order notification")
	}
}
