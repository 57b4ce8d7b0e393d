package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agrimarket-api-io/api/internal/auth"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/services"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeOrderService struct {
	create        func(clientID primitive.ObjectID, req models.CreateOrderRequest, key string) ([]models.Order, bool, error)
	list          func(actor services.Actor, filter models.OrderFilter, p util.PaginationArgs) ([]models.Order, int64, error)
	get           func(actor services.Actor, id primitive.ObjectID) (*models.Order, error)
	updateStatus  func(actor services.Actor, id primitive.ObjectID, req models.UpdateOrderStatusRequest) (*models.Order, error)
	updatePayment func(actor services.Actor, id primitive.ObjectID, req models.UpdatePaymentStatusRequest) (*models.Order, error)
}

func (f *fakeOrderService) CreateOrders(_ context.Context, clientID primitive.ObjectID, req models.CreateOrderRequest, key string) ([]models.Order, bool, error) {
	return f.create(clientID, req, key)
}

func (f *fakeOrderService) GetOrders(_ context.Context, actor services.Actor, filter models.OrderFilter, p util.PaginationArgs) ([]models.Order, int64, error) {
	return f.list(actor, filter, p)
}

func (f *fakeOrderService) GetOrder(_ context.Context, actor services.Actor, id primitive.ObjectID) (*models.Order, error) {
	return f.get(actor, id)
}

func (f *fakeOrderService) UpdateOrderStatus(_ context.Context, actor services.Actor, id primitive.ObjectID, req models.UpdateOrderStatusRequest) (*models.Order, error) {
	return f.updateStatus(actor, id, req)
}

func (f *fakeOrderService) UpdatePaymentStatus(_ context.Context, actor services.Actor, id primitive.ObjectID, req models.UpdatePaymentStatusRequest) (*models.Order, error) {
	return f.updatePayment(actor, id, req)
}

type fakeApplicationService struct {
	services.ApplicationService
	list   func(filter models.ApplicationFilter, p util.PaginationArgs) ([]models.Application, int64, error)
	get    func(actor services.Actor, id primitive.ObjectID, role models.VendorRole) (*models.Application, error)
	review func(reviewer, id primitive.ObjectID, role models.VendorRole, req models.ReviewApplicationRequest) (*models.Application, error)
	submit func(userID primitive.ObjectID, req models.FarmerApplicationRequest) (*models.Farmer, error)
	stats  func() (models.ApplicationStats, error)
}

func (f *fakeApplicationService) ListApplications(_ context.Context, filter models.ApplicationFilter, p util.PaginationArgs) ([]models.Application, int64, error) {
	return f.list(filter, p)
}

func (f *fakeApplicationService) GetApplication(_ context.Context, actor services.Actor, id primitive.ObjectID, role models.VendorRole) (*models.Application, error) {
	return f.get(actor, id, role)
}

func (f *fakeApplicationService) ReviewApplication(_ context.Context, reviewer, id primitive.ObjectID, role models.VendorRole, req models.ReviewApplicationRequest) (*models.Application, error) {
	return f.review(reviewer, id, role, req)
}

func (f *fakeApplicationService) SubmitFarmerApplication(_ context.Context, userID primitive.ObjectID, req models.FarmerApplicationRequest) (*models.Farmer, error) {
	return f.submit(userID, req)
}

func (f *fakeApplicationService) ApplicationStats(context.Context) (models.ApplicationStats, error) {
	return f.stats()
}

type fakeNotificationService struct {
	services.NotificationService
	count    func(userID primitive.ObjectID) (int64, error)
	list     func(userID primitive.ObjectID, filters models.NotificationFilters, p util.PaginationArgs) ([]models.UserNotification, int64, error)
	create   func(actor services.Actor, req models.UserNotificationRequest) (*models.UserNotification, error)
	markRead func(userID, id primitive.ObjectID) error
}

func (f *fakeNotificationService) Count(_ context.Context, userID primitive.ObjectID) (int64, error) {
	return f.count(userID)
}

func (f *fakeNotificationService) List(_ context.Context, userID primitive.ObjectID, filters models.NotificationFilters, p util.PaginationArgs) ([]models.UserNotification, int64, error) {
	return f.list(userID, filters, p)
}

func (f *fakeNotificationService) Create(_ context.Context, actor services.Actor, req models.UserNotificationRequest) (*models.UserNotification, error) {
	return f.create(actor, req)
}

func (f *fakeNotificationService) MarkRead(_ context.Context, userID, id primitive.ObjectID) error {
	return f.markRead(userID, id)
}

func as(actor services.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SetSession(c, auth.Session{UserID: actor.UserID, Role: actor.Role})
		c.Next()
	}
}

func doJSON(r http.Handler, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Status  int             `json:"status"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
	Meta    json.RawMessage `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func validCheckout(productID primitive.ObjectID) models.CreateOrderRequest {
	return models.CreateOrderRequest{
		Items:           []models.CartItem{{ProductID: productID, Quantity: 2}},
		ShippingAddress: models.Address{Street: "4 Market St", City: "Accra", State: "Greater Accra", Country: "GH"},
		PaymentMethod:   models.PayCashOnDelivery,
		DeliveryFee:     5,
	}
}

func orderRouter(svc services.OrderService, actor services.Actor) *gin.Engine {
	oc := InitOrderController(svc)
	r := gin.New()
	g := r.Group("/api/orders", as(actor))
	g.POST("", oc.CreateOrder())
	g.GET("", oc.GetOrders())
	g.GET("/:id", oc.GetOrder())
	g.PUT("/:id/status", oc.UpdateOrderStatus())
	g.PUT("/:id/payment", oc.UpdatePaymentStatus())
	return r
}

func TestCreateOrder(t *testing.T) {
	client := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleClient}
	productID := primitive.NewObjectID()

	t.Run("created", func(t *testing.T) {
		var gotKey string
		svc := &fakeOrderService{create: func(clientID primitive.ObjectID, req models.CreateOrderRequest, key string) ([]models.Order, bool, error) {
			assert.Equal(t, client.UserID, clientID)
			assert.Equal(t, productID, req.Items[0].ProductID)
			gotKey = key
			return []models.Order{{ID: primitive.NewObjectID(), ClientID: clientID, TotalAmount: 20, DeliveryFee: 5}}, false, nil
		}}

		w := doJSON(orderRouter(svc, client), http.MethodPost, "/api/orders", validCheckout(productID), IdempotencyKeyHeader, "checkout-1")
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "checkout-1", gotKey)

		var orders []models.Order
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &orders))
		require.Len(t, orders, 1)
		assert.Equal(t, 20.0, orders[0].TotalAmount)
	})

	t.Run("orderItems body", func(t *testing.T) {
		var seen int
		svc := &fakeOrderService{create: func(_ primitive.ObjectID, req models.CreateOrderRequest, _ string) ([]models.Order, bool, error) {
			seen = len(req.Items)
			return []models.Order{{ID: primitive.NewObjectID(), TotalAmount: 1000}}, false, nil
		}}
		body := json.RawMessage(`{
			"orderItems": [{"productId": "` + productID.Hex() + `", "quantity": 2}],
			"shippingAddress": {"street": "4 Market St", "city": "Accra", "state": "Greater Accra", "country": "GH"},
			"paymentMethod": "cash_on_delivery",
			"totalAmount": 1000,
			"deliveryFee": 0
		}`)

		w := doJSON(orderRouter(svc, client), http.MethodPost, "/api/orders", body)
		assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, 1, seen)
	})

	t.Run("replayed", func(t *testing.T) {
		svc := &fakeOrderService{create: func(primitive.ObjectID, models.CreateOrderRequest, string) ([]models.Order, bool, error) {
			return []models.Order{{ID: primitive.NewObjectID()}}, true, nil
		}}

		w := doJSON(orderRouter(svc, client), http.MethodPost, "/api/orders", validCheckout(productID), IdempotencyKeyHeader, "checkout-1")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get("Idempotent-Replayed"))
	})

	t.Run("empty cart", func(t *testing.T) {
		svc := &fakeOrderService{create: func(primitive.ObjectID, models.CreateOrderRequest, string) ([]models.Order, bool, error) {
			return nil, false, errors.Wrap(services.ErrBadRequest, models.ErrEmptyCart.Error())
		}}
		req := validCheckout(productID)
		req.Items = nil

		w := doJSON(orderRouter(svc, client), http.MethodPost, "/api/orders", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode(t, w).Error, "at least one item")
	})

	t.Run("invalid payment method never reaches service", func(t *testing.T) {
		svc := &fakeOrderService{create: func(primitive.ObjectID, models.CreateOrderRequest, string) ([]models.Order, bool, error) {
			t.Fatal("service must not be called")
			return nil, false, nil
		}}
		req := validCheckout(productID)
		req.PaymentMethod = "barter"

		w := doJSON(orderRouter(svc, client), http.MethodPost, "/api/orders", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing product", func(t *testing.T) {
		svc := &fakeOrderService{create: func(primitive.ObjectID, models.CreateOrderRequest, string) ([]models.Order, bool, error) {
			return nil, false, errors.Wrap(services.ErrNotFound, "product not found")
		}}

		w := doJSON(orderRouter(svc, client), http.MethodPost, "/api/orders", validCheckout(productID))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGetOrder(t *testing.T) {
	stranger := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleClient}
	orderID := primitive.NewObjectID()

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"visible", nil, http.StatusOK},
		{"third party", errors.Wrap(services.ErrForbidden, "order belongs to another user"), http.StatusForbidden},
		{"absent", errors.Wrap(services.ErrNotFound, "order not found"), http.StatusNotFound},
		{"database down", errors.New("connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeOrderService{get: func(actor services.Actor, id primitive.ObjectID) (*models.Order, error) {
				assert.Equal(t, stranger, actor)
				assert.Equal(t, orderID, id)
				if tc.err != nil {
					return nil, tc.err
				}
				return &models.Order{ID: id}, nil
			}}

			w := doJSON(orderRouter(svc, stranger), http.MethodGet, "/api/orders/"+orderID.Hex(), nil)
			assert.Equal(t, tc.want, w.Code)
			if tc.want == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}

	t.Run("malformed id", func(t *testing.T) {
		w := doJSON(orderRouter(&fakeOrderService{}, stranger), http.MethodGet, "/api/orders/not-an-id", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetOrders(t *testing.T) {
	farmer := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleFarmer}

	svc := &fakeOrderService{list: func(actor services.Actor, filter models.OrderFilter, p util.PaginationArgs) ([]models.Order, int64, error) {
		assert.Equal(t, farmer, actor)
		assert.Equal(t, models.OrderShipped, filter.Status)
		assert.Equal(t, 5, p.Limit)
		return []models.Order{{ID: primitive.NewObjectID()}}, 11, nil
	}}

	w := doJSON(orderRouter(svc, farmer), http.MethodGet, "/api/orders?status=shipped&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, string(decode(t, w).Meta), `"count":11`)

	w = doJSON(orderRouter(svc, farmer), http.MethodGet, "/api/orders?status=lost", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateOrderStatus(t *testing.T) {
	farmer := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleFarmer}
	orderID := primitive.NewObjectID()

	t.Run("delivered", func(t *testing.T) {
		svc := &fakeOrderService{updateStatus: func(actor services.Actor, id primitive.ObjectID, req models.UpdateOrderStatusRequest) (*models.Order, error) {
			o := &models.Order{ID: id, FarmerID: actor.UserID, Status: models.OrderShipped}
			if err := models.ApplyOrderStatusUpdate(o, actor.UserID, req, time.Now()); err != nil {
				return nil, err
			}
			return o, nil
		}}

		w := doJSON(orderRouter(svc, farmer), http.MethodPut, "/api/orders/"+orderID.Hex()+"/status",
			models.UpdateOrderStatusRequest{DeliveryStatus: models.DeliveryDelivered})
		require.Equal(t, http.StatusOK, w.Code)

		var order models.Order
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &order))
		assert.True(t, order.IsDelivered)
		assert.NotNil(t, order.DeliveredAt)
		assert.Equal(t, models.OrderDelivered, order.Status)
	})

	t.Run("not the vendor", func(t *testing.T) {
		svc := &fakeOrderService{updateStatus: func(services.Actor, primitive.ObjectID, models.UpdateOrderStatusRequest) (*models.Order, error) {
			return nil, errors.Wrap(services.ErrForbidden, models.ErrNotOrderVendor.Error())
		}}
		w := doJSON(orderRouter(svc, farmer), http.MethodPut, "/api/orders/"+orderID.Hex()+"/status",
			models.UpdateOrderStatusRequest{Status: models.OrderConfirmed})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("concurrent change", func(t *testing.T) {
		svc := &fakeOrderService{updateStatus: func(services.Actor, primitive.ObjectID, models.UpdateOrderStatusRequest) (*models.Order, error) {
			return nil, errors.Wrap(services.ErrConflict, "order status changed concurrently")
		}}
		w := doJSON(orderRouter(svc, farmer), http.MethodPut, "/api/orders/"+orderID.Hex()+"/status",
			models.UpdateOrderStatusRequest{Status: models.OrderConfirmed})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown status", func(t *testing.T) {
		w := doJSON(orderRouter(&fakeOrderService{}, farmer), http.MethodPut, "/api/orders/"+orderID.Hex()+"/status",
			map[string]string{"status": "teleported"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestUpdatePaymentStatus(t *testing.T) {
	client := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleClient}
	orderID := primitive.NewObjectID()

	svc := &fakeOrderService{updatePayment: func(actor services.Actor, id primitive.ObjectID, req models.UpdatePaymentStatusRequest) (*models.Order, error) {
		o := &models.Order{ID: id, ClientID: actor.UserID, FarmerID: primitive.NewObjectID()}
		if err := models.ApplyPaymentUpdate(o, actor.UserID, req, time.Now()); err != nil {
			return nil, err
		}
		return o, nil
	}}

	w := doJSON(orderRouter(svc, client), http.MethodPut, "/api/orders/"+orderID.Hex()+"/payment",
		models.UpdatePaymentStatusRequest{PaymentStatus: models.PaymentPaid})
	require.Equal(t, http.StatusOK, w.Code)

	var order models.Order
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &order))
	assert.Equal(t, models.PaymentPaid, order.PaymentStatus)
	assert.NotNil(t, order.PaymentTime)

	w = doJSON(orderRouter(svc, client), http.MethodPut, "/api/orders/"+orderID.Hex()+"/payment", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func adminRouter(svc services.ApplicationService, actor services.Actor) *gin.Engine {
	ac := InitApplicationController(svc)
	r := gin.New()
	admin := r.Group("/admin/applications", as(actor))
	admin.GET("", ac.ListApplications())
	admin.GET("/stats", ac.ApplicationStats())
	admin.GET("/:id", ac.GetApplication())
	admin.PUT("/:id/review", ac.ReviewApplication())
	r.POST("/api/vendors/farmer/applications", as(actor), ac.SubmitFarmerApplication())
	return r
}

func TestReviewApplication(t *testing.T) {
	admin := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
	appID := primitive.NewObjectID()

	t.Run("rejected with reason", func(t *testing.T) {
		svc := &fakeApplicationService{review: func(reviewer, id primitive.ObjectID, role models.VendorRole, req models.ReviewApplicationRequest) (*models.Application, error) {
			assert.Equal(t, admin.UserID, reviewer)
			assert.Equal(t, models.VendorDeliveryAgent, role)

			app := &models.Application{VendorProfile: models.VendorProfile{ID: id, Status: models.ApplicationPending}}
			if _, err := models.ApplyReview(&app.VendorProfile, req, reviewer, time.Now()); err != nil {
				return nil, err
			}
			return app, nil
		}}

		w := doJSON(adminRouter(svc, admin), http.MethodPut, "/admin/applications/"+appID.Hex()+"/review?role=delivery-agent",
			models.ReviewApplicationRequest{Decision: models.DecisionReject, RejectionReason: "blurry licence"})
		require.Equal(t, http.StatusOK, w.Code)

		var app models.Application
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &app))
		assert.Equal(t, models.ApplicationRejected, app.Status)
		require.NotNil(t, app.AdminReview)
		assert.Equal(t, "blurry licence", app.AdminReview.RejectionReason)
		assert.NotNil(t, app.RejectedAt)
	})

	t.Run("re-review of terminal state", func(t *testing.T) {
		svc := &fakeApplicationService{review: func(primitive.ObjectID, primitive.ObjectID, models.VendorRole, models.ReviewApplicationRequest) (*models.Application, error) {
			return nil, errors.Wrap(services.ErrConflict, models.ErrTransitionNotAllowed.Error())
		}}
		w := doJSON(adminRouter(svc, admin), http.MethodPut, "/admin/applications/"+appID.Hex()+"/review",
			models.ReviewApplicationRequest{Decision: models.DecisionApprove})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown decision", func(t *testing.T) {
		w := doJSON(adminRouter(&fakeApplicationService{}, admin), http.MethodPut, "/admin/applications/"+appID.Hex()+"/review",
			map[string]string{"decision": "maybe"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown role", func(t *testing.T) {
		w := doJSON(adminRouter(&fakeApplicationService{}, admin), http.MethodPut, "/admin/applications/"+appID.Hex()+"/review?role=baker",
			models.ReviewApplicationRequest{Decision: models.DecisionApprove})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestListApplications(t *testing.T) {
	admin := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}

	svc := &fakeApplicationService{list: func(filter models.ApplicationFilter, p util.PaginationArgs) ([]models.Application, int64, error) {
		assert.Equal(t, models.ApplicationFilter{Role: models.VendorFarmer, Status: models.ApplicationUnderReview, City: "Tamale"}, filter)
		return []models.Application{}, 0, nil
	}}

	w := doJSON(adminRouter(svc, admin), http.MethodGet, "/admin/applications?role=farmer&status=under_review&city=Tamale", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(adminRouter(svc, admin), http.MethodGet, "/admin/applications?status=archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApplicationStats(t *testing.T) {
	admin := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleAdmin}
	svc := &fakeApplicationService{stats: func() (models.ApplicationStats, error) {
		s := models.NewApplicationStats()
		s.Add(models.VendorFarmer, models.ApplicationPending, 3)
		return s, nil
	}}

	w := doJSON(adminRouter(svc, admin), http.MethodGet, "/admin/applications/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats models.ApplicationStats
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &stats))
	assert.Equal(t, int64(3), stats.Total)
	assert.Equal(t, int64(3), stats.ByRole[models.VendorFarmer][models.ApplicationPending])
}

func TestGetApplicationForbidden(t *testing.T) {
	client := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleClient}
	svc := &fakeApplicationService{get: func(services.Actor, primitive.ObjectID, models.VendorRole) (*models.Application, error) {
		return nil, errors.Wrap(services.ErrForbidden, "application belongs to another user")
	}}

	w := doJSON(adminRouter(svc, client), http.MethodGet, "/admin/applications/"+primitive.NewObjectID().Hex(), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSubmitFarmerApplication(t *testing.T) {
	user := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleClient}
	req := models.FarmerApplicationRequest{
		ApplicationInput: models.ApplicationInput{
			DisplayName: "Green Acres",
			Address:     models.Address{Street: "1 Farm Rd", City: "Kumasi", State: "Ashanti", Country: "GH"},
			ContactInfo: []models.ContactInfo{{Type: models.ContactPhone, Value: "+233200000000"}},
			Documents:   []models.DocumentInput{{Name: "id", FileType: "application/pdf", URL: "https://files.example/id.pdf"}},
		},
		FarmDetails: models.FarmDetails{FarmName: "Green Acres", FarmSize: 4, SizeUnit: "hectares", FarmingType: "mixed", Crops: []string{"yam"}},
	}

	t.Run("created", func(t *testing.T) {
		svc := &fakeApplicationService{submit: func(userID primitive.ObjectID, in models.FarmerApplicationRequest) (*models.Farmer, error) {
			assert.Equal(t, user.UserID, userID)
			return &models.Farmer{VendorProfile: models.VendorProfile{UserID: userID, Status: models.ApplicationPending}}, nil
		}}
		w := doJSON(adminRouter(svc, user), http.MethodPost, "/api/vendors/farmer/applications", req)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("already active", func(t *testing.T) {
		svc := &fakeApplicationService{submit: func(primitive.ObjectID, models.FarmerApplicationRequest) (*models.Farmer, error) {
			return nil, errors.Wrap(services.ErrConflict, "a farmer application with status pending already exists")
		}}
		w := doJSON(adminRouter(svc, user), http.MethodPost, "/api/vendors/farmer/applications", req)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("missing documents", func(t *testing.T) {
		bad := req
		bad.Documents = nil
		w := doJSON(adminRouter(&fakeApplicationService{}, user), http.MethodPost, "/api/vendors/farmer/applications", bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func notificationRouter(svc services.NotificationService, actor *services.Actor) *gin.Engine {
	nc := InitNotificationController(svc)
	r := gin.New()
	g := r.Group("/notification")
	if actor != nil {
		g.Use(as(*actor))
	}
	g.GET("/count", nc.GetUnreadCount())
	g.GET("", nc.GetNotifications())
	g.POST("", nc.CreateNotification())
	g.PATCH("/mark-all-read", nc.MarkAllAsRead())
	g.PATCH("/:id/read", nc.MarkAsRead())
	g.DELETE("/:id", nc.DeleteNotification())
	return r
}

func TestNotificationEndpoints(t *testing.T) {
	user := services.Actor{UserID: primitive.NewObjectID(), Role: models.RoleFarmer}

	t.Run("unauthenticated", func(t *testing.T) {
		w := doJSON(notificationRouter(&fakeNotificationService{}, nil), http.MethodGet, "/notification/count", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("count", func(t *testing.T) {
		svc := &fakeNotificationService{count: func(userID primitive.ObjectID) (int64, error) {
			assert.Equal(t, user.UserID, userID)
			return 4, nil
		}}
		w := doJSON(notificationRouter(svc, &user), http.MethodGet, "/notification/count", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"unreadCount":4}`, string(decode(t, w).Data))
	})

	t.Run("list with filters", func(t *testing.T) {
		svc := &fakeNotificationService{list: func(_ primitive.ObjectID, f models.NotificationFilters, _ util.PaginationArgs) ([]models.UserNotification, int64, error) {
			assert.Equal(t, []models.NotificationType{models.NotificationOrderReceived, models.NotificationPaymentReceived}, f.Types)
			assert.Equal(t, models.CategoryOrder, f.Category)
			require.NotNil(t, f.IsRead)
			assert.False(t, *f.IsRead)
			return []models.UserNotification{}, 0, nil
		}}
		w := doJSON(notificationRouter(svc, &user), http.MethodGet,
			"/notification?types=order_received,payment_received&category=order&isRead=false", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("list rejects unknown type", func(t *testing.T) {
		w := doJSON(notificationRouter(&fakeNotificationService{}, &user), http.MethodGet, "/notification?types=fax", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create", func(t *testing.T) {
		svc := &fakeNotificationService{create: func(actor services.Actor, req models.UserNotificationRequest) (*models.UserNotification, error) {
			n := models.NewUserNotification(actor.UserID, req, time.Now())
			return &n, nil
		}}
		w := doJSON(notificationRouter(svc, &user), http.MethodPost, "/notification", models.UserNotificationRequest{
			Type: models.NotificationSystemAlert, Title: "Maintenance", Message: "Tonight at 22:00",
		})
		require.Equal(t, http.StatusCreated, w.Code)

		var n models.UserNotification
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &n))
		assert.Equal(t, models.CategorySystem, n.Category)
		assert.Equal(t, models.NotificationPriorityMedium, n.Priority)
	})

	t.Run("create for another user", func(t *testing.T) {
		svc := &fakeNotificationService{create: func(services.Actor, models.UserNotificationRequest) (*models.UserNotification, error) {
			return nil, errors.Wrap(services.ErrForbidden, "only admins can notify other users")
		}}
		other := primitive.NewObjectID()
		w := doJSON(notificationRouter(svc, &user), http.MethodPost, "/notification", models.UserNotificationRequest{
			UserID: &other, Type: models.NotificationPromotionalOffer, Title: "Deal", Message: "Half price",
		})
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("mark read missing", func(t *testing.T) {
		svc := &fakeNotificationService{markRead: func(primitive.ObjectID, primitive.ObjectID) error {
			return errors.Wrap(services.ErrNotFound, "notification not found")
		}}
		w := doJSON(notificationRouter(svc, &user), http.MethodPatch, "/notification/"+primitive.NewObjectID().Hex()+"/read", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestErrorStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, ErrorStatus(errors.Wrap(services.ErrNotFound, "x")))
	assert.Equal(t, http.StatusForbidden, ErrorStatus(errors.Wrap(services.ErrForbidden, "x")))
	assert.Equal(t, http.StatusConflict, ErrorStatus(errors.Wrap(services.ErrConflict, "x")))
	assert.Equal(t, http.StatusBadRequest, ErrorStatus(errors.Wrap(services.ErrBadRequest, "x")))
	assert.Equal(t, http.StatusGatewayTimeout, ErrorStatus(errors.Wrap(context.DeadlineExceeded, "find")))
	assert.Equal(t, http.StatusInternalServerError, ErrorStatus(errors.New("boom")))
}
