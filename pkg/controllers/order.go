package controllers

import (
	"net/http"
	"strings"

	"agrimarket-api-io/api/internal/helpers"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/services"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const IdempotencyKeyHeader = "Idempotency-Key"

type OrderController struct {
	orderService services.OrderService
}

func InitOrderController(orderService services.OrderService) *OrderController {
	return &OrderController{orderService: orderService}
}

// CreateOrder handles POST /api/orders
func (oc *OrderController) CreateOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		var req models.CreateOrderRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if len(key) > 128 {
			util.HandleError(c, http.StatusBadRequest, errors.New("Idempotency-Key must be at most 128 characters"))
			return
		}

		orders, replayed, err := oc.orderService.CreateOrders(ctx, actor.UserID, req, key)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		if replayed {
			c.Header("Idempotent-Replayed", "true")
			util.HandleSuccess(c, http.StatusOK, "Orders already created", orders)
			return
		}
		util.HandleSuccess(c, http.StatusCreated, "Orders created successfully", orders)
	}
}

// GetOrders handles GET /api/orders
func (oc *OrderController) GetOrders() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		filter := models.OrderFilter{
			Status:        models.OrderStatus(c.Query("status")),
			PaymentStatus: models.PaymentStatus(c.Query("paymentStatus")),
		}
		if filter.Status != "" && !filter.Status.IsValid() {
			util.HandleError(c, http.StatusBadRequest, errors.Errorf("invalid status %q", filter.Status))
			return
		}
		if filter.PaymentStatus != "" && !filter.PaymentStatus.IsValid() {
			util.HandleError(c, http.StatusBadRequest, errors.Errorf("invalid paymentStatus %q", filter.PaymentStatus))
			return
		}

		paginationArgs := helpers.GetPaginationArgs(c)
		orders, count, err := oc.orderService.GetOrders(ctx, actor, filter, paginationArgs)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		HandlePaginationAndResponse(c, orders, count, paginationArgs, "success")
	}
}

// GetOrder handles GET /api/orders/:id
func (oc *OrderController) GetOrder() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		orderID, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}

		order, err := oc.orderService.GetOrder(ctx, actor, orderID)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", order)
	}
}

// UpdateOrderStatus handles PUT /api/orders/:id/status
func (oc *OrderController) UpdateOrderStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		orderID, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}

		var req models.UpdateOrderStatusRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		order, err := oc.orderService.UpdateOrderStatus(ctx, actor, orderID, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Order status updated", order)
	}
}

// UpdatePaymentStatus handles PUT /api/orders/:id/payment
func (oc *OrderController) UpdatePaymentStatus() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		orderID, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}

		var req models.UpdatePaymentStatusRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		order, err := oc.orderService.UpdatePaymentStatus(ctx, actor, orderID, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Payment status updated", order)
	}
}
