package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrEmptyCart           = errors.New("order must contain at least one item")
	ErrInvalidQuantity     = errors.New("item quantity must be greater than zero")
	ErrProductNotFound     = errors.New("product not found")
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrProductUnlisted     = errors.New("product is not available for sale")
	ErrNotOrderVendor      = errors.New("only the order's vendor can update its status")
	ErrNotOrderParty       = errors.New("order belongs to another user")
	ErrNothingToUpdate     = errors.New("no status field supplied")
	ErrOrderFinalized      = errors.New("order is already delivered or cancelled")
	ErrNegativeDeliveryFee = errors.New("delivery fee cannot be negative")
)

// Product is owned by the catalog; orders only read it.
type Product struct {
	ID          primitive.ObjectID `bson:"_id" json:"_id"`
	FarmerID    primitive.ObjectID `bson:"farmer_id" json:"farmerId"`
	Name        string             `bson:"name" json:"name"`
	Unit        string             `bson:"unit" json:"unit"`
	Price       float64            `bson:"price" json:"price"`
	IsAvailable bool               `bson:"is_available" json:"isAvailable"`
}

type OrderItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"productId"`
	Name      string             `bson:"name" json:"name"`
	Unit      string             `bson:"unit,omitempty" json:"unit,omitempty"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice float64            `bson:"unit_price" json:"unitPrice"`
	LineTotal float64            `bson:"line_total" json:"lineTotal"`
}

type Order struct {
	ID              primitive.ObjectID `bson:"_id" json:"_id"`
	CheckoutID      primitive.ObjectID `bson:"checkout_id" json:"checkoutId"`
	ClientID        primitive.ObjectID `bson:"client_id" json:"clientId"`
	FarmerID        primitive.ObjectID `bson:"farmer_id" json:"farmerId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	ShippingAddress Address            `bson:"shipping_address" json:"shippingAddress"`
	PaymentMethod   OrderPaymentMethod `bson:"payment_method" json:"paymentMethod"`
	TotalAmount     float64            `bson:"total_amount" json:"totalAmount"`
	DeliveryFee     float64            `bson:"delivery_fee" json:"deliveryFee"`
	Status          OrderStatus        `bson:"status" json:"status"`
	DeliveryStatus  DeliveryStatus     `bson:"delivery_status" json:"deliveryStatus"`
	PaymentStatus   PaymentStatus      `bson:"payment_status" json:"paymentStatus"`
	IsDelivered     bool               `bson:"is_delivered" json:"isDelivered"`
	DeliveredAt     *time.Time         `bson:"delivered_at,omitempty" json:"deliveredAt,omitempty"`
	PaymentTime     *time.Time         `bson:"payment_time,omitempty" json:"paymentTime,omitempty"`
	Notes           string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt       time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updated_at" json:"updatedAt"`
}

// GrandTotal is the amount the client pays for this order.
func (o Order) GrandTotal() float64 {
	return decimal.NewFromFloat(o.TotalAmount).Add(decimal.NewFromFloat(o.DeliveryFee)).Round(2).InexactFloat64()
}

// IsParty reports whether userID is the client or the vendor of the order.
func (o Order) IsParty(userID primitive.ObjectID) bool {
	return userID == o.ClientID || userID == o.FarmerID
}

// CanView reports whether a user with the given role may read the order.
func (o Order) CanView(userID primitive.ObjectID, role UserRole) bool {
	return role == RoleAdmin || o.IsParty(userID)
}

type CartItem struct {
	ProductID primitive.ObjectID `json:"productId" validate:"required"`
	Quantity  int                `json:"quantity" validate:"required,gt=0,lte=10000"`
}

// CreateOrderRequest is the checkout body. TotalAmount is what the client
// displayed; order totals are always recomputed from catalog prices.
type CreateOrderRequest struct {
	Items           []CartItem         `json:"orderItems" validate:"dive"`
	ShippingAddress Address            `json:"shippingAddress" validate:"required"`
	PaymentMethod   OrderPaymentMethod `json:"paymentMethod" validate:"required,enum"`
	TotalAmount     float64            `json:"totalAmount" validate:"gte=0"`
	DeliveryFee     float64            `json:"deliveryFee" validate:"gte=0"`
	Notes           string             `json:"notes" validate:"max=1000"`
}

// UnmarshalJSON accepts the older "items" key when "orderItems" is absent.
func (r *CreateOrderRequest) UnmarshalJSON(data []byte) error {
	type plain CreateOrderRequest
	aux := struct {
		*plain
		LegacyItems []CartItem `json:"items"`
	}{plain: (*plain)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.Items == nil && aux.LegacyItems != nil {
		r.Items = aux.LegacyItems
	}
	return nil
}

type UpdateOrderStatusRequest struct {
	Status         OrderStatus    `json:"status" validate:"omitempty,enum"`
	DeliveryStatus DeliveryStatus `json:"deliveryStatus" validate:"omitempty,enum"`
}

type UpdatePaymentStatusRequest struct {
	PaymentStatus PaymentStatus `json:"paymentStatus" validate:"required,enum"`
}

// OrderFilter narrows order listings.
type OrderFilter struct {
	Status        OrderStatus
	PaymentStatus PaymentStatus
}

// SplitCartByVendor groups cart items by the farmer that owns each product and
// builds one pending order per farmer. Unit prices are taken from products at
// call time. vendors holds the farmers that may currently sell. The delivery
// fee is split evenly across the orders with any remainder cent on the first.
func SplitCartByVendor(clientID primitive.ObjectID, req CreateOrderRequest, products map[primitive.ObjectID]Product, vendors map[primitive.ObjectID]bool, now time.Time) ([]Order, error) {
	if len(req.Items) == 0 {
		return nil, ErrEmptyCart
	}
	if req.DeliveryFee < 0 {
		return nil, ErrNegativeDeliveryFee
	}

	type group struct {
		farmerID primitive.ObjectID
		items    []OrderItem
		index    map[primitive.ObjectID]int
		total    decimal.Decimal
	}

	var farmers []primitive.ObjectID
	groups := map[primitive.ObjectID]*group{}

	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: product %s", ErrInvalidQuantity, item.ProductID.Hex())
		}
		product, ok := products[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrProductNotFound, item.ProductID.Hex())
		}
		if !product.IsAvailable {
			return nil, fmt.Errorf("%w: %s", ErrProductUnlisted, product.ID.Hex())
		}
		if !vendors[product.FarmerID] {
			return nil, fmt.Errorf("%w: %s", ErrVendorNotFound, product.FarmerID.Hex())
		}

		g, ok := groups[product.FarmerID]
		if !ok {
			g = &group{farmerID: product.FarmerID, index: map[primitive.ObjectID]int{}}
			groups[product.FarmerID] = g
			farmers = append(farmers, product.FarmerID)
		}

		price := decimal.NewFromFloat(product.Price)
		qty := decimal.NewFromInt(int64(item.Quantity))
		line := price.Mul(qty)
		g.total = g.total.Add(line)

		if i, dup := g.index[product.ID]; dup {
			merged := &g.items[i]
			merged.Quantity += item.Quantity
			merged.LineTotal = price.Mul(decimal.NewFromInt(int64(merged.Quantity))).Round(2).InexactFloat64()
			continue
		}
		g.index[product.ID] = len(g.items)
		g.items = append(g.items, OrderItem{
			ProductID: product.ID,
			Name:      product.Name,
			Unit:      product.Unit,
			Quantity:  item.Quantity,
			UnitPrice: product.Price,
			LineTotal: line.Round(2).InexactFloat64(),
		})
	}

	fees := SplitDeliveryFee(req.DeliveryFee, len(farmers))
	checkoutID := primitive.NewObjectID()
	orders := make([]Order, 0, len(farmers))
	for i, farmerID := range farmers {
		g := groups[farmerID]
		orders = append(orders, Order{
			ID:              primitive.NewObjectID(),
			CheckoutID:      checkoutID,
			ClientID:        clientID,
			FarmerID:        farmerID,
			Items:           g.items,
			ShippingAddress: req.ShippingAddress.Normalize(),
			PaymentMethod:   req.PaymentMethod,
			TotalAmount:     g.total.Round(2).InexactFloat64(),
			DeliveryFee:     fees[i],
			Status:          OrderPending,
			DeliveryStatus:  DeliveryPending,
			PaymentStatus:   PaymentPending,
			Notes:           req.Notes,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	return orders, nil
}

// SplitDeliveryFee divides fee into n parts rounded to cents. The parts
// always sum to fee rounded to cents.
func SplitDeliveryFee(fee float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	total := decimal.NewFromFloat(fee).Round(2)
	share := total.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	remainder := total.Sub(share.Mul(decimal.NewFromInt(int64(n))))

	parts := make([]float64, n)
	for i := range parts {
		parts[i] = share.InexactFloat64()
	}
	parts[0] = share.Add(remainder).InexactFloat64()
	return parts
}

// ApplyOrderStatusUpdate applies a vendor's status change. Marking either the
// order or its delivery as delivered stamps isDelivered and deliveredAt.
func ApplyOrderStatusUpdate(o *Order, actor primitive.ObjectID, req UpdateOrderStatusRequest, now time.Time) error {
	if actor != o.FarmerID {
		return ErrNotOrderVendor
	}
	if req.Status == "" && req.DeliveryStatus == "" {
		return ErrNothingToUpdate
	}
	if req.Status != "" && !req.Status.IsValid() {
		return fmt.Errorf("invalid order status: %q", req.Status)
	}
	if req.DeliveryStatus != "" && !req.DeliveryStatus.IsValid() {
		return fmt.Errorf("invalid delivery status: %q", req.DeliveryStatus)
	}
	if o.Status.IsFinal() {
		return fmt.Errorf("%w: %s", ErrOrderFinalized, o.Status)
	}

	if req.Status != "" {
		o.Status = req.Status
	}
	if req.DeliveryStatus != "" {
		o.DeliveryStatus = req.DeliveryStatus
	}

	if o.Status == OrderDelivered || o.DeliveryStatus == DeliveryDelivered {
		o.Status = OrderDelivered
		o.DeliveryStatus = DeliveryDelivered
		o.IsDelivered = true
		o.DeliveredAt = &now
	}
	o.UpdatedAt = now
	return nil
}

// ApplyPaymentUpdate records a payment status change by either party.
// Only a transition into paid stamps paymentTime; leaving paid clears it.
func ApplyPaymentUpdate(o *Order, actor primitive.ObjectID, req UpdatePaymentStatusRequest, now time.Time) error {
	if !o.IsParty(actor) {
		return ErrNotOrderParty
	}
	if !req.PaymentStatus.IsValid() {
		return fmt.Errorf("invalid payment status: %q", req.PaymentStatus)
	}

	switch {
	case req.PaymentStatus == PaymentPaid && o.PaymentStatus != PaymentPaid:
		o.PaymentTime = &now
	case req.PaymentStatus != PaymentPaid:
		o.PaymentTime = nil
	}
	o.PaymentStatus = req.PaymentStatus
	o.UpdatedAt = now
	return nil
}
