package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	kafkago "github.com/segmentio/kafka-go"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/freshkart/freshkart-api/internal/apperr"
	"github.com/freshkart/freshkart-api/internal/cart"
	"github.com/freshkart/freshkart-api/internal/catalog"
)

type fakeOrders struct {
	byID map[primitive.ObjectID]*Order
}

func newFakeOrders() *fakeOrders {
	return &fakeOrders{byID: map[primitive.ObjectID]*Order{}}
}

func (f *fakeOrders) Insert(_ context.Context, o *Order) (primitive.ObjectID, error) {
	id := primitive.NewObjectID()
	cp := *o
	cp.ID = id
	f.byID[id] = &cp
	return id, nil
}

func (f *fakeOrders) FindByID(_ context.Context, id primitive.ObjectID) (*Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOrders) PageAll(_ context.Context, _, _ int64) ([]Order, int64, error) {
	out := make([]Order, 0, len(f.byID))
	for _, o := range f.byID {
		out = append(out, *o)
	}
	return out, 1, nil
}

func (f *fakeOrders) PageByUser(_ context.Context, userID primitive.ObjectID, _, _ int64) ([]Order, int64, error) {
	var out []Order
	for _, o := range f.byID {
		if o.UserID == userID {
			out = append(out, *o)
		}
	}
	return out, 1, nil
}

func (f *fakeOrders) Apply(_ context.Context, id primitive.ObjectID, u StatusUpdate) (*Order, error) {
	o, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	u.apply(o)
	cp := *o
	return &cp, nil
}

type fakeCarts struct {
	cart    *cart.Cart
	deleted bool
}

func (f *fakeCarts) FindByUser(_ context.Context, userID primitive.ObjectID) (*cart.Cart, error) {
	if f.cart == nil || f.cart.UserID != userID || f.deleted {
		return nil, nil
	}
	return f.cart, nil
}

func (f *fakeCarts) DeleteByUser(_ context.Context, _ primitive.ObjectID) (bool, error) {
	if f.cart == nil || f.deleted {
		return false, nil
	}
	f.deleted = true
	return true, nil
}

type fakeProducts struct {
	byID map[primitive.ObjectID]*catalog.Product
}

func (f *fakeProducts) FindByID(_ context.Context, id primitive.ObjectID) (*catalog.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, nil
	}
	return p, nil
}

type fakeCache struct {
	m map[string][]byte
}

func (f *fakeCache) Set(_ context.Context, orderID string, doc any) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	f.m[orderID] = b
	return nil
}

func (f *fakeCache) Get(_ context.Context, orderID string) (json.RawMessage, bool, error) {
	b, ok := f.m[orderID]
	return b, ok, nil
}

type fakePub struct {
	keys   [][]byte
	values [][]byte
}

func (f *fakePub) Publish(key, value []byte, _ ...kafkago.Header) {
	f.keys = append(f.keys, key)
	f.values = append(f.values, value)
}

func newProduct(price float64, stock int) *catalog.Product {
	return &catalog.Product{
		ID:   primitive.NewObjectID(),
		Name: "Basmati Rice",
		Variants: []catalog.Variant{{
			ID:            primitive.NewObjectID(),
			Weight:        "1kg",
			InPrice:       price * 0.8,
			OutPrice:      price,
			StockQuantity: stock,
		}},
		IsListed: true,
	}
}

func testService(t *testing.T, products ...*catalog.Product) (*Service, *fakeOrders, *fakeCarts, *fakePub, primitive.ObjectID) {
	t.Helper()
	userID := primitive.NewObjectID()
	byID := map[primitive.ObjectID]*catalog.Product{}
	items := make([]cart.Item, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		items = append(items, cart.Item{ProductID: p.ID, VariantID: p.Variants[0].ID, Quantity: 2})
	}
	carts := &fakeCarts{cart: &cart.Cart{ID: primitive.NewObjectID(), UserID: userID, Items: items}}
	orders := newFakeOrders()
	placed := &fakePub{}
	svc := &Service{
		Orders:    orders,
		Carts:     carts,
		Products:  &fakeProducts{byID: byID},
		Placed:    placed,
		StatusPub: &fakePub{},
		Producer:  "test",
	}
	return svc, orders, carts, placed, userID
}

func rejectionStatus(t *testing.T, err error, want int) {
	t.Helper()
	rej, ok := apperr.AsRejection(err)
	if !ok {
		t.Fatalf("expected rejection, got %v", err)
	}
	if rej.Status != want {
		t.Fatalf("rejection status = %d, want %d (%s)", rej.Status, want, rej.Message)
	}
}

func TestPlaceOrderSnapshotsCart(t *testing.T) {
	ctx := context.Background()
	p1 := newProduct(100, 50)
	p2 := newProduct(40, 10)
	p2.Name = "Toor Dal"
	svc, _, carts, placed, userID := testService(t, p1, p2)

	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodRazorpay})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if len(o.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(o.Items))
	}
	// 2*100 + 2*40
	if o.Amount != 280 {
		t.Fatalf("amount = %v, want 280", o.Amount)
	}
	if o.Currency != "INR" {
		t.Fatalf("currency = %q, want INR", o.Currency)
	}
	if o.PaymentStatus != PaymentPending || o.OrderStatus != OrderProcessing {
		t.Fatalf("unexpected initial statuses: %s/%s", o.PaymentStatus, o.OrderStatus)
	}
	if !carts.deleted {
		t.Fatal("cart should be deleted after checkout")
	}
	if len(placed.values) != 1 {
		t.Fatalf("published %d events, want 1", len(placed.values))
	}

	// later catalog edits must not touch the snapshot
	p1.Variants[0].OutPrice = 999
	p1.Name = "renamed"
	if o.Items[0].OutPrice != 100 || o.Items[0].Name != "Basmati Rice" {
		t.Fatal("order snapshot changed with the catalog")
	}
}

func TestPlaceOrderDiscountClampsAtZero(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))

	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD, DiscountAmount: 500})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if o.Amount != 0 {
		t.Fatalf("amount = %v, want 0", o.Amount)
	}
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	ctx := context.Background()
	svc, _, carts, _, userID := testService(t)
	carts.cart.Items = nil

	_, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD})
	rejectionStatus(t, err, http.StatusBadRequest)
}

func TestPlaceOrderUnknownMethod(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))

	_, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: "PayPal"})
	rejectionStatus(t, err, http.StatusBadRequest)
}

func TestPaymentTerminalStates(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodRazorpay})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	upd, err := svc.SetPaymentStatus(ctx, o.ID, PaymentCompleted, "", "")
	if err != nil {
		t.Fatalf("complete payment: %v", err)
	}
	if upd.PaymentCompletedAt == nil {
		t.Fatal("paymentCompletedAt not set")
	}

	_, err = svc.SetPaymentStatus(ctx, o.ID, PaymentFailed, "card declined", "")
	rejectionStatus(t, err, http.StatusBadRequest)
}

func TestDeliveryRequiresPayment(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodRazorpay})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if _, err := svc.SetOrderStatus(ctx, o.ID, OrderShipped, "TRK1", ""); err != nil {
		t.Fatalf("ship: %v", err)
	}

	_, err = svc.SetOrderStatus(ctx, o.ID, OrderDelivered, "", "")
	rejectionStatus(t, err, http.StatusBadRequest)

	if _, err := svc.SetPaymentStatus(ctx, o.ID, PaymentCompleted, "", ""); err != nil {
		t.Fatalf("pay: %v", err)
	}
	upd, err := svc.SetOrderStatus(ctx, o.ID, OrderDelivered, "", "")
	if err != nil {
		t.Fatalf("deliver after payment: %v", err)
	}
	if upd.DeliveredAt == nil {
		t.Fatal("deliveredAt not set")
	}
}

func TestCODDeliveryCompletesPayment(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if _, err := svc.SetOrderStatus(ctx, o.ID, OrderShipped, "", ""); err != nil {
		t.Fatalf("ship: %v", err)
	}

	upd, err := svc.SetOrderStatus(ctx, o.ID, OrderDelivered, "", "")
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	if upd.PaymentStatus != PaymentCompleted {
		t.Fatalf("payment status = %s, want completed", upd.PaymentStatus)
	}
	if upd.PaymentCompletedAt == nil {
		t.Fatal("paymentCompletedAt not set on COD delivery")
	}
}

func TestSetOrderStatusRejectsCancelled(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	_, err = svc.SetOrderStatus(ctx, o.ID, OrderCancelled, "", "")
	rejectionStatus(t, err, http.StatusBadRequest)

	upd, err := svc.Cancel(ctx, o.ID, "changed my mind", "")
	if err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if upd.OrderStatus != OrderCancelled || upd.CancellationReason != "changed my mind" {
		t.Fatalf("unexpected cancel result: %s / %q", upd.OrderStatus, upd.CancellationReason)
	}
}

func TestReturnFlow(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// not delivered yet
	_, err = svc.RequestReturn(ctx, o.ID, userID, "")
	rejectionStatus(t, err, http.StatusBadRequest)

	// someone else's order is invisible
	if _, err := svc.RequestReturn(ctx, o.ID, primitive.NewObjectID(), ""); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found for foreign order, got %v", err)
	}

	if _, err := svc.SetOrderStatus(ctx, o.ID, OrderShipped, "", ""); err != nil {
		t.Fatalf("ship: %v", err)
	}
	if _, err := svc.SetOrderStatus(ctx, o.ID, OrderDelivered, "", ""); err != nil {
		t.Fatalf("deliver: %v", err)
	}

	upd, err := svc.RequestReturn(ctx, o.ID, userID, "")
	if err != nil {
		t.Fatalf("request return: %v", err)
	}
	if upd.ReturnStatus != ReturnRequested {
		t.Fatalf("return status = %s, want requested", upd.ReturnStatus)
	}

	upd, err = svc.ResolveReturn(ctx, o.ID, true, "")
	if err != nil {
		t.Fatalf("approve return: %v", err)
	}
	if upd.ReturnStatus != ReturnApproved {
		t.Fatalf("return status = %s, want approved", upd.ReturnStatus)
	}

	// approval is final
	_, err = svc.ResolveReturn(ctx, o.ID, false, "")
	rejectionStatus(t, err, http.StatusBadRequest)
}

func TestRefundGuards(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodRazorpay})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	// neither an approved return nor a paid cancellation
	_, err = svc.SetRefundStatus(ctx, o.ID, RefundInitiated, "")
	rejectionStatus(t, err, http.StatusBadRequest)

	if _, err := svc.SetPaymentStatus(ctx, o.ID, PaymentCompleted, "", ""); err != nil {
		t.Fatalf("pay: %v", err)
	}
	if _, err := svc.Cancel(ctx, o.ID, "", ""); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	upd, err := svc.SetRefundStatus(ctx, o.ID, RefundInitiated, "")
	if err != nil {
		t.Fatalf("initiate refund for paid cancelled order: %v", err)
	}
	if upd.RefundStatus != RefundInitiated {
		t.Fatalf("refund status = %s, want initiated", upd.RefundStatus)
	}
	if _, err := svc.SetRefundStatus(ctx, o.ID, RefundCompleted, ""); err != nil {
		t.Fatalf("complete refund: %v", err)
	}
}

func TestGetForUserHidesForeignOrders(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _, userID := testService(t, newProduct(10, 5))
	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	if _, err := svc.GetForUser(ctx, o.ID, userID); err != nil {
		t.Fatalf("own order: %v", err)
	}
	if _, err := svc.GetForUser(ctx, o.ID, primitive.NewObjectID()); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatusWarmsAndReadsCache(t *testing.T) {
	ctx := context.Background()
	svc, orders, _, _, userID := testService(t, newProduct(10, 5))
	cache := &fakeCache{m: map[string][]byte{}}
	svc.Cache = cache

	o, err := svc.PlaceOrder(ctx, userID, PlaceOrderInput{PaymentMethod: MethodCOD})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	delete(cache.m, o.ID.Hex())

	doc, err := svc.Status(ctx, o.ID)
	if err != nil {
		t.Fatalf("status after cache miss: %v", err)
	}
	if doc.OrderID != o.ID.Hex() || doc.OrderStatus != OrderProcessing {
		t.Fatalf("unexpected status doc %+v", doc)
	}
	if _, ok := cache.m[o.ID.Hex()]; !ok {
		t.Fatal("miss did not warm the cache")
	}

	// A hit must not touch the store.
	delete(orders.byID, o.ID)
	doc, err = svc.Status(ctx, o.ID)
	if err != nil {
		t.Fatalf("status from cache: %v", err)
	}
	if doc.PaymentStatus != PaymentPending {
		t.Fatalf("payment status = %s, want pending", doc.PaymentStatus)
	}
}
