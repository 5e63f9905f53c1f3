package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v78"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	ordermodel "shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/payment/model"
)

// store is an in-memory stand-in for the orders, products, carts and
// callback log tables. txMu serializes transactions the way row locks
// serialize conflicting updates on the same order.
type store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	orders     map[uuid.UUID]*ordermodel.Order
	stock      map[uuid.UUID]int
	cartClears map[uuid.UUID]int
	logs       []*model.CallbackLog
	markPaidN  int
}

func newStore() *store {
	return &store{
		orders:     map[uuid.UUID]*ordermodel.Order{},
		stock:      map[uuid.UUID]int{},
		cartClears: map[uuid.UUID]int{},
	}
}

type snapshot struct {
	orders     map[uuid.UUID]ordermodel.Order
	stock      map[uuid.UUID]int
	cartClears map[uuid.UUID]int
}

func (s *store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := snapshot{
		orders:     map[uuid.UUID]ordermodel.Order{},
		stock:      map[uuid.UUID]int{},
		cartClears: map[uuid.UUID]int{},
	}
	for k, v := range s.orders {
		snap.orders[k] = *v
	}
	for k, v := range s.stock {
		snap.stock[k] = v
	}
	for k, v := range s.cartClears {
		snap.cartClears[k] = v
	}
	return snap
}

func (s *store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = map[uuid.UUID]*ordermodel.Order{}
	for k, v := range snap.orders {
		o := v
		s.orders[k] = &o
	}
	s.stock = snap.stock
	s.cartClears = snap.cartClears
}

// WithinTx: all-or-nothing, one transaction at a time
func (s *store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snap := s.snapshot()
	if err := fn(ctx); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

// ---- OrderStore ----

func (s *store) FindByID(_ context.Context, id uuid.UUID) (*ordermodel.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, ordermodel.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (s *store) MarkPaid(_ context.Context, id uuid.UUID, txnNo string, stockCommitted bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.IsPaid || o.PaymentMethod == ordermodel.PaymentMethodCOD {
		return false, nil
	}
	if o.Status != ordermodel.StatusPendingPayment && o.Status != ordermodel.StatusCancelled {
		return false, nil
	}
	o.IsPaid = true
	o.Status = ordermodel.StatusPaid
	o.GatewayTxnNo = &txnNo
	o.StockCommitted = stockCommitted
	s.markPaidN++
	return true, nil
}

func (s *store) CancelPending(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok || o.IsPaid || o.Status != ordermodel.StatusPendingPayment {
		return false, nil
	}
	o.Status = ordermodel.StatusCancelled
	return true, nil
}

// ---- inventory ProductRepository ----

func (s *store) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) (*inventorymodel.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.stock[id]
	if !ok || q+delta < 0 {
		return nil, false, nil
	}
	s.stock[id] = q + delta
	return &inventorymodel.Product{ID: id, Quantity: q + delta}, true, nil
}

func (s *store) FindProduct(id uuid.UUID) (*inventorymodel.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.stock[id]
	if !ok {
		return nil, inventorymodel.NewProductNotFoundError(id)
	}
	return &inventorymodel.Product{ID: id, Quantity: q}, nil
}

// products adapts store to the inventory repository's FindByID name clash
type products struct{ *store }

func (p products) FindByID(_ context.Context, id uuid.UUID) (*inventorymodel.Product, error) {
	return p.FindProduct(id)
}

// ---- CartClearer ----

func (s *store) ClearCart(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cartClears[userID]++
	return 1, nil
}

// ---- CallbackLogRepository ----

func (s *store) Create(_ context.Context, log *model.CallbackLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, log)
	return nil
}

func (s *store) ListByOrderRef(_ context.Context, ref string) ([]*model.CallbackLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.CallbackLog
	for _, l := range s.logs {
		if l.OrderRef == ref {
			out = append(out, l)
		}
	}
	return out, nil
}

// ---- helpers ----

func (s *store) quantity(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stock[id]
}

func (s *store) clears(userID uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cartClears[userID]
}

func (s *store) order(id uuid.UUID) ordermodel.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.orders[id]
}

// ---- Stripe checkout sessions ----

// fakeSessions serves checkout sessions the way Stripe's retrieve endpoint does.
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*stripe.CheckoutSession
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: map[string]*stripe.CheckoutSession{}}
}

func (f *fakeSessions) put(s *stripe.CheckoutSession) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[s.ID] = s
}

func (f *fakeSessions) New(_ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	return nil, errors.New("not used in settlement")
}

func (f *fakeSessions) Get(id string, _ *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[id]
	if !ok {
		return nil, fmt.Errorf("no such checkout session: %s", id)
	}
	cp := *s
	return &cp, nil
}

// signedWebhook builds a checkout session event and its Stripe-Signature header
func signedWebhook(sessionID, eventType string) ([]byte, string) {
	payload := []byte(fmt.Sprintf(
		`{"id":"evt_test","object":"event","api_version":%q,"type":%q,"data":{"object":{"id":%q,"object":"checkout.session"}}}`,
		stripe.APIVersion, eventType, sessionID))

	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(webhookSecret))
	mac.Write([]byte(fmt.Sprintf("%d.%s", ts, payload)))
	return payload, fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}
