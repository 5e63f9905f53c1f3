package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	inventorymodel "shop-backend/internal/domains/inventory/model"
	"shop-backend/internal/domains/order/model"
	"shop-backend/internal/domains/order/repository"
	paymentgateway "shop-backend/internal/domains/payment/gateway"
	paymentmodel "shop-backend/internal/domains/payment/model"
	settingsmodel "shop-backend/internal/domains/settings/model"
)

// world is an in-memory stand-in for the orders, products and carts tables.
// Conditional updates check and write under one lock, like a row lock.
type world struct {
	mu   sync.Mutex
	txMu sync.Mutex

	orders     map[uuid.UUID]*model.Order
	products   map[uuid.UUID]*inventorymodel.Product
	cartClears map[uuid.UUID]int
	clock      time.Time

	deletePendingErr error
	staleUpdates     bool
}

func newWorld() *world {
	return &world{
		orders:     map[uuid.UUID]*model.Order{},
		products:   map[uuid.UUID]*inventorymodel.Product{},
		cartClears: map[uuid.UUID]int{},
		clock:      time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
}

func (w *world) addProduct(name string, offer int64, qty int, sizes ...string) *inventorymodel.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	p := &inventorymodel.Product{
		ID:         uuid.New(),
		Name:       name,
		Image:      name + ".jpg",
		Price:      decimal.NewFromInt(offer + offer/5),
		OfferPrice: decimal.NewFromInt(offer),
		Quantity:   qty,
		Sizes:      sizes,
		IsActive:   true,
	}
	w.products[p.ID] = p
	return p
}

func cloneOrder(o *model.Order) *model.Order {
	cp := *o
	cp.Items = append([]model.OrderItem(nil), o.Items...)
	return &cp
}

// ---- Transactor ----

func (w *world) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	w.txMu.Lock()
	defer w.txMu.Unlock()

	w.mu.Lock()
	orders := map[uuid.UUID]*model.Order{}
	for k, v := range w.orders {
		orders[k] = cloneOrder(v)
	}
	stock := map[uuid.UUID]int{}
	for k, v := range w.products {
		stock[k] = v.Quantity
	}
	clears := map[uuid.UUID]int{}
	for k, v := range w.cartClears {
		clears[k] = v
	}
	w.mu.Unlock()

	if err := fn(ctx); err != nil {
		w.mu.Lock()
		w.orders = orders
		for k, q := range stock {
			w.products[k].Quantity = q
		}
		w.cartClears = clears
		w.mu.Unlock()
		return err
	}
	return nil
}

// ---- products (ProductReader + inventory ProductRepository) ----

type productTable struct{ *world }

func (p productTable) FindByID(_ context.Context, id uuid.UUID) (*inventorymodel.Product, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.products[id]
	if !ok {
		return nil, inventorymodel.NewProductNotFoundError(id)
	}
	cp := *prod
	return &cp, nil
}

func (p productTable) AdjustQuantity(_ context.Context, id uuid.UUID, delta int) (*inventorymodel.Product, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	prod, ok := p.products[id]
	if !ok || prod.Quantity+delta < 0 {
		return nil, false, nil
	}
	prod.Quantity += delta
	cp := *prod
	return &cp, true, nil
}

func (w *world) quantity(id uuid.UUID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.products[id].Quantity
}

// ---- carts ----

func (w *world) ClearCart(_ context.Context, userID uuid.UUID) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cartClears[userID]++
	return 1, nil
}

func (w *world) clears(userID uuid.UUID) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cartClears[userID]
}

// ---- orders (OrderRepository) ----

type orderTable struct{ *world }

var _ repository.OrderRepository = orderTable{}

func (t orderTable) Create(_ context.Context, order *model.Order) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clock = t.clock.Add(time.Second)
	order.CreatedAt = t.clock
	order.UpdatedAt = t.clock
	t.orders[order.ID] = cloneOrder(order)
	return nil
}

func (t orderTable) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (t orderTable) sorted(keep func(*model.Order) bool) []*model.Order {
	var out []*model.Order
	for _, o := range t.orders {
		if keep(o) {
			out = append(out, cloneOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (t orderTable) ListByUser(_ context.Context, userID uuid.UUID) ([]*model.Order, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sorted(func(o *model.Order) bool { return o.UserID == userID }), nil
}

func (t orderTable) List(_ context.Context, filter repository.ListFilter) ([]*model.Order, int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	all := t.sorted(func(o *model.Order) bool { return filter.Status == nil || o.Status == *filter.Status })
	total := len(all)
	if filter.Offset >= total {
		return []*model.Order{}, total, nil
	}
	end := filter.Offset + filter.Limit
	if end > total {
		end = total
	}
	return all[filter.Offset:end], total, nil
}

func (t orderTable) SetGatewayRef(_ context.Context, id uuid.UUID, ref string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.GatewayRef = &ref
	return nil
}

func (t orderTable) MarkPaid(_ context.Context, id uuid.UUID, txnNo string, stockCommitted bool) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok || o.IsPaid || o.PaymentMethod == model.PaymentMethodCOD {
		return false, nil
	}
	if o.Status != model.StatusPendingPayment && o.Status != model.StatusCancelled {
		return false, nil
	}
	o.IsPaid, o.Status, o.GatewayTxnNo, o.StockCommitted = true, model.StatusPaid, &txnNo, stockCommitted
	return true, nil
}

func (t orderTable) CancelPending(_ context.Context, id uuid.UUID) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok || o.IsPaid || o.Status != model.StatusPendingPayment {
		return false, nil
	}
	o.Status = model.StatusCancelled
	return true, nil
}

func (t orderTable) UpdateStatus(_ context.Context, id uuid.UUID, from, to model.Status, stockCommitted bool) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok || o.Status != from || t.staleUpdates {
		return false, nil
	}
	o.Status, o.StockCommitted = to, stockCommitted
	return true, nil
}

func (t orderTable) UpdateAddress(_ context.Context, id uuid.UUID, address model.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.Address = address
	return nil
}

func (t orderTable) Delete(_ context.Context, id uuid.UUID, expected model.Status) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	o, ok := t.orders[id]
	if !ok || o.Status != expected || t.staleUpdates {
		return false, nil
	}
	delete(t.orders, id)
	return true, nil
}

func (t orderTable) DeletePending(_ context.Context, id uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.deletePendingErr != nil {
		return t.deletePendingErr
	}
	if o, ok := t.orders[id]; ok && o.Status == model.StatusPendingPayment && !o.IsPaid {
		delete(t.orders, id)
	}
	return nil
}

func (t orderTable) ListStalePending(_ context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []uuid.UUID
	for _, o := range t.orders {
		if o.Status == model.StatusPendingPayment && !o.IsPaid && o.CreatedAt.Before(cutoff) {
			ids = append(ids, o.ID)
		}
	}
	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

func (w *world) order(id uuid.UUID) (*model.Order, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	o, ok := w.orders[id]
	if !ok {
		return nil, false
	}
	return cloneOrder(o), true
}

// ---- settings ----

type fixedFees struct {
	mu       sync.Mutex
	settings settingsmodel.Settings
	err      error
}

func (f *fixedFees) Current(context.Context) (*settingsmodel.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	s := f.settings
	return &s, nil
}

func (f *fixedFees) set(shipping, tax string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings.ShippingFee = decimal.RequireFromString(shipping)
	f.settings.TaxRate = decimal.RequireFromString(tax)
}

// ---- gateway / scheduler mocks ----

type mockGateway struct {
	mock.Mock
	method model.PaymentMethod
}

func (m *mockGateway) Method() model.PaymentMethod { return m.method }

func (m *mockGateway) Initiate(ctx context.Context, order *model.Order) (*paymentgateway.Initiation, error) {
	args := m.Called(ctx, order)
	if init, ok := args.Get(0).(*paymentgateway.Initiation); ok {
		return init, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) VerifyCallback(ctx context.Context, params map[string]string) (*paymentmodel.Callback, error) {
	args := m.Called(ctx, params)
	if cb, ok := args.Get(0).(*paymentmodel.Callback); ok {
		return cb, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExpiry struct {
	mock.Mock
}

func (m *mockExpiry) ScheduleExpiry(ctx context.Context, orderID uuid.UUID, after time.Duration) error {
	return m.Called(ctx, orderID, after).Error(0)
}

var errGatewayDown = errors.New("gateway unavailable")
