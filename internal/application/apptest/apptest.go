// Package apptest wires the application services over an in-memory store
// with a small seeded catalog for tests.
package apptest

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Zhima-Mochi/minishop-orders/internal/application"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/account"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/catalog"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/checkout"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/order"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/orderitem"
	"github.com/Zhima-Mochi/minishop-orders/internal/application/payment"
	domcatalog "github.com/Zhima-Mochi/minishop-orders/internal/domain/catalog"
	domorder "github.com/Zhima-Mochi/minishop-orders/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/minishop-orders/internal/domain/payment"
	domuser "github.com/Zhima-Mochi/minishop-orders/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-orders/internal/infrastructure/memory"
)

// SeedPassword is the password of every seeded user.
const SeedPassword = "secret"

type Fixture struct {
	Store application.Store

	Orders   *order.Service
	Items    *orderitem.Service
	Payments *payment.Service
	Checkout *checkout.ProcessOrderUseCase
	Accounts *account.Service
	Catalog  *catalog.Service

	// Seeded rows: an admin, a customer with a balance of 100, and two
	// products priced 10 and 5 in one category.
	AdminID    int64
	CustomerID int64
	CategoryID int64
	PenID      int64
	NotebookID int64
}

type Option func(*options)

type options struct {
	pricing domorder.PricingPolicy
	cache   catalog.ProductCache
	store   application.Store
}

func WithPricing(p domorder.PricingPolicy) Option {
	return func(o *options) { o.pricing = p }
}

// WithStore seeds and serves from store instead of a fresh memory store.
func WithStore(store application.Store) Option {
	return func(o *options) { o.store = store }
}

func WithProductCache(c catalog.ProductCache) Option {
	return func(o *options) { o.cache = c }
}

func New(t testing.TB, opts ...Option) *Fixture {
	t.Helper()
	cfg := options{pricing: domorder.PricingTrust}
	for _, opt := range opts {
		opt(&cfg)
	}

	store := cfg.store
	if store == nil {
		store = memory.NewStore()
	}
	items := orderitem.NewService(store, cfg.pricing, nil)
	payments := payment.NewService(store, nil)
	f := &Fixture{
		Store:    store,
		Orders:   order.NewService(store, items, nil),
		Items:    items,
		Payments: payments,
		Checkout: checkout.NewProcessOrderUseCase(store, items, payments, nil),
		Accounts: account.NewService(store, nil, account.WithHashCost(bcrypt.MinCost)),
		Catalog:  catalog.NewService(store, cfg.cache, nil),
	}
	f.seed(t)
	return f
}

func (f *Fixture) seed(t testing.TB) {
	t.Helper()
	require.NoError(t, f.Store.WithinTx(context.Background(), func(ctx context.Context, tx application.Tx) error {
		hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
		require.NoError(t, err)

		admin, err := domuser.New("admin", string(hash), domuser.RoleAdmin, decimal.Zero)
		require.NoError(t, err)
		require.NoError(t, tx.Users().Insert(ctx, admin))
		f.AdminID = admin.ID

		customer, err := domuser.New("alice", string(hash), domuser.RoleUser, decimal.NewFromInt(100))
		require.NoError(t, err)
		require.NoError(t, tx.Users().Insert(ctx, customer))
		f.CustomerID = customer.ID

		c, err := domcatalog.NewCategory("stationery")
		require.NoError(t, err)
		require.NoError(t, tx.Categories().Insert(ctx, c))
		f.CategoryID = c.ID

		pen, err := domcatalog.NewProduct("pen", 100, decimal.NewFromInt(10), c.ID)
		require.NoError(t, err)
		require.NoError(t, tx.Products().Insert(ctx, pen))
		f.PenID = pen.ID

		notebook, err := domcatalog.NewProduct("notebook", 50, decimal.NewFromInt(5), c.ID)
		require.NoError(t, err)
		require.NoError(t, tx.Products().Insert(ctx, notebook))
		f.NotebookID = notebook.ID
		return nil
	}))
}

// Line builds an item input whose total is quantity × unit.
func Line(productID int64, quantity int, unit int64) orderitem.Input {
	return orderitem.Input{
		ProductID:  productID,
		Quantity:   quantity,
		UnitPrice:  decimal.NewFromInt(unit),
		TotalPrice: decimal.NewFromInt(unit * int64(quantity)),
	}
}

func (f *Fixture) read(t testing.TB, fn func(ctx context.Context, tx application.Tx) error) {
	t.Helper()
	require.NoError(t, f.Store.WithinTx(context.Background(), fn))
}

func (f *Fixture) User(t testing.TB, id int64) *domuser.User {
	t.Helper()
	var u *domuser.User
	f.read(t, func(ctx context.Context, tx application.Tx) (err error) {
		u, err = tx.Users().FindByID(ctx, id)
		return err
	})
	return u
}

func (f *Fixture) Order(t testing.TB, id int64) *domorder.Order {
	t.Helper()
	var o *domorder.Order
	f.read(t, func(ctx context.Context, tx application.Tx) (err error) {
		o, err = tx.Orders().FindByID(ctx, id)
		return err
	})
	return o
}

func (f *Fixture) OrderItems(t testing.TB, orderID int64) []*domorder.Item {
	t.Helper()
	var items []*domorder.Item
	f.read(t, func(ctx context.Context, tx application.Tx) (err error) {
		items, err = tx.OrderItems().ListByOrder(ctx, orderID)
		return err
	})
	return items
}

func (f *Fixture) OrderPayments(t testing.TB, orderID int64) []*dompayment.Payment {
	t.Helper()
	var out []*dompayment.Payment
	f.read(t, func(ctx context.Context, tx application.Tx) (err error) {
		out, err = tx.Payments().ListByOrder(ctx, orderID)
		return err
	})
	return out
}

func (f *Fixture) UserOrders(t testing.TB, userID int64) []*domorder.Order {
	t.Helper()
	var out []*domorder.Order
	f.read(t, func(ctx context.Context, tx application.Tx) (err error) {
		out, err = tx.Orders().ListByUser(ctx, userID)
		return err
	})
	return out
}

// PendingEvents returns the names of outbox records not yet relayed.
func (f *Fixture) PendingEvents(t testing.TB) []string {
	t.Helper()
	var names []string
	f.read(t, func(ctx context.Context, tx application.Tx) error {
		recs, err := tx.Outbox().FetchPending(ctx, 1000)
		for _, r := range recs {
			names = append(names, r.Name)
		}
		return err
	})
	return names
}

// PayConcurrently fires n CreatePayment calls for orderID at once and returns
// the number that succeeded plus every error.
func (f *Fixture) PayConcurrently(t testing.TB, orderID int64, n int) (int, []error) {
	t.Helper()
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make([]error, n)
	)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, errs[i] = f.Payments.CreatePayment(context.Background(), orderID, payment.Input{Method: "CASH"})
		}()
	}
	close(start)
	wg.Wait()

	var ok int
	var failed []error
	for _, err := range errs {
		if err == nil {
			ok++
			continue
		}
		failed = append(failed, err)
	}
	return ok, failed
}
