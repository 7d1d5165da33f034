package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo/gormrepo"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/pkg/db"
)

type recordedEvent struct {
	Topic string
	Key   string
	Event map[string]any
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) PublishEvent(_ context.Context, topic, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, _ := event.(map[string]any)
	p.events = append(p.events, recordedEvent{Topic: topic, Key: key, Event: m})
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Event["type"].(string))
	}
	return out
}

type fixture struct {
	repo      *gormrepo.GormRepo
	events    *recordingPublisher
	users     *UserService
	auth      *AuthService
	products  *ProductService
	carts     *CartService
	orders    *OrderService
	favourite *FavouriteService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	gdb, err := db.Open(ctx, "sqlite", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	r := &gormrepo.GormRepo{DB: gdb}
	require.NoError(t, r.Migrate(ctx))

	ev := &recordingPublisher{}
	return &fixture{
		repo:   r,
		events: ev,
		users:  &UserService{Repo: r, Tokens: r, Events: ev, AdminEmails: []string{"admin@shop.io"}},
		auth: &AuthService{
			Users:         r,
			Tokens:        r,
			AccessSecret:  []byte("access-secret"),
			RefreshSecret: []byte("refresh-secret"),
			AccessTTL:     time.Minute,
			RefreshTTL:    time.Hour,
		},
		products:  &ProductService{Repo: r, Events: ev},
		carts:     &CartService{Carts: r, Products: r, Users: r, Events: ev},
		orders:    &OrderService{Orders: r, Products: r, Users: r, Events: ev},
		favourite: &FavouriteService{Users: r, Products: r, Events: ev},
	}
}

func (f *fixture) user(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), transport.RegisterRequest{
		Email:    email,
		Password: "secret123",
		FullName: "Test User",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) product(t *testing.T, price string, availability int) *models.Product {
	t.Helper()
	p, err := f.products.CreateProduct(context.Background(), transport.CreateProductRequest{
		Name:         "Linen shirt",
		Description:  "Loose fit",
		Price:        decimal.RequireFromString(price),
		Category:     transport.Category{Main: "clothing", Sub: "shirts"},
		Colours:      []string{"Red", "blue"},
		Sizes:        []transport.SizeToken{"m", "42"},
		Availability: &availability,
		Images:       []string{"https://img/1.png"},
	})
	require.NoError(t, err)
	return p
}

func (f *fixture) availability(t *testing.T, productID string) int {
	t.Helper()
	p, err := f.repo.GetProduct(context.Background(), productID)
	require.NoError(t, err)
	return p.Availability
}

func ptr[T any](v T) *T { return &v }
