package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agure1996/cinab-website/internal/cart"
	"github.com/agure1996/cinab-website/internal/catalog"
	"github.com/agure1996/cinab-website/internal/order"
	"github.com/agure1996/cinab-website/internal/users"
)

type productRepoMock struct {
	CreateFunc           func(ctx context.Context, p *catalog.Product) error
	GetByIDFunc          func(ctx context.Context, productID string) (*catalog.Product, error)
	UpdateFunc           func(ctx context.Context, p *catalog.Product) error
	DeleteFunc           func(ctx context.Context, productID string) error
	ListFunc             func(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error)
	SetInventoryFunc     func(ctx context.Context, productID string, inventory int) error
	DecrementStockTxFunc func(ctx context.Context, tx *sql.Tx, productID string, quantity int) error
}

func (m *productRepoMock) Create(ctx context.Context, p *catalog.Product) error {
	return m.CreateFunc(ctx, p)
}

func (m *productRepoMock) GetByID(ctx context.Context, productID string) (*catalog.Product, error) {
	return m.GetByIDFunc(ctx, productID)
}

func (m *productRepoMock) Update(ctx context.Context, p *catalog.Product) error {
	return m.UpdateFunc(ctx, p)
}

func (m *productRepoMock) Delete(ctx context.Context, productID string) error {
	return m.DeleteFunc(ctx, productID)
}

func (m *productRepoMock) List(ctx context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
	return m.ListFunc(ctx, f)
}

func (m *productRepoMock) SetInventory(ctx context.Context, productID string, inventory int) error {
	return m.SetInventoryFunc(ctx, productID, inventory)
}

func (m *productRepoMock) DecrementStockTx(ctx context.Context, tx *sql.Tx, productID string, quantity int) error {
	return m.DecrementStockTxFunc(ctx, tx, productID, quantity)
}

type categoryRepoMock struct {
	CreateFunc       func(ctx context.Context, name string) (*catalog.Category, error)
	GetByIDFunc      func(ctx context.Context, categoryID string) (*catalog.Category, error)
	GetByNameFunc    func(ctx context.Context, name string) (*catalog.Category, error)
	ListFunc         func(ctx context.Context) ([]catalog.Category, error)
	UpdateFunc       func(ctx context.Context, c *catalog.Category) error
	DeleteFunc       func(ctx context.Context, categoryID string) error
	EnsureByNameFunc func(ctx context.Context, name string) (*catalog.Category, error)
}

func (m *categoryRepoMock) Create(ctx context.Context, name string) (*catalog.Category, error) {
	return m.CreateFunc(ctx, name)
}

func (m *categoryRepoMock) GetByID(ctx context.Context, categoryID string) (*catalog.Category, error) {
	return m.GetByIDFunc(ctx, categoryID)
}

func (m *categoryRepoMock) GetByName(ctx context.Context, name string) (*catalog.Category, error) {
	return m.GetByNameFunc(ctx, name)
}

func (m *categoryRepoMock) List(ctx context.Context) ([]catalog.Category, error) {
	return m.ListFunc(ctx)
}

func (m *categoryRepoMock) Update(ctx context.Context, c *catalog.Category) error {
	return m.UpdateFunc(ctx, c)
}

func (m *categoryRepoMock) Delete(ctx context.Context, categoryID string) error {
	return m.DeleteFunc(ctx, categoryID)
}

func (m *categoryRepoMock) EnsureByName(ctx context.Context, name string) (*catalog.Category, error) {
	return m.EnsureByNameFunc(ctx, name)
}

type imageRepoMock struct {
	CreateFunc        func(ctx context.Context, img *catalog.Image) error
	GetByIDFunc       func(ctx context.Context, imageID string) (*catalog.Image, error)
	ListByProductFunc func(ctx context.Context, productID string) ([]catalog.Image, error)
	UpdateFunc        func(ctx context.Context, img *catalog.Image) error
	DeleteFunc        func(ctx context.Context, imageID string) error
}

func (m *imageRepoMock) Create(ctx context.Context, img *catalog.Image) error {
	return m.CreateFunc(ctx, img)
}

func (m *imageRepoMock) GetByID(ctx context.Context, imageID string) (*catalog.Image, error) {
	return m.GetByIDFunc(ctx, imageID)
}

func (m *imageRepoMock) ListByProduct(ctx context.Context, productID string) ([]catalog.Image, error) {
	return m.ListByProductFunc(ctx, productID)
}

func (m *imageRepoMock) Update(ctx context.Context, img *catalog.Image) error {
	return m.UpdateFunc(ctx, img)
}

func (m *imageRepoMock) Delete(ctx context.Context, imageID string) error {
	return m.DeleteFunc(ctx, imageID)
}

type cartRepoMock struct {
	GetByUserFunc func(ctx context.Context, userID string) (*cart.Cart, error)
	DeleteFunc    func(ctx context.Context, cartID string) error
}

func (m *cartRepoMock) GetByUser(ctx context.Context, userID string) (*cart.Cart, error) {
	return m.GetByUserFunc(ctx, userID)
}

func (m *cartRepoMock) GetByID(_ context.Context, _ string) (*cart.Cart, error) { return nil, nil }

// Mutate mirrors the real repository contract: load, apply fn, recalculate.
func (m *cartRepoMock) Mutate(ctx context.Context, userID string, createIfMissing bool, fn func(c *cart.Cart) error) (*cart.Cart, error) {
	c, err := m.GetByUserFunc(ctx, userID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		if !createIfMissing {
			return nil, cart.ErrNotFound
		}
		c = &cart.Cart{ID: "cart-new", UserID: userID}
	}
	if fn != nil {
		if err := fn(c); err != nil {
			return nil, err
		}
	}
	c.Recalculate()
	return c, nil
}

func (m *cartRepoMock) Delete(ctx context.Context, cartID string) error {
	return m.DeleteFunc(ctx, cartID)
}

func (m *cartRepoMock) GetByUserTx(_ context.Context, _ *sql.Tx, _ string) (*cart.Cart, error) {
	return nil, nil
}

func (m *cartRepoMock) DeleteTx(_ context.Context, _ *sql.Tx, _ string) error { return nil }

type orderRepoMock struct {
	GetByIDFunc    func(ctx context.Context, orderID string) (*order.Order, error)
	ListByUserFunc func(ctx context.Context, userID string) ([]order.Order, error)
}

func (m *orderRepoMock) GetByID(ctx context.Context, orderID string) (*order.Order, error) {
	return m.GetByIDFunc(ctx, orderID)
}

func (m *orderRepoMock) ListByUser(ctx context.Context, userID string) ([]order.Order, error) {
	return m.ListByUserFunc(ctx, userID)
}

func (m *orderRepoMock) UpdateStatus(_ context.Context, _ string, _ order.Status) error { return nil }

func (m *orderRepoMock) CreateTx(_ context.Context, _ *sql.Tx, _ *order.Order) error { return nil }

type placerMock struct {
	PlaceOrderFunc func(ctx context.Context, userID string) (*order.Order, error)
}

func (m *placerMock) PlaceOrder(ctx context.Context, userID string) (*order.Order, error) {
	return m.PlaceOrderFunc(ctx, userID)
}

type userRepoMock struct {
	CreateFunc  func(ctx context.Context, u *users.User) error
	GetByIDFunc func(ctx context.Context, userID string) (*users.User, error)
	UpdateFunc  func(ctx context.Context, u *users.User) error
	DeleteFunc  func(ctx context.Context, userID string) error
}

func (m *userRepoMock) Create(ctx context.Context, u *users.User) error {
	return m.CreateFunc(ctx, u)
}

func (m *userRepoMock) GetByID(ctx context.Context, userID string) (*users.User, error) {
	return m.GetByIDFunc(ctx, userID)
}

func (m *userRepoMock) Update(ctx context.Context, u *users.User) error {
	return m.UpdateFunc(ctx, u)
}

func (m *userRepoMock) Delete(ctx context.Context, userID string) error {
	return m.DeleteFunc(ctx, userID)
}

type deps struct {
	products   *productRepoMock
	categories *categoryRepoMock
	images     *imageRepoMock
	carts      *cartRepoMock
	orders     *orderRepoMock
	placer     *placerMock
	users      *userRepoMock
}

func newTestRouter(d deps) http.Handler {
	if d.products == nil {
		d.products = &productRepoMock{}
	}
	if d.categories == nil {
		d.categories = &categoryRepoMock{}
	}
	if d.images == nil {
		d.images = &imageRepoMock{}
	}
	if d.carts == nil {
		d.carts = &cartRepoMock{}
	}
	if d.orders == nil {
		d.orders = &orderRepoMock{}
	}
	if d.placer == nil {
		d.placer = &placerMock{}
	}
	if d.users == nil {
		d.users = &userRepoMock{}
	}

	cartSvc := cart.NewService(d.carts, d.products)
	return NewRouter(
		NewCatalogHandler(d.products, d.categories, d.images),
		NewCartHandler(cartSvc),
		NewOrderHandler(d.orders, d.placer),
		NewUserHandler(d.users),
	)
}

func doRequest(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGetProduct(t *testing.T) {
	router := newTestRouter(deps{
		products: &productRepoMock{
			GetByIDFunc: func(_ context.Context, productID string) (*catalog.Product, error) {
				if productID != "p1" {
					return nil, catalog.ErrProductNotFound
				}
				return &catalog.Product{ID: "p1", Name: "Trail Shoe", Price: decimal.RequireFromString("89.99")}, nil
			},
		},
	})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products/p1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Trail Shoe"`)

	rec = doRequest(t, router, http.MethodGet, "/api/v1/products/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListProducts_Filters(t *testing.T) {
	var got catalog.ProductFilter
	router := newTestRouter(deps{
		products: &productRepoMock{
			ListFunc: func(_ context.Context, f catalog.ProductFilter) ([]catalog.Product, error) {
				got = f
				return []catalog.Product{{ID: "p1", Name: "Trail Shoe", Brand: "Northbound"}}, nil
			},
		},
	})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/products?category=Shoes&brand=Northbound&name=Trail+Shoe", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalog.ProductFilter{Category: "Shoes", Brand: "Northbound", Name: "Trail Shoe"}, got)
	assert.Contains(t, rec.Body.String(), `"p1"`)
}

func TestCreateProduct_ResolvesCategoryByName(t *testing.T) {
	var created *catalog.Product
	router := newTestRouter(deps{
		products: &productRepoMock{
			CreateFunc: func(_ context.Context, p *catalog.Product) error {
				p.ID = "p1"
				created = p
				return nil
			},
		},
		categories: &categoryRepoMock{
			EnsureByNameFunc: func(_ context.Context, name string) (*catalog.Category, error) {
				return &catalog.Category{ID: "c1", Name: name}, nil
			},
		},
	})

	body := `{"name":"Trail Shoe","brand":"Northbound","price":"89.99","inventory":5,"category":"Shoes"}`
	rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, created)
	assert.Equal(t, "c1", created.CategoryID)
}

func TestCreateProduct_Validation(t *testing.T) {
	router := newTestRouter(deps{})

	tests := map[string]string{
		"missing name":   `{"price":"5.00","inventory":1}`,
		"negative price": `{"name":"x","price":"-1.00","inventory":1}`,
		"bad json":       `{not json`,
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/products", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateCategory_Conflict(t *testing.T) {
	router := newTestRouter(deps{
		categories: &categoryRepoMock{
			CreateFunc: func(_ context.Context, _ string) (*catalog.Category, error) {
				return nil, catalog.ErrCategoryExists
			},
		},
	})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/categories", `{"name":"Shoes"}`)
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAddCartItem(t *testing.T) {
	existing := &cart.Cart{ID: "cart-1", UserID: "u1"}
	router := newTestRouter(deps{
		carts: &cartRepoMock{
			GetByUserFunc: func(_ context.Context, _ string) (*cart.Cart, error) { return existing, nil },
		},
		products: &productRepoMock{
			GetByIDFunc: func(_ context.Context, _ string) (*catalog.Product, error) {
				return &catalog.Product{ID: "p1", Price: decimal.RequireFromString("10.00")}, nil
			},
		},
	})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/u1/cart/items", `{"productId":"p1","quantity":2}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"totalAmount":"20.00"`)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/users/u1/cart/items", `{"productId":"p1","quantity":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrder_StatusMapping(t *testing.T) {
	type testCase struct {
		err      error
		expected int
	}

	tests := map[string]testCase{
		"missing cart":       {err: cart.ErrNotFound, expected: http.StatusNotFound},
		"insufficient stock": {err: catalog.ErrInsufficientStock, expected: http.StatusConflict},
		"vanished product":   {err: catalog.ErrProductNotFound, expected: http.StatusConflict},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			router := newTestRouter(deps{
				placer: &placerMock{
					PlaceOrderFunc: func(_ context.Context, _ string) (*order.Order, error) {
						return nil, tc.err
					},
				},
			})

			rec := doRequest(t, router, http.MethodPost, "/api/v1/users/u1/orders", "")
			assert.Equal(t, tc.expected, rec.Code)
		})
	}
}

func TestPlaceOrder(t *testing.T) {
	router := newTestRouter(deps{
		placer: &placerMock{
			PlaceOrderFunc: func(_ context.Context, userID string) (*order.Order, error) {
				return &order.Order{
					ID:          "o1",
					UserID:      userID,
					Status:      order.StatusPending,
					TotalAmount: decimal.RequireFromString("24.50"),
				}, nil
			},
		},
	})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/u1/orders", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pending"`)
}

func TestGetOrder_NotFound(t *testing.T) {
	router := newTestRouter(deps{
		orders: &orderRepoMock{
			GetByIDFunc: func(_ context.Context, _ string) (*order.Order, error) { return nil, nil },
		},
	})

	rec := doRequest(t, router, http.MethodGet, "/api/v1/orders/missing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateUser(t *testing.T) {
	router := newTestRouter(deps{
		users: &userRepoMock{
			CreateFunc: func(_ context.Context, u *users.User) error {
				if u.Email == "taken@example.com" {
					return users.ErrEmailTaken
				}
				u.ID = "u1"
				return nil
			},
		},
	})

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users", `{"email":"ada@example.com","firstName":"Ada"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/users", `{"email":"taken@example.com"}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, router, http.MethodPost, "/api/v1/users", `{"email":"not-an-email"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	router := newTestRouter(deps{})

	rec := doRequest(t, router, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}
