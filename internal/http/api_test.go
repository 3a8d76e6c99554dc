package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"web-store/internal/auth"
	"web-store/internal/domain"
	"web-store/internal/repository"
	"web-store/internal/service"
	"web-store/internal/storage"
)

type memUserRepo struct {
	mu    sync.Mutex
	seq   int64
	users map[int64]*domain.User
}

func (r *memUserRepo) Init(context.Context) error { return nil }

func (r *memUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Login == user.Login {
			return 0, repository.ErrDuplicateLogin
		}
		if existing.Email == user.Email {
			return 0, repository.ErrDuplicateEmail
		}
	}
	r.seq++
	user.ID = r.seq
	clone := *user
	r.users[user.ID] = &clone
	return user.ID, nil
}

func (r *memUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Login == login {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *memUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

type memOrderRepo struct {
	mu     sync.Mutex
	seq    int64
	orders map[int64]*domain.Order
}

func (r *memOrderRepo) Init(context.Context) error { return nil }

func (r *memOrderRepo) Create(_ context.Context, order *domain.Order) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	order.ID = r.seq
	order.CreatedAt = time.Now().UTC()
	for i := range order.Items {
		order.Items[i].ID = int64(i + 1)
		order.Items[i].OrderID = order.ID
	}
	clone := *order
	clone.Items = append([]domain.OrderItem(nil), order.Items...)
	r.orders[order.ID] = &clone
	return order.ID, nil
}

func (r *memOrderRepo) GetByID(_ context.Context, id int64) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *order
	return &clone, nil
}

func (r *memOrderRepo) ListByUser(_ context.Context, userID int64) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.Order
	for id := int64(1); id <= r.seq; id++ {
		if order, ok := r.orders[id]; ok && order.UserID == userID {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *memOrderRepo) ListAll(context.Context) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var orders []domain.Order
	for id := int64(1); id <= r.seq; id++ {
		if order, ok := r.orders[id]; ok {
			orders = append(orders, *order)
		}
	}
	return orders, nil
}

func (r *memOrderRepo) UpdateStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return repository.ErrNotFound
	}
	order.Status = status
	return nil
}

type memProductRepo struct {
	mu       sync.Mutex
	seq      int64
	products map[int64]*domain.Product
}

func newMemProductRepo() *memProductRepo {
	return &memProductRepo{products: make(map[int64]*domain.Product)}
}

func (r *memProductRepo) Init(context.Context) error { return nil }

func (r *memProductRepo) Create(_ context.Context, product *domain.Product) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	product.ID = r.seq
	clone := *product
	r.products[product.ID] = &clone
	return product.ID, nil
}

func (r *memProductRepo) GetByID(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	product, ok := r.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	clone := *product
	return &clone, nil
}

func (r *memProductRepo) CountByCategory(context.Context, int64) (int, error) { return 0, nil }

func (r *memProductRepo) ListPage(context.Context, int64, int, int, domain.ProductSort) ([]domain.Product, error) {
	return nil, nil
}

func (r *memProductRepo) Delete(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.products, id)
	return nil
}

type memCategoryRepo struct{}

func (memCategoryRepo) Init(context.Context) error { return nil }
func (memCategoryRepo) Create(_ context.Context, category *domain.ProductCategory) (int64, error) {
	category.ID = 1
	return 1, nil
}
func (memCategoryRepo) GetByID(context.Context, int64) (*domain.ProductCategory, error) {
	return nil, repository.ErrNotFound
}
func (memCategoryRepo) ListAll(context.Context) ([]domain.ProductCategory, error) { return nil, nil }

// memStorage records object operations so tests can assert on cleanup.
type memStorage struct {
	mu      sync.Mutex
	deleted []string
}

func (s *memStorage) UploadImage(_ context.Context, in storage.UploadInput) (string, error) {
	return "s3://" + in.Bucket + "/" + in.Key, nil
}

func (s *memStorage) ListObjects(context.Context, string, string) ([]storage.ObjectInfo, error) {
	return nil, nil
}

func (s *memStorage) DeleteObject(_ context.Context, _ string, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStorage) GetObjectURL(context.Context, string, string, time.Duration) (string, error) {
	return "", nil
}

type testEnv struct {
	router   *gin.Engine
	users    *memUserRepo
	orders   *memOrderRepo
	products *memProductRepo
	storage  *memStorage
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := &memUserRepo{users: make(map[int64]*domain.User)}
	orders := &memOrderRepo{orders: make(map[int64]*domain.Order)}
	products := newMemProductRepo()
	store := &memStorage{}

	issuer, err := auth.NewTokenIssuer("test-secret", "web-store", "web-store-client", time.Hour)
	require.NoError(t, err)

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	handler := NewHandler(
		service.NewUserService(users),
		service.NewOrderService(orders),
		service.NewProductService(products, memCategoryRepo{}),
		issuer,
		store,
		"imgs",
		"product-images",
		false,
		logger,
	)

	router := gin.New()
	handler.RegisterRoutes(router)
	return &testEnv{router: router, users: users, orders: orders, products: products, storage: store}
}

// seedAdmin inserts an administrator directly into the store; admins cannot
// be created through registration.
func (e *testEnv) seedAdmin(t *testing.T, login, password string) {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	_, err = e.users.Create(context.Background(), &domain.User{
		Login:        login,
		Email:        login + "@store.local",
		PasswordHash: hash,
		IsAdmin:      true,
	})
	require.NoError(t, err)
}

func (e *testEnv) do(t *testing.T, method, path string, body any, cookies []*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, cookie := range cookies {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName && cookie.Value != "" {
			return cookie
		}
	}
	t.Fatal("no session cookie in response")
	return nil
}

func TestEndToEnd_RegisterLoginOrderAdmin(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "root", "admin-pw")

	// register
	rec := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "bob", "email": "bob@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var registered UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))
	assert.Equal(t, "bob", registered.Login)
	assert.False(t, registered.IsAdmin)

	// login
	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"login": "bob", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	bobCookie := sessionCookie(t, rec)
	assert.True(t, bobCookie.HttpOnly)

	// current user
	rec = env.do(t, http.MethodGet, "/api/auth/currentUser", nil, []*http.Cookie{bobCookie})
	require.Equal(t, http.StatusOK, rec.Code)

	// create an order for bob's own account
	rec = env.do(t, http.MethodPost, "/api/order/create", gin.H{
		"userId": registered.ID,
		"items":  []gin.H{{"productId": 5, "quantity": 2}},
	}, []*http.Cookie{bobCookie})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var order OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &order))
	assert.Equal(t, domain.OrderStatusInProgress, order.Status)

	// admin completes the order
	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"login": "root", "password": "admin-pw",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	adminCookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, "/api/order/updateStatus", gin.H{
		"orderId": order.ID, "newStatus": "completed",
	}, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the listing reflects the new status
	rec = env.do(t, http.MethodGet, "/api/order/user/2", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var orders []OrderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, domain.OrderStatusCompleted, orders[0].Status)
}

func TestAuth_Unauthorized(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/auth/currentUser", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/order/create", gin.H{"userId": 1}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	garbage := &http.Cookie{Name: sessionCookieName, Value: "not.a.token"}
	rec = env.do(t, http.MethodGet, "/api/auth/currentUser", nil, []*http.Cookie{garbage})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized"}`, rec.Body.String())
}

func TestLogin_UniformDenial(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Unknown login and wrong password produce the same response body.
	unknown := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "ghost", "password": "secret1"}, nil)
	wrongPw := env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "alice", "password": "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, http.StatusUnauthorized, wrongPw.Code)
	assert.Equal(t, unknown.Body.String(), wrongPw.Body.String())
}

func TestRegister_Conflicts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "alice", "email": "a@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "alice", "email": "fresh@x.com", "password": "secret1",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "fresh", "email": "a@x.com", "password": "secret1",
	}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "", "email": "b@x.com", "password": "secret1",
	}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOrder_Failures(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "bob", "email": "bob@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "bob", "password": "secret1"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	cookie := sessionCookie(t, rec)

	// empty order
	rec = env.do(t, http.MethodPost, "/api/order/create", gin.H{
		"userId": 1, "items": []gin.H{},
	}, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// declared owner differs from the authenticated user
	rec = env.do(t, http.MethodPost, "/api/order/create", gin.H{
		"userId": 9, "items": []gin.H{{"productId": 5, "quantity": 2}},
	}, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestOrders_AdminOnlyEndpoints(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "root", "admin-pw")

	rec := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "bob", "email": "bob@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "bob", "password": "secret1"}, nil)
	userCookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodGet, "/api/order/getAll", nil, []*http.Cookie{userCookie})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/order/updateStatus", gin.H{
		"orderId": 1, "newStatus": "completed",
	}, []*http.Cookie{userCookie})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "root", "password": "admin-pw"}, nil)
	adminCookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodGet, "/api/order/getAll", nil, []*http.Cookie{adminCookie})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/order/updateStatus", gin.H{
		"orderId": 12345, "newStatus": "completed",
	}, []*http.Cookie{adminCookie})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrdersByUser_EmptyIs404(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/order/user/42", nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/order/user/abc", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogout_ClearsCookie(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/logout", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var cleared bool
	for _, cookie := range rec.Result().Cookies() {
		if cookie.Name == sessionCookieName {
			cleared = cookie.Value == "" && cookie.MaxAge < 0
		}
	}
	assert.True(t, cleared, "logout must expire the session cookie")
}

func TestProducts_OpenAndGated(t *testing.T) {
	env := newTestEnv(t)

	// catalog listing is explicitly open
	rec := env.do(t, http.MethodGet, "/api/product/categories", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// product creation is admin-only
	rec = env.do(t, http.MethodPost, "/api/product/create", gin.H{"name": "lamp", "price": 10}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "bob", "email": "bob@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "bob", "password": "secret1"}, nil)
	cookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, "/api/product/create", gin.H{"name": "lamp", "price": 10}, []*http.Cookie{cookie})
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	env.seedAdmin(t, "root", "admin-pw")

	rec := env.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"login": "bob", "email": "bob@x.com", "password": "secret1",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "bob", "password": "secret1"}, nil)
	userCookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, "/api/auth/login", gin.H{"login": "root", "password": "admin-pw"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	adminCookie := sessionCookie(t, rec)

	rec = env.do(t, http.MethodPost, "/api/product/create", gin.H{
		"name": "lamp", "price": 10, "mainImage": "s3://imgs/product-images/lamp.png",
	}, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var created ProductResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// no cookie and non-admin are both rejected
	rec = env.do(t, http.MethodPost, "/api/product/delete/1", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/product/delete/1", nil, []*http.Cookie{userCookie})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/product/delete/999", nil, []*http.Cookie{adminCookie})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/product/delete/abc", nil, []*http.Cookie{adminCookie})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodPost, fmt.Sprintf("/api/product/delete/%d", created.ID), nil, []*http.Cookie{adminCookie})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// the product is gone and its stored image was cleaned up
	rec = env.do(t, http.MethodGet, fmt.Sprintf("/api/product/get?productId=%d", created.ID), nil, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, []string{"product-images/lamp.png"}, env.storage.deleted)
}
