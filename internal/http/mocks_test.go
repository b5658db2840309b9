package http

import (
	"context"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
	"github.com/fjod/freshbuy/internal/service"
)

type mockAuth struct {
	users   map[int64]*domain.User
	signIn  *service.SignInResult
	err     error
	refresh string
}

func (m *mockAuth) SignUp(_ context.Context, email, username, _ string) (*domain.User, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.User{ID: 1, Email: email, Username: username}, nil
}

func (m *mockAuth) SignIn(context.Context, string, string) (*service.SignInResult, error) {
	return m.signIn, m.err
}

func (m *mockAuth) Refresh(string) (string, error) {
	return m.refresh, m.err
}

func (m *mockAuth) User(_ context.Context, id int64) (*domain.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuth) IsAdmin(ctx context.Context, id int64) (bool, error) {
	u, err := m.User(ctx, id)
	if err != nil {
		return false, err
	}
	return u.IsAdmin, nil
}

type mockCatalog struct {
	product  *domain.Product
	page     *service.Page[*domain.Product]
	input    service.ProductInput
	search   string
	category string
	err      error
}

func (m *mockCatalog) CreateProduct(_ context.Context, in service.ProductInput) (*domain.Product, error) {
	m.input = in
	return m.product, m.err
}

func (m *mockCatalog) UpdateProduct(_ context.Context, _ int64, in service.ProductInput) (*domain.Product, error) {
	m.input = in
	return m.product, m.err
}

func (m *mockCatalog) DeleteProduct(context.Context, int64) error { return m.err }

func (m *mockCatalog) GetProduct(context.Context, int64) (*domain.Product, error) {
	return m.product, m.err
}

func (m *mockCatalog) GetProductBySlug(context.Context, string) (*domain.Product, error) {
	return m.product, m.err
}

func (m *mockCatalog) ListProducts(_ context.Context, search string, _ int) (*service.Page[*domain.Product], error) {
	m.search = search
	return m.page, m.err
}

func (m *mockCatalog) ListAllProducts(_ context.Context, search, category string, _ int) (*service.Page[*domain.Product], error) {
	m.search, m.category = search, category
	return m.page, m.err
}

func (m *mockCatalog) FeaturedProducts(context.Context) ([]*domain.Product, error) {
	return nil, m.err
}

func (m *mockCatalog) GenerateDescription(context.Context, string) (string, error) {
	return "Fresh from the farm.", m.err
}

type mockCart struct {
	cart     *domain.Cart
	added    []int
	inCart   bool
	quantity int
	err      error
}

func (m *mockCart) GetCart(context.Context, string) (*domain.Cart, error) { return m.cart, m.err }

func (m *mockCart) AddItem(_ context.Context, _ string, _ int64, quantity int) (int64, error) {
	m.added = append(m.added, quantity)
	return 1, m.err
}

func (m *mockCart) IsProductInCart(context.Context, string, int64) (bool, error) {
	return m.inCart, m.err
}

func (m *mockCart) IncreaseQuantity(context.Context, int64) (int, error) { return m.quantity, m.err }

func (m *mockCart) DecreaseQuantity(context.Context, int64) (int, error) { return m.quantity, m.err }

func (m *mockCart) DeleteLine(context.Context, int64) error { return m.err }

type mockCheckout struct {
	init   *service.InitializeResult
	verify *service.VerifyResult
	user   service.Principal
	err    error
}

func (m *mockCheckout) Initialize(_ context.Context, user service.Principal, _ string) (*service.InitializeResult, error) {
	m.user = user
	return m.init, m.err
}

func (m *mockCheckout) Verify(_ context.Context, user service.Principal, _ string) (*service.VerifyResult, error) {
	m.user = user
	return m.verify, m.err
}

type mockOrders struct {
	page  *service.Page[*domain.Order]
	order *domain.Order
	err   error
}

func (m *mockOrders) ListUserOrders(context.Context, int64, int) (*service.Page[*domain.Order], error) {
	return m.page, m.err
}

func (m *mockOrders) ListAllOrders(context.Context, string, string, int) (*service.Page[*domain.Order], error) {
	return m.page, m.err
}

func (m *mockOrders) UpdateOrderStatus(context.Context, int64, string) (*domain.Order, error) {
	return m.order, m.err
}

func (m *mockOrders) DeleteOrder(context.Context, int64) error { return m.err }

type mockShipping struct {
	info    *domain.ShippingInfo
	created bool
	err     error
}

func (m *mockShipping) SaveShippingInfo(_ context.Context, userID int64, info domain.ShippingInfo) (*domain.ShippingInfo, bool, error) {
	if m.err != nil {
		return nil, false, m.err
	}
	info.UserID = userID
	return &info, m.created, nil
}

func (m *mockShipping) GetShippingInfo(context.Context, int64) (*domain.ShippingInfo, error) {
	return m.info, m.err
}

type mockAnalytics struct {
	stats *service.DashboardStats
	err   error
}

func (m *mockAnalytics) Analytics(context.Context) (*service.Analytics, error) {
	return &service.Analytics{}, m.err
}

func (m *mockAnalytics) DashboardStats(context.Context) (*service.DashboardStats, error) {
	return m.stats, m.err
}
