package service

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

type mockProductRepo struct {
	m         sync.Mutex
	products  map[int64]*domain.Product
	nextID    int64
	createErr []error // returned by successive CreateProduct calls
	lastQuery repository.ProductQuery
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*domain.Product)}
}

func (r *mockProductRepo) CreateProduct(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	if len(r.createErr) > 0 {
		err := r.createErr[0]
		r.createErr = r.createErr[1:]
		if err != nil {
			return err
		}
	}
	r.nextID++
	p.ID = r.nextID
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *mockProductRepo) UpdateProduct(_ context.Context, p *domain.Product) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.products[p.ID]; !ok {
		return repository.ErrProductNotFound
	}
	c := *p
	r.products[p.ID] = &c
	return nil
}

func (r *mockProductRepo) DeleteProduct(_ context.Context, id int64) error {
	r.m.Lock()
	defer r.m.Unlock()
	if _, ok := r.products[id]; !ok {
		return repository.ErrProductNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *mockProductRepo) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	c := *p
	return &c, nil
}

func (r *mockProductRepo) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, p := range r.products {
		if p.Slug == slug {
			c := *p
			return &c, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (r *mockProductRepo) SlugExists(_ context.Context, slug string, excludeID int64) (bool, error) {
	r.m.Lock()
	defer r.m.Unlock()
	for _, p := range r.products {
		if p.Slug == slug && p.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *mockProductRepo) ListProducts(_ context.Context, q repository.ProductQuery) ([]*domain.Product, int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	r.lastQuery = q
	return nil, 17, nil
}

func (r *mockProductRepo) FeaturedProducts(context.Context) ([]*domain.Product, error) {
	return nil, nil
}

type stubDescriber struct {
	text string
	err  error
}

func (d stubDescriber) Describe(context.Context, string) (string, error) {
	return d.text, d.err
}

func ptr[T any](v T) *T { return &v }

var productSKU = regexp.MustCompile(`^[A-Z]{3}-[0-9A-F]{6}$`)

func TestCatalogService_CreateProduct(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{
		Name:     ptr("Fresh Tomatoes"),
		Category: ptr("Vegetables"),
		Price:    ptr(decimal.RequireFromString("4.999")),
		Quantity: ptr(30),
	})
	require.NoError(t, err)
	assert.Equal(t, "fresh-tomatoes", p.Slug)
	assert.Equal(t, "vegetables", p.Category)
	assert.Equal(t, "5", p.Price.String())
	assert.Equal(t, domain.DefaultMinimumStock, p.MinimumStock)
	assert.Regexp(t, productSKU, p.SKU)
	assert.Equal(t, "VEG", p.SKU[:3])

	second, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("Fresh tomatoes!"), Price: ptr(decimal.NewFromInt(3))})
	require.NoError(t, err)
	assert.Equal(t, "fresh-tomatoes-1", second.Slug)
	assert.Equal(t, "GEN", second.SKU[:3])

	third, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("FRESH TOMATOES"), Price: ptr(decimal.NewFromInt(3))})
	require.NoError(t, err)
	assert.Equal(t, "fresh-tomatoes-2", third.Slug)
}

func TestCatalogService_CreateProduct_RetriesTakenCodes(t *testing.T) {
	repo := newMockProductRepo()
	repo.createErr = []error{repository.ErrDuplicateSKU, repository.ErrDuplicateSlug, nil}
	svc := NewCatalogService(repo, nil)

	p, err := svc.CreateProduct(context.Background(), ProductInput{Name: ptr("Okra"), Price: ptr(decimal.NewFromInt(2))})
	require.NoError(t, err)
	assert.Equal(t, int64(1), p.ID)
}

func TestCatalogService_CreateProduct_GivesUpAfterAttempts(t *testing.T) {
	repo := newMockProductRepo()
	for i := 0; i < productCodeAttempts; i++ {
		repo.createErr = append(repo.createErr, repository.ErrDuplicateSKU)
	}
	svc := NewCatalogService(repo, nil)

	_, err := svc.CreateProduct(context.Background(), ProductInput{Name: ptr("Okra"), Price: ptr(decimal.NewFromInt(2))})
	assert.ErrorIs(t, err, repository.ErrDuplicateSKU)
}

func TestCatalogService_CreateProduct_Validation(t *testing.T) {
	svc := NewCatalogService(newMockProductRepo(), nil)
	price := ptr(decimal.NewFromInt(1))

	tests := []struct {
		name string
		in   ProductInput
	}{
		{"missing name", ProductInput{Price: price}},
		{"blank name", ProductInput{Name: ptr("  "), Price: price}},
		{"missing price", ProductInput{Name: ptr("Okra")}},
		{"negative price", ProductInput{Name: ptr("Okra"), Price: ptr(decimal.NewFromInt(-1))}},
		{"negative quantity", ProductInput{Name: ptr("Okra"), Price: price, Quantity: ptr(-1)}},
		{"unknown category", ProductInput{Name: ptr("Okra"), Price: price, Category: ptr("toys")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tt.in)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCatalogService_UpdateProduct(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)
	ctx := context.Background()

	p, err := svc.CreateProduct(ctx, ProductInput{Name: ptr("Yam"), Price: ptr(decimal.NewFromInt(2)), Quantity: ptr(4)})
	require.NoError(t, err)

	same, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Quantity: ptr(9)})
	require.NoError(t, err)
	assert.Equal(t, "yam", same.Slug)
	assert.Equal(t, 9, same.Quantity)
	assert.Equal(t, p.SKU, same.SKU)

	renamed, err := svc.UpdateProduct(ctx, p.ID, ProductInput{Name: ptr("White Yam")})
	require.NoError(t, err)
	assert.Equal(t, "white-yam", renamed.Slug)

	got, err := svc.GetProductBySlug(ctx, "white-yam")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.UpdateProduct(ctx, 99, ProductInput{Quantity: ptr(1)})
	assert.ErrorIs(t, err, repository.ErrProductNotFound)
}

func TestCatalogService_Listings(t *testing.T) {
	repo := newMockProductRepo()
	svc := NewCatalogService(repo, nil)
	ctx := context.Background()

	page, err := svc.ListProducts(ctx, " tom ", 2)
	require.NoError(t, err)
	assert.Equal(t, repository.ProductQuery{Search: "tom", NewestFirst: true, Limit: ProductPageSize, Offset: ProductPageSize}, repo.lastQuery)
	assert.Equal(t, 17, page.Count)

	_, err = svc.ListAllProducts(ctx, "", "ALL", 1)
	require.NoError(t, err)
	assert.Equal(t, repository.ProductQuery{SearchDescription: true, Limit: ProductPageSize}, repo.lastQuery)

	_, err = svc.ListAllProducts(ctx, "red", "Fruits", 1)
	require.NoError(t, err)
	assert.Equal(t, "fruits", repo.lastQuery.Category)
	assert.Equal(t, "red", repo.lastQuery.Search)
}

func TestCatalogService_GenerateDescription(t *testing.T) {
	ctx := context.Background()

	text, err := NewCatalogService(newMockProductRepo(), stubDescriber{text: "Crisp and sweet."}).GenerateDescription(ctx, "Apples")
	require.NoError(t, err)
	assert.Equal(t, "Crisp and sweet.", text)

	_, err = NewCatalogService(newMockProductRepo(), nil).GenerateDescription(ctx, "Apples")
	assert.ErrorIs(t, err, ErrDescriberUnavailable)

	_, err = NewCatalogService(newMockProductRepo(), stubDescriber{err: errors.New("quota")}).GenerateDescription(ctx, "Apples")
	assert.ErrorIs(t, err, ErrDescriberFailed)

	_, err = NewCatalogService(newMockProductRepo(), stubDescriber{}).GenerateDescription(ctx, " ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
