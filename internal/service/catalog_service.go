package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

const (
	productCodeAttempts = 5
	// categoryAll is the listing filter value that disables category filtering.
	categoryAll = "all"
)

type ProductStore interface {
	CreateProduct(ctx context.Context, p *domain.Product) error
	UpdateProduct(ctx context.Context, p *domain.Product) error
	DeleteProduct(ctx context.Context, id int64) error
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	SlugExists(ctx context.Context, slug string, excludeID int64) (bool, error)
	ListProducts(ctx context.Context, q repository.ProductQuery) ([]*domain.Product, int, error)
	FeaturedProducts(ctx context.Context) ([]*domain.Product, error)
}

type DescriptionGenerator interface {
	Describe(ctx context.Context, productName string) (string, error)
}

// ProductInput carries the product fields of a create or update request.
// Nil fields are left unchanged on update.
type ProductInput struct {
	Name         *string
	Description  *string
	Category     *string
	Price        *decimal.Decimal
	Quantity     *int
	MinimumStock *int
	Featured     *bool
	ImageURL     *string
}

type CatalogService struct {
	repo      ProductStore
	describer DescriptionGenerator
}

// NewCatalogService returns the catalog service. describer may be nil.
func NewCatalogService(repo ProductStore, describer DescriptionGenerator) *CatalogService {
	return &CatalogService{repo: repo, describer: describer}
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*domain.Product, error) {
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, invalid("name is required")
	}
	if in.Price == nil {
		return nil, invalid("price is required")
	}

	p := &domain.Product{MinimumStock: domain.DefaultMinimumStock}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, p.Name, 0)
		if err != nil {
			return nil, err
		}
		p.Slug = slug
		p.SKU = newProductSKU(p.Category)

		err = s.repo.CreateProduct(ctx, p)
		if (errors.Is(err, repository.ErrDuplicateSKU) || errors.Is(err, repository.ErrDuplicateSlug)) && attempt < productCodeAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("create product: %w", err)
		}
		return p, nil
	}
}

func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, in ProductInput) (*domain.Product, error) {
	p, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyProductInput(p, in); err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		slug, err := s.uniqueSlug(ctx, p.Name, p.ID)
		if err != nil {
			return nil, err
		}
		p.Slug = slug

		err = s.repo.UpdateProduct(ctx, p)
		if errors.Is(err, repository.ErrDuplicateSlug) && attempt < productCodeAttempts {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update product %d: %w", id, err)
		}
		return p, nil
	}
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id int64) error {
	return s.repo.DeleteProduct(ctx, id)
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, id)
}

func (s *CatalogService) GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error) {
	return s.repo.GetProductBySlug(ctx, slug)
}

// ListProducts pages through the catalog newest first, matching search against name or category.
func (s *CatalogService) ListProducts(ctx context.Context, search string, page int) (*Page[*domain.Product], error) {
	products, total, err := s.repo.ListProducts(ctx, repository.ProductQuery{
		Search:      strings.TrimSpace(search),
		NewestFirst: true,
		Limit:       ProductPageSize,
		Offset:      offsetOf(page, ProductPageSize),
	})
	if err != nil {
		return nil, err
	}
	return newPage(products, total, page, ProductPageSize), nil
}

// ListAllProducts pages through the catalog by descending id, matching search against
// name or description and optionally restricted to one category.
func (s *CatalogService) ListAllProducts(ctx context.Context, search, category string, page int) (*Page[*domain.Product], error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == categoryAll {
		category = ""
	}
	products, total, err := s.repo.ListProducts(ctx, repository.ProductQuery{
		Search:            strings.TrimSpace(search),
		SearchDescription: true,
		Category:          category,
		Limit:             ProductPageSize,
		Offset:            offsetOf(page, ProductPageSize),
	})
	if err != nil {
		return nil, err
	}
	return newPage(products, total, page, ProductPageSize), nil
}

func (s *CatalogService) FeaturedProducts(ctx context.Context) ([]*domain.Product, error) {
	return s.repo.FeaturedProducts(ctx)
}

func (s *CatalogService) GenerateDescription(ctx context.Context, productName string) (string, error) {
	productName = strings.TrimSpace(productName)
	if productName == "" {
		return "", invalid("product name is required")
	}
	if s.describer == nil {
		return "", ErrDescriberUnavailable
	}

	text, err := s.describer.Describe(ctx, productName)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDescriberFailed, err)
	}
	return text, nil
}

func (s *CatalogService) uniqueSlug(ctx context.Context, name string, excludeID int64) (string, error) {
	base := Slugify(name)
	if base == "" {
		base = "product"
	}
	slug := base
	for counter := 1; ; counter++ {
		taken, err := s.repo.SlugExists(ctx, slug, excludeID)
		if err != nil {
			return "", err
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, counter)
	}
}

func applyProductInput(p *domain.Product, in ProductInput) error {
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return invalid("name must not be empty")
		}
		p.Name = name
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Category != nil {
		category := strings.ToLower(strings.TrimSpace(*in.Category))
		if !domain.IsValidCategory(category) {
			return invalid("unknown category %q", *in.Category)
		}
		p.Category = category
	}
	if in.Price != nil {
		if in.Price.IsNegative() {
			return invalid("price must not be negative")
		}
		p.Price = in.Price.Round(2)
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return invalid("quantity must not be negative")
		}
		p.Quantity = *in.Quantity
	}
	if in.MinimumStock != nil {
		if *in.MinimumStock < 0 {
			return invalid("minimumStock must not be negative")
		}
		p.MinimumStock = *in.MinimumStock
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.ImageURL != nil {
		p.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	return nil
}

// newProductSKU builds "<first three letters of the category>-XXXXXX", using GEN without a category.
func newProductSKU(category string) string {
	prefix := "GEN"
	if category != "" {
		prefix = strings.ToUpper(category)
		if len(prefix) > 3 {
			prefix = prefix[:3]
		}
	}
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + strings.ToUpper(hex[:6])
}
