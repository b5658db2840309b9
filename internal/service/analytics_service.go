package service

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/repository"
)

const (
	topProductsLimit  = 5
	recentOrdersLimit = 5
)

var categoryColors = []string{"#8884d8", "#82ca9d", "#ffc658", "#ff7c7c", "#00C49F", "#FFBB28", "#FF8042"}

type AnalyticsStore interface {
	PaidRevenue(ctx context.Context) (domain.RevenueSummary, error)
	MonthlySales(ctx context.Context) ([]domain.MonthlySales, error)
	CategoryCounts(ctx context.Context) ([]domain.CategoryCount, error)
	TopProducts(ctx context.Context, limit int) ([]domain.ProductSales, error)
	CountProducts(ctx context.Context) (int, error)
	CountOrders(ctx context.Context) (int, error)
	LowStockProducts(ctx context.Context, below int) ([]*domain.Product, error)
	ListOrders(ctx context.Context, q repository.OrderQuery) ([]*domain.Order, int, error)
}

type KeyMetrics struct {
	TotalRevenue      decimal.Decimal `json:"total_revenue"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
}

type SalesPoint struct {
	Month  string          `json:"month"`
	Sales  decimal.Decimal `json:"sales"`
	Orders int             `json:"orders"`
}

type CategorySlice struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Color string `json:"color"`
}

type TopProduct struct {
	Name    string          `json:"name"`
	Sold    int             `json:"sold"`
	Revenue decimal.Decimal `json:"revenue"`
}

type Analytics struct {
	Metrics      KeyMetrics      `json:"metrics"`
	SalesData    []SalesPoint    `json:"sales_data"`
	CategoryData []CategorySlice `json:"category_data"`
	TopProducts  []TopProduct    `json:"top_products"`
}

type DashboardStats struct {
	TotalProducts    int
	TotalOrders      int
	TotalRevenue     decimal.Decimal
	LowStockProducts []*domain.Product
	RecentOrders     []*domain.Order
}

type AnalyticsService struct {
	repo AnalyticsStore
}

func NewAnalyticsService(repo AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

func (s *AnalyticsService) Analytics(ctx context.Context) (*Analytics, error) {
	var (
		revenue    domain.RevenueSummary
		monthly    []domain.MonthlySales
		categories []domain.CategoryCount
		top        []domain.ProductSales
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { revenue, err = s.repo.PaidRevenue(gctx); return })
	g.Go(func() (err error) { monthly, err = s.repo.MonthlySales(gctx); return })
	g.Go(func() (err error) { categories, err = s.repo.CategoryCounts(gctx); return })
	g.Go(func() (err error) { top, err = s.repo.TopProducts(gctx, topProductsLimit); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &Analytics{
		Metrics: KeyMetrics{
			TotalRevenue:      revenue.Revenue,
			TotalOrders:       revenue.Orders,
			AverageOrderValue: decimal.Zero,
		},
		SalesData:    make([]SalesPoint, 0, len(monthly)),
		CategoryData: make([]CategorySlice, 0, len(categories)),
		TopProducts:  make([]TopProduct, 0, len(top)),
	}
	if revenue.Orders > 0 {
		out.Metrics.AverageOrderValue = revenue.Revenue.Div(decimal.NewFromInt(int64(revenue.Orders))).Round(2)
	}

	for _, m := range monthly {
		out.SalesData = append(out.SalesData, SalesPoint{
			Month:  m.Month.Format("Jan"),
			Sales:  m.Sales,
			Orders: m.Orders,
		})
	}
	for i, c := range categories {
		out.CategoryData = append(out.CategoryData, CategorySlice{
			Name:  categoryLabel(c.Category),
			Value: c.Products,
			Color: categoryColors[i%len(categoryColors)],
		})
	}
	for _, p := range top {
		out.TopProducts = append(out.TopProducts, TopProduct{
			Name:    p.Name,
			Sold:    p.Sold,
			Revenue: p.Price.Mul(decimal.NewFromInt(int64(p.Sold))),
		})
	}
	return out, nil
}

func (s *AnalyticsService) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var (
		out     DashboardStats
		revenue domain.RevenueSummary
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { out.TotalProducts, err = s.repo.CountProducts(gctx); return })
	g.Go(func() (err error) { out.TotalOrders, err = s.repo.CountOrders(gctx); return })
	g.Go(func() (err error) { revenue, err = s.repo.PaidRevenue(gctx); return })
	g.Go(func() (err error) {
		out.LowStockProducts, err = s.repo.LowStockProducts(gctx, domain.LowStockThreshold)
		return
	})
	g.Go(func() (err error) {
		out.RecentOrders, _, err = s.repo.ListOrders(gctx, repository.OrderQuery{Limit: recentOrdersLimit})
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out.TotalRevenue = revenue.Revenue
	return &out, nil
}

// categoryLabel turns a stored category into its display name.
func categoryLabel(category string) string {
	if category == "" {
		return "Uncategorized"
	}
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
