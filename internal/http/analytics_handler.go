package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/freshbuy/internal/service"
)

type AnalyticsAPI interface {
	Analytics(ctx context.Context) (*service.Analytics, error)
	DashboardStats(ctx context.Context) (*service.DashboardStats, error)
}

type AnalyticsHandler struct {
	svc     AnalyticsAPI
	timeout time.Duration
}

func NewAnalyticsHandler(svc AnalyticsAPI, timeout time.Duration) *AnalyticsHandler {
	return &AnalyticsHandler{svc: svc, timeout: timeout}
}

// GET /analytics
func (h *AnalyticsHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	a, err := h.svc.Analytics(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, a)
}

// GET /dashboard-stats
func (h *AnalyticsHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	stats, err := h.svc.DashboardStats(ctx)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	dto := DashboardDTO{
		TotalProducts:    stats.TotalProducts,
		TotalOrders:      stats.TotalOrders,
		TotalRevenue:     stats.TotalRevenue,
		LowStockProducts: make([]LowStockDTO, 0, len(stats.LowStockProducts)),
		RecentOrders:     make([]RecentOrderDTO, 0, len(stats.RecentOrders)),
	}
	for _, p := range stats.LowStockProducts {
		dto.LowStockProducts = append(dto.LowStockProducts, LowStockDTO{ID: p.ID, Name: p.Name, Category: p.Category, Quantity: p.Quantity})
	}
	for _, o := range stats.RecentOrders {
		dto.RecentOrders = append(dto.RecentOrders, RecentOrderDTO{
			ID:          o.ID,
			SKU:         o.SKU,
			TotalAmount: o.TotalAmount,
			Status:      o.Status.String(),
			CreatedAt:   o.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, dto)
}
