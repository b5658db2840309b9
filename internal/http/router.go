package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fjod/freshbuy/internal/metrics"
)

type Handlers struct {
	Auth      *AuthHandler
	Products  *ProductHandler
	Carts     *CartHandler
	Shipping  *ShippingHandler
	Checkout  *CheckoutHandler
	Orders    *OrdersHandler
	Analytics *AnalyticsHandler
}

type RouterConfig struct {
	Tokens         TokenParser
	Admins         AdminChecker
	Metrics        *metrics.Metrics
	RequestTimeout time.Duration
	// Health reports whether the backing stores are reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(h Handlers, cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)
	if cfg.Metrics != nil {
		r.Use(Metrics(cfg.Metrics.Server))
	}
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if cfg.Health != nil {
			if err := cfg.Health(r.Context()); err != nil {
				respondError(w, http.StatusServiceUnavailable, "service_unavailable", err.Error())
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	// Public
	r.Post("/signup", h.Auth.SignUp)
	r.Post("/signin", h.Auth.SignIn)
	r.Post("/token/refresh", h.Auth.Refresh)

	r.Get("/get_products", h.Products.ListProducts)
	r.Get("/get_all_products", h.Products.ListAllProducts)
	r.Get("/get_featured_products", h.Products.FeaturedProducts)
	r.Get("/get_product/{id}", h.Products.GetProduct)
	r.Get("/get_product_by_slug/{slug}", h.Products.GetProductBySlug)

	r.Get("/get_cart/{cart_code}", h.Carts.GetCart)
	r.Post("/add_to_cart", h.Carts.AddItem)
	r.Get("/check_product_in_cart", h.Carts.CheckProductInCart)
	r.Put("/increase_cartitem_quantity", h.Carts.IncreaseQuantity)
	r.Put("/decrease_cartitem_quantity", h.Carts.DecreaseQuantity)
	r.Delete("/delete_cartitem/{id}", h.Carts.DeleteItem)

	r.Group(func(r chi.Router) {
		r.Use(Authenticate(cfg.Tokens))

		r.Get("/user_is_admin", h.Auth.IsAdmin)
		r.Get("/user_is_logged_in", h.Auth.IsLoggedIn)

		r.Post("/create_or_update_shipping_info", h.Shipping.Save)
		r.Get("/get_shipping_address", h.Shipping.Get)

		r.Post("/initialize_payment", h.Checkout.InitializePayment)
		r.Get("/verify_payment/{reference}", h.Checkout.VerifyPayment)
		r.Get("/get_user_orders", h.Orders.GetUserOrders)

		r.Group(func(r chi.Router) {
			r.Use(RequireAdmin(cfg.Admins))

			r.Post("/add_product", h.Products.CreateProduct)
			r.Post("/generate_product_description", h.Products.GenerateDescription)
			r.Put("/update_product/{id}", h.Products.UpdateProduct)
			r.Patch("/update_product/{id}", h.Products.UpdateProduct)
			r.Delete("/delete_product/{id}", h.Products.DeleteProduct)

			r.Get("/get_all_orders", h.Orders.GetAllOrders)
			r.Put("/update_order_status/{id}", h.Orders.UpdateOrderStatus)
			r.Delete("/delete_order/{id}", h.Orders.DeleteOrder)

			r.Get("/analytics", h.Analytics.Analytics)
			r.Get("/dashboard-stats", h.Analytics.DashboardStats)
		})
	})

	return r
}
