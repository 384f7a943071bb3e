package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "dropindrop/docs" // registra a especificação Swagger gerada
	"dropindrop/internal/api/article"
	"dropindrop/internal/api/drop"
	"dropindrop/internal/api/group"
	"dropindrop/internal/api/order"
	"dropindrop/internal/api/user"
	"dropindrop/internal/domain"
	"dropindrop/internal/pkg/cache"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/middleware"
)

// Handlers reúne os handlers já inicializados por injeção de dependências.
type Handlers struct {
	Article *article.Handler
	Drop    *drop.Handler
	Group   *group.Handler
	Order   *order.Handler
	User    *user.Handler
}

// RateLimit configura o limitador global. TrustProxy só deve ser ligado
// atrás de um proxy que sobrescreve X-Forwarded-For e X-Real-IP; sem ele o
// limitador usa o endereço da conexão.
type RateLimit struct {
	MaxRequests int
	Period      time.Duration
	TrustProxy  bool
}

// NewRouter configura e retorna o roteador HTTP principal.
func NewRouter(h Handlers, tokenSvc middleware.TokenService, cacheClient cache.Client, limit RateLimit, log logger.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	if limit.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestLogger(log))
	r.Use(chimw.Recoverer)

	r.Get("/ping", PingHandler)
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.RateLimiter(cacheClient, limit.MaxRequests, limit.Period, log))

		// Rotas públicas
		r.Post("/register", h.User.RegisterUserHandler)
		r.Post("/login", h.User.LoginUserHandler)
		r.Get("/articles", h.Article.ListArticlesHandler)
		r.Get("/articles/{id}", h.Article.GetArticleHandler)
		r.Post("/orders", h.Order.PlaceOrderHandler)

		// Rotas de administração
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAuthMiddleware(tokenSvc, log))
			r.Use(middleware.PermissionMiddleware(log, domain.RoleAdmin))

			r.Post("/articles", h.Article.CreateArticleHandler)
			r.Post("/articles/{id}/stock", h.Article.AdjustStockHandler)

			r.Get("/groups", h.Group.ListGroupsHandler)
			r.Post("/groups", h.Group.CreateGroupHandler)
			r.Get("/groups/{id}", h.Group.GetGroupHandler)
			r.Put("/groups/{id}", h.Group.UpdateGroupHandler)
			r.Delete("/groups/{id}", h.Group.DeleteGroupHandler)

			r.Post("/drops", h.Drop.CreateDropHandler)
			r.Get("/drops/{id}", h.Drop.GetDropHandler)
			r.Get("/drops/{id}/send-preview", h.Drop.PreviewSendHandler)
			r.Post("/drops/{id}/send", h.Drop.SendDropHandler)

			r.Get("/orders/ticket/{code}", h.Order.FindByTicketHandler)
			r.Post("/orders/{id}/paid", h.Order.MarkPaidHandler)
			r.Post("/orders/{id}/failed", h.Order.MarkFailedHandler)
			r.Post("/orders/{id}/refund", h.Order.RefundHandler)
			r.Post("/orders/{id}/pickup", h.Order.PickupHandler)
			r.Post("/orders/{id}/cancel", h.Order.CancelPickupHandler)
		})
	})

	return r
}

// PingHandler é o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
