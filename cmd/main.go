package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"dropindrop/config"
	"dropindrop/internal/pkg/cache"
	"dropindrop/internal/pkg/database"
	"dropindrop/internal/pkg/logger"
	"dropindrop/internal/pkg/messenger"
	"dropindrop/internal/pkg/token"
	"dropindrop/internal/rules/ticketrule"

	"dropindrop/internal/api/article"
	"dropindrop/internal/api/drop"
	"dropindrop/internal/api/group"
	"dropindrop/internal/api/order"
	"dropindrop/internal/api/router"
	"dropindrop/internal/api/user"
	"dropindrop/internal/repository/articlerepo"
	"dropindrop/internal/repository/droprepo"
	"dropindrop/internal/repository/grouprepo"
	"dropindrop/internal/repository/orderrepo"
	"dropindrop/internal/repository/userrepo"
	"dropindrop/internal/service/articleservice"
	"dropindrop/internal/service/dropservice"
	"dropindrop/internal/service/groupservice"
	"dropindrop/internal/service/orderservice"
	"dropindrop/internal/service/userservice"
)

// @title Drop-In-Drop API
// @version 1.0
// @description Catálogo, drops de WhatsApp com regra do mesmo dia e pedidos com ticket de retirada.
// @host localhost:8080
// @BasePath /v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("⚡ Inicializando serviço Drop-In-Drop...")
	// O .env é opcional: em Docker as variáveis vêm do ambiente.
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️ Aviso: Arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("❌ %v", err)
	}
	appLog := logger.NewLogger(cfg.LogLevel)
	if s, ok := appLog.(interface{ Sync() error }); ok {
		defer s.Sync()
	}
	appLog.Info("Configurações carregadas.", map[string]interface{}{
		"env":      cfg.Environment,
		"timezone": cfg.BusinessTimezone,
	})

	// 1. Infraestrutura

	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		appLog.Fatal("Falha ao conectar ao banco de dados.", err)
	}
	defer db.Close()
	dbx := database.WrapSqlx(db)
	appLog.Info("Conexão PostgreSQL estabelecida.", nil)

	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	defer cacheClient.Close()
	pingCtx, cancelPing := context.WithTimeout(context.Background(), 2*time.Second)
	if err := cacheClient.Ping(pingCtx); err != nil {
		// Sem Redis o cache e o rate limiter degradam (fail-open), o serviço continua.
		appLog.Warn("Redis indisponível; seguindo sem cache.", map[string]interface{}{"addr": cfg.RedisAddr, "error": err.Error()})
	} else {
		appLog.Info("Conexão Redis estabelecida.", nil)
	}
	cancelPing()

	var gateway messenger.Gateway
	if cfg.WhatsAppGatewayURL != "" {
		gateway = messenger.NewHTTPGateway(cfg.WhatsAppGatewayURL, cfg.WhatsAppGatewayToken, appLog)
	} else {
		appLog.Warn("WHATSAPP_GATEWAY_URL não definido; mensagens serão apenas logadas.", nil)
		gateway = messenger.NewLogGateway(appLog)
	}

	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 2. Injeção de dependências: Repository -> Service -> Handler

	articleRepo := articlerepo.NewArticleRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, appLog)
	dropRepo := droprepo.NewDropRepository(dbx, cfg.DBTimeout, appLog)
	groupRepo := grouprepo.NewGroupRepository(db, cfg.DBTimeout, appLog)
	orderRepo := orderrepo.NewOrderRepository(db, cfg.DBTimeout, appLog)
	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, appLog)

	articleSvc := articleservice.NewService(articleRepo, appLog)
	dropSvc := dropservice.NewService(dropRepo, gateway, cfg.Location(), appLog)
	groupSvc := groupservice.NewService(groupRepo, appLog)
	orderSvc := orderservice.NewService(orderRepo, articleRepo, ticketrule.NewGenerator(cfg.Location()), cfg.TicketMaxAttempts, appLog)
	userSvc := userservice.NewService(userRepo, tokenSvc)

	handlers := router.Handlers{
		Article: article.NewHandler(articleSvc, appLog),
		Drop:    drop.NewHandler(dropSvc, cfg.DropSendTimeout, appLog),
		Group:   group.NewHandler(groupSvc, appLog),
		Order:   order.NewHandler(orderSvc, appLog),
		User:    user.NewHandler(userSvc, appLog),
	}

	r := router.NewRouter(handlers, tokenSvc, cacheClient, router.RateLimit{
		MaxRequests: cfg.RateLimitMaxRequests,
		Period:      cfg.RateLimitPeriod,
		TrustProxy:  cfg.TrustProxy,
	}, appLog)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second, // o envio de drop estende com DROP_SEND_TIMEOUT
		IdleTimeout:  60 * time.Second,
	}

	// 3. Execução e Graceful Shutdown
	go func() {
		appLog.Info("Servidor Drop-In-Drop ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLog.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	appLog.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLog.Error("Desligamento do servidor forçado.", err)
	}

	appLog.Info("Servidor encerrado com sucesso.", nil)
}
