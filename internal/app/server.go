package app

import (
	"context"
	"fmt"
	"log"

	"toolhub-service/internal/config"
	"toolhub-service/internal/db"
	catalogHandler "toolhub-service/internal/handlers/catalog"
	couponHandler "toolhub-service/internal/handlers/coupon"
	notifyH "toolhub-service/internal/handlers/notification"
	orderHandler "toolhub-service/internal/handlers/order"
	planHandler "toolhub-service/internal/handlers/plan"
	wsHandler "toolhub-service/internal/handlers/websocket"
	"toolhub-service/internal/middleware"
	"toolhub-service/internal/pkg/gateway"
	"toolhub-service/internal/pkg/identity"
	"toolhub-service/internal/pkg/ratelimit"
	"toolhub-service/internal/repository/postgres"
	catalogUsecase "toolhub-service/internal/service/catalog"
	couponUsecase "toolhub-service/internal/service/coupon"
	notifyUsecase "toolhub-service/internal/service/notification"
	orderUsecase "toolhub-service/internal/service/order"
	planUsecase "toolhub-service/internal/service/plan"
	"toolhub-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx := context.Background()

	// ----- PostgreSQL -----
	pool, err := db.ConnectDB()
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisCfg := db.RedisConfig{
		Addresses: []string{s.cfg.RedisAddr},
		Password:  s.cfg.RedisPass,
		DB:        0,
		PoolSize:  10,
	}

	redisClient, err := db.NewRedisClient(redisCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Println("[REDIS] ✅ Connected successfully")

	// ----- Logger -----
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	s.logger = logger

	// ----- Identity Verifier -----
	verifier, err := identity.LoadVerifier(s.cfg.Identity)
	if err != nil {
		return fmt.Errorf("failed to load identity verifier: %w", err)
	}

	// ----- Rate Limiter -----
	rateLimiter := ratelimit.NewLimiter(redisClient)

	// ----- Payment Gateway -----
	gatewayClient := gateway.NewClient(s.cfg.GatewayURL, s.cfg.GatewayKeyID, s.cfg.GatewayKeySecret)

	// ----- Repositories -----
	dbWrapper := postgres.NewDB(pool)
	userRepo := postgres.NewUserRepository(pool)
	planRepo := postgres.NewPlanRepository(pool)
	couponRepo := postgres.NewCouponRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool, couponRepo, dbWrapper)
	notifyRepo := postgres.NewNotificationRepository(pool, dbWrapper)
	catalogRepo := postgres.NewCatalogRepository(pool, dbWrapper)

	// ----- WebSocket Hub -----
	hub := websocket.NewHub(verifier)
	go hub.Run(context.Background())

	// ----- Services (Usecases) -----
	planService := planUsecase.NewPlanService(planRepo, redisClient, logger)
	couponService := couponUsecase.NewCouponService(couponRepo, logger)
	orderService := orderUsecase.NewOrderService(
		orderRepo,
		planRepo,
		couponService,
		gatewayClient,
		userRepo,
		hub,
		logger,
	)
	notifService := notifyUsecase.NewNotificationService(notifyRepo, userRepo, hub, logger)
	catalogService := catalogUsecase.NewCatalogService(catalogRepo, logger)

	// ----- Handlers -----
	planHandlerInst := planHandler.NewPlanHandler(planService)
	couponHandlerInst := couponHandler.NewCouponHandler(couponService, rateLimiter, logger)
	orderHandlerInst := orderHandler.NewOrderHandler(orderService, rateLimiter, logger)
	notifHandlerInst := notifyH.NewNotificationHandler(notifService)
	catalogHandlerInst := catalogHandler.NewCatalogHandler(catalogService)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(verifier, userRepo, logger)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		PlanHandler:     planHandlerInst,
		CouponHandler:   couponHandlerInst,
		OrderHandler:    orderHandlerInst,
		NotifHandler:    notifHandlerInst,
		CatalogHandler:  catalogHandlerInst,
		WSHandler:       wsHandlerInst,
		AuthMiddleware:  authMiddleware,
		OperatorKeyHash: s.cfg.OperatorKeyHash,
	}
	SetupRouter(s.engine, logger, handlers)

	// ----- Start HTTP -----
	log.Printf("🚀 Server running on %s", s.cfg.HTTPAddr)
	return s.engine.Run(s.cfg.HTTPAddr)
}
