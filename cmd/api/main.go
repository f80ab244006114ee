package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"github.com/tu-usuario/optica-pos/internal/application/auth"
	"github.com/tu-usuario/optica-pos/internal/application/fulfillment"
	"github.com/tu-usuario/optica-pos/internal/application/sales"
	"github.com/tu-usuario/optica-pos/internal/application/stock"
	"github.com/tu-usuario/optica-pos/internal/application/usecase"
	infracache "github.com/tu-usuario/optica-pos/internal/infrastructure/cache"
	infrapdf "github.com/tu-usuario/optica-pos/internal/infrastructure/pdf"
	"github.com/tu-usuario/optica-pos/internal/infrastructure/postgres"
	httpRouter "github.com/tu-usuario/optica-pos/internal/interfaces/http"
	"github.com/tu-usuario/optica-pos/pkg/config"
	"github.com/tu-usuario/optica-pos/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	// Cache de stock opcional. Sin Redis todo sigue funcionando contra la BD.
	var stockCache stock.StockCache
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("Redis no disponible, continuando sin cache de stock")
		} else {
			stockCache = infracache.NewRedisStockCache(redisClient)
			defer redisClient.Close()
		}
	}

	userRepo := postgres.NewUserRepository(pool)
	storeRepo := postgres.NewStoreRepository(pool)
	productRepo := postgres.NewProductRepository(pool)
	movementRepo := postgres.NewStockMovementRepository(pool)
	invoiceRepo := postgres.NewInvoiceRepository(pool)
	paymentRepo := postgres.NewPaymentRepository(pool)
	purchaseOrderRepo := postgres.NewPurchaseOrderRepository(pool)
	workshopOrderRepo := postgres.NewWorkshopOrderRepository(pool)
	txRunner := postgres.NewTxRunner(pool)

	recordMovementUC := stock.NewRecordMovementUseCase(txRunner, productRepo, storeRepo, stockCache, log)
	stockQueriesUC := stock.NewStockQueryUseCase(productRepo, movementRepo, stockCache)

	saga := fulfillment.NewLensFulfillmentSaga(purchaseOrderRepo, workshopOrderRepo, log)
	createInvoiceUC := sales.NewCreateInvoiceUseCase(
		txRunner, recordMovementUC, saga,
		storeRepo, productRepo, invoiceRepo, paymentRepo, log,
	)
	applyPaymentUC := sales.NewApplyPaymentUseCase(txRunner, invoiceRepo, paymentRepo)
	cancelInvoiceUC := sales.NewCancelInvoiceUseCase(txRunner, recordMovementUC, invoiceRepo)
	invoiceQueriesUC := sales.NewInvoiceQueryUseCase(invoiceRepo, paymentRepo)

	workshopUC := fulfillment.NewWorkshopUseCase(workshopOrderRepo, purchaseOrderRepo)
	storeUC := usecase.NewStoreUseCase(storeRepo)
	productUC := usecase.NewProductUseCase(productRepo, storeRepo)
	authUC := auth.NewAuthUseCase(userRepo, auth.JWTConfig{
		Secret:     cfg.JWT.Secret,
		ExpMinutes: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})

	ticketGenerator := infrapdf.NewMarotoTicketGenerator()

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	app.Use(swagger.New(swagger.Config{
		BasePath: "/",
		FilePath: "./docs/swagger.json",
		Path:     "docs",
		Title:    "Optica POS API",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StoreUC:         storeUC,
		ProductUC:       productUC,
		RecordMovement:  recordMovementUC,
		StockQueries:    stockQueriesUC,
		CreateInvoice:   createInvoiceUC,
		ApplyPayment:    applyPaymentUC,
		CancelInvoice:   cancelInvoiceUC,
		InvoiceQueries:  invoiceQueriesUC,
		WorkshopUC:      workshopUC,
		AuthUC:          authUC,
		TicketGenerator: ticketGenerator,
		JWTSecret:       cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
