package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"food-order/config"
	"food-order/controllers"
	"food-order/libs"
	"food-order/logger"
	"food-order/middleware"
	"food-order/repositories"
	"food-order/routes"
	"food-order/services"
	"food-order/utils"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	serviceName       = "food-order"
	kvPurgeInterval   = 10 * time.Minute
	shutdownFlushWait = 5 * time.Second
)

// App owns every long-lived collaborator of the running server.
type App struct {
	Config   *config.Config
	Log      *logger.Logger
	Router   *gin.Engine
	Ledger   *services.CartLedger
	Checkout *services.CheckoutService

	db    *pgxpool.Pool
	redis *redis.Client

	stopPurge context.CancelFunc
	purgeWG   sync.WaitGroup
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
		Output:      os.Stdout,
	})

	app := &App{Config: cfg, Log: log}
	if err := app.init(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	return app, nil
}

func (a *App) init(ctx context.Context) error {
	cfg, log := a.Config, a.Log

	if err := config.RunMigrations(cfg); err != nil {
		return err
	}
	db, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return err
	}
	a.db = db
	log.Info(ctx, "database connected")

	kv, err := a.keyValueStore(ctx)
	if err != nil {
		return err
	}

	var catalog services.CatalogSource = repositories.NewStoreRepository(db)
	if cfg.CatalogSource == config.CatalogStatic {
		catalog = repositories.NewStaticCatalog()
	}

	ledger := services.NewCartLedger(kv, log)
	if err := ledger.Load(ctx); err != nil {
		log.Warn(ctx, "starting with an empty cart", err)
	}
	a.Ledger = ledger

	var (
		mailer   *libs.SMTPMailer
		geocoder services.Geocoder
		photos   services.PhotoStorage
	)
	if cfg.MailerEnabled() {
		if mailer, err = libs.NewSMTPMailer(cfg); err != nil {
			return err
		}
	} else {
		log.Warn(ctx, "SMTP not configured, emails disabled", nil)
	}
	if cfg.GoogleAPIKey != "" {
		client, err := libs.NewGeocodingClient(cfg.GoogleAPIKey, libs.WithGeocodingBaseURL(cfg.GeocodingBaseURL))
		if err != nil {
			return err
		}
		geocoder = client
	} else {
		log.Warn(ctx, "google api key not configured, geocoding disabled", nil)
	}
	if cfg.CloudinaryEnabled() {
		storage, err := libs.NewCloudinaryStorage(cfg)
		if err != nil {
			return err
		}
		photos = storage
	} else {
		log.Warn(ctx, "cloudinary not configured, photo upload disabled", nil)
	}

	var (
		confirmations services.OrderConfirmationSender
		otpSender     services.OTPSender
	)
	if mailer != nil {
		confirmations, otpSender = mailer, mailer
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	orders := services.NewOrderService(repositories.NewOrderRepository(db))
	payments := services.NewPaymentService(repositories.NewPaymentRepository(db))
	stores := services.NewStoreService(catalog, kv, log)
	locations := services.NewLocationService(kv, geocoder, log)
	checkout := services.NewCheckoutService(
		ledger,
		services.NewSimulatedGateway(cfg.PaymentSuccessRate, cfg.PaymentLatency),
		orders,
		payments,
		confirmations,
		services.CheckoutConfig{TaxRate: cfg.TaxRateDecimal(), DeliveryFee: cfg.DeliveryFeeDecimal()},
		log,
	)
	a.Checkout = checkout

	auth := services.NewAuthService(services.AuthDeps{
		Users:         repositories.NewUserRepository(db),
		Tokens:        tokens,
		Session:       kv,
		Ledger:        ledger,
		Photos:        photos,
		Mailer:        otpSender,
		MaxUploadSize: cfg.MaxUploadSize,
		Log:           log,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	router.MaxMultipartMemory = cfg.MaxUploadSize
	router.Use(middleware.RequestLogger(log), middleware.Recovery(log))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	routes.SetupRoutes(router, routes.Controllers{
		Auth:     controllers.NewAuthController(auth, log),
		Cart:     controllers.NewCartController(ledger, stores, checkout, log),
		Checkout: controllers.NewCheckoutController(checkout, log),
		Store:    controllers.NewStoreController(stores, locations, log),
		Location: controllers.NewLocationController(locations, log),
		Order:    controllers.NewOrderController(orders, log),
		Payment:  controllers.NewPaymentController(payments, log),
	}, middleware.AuthMiddleware(tokens, log), middleware.SessionMiddleware(auth, log))
	a.Router = router

	return nil
}

func (a *App) keyValueStore(ctx context.Context) (repositories.KeyValueStore, error) {
	cfg := a.Config
	switch cfg.StorageDriver {
	case config.StorageRedis:
		client, err := config.ConnectRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		a.redis = client
		a.Log.Info(ctx, "redis connected")
		return repositories.NewRedisStore(client, cfg.StorageNS), nil
	case config.StoragePostgres:
		store := repositories.NewPostgresStore(a.db)
		a.startPurge(store)
		return store, nil
	case config.StorageMemory:
		return repositories.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// startPurge periodically drops expired rows from the Postgres key-value table.
func (a *App) startPurge(store *repositories.PostgresStore) {
	ctx, cancel := context.WithCancel(context.Background())
	a.stopPurge = cancel
	a.purgeWG.Add(1)

	go func() {
		defer a.purgeWG.Done()
		ticker := time.NewTicker(kvPurgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := store.PurgeExpired(ctx)
				if err != nil && !errors.Is(err, context.Canceled) {
					a.Log.Warn(ctx, "kv purge failed", err)
					continue
				}
				if n > 0 {
					a.Log.Event(ctx, zerolog.DebugLevel).Int64("rows", n).Msg("purged expired kv entries")
				}
			}
		}
	}()
}

// Close flushes the cart, waits for background mail and releases connections.
func (a *App) Close(ctx context.Context) {
	if a.Ledger != nil {
		flushCtx, cancel := context.WithTimeout(ctx, shutdownFlushWait)
		if err := a.Ledger.Flush(flushCtx); err != nil {
			a.Log.Error(ctx, "failed to flush cart on shutdown", err)
		}
		cancel()
	}
	if a.Checkout != nil {
		a.Checkout.Wait()
	}
	if a.stopPurge != nil {
		a.stopPurge()
		a.purgeWG.Wait()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.Log.Warn(ctx, "failed to close redis", err)
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
