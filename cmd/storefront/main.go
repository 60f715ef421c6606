package main

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"Storefront/internal/auth"
	"Storefront/internal/cart"
	"Storefront/internal/catalog"
	"Storefront/internal/checkout"
	"Storefront/internal/config"
	"Storefront/internal/contact"
	"Storefront/internal/favorites"
	"Storefront/internal/firebaseauth"
	"Storefront/internal/mail"
	"Storefront/internal/products"
	"Storefront/internal/session"
	"Storefront/internal/storage"
	"Storefront/internal/storefront"
	"Storefront/pkg/kit"
)

func main() {
	service := "storefront"
	cfg := config.Load()

	log := kit.NewLogger(service, cfg.DevLog)
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid config", zap.Error(err))
	}

	var onShutdown []func()
	var ready []storefront.ReadyCheck

	st, closeStorage, err := openStorage(cfg)
	if err != nil {
		log.Fatal("open storage failed", zap.Error(err), zap.String("backend", cfg.StorageBackend))
	}
	onShutdown = append(onShutdown, closeStorage)
	ready = append(ready, storefront.ReadyCheck{Name: "storage", Ping: st.Ping})

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		onShutdown = append(onShutdown, func() { _ = db.Close() })
		ready = append(ready, storefront.ReadyCheck{Name: "db", Ping: db.PingContext})
	}

	reg := prometheus.NewRegistry()
	m := kit.NewMetrics(reg)
	observe := func(slice string, result products.Status) { m.ObserveFetch(slice, string(result)) }

	mailer := newMailer(cfg, log)

	gw := catalog.NewClient(cfg.CatalogURL, cfg.CatalogTimeout)
	c := cart.NewStore(st, log.Named("cart"))
	favs := favorites.NewStore(st, log.Named("favorites"))

	provider, local, err := newProvider(cfg, db, mailer, log.Named("auth"))
	if err != nil {
		log.Fatal("init auth provider failed", zap.Error(err), zap.String("provider", cfg.AuthProvider))
	}
	var resets storefront.PasswordResetter
	var tokens storefront.IDTokenVerifier
	if local != nil {
		resets, tokens = local, local
		if db != nil {
			ready = append(ready, storefront.ReadyCheck{Name: "users", Ping: local.Ping})
		}
	}
	sess := session.New(provider, log.Named("session"),
		func() { c.ClearCart() },
		func() { favs.Clear() },
	)
	onShutdown = append(onShutdown, sess.Close)

	var orders checkout.Store = checkout.NewMemStore()
	if db != nil {
		orders = checkout.NewPostgresStore(db)
	}

	contactTo := cfg.ContactTo
	if contactTo == "" {
		contactTo = cfg.MailFrom
	}

	s := &storefront.Server{
		Log:     log,
		Catalog: gw,
		List: products.NewListSlice(gw, products.ListConfig{
			Limit:    cfg.CatalogListLimit,
			Skip:     cfg.CatalogListSkip,
			Debounce: products.NewDebouncer(cfg.SearchDebounce),
			Observe:  observe,
		}),
		Detail:          products.NewDetailSlice(gw, observe),
		Categories:      products.NewCategoriesSlice(gw, observe),
		Observe:         observe,
		Cart:            c,
		Favorites:       favs,
		Session:         sess,
		Resets:          resets,
		Tokens:          tokens,
		Checkout:        checkout.NewService(c, orders, log.Named("checkout")),
		Contact:         &contact.Service{Mailer: mailer, To: contactTo, Log: log.Named("contact")},
		Ready:           ready,
		AuthLimitPerMin: cfg.AuthRateLimitPerMin,
	}

	h := storefront.NewHandler(s, storefront.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       reg,
		Metrics:        m,
		MetricsEnabled: true,
		MetricsToken:   cfg.MetricsToken,
	})

	log.Info("storefront starting",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("catalog", cfg.CatalogURL),
		zap.String("storage", cfg.StorageBackend),
		zap.String("auth", cfg.AuthProvider),
		zap.Bool("db", db != nil),
	)

	if err := kit.RunHTTPServer(cfg.HTTPAddr, h, log, onShutdown...); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func openStorage(cfg config.Config) (storage.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.StorageMemory:
		return storage.NewMemory(), func() {}, nil
	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		return storage.NewRedis(rdb, cfg.RedisPrefix), func() { _ = rdb.Close() }, nil
	default:
		f, err := storage.NewFile(cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return f, func() {}, nil
	}
}

func newMailer(cfg config.Config, log *zap.Logger) mail.Mailer {
	if cfg.SendGridAPIKey == "" || cfg.MailFrom == "" {
		log.Warn("SENDGRID_API_KEY or MAIL_FROM not set, mail is logged only")
		return mail.NewLogMailer(log.Named("mail"))
	}
	return mail.NewSendGrid(cfg.SendGridAPIKey, cfg.MailFrom, log.Named("mail"))
}

// newProvider returns the identity provider and, when it is the local one,
// the same provider for reset confirmation and ID token checks.
func newProvider(cfg config.Config, db *sql.DB, mailer mail.Mailer, log *zap.Logger) (session.Provider, *auth.Provider, error) {
	if cfg.AuthProvider == config.AuthFirebase {
		p, err := firebaseauth.New(context.Background(), firebaseauth.Config{
			ProjectID:       cfg.FirebaseProjectID,
			CredentialsFile: cfg.FirebaseCredentialsFile,
			APIKey:          cfg.FirebaseAPIKey,
		}, mailer, log)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	}

	var users auth.UserStore = auth.NewMemStore()
	if db != nil {
		users = auth.NewPostgresStore(db)
	}
	p := auth.NewProvider(users, auth.NewTokenMaker(cfg.JWTSecret), mailer, log, auth.Config{ResetURL: cfg.ResetURL})
	return p, p, nil
}
