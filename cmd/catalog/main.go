package main

import (
	"database/sql"
	"os"
	"strconv"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"Storefront/internal/catalogsvc"
	"Storefront/pkg/kit"
)

// The catalog service is a local stand-in for the hosted product catalog:
// same paths, same documents. Without DATABASE_URL it serves a seeded
// in-memory set.
func main() {
	service := "catalog"
	log := kit.NewLogger(service, os.Getenv("LOG_DEV") == "1")
	defer func() { _ = log.Sync() }()

	port := getenv("PORT", "8082")

	var store catalogsvc.Store = catalogsvc.NewSeededStore()
	var onShutdown []func()

	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("pgx", dsn)
		if err != nil {
			log.Fatal("db open failed", zap.Error(err))
		}
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(30 * time.Minute)
		onShutdown = append(onShutdown, func() { _ = db.Close() })
		store = catalogsvc.NewPostgresStore(db)
	}

	s := &catalogsvc.Server{Store: store, Log: log}

	h := catalogsvc.NewHandler(s, catalogsvc.HTTPDeps{
		Log:            log,
		Service:        service,
		Registry:       prometheus.NewRegistry(),
		MetricsEnabled: true,
		MetricsToken:   os.Getenv("METRICS_TOKEN"),
		Delay:          time.Duration(atoienv("CATALOG_DELAY_MS", 0)) * time.Millisecond,
	})

	if err := kit.RunHTTPServer(":"+port, h, log, onShutdown...); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func atoienv(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
