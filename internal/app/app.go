// Package app wires repositories and services into one graph shared by the
// server, the worker and the seed and admin tools.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"clubledger/internal/config"
	"clubledger/internal/core/changes"
	"clubledger/internal/core/period"
	"clubledger/internal/core/scope"
	"clubledger/internal/domain/auth"
	"clubledger/internal/domain/catalogs/club"
	"clubledger/internal/domain/catalogs/product"
	"clubledger/internal/domain/dashboard"
	"clubledger/internal/domain/documents/sale"
	"clubledger/internal/domain/expense"
	"clubledger/internal/domain/registers/inventory"
	"clubledger/internal/domain/reports"
	"clubledger/internal/infrastructure/cache"
	"clubledger/internal/infrastructure/numerator"
	"clubledger/internal/infrastructure/storage/postgres"
	"clubledger/internal/infrastructure/storage/postgres/auth_repo"
	"clubledger/internal/infrastructure/storage/postgres/catalog_repo"
	"clubledger/internal/infrastructure/storage/postgres/document_repo"
	"clubledger/internal/infrastructure/storage/postgres/expense_repo"
	"clubledger/internal/infrastructure/storage/postgres/register_repo"
	"clubledger/internal/infrastructure/storage/postgres/report_repo"
	"clubledger/pkg/logger"
)

const lockWait = 2 * time.Second

// App holds the process-wide dependencies.
type App struct {
	Config *config.Config
	Log    *logger.Logger

	Pool      *postgres.Pool
	TxManager *postgres.TxManager
	Redis     *redis.Client

	Periods     *period.Resolver
	Scopes      *scope.Resolver
	JWT         *auth.JWTService
	Idempotency *postgres.IdempotencyStore
	Audit       *postgres.AuditService

	Auth      *auth.Service
	Clubs     *club.Service
	Products  *product.Service
	Inventory *inventory.Service
	Sales     *sale.Service
	Expenses  *expense.Service
	Reports   *reports.Service
	Dashboard *dashboard.Service
}

// New connects to PostgreSQL (and Redis when configured) and builds every service.
// Redis failures are logged and the process continues without report caching
// or the cross-process ledger lock.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	loc, err := period.LoadLocation(cfg.Business.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", cfg.Business.Timezone, err)
	}
	a.Periods = period.NewResolver(loc, period.WithExpenseDayShift(cfg.Business.ExpenseDayShift))

	poolCfg := postgres.DefaultPoolConfig(cfg.Database.URL)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns
	a.Pool, err = postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	a.TxManager = postgres.NewTxManager(a.Pool)

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(ctx, cache.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			log.Warnw("redis unavailable, continuing without it", "address", cfg.Redis.Address, "error", err)
		} else {
			a.Redis = rdb
		}
	}

	if err := a.build(); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) build() error {
	cfg := a.Config
	txm := a.TxManager

	var err error
	a.Audit, err = postgres.NewAuditService(txm)
	if err != nil {
		return fmt.Errorf("init audit: %w", err)
	}
	a.Idempotency = postgres.NewIdempotencyStore(txm, cfg.HTTP.IdempotencyTTL)

	jwtCfg := auth.DefaultJWTConfig(cfg.JWT.Secret)
	jwtCfg.AccessTokenTTL = cfg.JWT.TTL
	a.JWT = auth.NewJWTService(jwtCfg)
	a.Auth = auth.NewService(
		auth_repo.NewUserRepo(txm),
		auth_repo.NewResetCodeRepo(txm),
		txm,
		a.JWT,
		auth.DefaultServiceConfig(),
	)

	a.Clubs = club.NewService(catalog_repo.NewClubRepo(txm), txm)
	a.Scopes = scope.NewResolver(a.Clubs)
	a.Products = product.NewService(catalog_repo.NewProductRepo(txm), a.Clubs, txm)
	a.Expenses = expense.NewService(expense_repo.NewExpenseRepo(txm), txm)

	// Report caching needs Redis: the write counters it keys on must be
	// shared by the server and the worker.
	var (
		notifier    changes.Notifier = changes.Nop{}
		reportCache *cache.ReportCache
	)
	if a.Redis != nil {
		reportCache = cache.NewReportCache(a.Redis, "clubledger")
		notifier = reportCache
	}
	a.Products.NotifyChanges(notifier)
	a.Expenses.NotifyChanges(notifier)

	ledgerOpts := []inventory.Option{
		inventory.WithAudit(a.Audit),
		inventory.WithAuditTrail(a.Audit),
		inventory.WithChanges(notifier),
	}
	if a.Redis != nil {
		ledgerOpts = append(ledgerOpts, inventory.WithLocker(cache.NewLocker(a.Redis, cfg.Redis.LockTTL, lockWait)))
	}
	a.Inventory = inventory.NewService(register_repo.NewInventoryRepo(txm), a.Products, txm, ledgerOpts...)

	numbers := numerator.NewWithProvider(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})
	a.Sales = sale.NewService(document_repo.NewSaleRepo(txm), a.Inventory, numbers, txm, sale.WithChanges(notifier))

	reportRepo := report_repo.NewReportRepo(txm)
	reportOpts := []reports.Option{reports.WithSnapshot(txm)}
	if reportCache != nil {
		reportOpts = append(reportOpts, reports.WithCache(reportCache, cfg.Redis.ReportCacheTTL))
	}
	a.Reports = reports.NewService(reportRepo, a.Inventory, a.Periods, reportOpts...)
	a.Dashboard = dashboard.NewService(reportRepo, a.Inventory, a.Clubs, a.Periods)

	return nil
}

// Close releases connections. It is safe to call on a partially built App.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Log.Warnw("close redis", "error", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}
