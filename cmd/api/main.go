package main

import (
    "context"
    "log"
    "net/http"
    "os"
    "time"

    "github.com/jackc/pgx/v5/pgxpool"
    "github.com/redis/go-redis/v9"

    "shipvox/internal/auth"
    "shipvox/internal/carrier"
    "shipvox/internal/config"
    "shipvox/internal/db"
    "shipvox/internal/mapping"
    "shipvox/internal/rate"
    "shipvox/internal/server"
)

func main() {
    cfg, err := config.Load()
    if err != nil {
        log.Fatalf("config error: %v", err)
    }

    ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
    defer cancel()

    // Database is optional: without it mapping overrides live only in
    // memory and shipment booking is disabled.
    var pool *pgxpool.Pool
    if cfg.Database.URL != "" {
        pool, err = db.NewPool(ctx, cfg.Database.URL)
        if err != nil {
            log.Fatalf("failed to connect db: %v", err)
        }
        defer pool.Close()
        if err := pool.Ping(ctx); err != nil {
            log.Fatalf("database ping failed: %v", err)
        }
    } else {
        log.Println("database url not set; mappings are in-memory only")
    }

    // Carrier OAuth tokens go through Redis when configured so
    // replicas share them; otherwise each process caches its own.
    var tokenCache auth.TokenCache
    if cfg.Redis.Addr != "" {
        tokenCache = auth.NewRedisCache(redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr}))
    } else {
        tokenCache = auth.NewMemoryCache()
    }

    fedexBase := carrier.FedExBaseURL(cfg.FedEx.Environment)
    upsBase := carrier.UPSBaseURL(cfg.UPS.Environment)
    fedexTokens := auth.NewClientCredentials("fedex", fedexBase+"/oauth/token", cfg.FedEx.ClientID, cfg.FedEx.ClientSecret, false, tokenCache)
    upsTokens := auth.NewClientCredentials("ups", upsBase+"/security/v1/oauth/token", cfg.UPS.ClientID, cfg.UPS.ClientSecret, true, tokenCache)

    rates := carrier.NewService(
        carrier.NewFedExClient(fedexBase, cfg.FedEx.AccountNumber, fedexTokens),
        carrier.NewUPSClient(upsBase, upsTokens),
    )

    normalizer := rate.NewNormalizer()
    loadOverrides(ctx, normalizer, cfg, pool)
    comparer := rate.NewComparer(normalizer)

    h := server.New(pool, rates, normalizer, comparer)
    srv := &http.Server{
        Addr:              ":" + cfg.Server.Port,
        Handler:           h,
        ReadTimeout:       10 * time.Second,
        ReadHeaderTimeout: 10 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    log.Printf("api listening on :%s (fedex=%s ups=%s)", cfg.Server.Port, cfg.FedEx.Environment, cfg.UPS.Environment)
    if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
        log.Println("server error:", err)
        os.Exit(1)
    }
}

// loadOverrides seeds the normalizer from the optional CSV table and
// the database store. Database rows load last so they win over the file.
func loadOverrides(ctx context.Context, n *rate.Normalizer, cfg *config.Config, pool *pgxpool.Pool) {
    if cfg.Mappings.File != "" {
        f, err := os.Open(cfg.Mappings.File)
        if err != nil {
            log.Printf("mapping file %s not loaded: %v", cfg.Mappings.File, err)
        } else {
            rows, err := rate.LoadOverridesCSV(f)
            f.Close()
            if err != nil {
                log.Fatalf("mapping file %s: %v", cfg.Mappings.File, err)
            }
            for _, o := range rows {
                n.AddMapping(o.Carrier, o.ServiceName, o.Tier)
            }
            log.Printf("loaded %d mapping overrides from %s", len(rows), cfg.Mappings.File)
        }
    }
    if pool != nil {
        rows, err := mapping.NewStore(pool).All(ctx)
        if err != nil {
            log.Fatalf("failed to load mapping overrides: %v", err)
        }
        for _, o := range rows {
            n.AddMapping(o.Carrier, o.ServiceName, o.Tier)
        }
        log.Printf("loaded %d mapping overrides from database", len(rows))
    }
}
