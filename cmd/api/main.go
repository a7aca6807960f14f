package main

import (
	"context"
	"log"

	"github.com/issuedesk/issuedesk-backend/config"
	"github.com/issuedesk/issuedesk-backend/internal/bootstrap"
	"github.com/issuedesk/issuedesk-backend/internal/maintenance"
)

const serviceName = "issuedesk-api"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	ctx := context.Background()

	pool, err := bootstrap.OpenDB(ctx, bootstrap.DBOptions{DSN: cfg.Database.DSN()})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer pool.Close()

	rdb, err := bootstrap.OpenRedis(ctx, bootstrap.RedisOptions{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatalf("open redis: %v", err)
	}
	defer rdb.Close()

	maintenance.NewScheduler(pool).Start()

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName: serviceName,
		Cfg:         cfg,
		DB:          pool,
		Redis:       rdb,
	})

	addr := ":" + cfg.Server.Port
	log.Printf("%s listening on %s (env: %s)", serviceName, addr, cfg.App.Environment)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
