package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danthegoodman1/partman/ch"
	"github.com/danthegoodman1/partman/crdb"
	"github.com/danthegoodman1/partman/gologger"
	"github.com/danthegoodman1/partman/http_server"
	"github.com/danthegoodman1/partman/migrations"
	"github.com/danthegoodman1/partman/partcache"
	"github.com/danthegoodman1/partman/utils"
)

var logger = gologger.NewLogger()

func main() {
	logger.Debug().Msg("starting partman api")

	if err := crdb.ConnectToDB(); err != nil {
		logger.Error().Err(err).Msg("error connecting to CRDB")
		os.Exit(1)
	}

	err := migrations.CheckMigrations(utils.CRDB_DSN)
	if err != nil {
		logger.Error().Err(err).Msg("Error checking migrations")
		os.Exit(1)
	}

	if err := ch.ConnectToCH(); err != nil {
		logger.Error().Err(err).Msg("error connecting to clickhouse")
		os.Exit(1)
	}

	var cache partcache.Cache
	if utils.REDIS_ADDR != "" {
		ctx := logger.WithContext(context.Background())
		redisCache, err := partcache.NewRedisCache(ctx, time.Second*time.Duration(utils.GetEnvOrDefaultInt("PART_CACHE_TTL_SEC", 30)))
		if err != nil {
			logger.Error().Err(err).Msg("error connecting to redis part cache")
			os.Exit(1)
		}
		cache = redisCache
	}

	httpServer := http_server.StartHTTPServer(ch.Conn, cache)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	logger.Warn().Msg("received shutdown signal!")

	// For AWS ALB needing some time to de-register pod
	// Convert the time to seconds
	sleepTime := utils.GetEnvOrDefaultInt("SHUTDOWN_SLEEP_SEC", 0)
	logger.Info().Msg(fmt.Sprintf("sleeping for %ds before exiting", sleepTime))

	time.Sleep(time.Second * time.Duration(sleepTime))
	logger.Info().Msg(fmt.Sprintf("slept for %ds, exiting", sleepTime))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown HTTP server")
	} else {
		logger.Info().Msg("successfully shutdown HTTP server")
	}

	if cache != nil {
		if err := cache.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown part cache")
		}
	}
	if err := ch.Conn.Close(); err != nil {
		logger.Error().Err(err).Msg("failed to close clickhouse connection")
	}
	crdb.PGPool.Close()
}
