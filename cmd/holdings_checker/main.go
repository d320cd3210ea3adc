package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"

	"holdings_checker/internal/app/service"
	"holdings_checker/internal/client"
	"holdings_checker/internal/config"
	"holdings_checker/internal/infrastructure/restapi"
	"holdings_checker/internal/pkg/utils"
	"holdings_checker/internal/repository"
	"holdings_checker/pkg/metrics"
)

func main() {
	zapLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize zap logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	// Route log/slog output through zap so everything ends up in one stream.
	slogHandler := zapslog.NewHandler(zapLogger.Core())
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := utils.GetEnv("CONFIG_PATH", "config/config.yaml")
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		zapLogger.Fatal("Failed to load configuration", zap.Error(err))
	}
	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	// Market-data side: client, price table and the background page loop.
	coinGeckoClient := client.NewCoinGeckoClient(
		cfg.CoinGecko.BaseURL,
		cfg.CoinGecko.APIKey,
		time.Duration(cfg.CoinGecko.RequestTimeoutMillis)*time.Millisecond,
		cfg.CoinGecko.TokensPerPage,
		zapLogger,
	)
	priceTable := service.NewPriceTable(
		time.Duration(cfg.CoinGecko.CacheTTLMinutes)*time.Minute,
		zapLogger,
	)
	marketRefresher := service.NewMarketRefresher(
		coinGeckoClient,
		priceTable,
		time.Duration(cfg.CoinGecko.PageDelayMillis)*time.Millisecond,
		cfg.CoinGecko.MaxPages,
		nil,
		zapLogger,
	)

	// The refresher starts immediately and fills the table page by page;
	// holdings requests read whatever has been accumulated so far.
	refreshCtx, stopRefresh := context.WithCancel(context.Background())
	defer stopRefresh()
	go marketRefresher.Run(refreshCtx)

	// Wallet-data side.
	moralisClient := client.NewMoralisClient(
		cfg.Moralis.BaseURL,
		cfg.Moralis.APIKey,
		cfg.Moralis.Chain,
		time.Duration(cfg.Moralis.RequestTimeoutMillis)*time.Millisecond,
		cfg.Moralis.RateLimit,
		cfg.Moralis.BurstLimit,
		zapLogger,
	)
	recentStore := repository.NewFileRecentStore(cfg.RecentAddresses.File, cfg.RecentAddresses.Max, zapLogger)
	holdingsSvc := service.NewHoldingsService(moralisClient, priceTable, recentStore, cfg, zapLogger)
	zapLogger.Info("HoldingsService initialized")

	handler := restapi.NewHoldingsHandler(holdingsSvc, recentStore, marketRefresher, zapLogger)
	router := restapi.SetupRouter(handler, zapLogger)

	// Prometheus metrics endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Pprof endpoints (protect these in a production deployment)
	pprofRouter := router.Group("/debug/pprof")
	{
		pprofRouter.GET("/", gin.WrapF(pprof.Index))
		pprofRouter.GET("/cmdline", gin.WrapF(pprof.Cmdline))
		pprofRouter.GET("/profile", gin.WrapF(pprof.Profile))
		pprofRouter.GET("/symbol", gin.WrapF(pprof.Symbol))
		pprofRouter.GET("/trace", gin.WrapF(pprof.Trace))
		pprofRouter.GET("/heap", gin.WrapH(pprof.Handler("heap")))
		pprofRouter.GET("/goroutine", gin.WrapH(pprof.Handler("goroutine")))
	}

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	stopRefresh()

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
