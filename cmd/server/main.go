package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinix-uz/clinix-sdk/modules/core/infrastructure/persistence"
	"github.com/clinix-uz/clinix-sdk/modules/core/presentation/controllers"
	"github.com/clinix-uz/clinix-sdk/modules/core/reconcile"
	"github.com/clinix-uz/clinix-sdk/modules/core/services"
	"github.com/clinix-uz/clinix-sdk/pkg/configuration"
	"github.com/clinix-uz/clinix-sdk/pkg/eventbus"
	"github.com/clinix-uz/clinix-sdk/pkg/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	defer func() {
		if r := recover(); r != nil {
			configuration.Use().Unload()
			log.Println(r)
			debug.PrintStack()
			os.Exit(1)
		}
	}()

	conf := configuration.Use()
	logger := conf.Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		panic(err)
	}
	defer pool.Close()

	bus := eventbus.NewEventPublisher(logger)
	accountRepo := persistence.NewAccountRepository()
	referenceRepo := persistence.NewReferenceRepository()
	bulkService := services.NewBulkAccountService(accountRepo, referenceRepo, bus, logger)
	accountService := services.NewAccountService(accountRepo, bus)

	baseOptions := reconcile.Options{
		MaxDeleteBatch: conf.Bulk.MaxDeleteBatch,
		Workers:        conf.Bulk.Workers,
		StoreTimeout:   time.Duration(conf.Bulk.StoreTimeoutMS) * time.Millisecond,
	}

	router := mux.NewRouter()
	router.Use(
		middleware.WithLogger(logger),
		middleware.WithPool(pool),
	)
	controllers.NewAccountsController(accountService).Register(router)
	controllers.NewBulkAccountsController(bulkService, baseOptions).Register(router)

	srv := &http.Server{
		Addr:         conf.SocketAddress,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	go func() {
		logger.Infof("listening on %s", conf.SocketAddress)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("graceful shutdown failed")
	}
	conf.Unload()
}
