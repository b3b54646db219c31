package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/agure1996/cinab-website/internal/cart"
	"github.com/agure1996/cinab-website/internal/catalog"
	"github.com/agure1996/cinab-website/internal/checkout"
	"github.com/agure1996/cinab-website/internal/db"
	"github.com/agure1996/cinab-website/internal/events"
	httpapi "github.com/agure1996/cinab-website/internal/http"
	"github.com/agure1996/cinab-website/internal/order"
	"github.com/agure1996/cinab-website/internal/users"
)

func main() {
	port := getEnv("PORT", "8080")

	logger := log.New(os.Stdout, "[shop-service] ", log.LstdFlags|log.Lshortfile)

	// DB
	dsn, err := db.DSNFromEnv()
	if err != nil {
		logger.Fatal(err)
	}
	if err := db.Migrate(dsn, logger); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	database, err := db.Open(dsn)
	if err != nil {
		logger.Fatalf("connect db: %v", err)
	}
	defer database.Close()

	productRepo := catalog.NewProductRepository(database)
	categoryRepo := catalog.NewCategoryRepository(database)
	imageRepo := catalog.NewImageRepository(database)
	cartRepo := cart.NewRepository(database)
	orderRepo := order.NewRepository(database)
	userRepo := users.NewRepository(database)

	// RabbitMQ
	rabbitConn := events.MustDial()
	defer rabbitConn.Close()

	seqRepo := events.NewSequenceRepository(database)
	publisher, err := events.NewPublisher(rabbitConn, seqRepo, events.PublisherOptions{})
	if err != nil {
		logger.Fatalf("create publisher: %v", err)
	}
	defer publisher.Close()

	// Context for consumer
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := events.StartOrderPlacedConsumer(ctx, rabbitConn, orderRepo, logger); err != nil {
		logger.Fatalf("start consumer: %v", err)
	}

	cartSvc := cart.NewService(cartRepo, productRepo)
	checkoutSvc := checkout.NewService(database, cartRepo, productRepo, orderRepo, publisher, logger)

	// HTTP
	router := httpapi.NewRouter(
		httpapi.NewCatalogHandler(productRepo, categoryRepo, imageRepo),
		httpapi.NewCartHandler(cartSvc),
		httpapi.NewOrderHandler(orderRepo, checkoutSvc),
		httpapi.NewUserHandler(userRepo),
	)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Printf("shop-service listening on :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	cancel()
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
