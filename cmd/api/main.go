package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/freshkart/freshkart-api/internal/account"
	"github.com/freshkart/freshkart-api/internal/cart"
	"github.com/freshkart/freshkart-api/internal/catalog"
	"github.com/freshkart/freshkart-api/internal/checkout"
	"github.com/freshkart/freshkart-api/internal/config"
	"github.com/freshkart/freshkart-api/internal/dashboard"
	"github.com/freshkart/freshkart-api/internal/httpx"
	kafkax "github.com/freshkart/freshkart-api/internal/kafka"
	"github.com/freshkart/freshkart-api/internal/mailer"
	"github.com/freshkart/freshkart-api/internal/media"
	"github.com/freshkart/freshkart-api/internal/mongox"
	"github.com/freshkart/freshkart-api/internal/redisx"
	"github.com/freshkart/freshkart-api/internal/review"
)

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mongo
	client, err := mongox.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer client.Disconnect(context.Background())
	db := client.Database(cfg.MongoDB)

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Media host
	uploader, err := media.NewGCSUploader(ctx, cfg.MediaBucket, cfg.MediaBaseURL)
	if err != nil {
		log.Fatalf("media uploader: %v", err)
	}
	defer uploader.Close()

	// Kafka producers, one per topic
	placed := kafkax.NewProducer(cfg.KafkaBrokers, checkout.TopicOrderPlaced, 1024)
	placed.Start(ctx)
	status := kafkax.NewProducer(cfg.KafkaBrokers, checkout.TopicOrderStatus, 1024)
	status.Start(ctx)

	// Repos
	categoryRepo := catalog.NewCategoryRepo(db)
	subCategoryRepo := catalog.NewSubCategoryRepo(db)
	productRepo := catalog.NewProductRepo(db)
	cartRepo := cart.NewRepo(db)
	orderRepo := checkout.NewRepo(db)
	reviewRepo := review.NewRepo(db)
	userRepo := account.NewRepo(db)

	// Services
	tokens := &account.JWTIssuer{Secret: []byte(cfg.JWTSecret), TTL: cfg.TokenTTL}
	accounts := &account.Service{
		Users:   userRepo,
		Pending: redisx.NewPendingSignups(rdb, cfg.SignupTTL),
		Mail:    mailer.NewSendGrid(cfg.SendGridKey, cfg.MailFrom, cfg.ServiceName),
		Tokens:  tokens,
	}
	carts := &cart.Service{Repo: cartRepo}
	orders := &checkout.Service{
		Orders:    orderRepo,
		Carts:     cartRepo,
		Products:  productRepo,
		Placed:    placed,
		StatusPub: status,
		Cache:     redisx.NewStatusCache(rdb),
		Producer:  cfg.ServiceName,
	}

	// Router
	router := httpx.NewRouter()
	httpx.Mount(router, httpx.Handlers{
		Auth:    &httpx.Auth{Tokens: tokens},
		Account: &httpx.AccountHandler{Accounts: accounts},
		Catalog: &httpx.CatalogHandler{
			Categories:    &catalog.CategoryService{Repo: categoryRepo, Media: uploader},
			SubCategories: &catalog.SubCategoryService{Repo: subCategoryRepo, Media: uploader},
			Products:      &catalog.ProductService{Repo: productRepo, Media: uploader},
		},
		Cart:      &httpx.CartHandler{Carts: carts},
		Checkout:  &httpx.CheckoutHandler{Orders: orders},
		Review:    &httpx.ReviewHandler{Reviews: &review.Service{Repo: reviewRepo, Products: productRepo}},
		Dashboard: &httpx.DashboardHandler{Stats: &dashboard.Reader{Redis: rdb, Reviews: reviewRepo}},
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		log.Printf("HTTP listening at %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Println("shutting down...")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	placed.Close() // close inbox -> flush & close writer
	status.Close()
	cancel() // stop producer loops
	placed.WaitClosed()
	status.WaitClosed()
}
