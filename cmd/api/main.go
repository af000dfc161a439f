package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"cloud.google.com/go/storage"

	"clothcycle/internal/blob"
	"clothcycle/internal/config"
	"clothcycle/internal/db"
	"clothcycle/internal/httpserver"
	"clothcycle/internal/localstore"
	"clothcycle/internal/mailer"
	"clothcycle/internal/notify"
	cartitemrepo "clothcycle/internal/repository/cartitem"
	listingrepo "clothcycle/internal/repository/listing"
	ngoapprepo "clothcycle/internal/repository/ngoapp"
	orderrepo "clothcycle/internal/repository/order"
	cartsvc "clothcycle/internal/service/cart"
	checkoutsvc "clothcycle/internal/service/checkout"
	draftsvc "clothcycle/internal/service/draft"
	ngosvc "clothcycle/internal/service/ngo"
	photosvc "clothcycle/internal/service/photo"
)

func main() {
	cfg := config.FromEnv()
	logger := log.New(os.Stdout, "[api] ", log.LstdFlags|log.LUTC|log.Lshortfile)

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatalf("connect to db: %v", err)
	}
	defer dbpool.Close()

	stateStore, err := localstore.New(cfg.LocalStateDir)
	if err != nil {
		logger.Fatalf("init local state store: %v", err)
	}

	blobs, err := buildBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("init blob store: %v", err)
	}

	var verifier httpserver.TokenVerifier
	if cfg.FirebaseCredentialsFile != "" {
		verifier, err = httpserver.NewFirebaseVerifier(ctx, cfg.FirebaseCredentialsFile)
		if err != nil {
			logger.Fatalf("init firebase verifier: %v", err)
		}
	} else {
		logger.Printf("no firebase credentials configured, all callers are guests")
	}

	cartRepo := cartitemrepo.NewPostgres(dbpool, logger)
	listingRepo := listingrepo.NewPostgres(dbpool, logger)
	orderRepo := orderrepo.NewPostgres(dbpool, logger)
	ngoRepo := ngoapprepo.NewPostgres(dbpool, logger)

	var checkoutService *checkoutsvc.Service
	if cfg.SendGridKey != "" {
		checkoutService = checkoutsvc.New(orderRepo, mailer.NewSendGridClient(cfg.SendGridKey), cfg.OrderEmailFrom, logger)
	} else {
		logger.Printf("no sendgrid key configured, order confirmation mails are disabled")
		checkoutService = checkoutsvc.New(orderRepo, nil, "", logger)
	}

	sessions := httpserver.NewSessions(httpserver.SessionFactories{
		NewCart: func(deviceID string, notifier notify.Notifier) *cartsvc.Store {
			return cartsvc.NewStore(cartsvc.Config{
				Notifier: notifier,
				NewRemote: func(userID string) cartsvc.Strategy {
					return cartsvc.NewRemoteStrategy(cartRepo, userID)
				},
				NewLocal: func() cartsvc.Strategy {
					return cartsvc.NewLocalStrategy(stateStore, deviceID)
				},
				MergePolicy: cartsvc.MergePolicy(cfg.CartMergePolicy),
			})
		},
		NewDraft: func(deviceID, kind string, notifier notify.Notifier) *draftsvc.Machine {
			return draftsvc.New(stateStore, deviceID, kind, notifier, listingRepo)
		},
		NewPipeline: func() *photosvc.Pipeline {
			return photosvc.NewPipeline(photosvc.ImageNormalizer{}, blobs)
		},
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Verifier:      verifier,
		Sessions:      sessions,
		CheckoutSvc:   checkoutService,
		NGOSvc:        ngosvc.New(ngoRepo, blobs, cfg.NGODocBucket),
		Listings:      listingRepo,
		Orders:        orderRepo,
		ListingBucket: cfg.ListingBucket,
	})
	if err != nil {
		logger.Fatalf("init server: %v", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("starting http server on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stopCh:
		logger.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		logger.Printf("server error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Printf("graceful shutdown failed: %v", err)
	} else {
		logger.Printf("server stopped")
	}
}

func buildBlobStore(ctx context.Context, cfg config.Config) (blob.Store, error) {
	if cfg.BlobDriver == "gcs" {
		client, err := storage.NewClient(ctx)
		if err != nil {
			return nil, err
		}
		return blob.NewGCSStore(client), nil
	}
	return blob.NewLocalStore(cfg.BlobLocalDir, cfg.BlobLocalURL)
}
