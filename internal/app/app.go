package app

import (
	"fmt"
	"time"

	bidding "auction-storefront/internal/biddingService"
	"auction-storefront/internal/cart"
	"auction-storefront/internal/catalog"
	"auction-storefront/internal/checkout"
	"auction-storefront/internal/config"
	"auction-storefront/internal/dashboard"
	"auction-storefront/internal/fixtures"
	"auction-storefront/internal/identity"
	"auction-storefront/internal/kvstore"
	"auction-storefront/internal/messaging"
	"auction-storefront/internal/messaging/kafka"
	"auction-storefront/internal/repository"
	"auction-storefront/internal/server"
	"auction-storefront/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Options overrides parts of the wiring, mainly for tests
type Options struct {
	Now        func() time.Time
	BcryptCost int
	Publisher  messaging.Publisher
}

// App is the wired storefront
type App struct {
	Router    *gin.Engine
	Repo      *repository.MemoryRepo
	Bidding   *bidding.BiddingService
	Publisher messaging.Publisher
}

// NewPublisher picks the kafka publisher when brokers are configured and
// the log publisher otherwise
func NewPublisher(cfg *config.Config) messaging.Publisher {
	if len(cfg.KafkaBrokers) == 0 {
		utils.Info("no kafka brokers configured, events are logged only", nil)
		return messaging.NewLogPublisher()
	}
	utils.Info("publishing events to kafka", map[string]any{
		"brokers":      cfg.KafkaBrokers,
		"topic_prefix": cfg.KafkaTopicPrefix,
	})
	return kafka.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicPrefix)
}

// New seeds the repositories from fixtures, opens a session for every
// seeded auction and builds the router
func New(cfg *config.Config, opts Options) (*App, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.Publisher == nil {
		opts.Publisher = NewPublisher(cfg)
	}

	seed, err := fixtures.Build(opts.Now(), opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}
	repo := repository.NewMemoryRepo()
	repo.Seed(seed)
	utils.Info("repository seeded", map[string]any{
		"products": len(seed.Products),
		"users":    len(seed.Users),
		"orders":   len(seed.Orders),
	})

	store := kvstore.NewMemoryStore()

	biddingSvc := bidding.NewBiddingService(repo, repo, opts.Publisher, bidding.Options{
		Increment:    cfg.BidIncrement,
		TickInterval: cfg.TickInterval,
		Now:          opts.Now,
	})
	if err := biddingSvc.OpenAll(); err != nil {
		return nil, fmt.Errorf("app: %w", err)
	}

	identitySvc := identity.NewService(repo, store, identity.Options{
		Secret:     []byte(cfg.JWTSecret),
		TokenTTL:   cfg.JWTTTL,
		BcryptCost: opts.BcryptCost,
		Now:        opts.Now,
	})
	cartSvc := cart.NewService(store, repo)

	router := server.SetupRouter(server.Services{
		Auth:      identitySvc,
		Identity:  identitySvc,
		Bidding:   biddingSvc,
		Catalog:   catalog.NewService(repo),
		Cart:      cartSvc,
		Checkout:  checkout.NewService(repo, repo, cartSvc, biddingSvc, opts.Publisher),
		Dashboard: dashboard.NewService(repo, repo, repo, biddingSvc),
	})

	return &App{
		Router:    router,
		Repo:      repo,
		Bidding:   biddingSvc,
		Publisher: opts.Publisher,
	}, nil
}

// Close stops every auction session and flushes the publisher
func (a *App) Close() error {
	a.Bidding.Shutdown()
	if err := a.Publisher.Close(); err != nil {
		return fmt.Errorf("app: close publisher: %w", err)
	}
	return nil
}
