package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/weichenlin/tripmate/internal/apperr"
	"github.com/weichenlin/tripmate/internal/cache"
	"github.com/weichenlin/tripmate/internal/config"
	"github.com/weichenlin/tripmate/internal/database"
	"github.com/weichenlin/tripmate/internal/dispatcher"
	"github.com/weichenlin/tripmate/internal/gateway"
	"github.com/weichenlin/tripmate/internal/intent"
	"github.com/weichenlin/tripmate/internal/linking"
	"github.com/weichenlin/tripmate/internal/push"
	"github.com/weichenlin/tripmate/internal/scheduler"
	"github.com/weichenlin/tripmate/internal/server"
	"github.com/weichenlin/tripmate/internal/session"
)

const prewarmWorkers = 5

func main() {
	cfg := config.LoadFromEnv()

	// Phase 1: core infrastructure
	db, err := database.New(cfg.DBPath)
	if err != nil {
		fatal("creating database", err)
	}
	defer db.Close()

	tieredCache := cache.New(cache.Options{
		Capacities: [3]int{cfg.CacheL1Capacity, cfg.CacheL2Capacity, cfg.CacheL3Capacity},
		TTLs:       [3]time.Duration{cfg.CacheL1TTL, cfg.CacheL2TTL, cfg.CacheL3TTL},
		Policy:     cache.DefaultTierPolicy,
	})

	gw := gateway.New(db, tieredCache, cfg.LockerEndpoint)

	sender, err := push.NewLineSender(cfg.LineChannelToken)
	if err != nil {
		fatal("creating LINE sender", err)
	}

	// Phase 2: services
	linkService := linking.New(db, sender, linking.Config{
		ClientID:     cfg.LinkClientID,
		ClientSecret: cfg.LinkClientSecret,
		AuthURL:      cfg.LinkAuthURL,
		TokenURL:     cfg.LinkTokenURL,
		RedirectURL:  cfg.LinkRedirectURL,
	})

	sessions := session.NewStore()
	defer sessions.Stop()

	resolver := intent.NewResolver(intent.DefaultTable(cfg.SiteBaseURL))
	disp := dispatcher.New(db, gw, resolver, sender, sessions, linkService)

	sched := scheduler.New(db, sender, cfg.SchedulerInterval)
	sched.Start()
	defer sched.Stop()

	// Phase 3: HTTP
	srv := server.New(server.ServerConfig{
		Dispatcher:    disp,
		Linking:       linkService,
		Cache:         tieredCache,
		ChannelSecret: cfg.LineChannelSecret,
		Port:          cfg.HTTPPort,
	})
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "HTTP server error: %v\n", err)
		}
	}()
	log.Printf("Listening on :%d", cfg.HTTPPort)

	prewarmCache(gw)

	// Wait for shutdown signal
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown error: %v", err)
	}
}

// prewarmCache fills the hottest gateway entries before traffic lands.
// Best-effort: a cold cache is a latency problem, not a startup failure.
func prewarmCache(gw *gateway.Gateway) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var g errgroup.Group
	g.SetLimit(prewarmWorkers)

	g.Go(func() error {
		_, err := gw.TopRanked(ctx, 5)
		return err
	})
	for rank := 1; rank <= 5; rank++ {
		g.Go(func() error {
			_, err := gw.RankDetail(ctx, rank)
			if apperr.Is(err, apperr.NotFound) {
				// An empty slot is not a warm-up failure.
				return nil
			}
			return err
		})
	}

	if err := g.Wait(); err != nil {
		log.Printf("Cache pre-warm incomplete: %v", err)
	}
}

func fatal(what string, err error) {
	fmt.Fprintf(os.Stderr, "Fatal error %s: %v\n", what, err)
	os.Exit(1)
}
