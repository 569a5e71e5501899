package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"vrhub/internal/aggregate"
	"vrhub/internal/auth"
	"vrhub/internal/games"
	"vrhub/internal/manifest"
	"vrhub/internal/notify"
	"vrhub/internal/oculus"
	synchub "vrhub/internal/sync"
	"vrhub/internal/translate"
	"vrhub/pkg/database"
	"vrhub/pkg/utils"
)

func main() {
	dbCfg := database.DefaultConfig()
	db := database.MustOpen(dbCfg)
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	router := gin.Default()

	// Optional: avoid "trusted all proxies" warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	// Start TCP sync first (so you notice binding errors early)
	hub := synchub.NewHub()
	router.GET("/ws", synchub.WSHandler(hub))
	tcpSrv := synchub.NewServer(":7070", hub)

	// UDP new-game notifications
	registry := notify.NewRegistry()
	notifySrv := notify.NewServer(":7071", registry, log.Default())

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "db": dbCfg.Path})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"db_error":    err.Error(),
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"db":          "ok",
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		c.JSON(http.StatusOK, gin.H{
			"db":          dbCfg.Path,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	// Games (public)
	gameRepo := games.NewRepo(db)
	gameHandler := games.NewHandler(gameRepo)
	gameHandler.RegisterRoutes(router.Group("/games"))

	// Auth
	authCfg := utils.LoadAuthConfig()
	tokenSvc := auth.TokenService{
		Secret:   []byte(authCfg.JWTSecret),
		Issuer:   authCfg.JWTIssuer,
		Duration: authCfg.JWTDuration,
	}
	authRepo := auth.NewRepo(db)
	authHandler := auth.NewHandler(authRepo, tokenSvc)
	authHandler.RegisterRoutes(router.Group("/auth"))

	// Import pipeline
	importCfg := utils.LoadImportConfig()
	tables, err := translate.LoadTables(importCfg.TokenTablesPath)
	if err != nil {
		log.Printf("token tables: %v (using defaults)", err)
	}
	client, err := oculus.NewGraphQLClient(log.Default())
	if err != nil {
		log.Fatalf("oculus client: %v", err)
	}
	manifests := manifest.NewRepository(manifest.StaticPaths{
		Libraries: importCfg.LibraryPaths,
		Install:   importCfg.OculusPath,
	}, log.Default())

	aggregator := aggregate.New(manifests, client, translate.New(tables, log.Default()), log.Default())
	aggregator.Store = gameRepo
	aggregator.Events = hub
	aggregator.Notifier = notifySrv

	// Import and metadata need a logged-in caller
	protected := router.Group("/")
	protected.Use(auth.Middleware(tokenSvc, authRepo))

	protected.POST("/import", func(c *gin.Context) {
		result, err := aggregator.Import(c.Request.Context(), importCfg)
		if err != nil {
			if errors.Is(err, oculus.ErrNotAuthenticated) {
				c.JSON(http.StatusOK, gin.H{
					"total":   len(result),
					"warning": "store session expired, online titles skipped",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "import failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"total": len(result)})
	})

	protected.GET("/metadata/:id", func(c *gin.Context) {
		g := aggregator.Metadata(c.Request.Context(), importCfg, c.Param("id"))
		if g == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusOK, g)
	})

	httpSrv := &http.Server{
		Addr:    ":8080",
		Handler: router,
	}

	errCh := make(chan error, 3)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := tcpSrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := notifySrv.Run(); err != nil {
			errCh <- err
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Println("HTTP API server listening on :8080")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("shutdown signal received: %s", sig)
	case err := <-errCh:
		log.Printf("server error: %v", err)
	}

	log.Println("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown error: %v", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Printf("tcp shutdown error: %v", err)
	}
	if err := notifySrv.Close(); err != nil {
		log.Printf("notify shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("servers stopped")
}
