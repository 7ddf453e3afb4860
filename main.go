package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"papershelf/config"
	"papershelf/services"
	"papershelf/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	papersIngestedCounter prometheus.Counter
	orphansRemovedCounter prometheus.Counter
)

func init() {
	papersIngestedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "papers_ingested_total",
			Help: "Total number of papers ingested into the library.",
		},
	)
	orphansRemovedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orphan_files_removed_total",
			Help: "Total number of orphaned PDF files removed by the sweeper.",
		},
	)
	prometheus.MustRegister(papersIngestedCounter, orphansRemovedCounter)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Datenverzeichnis einmalig beim Start festlegen.
	dataDir, err := cfg.ResolveDataDir()
	if err != nil {
		logging.Fatal("Data dir resolve error", zap.Error(err))
	}
	logging.Info("Using data directory", zap.String("dir", dataDir))

	// Setup Database Connection
	store, err := storage.Open(cfg, logging)
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	// Setup Services
	ingestService := services.NewIngestService(cfg, store, logging)
	sweeper := services.NewSweeper(cfg, store, logging)

	// Reconciliation beim Start: Waisen aus abgebrochenen Läufen entfernen.
	if removed, err := sweeper.Run(context.Background()); err != nil {
		logging.Warn("Startup orphan sweep failed", zap.Error(err))
	} else if removed > 0 {
		orphansRemovedCounter.Add(float64(removed))
		logging.Info("Startup orphan sweep completed", zap.Int("removed", removed))
	}

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupPaperRoutes(router, ingestService, store, logging)
	setupHealthRoutes(router, store, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.SweepSchedule, func() {
		removed, err := sweeper.Run(context.Background())
		if err != nil {
			logging.Error("Scheduled orphan sweep failed", zap.Error(err))
		} else if removed > 0 {
			orphansRemovedCounter.Add(float64(removed))
			logging.Info("Scheduled orphan sweep completed", zap.Int("removed", removed))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func setupPaperRoutes(router *gin.Engine, ingest *services.IngestService, store *storage.Store, log *zap.Logger) {
	rg := router.Group("/papers")

	// POST /papers startet den vollständigen Ingest-Durchlauf. Der Body
	// modelliert die Dateiauswahl: path = lokale Datei, url = nicht
	// unterstützte Quelle, leerer Body = Abbruch durch den Benutzer.
	rg.POST("/", func(c *gin.Context) {
		var req struct {
			Path string `json:"path"`
			URL  string `json:"url"`
		}
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
				return
			}
		}

		var sel *services.Selection
		if req.Path != "" || req.URL != "" {
			sel = &services.Selection{Path: req.Path, URL: req.URL}
		}

		result, err := ingest.Run(c.Request.Context(), services.FixedPicker(sel))
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, services.ErrUnsupportedSource) || errors.Is(err, services.ErrInvalidFileName) {
				status = http.StatusBadRequest
			}
			log.Error("Paper ingestion failed", zap.Error(err))
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		if result.Stored {
			papersIngestedCounter.Inc()
		}
		c.JSON(http.StatusOK, result)
	})

	// GET /papers liefert alle Einträge, neueste zuerst.
	rg.GET("/", func(c *gin.Context) {
		papers, err := store.ListAll(c.Request.Context())
		if err != nil {
			log.Error("Database query for all papers failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, papers)
	})

	// GET /papers/file streamt die Bytes einer gespeicherten PDF zurück.
	rg.GET("/file", func(c *gin.Context) {
		path := c.Query("path")
		if path == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "path query parameter required"})
			return
		}
		bytes, err := services.ReadPDF(path)
		if err != nil {
			log.Error("PDF read failed", zap.String("path", path), zap.Error(err))
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/pdf", bytes)
	})
}

func setupHealthRoutes(router *gin.Engine, store *storage.Store, log *zap.Logger) {
	rg := router.Group("/health")

	rg.GET("/db", func(c *gin.Context) {
		count, err := store.Count(c.Request.Context())
		if err != nil {
			log.Error("Database health check failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Database connected. Papers stored: %d", count),
		})
	})
}
