package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"oloom-quiz-service/internal/app"
	"oloom-quiz-service/internal/config"
	"oloom-quiz-service/internal/domain"
	"oloom-quiz-service/internal/infra/memory"
	pgloader "oloom-quiz-service/internal/infra/postgres"
	redisinfra "oloom-quiz-service/internal/infra/redis"
	transport "oloom-quiz-service/internal/transport/http"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz round server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	roundTTL := config.TTLDuration(cfg.Redis.TTL, 24*time.Hour)

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var loader memory.CatalogLoader
	switch {
	case pool != nil:
		loader = pgloader.NewCatalogLoader(pool)
	case cfg.Catalog.Bank != "":
		loader = memory.NewBankFileLoader(cfg.Catalog.Bank)
	default:
		loader = memory.NewStaticCatalogLoader(sampleCatalogs())
	}

	catalogTTL := config.TTLDuration(cfg.Catalog.TTL, 10*time.Minute)
	var catalogRepo app.CatalogRepository
	if redisClient != nil {
		catalogRepo = redisinfra.NewCatalogRepository(redisClient, loader, catalogTTL)
	} else {
		catalogRepo = memory.NewCatalogRepository(loader, catalogTTL)
	}

	var seenStore app.SeenStore
	var roundStore app.RoundStore
	if redisClient != nil {
		seenStore = redisinfra.NewSeenStore(redisClient)
		roundStore = redisinfra.NewRoundStore(redisClient, roundTTL)
	} else {
		seenStore = memory.NewSeenStore()
		roundStore = memory.NewRoundStore()
	}

	catalogID := cfg.Catalog.ID
	if catalogID == "" {
		catalogID = "catalog-1"
	}
	service := app.NewRoundService(app.Config{
		CatalogID:        catalogID,
		RoundSize:        cfg.Round.Size,
		StreakBonusEvery: cfg.Round.StreakBonusEvery,
		Categories:       cfg.Round.Categories,
	}, catalogRepo, seenStore, roundStore)
	wsHandler := transport.NewWSHandler(service)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz round service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// sampleCatalogs provides a minimal bank for demos; deployments load a bank
// file or Postgres catalog instead.
func sampleCatalogs() map[string]domain.Catalog {
	return map[string]domain.Catalog{
		"catalog-1": {
			ID: "catalog-1",
			Questions: []domain.Question{
				{
					ID:       "q1",
					Kind:     domain.KindChoice,
					Category: "المادة",
					Prompt:   "أي مما يلي يعد من خصائص المادة الصلبة؟",
					Choices: []domain.Choice{
						{Label: "A", Text: "شكل ثابت"},
						{Label: "B", Text: "تأخذ شكل الوعاء"},
						{Label: "C", Text: "تنتشر في الفراغ"},
					},
					CorrectLabel: "A",
					CorrectText:  "شكل ثابت",
				},
				{
					ID:          "q2",
					Kind:        domain.KindBoolean,
					Category:    "الطاقة",
					Prompt:      "الطاقة الحركية تعتمد على كتلة الجسم وسرعته.",
					CorrectBool: true,
					CorrectText: "صح",
				},
				{
					ID:          "q3",
					Kind:        domain.KindFreeText,
					Category:    "الطاقة",
					Prompt:      "الطاقة المختزنة في الجسم بسبب حركته.",
					CorrectText: "الطاقة الحركية",
				},
			},
		},
	}
}
