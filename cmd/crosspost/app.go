package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	config "github.com/crosspost-app/crosspost/configs"
	"github.com/crosspost-app/crosspost/internal/errorhandler"
	"github.com/crosspost-app/crosspost/internal/media"
	"github.com/crosspost-app/crosspost/internal/publisher"
	"github.com/crosspost-app/crosspost/internal/queue"
	"github.com/crosspost-app/crosspost/internal/repository"
)

// app bundles everything both commands need.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	log      *slog.Logger
	accounts repository.AccountRepository
	posts    repository.PostsRepository
	queue    *queue.Queue
}

func newApp() (*app, error) {
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database is unreachable: %w", err)
	}

	uploader, err := media.NewR2Uploader(cfg.R2)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize object storage: %w", err)
	}

	accounts := repository.NewAccountRepository(db, []byte(cfg.SecretKey))
	posts := repository.NewPostsRepository(db)

	httpClient := &http.Client{Timeout: 10 * time.Minute}
	factory := publisher.NewFactory(publisher.Deps{
		Config:     *cfg,
		Accounts:   accounts,
		Posts:      posts,
		Downloader: media.NewDownloader(httpClient),
		Uploader:   uploader,
		Images:     media.NewImageProcessor(),
		Videos:     media.NewVideoProcessor(),
		Errors:     errorhandler.New(accounts, logger),
		HTTPClient: httpClient,
		Logger:     logger,
	})

	return &app{
		cfg:      cfg,
		db:       db,
		log:      logger,
		accounts: accounts,
		posts:    posts,
		queue:    queue.NewQueue(posts, factory, logger),
	}, nil
}

func (a *app) close() {
	if err := a.db.Close(); err != nil {
		a.log.Error("failed to close database", "error", err)
	}
}
