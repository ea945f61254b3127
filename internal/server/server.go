package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mams-ops/apiserver/config"
	"github.com/mams-ops/apiserver/internal/db"
	"github.com/mams-ops/apiserver/internal/handlers"
	"github.com/mams-ops/apiserver/internal/metrics"
	"github.com/mams-ops/apiserver/internal/mq"
	"github.com/mams-ops/apiserver/internal/services"
	"github.com/mams-ops/apiserver/internal/store"
	"github.com/mams-ops/apiserver/internal/storage"
	"github.com/mams-ops/apiserver/types"
	"github.com/prometheus/client_golang/prometheus"
)

// registeredUsersFile is the registered-credentials blob kept under the
// state directory by the memory store.
const registeredUsersFile = "registered_users.json"

// Server wraps the HTTP server and its owned resources.
type Server struct {
	httpServer   *http.Server
	router       *chi.Mux
	db           *sql.DB
	broker       *mq.MQ
	stopConsumer context.CancelFunc
	logger       *slog.Logger
}

type repositories struct {
	users        services.UserRepository
	purchases    services.PurchaseRepository
	transfers    services.TransferRepository
	assignments  services.AssignmentRepository
	expenditures services.ExpenditureRepository
}

// New constructs a Server with basic middleware and defaults.
func New(ctx context.Context, cfg config.Config) (*Server, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	jwtSecret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	repos, dbConn, err := openRepositories(ctx, cfg)
	if err != nil {
		return nil, err
	}

	broker, err := openBroker(ctx, cfg)
	if err != nil {
		if dbConn != nil {
			_ = dbConn.Close()
		}
		return nil, err
	}
	// With a broker configured the server also consumes its own channel,
	// mirroring recorded movements into the log as an audit trail.
	var stopConsumer context.CancelFunc
	if broker != nil {
		logger.Info("asset event publishing enabled", "backend", cfg.MQ.Backend)

		var consumerCtx context.Context
		consumerCtx, stopConsumer = context.WithCancel(context.Background())
		go func() {
			err := services.LogAssetEvents(consumerCtx, broker, logger)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("asset event consumer stopped", "error", err)
			}
		}()
	}

	archive, err := openArchive(ctx, cfg)
	if err != nil {
		if dbConn != nil {
			_ = dbConn.Close()
		}
		if broker != nil {
			_ = broker.Close()
		}
		if stopConsumer != nil {
			stopConsumer()
		}
		return nil, err
	}
	if archive != nil {
		logger.Info("report exports enabled", "backend", cfg.Storage.Backend, "bucket", archive.Bucket())
	}

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	events := services.NewEventPublisher(broker, logger)
	userService := services.NewUserService(repos.users)
	purchaseService := services.NewPurchaseService(repos.purchases, events)
	transferService := services.NewTransferService(repos.transfers, events)
	assignmentService := services.NewAssignmentService(repos.assignments, events)
	expenditureService := services.NewExpenditureService(repos.expenditures, events)
	reportService := services.NewReportService(
		repos.purchases,
		repos.transfers,
		repos.assignments,
		repos.expenditures,
		archive,
	)

	authMiddleware := handlers.RequireAuth(jwtSecret, userService)
	commandGate := handlers.RequireRoles(types.RoleAdmin, types.RoleBaseCommander)

	assignmentHandler := handlers.NewAssignmentHandler(assignmentService, expenditureService, collector)
	reportHandler := handlers.NewReportHandler(reportService)

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	router.Get("/healthz", handlers.Healthz)
	router.Method(http.MethodGet, "/metrics", metrics.Handler(registry))
	router.Route("/auth", func(r chi.Router) {
		handlers.AuthRouter(r, userService, collector, jwtSecret)
	})
	router.Group(func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/dashboard", reportHandler.Dashboard)
		r.Get("/bases", handlers.Bases)
		r.Route("/purchases", func(r chi.Router) {
			handlers.PurchaseRouter(r, purchaseService, collector)
		})
		r.Route("/transfers", func(r chi.Router) {
			handlers.TransferRouter(r, transferService, collector)
		})
		r.Route("/assignments", func(r chi.Router) {
			r.Use(commandGate)
			handlers.AssignmentRouter(r, assignmentHandler)
		})
		r.Route("/expenditures", func(r chi.Router) {
			r.Use(commandGate)
			handlers.ExpenditureRouter(r, assignmentHandler)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Use(commandGate)
			handlers.ReportRouter(r, reportService)
		})
		r.Route("/users", func(r chi.Router) {
			r.Use(handlers.RequireRoles(types.RoleAdmin))
			handlers.UserRouter(r, userService)
		})
	})
	router.NotFound(handlers.NotFound)

	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		httpServer:   httpServer,
		router:       router,
		db:           dbConn,
		broker:       broker,
		stopConsumer: stopConsumer,
		logger:       logger,
	}, nil
}

// Router exposes the chi router for route registration and tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("server listening", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.stopConsumer != nil {
		s.stopConsumer()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.broker != nil {
		_ = s.broker.Close()
	}
	return s.httpServer.Close()
}

func openRepositories(ctx context.Context, cfg config.Config) (repositories, *sql.DB, error) {
	switch cfg.Store {
	case config.StorePostgres:
		dbConn, err := db.Open(ctx, cfg)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			users:        store.NewUserRepository(dbConn),
			purchases:    store.NewPurchaseRepository(dbConn),
			transfers:    store.NewTransferRepository(dbConn),
			assignments:  store.NewAssignmentRepository(dbConn),
			expenditures: store.NewExpenditureRepository(dbConn),
		}, dbConn, nil
	case config.StoreMemory, "":
		statePath := filepath.Join(cfg.StateDir, registeredUsersFile)
		users, err := store.NewMemoryUserRepository(statePath)
		if err != nil {
			return repositories{}, nil, err
		}
		return repositories{
			users:        users,
			purchases:    store.NewMemoryPurchaseRepository(),
			transfers:    store.NewMemoryTransferRepository(),
			assignments:  store.NewMemoryAssignmentRepository(),
			expenditures: store.NewMemoryExpenditureRepository(),
		}, nil, nil
	default:
		return repositories{}, nil, fmt.Errorf("unknown store backend %q", cfg.Store)
	}
}

func openBroker(ctx context.Context, cfg config.Config) (*mq.MQ, error) {
	switch cfg.MQ.Backend {
	case "":
		return nil, nil
	case "rabbitmq":
		client, err := mq.NewRabbitMQClient(cfg.MQ.RabbitMQ)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	case "pubsub":
		client, err := mq.NewPubSubClient(ctx, cfg.MQ.PubSub)
		if err != nil {
			return nil, err
		}
		return mq.New(client), nil
	default:
		return nil, fmt.Errorf("unknown mq backend %q", cfg.MQ.Backend)
	}
}

func openArchive(ctx context.Context, cfg config.Config) (*storage.Storage, error) {
	switch cfg.Storage.Backend {
	case "":
		return nil, nil
	case "minio":
		client, err := storage.NewMinioClient(cfg.Storage.Minio)
		if err != nil {
			return nil, err
		}
		archive := storage.NewStorage(client)
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	case "gcs":
		client, err := storage.NewGCSClient(ctx, cfg.Storage.GCS)
		if err != nil {
			return nil, err
		}
		archive := storage.NewStorage(client)
		if err := archive.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		return archive, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
