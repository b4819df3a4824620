// GET  /api/v1/health                       # Проверка доступности (публичный)
// POST /api/v1/submissions                  # Создать сабмит (auth)
// POST /api/v1/submissions/{id}/verify      # Повторить проверку (auth)
// POST /api/v1/conflicts/check              # Найти конфликтующие даты (auth)
// POST /api/v1/conflicts/resolve            # Применить решения (auth)
// POST /api/v1/proofs                       # Загрузить доказательство (auth)
// GET  /api/v1/standings/leaderboard        # Рейтинг (auth)
// GET  /api/v1/standings/gap                # Отставание (auth)
// GET  /api/v1/standings/head-to-head       # Челлендж (auth)

package api

import (
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/exp/slog"

	conflictAPI "stepsync/internal/app/server/api/http/conflict"
	healthAPI "stepsync/internal/app/server/api/http/health"
	"stepsync/internal/app/server/api/http/middleware"
	"stepsync/internal/app/server/api/http/middleware/auth"
	"stepsync/internal/app/server/api/http/middleware/logger"
	proofAPI "stepsync/internal/app/server/api/http/proof"
	standingsAPI "stepsync/internal/app/server/api/http/standings"
	submissionAPI "stepsync/internal/app/server/api/http/submission"
	"stepsync/internal/domain/conflict"
	"stepsync/internal/domain/proof"
	"stepsync/internal/domain/session"
	"stepsync/internal/domain/standings"
	"stepsync/internal/domain/submission"
)

// Services доменные сервисы, которые публикуются через HTTP.
type Services struct {
	Session    session.Servicer
	Submission submission.Servicer
	Conflict   conflict.Servicer
	Proof      proof.Servicer
	Standings  standings.Servicer
}

type Handlers struct {
	Health     *healthAPI.Handler
	Submission *submissionAPI.Handler
	Conflict   *conflictAPI.Handler
	Proof      *proofAPI.Handler
	Standings  *standingsAPI.Handler
}

// New создает *chi.Mux с ВСЕМИ операциями через huma.Register
func New(services Services, allowedOrigins []string, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.RequestID)
	mux.Use(chimw.RealIP)
	mux.Use(chimw.Recoverer)
	mux.Use(chimw.Timeout(60 * time.Second))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	config := huma.DefaultConfig("Stepsync API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer"},
	}

	API := humachi.New(mux, config)

	h := handlers(services, log)
	h.Health.SetupRoutes(API)
	h.Submission.SetupRoutes(API)
	h.Conflict.SetupRoutes(API)
	h.Proof.SetupRoutes(API)
	h.Standings.SetupRoutes(API)

	return mux
}

func handlers(s Services, log *slog.Logger) *Handlers {
	authMW := auth.New(s.Session, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := healthAPI.NewHandler(log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	submissionHandler := submissionAPI.NewHandler(s.Submission, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	conflictHandler := conflictAPI.NewHandler(s.Conflict, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	proofHandler := proofAPI.NewHandler(s.Proof, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.Middleware())
	standingsHandler := standingsAPI.NewHandler(s.Standings, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:     healthHandler,
		Submission: submissionHandler,
		Conflict:   conflictHandler,
		Proof:      proofHandler,
		Standings:  standingsHandler,
	}
}
