package http

import (
	"log/slog"
	"net/http"

	"weatherdiary/internal/auth"
	"weatherdiary/internal/config"
	"weatherdiary/internal/diary"
	"weatherdiary/internal/http/handler"
	mw "weatherdiary/internal/http/middleware"
	"weatherdiary/internal/memo"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"gorm.io/gorm"
)

// NewRouter wires the HTTP API. jwtSvc may be nil, which leaves the API
// open and skips the auth routes.
func NewRouter(cfg config.Config, db *gorm.DB, diarySvc *diary.Service, jwtSvc *auth.JWT, log *slog.Logger) http.Handler {
	if log == nil {
		log = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if jwtSvc != nil {
		ah := &handler.AuthHandler{DB: db, JWT: jwtSvc, Log: log}
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)
		r.With(auth.RequireAuth(jwtSvc)).Get("/me", ah.Me)
	}

	diaryH := &handler.DiaryHandler{Svc: diarySvc, Log: log}
	memoH := &handler.MemoHandler{Svc: &memo.Service{DB: db}, Log: log}

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(jwtSvc))

		r.Post("/create/diary", diaryH.Create)
		r.Get("/read/diary", diaryH.Read)
		r.Get("/read/diaries", diaryH.ReadRange)
		r.Put("/update/diary", diaryH.Update)
		r.Delete("/delete/diary", diaryH.Delete)
		r.Get("/read/weather", diaryH.Weather)

		r.Route("/memos", func(r chi.Router) {
			r.Post("/", memoH.Create)
			r.Get("/", memoH.List)
			r.Get("/{id}", memoH.Get)
		})
	})

	return r
}
