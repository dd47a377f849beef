package main

import (
	"net/http"
	"time"

	"github.com/drazan344/chat-core/internal/cache"
	"github.com/drazan344/chat-core/internal/domain"
	"github.com/drazan344/chat-core/internal/events"
	"github.com/drazan344/chat-core/internal/hub"
	"github.com/drazan344/chat-core/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"
)

type application struct {
	config     config
	store      store.Storage
	cache      *cache.Cache
	hub        *hub.Hub
	handlers   *domain.Handlers
	dispatcher *events.Dispatcher
}

type config struct {
	addr  string
	db    dbConfig
	redis redisConfig
	auth  authConfig
	hub   hubConfig
}

type dbConfig struct {
	addr         string
	maxOpenConns int
	maxIdleConns int
	maxIdleTime  string
}

type redisConfig struct {
	addr       string
	sessionTTL time.Duration
}

type authConfig struct {
	jwtSecret       string
	tokenTTL        time.Duration
	refreshTokenTTL time.Duration
}

type hubConfig struct {
	inboxCapacity int
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.Get("/health", app.healthCheckHandler)

		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", app.registerHandler)
			r.Post("/login", app.loginHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/logout", app.logoutHandler)
		})

		r.Group(func(r chi.Router) {
			r.Use(app.AuthMiddleware)

			r.Get("/auth/me", app.getCurrentUserHandler)

			r.Route("/rooms", func(r chi.Router) {
				r.Get("/", app.listRoomsHandler)
				r.Get("/{roomID}", app.getRoomHandler)
				r.Get("/{roomID}/messages", app.getRoomMessagesHandler)
			})

			r.Post("/message/file", app.uploadFileHandler)

			r.Get("/ws", app.websocketHandler)
		})
	})

	return r
}

func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	numUsers, numClients, numRooms := app.hub.Status()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"users":       numUsers,
		"clients":     numClients,
		"rooms":       numRooms,
	})
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	log.Info().Str("addr", app.config.addr).Msg("server starting")
	return srv.ListenAndServe()
}
