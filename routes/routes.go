package routes

import (
	"time"

	"github.com/Dosada05/scorebridge/handlers"
	"github.com/Dosada05/scorebridge/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
)

const requestTimeout = 60 * time.Second

func SetupRoutes(
	router chi.Router,
	jwtSecret string,
	allowedOrigins []string,
	authHandler *handlers.AuthHandler,
	tournamentHandler *handlers.TournamentHandler,
	scoreboardHandler *handlers.ScoreboardHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authenticate := middleware.Authenticate([]byte(jwtSecret))

	router.Get("/health", handlers.Health)

	router.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/me", authHandler.Me)
			r.Put("/credentials", authHandler.UpdateCredentials)
			r.Post("/startgg/refresh", authHandler.RefreshStartGGToken)
		})
	})

	router.Group(func(r chi.Router) {
		r.Use(authenticate)
		// Host requests may be slow; websockets are long-lived and stay outside the timeout.
		r.With(chiMiddleware.Timeout(requestTimeout)).Route("/tournaments", func(r chi.Router) {
			r.Get("/", tournamentHandler.List)
			r.Post("/", tournamentHandler.Load)

			r.Route("/{key}", func(r chi.Router) {
				r.Get("/", tournamentHandler.Get)
				r.Delete("/", tournamentHandler.Unwatch)
				r.Post("/refresh", tournamentHandler.Refresh)
				r.Get("/rounds", tournamentHandler.Rounds)

				r.Get("/participants", tournamentHandler.Participants)
				r.Get("/participants/find", tournamentHandler.FindParticipant)
				r.Get("/participants/{participantID}/opponents", tournamentHandler.PendingOpponents)

				r.Get("/matches/pending", tournamentHandler.PendingMatches)
				r.Post("/matches/{matchID}/report", tournamentHandler.ReportScore)
			})
		})

		r.Route("/scoreboard", func(r chi.Router) {
			r.Get("/", scoreboardHandler.Get)
			r.Put("/", scoreboardHandler.Update)
			r.Post("/swap", scoreboardHandler.Swap)
			r.Post("/reset", scoreboardHandler.Reset)
			r.Post("/match", scoreboardHandler.SelectMatch)
			r.Post("/publish", scoreboardHandler.Publish)
		})

		r.Get("/ws/tournaments/{key}", webSocketHandler.ServeWs)
	})
}
