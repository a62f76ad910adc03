package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/Dosada05/sport-events/docs" // регистрирует OpenAPI-спецификацию
	"github.com/Dosada05/sport-events/handlers"
	"github.com/Dosada05/sport-events/middleware"
)

// authRateLimit ограничивает попытки входа и регистрации с одного IP.
const (
	authRateLimit       = 10
	authRateLimitWindow = time.Minute
)

type Options struct {
	JWTSecret          string
	CORSAllowedOrigins []string
	RateLimitRequests  int
	RateLimitWindow    time.Duration
}

type Handlers struct {
	Auth         *handlers.AuthHandler
	User         *handlers.UserHandler
	Sport        *handlers.SportHandler
	Preference   *handlers.PreferenceHandler
	Event        *handlers.EventHandler
	Participant  *handlers.ParticipantHandler
	Notification *handlers.NotificationHandler
	WebSocket    *handlers.WebSocketHandler
	Health       *handlers.HealthHandler
}

func SetupRoutes(router chi.Router, opts Options, h Handlers) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(middleware.Metrics)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Get("/healthz", h.Health.Healthz)
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// WebSocket не проходит через rate limit: соединение долгоживущее.
	router.Get("/ws/events/{eventID}", h.WebSocket.ServeWs)

	authenticate := middleware.Authenticate(opts.JWTSecret)

	router.Route("/api", func(r chi.Router) {
		r.Use(httprate.LimitByIP(opts.RateLimitRequests, opts.RateLimitWindow))

		r.Route("/auth", func(r chi.Router) {
			r.Use(httprate.LimitByIP(authRateLimit, authRateLimitWindow))
			r.Post("/register", h.Auth.Register)
			r.Post("/login", h.Auth.Login)
		})

		r.Get("/sports", h.Sport.ListSports)

		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Get("/me", h.User.GetMe)
				r.Get("/profile", h.User.GetMe)
				r.Patch("/profile", h.User.UpdateProfile)
			})
			r.Get("/{userID}", h.User.GetPublicProfile)
		})

		r.Route("/sport-preferences", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Preference.List)
			r.Post("/", h.Preference.Create)
			r.Put("/bulk", h.Preference.BulkReplace)
			r.Get("/{preferenceID}", h.Preference.Get)
			r.Patch("/{preferenceID}", h.Preference.Update)
			r.Delete("/{preferenceID}", h.Preference.Delete)
		})

		r.Route("/events", func(r chi.Router) {
			// Публичные маршруты; токен, если есть, используется для статуса участия
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuthenticate(opts.JWTSecret))
				r.Get("/", h.Event.ListEvents)
				r.Get("/{eventID}", h.Event.GetEvent)
			})

			r.Group(func(r chi.Router) {
				r.Use(authenticate)
				r.Post("/", h.Event.CreateEvent)
				r.Get("/my-events", h.Event.MyEvents)
				r.Get("/my-participations", h.Event.MyParticipations)
				r.Get("/recommended", h.Event.Recommended)

				r.Patch("/{eventID}", h.Event.UpdateEvent)
				r.Delete("/{eventID}", h.Event.DeleteEvent)

				r.Post("/{eventID}/join", h.Participant.JoinEvent)
				r.Post("/{eventID}/leave", h.Participant.LeaveEvent)
				r.Post("/{eventID}/rate", h.Participant.RateEvent)
				r.Get("/{eventID}/participants", h.Participant.ListParticipants)
				r.Patch("/{eventID}/participants/{participantID}", h.Participant.UpdateParticipantStatus)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Use(authenticate)
			r.Get("/", h.Notification.List)
			r.Get("/unread-count", h.Notification.UnreadCount)
			r.Post("/mark-all-read", h.Notification.MarkAllRead)
			r.Post("/{notificationID}/mark-read", h.Notification.MarkRead)
		})
	})

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"the requested resource could not be found"}` + "\n"))
	})
}
