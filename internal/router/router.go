package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"resqlink-backend/internal/handlers"
	"resqlink-backend/internal/middleware"
	"resqlink-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	userHandler *handlers.UserHandler,
	contactHandler *handlers.ContactHandler,
	messageHandler *handlers.MessageHandler,
	assistantHandler *handlers.AssistantHandler,
	sosHandler *handlers.SOSHandler,
	notificationHandler *handlers.NotificationHandler,
	referenceHandler *handlers.ReferenceHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)

			// Logout requires auth
			r.Group(func(r chi.Router) {
				r.Use(jwtAuth.Middleware)
				r.Post("/logout", authHandler.Logout)
			})
		})

		// ──── User Routes ────
		r.Route("/user", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/me", userHandler.GetMe)
			r.Put("/me", userHandler.UpdateMe)
			r.Delete("/me", userHandler.DeleteMe)
			r.Get("/search", userHandler.SearchUsers)
		})

		// ──── Emergency Contact Routes ────
		r.Route("/contacts", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", contactHandler.List)
			r.Post("/", contactHandler.Create)
			r.Post("/link", contactHandler.Link)
			r.Put("/{id}", contactHandler.Update)
			r.Delete("/{id}", contactHandler.Delete)
		})

		// ──── Chat Routes ────
		r.Route("/messages", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{userId}", messageHandler.Conversation)
			r.Post("/", messageHandler.Send)
		})

		// ──── Assistant Routes ────
		r.Route("/assistant", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/capabilities", assistantHandler.Capabilities)
			r.Post("/conversation", assistantHandler.Start)
			r.Get("/conversation", assistantHandler.Transcript)
			r.Delete("/conversation", assistantHandler.End)
			r.Post("/message", assistantHandler.Send)
			r.Post("/transcribe", assistantHandler.Transcribe)
			r.Post("/speak", assistantHandler.Speak)
			r.Post("/speak/stop", assistantHandler.StopSpeaking)
		})

		// ──── SOS Routes ────
		r.Route("/sos", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Post("/", sosHandler.Trigger)
			r.Get("/active", sosHandler.Active)
			r.Post("/{id}/resolve", sosHandler.Resolve)
		})

		// ──── Notification Routes ────
		r.Route("/notifications", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/", notificationHandler.List)
			r.Put("/{id}/read", notificationHandler.MarkRead)
			r.Post("/{id}/accept", notificationHandler.Accept)
			r.Post("/{id}/reject", notificationHandler.Reject)
		})

		// ──── Reference Routes (public) ────
		r.Route("/reference", func(r chi.Router) {
			r.Get("/manual", referenceHandler.Manual)
			r.Get("/life-tips", referenceHandler.LifeTips)
			r.Get("/videos", referenceHandler.VideoGuides)
			r.Get("/emergency-numbers", referenceHandler.EmergencyNumbers)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
