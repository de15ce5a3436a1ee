package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/tcghub/poke-tournaments/handlers"
	"github.com/tcghub/poke-tournaments/session"
)

// SetupRoutes wires every route onto the router. The session guard runs
// globally: it resolves the cookie once per request and enforces the
// protected-prefix and auth-page redirect rules before any handler runs.
func SetupRoutes(
	router *chi.Mux,
	sessions *session.Manager,
	authHandler *handlers.AuthHandler,
	settingsHandler *handlers.SettingsHandler,
	tournamentHandler *handlers.TournamentHandler,
) {
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(session.Guard(sessions))

	router.Get("/", tournamentHandler.Home)

	router.Route("/auth", func(r chi.Router) {
		r.Get("/sign-up", authHandler.SignUpPage)
		r.Post("/sign-up", authHandler.SignUp)
		r.Get("/sign-in", authHandler.SignInPage)
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/sign-out", authHandler.SignOut)
		r.Get("/confirm", authHandler.ConfirmEmail)
	})

	// Legacy aliases kept for old bookmarks and form actions.
	router.Get("/login", authHandler.SignInPage)
	router.Post("/login", authHandler.SignIn)
	router.Get("/register", authHandler.SignUpPage)
	router.Post("/register", authHandler.SignUp)

	router.Route("/tournaments", func(r chi.Router) {
		r.Get("/", tournamentHandler.List)
		r.Post("/create", tournamentHandler.Create)
		r.Put("/edit/{tournamentID}", tournamentHandler.Update)
		r.Get("/{tournamentID}", tournamentHandler.Get)
		r.Get("/{tournamentID}/registrations", tournamentHandler.Registrations)
		r.Delete("/{tournamentID}", tournamentHandler.Delete)
	})

	router.Route("/profile", func(r chi.Router) {
		r.Get("/", settingsHandler.GetSettings)
		r.Put("/", settingsHandler.UpdateProfile)
		r.Put("/password", settingsHandler.ChangePassword)
		r.Delete("/", settingsHandler.DeleteAccount)
		r.Post("/link/{provider}", settingsHandler.LinkProvider)
		r.Get("/link/{provider}/callback", settingsHandler.ProviderCallback)
	})

	router.Route("/shop", func(r chi.Router) {
		r.Get("/verification", settingsHandler.VerificationStatus)
		r.Post("/verification", settingsHandler.SubmitVerification)
		r.Post("/verification/image", settingsHandler.UploadVerificationImage)
	})

	router.Route("/dashboard", func(r chi.Router) {
		r.Get("/", tournamentHandler.Dashboard)
		r.Get("/tournaments", tournamentHandler.List)
		r.Get("/tournaments/{tournamentID}", tournamentHandler.Get)
		r.Get("/settings", settingsHandler.GetSettings)
	})
}
