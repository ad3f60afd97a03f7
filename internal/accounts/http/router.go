package http

//go:generate swag init -g router.go -d .,../../../pkg/accountsdk -o ../../../api/accounts --packageName accounts

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/aussiebroadwan/accounts/internal/accounts/domain"
	"github.com/aussiebroadwan/accounts/internal/accounts/service"
	"github.com/aussiebroadwan/accounts/internal/accounts/store"
	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/aussiebroadwan/accounts/pkg/slogx"

	_ "github.com/aussiebroadwan/accounts/api/accounts" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// DefaultMaxUploadBytes caps avatar uploads when Router.MaxUploadBytes is unset.
const DefaultMaxUploadBytes = 5 << 20

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AccountService *service.AccountService
	AvatarService  *service.AvatarService

	// TempDir receives avatar uploads before processing.
	TempDir        string
	MaxUploadBytes int64

	// AvatarDir is served at /avatars/ when set (local storage only).
	AvatarDir string

	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	return &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}
}

// ApplyRoutes registers every route and builds the global middleware chain.
// Configure the exported fields before calling it.
func (r *Router) ApplyRoutes() {
	origins := r.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         600,
	})

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		c.Handler,
	}

	r.registerAccounts()
	r.registerSession()
	r.registerSystem()

	if r.AvatarDir != "" {
		r.Mux.Handle("GET /avatars/", http.StripPrefix("/avatars/", http.FileServer(http.Dir(r.AvatarDir))))
	}
	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			Accounts Service API
//	@version		0.1.0
//	@description	Account registration with email verification, bearer-token sessions and avatar upload.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/accounts
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Session token returned by /login. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// authn resolves the bearer token to the stored account through the
// AccountService. Only the token currently bound to the account passes.
func (r *Router) authn() httpx.Middleware {
	return httpx.AuthnMiddleware[domain.Account](r.AccountService.Authenticate, writeAuthError)
}

func (r *Router) registerAccounts() {
	h := &AccountsHandler{AccountService: r.AccountService}

	r.Mux.HandleFunc("POST /register", h.HandleRegister)
	r.Mux.HandleFunc("GET /verify/{verificationToken}", h.HandleVerify)
	r.Mux.HandleFunc("POST /verify", h.HandleResendVerification)
	r.Mux.HandleFunc("POST /login", h.HandleLogin)
}

func (r *Router) registerSession() {
	h := &SessionHandler{AccountService: r.AccountService}

	r.Mux.Handle("GET /current", httpx.Chain(http.HandlerFunc(h.HandleCurrent), r.authn()))
	r.Mux.Handle("POST /logout", httpx.Chain(http.HandlerFunc(h.HandleLogout), r.authn()))

	maxBytes := r.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	avatar := &AvatarHandler{
		AvatarService:  r.AvatarService,
		TempDir:        r.TempDir,
		MaxUploadBytes: maxBytes,
	}
	r.Mux.Handle("PATCH /avatar", httpx.Chain(avatar, r.authn()))
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
