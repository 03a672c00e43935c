package misc

import (
	"fmt"
	"net/http"

	"github.com/2beens/gymlog/internal/middleware"
	"github.com/2beens/gymlog/internal/telemetry/metrics"
	"github.com/2beens/gymlog/internal/telemetry/tracing"
	"github.com/2beens/gymlog/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type routesSetter interface {
	SetupRoutes(router *mux.Router)
}

type Handler struct {
	versionInfo string
}

func NewHandler(versionInfo string) *Handler {
	return &Handler{
		versionInfo: versionInfo,
	}
}

type AuthRoutesParams struct {
	AuthHandler    routesSetter
	RateLimiter    middleware.RequestRateLimiter
	MetricsManager *metrics.Manager
	AllowedPerMin  int
	AllowedOrigins []string
}

// SetupRoutes registers the service info routes and mounts the session routes under /a,
// rate limited per client IP.
func (handler *Handler) SetupRoutes(mainRouter *mux.Router, params AuthRoutesParams) {
	mainRouter.HandleFunc("/", handler.handleRoot).Methods("GET", "POST", "OPTIONS").Name("root")
	mainRouter.HandleFunc("/myip", handler.handleGetMyIp).Methods("GET").Name("myip")
	mainRouter.HandleFunc("/version", handler.handleGetVersionInfo).Methods("GET").Name("version")

	authSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	params.AuthHandler.SetupRoutes(authSubrouter)

	// rate limit the /login and /logout endpoints to prevent abuse
	authSubrouter.Use(middleware.RateLimit(params.RateLimiter, "login", params.AllowedPerMin, params.MetricsManager))
	authSubrouter.Use(middleware.Cors(params.AllowedOrigins))
}

func (handler *Handler) handleRoot(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, "I'm OK, thanks ;)")
}

func (handler *Handler) handleGetMyIp(w http.ResponseWriter, r *http.Request) {
	_, span := tracing.GlobalTracer.Start(r.Context(), "miscHandler.getMyIp")
	defer span.End()

	ip, err := pkg.ReadUserIP(r)
	if err != nil {
		span.SetStatus(codes.Error, fmt.Sprintf("failed to get user IP address: %s", err))
		log.Errorf("failed to get user IP address: %s", err)
		http.Error(w, "failed to get IP", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.String("user.ip", ip))
	pkg.WriteTextResponseOK(w, ip)
}

func (handler *Handler) handleGetVersionInfo(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, handler.versionInfo)
}
