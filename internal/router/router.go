package router

import (
	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/dental-api/internal/middleware"
	"github.com/jwalitptl/dental-api/pkg/metrics"
)

// Handler mounts its routes on a group
type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

// EngineHandler mounts routes that live outside /api/v1
type EngineHandler interface {
	RegisterRoutes(gin.IRoutes)
}

// AuthHandler splits login from the routes that need a user
type AuthHandler interface {
	RegisterRoutes(r *gin.RouterGroup, loginGuards ...gin.HandlerFunc)
	RegisterProtectedRoutes(r *gin.RouterGroup)
}

// Handlers are the resource handlers mounted under /api/v1
type Handlers struct {
	Auth           AuthHandler
	Clinics        Handler
	Users          Handler
	Patients       Handler
	ClinicPatients Handler
	Services       Handler
	Appointments   Handler
	TreatmentPlans Handler
	Orders         Handler
	ToothServices  Handler
	Visits         Handler

	Health    EngineHandler
	Metrics   EngineHandler
	WebSocket EngineHandler
}

type RouterConfig struct {
	CORSConfig middleware.CORSConfig
	// RateLimit is nil when rate limiting is disabled
	RateLimit      *middleware.RateLimiterConfig
	LoginRateLimit *middleware.RateLimiterConfig
	MaxBodySize    int64
	Mode           string
}

type Router struct {
	engine   *gin.Engine
	auth     middleware.Authenticator
	handlers Handlers
	config   RouterConfig
	metrics  *metrics.Metrics
}

func NewRouter(auth middleware.Authenticator, handlers Handlers, m *metrics.Metrics, config RouterConfig) *Router {
	if config.Mode != "" {
		gin.SetMode(config.Mode)
	}
	engine := gin.New()

	r := &Router{
		engine:   engine,
		auth:     auth,
		handlers: handlers,
		config:   config,
		metrics:  m,
	}

	engine.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.Logger(),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	engine.Use(middleware.CORS(config.CORSConfig))

	return r
}

func (r *Router) Setup() {
	h := r.handlers

	for _, eh := range []EngineHandler{h.Health, h.Metrics, h.WebSocket} {
		if eh != nil {
			eh.RegisterRoutes(r.engine)
		}
	}

	api := r.engine.Group("/api/v1")
	api.Use(
		middleware.SecurityHeaders(middleware.DefaultSecurityConfig()),
		middleware.SizeLimit(r.config.MaxBodySize),
	)
	if r.config.RateLimit != nil {
		api.Use(middleware.NewRateLimiter(*r.config.RateLimit).RateLimit())
	}

	// Public routes
	var loginGuards []gin.HandlerFunc
	if r.config.LoginRateLimit != nil {
		loginGuards = append(loginGuards, middleware.NewRateLimiter(*r.config.LoginRateLimit).RateLimit())
	}
	h.Auth.RegisterRoutes(api, loginGuards...)

	// Protected routes
	protected := api.Group("")
	protected.Use(middleware.Authenticate(r.auth))
	h.Auth.RegisterProtectedRoutes(protected)

	for _, rh := range []Handler{
		h.Clinics,
		h.Users,
		h.Patients,
		h.ClinicPatients,
		h.Services,
		h.Appointments,
		h.TreatmentPlans,
		h.Orders,
		h.ToothServices,
		h.Visits,
	} {
		if rh != nil {
			rh.RegisterRoutes(protected)
		}
	}
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}
