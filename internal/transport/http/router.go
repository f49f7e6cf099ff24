package httptransport

import (
	"expvar"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"dilemma-lab/internal/app/play"
	"dilemma-lab/internal/config"
	"dilemma-lab/internal/mcpserver"
	"dilemma-lab/internal/ws"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

func NewRouter(svc *play.Service, cfg config.ServerConfig) *chi.Mux {
	simHandlers := NewSimulationHandlers(svc)
	recordHandlers := NewRecordHandlers(svc)
	wsSrv := ws.NewServer(svc, cfg.CORSOrigins)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Mcp-Session-Id", "Mcp-Protocol-Version"},
		ExposedHeaders: []string{"Mcp-Session-Id"},
		MaxAge:         300,
	}))

	r.With(APILogMiddleware()).Get("/healthz", Health())
	r.Get("/ws", wsSrv.HandleWS)

	if cfg.MCPEnabled {
		mcpSrv := mcpserver.New(svc)
		r.With(APILogMiddleware()).Method(http.MethodPost, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodGet, "/mcp", mcpSrv.Handler())
		r.With(APILogMiddleware()).Method(http.MethodDelete, "/mcp", mcpSrv.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(APILogMiddleware())
		if cfg.HTTPLogBodies {
			r.Use(BodyCaptureMiddleware(4096))
		}
		r.Get("/strategies", simHandlers.Strategies())

		r.Route("/simulation", func(r chi.Router) {
			r.Post("/init", simHandlers.Init())
			r.Post("/step", simHandlers.Step())
			r.Get("/state/{session_id}", simHandlers.State())
			r.Delete("/{session_id}", simHandlers.Abandon())
		})

		r.Get("/records", recordHandlers.List())
		r.Get("/records/{session_id}", recordHandlers.Get())

		r.Get("/debug/vars", expvar.Handler().ServeHTTP)
	})
	return r
}

func LogRoutes(r chi.Router) {
	type routeDef struct {
		Method string
		Path   string
	}
	routes := make([]routeDef, 0, 16)
	err := chi.Walk(r, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		routes = append(routes, routeDef{Method: method, Path: route})
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("walk routes failed")
		return
	}
	sort.Slice(routes, func(i, j int) bool {
		if routes[i].Path == routes[j].Path {
			return routes[i].Method < routes[j].Method
		}
		return routes[i].Path < routes[j].Path
	})
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Registered routes (%d):\n", len(routes)))
	for _, rt := range routes {
		b.WriteString(fmt.Sprintf("  %-6s %s\n", rt.Method, rt.Path))
	}
	fmt.Print(b.String())
}
