package main

import (
	"dilemma-lab/internal/app/play"
	"dilemma-lab/internal/config"
	httptransport "dilemma-lab/internal/transport/http"

	"github.com/go-chi/chi/v5"
)

func newRouter(svc *play.Service, cfg config.ServerConfig) *chi.Mux {
	return httptransport.NewRouter(svc, cfg)
}

func logRoutes(r chi.Router) {
	httptransport.LogRoutes(r)
}
