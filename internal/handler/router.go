package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	flowHandler "github.com/wuffchat/wuffchat-cli/internal/handler/flow"
	middlewarePkg "github.com/wuffchat/wuffchat-cli/internal/middleware"
	flowService "github.com/wuffchat/wuffchat-cli/internal/service/flow"
)

// NewRouter wires the flow endpoints to the scripted engine. The contract
// lives at the root (POST /flow_intro, POST /flow_step) to match what the
// production backend exposes.
func NewRouter(flowSvc *flowService.Service, apiKey string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.RequireAPIKey(apiKey))

	flowHandler.New(flowSvc).RegisterRoutes(r)

	return r
}
