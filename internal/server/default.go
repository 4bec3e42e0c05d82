package server

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/taskdeck/taskdeck/pkg/configuration"
	"github.com/taskdeck/taskdeck/pkg/middleware"
	"github.com/taskdeck/taskdeck/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Pool          *pgxpool.Pool
	Controllers   []server.Controller
}

func jsonError(status int, code, message string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code":    code,
			"message": message,
		})
	})
}

func Default(options *DefaultOptions) *server.HTTPServer {
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{options.Configuration.Origin},
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"Content-Type", middleware.UserIDHeader, options.Configuration.RequestIDHeader},
		AllowCredentials: true,
	})

	middlewares := []mux.MiddlewareFunc{
		middleware.RequestID(),
		middleware.LogRequests(options.Logger),
		middleware.ProvidePool(options.Pool),
		corsHandler.Handler,
	}

	return &server.HTTPServer{
		Controllers:             options.Controllers,
		Middlewares:             middlewares,
		NotFoundHandler:         jsonError(http.StatusNotFound, "NOT_FOUND", "route not found"),
		MethodNotAllowedHandler: jsonError(http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed"),
	}
}
