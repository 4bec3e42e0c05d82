package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/taskdeck/taskdeck/modules/core/presentation/controllers/dtos"
	"github.com/taskdeck/taskdeck/modules/core/services"
	"github.com/taskdeck/taskdeck/pkg/middleware"
)

type UserAPIController struct {
	users     *services.UserService
	apiPrefix string
}

func NewUserAPIController(users *services.UserService) *UserAPIController {
	return &UserAPIController{users: users, apiPrefix: "/api/users"}
}

func (c *UserAPIController) Key() string {
	return c.apiPrefix
}

func (c *UserAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	// Registration is the one unauthenticated endpoint.
	api.HandleFunc("", c.Create).Methods(http.MethodPost)

	authed := api.NewRoute().Subrouter()
	authed.Use(middleware.Authorize())
	authed.HandleFunc("/{userID}", c.GetByID).Methods(http.MethodGet)
}

func (c *UserAPIController) Create(w http.ResponseWriter, r *http.Request) {
	var dto dtos.RegisterUserDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "CORE_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if fields, valid := dto.Ok(); !valid {
		writeJSONError(w, http.StatusBadRequest, "CORE_VALIDATION_FAILED", "validation failed", fields)
		return
	}

	created, err := c.users.Register(r.Context(), dto.Email, dto.DisplayName)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.NewUserResponse(created))
}

func (c *UserAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireActor(w, r); !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID", "CORE_INVALID_USER_ID")
	if !ok {
		return
	}

	u, err := c.users.GetByID(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewUserResponse(u))
}
