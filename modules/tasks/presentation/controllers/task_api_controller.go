package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskdeck/taskdeck/modules/tasks/domain/aggregates/task"
	"github.com/taskdeck/taskdeck/modules/tasks/presentation/controllers/dtos"
	"github.com/taskdeck/taskdeck/modules/tasks/services"
	"github.com/taskdeck/taskdeck/pkg/composables"
	"github.com/taskdeck/taskdeck/pkg/middleware"
)

type TaskAPIController struct {
	tasks     *services.TaskService
	apiPrefix string
}

func NewTaskAPIController(tasks *services.TaskService) *TaskAPIController {
	return &TaskAPIController{
		tasks:     tasks,
		apiPrefix: "/api/orgs/{orgID}/tasks",
	}
}

func (c *TaskAPIController) Key() string {
	return c.apiPrefix
}

func (c *TaskAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.Authorize())

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/{id}", c.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/{id}", c.Update).Methods(http.MethodPatch)
	api.HandleFunc("/{id}", c.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/{id}:reorder", c.Reorder).Methods(http.MethodPost)
}

func requireActorAndOrg(w http.ResponseWriter, r *http.Request) (actorID, organizationID uuid.UUID, ok bool) {
	actorID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no acting user")
		return uuid.Nil, uuid.Nil, false
	}
	organizationID, err = uuid.Parse(mux.Vars(r)["orgID"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "TASK_INVALID_ORG_ID", "organization id is not a valid uuid")
		return uuid.Nil, uuid.Nil, false
	}
	return actorID, organizationID, true
}

func taskIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "TASK_INVALID_ID", "task id is not a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (c *TaskAPIController) Create(w http.ResponseWriter, r *http.Request) {
	actorID, organizationID, ok := requireActorAndOrg(w, r)
	if !ok {
		return
	}

	var dto dtos.CreateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "TASK_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if fields, valid := dto.Ok(); !valid {
		writeJSONError(w, http.StatusBadRequest, "TASK_VALIDATION_FAILED", "validation failed", fields)
		return
	}

	created, err := c.tasks.Create(r.Context(), organizationID, actorID, dto.ToInput())
	if err != nil {
		logError(r, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.NewTaskResponse(created))
}

func (c *TaskAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, organizationID, ok := requireActorAndOrg(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	found, err := c.tasks.GetByID(r.Context(), organizationID, taskID, actorID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewTaskResponse(found))
}

func (c *TaskAPIController) Update(w http.ResponseWriter, r *http.Request) {
	actorID, organizationID, ok := requireActorAndOrg(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	var dto dtos.UpdateTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "TASK_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if fields, valid := dto.Ok(); !valid {
		writeJSONError(w, http.StatusBadRequest, "TASK_VALIDATION_FAILED", "validation failed", fields)
		return
	}

	updated, err := c.tasks.Update(r.Context(), organizationID, taskID, actorID, dto.ToInput())
	if err != nil {
		logError(r, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewTaskResponse(updated))
}

func (c *TaskAPIController) Delete(w http.ResponseWriter, r *http.Request) {
	actorID, organizationID, ok := requireActorAndOrg(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	if err := c.tasks.Delete(r.Context(), organizationID, taskID, actorID); err != nil {
		logError(r, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (c *TaskAPIController) Reorder(w http.ResponseWriter, r *http.Request) {
	actorID, organizationID, ok := requireActorAndOrg(w, r)
	if !ok {
		return
	}
	taskID, ok := taskIDFromPath(w, r)
	if !ok {
		return
	}

	var dto dtos.ReorderTaskDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "TASK_INVALID_BODY", "request body is not valid JSON")
		return
	}

	moved, err := c.tasks.Reorder(r.Context(), organizationID, taskID, actorID, dto.Position)
	if err != nil {
		logError(r, err)
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewTaskResponse(moved))
}

func (c *TaskAPIController) List(w http.ResponseWriter, r *http.Request) {
	actorID, organizationID, ok := requireActorAndOrg(w, r)
	if !ok {
		return
	}

	filter, err := parseListFilter(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "TASK_INVALID_QUERY", err.Error())
		return
	}

	page, err := c.tasks.List(r.Context(), organizationID, actorID, filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewTaskPageResponse(page))
}

func parseListFilter(r *http.Request) (services.ListFilter, error) {
	q := r.URL.Query()
	var filter services.ListFilter

	if v := q.Get("status"); v != "" {
		s := task.Status(v)
		if !s.IsValid() {
			return filter, errInvalidQuery("status")
		}
		filter.Status = &s
	}
	if v := q.Get("priority"); v != "" {
		p := task.Priority(v)
		if !p.IsValid() {
			return filter, errInvalidQuery("priority")
		}
		filter.Priority = &p
	}
	if v := q.Get("category"); v != "" {
		filter.Category = &v
	}
	if v := q.Get("assignee_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return filter, errInvalidQuery("assignee_id")
		}
		filter.AssigneeID = &id
	}
	if v := q.Get("due_before"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errInvalidQuery("due_before")
		}
		filter.DueBefore = &t
	}
	if v := q.Get("due_after"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, errInvalidQuery("due_after")
		}
		filter.DueAfter = &t
	}
	filter.Search = strings.TrimSpace(q.Get("search"))

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 1 {
			return filter, errInvalidQuery("page")
		}
		filter.Page = page
	}
	if v := q.Get("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil || limit < 1 {
			return filter, errInvalidQuery("limit")
		}
		filter.Limit = limit
	}
	return filter, nil
}

type queryError string

func (e queryError) Error() string { return string(e) + " is invalid" }

func errInvalidQuery(field string) error { return queryError(field) }
