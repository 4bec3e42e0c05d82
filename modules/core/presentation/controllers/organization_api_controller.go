package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/taskdeck/taskdeck/modules/core/domain/entities/membership"
	"github.com/taskdeck/taskdeck/modules/core/domain/entities/organization"
	"github.com/taskdeck/taskdeck/modules/core/presentation/controllers/dtos"
	"github.com/taskdeck/taskdeck/modules/core/services"
	"github.com/taskdeck/taskdeck/pkg/composables"
	"github.com/taskdeck/taskdeck/pkg/configuration"
	"github.com/taskdeck/taskdeck/pkg/middleware"
)

type OrganizationAPIController struct {
	orgs        *services.OrganizationService
	memberships *services.MembershipService
	apiPrefix   string
}

func NewOrganizationAPIController(
	orgs *services.OrganizationService,
	memberships *services.MembershipService,
) *OrganizationAPIController {
	return &OrganizationAPIController{
		orgs:        orgs,
		memberships: memberships,
		apiPrefix:   "/api/orgs",
	}
}

func (c *OrganizationAPIController) Key() string {
	return c.apiPrefix
}

func (c *OrganizationAPIController) Register(r *mux.Router) {
	api := r.PathPrefix(c.apiPrefix).Subrouter()
	api.Use(middleware.Authorize())

	api.HandleFunc("", c.List).Methods(http.MethodGet)
	api.HandleFunc("", c.Create).Methods(http.MethodPost)
	api.HandleFunc("/{orgID}", c.GetByID).Methods(http.MethodGet)

	api.HandleFunc("/{orgID}/members", c.ListMembers).Methods(http.MethodGet)
	api.HandleFunc("/{orgID}/members", c.AddMember).Methods(http.MethodPost)
	api.HandleFunc("/{orgID}/members/{userID}", c.ChangeRole).Methods(http.MethodPatch)
	api.HandleFunc("/{orgID}/members/{userID}", c.RemoveMember).Methods(http.MethodDelete)
}

func requireActor(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	actorID, err := composables.UseUserID(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "no acting user")
		return uuid.Nil, false
	}
	return actorID, true
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, code, name+" is not a valid uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (c *OrganizationAPIController) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	var dto dtos.CreateOrganizationDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "CORE_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if fields, valid := dto.Ok(); !valid {
		writeJSONError(w, http.StatusBadRequest, "CORE_VALIDATION_FAILED", "validation failed", fields)
		return
	}

	var (
		org organization.Organization
		err error
	)
	if dto.ParentID != nil {
		org, err = c.orgs.CreateSub(r.Context(), actorID, dto.Name, *dto.ParentID)
	} else {
		org, err = c.orgs.Create(r.Context(), actorID, dto.Name)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.NewOrganizationResponse(org))
}

func (c *OrganizationAPIController) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	organizationID, ok := pathUUID(w, r, "orgID", "CORE_INVALID_ORG_ID")
	if !ok {
		return
	}

	org, err := c.orgs.GetByID(r.Context(), actorID, organizationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewOrganizationResponse(org))
}

func (c *OrganizationAPIController) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}

	conf := configuration.Use()
	limit := conf.PageSize
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 || parsed > conf.MaxPageSize {
			writeJSONError(w, http.StatusBadRequest, "CORE_INVALID_QUERY", "limit is invalid")
			return
		}
		limit = parsed
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			writeJSONError(w, http.StatusBadRequest, "CORE_INVALID_QUERY", "offset is invalid")
			return
		}
		offset = parsed
	}

	orgs, total, err := c.orgs.ListForUser(r.Context(), actorID, limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data := make([]dtos.OrganizationResponse, len(orgs))
	for i, org := range orgs {
		data[i] = dtos.NewOrganizationResponse(org)
	}
	writeJSON(w, http.StatusOK, dtos.OrganizationPageResponse{Data: data, Total: total})
}

func (c *OrganizationAPIController) ListMembers(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	organizationID, ok := pathUUID(w, r, "orgID", "CORE_INVALID_ORG_ID")
	if !ok {
		return
	}

	members, err := c.memberships.ListByOrganization(r.Context(), actorID, organizationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	data := make([]dtos.MembershipResponse, len(members))
	for i, m := range members {
		data[i] = dtos.NewMembershipResponse(m)
	}
	writeJSON(w, http.StatusOK, data)
}

func (c *OrganizationAPIController) AddMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	organizationID, ok := pathUUID(w, r, "orgID", "CORE_INVALID_ORG_ID")
	if !ok {
		return
	}

	var dto dtos.AddMemberDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "CORE_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if fields, valid := dto.Ok(); !valid {
		writeJSONError(w, http.StatusBadRequest, "CORE_VALIDATION_FAILED", "validation failed", fields)
		return
	}

	added, err := c.memberships.AddMember(r.Context(), actorID, organizationID, dto.UserID, membership.Role(dto.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, dtos.NewMembershipResponse(added))
}

func (c *OrganizationAPIController) ChangeRole(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	organizationID, ok := pathUUID(w, r, "orgID", "CORE_INVALID_ORG_ID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID", "CORE_INVALID_USER_ID")
	if !ok {
		return
	}

	var dto dtos.ChangeRoleDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		writeJSONError(w, http.StatusBadRequest, "CORE_INVALID_BODY", "request body is not valid JSON")
		return
	}
	if fields, valid := dto.Ok(); !valid {
		writeJSONError(w, http.StatusBadRequest, "CORE_VALIDATION_FAILED", "validation failed", fields)
		return
	}

	changed, err := c.memberships.ChangeRole(r.Context(), actorID, organizationID, userID, membership.Role(dto.Role))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dtos.NewMembershipResponse(changed))
}

func (c *OrganizationAPIController) RemoveMember(w http.ResponseWriter, r *http.Request) {
	actorID, ok := requireActor(w, r)
	if !ok {
		return
	}
	organizationID, ok := pathUUID(w, r, "orgID", "CORE_INVALID_ORG_ID")
	if !ok {
		return
	}
	userID, ok := pathUUID(w, r, "userID", "CORE_INVALID_USER_ID")
	if !ok {
		return
	}

	if err := c.memberships.RemoveMember(r.Context(), actorID, organizationID, userID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
