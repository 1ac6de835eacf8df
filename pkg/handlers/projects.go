package handlers

import (
	"net/http"
	"strings"

	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"

	"github.com/charmbracelet/log"
)

// ProjectsHandler 项目与项目动态
type ProjectsHandler struct {
	base
}

func NewProjectsHandler(cfg *config.Config, db database.DatabaseInterface) *ProjectsHandler {
	return &ProjectsHandler{base: newBase(cfg, db)}
}

// CreateProject POST /project
func (h *ProjectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := decode[models.Project](&h.base, w, r)
	if !ok {
		return
	}
	p.Name = strings.TrimSpace(p.Name)
	if !h.require(w, r, "name", p.Name, "organizationId", p.OrganizationID) {
		return
	}
	if _, err := h.db.GetOrganization(r.Context(), p.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if p.Status != "" && !p.Status.Valid() {
		h.fail(w, r, errInvalidStatus("project", string(p.Status)))
		return
	}

	p.ID = h.idOr(p.ID)
	if err := h.db.CreateProject(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, p.ID)
}

// UpdateProject POST /project/update
func (h *ProjectsHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p, ok := decode[models.Project](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", p.ID) {
		return
	}
	if p.Status != "" && !p.Status.Valid() {
		h.fail(w, r, errInvalidStatus("project", string(p.Status)))
		return
	}

	existing, err := h.db.GetProject(r.Context(), p.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := stamp("project", p.ID, &p.OrganizationID, existing.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.db.UpdateProject(r.Context(), p); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, p.ID)
}

// DeleteProject DELETE /project
// Tasks, their comments, updates, invoices and meetings of the project go with it.
func (h *ProjectsHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.IDRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", req.ID) {
		return
	}
	if err := h.db.DeleteProject(r.Context(), req.ID); err != nil {
		h.fail(w, r, err)
		return
	}
	log.FromContext(r.Context()).Info("project deleted", "project", req.ID)
	utils.WriteMutationResponse(w, req.ID)
}

// AddProjectUpdate POST /project/update-post
func (h *ProjectsHandler) AddProjectUpdate(w http.ResponseWriter, r *http.Request) {
	u, ok := decode[models.ProjectUpdate](&h.base, w, r)
	if !ok {
		return
	}
	u.Message = strings.TrimSpace(u.Message)
	if !h.require(w, r, "projectId", u.ProjectID, "message", u.Message) {
		return
	}

	project, err := h.db.GetProject(r.Context(), u.ProjectID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	u.ID = h.idOr(u.ID)
	if err := stamp("project update", u.ID, &u.OrganizationID, project.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if u.Date == "" {
		u.Date = h.timestamp()
	}
	if err := h.db.CreateProjectUpdate(r.Context(), u); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, u.ID)
}

// EditProjectUpdate PUT /project/update
func (h *ProjectsHandler) EditProjectUpdate(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.EditProjectUpdateRequest](&h.base, w, r)
	if !ok {
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if !h.require(w, r, "id", req.ID, "message", req.Message) {
		return
	}
	if err := h.db.EditProjectUpdate(r.Context(), req.ID, req.Message); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, req.ID)
}

// DeleteProjectUpdate DELETE /project/update
func (h *ProjectsHandler) DeleteProjectUpdate(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.db.DeleteProjectUpdate)
}
