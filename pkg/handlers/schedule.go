package handlers

import (
	"net/http"
	"strings"

	"buildsync-backend/pkg/config"
	"buildsync-backend/pkg/database"
	"buildsync-backend/pkg/models"
	"buildsync-backend/pkg/utils"
)

// ScheduleHandler 会议、提醒与其他事项
type ScheduleHandler struct {
	base
}

func NewScheduleHandler(cfg *config.Config, db database.DatabaseInterface) *ScheduleHandler {
	return &ScheduleHandler{base: newBase(cfg, db)}
}

// ================= 会议 =================

// meetingOrg stamps the meeting's organization from its project, if any.
func (h *ScheduleHandler) meetingOrg(r *http.Request, m *models.Meeting) error {
	pid := models.Deref(m.ProjectID)
	if pid == "" {
		return nil
	}
	project, err := h.db.GetProject(r.Context(), pid)
	if err != nil {
		return err
	}
	return stamp("meeting", m.ID, &m.OrganizationID, project.OrganizationID)
}

// CreateMeeting POST /meeting
func (h *ScheduleHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	m, ok := decode[models.Meeting](&h.base, w, r)
	if !ok {
		return
	}
	m.Title = strings.TrimSpace(m.Title)
	if !h.require(w, r, "title", m.Title, "date", m.Date) {
		return
	}
	m.ID = h.idOr(m.ID)
	if err := h.meetingOrg(r, m); err != nil {
		h.fail(w, r, err)
		return
	}
	if !h.require(w, r, "organizationId", m.OrganizationID) {
		return
	}
	if err := h.db.CreateMeeting(r.Context(), m); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, m.ID)
}

// UpdateMeeting POST /meeting/update
func (h *ScheduleHandler) UpdateMeeting(w http.ResponseWriter, r *http.Request) {
	m, ok := decode[models.Meeting](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", m.ID) {
		return
	}
	existing, err := h.db.GetMeeting(r.Context(), m.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := stamp("meeting", m.ID, &m.OrganizationID, existing.OrganizationID); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.meetingOrg(r, m); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.db.UpdateMeeting(r.Context(), m); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, m.ID)
}

// CompleteMeeting POST /meeting/complete
// Reopening clears completedBy.
func (h *ScheduleHandler) CompleteMeeting(w http.ResponseWriter, r *http.Request) {
	req, ok := decode[models.MeetingCompletionRequest](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", req.ID) {
		return
	}
	m, err := h.db.GetMeeting(r.Context(), req.ID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	m.Completed = req.Completed
	m.CompletedBy = nil
	if req.Completed {
		m.CompletedBy = req.CompletedBy
	}
	if err := h.db.UpdateMeeting(r.Context(), m); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, m.ID)
}

// DeleteMeeting DELETE /meeting
func (h *ScheduleHandler) DeleteMeeting(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.db.DeleteMeeting)
}

// ================= 提醒 =================

// CreateReminder POST /reminder
func (h *ScheduleHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	rem, ok := decode[models.Reminder](&h.base, w, r)
	if !ok {
		return
	}
	rem.Title = strings.TrimSpace(rem.Title)
	if !h.require(w, r, "organizationId", rem.OrganizationID, "title", rem.Title, "date", rem.Date) {
		return
	}
	rem.ID = h.idOr(rem.ID)
	if err := h.db.CreateReminder(r.Context(), rem); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, rem.ID)
}

// UpdateReminder POST /reminder/update
func (h *ScheduleHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	rem, ok := decode[models.Reminder](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", rem.ID, "organizationId", rem.OrganizationID) {
		return
	}
	if err := h.db.UpdateReminder(r.Context(), rem); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, rem.ID)
}

// DeleteReminder DELETE /reminder
func (h *ScheduleHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.db.DeleteReminder)
}

// ================= 其他事项 =================

// CreateOtherMatter POST /other-matter
func (h *ScheduleHandler) CreateOtherMatter(w http.ResponseWriter, r *http.Request) {
	m, ok := decode[models.OtherMatter](&h.base, w, r)
	if !ok {
		return
	}
	m.Title = strings.TrimSpace(m.Title)
	if !h.require(w, r, "organizationId", m.OrganizationID, "title", m.Title) {
		return
	}
	m.ID = h.idOr(m.ID)
	if m.Date == "" {
		m.Date = h.timestamp()
	}
	if err := h.db.CreateOtherMatter(r.Context(), m); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, m.ID)
}

// UpdateOtherMatter PUT /other-matter
func (h *ScheduleHandler) UpdateOtherMatter(w http.ResponseWriter, r *http.Request) {
	m, ok := decode[models.OtherMatter](&h.base, w, r)
	if !ok {
		return
	}
	if !h.require(w, r, "id", m.ID, "organizationId", m.OrganizationID) {
		return
	}
	if err := h.db.UpdateOtherMatter(r.Context(), m); err != nil {
		h.fail(w, r, err)
		return
	}
	utils.WriteMutationResponse(w, m.ID)
}

// DeleteOtherMatter DELETE /other-matter
func (h *ScheduleHandler) DeleteOtherMatter(w http.ResponseWriter, r *http.Request) {
	h.deleteByID(w, r, h.db.DeleteOtherMatter)
}
