package models

import "sort"

// Meeting is kept sorted by (date, time) ascending.
type Meeting struct {
	ID             string  `json:"id" db:"id"`
	OrganizationID string  `json:"organizationId" db:"organization_id"`
	Title          string  `json:"title" db:"title"`
	Date           string  `json:"date" db:"date"`
	Time           string  `json:"time" db:"time"`
	ProjectID      *string `json:"projectId,omitempty" db:"project_id"`
	Attendees      List    `json:"attendees" db:"attendees"`
	Address        *string `json:"address,omitempty" db:"address"`
	Description    *string `json:"description,omitempty" db:"description"`
	AssignedTo     *string `json:"assignedTo,omitempty" db:"assigned_to"`
	Completed      bool    `json:"completed" db:"completed"`
	CompletedBy    *string `json:"completedBy,omitempty" db:"completed_by"`
}

// Reminder is kept sorted by date ascending.
type Reminder struct {
	ID             string  `json:"id" db:"id"`
	OrganizationID string  `json:"organizationId" db:"organization_id"`
	Title          string  `json:"title" db:"title"`
	Description    *string `json:"description,omitempty" db:"description"`
	Date           string  `json:"date" db:"date"`
	Completed      bool    `json:"completed" db:"completed"`
	AssignedTo     *string `json:"assignedTo,omitempty" db:"assigned_to"`
	CompletedBy    *string `json:"completedBy,omitempty" db:"completed_by"`
}

// OtherMatter is a free-form sticky note with no further lifecycle.
type OtherMatter struct {
	ID             string `json:"id" db:"id"`
	OrganizationID string `json:"organizationId" db:"organization_id"`
	Title          string `json:"title" db:"title"`
	Address        string `json:"address" db:"address"`
	Note           string `json:"note" db:"note"`
	Date           string `json:"date" db:"date"`
}

// SortMeetings orders meetings by (date, time) ascending; ties keep their order.
func SortMeetings(ms []Meeting) {
	sort.SliceStable(ms, func(i, j int) bool {
		if ms[i].Date != ms[j].Date {
			return ms[i].Date < ms[j].Date
		}
		return ms[i].Time < ms[j].Time
	})
}

// SortReminders orders reminders by date ascending; ties keep their order.
func SortReminders(rs []Reminder) {
	sort.SliceStable(rs, func(i, j int) bool {
		return rs[i].Date < rs[j].Date
	})
}
