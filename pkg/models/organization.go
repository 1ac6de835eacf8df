package models

// OrgStatus is the lifecycle state of an Organization.
type OrgStatus string

const (
	OrgActive    OrgStatus = "active"
	OrgSuspended OrgStatus = "suspended"
)

// Organization is the tenant boundary; every other entity belongs to exactly one.
type Organization struct {
	ID                 string             `json:"id" db:"id"`
	Name               string             `json:"name" db:"name"`
	CreatedAt          string             `json:"createdAt" db:"created_at"`
	Status             OrgStatus          `json:"status" db:"status"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus" db:"subscription_status"`
}
