package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusPending    = "pending"
	StatusInProgress = "in-progress"
	StatusActive     = "active"
	StatusCompleted  = "completed"
	StatusOnHold     = "on-hold"
	StatusCancelled  = "cancelled"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

const (
	CategoryFixed     = "fixed"
	CategoryHourly    = "hourly"
	CategoryMilestone = "milestone"
)

type Project struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"_id"`
	ProjectName        string               `bson:"projectName" json:"projectName"`
	ClientName         string               `bson:"clientName" json:"clientName"`
	Description        string               `bson:"description,omitempty" json:"description,omitempty"`
	Status             string               `bson:"status" json:"status"`
	Priority           string               `bson:"priority" json:"priority"`
	Category           string               `bson:"category" json:"category"`
	VisibleToTeamLeads bool                 `bson:"visibleToTeamLeads" json:"visibleToTeamLeads"`
	OwnerTeamLeadID    *primitive.ObjectID  `bson:"ownerTeamLeadId,omitempty" json:"ownerTeamLeadId,omitempty"`
	Employees          []primitive.ObjectID `bson:"employees" json:"employees"`
	Deadline           *time.Time           `bson:"deadline,omitempty" json:"deadline,omitempty"`
	EstimatedHours     int                  `bson:"estimatedHours,omitempty" json:"estimatedHours,omitempty"`
	CreatedBy          primitive.ObjectID   `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
}

// Claimed reports whether a team lead currently owns the project.
func (p *Project) Claimed() bool {
	return p.OwnerTeamLeadID != nil && !p.OwnerTeamLeadID.IsZero()
}

// Closed projects cannot be released back into the pool.
func (p *Project) Closed() bool {
	return p.Status == StatusCompleted || p.Status == StatusCancelled
}

func IsValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusActive, StatusCompleted, StatusOnHold, StatusCancelled:
		return true
	}
	return false
}

func IsValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

func IsValidCategory(c string) bool {
	switch c {
	case CategoryFixed, CategoryHourly, CategoryMilestone:
		return true
	}
	return false
}

// ProjectFilter narrows project listings. Zero values mean "no filter";
// invalid values are dropped by NewProjectFilter rather than rejected.
type ProjectFilter struct {
	Status   string
	Priority string
	Category string
	Search   string
}

func NewProjectFilter(status, priority, category, search string) ProjectFilter {
	f := ProjectFilter{Search: search}
	if IsValidStatus(status) {
		f.Status = status
	}
	if IsValidPriority(priority) {
		f.Priority = priority
	}
	if IsValidCategory(category) {
		f.Category = category
	}
	return f
}

// ProjectStats summarizes a team lead's picked projects by status.
type ProjectStats struct {
	Total      int `json:"total"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	OnHold     int `json:"onHold"`
}
