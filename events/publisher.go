// Package events publishes project lifecycle events to NATS for
// downstream consumers (notifications, reporting). Publishing is
// best-effort: a broken connection must never fail the request that
// triggered the event.
package events

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"project-service/models"
)

const (
	SubjectProjectPicked   = "projects.picked"
	SubjectProjectReleased = "projects.released"
	SubjectProjectTeam     = "projects.team"
)

type ProjectEvent struct {
	EventID    string    `json:"event_id"`
	ProjectID  string    `json:"project_id"`
	TeamLeadID string    `json:"team_lead_id"`
	Reason     string    `json:"reason,omitempty"`
	Employees  []string  `json:"employees,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher struct {
	nc     *nats.Conn
	logger *log.Logger
}

// NewPublisher wraps a NATS connection. A nil connection yields a
// publisher that silently drops events, which keeps the workflows usable
// when the broker is down.
func NewPublisher(nc *nats.Conn, logger *log.Logger) *Publisher {
	return &Publisher{nc: nc, logger: logger}
}

func (p *Publisher) publish(subject string, event ProjectEvent) {
	if p == nil || p.nc == nil {
		return
	}
	event.EventID = uuid.NewString()
	event.OccurredAt = time.Now().UTC()

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Printf("Error encoding %s event: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Printf("Error publishing %s event: %v", subject, err)
	}
}

func (p *Publisher) ProjectPicked(project *models.Project, lead string) {
	p.publish(SubjectProjectPicked, ProjectEvent{
		ProjectID:  project.ID.Hex(),
		TeamLeadID: lead,
	})
}

func (p *Publisher) ProjectReleased(projectID, lead, reason string) {
	p.publish(SubjectProjectReleased, ProjectEvent{
		ProjectID:  projectID,
		TeamLeadID: lead,
		Reason:     reason,
	})
}

func (p *Publisher) TeamUpdated(projectID, lead string, employees []string) {
	p.publish(SubjectProjectTeam, ProjectEvent{
		ProjectID:  projectID,
		TeamLeadID: lead,
		Employees:  employees,
	})
}
