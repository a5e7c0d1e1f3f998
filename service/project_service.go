package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-service/events"
	"project-service/models"
	"project-service/store"
)

// ProjectService implements the claim and assignment workflows over the
// project store. It holds no state of its own; every precondition is
// enforced by a conditional write in the store, and the service only
// re-reads afterwards to decide which error to report.
type ProjectService struct {
	projects store.ProjectStore
	users    store.UserStore
	events   *events.Publisher
	logger   *log.Logger
}

func NewProjectService(projects store.ProjectStore, users store.UserStore, publisher *events.Publisher, logger *log.Logger) *ProjectService {
	return &ProjectService{projects: projects, users: users, events: publisher, logger: logger}
}

func (s *ProjectService) ListAvailable(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error) {
	return s.projects.ListAvailable(ctx, filter)
}

// ListMine returns the lead's claimed projects together with counts by
// status over the returned set.
func (s *ProjectService) ListMine(ctx context.Context, lead primitive.ObjectID, filter models.ProjectFilter) ([]models.Project, *models.ProjectStats, error) {
	projects, err := s.projects.ListByOwner(ctx, lead, filter)
	if err != nil {
		return nil, nil, err
	}

	stats := &models.ProjectStats{Total: len(projects)}
	for _, p := range projects {
		switch p.Status {
		case models.StatusInProgress:
			stats.InProgress++
		case models.StatusCompleted:
			stats.Completed++
		case models.StatusOnHold:
			stats.OnHold++
		}
	}
	return projects, stats, nil
}

// CreateProjectInput is the admin-facing payload for adding a project to
// the pool.
type CreateProjectInput struct {
	ProjectName        string     `json:"projectName"`
	ClientName         string     `json:"clientName"`
	Description        string     `json:"description"`
	Priority           string     `json:"priority"`
	Category           string     `json:"category"`
	VisibleToTeamLeads *bool      `json:"visibleToTeamLeads"`
	Deadline           *time.Time `json:"deadline"`
	EstimatedHours     int        `json:"estimatedHours"`
}

func (s *ProjectService) CreateProject(ctx context.Context, createdBy primitive.ObjectID, in CreateProjectInput) (*models.Project, error) {
	if in.ProjectName == "" {
		return nil, fmt.Errorf("%w: projectName is required", ErrValidation)
	}
	if in.ClientName == "" {
		return nil, fmt.Errorf("%w: clientName is required", ErrValidation)
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
	if !models.IsValidPriority(in.Priority) {
		return nil, fmt.Errorf("%w: invalid priority %q", ErrValidation, in.Priority)
	}
	if in.Category == "" {
		in.Category = models.CategoryFixed
	}
	if !models.IsValidCategory(in.Category) {
		return nil, fmt.Errorf("%w: invalid category %q", ErrValidation, in.Category)
	}
	if in.EstimatedHours < 0 {
		return nil, fmt.Errorf("%w: estimatedHours cannot be negative", ErrValidation)
	}

	visible := true
	if in.VisibleToTeamLeads != nil {
		visible = *in.VisibleToTeamLeads
	}

	project := &models.Project{
		ProjectName:        in.ProjectName,
		ClientName:         in.ClientName,
		Description:        in.Description,
		Status:             models.StatusPending,
		Priority:           in.Priority,
		Category:           in.Category,
		VisibleToTeamLeads: visible,
		Employees:          []primitive.ObjectID{},
		Deadline:           in.Deadline,
		EstimatedHours:     in.EstimatedHours,
		CreatedBy:          createdBy,
		CreatedAt:          time.Now().UTC(),
	}
	if err := s.projects.Insert(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// Pick claims an unclaimed, visible project for the requesting team lead.
// The claim itself is a single conditional update; when it does not
// match, the project is re-read only to classify the failure.
func (s *ProjectService) Pick(ctx context.Context, projectID, lead primitive.ObjectID) (*models.Project, error) {
	project, err := s.projects.Claim(ctx, projectID, lead)
	if err == nil {
		s.logger.Printf("Project %s picked by team lead %s", project.ID.Hex(), lead.Hex())
		s.events.ProjectPicked(project, lead.Hex())
		return project, nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return nil, err
	}

	current, findErr := s.projects.FindByID(ctx, projectID)
	if errors.Is(findErr, store.ErrNotFound) {
		return nil, ErrProjectNotFound
	}
	if findErr != nil {
		return nil, findErr
	}
	if !current.VisibleToTeamLeads {
		return nil, ErrNotVisible
	}
	return nil, ErrAlreadyClaimed
}

// Release returns a project to the pool. Assigned employees are kept so
// the next lead inherits the staffing.
func (s *ProjectService) Release(ctx context.Context, projectID, lead primitive.ObjectID, reason string) error {
	err := s.projects.Release(ctx, projectID, lead)
	if err == nil {
		s.logger.Printf("Project %s released by team lead %s", projectID.Hex(), lead.Hex())
		s.events.ProjectReleased(projectID.Hex(), lead.Hex(), reason)
		return nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return err
	}

	current, findErr := s.projects.FindByID(ctx, projectID)
	if errors.Is(findErr, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	if findErr != nil {
		return findErr
	}
	if !current.Claimed() || *current.OwnerTeamLeadID != lead {
		return ErrNotOwner
	}
	return ErrProjectClosed
}

// AssignEmployees replaces the project's team wholesale. The caller
// always submits the full desired membership.
func (s *ProjectService) AssignEmployees(ctx context.Context, projectID, lead primitive.ObjectID, employeeIDs []primitive.ObjectID) error {
	ids := dedupe(employeeIDs)

	if len(ids) > 0 {
		found, err := s.users.ListByIDs(ctx, ids)
		if err != nil {
			return err
		}
		known := map[primitive.ObjectID]bool{}
		for _, u := range found {
			if u.Role == models.RoleEmployee {
				known[u.ID] = true
			}
		}
		var unknown []string
		for _, id := range ids {
			if !known[id] {
				unknown = append(unknown, id.Hex())
			}
		}
		if len(unknown) > 0 {
			return &UnknownEmployeeError{IDs: unknown}
		}
	}

	err := s.projects.SetEmployees(ctx, projectID, lead, ids)
	if err == nil {
		s.events.TeamUpdated(projectID.Hex(), lead.Hex(), hexIDs(ids))
		return nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return err
	}
	if _, findErr := s.projects.FindByID(ctx, projectID); errors.Is(findErr, store.ErrNotFound) {
		return ErrProjectNotFound
	} else if findErr != nil {
		return findErr
	}
	return ErrNotOwner
}

// RemoveEmployee removes one employee from the project's team. Removing
// an employee who is not assigned is an error, not a no-op: the UI
// treats that response as authoritative feedback.
func (s *ProjectService) RemoveEmployee(ctx context.Context, projectID, lead, employee primitive.ObjectID) error {
	err := s.projects.PullEmployee(ctx, projectID, lead, employee)
	if err == nil {
		return nil
	}
	if !errors.Is(err, store.ErrConflict) {
		return err
	}

	current, findErr := s.projects.FindByID(ctx, projectID)
	if errors.Is(findErr, store.ErrNotFound) {
		return ErrProjectNotFound
	}
	if findErr != nil {
		return findErr
	}
	if !current.Claimed() || *current.OwnerTeamLeadID != lead {
		return ErrNotOwner
	}
	return ErrNotAssigned
}

func dedupe(ids []primitive.ObjectID) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{}
	out := []primitive.ObjectID{}
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func hexIDs(ids []primitive.ObjectID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.Hex())
	}
	return out
}
