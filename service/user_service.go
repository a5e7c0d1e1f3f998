package service

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-service/models"
	"project-service/store"
)

// UserService exposes the read-side employee directory views used by the
// team-management screens.
type UserService struct {
	users    store.UserStore
	projects store.ProjectStore
	logger   *log.Logger
}

func NewUserService(users store.UserStore, projects store.ProjectStore, logger *log.Logger) *UserService {
	return &UserService{users: users, projects: projects, logger: logger}
}

// Employees returns every employee-role user with derived project counts.
func (s *UserService) Employees(ctx context.Context) ([]models.User, error) {
	employees, err := s.users.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, err
	}
	s.attachStats(ctx, employees)
	return employees, nil
}

// MyTeam returns the employees assigned to any of the lead's projects.
func (s *UserService) MyTeam(ctx context.Context, lead primitive.ObjectID) ([]models.User, error) {
	ids, err := s.teamIDs(ctx, lead)
	if err != nil {
		return nil, err
	}
	members, err := s.users.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	s.attachStats(ctx, members)
	return members, nil
}

// AvailableEmployees returns the employees assigned to none of the
// lead's projects.
func (s *UserService) AvailableEmployees(ctx context.Context, lead primitive.ObjectID) ([]models.User, error) {
	employees, err := s.users.ListByRole(ctx, models.RoleEmployee)
	if err != nil {
		return nil, err
	}
	teamIDs, err := s.teamIDs(ctx, lead)
	if err != nil {
		return nil, err
	}
	onTeam := map[primitive.ObjectID]bool{}
	for _, id := range teamIDs {
		onTeam[id] = true
	}

	available := []models.User{}
	for _, e := range employees {
		if !onTeam[e.ID] {
			available = append(available, e)
		}
	}
	s.attachStats(ctx, available)
	return available, nil
}

func (s *UserService) teamIDs(ctx context.Context, lead primitive.ObjectID) ([]primitive.ObjectID, error) {
	projects, err := s.projects.ListByOwner(ctx, lead, models.ProjectFilter{})
	if err != nil {
		return nil, err
	}
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, p := range projects {
		for _, e := range p.Employees {
			if !seen[e] {
				seen[e] = true
				ids = append(ids, e)
			}
		}
	}
	return ids, nil
}

// attachStats fills in derived project counts. A failed count leaves
// that user's stats empty instead of failing the listing.
func (s *UserService) attachStats(ctx context.Context, users []models.User) {
	for i := range users {
		active, total, err := s.projects.CountForEmployee(ctx, users[i].ID)
		if err != nil {
			s.logger.Printf("Error counting projects for user %s: %v", users[i].ID.Hex(), err)
			continue
		}
		users[i].Stats = &models.UserStats{ActiveProjects: active, TotalProjects: total}
	}
}
