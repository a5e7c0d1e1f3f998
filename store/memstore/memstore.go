// Package memstore is an in-memory implementation of the store
// interfaces, used by tests. The conditional-update semantics mirror the
// Mongo implementation: every mutation checks its precondition and the
// write under one lock.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-service/models"
	"project-service/store"
)

type ProjectStore struct {
	mu       sync.Mutex
	projects map[primitive.ObjectID]*models.Project
}

func NewProjectStore() *ProjectStore {
	return &ProjectStore{projects: map[primitive.ObjectID]*models.Project{}}
}

func cloneProject(p *models.Project) *models.Project {
	c := *p
	if p.OwnerTeamLeadID != nil {
		owner := *p.OwnerTeamLeadID
		c.OwnerTeamLeadID = &owner
	}
	c.Employees = append([]primitive.ObjectID{}, p.Employees...)
	return &c
}

func (s *ProjectStore) Insert(_ context.Context, project *models.Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	if project.Employees == nil {
		project.Employees = []primitive.ObjectID{}
	}
	s.projects[project.ID] = cloneProject(project)
	return nil
}

func (s *ProjectStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return cloneProject(p), nil
}

func matchesFilter(p *models.Project, f models.ProjectFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Priority != "" && p.Priority != f.Priority {
		return false
	}
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.ProjectName), term) &&
			!strings.Contains(strings.ToLower(p.ClientName), term) {
			return false
		}
	}
	return true
}

func (s *ProjectStore) collect(match func(*models.Project) bool) []models.Project {
	out := []models.Project{}
	for _, p := range s.projects {
		if match(p) {
			out = append(out, *cloneProject(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *ProjectStore) ListAvailable(_ context.Context, f models.ProjectFilter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(p *models.Project) bool {
		return !p.Claimed() && p.VisibleToTeamLeads && matchesFilter(p, f)
	}), nil
}

func (s *ProjectStore) ListByOwner(_ context.Context, owner primitive.ObjectID, f models.ProjectFilter) ([]models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collect(func(p *models.Project) bool {
		return p.Claimed() && *p.OwnerTeamLeadID == owner && matchesFilter(p, f)
	}), nil
}

func (s *ProjectStore) Claim(_ context.Context, id, lead primitive.ObjectID) (*models.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || p.Claimed() || !p.VisibleToTeamLeads {
		return nil, store.ErrConflict
	}
	owner := lead
	p.OwnerTeamLeadID = &owner
	if p.Status == models.StatusPending {
		p.Status = models.StatusInProgress
	}
	return cloneProject(p), nil
}

func (s *ProjectStore) Release(_ context.Context, id, lead primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || !p.Claimed() || *p.OwnerTeamLeadID != lead || p.Closed() {
		return store.ErrConflict
	}
	p.OwnerTeamLeadID = nil
	return nil
}

func (s *ProjectStore) SetEmployees(_ context.Context, id, lead primitive.ObjectID, employees []primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || !p.Claimed() || *p.OwnerTeamLeadID != lead {
		return store.ErrConflict
	}
	p.Employees = append([]primitive.ObjectID{}, employees...)
	return nil
}

func (s *ProjectStore) PullEmployee(_ context.Context, id, lead, employee primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok || !p.Claimed() || *p.OwnerTeamLeadID != lead {
		return store.ErrConflict
	}
	for i, e := range p.Employees {
		if e == employee {
			p.Employees = append(p.Employees[:i], p.Employees[i+1:]...)
			return nil
		}
	}
	return store.ErrConflict
}

func (s *ProjectStore) CountForEmployee(_ context.Context, employee primitive.ObjectID) (int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	active, total := 0, 0
	for _, p := range s.projects {
		for _, e := range p.Employees {
			if e == employee {
				total++
				if p.Status == models.StatusActive || p.Status == models.StatusInProgress {
					active++
				}
				break
			}
		}
	}
	return active, total, nil
}

type UserStore struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func NewUserStore() *UserStore {
	return &UserStore{users: map[primitive.ObjectID]*models.User{}}
}

func (s *UserStore) Insert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	u := *user
	s.users[user.ID] = &u
	return nil
}

func (s *UserStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *u
	return &c, nil
}

func (s *UserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *UserStore) sorted(match func(*models.User) bool) []models.User {
	out := []models.User{}
	for _, u := range s.users {
		if match(u) {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *UserStore) ListByRole(_ context.Context, role string) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sorted(func(u *models.User) bool { return u.Role == role }), nil
}

func (s *UserStore) ListByIDs(_ context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := map[primitive.ObjectID]bool{}
	for _, id := range ids {
		want[id] = true
	}
	return s.sorted(func(u *models.User) bool { return want[u.ID] }), nil
}
