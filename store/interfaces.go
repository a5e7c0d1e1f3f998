package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-service/models"
)

// ProjectStore is the persistence boundary for project documents. The
// claim and assignment mutations are single conditional updates: the
// required preconditions are part of the write itself, and a write whose
// condition no longer holds fails with ErrConflict instead of touching
// the document.
type ProjectStore interface {
	Insert(ctx context.Context, project *models.Project) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)

	// ListAvailable returns unclaimed, team-lead-visible projects matching
	// the filter, newest first.
	ListAvailable(ctx context.Context, filter models.ProjectFilter) ([]models.Project, error)

	// ListByOwner returns the projects claimed by the given team lead,
	// newest first.
	ListByOwner(ctx context.Context, owner primitive.ObjectID, filter models.ProjectFilter) ([]models.Project, error)

	// Claim sets the owning team lead if and only if the project is
	// currently unclaimed and visible to team leads. A still-pending
	// project moves to in-progress in the same write. Returns the updated
	// document, or ErrConflict when the condition did not hold.
	Claim(ctx context.Context, id, lead primitive.ObjectID) (*models.Project, error)

	// Release clears the owner if and only if the given lead owns the
	// project and it is not completed or cancelled. Assigned employees are
	// left untouched.
	Release(ctx context.Context, id, lead primitive.ObjectID) error

	// SetEmployees replaces the project's employee list wholesale, gated
	// on the given lead owning the project.
	SetEmployees(ctx context.Context, id, lead primitive.ObjectID, employees []primitive.ObjectID) error

	// PullEmployee removes one employee, gated on ownership and on the
	// employee currently being assigned.
	PullEmployee(ctx context.Context, id, lead, employee primitive.ObjectID) error

	// CountForEmployee reports how many projects the employee is assigned
	// to, and how many of those are currently active or in progress.
	CountForEmployee(ctx context.Context, employee primitive.ObjectID) (active, total int, err error)
}

type UserStore interface {
	Insert(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ListByRole(ctx context.Context, role string) ([]models.User, error)
	ListByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
}
