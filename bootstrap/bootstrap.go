// Package bootstrap seeds a development database with a handful of
// users and unclaimed projects. It only runs when ENABLE_BOOTSTRAP=true
// and never touches a database that already has the seed admin.
package bootstrap

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"project-service/models"
	"project-service/store"
)

const seedAdminEmail = "admin@example.com"

func Seed(ctx context.Context, logger *log.Logger, users store.UserStore, projects store.ProjectStore) {
	if os.Getenv("ENABLE_BOOTSTRAP") != "true" {
		return
	}

	if _, err := users.FindByEmail(ctx, seedAdminEmail); err == nil {
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		logger.Printf("Error checking for seed data: %v", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("Password1!"), bcrypt.DefaultCost)
	if err != nil {
		logger.Printf("Error hashing seed password: %v", err)
		return
	}
	password := string(hashed)

	seedUsers := []models.User{
		models.NewUser("Admin", seedAdminEmail, password, models.RoleAdmin),
		models.NewUser("Lena Ward", "lena@example.com", password, models.RoleTeamLead),
		models.NewUser("Tom Brook", "tom@example.com", password, models.RoleTeamLead),
		models.NewUser("Eva Stone", "eva@example.com", password, models.RoleEmployee),
		models.NewUser("Igor Malik", "igor@example.com", password, models.RoleEmployee),
		models.NewUser("Mia Chen", "mia@example.com", password, models.RoleEmployee),
		models.NewUser("Sam Patel", "sam@example.com", password, models.RoleEmployee),
	}
	for i := range seedUsers {
		if err := users.Insert(ctx, &seedUsers[i]); err != nil {
			logger.Printf("Error inserting seed user %s: %v", seedUsers[i].Email, err)
			return
		}
	}
	admin := seedUsers[0].ID

	deadline := time.Now().AddDate(0, 1, 0)
	seedProjects := []models.Project{
		{
			ProjectName:        "Acme Website Redesign",
			ClientName:         "Acme Corp",
			Description:        "Marketing site overhaul",
			Status:             models.StatusPending,
			Priority:           models.PriorityHigh,
			Category:           models.CategoryFixed,
			VisibleToTeamLeads: true,
			Deadline:           &deadline,
			EstimatedHours:     120,
			CreatedBy:          admin,
		},
		{
			ProjectName:        "Billing Service Migration",
			ClientName:         "Northwind",
			Status:             models.StatusPending,
			Priority:           models.PriorityUrgent,
			Category:           models.CategoryMilestone,
			VisibleToTeamLeads: true,
			EstimatedHours:     300,
			CreatedBy:          admin,
		},
		{
			ProjectName:        "Support Retainer",
			ClientName:         "Globex",
			Status:             models.StatusActive,
			Priority:           models.PriorityLow,
			Category:           models.CategoryHourly,
			VisibleToTeamLeads: true,
			CreatedBy:          admin,
		},
		{
			ProjectName:        "Internal Tooling",
			ClientName:         "In-house",
			Status:             models.StatusPending,
			Priority:           models.PriorityMedium,
			Category:           models.CategoryFixed,
			VisibleToTeamLeads: false,
			CreatedBy:          admin,
		},
	}
	for i := range seedProjects {
		if err := projects.Insert(ctx, &seedProjects[i]); err != nil {
			logger.Printf("Error inserting seed project %s: %v", seedProjects[i].ProjectName, err)
			return
		}
	}

	logger.Printf("Inserted %d seed users and %d seed projects", len(seedUsers), len(seedProjects))
}
