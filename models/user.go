package models

import "go.mongodb.org/mongo-driver/bson/primitive"

const (
	RoleAdmin    = "admin"
	RoleTeamLead = "teamlead"
	RoleEmployee = "employee"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
	Role     string             `bson:"role" json:"role"`
	Stats    *UserStats         `bson:"-" json:"stats,omitempty"`
}

// UserStats is derived from project membership and never stored.
type UserStats struct {
	ActiveProjects int `json:"activeProjects"`
	TotalProjects  int `json:"totalProjects"`
}

func NewUser(name, email, password, role string) User {
	return User{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     role,
	}
}

func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleTeamLead, RoleEmployee:
		return true
	}
	return false
}
