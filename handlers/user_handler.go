package handlers

import (
	"log"
	"net/http"

	"project-service/service"
)

type UsersHandler struct {
	logger  *log.Logger
	service *service.UserService
}

func NewUsersHandler(logger *log.Logger, svc *service.UserService) *UsersHandler {
	return &UsersHandler{logger: logger, service: svc}
}

// GetEmployees lists every employee in the directory.
func (h *UsersHandler) GetEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.service.Employees(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"employees": employees,
	})
}

// GetAvailableEmployees lists employees on none of the requesting lead's
// projects.
func (h *UsersHandler) GetAvailableEmployees(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	employees, err := h.service.AvailableEmployees(r.Context(), lead)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"employees": employees,
	})
}

// GetMyTeam lists employees assigned to any of the requesting lead's
// projects.
func (h *UsersHandler) GetMyTeam(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	members, err := h.service.MyTeam(r.Context(), lead)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"teamMembers": members,
	})
}
