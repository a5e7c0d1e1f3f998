package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-service/models"
	"project-service/security"
	"project-service/service"
)

type ProjectsHandler struct {
	logger  *log.Logger
	service *service.ProjectService
}

func NewProjectsHandler(logger *log.Logger, svc *service.ProjectService) *ProjectsHandler {
	return &ProjectsHandler{logger: logger, service: svc}
}

func projectFilterFromQuery(r *http.Request) models.ProjectFilter {
	q := r.URL.Query()
	return models.NewProjectFilter(q.Get("status"), q.Get("priority"), q.Get("category"), q.Get("search"))
}

func projectIDFromRequest(r *http.Request) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)["projectId"])
}

func requireUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, ok := security.UserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
	}
	return id, ok
}

func (h *ProjectsHandler) GetAvailableProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := h.service.ListAvailable(r.Context(), projectFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"projects": projects,
	})
}

func (h *ProjectsHandler) GetMyProjects(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	projects, stats, err := h.service.ListMine(r.Context(), lead, projectFilterFromQuery(r))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"projects": projects,
		"stats":    stats,
	})
}

func (h *ProjectsHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	admin, ok := requireUser(w, r)
	if !ok {
		return
	}
	var in service.CreateProjectInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	project, err := h.service.CreateProject(r.Context(), admin, in)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"project": project,
		"message": fmt.Sprintf("Project %q created", project.ProjectName),
	})
}

func (h *ProjectsHandler) PickProject(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID, err := projectIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	project, err := h.service.Pick(r.Context(), projectID, lead)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"project": project,
		"message": fmt.Sprintf("Successfully picked %q", project.ProjectName),
	})
}

func (h *ProjectsHandler) ReleaseProject(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID, err := projectIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	// The reason is optional and so is the body itself.
	var body struct {
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.service.Release(r.Context(), projectID, lead, body.Reason); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Project released and returned to the available pool",
	})
}

func (h *ProjectsHandler) AssignEmployees(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID, err := projectIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}

	var body struct {
		EmployeeIDs []string `json:"employeeIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	employeeIDs := make([]primitive.ObjectID, 0, len(body.EmployeeIDs))
	for _, raw := range body.EmployeeIDs {
		id, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid employee ID %q", raw))
			return
		}
		employeeIDs = append(employeeIDs, id)
	}

	if err := h.service.AssignEmployees(r.Context(), projectID, lead, employeeIDs); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Team members assigned successfully",
	})
}

func (h *ProjectsHandler) RemoveEmployee(w http.ResponseWriter, r *http.Request) {
	lead, ok := requireUser(w, r)
	if !ok {
		return
	}
	projectID, err := projectIDFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid project ID")
		return
	}
	employeeID, err := primitive.ObjectIDFromHex(mux.Vars(r)["employeeId"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee ID")
		return
	}

	if err := h.service.RemoveEmployee(r.Context(), projectID, lead, employeeID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Team member removed from the project",
	})
}
