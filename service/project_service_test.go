package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-service/events"
	"project-service/models"
	"project-service/store/memstore"
)

type fixture struct {
	projects *memstore.ProjectStore
	users    *memstore.UserStore
	svc      *ProjectService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := log.New(io.Discard, "", 0)
	projects := memstore.NewProjectStore()
	users := memstore.NewUserStore()
	return &fixture{
		projects: projects,
		users:    users,
		svc:      NewProjectService(projects, users, events.NewPublisher(nil, logger), logger),
	}
}

func (f *fixture) addUser(t *testing.T, name, role string) primitive.ObjectID {
	t.Helper()
	user := models.NewUser(name, name+"@example.com", "x", role)
	require.NoError(t, f.users.Insert(context.Background(), &user))
	return user.ID
}

func (f *fixture) addProject(t *testing.T, p models.Project) primitive.ObjectID {
	t.Helper()
	if p.Status == "" {
		p.Status = models.StatusPending
	}
	if p.Priority == "" {
		p.Priority = models.PriorityMedium
	}
	if p.Category == "" {
		p.Category = models.CategoryFixed
	}
	require.NoError(t, f.projects.Insert(context.Background(), &p))
	return p.ID
}

func (f *fixture) get(t *testing.T, id primitive.ObjectID) *models.Project {
	t.Helper()
	p, err := f.projects.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func TestPickClaimsUnclaimedProject(t *testing.T) {
	f := newFixture(t)
	lead := f.addUser(t, "lead", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	project, err := f.svc.Pick(context.Background(), id, lead)
	require.NoError(t, err)
	require.NotNil(t, project.OwnerTeamLeadID)
	require.Equal(t, lead, *project.OwnerTeamLeadID)
	require.Equal(t, models.StatusInProgress, project.Status, "pending projects move to in-progress on pick")
}

func TestPickKeepsNonPendingStatus(t *testing.T) {
	f := newFixture(t)
	lead := f.addUser(t, "lead", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true, Status: models.StatusActive})

	project, err := f.svc.Pick(context.Background(), id, lead)
	require.NoError(t, err)
	require.Equal(t, models.StatusActive, project.Status)
}

func TestPickAlreadyClaimedLeavesOwnerUnchanged(t *testing.T) {
	f := newFixture(t)
	first := f.addUser(t, "first", models.RoleTeamLead)
	second := f.addUser(t, "second", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, first)
	require.NoError(t, err)

	_, err = f.svc.Pick(context.Background(), id, second)
	require.ErrorIs(t, err, ErrAlreadyClaimed)
	require.Equal(t, first, *f.get(t, id).OwnerTeamLeadID)
}

func TestPickNotFound(t *testing.T) {
	f := newFixture(t)
	lead := f.addUser(t, "lead", models.RoleTeamLead)

	_, err := f.svc.Pick(context.Background(), primitive.NewObjectID(), lead)
	require.ErrorIs(t, err, ErrProjectNotFound)
}

func TestPickNotVisible(t *testing.T) {
	f := newFixture(t)
	lead := f.addUser(t, "lead", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: false})

	_, err := f.svc.Pick(context.Background(), id, lead)
	require.ErrorIs(t, err, ErrNotVisible)
}

func TestConcurrentPicksExactlyOneWinner(t *testing.T) {
	f := newFixture(t)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	const leads = 8
	var wg sync.WaitGroup
	errs := make([]error, leads)
	ids := make([]primitive.ObjectID, leads)
	for i := 0; i < leads; i++ {
		ids[i] = f.addUser(t, string(rune('a'+i)), models.RoleTeamLead)
	}

	for i := 0; i < leads; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Pick(context.Background(), id, ids[i])
		}(i)
	}
	wg.Wait()

	winners := 0
	var winner primitive.ObjectID
	for i, err := range errs {
		if err == nil {
			winners++
			winner = ids[i]
		} else {
			require.ErrorIs(t, err, ErrAlreadyClaimed)
		}
	}
	require.Equal(t, 1, winners, "exactly one concurrent pick succeeds")
	require.Equal(t, winner, *f.get(t, id).OwnerTeamLeadID)
}

func TestReleaseReturnsProjectToPool(t *testing.T) {
	f := newFixture(t)
	first := f.addUser(t, "first", models.RoleTeamLead)
	second := f.addUser(t, "second", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, first)
	require.NoError(t, err)
	require.NoError(t, f.svc.Release(context.Background(), id, first, "reassigning"))

	require.False(t, f.get(t, id).Claimed())

	_, err = f.svc.Pick(context.Background(), id, second)
	require.NoError(t, err)
	require.Equal(t, second, *f.get(t, id).OwnerTeamLeadID)
}

func TestReleaseRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	other := f.addUser(t, "other", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Release(context.Background(), id, other, ""), ErrNotOwner)
	require.ErrorIs(t, f.svc.Release(context.Background(), primitive.NewObjectID(), owner, ""), ErrProjectNotFound)
}

func TestReleaseBlockedForClosedProjects(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)

	for _, status := range []string{models.StatusCompleted, models.StatusCancelled} {
		id := f.addProject(t, models.Project{ProjectName: "P " + status, ClientName: "C", VisibleToTeamLeads: true, Status: status, OwnerTeamLeadID: &owner})
		require.ErrorIs(t, f.svc.Release(context.Background(), id, owner, ""), ErrProjectClosed)
		require.True(t, f.get(t, id).Claimed())
	}
}

func TestReleaseKeepsEmployees(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	e1 := f.addUser(t, "e1", models.RoleEmployee)
	e2 := f.addUser(t, "e2", models.RoleEmployee)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)
	require.NoError(t, f.svc.AssignEmployees(context.Background(), id, owner, []primitive.ObjectID{e1, e2}))
	require.NoError(t, f.svc.Release(context.Background(), id, owner, ""))

	require.ElementsMatch(t, []primitive.ObjectID{e1, e2}, f.get(t, id).Employees,
		"team assignments persist across release")
}

func TestAssignEmployeesReplacesWholesale(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	a := f.addUser(t, "a", models.RoleEmployee)
	b := f.addUser(t, "b", models.RoleEmployee)
	c := f.addUser(t, "c", models.RoleEmployee)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)

	require.NoError(t, f.svc.AssignEmployees(context.Background(), id, owner, []primitive.ObjectID{a, b}))
	require.NoError(t, f.svc.AssignEmployees(context.Background(), id, owner, []primitive.ObjectID{b, c}))

	require.ElementsMatch(t, []primitive.ObjectID{b, c}, f.get(t, id).Employees,
		"assignment replaces, it does not union")
}

func TestAssignEmployeesIsIdempotent(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	a := f.addUser(t, "a", models.RoleEmployee)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)

	team := []primitive.ObjectID{a}
	require.NoError(t, f.svc.AssignEmployees(context.Background(), id, owner, team))
	require.NoError(t, f.svc.AssignEmployees(context.Background(), id, owner, team))
	require.ElementsMatch(t, team, f.get(t, id).Employees)
}

func TestAssignEmployeesRejectsUnknownIDs(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	lead2 := f.addUser(t, "lead2", models.RoleTeamLead)
	a := f.addUser(t, "a", models.RoleEmployee)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)

	missing := primitive.NewObjectID()
	err = f.svc.AssignEmployees(context.Background(), id, owner, []primitive.ObjectID{a, missing, lead2})

	var unknown *UnknownEmployeeError
	require.ErrorAs(t, err, &unknown)
	require.ElementsMatch(t, []string{missing.Hex(), lead2.Hex()}, unknown.IDs,
		"non-existent ids and non-employee roles are both reported")
	require.Empty(t, f.get(t, id).Employees)
}

func TestAssignEmployeesRequiresOwnership(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	other := f.addUser(t, "other", models.RoleTeamLead)
	a := f.addUser(t, "a", models.RoleEmployee)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.AssignEmployees(context.Background(), id, other, []primitive.ObjectID{a}), ErrNotOwner)
	require.ErrorIs(t, f.svc.AssignEmployees(context.Background(), primitive.NewObjectID(), owner, []primitive.ObjectID{a}), ErrProjectNotFound)
}

func TestRemoveEmployeeStrictPrecondition(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	a := f.addUser(t, "a", models.RoleEmployee)
	b := f.addUser(t, "b", models.RoleEmployee)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, owner)
	require.NoError(t, err)
	require.NoError(t, f.svc.AssignEmployees(context.Background(), id, owner, []primitive.ObjectID{a, b}))

	require.NoError(t, f.svc.RemoveEmployee(context.Background(), id, owner, a))
	require.ElementsMatch(t, []primitive.ObjectID{b}, f.get(t, id).Employees)

	// Removing again is an error, not a silent no-op.
	require.ErrorIs(t, f.svc.RemoveEmployee(context.Background(), id, owner, a), ErrNotAssigned)
	require.ElementsMatch(t, []primitive.ObjectID{b}, f.get(t, id).Employees)
}

func TestListAvailableFilters(t *testing.T) {
	f := newFixture(t)
	lead := f.addUser(t, "lead", models.RoleTeamLead)

	acme := f.addProject(t, models.Project{ProjectName: "Acme Redesign", ClientName: "Acme Corp", VisibleToTeamLeads: true})
	f.addProject(t, models.Project{ProjectName: "Other", ClientName: "Globex", VisibleToTeamLeads: true})
	f.addProject(t, models.Project{ProjectName: "ACME hidden", ClientName: "Acme Corp", VisibleToTeamLeads: false})
	claimed := f.addProject(t, models.Project{ProjectName: "Acme Claimed", ClientName: "Acme Corp", VisibleToTeamLeads: true})
	_, err := f.svc.Pick(context.Background(), claimed, lead)
	require.NoError(t, err)

	got, err := f.svc.ListAvailable(context.Background(),
		models.NewProjectFilter("pending", "", "", "aCmE"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, acme, got[0].ID)
}

func TestListAvailableIgnoresInvalidFilterValues(t *testing.T) {
	f := newFixture(t)
	f.addProject(t, models.Project{ProjectName: "A", ClientName: "C", VisibleToTeamLeads: true})
	f.addProject(t, models.Project{ProjectName: "B", ClientName: "C", VisibleToTeamLeads: true})

	got, err := f.svc.ListAvailable(context.Background(),
		models.NewProjectFilter("bogus", "nope", "wat", ""))
	require.NoError(t, err)
	require.Len(t, got, 2, "invalid filter values mean no filter, not an error")
}

func TestListMineStats(t *testing.T) {
	f := newFixture(t)
	owner := f.addUser(t, "owner", models.RoleTeamLead)
	other := f.addUser(t, "other", models.RoleTeamLead)

	for _, status := range []string{models.StatusInProgress, models.StatusInProgress, models.StatusCompleted, models.StatusOnHold} {
		f.addProject(t, models.Project{ProjectName: "P " + status, ClientName: "C", Status: status, OwnerTeamLeadID: &owner})
	}
	f.addProject(t, models.Project{ProjectName: "Not mine", ClientName: "C", Status: models.StatusInProgress, OwnerTeamLeadID: &other})

	projects, stats, err := f.svc.ListMine(context.Background(), owner, models.ProjectFilter{})
	require.NoError(t, err)
	require.Len(t, projects, 4)
	require.Equal(t, &models.ProjectStats{Total: 4, InProgress: 2, Completed: 1, OnHold: 1}, stats)
}

func TestCreateProjectValidation(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", models.RoleAdmin)

	_, err := f.svc.CreateProject(context.Background(), admin, CreateProjectInput{ClientName: "C"})
	require.ErrorIs(t, err, ErrValidation)

	_, err = f.svc.CreateProject(context.Background(), admin, CreateProjectInput{ProjectName: "P", ClientName: "C", Priority: "mega"})
	require.ErrorIs(t, err, ErrValidation)

	project, err := f.svc.CreateProject(context.Background(), admin, CreateProjectInput{ProjectName: "P", ClientName: "C"})
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, project.Status)
	require.Equal(t, models.PriorityMedium, project.Priority)
	require.Equal(t, models.CategoryFixed, project.Category)
	require.True(t, project.VisibleToTeamLeads)
	require.False(t, project.Claimed())
}

// The full lifecycle: create -> pick -> staff -> release -> re-pick by
// another lead who inherits the staffing.
func TestClaimLifecycleScenario(t *testing.T) {
	f := newFixture(t)
	admin := f.addUser(t, "admin", models.RoleAdmin)
	l1 := f.addUser(t, "l1", models.RoleTeamLead)
	l2 := f.addUser(t, "l2", models.RoleTeamLead)
	e1 := f.addUser(t, "e1", models.RoleEmployee)
	e2 := f.addUser(t, "e2", models.RoleEmployee)

	created, err := f.svc.CreateProject(context.Background(), admin, CreateProjectInput{ProjectName: "P", ClientName: "C"})
	require.NoError(t, err)

	picked, err := f.svc.Pick(context.Background(), created.ID, l1)
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, picked.Status)
	require.Equal(t, l1, *picked.OwnerTeamLeadID)

	require.NoError(t, f.svc.AssignEmployees(context.Background(), created.ID, l1, []primitive.ObjectID{e1, e2}))
	require.NoError(t, f.svc.Release(context.Background(), created.ID, l1, "reassigning"))

	after := f.get(t, created.ID)
	require.False(t, after.Claimed())
	require.ElementsMatch(t, []primitive.ObjectID{e1, e2}, after.Employees)

	_, err = f.svc.Pick(context.Background(), created.ID, l2)
	require.NoError(t, err)

	// The inheriting lead can manage the inherited team.
	require.NoError(t, f.svc.RemoveEmployee(context.Background(), created.ID, l2, e1))
	require.ElementsMatch(t, []primitive.ObjectID{e2}, f.get(t, created.ID).Employees)
}

func TestStoreConflictPassthrough(t *testing.T) {
	f := newFixture(t)
	lead := f.addUser(t, "lead", models.RoleTeamLead)
	id := f.addProject(t, models.Project{ProjectName: "P", ClientName: "C", VisibleToTeamLeads: true})

	_, err := f.svc.Pick(context.Background(), id, lead)
	require.NoError(t, err)

	// Self re-pick is also an already-claimed conflict.
	_, err = f.svc.Pick(context.Background(), id, lead)
	require.True(t, errors.Is(err, ErrAlreadyClaimed))
}
