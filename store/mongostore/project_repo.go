package mongostore

import (
	"context"
	"errors"
	"log"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"project-service/models"
	"project-service/store"
)

type ProjectRepo struct {
	cli    *mongo.Client
	dbName string
	logger *log.Logger
}

func NewProjectRepo(client *mongo.Client, dbName string, logger *log.Logger) *ProjectRepo {
	return &ProjectRepo{cli: client, dbName: dbName, logger: logger}
}

func (r *ProjectRepo) col() *mongo.Collection {
	return r.cli.Database(r.dbName).Collection("projects")
}

func (r *ProjectRepo) Insert(ctx context.Context, project *models.Project) error {
	if project.ID.IsZero() {
		project.ID = primitive.NewObjectID()
	}
	if project.CreatedAt.IsZero() {
		project.CreatedAt = time.Now().UTC()
	}
	if project.Employees == nil {
		project.Employees = []primitive.ObjectID{}
	}
	_, err := r.col().InsertOne(ctx, project)
	return err
}

func (r *ProjectRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error) {
	var project models.Project
	err := r.col().FindOne(ctx, bson.M{"_id": id}).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// unclaimedFilter matches documents no team lead currently owns. Release
// removes the field with $unset, so "unset" means absent.
func unclaimedFilter() bson.M {
	return bson.M{"ownerTeamLeadId": bson.M{"$exists": false}}
}

func applyProjectFilter(filter bson.M, f models.ProjectFilter) bson.M {
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(f.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"projectName": pattern},
			bson.M{"clientName": pattern},
		}
	}
	return filter
}

func (r *ProjectRepo) list(ctx context.Context, filter bson.M) ([]models.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := r.col().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	projects := []models.Project{}
	if err := cursor.All(ctx, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *ProjectRepo) ListAvailable(ctx context.Context, f models.ProjectFilter) ([]models.Project, error) {
	filter := unclaimedFilter()
	filter["visibleToTeamLeads"] = true
	return r.list(ctx, applyProjectFilter(filter, f))
}

func (r *ProjectRepo) ListByOwner(ctx context.Context, owner primitive.ObjectID, f models.ProjectFilter) ([]models.Project, error) {
	filter := bson.M{"ownerTeamLeadId": owner}
	return r.list(ctx, applyProjectFilter(filter, f))
}

// Claim is a compare-and-swap: the ownership precondition lives in the
// update filter, so two leads racing on the same project cannot both win.
// The first attempt also requires status=pending and bumps it to
// in-progress in the same write; the fallback claims without touching the
// status.
func (r *ProjectRepo) Claim(ctx context.Context, id, lead primitive.ObjectID) (*models.Project, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	pendingFilter := unclaimedFilter()
	pendingFilter["_id"] = id
	pendingFilter["visibleToTeamLeads"] = true
	pendingFilter["status"] = models.StatusPending

	var project models.Project
	err := r.col().FindOneAndUpdate(ctx, pendingFilter,
		bson.M{"$set": bson.M{"ownerTeamLeadId": lead, "status": models.StatusInProgress}},
		opts).Decode(&project)
	if err == nil {
		return &project, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}

	filter := unclaimedFilter()
	filter["_id"] = id
	filter["visibleToTeamLeads"] = true

	err = r.col().FindOneAndUpdate(ctx, filter,
		bson.M{"$set": bson.M{"ownerTeamLeadId": lead}},
		opts).Decode(&project)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, store.ErrConflict
	}
	if err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *ProjectRepo) Release(ctx context.Context, id, lead primitive.ObjectID) error {
	filter := bson.M{
		"_id":             id,
		"ownerTeamLeadId": lead,
		"status":          bson.M{"$nin": bson.A{models.StatusCompleted, models.StatusCancelled}},
	}
	res, err := r.col().UpdateOne(ctx, filter, bson.M{"$unset": bson.M{"ownerTeamLeadId": ""}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *ProjectRepo) SetEmployees(ctx context.Context, id, lead primitive.ObjectID, employees []primitive.ObjectID) error {
	if employees == nil {
		employees = []primitive.ObjectID{}
	}
	filter := bson.M{"_id": id, "ownerTeamLeadId": lead}
	res, err := r.col().UpdateOne(ctx, filter, bson.M{"$set": bson.M{"employees": employees}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *ProjectRepo) PullEmployee(ctx context.Context, id, lead, employee primitive.ObjectID) error {
	filter := bson.M{"_id": id, "ownerTeamLeadId": lead, "employees": employee}
	res, err := r.col().UpdateOne(ctx, filter, bson.M{"$pull": bson.M{"employees": employee}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return store.ErrConflict
	}
	return nil
}

func (r *ProjectRepo) CountForEmployee(ctx context.Context, employee primitive.ObjectID) (int, int, error) {
	total, err := r.col().CountDocuments(ctx, bson.M{"employees": employee})
	if err != nil {
		return 0, 0, err
	}
	active, err := r.col().CountDocuments(ctx, bson.M{
		"employees": employee,
		"status":    bson.M{"$in": bson.A{models.StatusActive, models.StatusInProgress}},
	})
	if err != nil {
		return 0, 0, err
	}
	return int(active), int(total), nil
}
