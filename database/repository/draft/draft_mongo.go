package draftRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"regwizard/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type draftDocument struct {
	SessionID         string `bson:"_id"`
	models.SavedDraft `bson:",inline"`
}

// MongoDraftRepo implements DraftRepository using MongoDB.
type MongoDraftRepo struct {
	coll *mongo.Collection
}

// NewMongoDraftRepo creates a repository on the "drafts" collection of db.
func NewMongoDraftRepo(db *mongo.Database) (*MongoDraftRepo, error) {
	repo := &MongoDraftRepo{coll: db.Collection("drafts")}
	if err := repo.ensureIndexes(); err != nil {
		return nil, err
	}
	return repo, nil
}

// newContext derives a context with the given timeout.
func newContext(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}

// ensureIndexes creates the index used by PurgeBefore.
func (r *MongoDraftRepo) ensureIndexes() error {
	ctx, cancel := newContext(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "lastSaved", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoDraftRepo) Load(ctx context.Context, sessionID string) (*models.SavedDraft, error) {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	var doc draftDocument
	err := r.coll.FindOne(ctx, bson.M{"_id": sessionID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft %s: %w", sessionID, err)
	}
	return &doc.SavedDraft, nil
}

func (r *MongoDraftRepo) Save(ctx context.Context, sessionID string, draft models.SavedDraft) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	doc := draftDocument{SessionID: sessionID, SavedDraft: draft}
	opts := options.Replace().SetUpsert(true)
	if _, err := r.coll.ReplaceOne(ctx, bson.M{"_id": sessionID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save draft %s: %w", sessionID, err)
	}
	return nil
}

func (r *MongoDraftRepo) Delete(ctx context.Context, sessionID string) error {
	ctx, cancel := newContext(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": sessionID}); err != nil {
		return fmt.Errorf("failed to delete draft %s: %w", sessionID, err)
	}
	return nil
}

func (r *MongoDraftRepo) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ctx, cancel := newContext(ctx, 30*time.Second)
	defer cancel()

	res, err := r.coll.DeleteMany(ctx, bson.M{"lastSaved": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to purge drafts: %w", err)
	}
	return res.DeletedCount, nil
}
