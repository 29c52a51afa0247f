package submissionsrepo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/faciam-dev/gforms/pkg/formschema"
)

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	Client     *mongo.Client
	Database   string
	Collection string
}

// NewMongoStore creates a MongoStore with the default collection name.
func NewMongoStore(cli *mongo.Client, database, prefix string) *MongoStore {
	return &MongoStore{Client: cli, Database: database, Collection: prefix + "form_submissions"}
}

func (m *MongoStore) coll() *mongo.Collection {
	return m.Client.Database(m.Database).Collection(m.Collection)
}

type doc struct {
	ID          string         `bson:"_id"`
	TenantID    string         `bson:"tenant_id"`
	SchemaID    string         `bson:"form_schema_id"`
	Data        map[string]any `bson:"data"`
	Revision    int64          `bson:"revision"`
	SubmittedBy string         `bson:"submitted_by,omitempty"`
	CreatedAt   time.Time      `bson:"created_at"`
	UpdatedAt   time.Time      `bson:"updated_at"`
}

func (d doc) toSubmission() formschema.Submission {
	return formschema.Submission{
		ID:          d.ID,
		TenantID:    d.TenantID,
		SchemaID:    d.SchemaID,
		Data:        d.Data,
		Revision:    d.Revision,
		SubmittedBy: d.SubmittedBy,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func (m *MongoStore) Insert(ctx context.Context, sub *formschema.Submission) error {
	now := time.Now().UTC()
	sub.CreatedAt, sub.UpdatedAt = now, now
	sub.Revision = 1
	_, err := m.coll().InsertOne(ctx, doc{
		ID:          sub.ID,
		TenantID:    sub.TenantID,
		SchemaID:    sub.SchemaID,
		Data:        sub.Data,
		Revision:    sub.Revision,
		SubmittedBy: sub.SubmittedBy,
		CreatedAt:   sub.CreatedAt,
		UpdatedAt:   sub.UpdatedAt,
	})
	return err
}

func (m *MongoStore) Get(ctx context.Context, tenant, id string) (formschema.Submission, error) {
	var d doc
	err := m.coll().FindOne(ctx, bson.M{"_id": id, "tenant_id": tenant}).Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return formschema.Submission{}, ErrNotFound
	}
	if err != nil {
		return formschema.Submission{}, err
	}
	return d.toSubmission(), nil
}

func (m *MongoStore) ListBySchema(ctx context.Context, tenant, schemaID string) ([]formschema.Submission, error) {
	cur, err := m.coll().Find(ctx,
		bson.M{"tenant_id": tenant, "form_schema_id": schemaID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []formschema.Submission
	for cur.Next(ctx) {
		var d doc
		if err := cur.Decode(&d); err != nil {
			return nil, err
		}
		out = append(out, d.toSubmission())
	}
	return out, cur.Err()
}

func (m *MongoStore) Update(ctx context.Context, tenant, id string, data map[string]any, expectedRev int64) (formschema.Submission, error) {
	res := m.coll().FindOneAndUpdate(ctx,
		bson.M{"_id": id, "tenant_id": tenant, "revision": expectedRev},
		bson.M{
			"$set": bson.M{"data": data, "updated_at": time.Now().UTC()},
			"$inc": bson.M{"revision": 1},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)
	var d doc
	err := res.Decode(&d)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, err := m.Get(ctx, tenant, id); errors.Is(err, ErrNotFound) {
			return formschema.Submission{}, ErrNotFound
		}
		return formschema.Submission{}, ErrConflict
	}
	if err != nil {
		return formschema.Submission{}, err
	}
	return d.toSubmission(), nil
}

func (m *MongoStore) Delete(ctx context.Context, tenant, id string) error {
	res, err := m.coll().DeleteOne(ctx, bson.M{"_id": id, "tenant_id": tenant})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoStore) DeleteBySchema(ctx context.Context, tenant, schemaID string) (int64, error) {
	res, err := m.coll().DeleteMany(ctx, bson.M{"tenant_id": tenant, "form_schema_id": schemaID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func (m *MongoStore) CountBySchema(ctx context.Context, tenant, schemaID string) (int64, error) {
	return m.coll().CountDocuments(ctx, bson.M{"tenant_id": tenant, "form_schema_id": schemaID})
}
