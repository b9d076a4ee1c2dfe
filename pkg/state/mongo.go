package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	mongoImages = "images"
	mongoMeta   = "meta"
	mongoMetaID = "state"
)

// MongoStore keeps one document per image in the "images" collection and
// the update time in "meta". Per-image documents keep each document far
// below MongoDB's size limit regardless of the number of images.
type MongoStore struct {
	client *mongo.Client
	images *mongo.Collection
	meta   *mongo.Collection
}

type mongoMetaDoc struct {
	ID        string    `bson:"_id"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// NewMongoStore connects to uri and uses the given database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	db := client.Database(database)
	return &MongoStore{
		client: client,
		images: db.Collection(mongoImages),
		meta:   db.Collection(mongoMeta),
	}, nil
}

func (s *MongoStore) Load(ctx context.Context) (*State, error) {
	cur, err := s.images.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("query images: %w", err)
	}
	st := &State{}
	if err := cur.All(ctx, &st.Images); err != nil {
		return nil, fmt.Errorf("read images: %w", err)
	}

	var meta mongoMetaDoc
	err = s.meta.FindOne(ctx, bson.M{"_id": mongoMetaID}).Decode(&meta)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
	case err != nil:
		return nil, fmt.Errorf("read state meta: %w", err)
	default:
		st.UpdatedAt = meta.UpdatedAt
	}
	st.normalize()
	return st, nil
}

// Save upserts every image and removes images no longer in st.
func (s *MongoStore) Save(ctx context.Context, st *State) error {
	st.UpdatedAt = time.Now().UTC()

	names := make([]string, 0, len(st.Images))
	models := make([]mongo.WriteModel, 0, len(st.Images))
	for _, e := range st.Images {
		names = append(names, e.Name)
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": e.Name}).
			SetReplacement(e).
			SetUpsert(true))
	}
	if len(models) > 0 {
		if _, err := s.images.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false)); err != nil {
			return fmt.Errorf("write images: %w", err)
		}
	}
	if _, err := s.images.DeleteMany(ctx, bson.M{"_id": bson.M{"$nin": names}}); err != nil {
		return fmt.Errorf("prune images: %w", err)
	}

	meta := mongoMetaDoc{ID: mongoMetaID, UpdatedAt: st.UpdatedAt}
	_, err := s.meta.ReplaceOne(ctx, bson.M{"_id": mongoMetaID}, meta, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("write state meta: %w", err)
	}
	return nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
