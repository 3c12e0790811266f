package source

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/attacktree/pkg/cache"
	apperrors "github.com/matzehuels/attacktree/pkg/errors"
)

// Default MongoDB names.
const (
	DefaultMongoDatabase   = "attacktree"
	DefaultMongoCollection = "assessments"
)

// MongoOptions configures a MongoSource.
type MongoOptions struct {
	// URI is the connection string (e.g., "mongodb://localhost:27017").
	URI string
	// Database defaults to DefaultMongoDatabase.
	Database string
	// Collection defaults to DefaultMongoCollection.
	Collection string
	// ConnectTimeout bounds the initial ping.
	ConnectTimeout time.Duration
}

// MongoSource reads assessments from a collection whose documents are keyed
// by assessment id:
//
//	{"_id": "<uuid>", "timestamp": "...", "result": {"attack_tree": {"nodes": [...]}}}
type MongoSource struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoSource connects to MongoDB and verifies the connection.
func NewMongoSource(ctx context.Context, opts MongoOptions) (*MongoSource, error) {
	if opts.URI == "" {
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "mongo uri is required")
	}
	if opts.Database == "" {
		opts.Database = DefaultMongoDatabase
	}
	if opts.Collection == "" {
		opts.Collection = DefaultMongoCollection
	}
	if opts.ConnectTimeout == 0 {
		opts.ConnectTimeout = 10 * time.Second
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI).SetConnectTimeout(opts.ConnectTimeout))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "connect to mongo")
	}

	pingCtx, cancel := context.WithTimeout(ctx, opts.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "ping mongo")
	}

	return &MongoSource{
		client: client,
		coll:   client.Database(opts.Database).Collection(opts.Collection),
	}, nil
}

// NewMongoSourceFromCollection wraps an existing collection. Close is a
// no-op for sources built this way.
func NewMongoSourceFromCollection(coll *mongo.Collection) *MongoSource {
	return &MongoSource{coll: coll}
}

// Name returns "mongo".
func (s *MongoSource) Name() string { return "mongo" }

// Fetch loads the assessment document and returns it as relaxed extended
// JSON, which the normalizer reads like any other envelope.
func (s *MongoSource) Fetch(ctx context.Context, id string) ([]byte, error) {
	if err := apperrors.ValidateAssessmentID(id); err != nil {
		return nil, err
	}

	var raw bson.Raw
	err := cache.RetryWithBackoff(ctx, func() error {
		var err error
		raw, err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Raw()
		if err != nil && retryable(err) {
			return cache.Retryable(err)
		}
		return err
	})
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.Wrap(apperrors.ErrCodeNotFound, ErrNotFound, "assessment %s has no attack tree", id)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "find assessment %s", id)
	}

	data, err := bson.MarshalExtJSON(raw, false, false)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode assessment %s", id)
	}
	return data, nil
}

// List returns the ids and timestamps of every document, newest first.
func (s *MongoSource) List(ctx context.Context) ([]Assessment, error) {
	opts := options.Find().SetProjection(bson.D{{Key: "_id", Value: 1}, {Key: "timestamp", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "list assessments")
	}
	defer cur.Close(ctx)

	out := []Assessment{}
	for cur.Next(ctx) {
		var doc struct {
			ID        string `bson:"_id"`
			Timestamp any    `bson:"timestamp"`
		}
		if err := cur.Decode(&doc); err != nil {
			continue
		}
		out = append(out, Assessment{ID: doc.ID, UpdatedAt: documentTime(doc.Timestamp)})
	}
	if err := cur.Err(); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeNetwork, err, "list assessments")
	}

	sortNewestFirst(out)
	return out, nil
}

// Close disconnects the client if the source owns one.
func (s *MongoSource) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// documentTime accepts BSON dates and ISO 8601 strings.
func documentTime(v any) time.Time {
	switch t := v.(type) {
	case string:
		return parseTimestamp(t)
	case interface{ Time() time.Time }:
		return t.Time().UTC()
	}
	return time.Time{}
}

func retryable(err error) bool {
	var cmdErr mongo.CommandError
	if errors.As(err, &cmdErr) && cmdErr.HasErrorLabel("RetryableReadError") {
		return true
	}
	return mongo.IsNetworkError(err) || mongo.IsTimeout(err)
}

// Ensure MongoSource implements Source.
var _ Source = (*MongoSource)(nil)

func (s *MongoSource) String() string {
	return fmt.Sprintf("mongo(%s.%s)", s.coll.Database().Name(), s.coll.Name())
}
