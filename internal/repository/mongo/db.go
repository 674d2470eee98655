package mongo

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Default connection timeout
const defaultTimeout = 10 * time.Second

// ConnectDB establishes a connection to MongoDB using the provided URI and
// verifies it with a ping against the primary.
func ConnectDB(uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// The initial connect can succeed against an unresponsive server.
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()

	if err = client.Ping(pingCtx, readpref.Primary()); err != nil {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		_ = client.Disconnect(disconnectCtx)
		return nil, err
	}

	return client, nil
}

// DisconnectDB gracefully disconnects the MongoDB client.
func DisconnectDB(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes of every collection the app uses.
// Failures are logged and do not stop startup.
func EnsureIndexes(ctx context.Context, db *mongo.Database) {
	EnsureProfileIndexes(ctx, db.Collection(profileCollectionName))
	EnsureExerciseIndexes(ctx, db)
	EnsureReferenceIndexes(ctx, db.Collection(GlobalReferenceCollection))
	EnsureReferenceIndexes(ctx, db.Collection(SavedReferenceCollection))
	EnsurePlanIndexes(ctx, db.Collection(planCollectionName))
	EnsurePlanHierarchyIndexes(ctx, db)
	EnsureSessionLogIndexes(ctx, db)
	EnsureGoalIndexes(ctx, db)
	EnsureMeasurementIndexes(ctx, db.Collection(measurementCollectionName))
	EnsureTeamIndexes(ctx, db)
	log.Info("index creation process completed")
}

func createIndexes(ctx context.Context, collection *mongo.Collection, indexes []mongo.IndexModel) {
	if _, err := collection.Indexes().CreateMany(ctx, indexes); err != nil {
		log.Warnf("failed to create indexes for collection %s: %s", collection.Name(), err)
	}
}
