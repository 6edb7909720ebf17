// Package store is the MongoDB persistence layer: user accounts, one-time
// verification codes, and classification feedback.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/alxdev/echocheck-backend/pkg/logger"
)

var (
	// ErrNotFound is returned when a document does not exist or a code is
	// invalid, already used, or expired.
	ErrNotFound = errors.New("store: not found")
	// ErrDuplicate is returned when a unique index rejects an insert.
	ErrDuplicate = errors.New("store: duplicate")
)

// Config holds the MongoDB connection settings.
type Config struct {
	URI      string
	Database string
}

// Manager owns the client and hands out collection-scoped stores. The API
// stays up when MongoDB is unreachable at boot; queries fail at call time
// and the health endpoint reports the database as down.
type Manager struct {
	client *mongo.Client
	db     *mongo.Database
	logger logger.Logger
}

func Connect(ctx context.Context, cfg Config, log logger.Logger) (*Manager, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongo client: %w", err)
	}

	m := &Manager{
		client: client,
		db:     client.Database(cfg.Database),
		logger: log,
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		log.Warn("mongodb unreachable, continuing without database",
			logger.String("database", cfg.Database),
			logger.Error(err),
		)
	} else {
		log.Info("connected to mongodb", logger.String("database", cfg.Database))
	}

	return m, nil
}

func (m *Manager) Database() *mongo.Database { return m.db }

// Connected pings the server with a short deadline.
func (m *Manager) Connected(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.client.Ping(ctx, readpref.Primary()) == nil
}

func (m *Manager) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates all collection indexes concurrently.
func (m *Manager) EnsureIndexes(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return ensureUserIndexes(ctx, m.db)
	})
	g.Go(func() error {
		return ensureCodeIndexes(ctx, m.db)
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to ensure indexes: %w", err)
	}
	m.logger.Info("mongodb indexes ensured")
	return nil
}
