// Package mongo reads accounts and transaction logs from MongoDB. The
// layout is the users/logs pair of the Finances database.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/log"
	"budgetbuddy/internal/store"
)

const (
	DefaultDatabase   = "Finances"
	UsersCollection   = "users"
	LogsCollection    = "logs"
	defaultConnectTTL = 10 * time.Second
)

type Store struct {
	client *mongo.Client
	users  *mongo.Collection
	logs   *mongo.Collection
	logger *log.Logger
}

// Connect dials uri and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	if database == "" {
		database = DefaultDatabase
	}
	ctx, cancel := context.WithTimeout(ctx, defaultConnectTTL)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetAppName("budgetbuddy"))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	db := client.Database(database)
	return &Store{
		client: client,
		users:  db.Collection(UsersCollection),
		logs:   db.Collection(LogsCollection),
		logger: log.Default(log.ComponentStore).With(log.FieldBackend, "mongo"),
	}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) FindAccount(ctx context.Context, user string) (core.Account, error) {
	var doc userDoc
	err := s.users.FindOne(ctx, bson.D{{Key: "username", Value: user}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return core.Account{}, core.ErrAccountNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("find user: %w", err)
	}
	acct, err := doc.account()
	if err != nil {
		return core.Account{}, fmt.Errorf("user %q: %w", user, err)
	}
	return acct, nil
}

func (s *Store) ListTransactions(ctx context.Context, q store.Query) ([]core.Record, error) {
	cur, err := s.logs.Find(ctx, listFilter(q))
	if err != nil {
		return nil, fmt.Errorf("find logs: %w", err)
	}
	defer cur.Close(ctx)

	var out []core.Record
	for cur.Next(ctx) {
		var doc logDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode log: %w", err)
		}
		r, err := doc.record()
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping unreadable log document",
				"id", doc.ID.Hex(), log.FieldError, err.Error(), "error_type", log.ErrorTypeDataQuality)
			continue
		}
		out = append(out, r)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate logs: %w", err)
	}
	return out, nil
}

// listFilter pushes every non-empty query field down to the server.
func listFilter(q store.Query) bson.D {
	filter := bson.D{}
	if q.User != "" {
		filter = append(filter, bson.E{Key: "user", Value: q.User})
	}
	if q.Type != "" {
		filter = append(filter, bson.E{Key: "type", Value: string(q.Type)})
	}
	if len(q.Categories) > 0 {
		filter = append(filter, bson.E{Key: "category", Value: bson.D{{Key: "$in", Value: q.Categories}}})
	}
	return filter
}
