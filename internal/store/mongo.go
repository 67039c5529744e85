package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"raffledash/internal/models"
)

// MongoStore reads from the raffles and rafflebuyers collections of one database.
// One client is shared by all requests.
type MongoStore struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects and pings before returning
func OpenMongo(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &MongoStore{client: client, db: client.Database(database)}, nil
}

// NewMongoStore wraps an already connected database. Close is a no-op
// because the caller owns the client.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) ListRaffles(ctx context.Context) ([]models.Raffle, error) {
	cur, err := s.db.Collection(RafflesCollection).Find(ctx, bson.D{})
	if err != nil {
		return nil, fetchErr("raffles", err)
	}

	var docs []raffleDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fetchErr("raffles", err)
	}

	raffles := make([]models.Raffle, 0, len(docs))
	for _, d := range docs {
		raffles = append(raffles, d.raffle())
	}
	return raffles, nil
}

func (s *MongoStore) ListBuyers(ctx context.Context, raffleID string) ([]models.Buyer, error) {
	cur, err := s.db.Collection(BuyersCollection).Find(ctx, buyerFilter(raffleID))
	if err != nil {
		return nil, fetchErr("rafflebuyers", err)
	}

	var docs []buyerDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fetchErr("rafflebuyers", err)
	}

	buyers := make([]models.Buyer, 0, len(docs))
	for _, d := range docs {
		buyers = append(buyers, d.buyer())
	}
	return buyers, nil
}

func (s *MongoStore) Close() error {
	if s.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

// buyerFilter matches raffleId stored either as a string or as an ObjectID
func buyerFilter(raffleID string) bson.D {
	oid, err := primitive.ObjectIDFromHex(raffleID)
	if err != nil {
		return bson.D{{Key: "raffleId", Value: raffleID}}
	}
	return bson.D{{Key: "raffleId", Value: bson.D{{Key: "$in", Value: bson.A{raffleID, oid}}}}}
}
