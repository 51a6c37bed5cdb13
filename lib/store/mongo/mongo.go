// Package mongo implements the store interface for MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	mgo "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/names"
	"github.com/CoinHippo-Labs/axelarscan-ui-sub006/lib/store"
)

// Databases holding the records and the pending sets, one collection per provider.
const (
	RecordsDB = "names"
	PendingDB = "pending"
)

// Mongo implements a connection to a MongoDB database.
type Mongo struct {
	c *mgo.Client
}

// New returns a Mongo client connection to the specified MongoDB database uri.
func New(uri string) (*Mongo, error) {
	// get a client
	c, err := mgo.NewClient(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongo DB in %s: %w", uri, err)
	}
	// connect client
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:gomnd // 5 seconds timeout
	defer cancel()

	if err = c.Connect(ctx); err != nil {
		return nil, fmt.Errorf("error connecting to mongo DB: %w", err)
	}

	return &Mongo{c: c}, nil
}

// CloseMongo will close a database connection. Must be called at termination time.
func (m *Mongo) CloseMongo() error {
	return m.c.Disconnect(context.Background())
}

// addrFilter matches the given addresses, or every document when addrs is empty.
func addrFilter(addrs []string) bson.M {
	if len(addrs) == 0 {
		return bson.M{}
	}

	return bson.M{"_id": bson.M{"$in": names.Normalize(addrs)}}
}

// GetRecords returns the stored records of provider for the given addresses, or all of them when addrs is empty.
func (m *Mongo) GetRecords(ctx context.Context, provider string, addrs []string) ([]names.Domain, error) {
	cur, err := m.c.Database(RecordsDB).Collection(provider).Find(ctx, addrFilter(addrs))
	if err != nil {
		return nil, fmt.Errorf("error getting records: %w", err)
	}
	defer cur.Close(ctx)

	recs := []names.Domain{}
	if err = cur.All(ctx, &recs); err != nil {
		return nil, fmt.Errorf("error decoding records: %w", err)
	}

	return recs, nil
}

// SaveRecords upserts the records, keyed by address. Placeholders are skipped.
func (m *Mongo) SaveRecords(ctx context.Context, provider string, recs []names.Domain) error {
	recs = store.Fresh(recs)
	if len(recs) == 0 {
		return nil
	}

	models := make([]mgo.WriteModel, 0, len(recs))
	for _, r := range recs {
		r.Provider = provider
		models = append(models, mgo.NewReplaceOneModel().
			SetFilter(bson.M{"_id": names.Key(r.Address)}).
			SetReplacement(r).
			SetUpsert(true))
	}

	_, err := m.c.Database(RecordsDB).Collection(provider).BulkWrite(ctx, models, options.BulkWrite().SetOrdered(false))

	return err
}

// DeleteRecords deletes the records of the given addresses and returns how many were removed.
func (m *Mongo) DeleteRecords(ctx context.Context, provider string, addrs []string) (int64, error) {
	if len(addrs) == 0 {
		return 0, nil
	}

	res, err := m.c.Database(RecordsDB).Collection(provider).DeleteMany(ctx, addrFilter(addrs))
	if err != nil {
		return 0, err
	}

	if res.DeletedCount == 0 {
		return 0, store.ErrDataNotFound
	}

	return res.DeletedCount, nil
}

// LoadPending loads from db the pending set for the indicated provider.
func (m *Mongo) LoadPending(ctx context.Context, provider string) (p store.Pending, err error) {
	res := m.c.Database(PendingDB).Collection(provider).FindOne(ctx, bson.D{})
	if err = res.Decode(&p); errors.Is(err, mgo.ErrNoDocuments) {
		err = store.ErrDataNotFound
	}

	return
}

// SavePending saves to db the pending set for the indicated provider.
func (m *Mongo) SavePending(ctx context.Context, provider string, p store.Pending) (err error) {
	_, err = m.c.Database(PendingDB).Collection(provider).UpdateOne(ctx,
		bson.D{}, // filter
		bson.D{ // update
			{
				Key: "$set", Value: bson.D{
					{Key: "addrs", Value: p.Addrs},
					{Key: "rounds", Value: p.Rounds},
					{Key: "resolved", Value: p.Resolved},
					{Key: "updated", Value: p.Updated},
				},
			},
		},
		options.Update().SetUpsert(true))

	return
}

// DeletePending deletes from db the pending set for the indicated provider.
func (m *Mongo) DeletePending(ctx context.Context, provider string) (err error) {
	_, err = m.c.Database(PendingDB).Collection(provider).DeleteOne(ctx, bson.D{}, options.Delete())

	return
}
