// Package mongo stores users, appointments and reports as documents.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"diagnostic-portal-api/internal/model"
	"diagnostic-portal-api/internal/store"
)

type Store struct {
	client       *mongo.Client
	db           *mongo.Database
	users        *mongo.Collection
	Appointments *Owned[model.Appointment]
	Reports      *Owned[model.Report]
}

// Open connects and pings. Close disconnects.
func Open(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	db := client.Database(database)
	return &Store{
		client:       client,
		db:           db,
		users:        db.Collection("users"),
		Appointments: newOwned(db, store.Appointments),
		Reports:      newOwned(db, store.Reports),
	}, nil
}

func (s *Store) Close(ctx context.Context) error { return s.client.Disconnect(ctx) }

func (s *Store) Ping(ctx context.Context) error { return s.client.Ping(ctx, nil) }

// EnsureIndexes creates the uniqueness and owner/sort indexes.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "mobile", Value: 1}}, Options: options.Index().SetUnique(true)},
		// email is omitted when empty, sparse keeps absent values out of the unique index
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}
	if err := s.Appointments.ensureIndex(ctx); err != nil {
		return err
	}
	return s.Reports.ensureIndex(ctx)
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	_, err := s.users.InsertOne(ctx, u)
	return mapErr(err)
}

func (s *Store) UserByID(ctx context.Context, id string) (*model.User, error) {
	return s.userWhere(ctx, bson.D{{Key: "_id", Value: id}})
}

func (s *Store) UserByMobile(ctx context.Context, mobile string) (*model.User, error) {
	return s.userWhere(ctx, bson.D{{Key: "mobile", Value: mobile}})
}

func (s *Store) userWhere(ctx context.Context, filter bson.D) (*model.User, error) {
	u := &model.User{}
	if err := s.users.FindOne(ctx, filter).Decode(u); err != nil {
		return nil, mapErr(err)
	}
	return u, nil
}

// Owned implements store.Owned over one collection.
type Owned[T any] struct {
	coll *mongo.Collection
	kind store.Kind[T]
	sort bson.D
}

func newOwned[T any](db *mongo.Database, kind store.Kind[T]) *Owned[T] {
	sort := bson.D{}
	for _, f := range kind.Order {
		sort = append(sort, bson.E{Key: f, Value: -1})
	}
	return &Owned[T]{coll: db.Collection(kind.Name), kind: kind, sort: sort}
}

func (o *Owned[T]) ensureIndex(ctx context.Context) error {
	keys := append(bson.D{{Key: "user_id", Value: 1}}, o.sort...)
	if _, err := o.coll.Indexes().CreateOne(ctx, mongo.IndexModel{Keys: keys}); err != nil {
		return fmt.Errorf("%s indexes: %w", o.kind.Name, err)
	}
	return nil
}

func owned(id, owner string) bson.D {
	return bson.D{{Key: "_id", Value: id}, {Key: "user_id", Value: owner}}
}

func (o *Owned[T]) Create(ctx context.Context, rec *T) error {
	_, err := o.coll.InsertOne(ctx, rec)
	return mapErr(err)
}

func (o *Owned[T]) List(ctx context.Context, owner string) ([]T, error) {
	cur, err := o.coll.Find(ctx, bson.D{{Key: "user_id", Value: owner}}, options.Find().SetSort(o.sort))
	if err != nil {
		return nil, err
	}
	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (o *Owned[T]) Get(ctx context.Context, id, owner string) (*T, error) {
	var rec T
	if err := o.coll.FindOne(ctx, owned(id, owner)).Decode(&rec); err != nil {
		return nil, mapErr(err)
	}
	return &rec, nil
}

func (o *Owned[T]) Update(ctx context.Context, id, owner string, p store.Patch[T]) (*T, error) {
	fields := p.Fields()
	if len(fields) == 0 {
		return o.Get(ctx, id, owner)
	}
	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	var rec T
	err := o.coll.FindOneAndUpdate(ctx, owned(id, owner),
		bson.D{{Key: "$set", Value: set}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&rec)
	if err != nil {
		return nil, mapErr(err)
	}
	return &rec, nil
}

func (o *Owned[T]) Delete(ctx context.Context, id, owner string) error {
	res, err := o.coll.DeleteOne(ctx, owned(id, owner))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return store.ErrNotFound
	case mongo.IsDuplicateKeyError(err):
		return store.ErrConflict
	}
	return err
}
