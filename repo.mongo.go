package main

import (
	"context"
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

type mongoBookStorage struct {
	logger     *zap.Logger
	collection *mongo.Collection
}

// GetMongoDatabase connects to the mongodb server, selects the configured
// database and pings it. The database handle is only returned once the
// server answered so the app never starts serving with a dead storage.
func GetMongoDatabase(ctx context.Context, config *MongoDBConfig) (*mongo.Database, error) {
	opts := options.Client().ApplyURI(config.URI).SetAppName(config.AppName)
	if err := opts.Validate(); err != nil {
		return nil, &ConnectionError{Driver: MongoDBDriver, Err: fmt.Errorf("invalid connection string: %w", err)}
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, &ConnectionError{Driver: MongoDBDriver, Err: err}
	}

	db := client.Database(config.Database)
	if err = db.RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &ConnectionError{Driver: MongoDBDriver, Err: fmt.Errorf("test connection failed: %w", err)}
	}
	return db, nil
}

// NewMongoBookStorage provides an instance of mongodb-based book storage.
func NewMongoBookStorage(logger *zap.Logger, db *mongo.Database, collection string) BookStorage {
	return &mongoBookStorage{
		logger:     logger,
		collection: db.Collection(collection),
	}
}

// Add inserts a new book document and returns the id assigned to it.
func (ms *mongoBookStorage) Add(ctx context.Context, book Book) (primitive.ObjectID, error) {
	book.ID = primitive.NilObjectID
	result, err := ms.collection.InsertOne(ctx, book)
	if mongo.IsDuplicateKeyError(err) {
		return primitive.NilObjectID, ErrBookNameExists
	}
	if err != nil {
		return primitive.NilObjectID, pkgerrors.WithStack(err)
	}
	id, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return primitive.NilObjectID, fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	return id, nil
}

// GetOne retrieves a book document based on its ID.
func (ms *mongoBookStorage) GetOne(ctx context.Context, id primitive.ObjectID) (Book, error) {
	var book Book
	err := ms.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Book{}, ErrBookNotFound
	}
	if err != nil {
		return Book{}, pkgerrors.WithStack(err)
	}
	return book, nil
}

// ExistsByName reports whether a book document with this exact name exists.
func (ms *mongoBookStorage) ExistsByName(ctx context.Context, name string) (bool, error) {
	err := ms.collection.FindOne(ctx, bson.M{"name": name}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, pkgerrors.WithStack(err)
	}
	return true, nil
}

// Update sets the mutable fields of an existing book document.
func (ms *mongoBookStorage) Update(ctx context.Context, id primitive.ObjectID, book Book) error {
	update := bson.M{
		"$set": bson.M{
			"name":   book.Name,
			"author": book.Author,
			"year":   book.Year,
		},
	}
	result, err := ms.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if mongo.IsDuplicateKeyError(err) {
		return ErrBookNameExists
	}
	if err != nil {
		return pkgerrors.WithStack(err)
	}
	if result.MatchedCount == 0 {
		return ErrBookNotFound
	}
	ms.logger.Debug("storage: book updated",
		zap.String("book.id", id.Hex()),
		zap.Int64("modified", result.ModifiedCount),
	)
	return nil
}

// Delete removes a book document based on its ID.
func (ms *mongoBookStorage) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := ms.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return pkgerrors.WithStack(err)
	}
	if result.DeletedCount == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetAll retrieves a list of all book documents of the collection.
func (ms *mongoBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	cursor, err := ms.collection.Find(ctx, bson.D{})
	if err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	books := []Book{}
	if err = cursor.All(ctx, &books); err != nil {
		return nil, pkgerrors.WithStack(err)
	}
	return books, nil
}

// Close disconnects the underlying client.
func (ms *mongoBookStorage) Close(ctx context.Context) error {
	return ms.collection.Database().Client().Disconnect(ctx)
}
