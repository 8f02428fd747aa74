package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// HBooks is the redis hash holding books by id. Each name owns a set of
// book ids under the SBookNamePrefix key since names may be shared after updates.
const (
	HBooks          string = "books"
	SBookNamePrefix string = "books:name:"
)

func bookNameKey(name string) string {
	return SBookNamePrefix + name
}

type redisBookStorage struct {
	logger *zap.Logger
	client *redis.Client
}

// NewRedisBookStorage provides an instance of redis-based book storage.
func NewRedisBookStorage(logger *zap.Logger, client *redis.Client) BookStorage {
	return &redisBookStorage{
		logger: logger,
		client: client,
	}
}

// GetRedisClient provides a ready to use redis client.
func GetRedisClient(ctx context.Context, config *RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        fmt.Sprintf("%s:%s", config.Host, config.Port),
		DialTimeout: config.DialTimeout,
		PoolSize:    config.PoolSize,
		Password:    config.Password,
		Username:    config.Username,
		DB:          config.DatabaseIndex,
	})

	// test connection.
	if pong, err := client.Ping(ctx).Result(); pong != "PONG" || err != nil {
		_ = client.Close()
		return nil, &ConnectionError{Driver: RedisDriver, Err: fmt.Errorf("test connection failed: %v", err)}
	}
	return client, nil
}

// Add inserts a new book record and indexes its name.
func (rs *redisBookStorage) Add(ctx context.Context, book Book) (primitive.ObjectID, error) {
	book.ID = primitive.NewObjectID()
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id := book.ID.Hex()
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, HBooks, id, bookBytes)
		pipe.SAdd(ctx, bookNameKey(book.Name), id)
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return book.ID, nil
}

// GetOne retrieves a book record based on its ID.
func (rs *redisBookStorage) GetOne(ctx context.Context, id primitive.ObjectID) (Book, error) {
	var book Book
	bookJSONString, err := rs.client.HGet(ctx, HBooks, id.Hex()).Result()
	if errors.Is(err, redis.Nil) {
		return book, ErrBookNotFound
	}
	if err != nil {
		return book, err
	}
	err = json.Unmarshal([]byte(bookJSONString), &book)
	return book, err
}

// ExistsByName reports whether at least one book id is indexed under the name.
// Redis drops a set once its last member is removed.
func (rs *redisBookStorage) ExistsByName(ctx context.Context, name string) (bool, error) {
	n, err := rs.client.Exists(ctx, bookNameKey(name)).Result()
	return n > 0, err
}

// Update replaces the mutable fields of an existing book and moves its id to the new name set.
func (rs *redisBookStorage) Update(ctx context.Context, id primitive.ObjectID, book Book) error {
	current, err := rs.GetOne(ctx, id)
	if err != nil {
		return err
	}
	book.ID = id
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return err
	}
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		if current.Name != book.Name {
			pipe.SRem(ctx, bookNameKey(current.Name), id.Hex())
		}
		pipe.HSet(ctx, HBooks, id.Hex(), bookBytes)
		pipe.SAdd(ctx, bookNameKey(book.Name), id.Hex())
		return nil
	})
	return err
}

// Delete removes a book record based on its ID and drops its id from the name set.
func (rs *redisBookStorage) Delete(ctx context.Context, id primitive.ObjectID) error {
	current, err := rs.GetOne(ctx, id)
	if err != nil {
		return err
	}
	var deleted *redis.IntCmd
	_, err = rs.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.HDel(ctx, HBooks, id.Hex())
		pipe.SRem(ctx, bookNameKey(current.Name), id.Hex())
		return nil
	})
	if err != nil {
		return err
	}
	if deleted.Val() == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetAll retrieves a list of all books stored in the redis database.
func (rs *redisBookStorage) GetAll(ctx context.Context) ([]Book, error) {
	values, err := rs.client.HVals(ctx, HBooks).Result()
	if err != nil {
		return nil, err
	}
	books := []Book{}
	for _, bookJSONString := range values {
		var book Book
		if err = json.Unmarshal([]byte(bookJSONString), &book); err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	return books, nil
}

// Close closes the redis client.
func (rs *redisBookStorage) Close(_ context.Context) error {
	return rs.client.Close()
}
