package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/boltdb/bolt"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type boltBookStorage struct {
	logger *zap.Logger
	client *bolt.DB
	config *BoltDBConfig
}

// GetBoltDBClient setup the database and the bucket then provides a ready to use client.
func GetBoltDBClient(config *BoltDBConfig) (*bolt.DB, error) {
	db, err := bolt.Open(config.FilePath, 0o600, &bolt.Options{Timeout: config.Timeout})
	if err != nil {
		return nil, &ConnectionError{Driver: BoltDBDriver, Err: fmt.Errorf("failed to open the database, %v", err)}
	}
	err = db.Update(func(tx *bolt.Tx) error {
		if _, errB := tx.CreateBucketIfNotExists([]byte(config.BucketName)); errB != nil {
			return fmt.Errorf("failed to create %s bucket: %v", config.BucketName, errB)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, &ConnectionError{Driver: BoltDBDriver, Err: fmt.Errorf("failed to set up bucket: %v", err)}
	}
	return db, nil
}

// NewBoltBookStorage provides an instance of bolt-based book storage.
// Books are json encoded and keyed by the hex form of their id.
func NewBoltBookStorage(logger *zap.Logger, boltConfig *BoltDBConfig, client *bolt.DB) BookStorage {
	return &boltBookStorage{
		logger: logger,
		client: client,
		config: boltConfig,
	}
}

// Close shuts down the bolt-based book storage.
func (bs *boltBookStorage) Close(_ context.Context) error {
	return bs.client.Close()
}

// Add inserts a new book record into boltdb store under a fresh id.
func (bs *boltBookStorage) Add(_ context.Context, book Book) (primitive.ObjectID, error) {
	book.ID = primitive.NewObjectID()
	bookBytes, err := json.Marshal(book)
	if err != nil {
		return primitive.NilObjectID, err
	}
	err = bs.client.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bs.config.BucketName)).Put([]byte(book.ID.Hex()), bookBytes)
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return book.ID, nil
}

// GetOne retrieves a book record based on its ID from boltdb store.
func (bs *boltBookStorage) GetOne(_ context.Context, id primitive.ObjectID) (Book, error) {
	var book Book
	err := bs.client.View(func(tx *bolt.Tx) error {
		result := tx.Bucket([]byte(bs.config.BucketName)).Get([]byte(id.Hex()))
		if result == nil {
			return ErrBookNotFound
		}
		return json.Unmarshal(result, &book)
	})
	if err != nil {
		return Book{}, err
	}
	return book, nil
}

// ExistsByName scans the bucket for a book with this exact name.
func (bs *boltBookStorage) ExistsByName(_ context.Context, name string) (bool, error) {
	found := false
	err := bs.client.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bs.config.BucketName)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var book Book
			if err := json.Unmarshal(v, &book); err != nil {
				return err
			}
			if book.Name == name {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// Update replaces the mutable fields of an existing book record.
func (bs *boltBookStorage) Update(_ context.Context, id primitive.ObjectID, book Book) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bs.config.BucketName))
		key := []byte(id.Hex())
		if bucket.Get(key) == nil {
			return ErrBookNotFound
		}
		book.ID = id
		bookBytes, err := json.Marshal(book)
		if err != nil {
			return err
		}
		return bucket.Put(key, bookBytes)
	})
}

// Delete removes a book record based on its ID from boltdb store.
func (bs *boltBookStorage) Delete(_ context.Context, id primitive.ObjectID) error {
	return bs.client.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(bs.config.BucketName))
		key := []byte(id.Hex())
		if bucket.Get(key) == nil {
			return ErrBookNotFound
		}
		return bucket.Delete(key)
	})
}

// GetAll retrieves a list of all books stored in the bolt database.
func (bs *boltBookStorage) GetAll(_ context.Context) ([]Book, error) {
	books := []Book{}
	err := bs.client.View(func(tx *bolt.Tx) error {
		c := tx.Bucket([]byte(bs.config.BucketName)).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var book Book
			if err := json.Unmarshal(v, &book); err != nil {
				return err
			}
			books = append(books, book)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}
