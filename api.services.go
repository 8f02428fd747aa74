package main

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type BookServiceProvider interface {
	Add(ctx context.Context, book BookRequest) (primitive.ObjectID, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (Book, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Update(ctx context.Context, id primitive.ObjectID, book BookRequest) error
	GetAll(ctx context.Context) ([]Book, error)
}

type BookService struct {
	logger  *zap.Logger
	storage BookStorage
}

func NewBookService(logger *zap.Logger, storage BookStorage) BookServiceProvider {
	return &BookService{
		logger:  logger,
		storage: storage,
	}
}

// Add inserts the book unless another one already uses its name. The check
// and the insertion are two distinct storage calls so two concurrent
// creations with the same name can both succeed.
func (bs *BookService) Add(ctx context.Context, book BookRequest) (primitive.ObjectID, error) {
	exists, err := bs.storage.ExistsByName(ctx, book.Name)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if exists {
		return primitive.NilObjectID, ErrBookNameExists
	}
	return bs.storage.Add(ctx, book.ToBook())
}

func (bs *BookService) GetOne(ctx context.Context, id primitive.ObjectID) (Book, error) {
	return bs.storage.GetOne(ctx, id)
}

func (bs *BookService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return bs.storage.Delete(ctx, id)
}

// Update overwrites name, author and year of an existing book. The book may
// vanish between the existence check and the write, in which case the
// storage reports ErrBookNotFound.
func (bs *BookService) Update(ctx context.Context, id primitive.ObjectID, book BookRequest) error {
	found, err := bs.storage.GetOne(ctx, id)
	if err != nil {
		return err
	}
	bs.logger.Debug("service: book found before update",
		zap.String("book.id", id.Hex()),
		zap.String("book.name", found.Name),
		zap.String("book.author", found.Author),
		zap.Int32("book.year", found.Year),
	)
	return bs.storage.Update(ctx, id, book.ToBook())
}

func (bs *BookService) GetAll(ctx context.Context) ([]Book, error) {
	return bs.storage.GetAll(ctx)
}
