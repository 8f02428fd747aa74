package main

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Book represents a book entity as persisted by the storage.
// The ID is assigned by the storage on insertion and is omitted
// from the document while it still holds the zero value.
type Book struct {
	ID     primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name   string             `json:"name" bson:"name"`
	Author string             `json:"author" bson:"author"`
	Year   int32              `json:"year" bson:"year"`
}

// BookRequest is the payload accepted on book creation and update.
// Clients cannot choose the book id.
type BookRequest struct {
	Name   string `json:"name"`
	Author string `json:"author"`
	Year   int32  `json:"year"`
}

// BookResponse is the representation of a book sent to clients.
type BookResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Author string `json:"author"`
	Year   int32  `json:"year"`
}

// CreatedBookResponse holds the id assigned to a newly created book.
type CreatedBookResponse struct {
	ID string `json:"id"`
}

// MessageResponse is the confirmation body for update and delete.
type MessageResponse struct {
	Message string `json:"message"`
}

// ToResponse converts the persisted form into the outbound form.
func (b Book) ToResponse() BookResponse {
	return BookResponse{
		ID:     b.ID.Hex(),
		Name:   b.Name,
		Author: b.Author,
		Year:   b.Year,
	}
}

// ToBook builds a persisted form without id from the request payload.
func (br BookRequest) ToBook() Book {
	return Book{
		Name:   br.Name,
		Author: br.Author,
		Year:   br.Year,
	}
}

// ToBooksResponse converts a list of books. It never returns a nil slice
// so an empty collection is always encoded as an empty json array.
func ToBooksResponse(books []Book) []BookResponse {
	resp := make([]BookResponse, 0, len(books))
	for _, b := range books {
		resp = append(resp, b.ToResponse())
	}
	return resp
}

// BookStorage defines possible operations on book entity.
type BookStorage interface {
	Add(ctx context.Context, book Book) (primitive.ObjectID, error)
	GetOne(ctx context.Context, id primitive.ObjectID) (Book, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, id primitive.ObjectID, book Book) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	GetAll(ctx context.Context) ([]Book, error)
	Close(ctx context.Context) error
}
