package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/libris-app/libris/domain"
)

// CatalogRepository implements domain.CatalogRepository using MongoDB.
type CatalogRepository struct {
	books   *mongo.Collection
	authors *mongo.Collection
}

// NewCatalogRepository creates a CatalogRepository and ensures its indexes.
func NewCatalogRepository(ctx context.Context, db *mongo.Database) (domain.CatalogRepository, error) {
	repo := &CatalogRepository{
		books:   db.Collection(BooksCollection),
		authors: db.Collection(AuthorsCollection),
	}

	bookIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "author_id", Value: 1}}},
	}
	if _, err := repo.books.Indexes().CreateMany(ctx, bookIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create book indexes (might already exist)")
	}
	authorIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "name", Value: 1}}},
	}
	if _, err := repo.authors.Indexes().CreateMany(ctx, authorIndexes); err != nil {
		log.Warn().Err(err).Msg("Failed to create author indexes (might already exist)")
	}
	return repo, nil
}

// ListBooks returns a page of books, optionally filtered by a title search.
func (r *CatalogRepository) ListBooks(ctx context.Context, params domain.ListParams) ([]*domain.Book, error) {
	params = params.Normalized()
	filter := bson.M{}
	if params.Search != "" {
		filter["title"] = bson.M{"$regex": params.Search, "$options": "i"}
	}
	cursor, err := r.books.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "title", Value: 1}}).
		SetLimit(params.Limit).
		SetSkip(params.Offset))
	if err != nil {
		log.Error().Err(err).Msg("Error listing books from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	books := make([]*domain.Book, 0, params.Limit)
	if err = cursor.All(ctx, &books); err != nil {
		log.Error().Err(err).Msg("Error decoding listed books from MongoDB")
		return nil, err
	}
	return books, nil
}

// GetBook returns a book by ID, or nil when absent.
func (r *CatalogRepository) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	var book domain.Book
	err := r.books.FindOne(ctx, bson.M{"_id": id}).Decode(&book)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting book from MongoDB")
		return nil, err
	}
	return &book, nil
}

// CreateBook inserts a new catalog entry.
func (r *CatalogRepository) CreateBook(ctx context.Context, book *domain.Book) error {
	if book.ID == "" {
		book.ID = NewObjectID()
	}
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now().UTC()
	}
	if _, err := r.books.InsertOne(ctx, book); err != nil {
		log.Error().Err(err).Msg("Error storing book in MongoDB")
		return err
	}
	return nil
}

// ListAuthors returns a page of authors, optionally filtered by name.
func (r *CatalogRepository) ListAuthors(ctx context.Context, params domain.ListParams) ([]*domain.Author, error) {
	params = params.Normalized()
	filter := bson.M{}
	if params.Search != "" {
		filter["name"] = bson.M{"$regex": params.Search, "$options": "i"}
	}
	cursor, err := r.authors.Find(ctx, filter, options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetLimit(params.Limit).
		SetSkip(params.Offset))
	if err != nil {
		log.Error().Err(err).Msg("Error listing authors from MongoDB")
		return nil, err
	}
	defer cursor.Close(ctx)

	authors := make([]*domain.Author, 0, params.Limit)
	if err = cursor.All(ctx, &authors); err != nil {
		log.Error().Err(err).Msg("Error decoding listed authors from MongoDB")
		return nil, err
	}
	return authors, nil
}

// GetAuthor returns an author by ID, or nil when absent.
func (r *CatalogRepository) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	var author domain.Author
	err := r.authors.FindOne(ctx, bson.M{"_id": id}).Decode(&author)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		log.Error().Err(err).Str("id", id).Msg("Error getting author from MongoDB")
		return nil, err
	}
	return &author, nil
}

var _ domain.CatalogRepository = (*CatalogRepository)(nil)
