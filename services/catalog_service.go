package services

import (
	"context"
	"strconv"
	"time"

	"github.com/libris-app/libris/cache"
	"github.com/libris-app/libris/domain"
	apperrors "github.com/libris-app/libris/errors"
)

// CatalogService serves catalog reads through the shared cache-aside
// idiom: every list/detail read computes a deterministic key from the
// operation name and its normalized parameters, returns a cached payload
// verbatim on a hit, and populates the cache with a short fixed TTL on a
// miss. Writes do not invalidate list caches; readers tolerate up to one
// TTL window of staleness after a write.
type CatalogService struct {
	repo  domain.CatalogRepository
	cache cache.Cache
	ttl   time.Duration
}

// NewCatalogService creates a CatalogService with the given read-cache TTL.
func NewCatalogService(repo domain.CatalogRepository, c cache.Cache, ttl time.Duration) *CatalogService {
	return &CatalogService{repo: repo, cache: c, ttl: ttl}
}

func listKey(op string, params domain.ListParams) string {
	return cache.Key(op, map[string]string{
		"limit":  strconv.FormatInt(params.Limit, 10),
		"offset": strconv.FormatInt(params.Offset, 10),
		"search": params.Search,
	})
}

// ListBooks returns a page of books, cached.
func (s *CatalogService) ListBooks(ctx context.Context, params domain.ListParams) ([]*domain.Book, error) {
	params = params.Normalized()
	return cache.GetOrLoad(ctx, s.cache, listKey("books:list", params), s.ttl,
		func(ctx context.Context) ([]*domain.Book, error) {
			books, err := s.repo.ListBooks(ctx, params)
			if err != nil {
				return nil, apperrors.NewInternal("could not list books", err)
			}
			return books, nil
		})
}

// GetBook returns one book, cached.
func (s *CatalogService) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	key := cache.Key("books:detail", map[string]string{"id": id})
	book, err := cache.GetOrLoad(ctx, s.cache, key, s.ttl,
		func(ctx context.Context) (*domain.Book, error) {
			b, err := s.repo.GetBook(ctx, id)
			if err != nil {
				return nil, apperrors.NewInternal("could not get book", err)
			}
			return b, nil
		})
	if err != nil {
		return nil, err
	}
	if book == nil {
		return nil, apperrors.NewNotFound("book not found")
	}
	return book, nil
}

// CreateBook inserts a catalog entry. List caches are not invalidated;
// they age out within one TTL.
func (s *CatalogService) CreateBook(ctx context.Context, book *domain.Book) (*domain.Book, error) {
	verr := &apperrors.ValidationError{}
	if book.Title == "" {
		verr.Add("required", "title")
	}
	if book.AuthorID == "" {
		verr.Add("required", "authorId")
	}
	if !verr.Empty() {
		return nil, verr
	}
	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, apperrors.NewInternal("could not create book", err)
	}
	return book, nil
}

// ListAuthors returns a page of authors, cached.
func (s *CatalogService) ListAuthors(ctx context.Context, params domain.ListParams) ([]*domain.Author, error) {
	params = params.Normalized()
	return cache.GetOrLoad(ctx, s.cache, listKey("authors:list", params), s.ttl,
		func(ctx context.Context) ([]*domain.Author, error) {
			authors, err := s.repo.ListAuthors(ctx, params)
			if err != nil {
				return nil, apperrors.NewInternal("could not list authors", err)
			}
			return authors, nil
		})
}

// GetAuthor returns one author, cached.
func (s *CatalogService) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	key := cache.Key("authors:detail", map[string]string{"id": id})
	author, err := cache.GetOrLoad(ctx, s.cache, key, s.ttl,
		func(ctx context.Context) (*domain.Author, error) {
			a, err := s.repo.GetAuthor(ctx, id)
			if err != nil {
				return nil, apperrors.NewInternal("could not get author", err)
			}
			return a, nil
		})
	if err != nil {
		return nil, err
	}
	if author == nil {
		return nil, apperrors.NewNotFound("author not found")
	}
	return author, nil
}
