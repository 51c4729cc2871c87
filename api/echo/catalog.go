package echo

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/libris-app/libris/domain"
	"github.com/libris-app/libris/dto"
	apperrors "github.com/libris-app/libris/errors"
	"github.com/libris-app/libris/internal/token"
	"github.com/libris-app/libris/middleware"
	"github.com/libris-app/libris/services"
)

// CatalogAPI exposes the cached catalog read path. Reads are public;
// writes require an access token.
type CatalogAPI struct {
	catalog *services.CatalogService
	issuer  *token.Issuer
}

// NewCatalogAPI initializes the catalog API.
func NewCatalogAPI(catalog *services.CatalogService, issuer *token.Issuer) *CatalogAPI {
	return &CatalogAPI{catalog: catalog, issuer: issuer}
}

// RegisterRoutes registers the catalog routes.
func (a *CatalogAPI) RegisterRoutes(e *echo.Echo) {
	e.GET("/v1/books", a.ListBooksHandler)
	e.GET("/v1/books/:id", a.GetBookHandler)
	e.POST("/v1/books", a.CreateBookHandler, middleware.RequireAccessToken(a.issuer))
	e.GET("/v1/authors", a.ListAuthorsHandler)
	e.GET("/v1/authors/:id", a.GetAuthorHandler)
}

func listParams(c echo.Context) domain.ListParams {
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	offset, _ := strconv.ParseInt(c.QueryParam("offset"), 10, 64)
	return domain.ListParams{
		Limit:  limit,
		Offset: offset,
		Search: c.QueryParam("search"),
	}.Normalized()
}

// ListBooksHandler serves GET /v1/books.
func (a *CatalogAPI) ListBooksHandler(c echo.Context) error {
	books, err := a.catalog.ListBooks(c.Request().Context(), listParams(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

// GetBookHandler serves GET /v1/books/:id.
func (a *CatalogAPI) GetBookHandler(c echo.Context) error {
	book, err := a.catalog.GetBook(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

// CreateBookHandler serves POST /v1/books.
func (a *CatalogAPI) CreateBookHandler(c echo.Context) error {
	var req dto.CreateBookRequest
	if err := c.Bind(&req); err != nil {
		return writeError(c, (&apperrors.ValidationError{}).Add("malformed JSON body", "body"))
	}
	book, err := a.catalog.CreateBook(c.Request().Context(), &domain.Book{
		Title:         req.Title,
		AuthorID:      req.AuthorID,
		ISBN:          req.ISBN,
		PublishedYear: req.PublishedYear,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

// ListAuthorsHandler serves GET /v1/authors.
func (a *CatalogAPI) ListAuthorsHandler(c echo.Context) error {
	authors, err := a.catalog.ListAuthors(c.Request().Context(), listParams(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, authors)
}

// GetAuthorHandler serves GET /v1/authors/:id.
func (a *CatalogAPI) GetAuthorHandler(c echo.Context) error {
	author, err := a.catalog.GetAuthor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, author)
}
