package dto

// CreateBookRequest is the payload of POST /v1/books.
type CreateBookRequest struct {
	Title         string `json:"title"`
	AuthorID      string `json:"authorId"`
	ISBN          string `json:"isbn,omitempty"`
	PublishedYear int    `json:"publishedYear,omitempty"`
}
