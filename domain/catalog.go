package domain

import "time"

// Book is a catalog entry.
type Book struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Title         string    `bson:"title" json:"title"`
	AuthorID      string    `bson:"author_id" json:"authorId"`
	ISBN          string    `bson:"isbn,omitempty" json:"isbn,omitempty"`
	PublishedYear int       `bson:"published_year,omitempty" json:"publishedYear,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"createdAt"`
}

// Author is a catalog author.
type Author struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Bio       string    `bson:"bio,omitempty" json:"bio,omitempty"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// ListParams are the normalized pagination/search inputs for catalog list
// reads. They feed both the repository query and the cache key, so the
// zero value must normalize deterministically.
type ListParams struct {
	Limit  int64
	Offset int64
	Search string
}

// Normalized clamps the params to sane bounds so equivalent requests
// produce identical cache keys.
func (p ListParams) Normalized() ListParams {
	if p.Limit <= 0 || p.Limit > 100 {
		p.Limit = 20
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}
