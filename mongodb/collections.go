package mongodb

import "go.mongodb.org/mongo-driver/v2/bson"

const (
	UsersCollection    = "users"         // Credential records
	SessionsCollection = "user_sessions" // Device-bound login sessions
	BooksCollection    = "books"         // Catalog books
	AuthorsCollection  = "authors"       // Catalog authors
)

// NewObjectID generates a new MongoDB ObjectID as a hex string.
func NewObjectID() string {
	return bson.NewObjectID().Hex()
}
