// Package publish connects finished images to the persistence and identity
// collaborators: blob upload, meme records, upvotes and the feed.
package publish

import (
	"context"
	"errors"
)

// Collection names and record fields.
const (
	CollectionMemes   = "memes"
	CollectionUpvotes = "upvotes"

	FieldImageURL  = "imageUrl"
	FieldUserID    = "userId"
	FieldMemeID    = "memeId"
	FieldCreatedAt = "createdAt"
)

var (
	ErrSignedOut = errors.New("请先登录")
	ErrDuplicate = errors.New("记录已存在")
	ErrNotFound  = errors.New("记录不存在")
	ErrForbidden = errors.New("无权操作该记录")
)

// Fields is the attribute map of a record.
type Fields map[string]any

// Record is a stored record.
type Record struct {
	ID         string
	Collection string
	Fields     Fields
}

// Query selects records of one collection. Where matches by equality.
type Query struct {
	Collection string
	Where      Fields
	OrderBy    string
	Descending bool
	Limit      int
}

// User is an authenticated (or guest) identity.
type User struct {
	ID    string
	Email string
	Guest bool
}

// Identity exposes the signed-in user.
type Identity interface {
	CurrentUser() (User, bool)
}

// BlobStore stores binary objects and returns their public URL.
type BlobStore interface {
	UploadBlob(ctx context.Context, path string, data []byte, contentType string) (string, error)
}

// Records is the record store with a reactive read model.
type Records interface {
	CreateRecord(ctx context.Context, collection string, fields Fields) (string, error)
	DeleteRecord(ctx context.Context, collection, id string) error
	Query(ctx context.Context, q Query) ([]Record, error)
	// Subscribe calls fn with the current result and again after every
	// change to the collection until cancel is called.
	Subscribe(q Query, fn func([]Record)) (cancel func())
}
