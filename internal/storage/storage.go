// Package storage implements binary object storage for avatars and post images.
package storage

import "context"

// Object identifies a stored binary and where clients can fetch it.
type Object struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// ObjectStore is the external collaborator holding image binaries. Delete
// failures are treated as degraded by callers: an unreachable object is
// preferable to blocking an account deletion.
type ObjectStore interface {
	Upload(ctx context.Context, content []byte, folder string) (*Object, error)
	Delete(ctx context.Context, objectID string) error
}
