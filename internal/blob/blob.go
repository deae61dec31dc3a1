// Package blob uploads solution images to object storage.
package blob

import (
	"context"
	"fmt"
	"time"
)

//go:generate mockgen -source=blob.go -destination=../mocks/blob/mock_store.go -package=mock_blob

// Store is write-once object storage that hands back a retrievable URL.
type Store interface {
	Upload(ctx context.Context, path string, contentType string, data []byte) (url string, err error)
}

// SolutionPath is the object path for the index-th image of a submission.
func SolutionPath(userID, questionID string, at time.Time, index int) string {
	return fmt.Sprintf("solutions/%s/%s/%d_%d.jpg", userID, questionID, at.UnixMilli(), index)
}
