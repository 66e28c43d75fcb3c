// Package storage uploads submitted images to the application's Cloud Storage
// bucket. Upload failures are non-fatal for the analysis pipeline: callers
// treat a missing URL as "no stored copy", never as a reason to abort.
package storage

import (
	"context"
	"errors"
	"fmt"
	"mime"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
)

// uploadFolder is the object name prefix for all uploaded images.
const uploadFolder = "verifai"

// BucketUploader stores image bytes in a Cloud Storage bucket and returns a
// publicly addressable URL for the stored object.
type BucketUploader struct {
	bucket     *gcs.BucketHandle
	bucketName string
}

// NewBucketUploader creates a BucketUploader over the given bucket handle.
// The bucket name is needed to build the public object URL.
func NewBucketUploader(bucket *gcs.BucketHandle, bucketName string) (*BucketUploader, error) {
	if bucket == nil {
		return nil, errors.New("storage bucket handle is nil; ensure Firebase initialization succeeded")
	}
	if bucketName == "" {
		return nil, errors.New("storage bucket name cannot be empty")
	}
	return &BucketUploader{bucket: bucket, bucketName: bucketName}, nil
}

// UploadImage writes the image bytes to a new object and returns its URL.
func (u *BucketUploader) UploadImage(ctx context.Context, data []byte, contentType string) (string, error) {
	if len(data) == 0 {
		return "", errors.New("image data is empty")
	}
	if contentType == "" {
		contentType = "image/jpeg"
	}

	objectName := fmt.Sprintf("%s/%s%s", uploadFolder, uuid.NewString(), extensionFor(contentType))

	w := u.bucket.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	w.CacheControl = "public, max-age=86400"

	if _, err := w.Write(data); err != nil {
		w.Close() // Best effort close; the write already failed
		return "", fmt.Errorf("failed to write image object '%s': %w", objectName, err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize image object '%s': %w", objectName, err)
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", u.bucketName, objectName), nil
}

// extensionFor maps a content type to a file extension for nicer object names.
// Unknown types simply get no extension; the ContentType metadata is canonical.
func extensionFor(contentType string) string {
	exts, err := mime.ExtensionsByType(contentType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}
