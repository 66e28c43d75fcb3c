package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewBucketUploaderValidation(t *testing.T) {
	_, err := NewBucketUploader(nil, "bucket")
	assert.Error(t, err)
}

func TestExtensionFor(t *testing.T) {
	// mime.ExtensionsByType can return several candidates depending on the
	// platform's mime tables; assert on shape, not on one exact extension.
	ext := extensionFor("image/png")
	assert.True(t, strings.HasPrefix(ext, "."), "png should map to some extension, got %q", ext)

	assert.Empty(t, extensionFor("application/x-definitely-unknown"))
	assert.Empty(t, extensionFor(""))
}
