package service

import (
	"context"
	"io"
)

// MediaUpload describes a single file handed to the media host.
type MediaUpload struct {
	Filename    string    // Original client filename, used only for its extension.
	ContentType string    // MIME type reported by the client.
	Size        int64     // Declared size in bytes.
	Content     io.Reader // The file content.
}

// MediaStore defines the interface for the remote media host that keeps
// avatar and cover images. Upload returns the public URL of the stored object.
type MediaStore interface {
	// Upload stores the file under the given category prefix (e.g. "avatars")
	// and returns its publicly reachable URL.
	Upload(ctx context.Context, category string, upload *MediaUpload) (string, error)
}
