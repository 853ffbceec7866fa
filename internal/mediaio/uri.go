// Package mediaio implements the media collaborators on the local
// filesystem: JPEG sequence segments, ffmpeg transcoding and probing, and a
// Loader that opens clips, audio and images by URI.
package mediaio

import (
	"path/filepath"
	"strings"
)

const fileScheme = "file://"

// Resolve maps a file:// URI or plain path to a filesystem path. Relative
// paths are taken from root.
func Resolve(root, uri string) string {
	path := strings.TrimPrefix(uri, fileScheme)
	if filepath.IsAbs(path) || root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(root, path)
}

// URI is the inverse of Resolve for absolute paths.
func URI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return fileScheme + filepath.ToSlash(path)
}
