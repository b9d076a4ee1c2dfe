package errors

import (
	"path/filepath"
	"strings"
	"unicode"
)

// ValidatePath validates a file path within a dataset or output directory.
// It prevents path traversal and ensures reasonable path length.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No absolute paths (must be relative)
//   - No path traversal sequences (..)
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateImageName validates the name of a stored image as requested over the
// service API. It must be a plain basename with a supported image extension.
func ValidateImageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "image name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidPath, "image name too long (max 256 characters)")
	}
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidPath, "image name cannot contain path separators")
	}
	if strings.HasPrefix(name, ".") {
		return New(ErrCodeInvalidPath, "image name cannot be a hidden file")
	}
	if err := ValidatePath(name); err != nil {
		return err
	}
	return ValidateExtension(filepath.Ext(name))
}

// supportedExtensions lists the encodings the dataset sink can write.
var supportedExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
}

// ValidateExtension checks that ext (with or without a leading dot, any case)
// names a supported image encoding.
func ValidateExtension(ext string) error {
	e := strings.ToLower(strings.TrimPrefix(ext, "."))
	if e == "" {
		return New(ErrCodeInvalidFormat, "image extension cannot be empty")
	}
	if !supportedExtensions[e] {
		return New(ErrCodeInvalidFormat, "unsupported image extension: %q (must be one of: jpg, jpeg, png)", ext)
	}
	return nil
}
