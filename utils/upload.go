package utils

import (
	"errors"
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UploadDir     = "uploads"
	MaxUploadSize = 5 << 20 // 5MB per image
)

var ErrFileTooLarge = errors.New("file size too large, maximum 5MB allowed per image")

var allowedImageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true,
}

// SaveUploadedImage writes a multipart image under uploads/ with a uuid
// filename and returns the public URL path.
func SaveUploadedImage(c *gin.Context, file *multipart.FileHeader) (string, error) {
	if file.Size > MaxUploadSize {
		return "", ErrFileTooLarge
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}

	if err := os.MkdirAll(UploadDir, 0o755); err != nil {
		return "", err
	}

	name := uuid.NewString() + ext
	dst := filepath.Join(UploadDir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", err
	}

	return "/" + UploadDir + "/" + name, nil
}
