// Package storage persists uploaded and generated files on the local
// filesystem and maps them to publicly served URLs.
package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/visaflow/visa-assistant/pkg/utils"
)

// BlobStorage is the blob collaborator contract: upload bytes under a
// relative path and get a public URL back, delete by the same path, and
// issue signed upload tokens for direct client uploads.
type BlobStorage interface {
	Upload(path string, content []byte, contentType string) (string, error)
	Read(path string) ([]byte, error)
	Delete(path string) error
	SignedUploadToken(path string, expiresIn time.Duration) (string, error)
	FullPath(path string) string
}

// LocalBlobStorage implements BlobStorage on a base directory. Paths are
// validated against traversal before any filesystem access.
type LocalBlobStorage struct {
	baseDir   string
	publicURL string
	signKey   []byte
	logger    *zap.Logger
}

// NewLocalBlobStorage creates storage rooted at baseDir. publicURL is the
// externally reachable prefix under which baseDir is served.
func NewLocalBlobStorage(baseDir, publicURL, signKey string, logger *zap.Logger) (*LocalBlobStorage, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalBlobStorage{
		baseDir:   baseDir,
		publicURL: strings.TrimRight(publicURL, "/"),
		signKey:   []byte(signKey),
		logger:    logger,
	}, nil
}

// Upload writes content under the relative path and returns its public URL.
func (s *LocalBlobStorage) Upload(path string, content []byte, contentType string) (string, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("create directories: %w", err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("failed to write blob",
			zap.String("path", path),
			zap.Error(err))
		return "", fmt.Errorf("write blob: %w", err)
	}

	s.logger.Debug("blob stored",
		zap.String("path", path),
		zap.String("content_type", contentType),
		zap.Int("size", len(content)))

	return s.publicURL + "/" + filepath.ToSlash(path), nil
}

// Read returns the content stored under the relative path.
func (s *LocalBlobStorage) Read(path string) ([]byte, error) {
	fullPath, err := s.resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	return data, nil
}

// Delete removes the blob. Deleting a missing blob is not an error.
func (s *LocalBlobStorage) Delete(path string) error {
	fullPath, err := s.resolve(path)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// SignedUploadToken issues an HMAC token authorizing one direct upload to
// path until the expiry timestamp. The HTTP layer verifies it with
// VerifyUploadToken before accepting the body.
func (s *LocalBlobStorage) SignedUploadToken(path string, expiresIn time.Duration) (string, error) {
	if _, err := s.resolve(path); err != nil {
		return "", err
	}
	expiry := time.Now().Add(expiresIn).Unix()
	return fmt.Sprintf("%d.%s", expiry, s.sign(path, expiry)), nil
}

// VerifyUploadToken checks a token issued by SignedUploadToken.
func (s *LocalBlobStorage) VerifyUploadToken(path, token string) bool {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return false
	}
	expiry, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || time.Now().Unix() > expiry {
		return false
	}
	expected := s.sign(path, expiry)
	return hmac.Equal([]byte(expected), []byte(parts[1]))
}

// FullPath resolves a stored path for collaborators that read from disk
// directly, like the PDF text reader.
func (s *LocalBlobStorage) FullPath(path string) string {
	full, err := s.resolve(path)
	if err != nil {
		return ""
	}
	return full
}

func (s *LocalBlobStorage) sign(path string, expiry int64) string {
	mac := hmac.New(sha256.New, s.signKey)
	fmt.Fprintf(mac, "%s:%d", path, expiry)
	return hex.EncodeToString(mac.Sum(nil))
}

// resolve joins path onto the base directory and rejects anything that
// escapes it.
func (s *LocalBlobStorage) resolve(path string) (string, error) {
	path = utils.SanitizeString(path)
	if path == "" {
		return "", fmt.Errorf("empty storage path")
	}

	fullPath, err := filepath.Abs(filepath.Join(s.baseDir, path))
	if err != nil {
		return "", fmt.Errorf("resolve path: %w", err)
	}
	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return "", fmt.Errorf("resolve base path: %w", err)
	}
	if !strings.HasPrefix(fullPath, absBase+string(filepath.Separator)) && fullPath != absBase {
		return "", fmt.Errorf("path escapes storage directory: %s", path)
	}
	return fullPath, nil
}
