package filestorage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/logger"
	"github.com/learnway/member/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// LocalStorage keeps avatar images in a directory on the server filesystem.
type LocalStorage struct {
	uploadDir    string // Directory where uploaded images are written
	urlPrefix    string // URL path the upload directory is served under
	defaultImage string // Sentinel stored when no image was uploaded
	logger       zerolog.Logger
}

// NewLocalStorage creates a new LocalStorage instance.
// The upload directory is created lazily on the first Store.
func NewLocalStorage(uploadDir, urlPrefix, defaultImage string) *LocalStorage {
	return &LocalStorage{
		uploadDir:    uploadDir,
		urlPrefix:    strings.TrimRight(urlPrefix, "/"),
		defaultImage: defaultImage,
		logger:       logger.Component("filestorage"),
	}
}

// DefaultImage returns the default image sentinel
func (ls *LocalStorage) DefaultImage() string {
	return ls.defaultImage
}

// Store writes the upload as <uuid>.<ext> and returns the generated name
func (ls *LocalStorage) Store(upload *Upload) (name string, err error) {
	if upload.IsEmpty() {
		return ls.defaultImage, nil
	}
	defer func() { metrics.RecordAvatarFile("store", err) }()

	src, err := upload.Open()
	if err != nil {
		ls.logger.Error().Err(err).Str("filename", upload.Filename).Msg("Failed to open uploaded file")
		return "", fmt.Errorf("%w: open upload: %v", apperrors.ErrFileIO, err)
	}
	defer src.Close()

	if err := os.MkdirAll(ls.uploadDir, os.ModePerm); err != nil {
		ls.logger.Error().Err(err).Str("path", ls.uploadDir).Msg("Failed to create upload directory")
		return "", fmt.Errorf("%w: create upload directory: %v", apperrors.ErrFileIO, err)
	}

	name = uuid.New().String()
	if ext := FileExtension(upload.Filename); ext != "" {
		name += "." + ext
	}
	dstPath := filepath.Join(ls.uploadDir, name)

	dst, err := os.OpenFile(dstPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to create destination file")
		return "", fmt.Errorf("%w: create file: %v", apperrors.ErrFileIO, err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		_ = os.Remove(dstPath)
		ls.logger.Error().Err(err).Str("path", dstPath).Msg("Failed to copy uploaded file content")
		return "", fmt.Errorf("%w: write file: %v", apperrors.ErrFileIO, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("%w: close file: %v", apperrors.ErrFileIO, err)
	}

	ls.logger.Info().Str("filename", upload.Filename).Str("saved_as", name).Msg("Avatar saved")
	return name, nil
}

// Delete removes a stored image if it exists
func (ls *LocalStorage) Delete(storedName string) {
	if storedName == "" || storedName == ls.defaultImage {
		return
	}

	// Only the base name is trusted; stored names never contain directories
	filename := filepath.Base(storedName)
	if filename == "." || filename == string(filepath.Separator) {
		ls.logger.Warn().Str("name", storedName).Msg("Refusing to delete invalid avatar path")
		return
	}
	physicalPath := filepath.Join(ls.uploadDir, filename)

	err := os.Remove(physicalPath)
	switch {
	case err == nil:
		ls.logger.Info().Str("path", physicalPath).Msg("Avatar deleted")
	case errors.Is(err, os.ErrNotExist):
		ls.logger.Warn().Str("path", physicalPath).Msg("Avatar to delete does not exist")
		return
	default:
		ls.logger.Error().Err(err).Str("path", physicalPath).Msg("Failed to delete avatar")
	}
	metrics.RecordAvatarFile("delete", err)
}

// Resolve returns the URL path of a stored image
func (ls *LocalStorage) Resolve(storedName string) string {
	if storedName == "" || storedName == ls.defaultImage {
		return ls.defaultImage
	}
	return ls.urlPrefix + "/" + storedName
}

// Path returns the filesystem location of a stored image
func (ls *LocalStorage) Path(storedName string) string {
	return filepath.Join(ls.uploadDir, filepath.Base(storedName))
}

// FileExtension returns the text after the last '.' of the file's base name,
// or "" when there is none.
func FileExtension(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	i := strings.LastIndex(filename, ".")
	if i < 0 {
		return ""
	}
	return filename[i+1:]
}
