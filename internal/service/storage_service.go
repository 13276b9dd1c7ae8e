package service

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/schoolsite/portal-backend/internal/config"
	"github.com/schoolsite/portal-backend/internal/model"
)

// Sentinel errors for uploads.
var (
	ErrUnknownBucket       = errors.New("unknown bucket")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

// Bucket names a storage area with its own write gate.
type Bucket string

const (
	BucketCovers    Bucket = "covers"
	BucketAvatars   Bucket = "avatars"
	BucketPersonnel Bucket = "personnel"
)

// bucketPermissions lists the permissions of which any one allows writing.
// An empty list means any signed-in principal may write.
var bucketPermissions = map[Bucket][]model.Permission{
	BucketCovers:    {model.PermissionManageNews, model.PermissionManageActivities, model.PermissionManageMedia},
	BucketAvatars:   {},
	BucketPersonnel: {model.PermissionManagePersonnel},
}

// ParseBucket validates a bucket taken from a URL segment.
func ParseBucket(s string) (Bucket, error) {
	b := Bucket(s)
	if _, ok := bucketPermissions[b]; !ok {
		return "", ErrUnknownBucket
	}
	return b, nil
}

// WritePermissions returns the permissions gating writes to the bucket.
func (b Bucket) WritePermissions() []model.Permission { return bucketPermissions[b] }

// Allowed image MIME types.
var allowedMIMETypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// StoredObject describes a saved upload.
type StoredObject struct {
	Bucket Bucket `json:"bucket"`
	Name   string `json:"name"`
	URL    string `json:"url"`
	Size   int64  `json:"size"`
}

// StorageService stores uploads on local disk, one directory per bucket.
type StorageService struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewStorageService creates a new StorageService.
func NewStorageService(cfg *config.Config, log zerolog.Logger) *StorageService {
	return &StorageService{
		cfg: cfg,
		log: log.With().Str("component", "storage_service").Logger(),
	}
}

// Save writes an uploaded file under a UUID name and returns its public URL.
func (s *StorageService) Save(bucket Bucket, file multipart.File, header *multipart.FileHeader) (*StoredObject, error) {
	contentType := header.Header.Get("Content-Type")
	ext, ok := allowedMIMETypes[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: %s (allowed: %s)",
			ErrUnsupportedFileType, contentType, strings.Join(allowedTypes(), ", "))
	}

	if header.Size > s.cfg.MaxUploadBytes() {
		return nil, fmt.Errorf("%w: %d bytes (max: %d)", ErrFileTooLarge, header.Size, s.cfg.MaxUploadBytes())
	}

	dir := filepath.Join(s.cfg.UploadDir, string(bucket))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	// Headers can lie about size; cap the copy as well.
	n, err := io.Copy(dst, io.LimitReader(file, s.cfg.MaxUploadBytes()+1))
	if err != nil {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("write file: %w", err)
	}
	if n > s.cfg.MaxUploadBytes() {
		_ = os.Remove(dst.Name())
		return nil, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, s.cfg.MaxUploadBytes())
	}

	s.log.Info().Str("bucket", string(bucket)).Str("name", name).Int64("size", n).Msg("Upload stored")
	return &StoredObject{Bucket: bucket, Name: name, URL: s.PublicURL(bucket, name), Size: n}, nil
}

// Remove deletes a stored object. Missing files are not an error.
func (s *StorageService) Remove(bucket Bucket, name string) error {
	if name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("invalid object name %q", name)
	}
	err := os.Remove(filepath.Join(s.cfg.UploadDir, string(bucket), name))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// PublicURL returns the URL under which an object is served.
func (s *StorageService) PublicURL(bucket Bucket, name string) string {
	return strings.TrimRight(s.cfg.PublicBaseURL, "/") + "/uploads/" + string(bucket) + "/" + name
}

func allowedTypes() []string {
	types := make([]string, 0, len(allowedMIMETypes))
	for t := range allowedMIMETypes {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
