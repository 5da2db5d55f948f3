package files

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrForbidden indicates access to another user's file.
var ErrForbidden = errors.New("files: not owned by user")

// Store is the persistence surface the service depends on.
type Store interface {
	Create(ctx context.Context, f File) (*File, error)
	Get(ctx context.Context, id int64) (*File, error)
	ListByUser(ctx context.Context, userID int64, limit, offset int) ([]File, int, error)
	Delete(ctx context.Context, id int64) error
}

// UploadRequest carries an incoming document.
type UploadRequest struct {
	Filename    string
	ContentType string
	Pages       int
	Content     io.Reader
}

// Service stores uploaded documents on disk under random names and tracks
// their metadata in the database.
type Service struct {
	repo   Store
	dir    string
	logger *slog.Logger
}

// NewService constructs the file service.
func NewService(repo Store, dir string, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, dir: dir, logger: logger}
}

// Upload writes the document to disk and records its metadata.
func (s *Service) Upload(ctx context.Context, userID int64, req UploadRequest) (*File, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}

	storedName := uuid.NewString() + filepath.Ext(req.Filename)
	path := filepath.Join(s.dir, storedName)
	dst, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(dst, req.Content)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("write blob: %w", err)
	}

	pages := req.Pages
	if pages < 1 {
		pages = 1
	}
	created, err := s.repo.Create(ctx, File{
		UserID:           userID,
		OriginalFilename: req.Filename,
		StoredName:       storedName,
		ContentType:      req.ContentType,
		SizeBytes:        size,
		Pages:            pages,
	})
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	return created, nil
}

// Get returns a file, enforcing ownership unless admin is set.
func (s *Service) Get(ctx context.Context, id, userID int64, admin bool) (*File, error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !admin && f.UserID != userID {
		return nil, ErrForbidden
	}
	return f, nil
}

// ListByUser returns a user's uploads.
func (s *Service) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]File, int, error) {
	return s.repo.ListByUser(ctx, userID, limit, offset)
}

// Open returns the stored content for reading.
func (s *Service) Open(ctx context.Context, id, userID int64, admin bool) (*File, io.ReadCloser, error) {
	f, err := s.Get(ctx, id, userID, admin)
	if err != nil {
		return nil, nil, err
	}
	rc, err := os.Open(filepath.Join(s.dir, f.StoredName))
	if err != nil {
		return nil, nil, fmt.Errorf("open blob: %w", err)
	}
	return f, rc, nil
}

// Delete removes the record and blob. Files referenced by print jobs are refused.
func (s *Service) Delete(ctx context.Context, id, userID int64, admin bool) error {
	f, err := s.Get(ctx, id, userID, admin)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, f.StoredName)); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("remove blob", slog.String("stored_name", f.StoredName), slog.Any("error", err))
	}
	return nil
}

// Meta returns display name and page count for pricing.
func (s *Service) Meta(ctx context.Context, id int64) (name string, pages int, err error) {
	f, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", 0, err
	}
	return f.OriginalFilename, f.Pages, nil
}
