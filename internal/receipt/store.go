package receipt

import (
	"fmt"
	"os"
	"path/filepath"

	"goldsure-backend/internal/models"

	"go.uber.org/zap"
)

// Store keeps rendered PNG receipts on disk as <dir>/bill_<id>.png.
type Store struct {
	dir  string
	shop string
	log  *zap.Logger
}

func NewStore(dir, shop string, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{dir: dir, shop: shop, log: log.Named("receipt")}
}

func (s *Store) Shop() string { return s.shop }

func (s *Store) Path(billID uint) string {
	return filepath.Join(s.dir, fmt.Sprintf("bill_%d.png", billID))
}

// Render (re)writes the receipt for rec. The file is written under a temporary
// name and renamed, so a failed render never leaves a partial image behind.
func (s *Store) Render(rec *models.BillingRecord) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("bill directory could not be created: %w", err)
	}

	path := s.Path(rec.ID)
	tmp, err := os.CreateTemp(s.dir, fmt.Sprintf(".bill_%d_*.png", rec.ID))
	if err != nil {
		return "", fmt.Errorf("receipt file could not be created: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := RenderPNG(tmp, FromRecord(s.shop, rec)); err != nil {
		tmp.Close()
		return "", fmt.Errorf("receipt could not be rendered: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("receipt could not be saved: %w", err)
	}

	s.log.Debug("receipt rendered", zap.Uint("bill_id", rec.ID), zap.String("path", path))
	return path, nil
}

// Ensure returns the receipt path, rendering it first when the file is missing.
func (s *Store) Ensure(rec *models.BillingRecord) (string, error) {
	path := s.Path(rec.ID)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	return s.Render(rec)
}
