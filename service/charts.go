package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var ErrChartNotFound = errors.New("chart not found")

// ChartStorage archives rendered charts as PNG files.
type ChartStorage struct {
	chartsDir string
}

func NewChartStorage(chartsDir string) (*ChartStorage, error) {
	if err := os.MkdirAll(chartsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create charts directory: %w", err)
	}
	return &ChartStorage{chartsDir: chartsDir}, nil
}

// GenerateFileName creates a unique file name with a timestamp prefix.
func (s *ChartStorage) GenerateFileName() string {
	timestamp := time.Now().Format("20060102_150405")
	return fmt.Sprintf("chart_%s_%s.png", timestamp, uuid.NewString()[:8])
}

// Save writes img and returns the file name it was stored under.
func (s *ChartStorage) Save(img []byte) (string, error) {
	filename := s.GenerateFileName()
	if err := os.WriteFile(filepath.Join(s.chartsDir, filename), img, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}
	return filename, nil
}

// Path resolves a stored chart. Names that would escape the directory are
// rejected.
func (s *ChartStorage) Path(filename string) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || strings.HasPrefix(filename, ".") ||
		filepath.Ext(filename) != ".png" {
		return "", fmt.Errorf("%w: %s", ErrChartNotFound, filename)
	}
	path := filepath.Join(s.chartsDir, filename)
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: %s", ErrChartNotFound, filename)
	}
	return path, nil
}
