package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"attritioninsight/config"
	"attritioninsight/dataset"
	"attritioninsight/models"
)

var ErrUnsupportedFormat = errors.New("unsupported dataset format")

// LoadDataset reads the employee table from the configured source.
func LoadDataset(ctx context.Context, cfg config.DatasetConfig, log *zap.Logger) (*dataset.Frame, error) {
	switch cfg.Source {
	case "csv", "xlsx":
		f, err := os.Open(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open dataset: %w", err)
		}
		defer f.Close()
		return ReadDataset(filepath.Base(cfg.Path), f)

	case "sqlserver":
		src, err := NewSQLServerSource(cfg.SQLServer, cfg.Query, log)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Load(ctx)

	case "sqlite":
		src, err := NewSQLiteSource(cfg.Path, cfg.Query)
		if err != nil {
			return nil, err
		}
		defer src.Close()
		return src.Load(ctx)

	default:
		return nil, fmt.Errorf("%w: source %q", ErrUnsupportedFormat, cfg.Source)
	}
}

// ReadDataset decodes an uploaded or on-disk table, choosing the decoder by
// file extension.
func ReadDataset(filename string, r io.Reader) (*dataset.Frame, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return dataset.LoadCSV(r)
	case ".xlsx", ".xls":
		return dataset.LoadXLSX(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filename)
	}
}

// DatasetHolder publishes the current dataset. Frames are immutable, so a
// turn that took a snapshot keeps seeing it even if an upload swaps the
// dataset mid-turn.
type DatasetHolder struct {
	mu      sync.RWMutex
	frame   *dataset.Frame
	source  string
	outcome string
}

func NewDatasetHolder(frame *dataset.Frame, source, outcome string) *DatasetHolder {
	if outcome == "" {
		outcome = dataset.DefaultOutcome
	}
	return &DatasetHolder{frame: frame, source: source, outcome: outcome}
}

// Current returns the dataset snapshot. It is nil until one is loaded.
func (h *DatasetHolder) Current() *dataset.Frame {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.frame
}

func (h *DatasetHolder) Outcome() string {
	return h.outcome
}

// Swap replaces the dataset and returns the previous one.
func (h *DatasetHolder) Swap(frame *dataset.Frame, source string) *dataset.Frame {
	h.mu.Lock()
	defer h.mu.Unlock()
	prev := h.frame
	h.frame = frame
	h.source = source
	return prev
}

func (h *DatasetHolder) Info() models.DatasetInfo {
	h.mu.RLock()
	defer h.mu.RUnlock()
	info := models.DatasetInfo{Source: h.source}
	if h.frame != nil {
		info.Rows = h.frame.Rows()
		info.Columns = h.frame.Names()
	}
	return info
}
