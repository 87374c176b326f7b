package http

import (
	"context"
	"io"

	"sustainers/internal/services"
	"sustainers/pkg/contracts/domain"
)

// DonorProcessor runs the donor pipeline over an upload
type DonorProcessor interface {
	Process(ctx context.Context, r io.Reader, name string, month domain.Month) (*services.Result, error)
	Export(result *services.Result) ([]byte, error)
}

// DownloadStore keeps rendered CSVs for later download
type DownloadStore interface {
	Put(filename string, month domain.Month, records int, data []byte) string
	Get(id string) (*services.Download, bool)
}
