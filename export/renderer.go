// Package export turns the enquiry cart into a shareable PDF. Rendering is
// delegated to an external service; this package owns only the contract and
// where the result lands.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/nkoudou/veltrabackend/models"
)

// Renderer produces PDF bytes for an enquiry list.
type Renderer interface {
	Render(ctx context.Context, items models.EnquiryList) ([]byte, error)
}

// HTTPRenderer posts the list as JSON to a rendering service and expects PDF
// bytes back. Abandoning the request (caller navigating away) is just context
// cancellation; no special handling.
type HTTPRenderer struct {
	url    string
	client *http.Client
}

func NewHTTPRenderer() (*HTTPRenderer, error) {
	url := os.Getenv("PDF_RENDERER_URL")
	if url == "" {
		return nil, fmt.Errorf("PDF_RENDERER_URL must be set")
	}
	return &HTTPRenderer{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (r *HTTPRenderer) Render(ctx context.Context, items models.EnquiryList) ([]byte, error) {
	payload, err := json.Marshal(map[string]any{"items": items})
	if err != nil {
		return nil, fmt.Errorf("marshal render payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build render request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/pdf")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("render request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("renderer returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read rendered pdf: %w", err)
	}
	return data, nil
}
