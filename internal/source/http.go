package source

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/drstein77/organicfilter/internal/models"
	"go.uber.org/zap"
)

// HTTPReader fetches the dataset with a single GET request.
type HTTPReader struct {
	Endpoint string
	Client   *http.Client
	log      Log
}

func NewHTTPReader(endpoint string, timeout time.Duration, log Log) *HTTPReader {
	return &HTTPReader{
		Endpoint: endpoint,
		Client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

func (h *HTTPReader) Read(ctx context.Context) ([]models.ProductRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	h.log.Info("Fetching dataset", zap.String("url", h.Endpoint))
	resp, err := h.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrSourceUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		h.log.Error("Dataset fetch failed", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: failed to fetch %s: %s", models.ErrSourceUnavailable, h.Endpoint, resp.Status)
	}

	records, err := decode(h.name(), resp.Body)
	if err != nil {
		return nil, err
	}

	h.log.Info("Dataset loaded", zap.Int("records", len(records)))
	return records, nil
}

// name is the last path segment of the endpoint, used as an archive hint.
func (h *HTTPReader) name() string {
	u, err := url.Parse(h.Endpoint)
	if err != nil {
		return h.Endpoint
	}
	return path.Base(u.Path)
}
