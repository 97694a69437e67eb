package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxErrorBody = 4 << 10

// RemotePredictor sends frames to a model-serving endpoint that owns the
// artifact, e.g. a pycaret or MLflow scoring server.
type RemotePredictor struct {
	model    string
	endpoint string
	client   *http.Client
}

type remoteRequest struct {
	Model          string `json:"model"`
	DataframeSplit Frame  `json:"dataframe_split"`
}

func NewRemotePredictor(model, endpoint string, timeout time.Duration) *RemotePredictor {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RemotePredictor{
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

func (p *RemotePredictor) Predict(ctx context.Context, input Frame) (Frame, error) {
	body, err := json.Marshal(remoteRequest{Model: p.model, DataframeSplit: input})
	if err != nil {
		return Frame{}, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return Frame{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Frame{}, fmt.Errorf("%w: %w", ErrBackend, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Frame{}, fmt.Errorf("%w: %s returned %d: %s", ErrBackend, p.endpoint, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var output Frame
	if err := json.NewDecoder(resp.Body).Decode(&output); err != nil {
		return Frame{}, fmt.Errorf("%w: decode response: %v", ErrBackend, err)
	}
	return output, nil
}

// Probe checks that the serving endpoint answers on its health URL.
func (p *RemotePredictor) Probe(ctx context.Context, healthURL string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		return err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBackend, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: health check %s returned %d", ErrBackend, healthURL, resp.StatusCode)
	}
	return nil
}
