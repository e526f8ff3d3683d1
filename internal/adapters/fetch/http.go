package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"

	"go.trai.ch/kiln/internal/build"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/zerr"
)

// HTTPTransport fetches http and https URLs.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport creates an HTTPTransport. A nil client uses http.DefaultClient.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// Schemes implements ports.Transport.
func (t *HTTPTransport) Schemes() []string {
	return []string{"http", "https"}
}

// Get implements ports.Transport.
func (t *HTTPTransport) Get(ctx context.Context, req ports.FetchRequest, w io.Writer) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, http.NoBody)
	if err != nil {
		return zerr.Wrap(err, "failed to build request")
	}
	httpReq.Header.Set("User-Agent", "kiln/"+build.Version)

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return zerr.With(zerr.Wrap(domain.ErrUnexpectedStatus, resp.Status), "status", resp.StatusCode)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return errors.Join(zerr.New("transfer interrupted"), err)
	}
	return nil
}
