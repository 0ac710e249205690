// Package diagram renders diagram descriptions found in code blocks into
// SVG images next to the generated topics.
package diagram

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/starford/mddita/internal/apperr"
)

const userAgent = "mddita/1.0"

// Renderer turns diagram source into SVG bytes.
type Renderer interface {
	Render(ctx context.Context, language, code string) ([]byte, error)
}

// Kroki renders diagrams through a Kroki server using GET requests with
// the source deflated and base64url-encoded in the path.
type Kroki struct {
	endpoint string
	client   *http.Client
}

// NewKroki creates a Kroki renderer. Each request is bounded by timeout.
func NewKroki(endpoint string, timeout time.Duration) *Kroki {
	return &Kroki{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// EncodeSource compresses code with zlib at best compression and encodes
// it with the URL-safe base64 alphabet.
func EncodeSource(code string) (string, error) {
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	if err != nil {
		return "", err
	}
	if _, err := w.Write([]byte(code)); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(buf.Bytes()), nil
}

// URL returns the request URL for code in language.
func (k *Kroki) URL(language, code string) (string, error) {
	encoded, err := EncodeSource(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("diagram: encode: %w", err)
	}
	return fmt.Sprintf("%s/%s/svg/%s", k.endpoint, strings.ToLower(language), encoded), nil
}

// Render fetches the SVG rendering of code. Transport failures and non-200
// responses wrap apperr.ErrRender.
func (k *Kroki) Render(ctx context.Context, language, code string) ([]byte, error) {
	u, err := k.URL(language, code)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRender, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := k.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrRender, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned %d", apperr.ErrRender, k.endpoint, resp.StatusCode)
	}
	svg, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", apperr.ErrRender, err)
	}
	return svg, nil
}
