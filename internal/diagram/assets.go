package diagram

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"

	"github.com/starford/mddita/internal/apperr"
	"github.com/starford/mddita/internal/checksum"
	"github.com/starford/mddita/internal/storage"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="320" height="40">` +
	`<text x="10" y="25" font-family="sans-serif" font-size="14">Diagram unavailable</text></svg>`

// Assets writes diagram images into the images directory of the output
// tree. File names carry a per-run sequence number and a content hash, so
// rerunning over unchanged input yields the same names.
type Assets struct {
	out      storage.Provider
	dir      string
	renderer Renderer
	cache    Cache
	logger   *slog.Logger

	mu      sync.Mutex
	counter int
}

// AssetOption configures Assets.
type AssetOption func(*Assets)

// WithRenderer sets the renderer. Without one every diagram becomes a
// placeholder.
func WithRenderer(r Renderer) AssetOption {
	return func(a *Assets) {
		a.renderer = r
	}
}

// WithCache consults c before rendering and stores new renderings in it.
func WithCache(c Cache) AssetOption {
	return func(a *Assets) {
		a.cache = c
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) AssetOption {
	return func(a *Assets) {
		a.logger = l
	}
}

// NewAssets creates Assets writing below dir of out.
func NewAssets(out storage.Provider, dir string, opts ...AssetOption) *Assets {
	a := &Assets{
		out:    out,
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reset restarts the sequence used in file names.
func (a *Assets) Reset() {
	a.mu.Lock()
	a.counter = 0
	a.mu.Unlock()
}

// Count returns how many diagrams were requested since the last Reset.
func (a *Assets) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.counter
}

// Asset returns the file name of the image for code. An existing file or
// a cache hit is reused without rendering. On failure the name of a
// placeholder image is returned along with the error.
func (a *Assets) Asset(ctx context.Context, language, code string) (string, error) {
	a.mu.Lock()
	a.counter++
	seq := a.counter
	a.mu.Unlock()

	code = strings.TrimSpace(code)
	name := fmt.Sprintf("diagram_%03d_%s.svg", seq, checksum.Short([]byte(code), 12))
	rel := path.Join(a.dir, name)
	if a.out.Exists(rel) {
		return name, nil
	}

	key := checksum.Sum([]byte(strings.ToLower(language) + "\n" + code))
	if svg, ok := a.fromCache(key); ok {
		if err := a.out.Write(rel, svg); err != nil {
			return a.placeholder(seq, err)
		}
		a.logger.Debug("diagram: cache hit", slog.String("file", name))
		return name, nil
	}

	if a.renderer == nil {
		return a.placeholder(seq, fmt.Errorf("%w: rendering disabled", apperr.ErrRender))
	}
	svg, err := a.renderer.Render(ctx, language, code)
	if err != nil {
		return a.placeholder(seq, err)
	}
	if err := a.out.Write(rel, svg); err != nil {
		return a.placeholder(seq, err)
	}
	if a.cache != nil {
		if err := a.cache.Put(key, strings.ToLower(language), svg); err != nil {
			a.logger.Warn("diagram: cache put failed", slog.String("error", err.Error()))
		}
	}
	a.logger.Info("diagram: rendered", slog.String("file", name))
	return name, nil
}

func (a *Assets) fromCache(key string) ([]byte, bool) {
	if a.cache == nil {
		return nil, false
	}
	svg, ok, err := a.cache.Get(key)
	if err != nil {
		a.logger.Warn("diagram: cache get failed", slog.String("error", err.Error()))
		return nil, false
	}
	return svg, ok
}

// placeholder writes a stand-in image so the reference resolves and
// returns its name with cause.
func (a *Assets) placeholder(seq int, cause error) (string, error) {
	name := fmt.Sprintf("diagram_%03d_error.svg", seq)
	if err := a.out.Write(path.Join(a.dir, name), []byte(placeholderSVG)); err != nil {
		a.logger.Warn("diagram: write placeholder failed", slog.String("error", err.Error()))
	}
	return name, cause
}
