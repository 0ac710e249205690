package dita

import (
	"fmt"
	"strings"

	"github.com/starford/mddita/internal/apperr"
	"github.com/starford/mddita/internal/inline"
)

// Fragment identifies the warehouse topic generated for one include file.
type Fragment struct {
	Path     string // relative to the includes directory, slash-separated
	TopicID  string
	RegionID string
}

// FragmentFor derives the identifiers of the fragment at path. The result
// depends only on path, so references to unknown fragments still point where
// the fragment would have been written.
func FragmentFor(path string) Fragment {
	key := strings.ReplaceAll(strings.TrimSuffix(path, ".md"), "/", "_")
	base := SanitizeID(key)
	return Fragment{
		Path:     path,
		TopicID:  "warehouse_" + base,
		RegionID: base + "_content",
	}
}

// File returns the file name of the warehouse topic.
func (f Fragment) File() string {
	return f.TopicID + ".dita"
}

// Title returns the display title derived from the include path.
func (f Fragment) Title() string {
	return inline.TitleCase(strings.ReplaceAll(strings.TrimSuffix(f.Path, ".md"), "/", " - "))
}

// Href returns the content reference to the fragment's region as seen from
// a sibling of warehouseDir.
func (f Fragment) Href(warehouseDir string) string {
	return fmt.Sprintf("../%s/%s#%s/%s", warehouseDir, f.File(), f.TopicID, f.RegionID)
}

// Registry maps include paths to their fragments. It is filled during the
// fragment pass and sealed before any document is converted.
type Registry struct {
	fragments map[string]Fragment
	order     []string
	sealed    bool
}

// NewRegistry creates an empty, unsealed Registry.
func NewRegistry() *Registry {
	return &Registry{fragments: make(map[string]Fragment)}
}

// Register records the fragment for path. Registering a path twice returns
// the existing fragment.
func (r *Registry) Register(path string) (Fragment, error) {
	if r.sealed {
		return Fragment{}, fmt.Errorf("register %s: %w", path, apperr.ErrRegistrySealed)
	}
	if f, ok := r.fragments[path]; ok {
		return f, nil
	}
	f := FragmentFor(path)
	r.fragments[path] = f
	r.order = append(r.order, path)
	return f, nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	return r.sealed
}

// Resolve looks up the fragment registered for path.
func (r *Registry) Resolve(path string) (Fragment, bool) {
	f, ok := r.fragments[path]
	return f, ok
}

// Fragments returns the registered fragments in registration order.
func (r *Registry) Fragments() []Fragment {
	out := make([]Fragment, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, r.fragments[p])
	}
	return out
}

// Len returns the number of registered fragments.
func (r *Registry) Len() int {
	return len(r.order)
}
