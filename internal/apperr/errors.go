package apperr

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInputNotFound  = errors.New("input directory not found")
	ErrRegistrySealed = errors.New("fragment registry sealed")
	ErrRender         = errors.New("diagram render failed")
)
