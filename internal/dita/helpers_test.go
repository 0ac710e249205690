package dita

import (
	"context"
	"errors"

	"github.com/starford/mddita/internal/report"
)

type fakeDiagrams struct {
	name  string
	err   error
	calls []string
}

func (f *fakeDiagrams) Asset(_ context.Context, language, code string) (string, error) {
	f.calls = append(f.calls, language+":"+code)
	return f.name, f.err
}

var errTransport = errors.New("connection refused")

func newTestEmitter(fragments ...string) (*Emitter, *report.Collector) {
	reg := NewRegistry()
	for _, p := range fragments {
		if _, err := reg.Register(p); err != nil {
			panic(err)
		}
	}
	reg.Seal()
	col := report.NewCollector(nil)
	return New(reg, WithCollector(col)), col
}
