package config

import (
	"fmt"
	"strings"
	"sync"

	"go.dot.industries/bootvault/internal/ui"
	"go.dot.industries/bootvault/internal/vaultspec"
)

// Options is the merged option set for one reconciliation run. Three
// overlapping inputs can describe the requested vault work; precedence is
// pre-parsed items, then raw JSON text, then a file path.
type Options struct {
	// VaultItems is the pre-parsed specification, usually the
	// [bootstrap.items] table from bootvault.toml.
	VaultItems vaultspec.Spec

	// VaultJSON is a JSON-encoded specification passed directly.
	VaultJSON string

	// VaultFile is the path to a file holding a JSON-encoded specification.
	VaultFile string
}

// Resolver decides which input form describes the requested vault work
// and resolves the effective specification lazily, exactly once.
type Resolver struct {
	opts Options

	once sync.Once
	spec vaultspec.Spec
	err  error
}

// NewResolver creates a Resolver over an immutable option set.
func NewResolver(opts Options) *Resolver {
	return &Resolver{opts: opts}
}

// WorkRequested reports whether any of the three specification inputs is
// present.
func (r *Resolver) WorkRequested() bool {
	return len(r.opts.VaultItems) > 0 || r.opts.VaultJSON != "" || r.opts.VaultFile != ""
}

// CheckConflicts warns, via the UI, when more than one specification
// input is set. At most one warning is emitted, naming every
// lower-priority input that will be ignored. It never fails; the run
// proceeds with the highest-priority input.
func (r *Resolver) CheckConflicts(u ui.UI) {
	if len(r.opts.VaultItems) > 0 {
		var ignored []string
		if r.opts.VaultJSON != "" {
			ignored = append(ignored, "vault-json")
		}
		if r.opts.VaultFile != "" {
			ignored = append(ignored, "vault-file")
		}
		if len(ignored) > 0 {
			u.Warn(fmt.Sprintf("ignoring %s: pre-parsed bootstrap items take precedence", strings.Join(ignored, " and ")))
		}
		return
	}

	if r.opts.VaultJSON != "" && r.opts.VaultFile != "" {
		u.Warn("ignoring vault-file: vault-json takes precedence")
	}
}

// Spec resolves the effective vault specification. The resolution runs
// once per Resolver; subsequent calls return the memoized result,
// including any parse or read error.
func (r *Resolver) Spec() (vaultspec.Spec, error) {
	r.once.Do(func() {
		switch {
		case len(r.opts.VaultItems) > 0:
			r.spec = r.opts.VaultItems
		case r.opts.VaultJSON != "":
			r.spec, r.err = vaultspec.Parse([]byte(r.opts.VaultJSON))
		case r.opts.VaultFile != "":
			r.spec, r.err = vaultspec.Load(r.opts.VaultFile)
		}
	})

	return r.spec, r.err
}
