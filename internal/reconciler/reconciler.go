// Package reconciler grants freshly bootstrapped nodes access to their
// vault items. A run decides whether any vault work was requested, waits
// for the node's client identity to appear in the directory, then adds
// the node to the authorized-clients filter of every requested item.
package reconciler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.dot.industries/bootvault/internal/config"
	"go.dot.industries/bootvault/internal/directory"
	"go.dot.industries/bootvault/internal/ui"
	"go.dot.industries/bootvault/internal/vault"
)

// Reconciler orchestrates one node's vault authorization. Instances are
// independent: concurrent runs for different nodes share no mutable state.
type Reconciler struct {
	opts     *config.Resolver
	ui       ui.UI
	store    vault.Store
	poller   *directory.Poller
	interval time.Duration

	probeOnce sync.Once
	probeErr  error
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithPollInterval overrides the directory poll interval. Values less
// than or equal to zero are ignored.
func WithPollInterval(d time.Duration) Option {
	return func(r *Reconciler) {
		if d > 0 {
			r.interval = d
		}
	}
}

// New creates a Reconciler over the resolved options and the two external
// collaborators.
func New(opts *config.Resolver, u ui.UI, store vault.Store, searcher directory.Searcher, options ...Option) *Reconciler {
	r := &Reconciler{
		opts:  opts,
		ui:    u,
		store: store,
	}

	for _, opt := range options {
		opt(r)
	}

	pollerOpts := []directory.PollerOption{}
	if r.interval > 0 {
		pollerOpts = append(pollerOpts, directory.WithInterval(r.interval))
	}
	r.poller = directory.NewPoller(searcher, u, pollerOpts...)

	return r
}

// Run performs one reconciliation for the named node. Returns nil
// immediately when no vault work is requested. Otherwise it warns about
// conflicting specification inputs, resolves the effective specification,
// probes the secret store once, blocks until the node is discoverable,
// and updates every requested (vault, item) pair in deterministic order.
//
// Items are updated independently: the first load or save failure aborts
// the run, leaving earlier updates in place and later items untouched.
func (r *Reconciler) Run(ctx context.Context, nodeName string) error {
	if !r.opts.WorkRequested() {
		return nil
	}

	r.opts.CheckConflicts(r.ui)

	spec, err := r.opts.Spec()
	if err != nil {
		return err
	}

	if nodeName == "" {
		return fmt.Errorf("node name is required for vault reconciliation")
	}

	if err := r.ensureStore(ctx); err != nil {
		return err
	}

	if err := r.poller.WaitForClient(ctx, nodeName); err != nil {
		return err
	}

	r.ui.Info(fmt.Sprintf("updating vault items for client %q", nodeName))

	filter := "name:" + nodeName

	for _, pair := range spec.Pairs() {
		item, err := r.store.Load(ctx, pair.Vault, pair.Item)
		if err != nil {
			return err
		}

		item.SetAuthorizedClients(filter)

		if err := item.Save(ctx); err != nil {
			return err
		}
	}

	return nil
}

// ensureStore probes the secret store exactly once per Reconciler. The
// result is memoized to avoid repeated probing, and a failure aborts the
// run before any discovery query or update attempt.
func (r *Reconciler) ensureStore(ctx context.Context) error {
	r.probeOnce.Do(func() {
		r.probeErr = r.store.Available(ctx)
	})
	return r.probeErr
}
