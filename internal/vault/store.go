// Package vault accesses the encrypted secret store that holds vault
// items. An item is loaded, its authorized-clients filter mutated in
// memory, and saved back; the store owns the item after persistence.
package vault

import "context"

// Item is one encrypted secret bundle entry within a named vault.
type Item interface {
	// SetAuthorizedClients replaces the filter expression that controls
	// which client identities may decrypt the item, e.g. "name:web-01".
	SetAuthorizedClients(filter string)

	// Save persists the item. The in-memory copy is not retained by the
	// caller afterwards.
	Save(ctx context.Context) error
}

// Store loads vault items and reports whether the backing secret store
// can be reached at all.
type Store interface {
	// Available probes the secret-store backend. A failure means no
	// update should be attempted; the error names the missing dependency.
	Available(ctx context.Context) error

	// Load fetches the named item from the named vault.
	Load(ctx context.Context, vaultName, itemName string) (Item, error)
}
