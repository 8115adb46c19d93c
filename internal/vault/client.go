package vault

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"

	vaultapi "github.com/hashicorp/vault/api"
)

// authorizedClientsKey is the reserved field inside an item's KV v2
// document that carries the client filter expression.
const authorizedClientsKey = "authorized_clients"

// Client implements Store over the HashiCorp Vault KV v2 engine. Items
// live at "<mount>/data/<vaultName>/<itemName>".
type Client struct {
	inner *vaultapi.Client
	mount string
}

var _ Store = (*Client)(nil)

// NewClient creates a store client pointed at the given Vault address.
// The mount is the KV v2 mount point holding vault items.
func NewClient(address, mount, token string) (*Client, error) {
	if address == "" {
		return nil, fmt.Errorf("vault address is required")
	}

	cfg := vaultapi.DefaultConfig()
	cfg.Address = address

	inner, err := vaultapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating vault client: %w", err)
	}

	if token != "" {
		inner.SetToken(token)
	}

	return &Client{
		inner: inner,
		mount: mount,
	}, nil
}

// Available probes the Vault backend's health endpoint. The error names
// the vault dependency so a missing or unreachable backend is diagnosable
// before any update is attempted.
func (c *Client) Available(ctx context.Context) error {
	health, err := c.inner.Sys().HealthWithContext(ctx)
	if err != nil {
		return fmt.Errorf("vault secret store unavailable at %s: %w", c.inner.Address(), err)
	}

	if health.Sealed {
		return fmt.Errorf("vault secret store unavailable at %s: sealed", c.inner.Address())
	}

	return nil
}

// Load reads the named item's KV v2 document. A missing item is an error:
// authorization can only be granted on items that already exist.
func (c *Client) Load(ctx context.Context, vaultName, itemName string) (Item, error) {
	fullPath := c.itemPath(vaultName, itemName)

	secret, err := c.inner.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		if isPermissionDenied(err) {
			return nil, fmt.Errorf("loading item %s/%s: permission denied: %w", vaultName, itemName, err)
		}
		return nil, fmt.Errorf("loading item %s/%s: %w", vaultName, itemName, err)
	}

	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("loading item %s/%s: not found", vaultName, itemName)
	}

	data, err := extractKV2Data(secret.Data, vaultName, itemName)
	if err != nil {
		return nil, err
	}

	return &kvItem{
		client:    c,
		vaultName: vaultName,
		itemName:  itemName,
		data:      data,
	}, nil
}

// itemPath constructs the full KV v2 API path by inserting "data" between
// the mount point and the item path.
func (c *Client) itemPath(vaultName, itemName string) string {
	return path.Join(c.mount, "data", vaultName, itemName)
}

// extractKV2Data parses the nested KV v2 response structure. The Vault
// KV v2 API returns the document in response.Data["data"] as a nested map.
func extractKV2Data(responseData map[string]interface{}, vaultName, itemName string) (map[string]interface{}, error) {
	dataRaw, ok := responseData["data"]
	if !ok {
		return nil, fmt.Errorf("loading item %s/%s: not found", vaultName, itemName)
	}

	dataMap, ok := dataRaw.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("loading item %s/%s: unexpected data format", vaultName, itemName)
	}

	return dataMap, nil
}

// kvItem is a loaded KV v2 item document plus the coordinates to write it
// back.
type kvItem struct {
	client    *Client
	vaultName string
	itemName  string
	data      map[string]interface{}
}

func (i *kvItem) SetAuthorizedClients(filter string) {
	i.data[authorizedClientsKey] = filter
}

func (i *kvItem) Save(ctx context.Context) error {
	fullPath := i.client.itemPath(i.vaultName, i.itemName)

	_, err := i.client.inner.Logical().WriteWithContext(ctx, fullPath, map[string]interface{}{
		"data": i.data,
	})
	if err != nil {
		if isPermissionDenied(err) {
			return fmt.Errorf("saving item %s/%s: permission denied: %w", i.vaultName, i.itemName, err)
		}
		return fmt.Errorf("saving item %s/%s: %w", i.vaultName, i.itemName, err)
	}

	return nil
}

// isPermissionDenied checks whether a Vault API error is a 403 permission
// denied.
func isPermissionDenied(err error) bool {
	var respErr *vaultapi.ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode == http.StatusForbidden
	}
	return false
}
