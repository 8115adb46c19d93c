package vaultspec

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// Spec maps a vault name to the items within it that should be updated.
type Spec map[string]Items

// Items is the list of item names requested for one vault. The JSON form
// accepts either a bare string (a single item) or an array of strings;
// both normalize to the list form here.
type Items []string

// UnmarshalJSON accepts "item" or ["itemA", "itemB"].
func (it *Items) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*it = Items{single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*it = Items(list)
		return nil
	}

	return fmt.Errorf("vault items must be a string or an array of strings, got %s", data)
}

// Parse decodes a JSON vault specification of the form
// {"vault1": "itemA", "vault2": ["itemB", "itemC"]}.
func Parse(data []byte) (Spec, error) {
	var spec Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing vault specification: %w", err)
	}

	return spec, nil
}

// Load reads the file at path and parses its contents as a JSON vault
// specification.
func Load(path string) (Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading vault specification %s: %w", path, err)
	}

	return Parse(data)
}

// Normalize converts a pre-decoded value (e.g. from a TOML table) into a
// Spec, applying the same single-or-list rule as the JSON form.
func Normalize(raw map[string]any) (Spec, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	spec := make(Spec, len(raw))

	for vault, target := range raw {
		switch v := target.(type) {
		case string:
			spec[vault] = Items{v}
		case []string:
			spec[vault] = Items(v)
		case []any:
			items := make(Items, 0, len(v))
			for _, el := range v {
				s, ok := el.(string)
				if !ok {
					return nil, fmt.Errorf("vault %q: item must be a string, got %T", vault, el)
				}
				items = append(items, s)
			}
			spec[vault] = items
		default:
			return nil, fmt.Errorf("vault %q: items must be a string or a list of strings, got %T", vault, target)
		}
	}

	return spec, nil
}

// Pair names one vault item to update.
type Pair struct {
	Vault string
	Item  string
}

// Pairs flattens the specification into (vault, item) pairs. Vault names
// are sorted so the expansion is deterministic; item order within a vault
// is preserved as written.
func (s Spec) Pairs() []Pair {
	vaults := make([]string, 0, len(s))
	for v := range s {
		vaults = append(vaults, v)
	}
	sort.Strings(vaults)

	var pairs []Pair
	for _, v := range vaults {
		for _, item := range s[v] {
			pairs = append(pairs, Pair{Vault: v, Item: item})
		}
	}

	return pairs
}
