package config

// Config represents the top-level bootvault.toml configuration file.
type Config struct {
	Vault     VaultConfig     `toml:"vault"`
	Directory DirectoryConfig `toml:"directory"`
	Bootstrap BootstrapConfig `toml:"bootstrap"`
}

// VaultConfig holds secret-store connection settings.
type VaultConfig struct {
	Address string `toml:"address"`
	Mount   string `toml:"mount"`
	Token   string `toml:"token"`
}

// DirectoryConfig holds directory-service connection settings.
type DirectoryConfig struct {
	Address string `toml:"address"`
	Token   string `toml:"token"`
}

// BootstrapConfig holds reconciliation settings. Items is the pre-parsed
// vault specification: a table mapping vault names to an item name or a
// list of item names.
type BootstrapConfig struct {
	PollInterval string         `toml:"poll_interval"`
	Items        map[string]any `toml:"items"`
}
