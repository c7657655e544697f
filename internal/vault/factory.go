package vault

import (
	"fmt"

	"liftbox/internal/config"
	"liftbox/internal/store"
)

// NewVaultFromConfig creates an ArchiveVault implementation based on the
// vault config type.
func NewVaultFromConfig(cfg config.VaultConfig) (store.ArchiveVault, error) {
	switch cfg.Type {
	case "memory":
		return NewMemoryVault(cfg.Name), nil
	case "s3":
		return NewS3Vault(cfg)
	case "filesystem":
		if cfg.FSVaultRoot == "" {
			return nil, fmt.Errorf("filesystem vault requires fs_vault_root to be set")
		}
		return NewFileSystemVault(cfg.Name, cfg.FSVaultRoot)
	default:
		return nil, fmt.Errorf("unknown vault type: %s", cfg.Type)
	}
}
