package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"liftbox/internal/config"
	"liftbox/internal/encryption"
	"liftbox/internal/kv"
	"liftbox/internal/store"
	"liftbox/internal/vault"
)

// ageHeader is the first line of every age-encrypted file. Import uses
// it to give a useful error when an encrypted archive arrives without a
// passphrase, instead of a generic invalid-archive result.
const ageHeader = "age-encryption.org/v1"

// App is the application layer between the CLI and the store/backup
// engine. It constructs all dependencies from config, exposes
// high-level operations that accept raw strings, and manages the
// backend lifecycle on Close.
type App struct {
	cfg       *config.Config
	backend   store.Backend
	store     *store.Store
	engine    *store.BackupEngine
	vault     store.ArchiveVault
	encryptor encryption.Encryptor
	clock     store.Clock
	idgen     store.IDGenerator
	logFile   *os.File
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Export",
// "Import"). The caller must call Close when done.
func NewApp(cfg *config.Config, operation string) (*App, error) {
	backend, err := kv.NewBackendFromConfig(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("creating store backend: %w", err)
	}

	var av store.ArchiveVault
	if len(cfg.Vaults) > 0 {
		av, err = vault.NewVaultFromConfig(cfg.Vaults[0])
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	opID := time.Now().UTC().Format("20060102T150405Z")
	logger, logFile, err := newLogger(cfg.LogDir, opID+"/"+operation)
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	st := store.New(backend, logger)

	return &App{
		cfg:       cfg,
		backend:   backend,
		store:     st,
		engine:    store.NewBackupEngine(st, logger, store.RealClock{}),
		vault:     av,
		encryptor: enc,
		clock:     store.RealClock{},
		idgen:     store.UUIDGenerator{},
		logFile:   logFile,
	}, nil
}

// Store exposes the collection store for callers that consume the plain
// collection API directly (higher-level repositories).
func (a *App) Store() *store.Store {
	return a.store
}

// ExportToFile exports the full store to an archive file at path.
// When encrypt is set, the archive is age-encrypted with the configured
// public key before it touches disk.
func (a *App) ExportToFile(path string, encrypt bool) error {
	data, err := a.exportArchive(encrypt)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing archive: %w", err)
	}
	return nil
}

// ExportToVault exports the full store and uploads the archive to the
// configured vault. Returns the archive name in the vault.
func (a *App) ExportToVault(encrypt bool) (string, error) {
	if a.vault == nil {
		return "", fmt.Errorf("no vault configured")
	}

	data, err := a.exportArchive(encrypt)
	if err != nil {
		return "", err
	}

	name := "liftbox-" + a.clock.Now().UTC().Format("20060102T150405Z") + ".zip"
	if encrypt {
		name += ".age"
	}

	if err := a.vault.PutArchive(name, bytes.NewReader(data), int64(len(data))); err != nil {
		return "", fmt.Errorf("uploading archive: %w", err)
	}
	return name, nil
}

// ImportFromFile imports an archive file into the store. A non-empty
// passphrase unlocks the private key and decrypts the archive first.
func (a *App) ImportFromFile(path string, passphrase string) (*store.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return a.importArchive(data, passphrase)
}

// ImportFromVault fetches a named archive from the configured vault and
// imports it into the store.
func (a *App) ImportFromVault(name string, passphrase string) (*store.ImportResult, error) {
	if a.vault == nil {
		return nil, fmt.Errorf("no vault configured")
	}

	var buf bytes.Buffer
	if err := a.vault.GetArchive(name, &buf); err != nil {
		return nil, fmt.Errorf("fetching archive: %w", err)
	}
	return a.importArchive(buf.Bytes(), passphrase)
}

// ListVaultArchives returns the archive names stored in the configured vault.
func (a *App) ListVaultArchives() ([]string, error) {
	if a.vault == nil {
		return nil, fmt.Errorf("no vault configured")
	}
	return a.vault.ListArchives()
}

// SetupEncryption performs one-time key generation for archive encryption.
func (a *App) SetupEncryption(passphrase string) error {
	return a.encryptor.Setup(passphrase)
}

// exportArchive produces the archive bytes, optionally encrypted.
func (a *App) exportArchive(encrypt bool) ([]byte, error) {
	data, err := a.engine.Export()
	if err != nil {
		return nil, fmt.Errorf("exporting: %w", err)
	}

	if !encrypt {
		return data, nil
	}

	if !a.encryptor.IsConfigured() {
		return nil, fmt.Errorf("encryption keys not set up; run `liftbox config keygen` first")
	}

	var buf bytes.Buffer
	if err := a.encryptor.Encrypt(bytes.NewReader(data), &buf); err != nil {
		return nil, fmt.Errorf("encrypting archive: %w", err)
	}
	return buf.Bytes(), nil
}

// importArchive decrypts (when asked) and imports archive bytes.
func (a *App) importArchive(data []byte, passphrase string) (*store.ImportResult, error) {
	if passphrase != "" {
		ctx, err := a.encryptor.Unlock(passphrase)
		if err != nil {
			return nil, fmt.Errorf("unlocking private key: %w", err)
		}

		var buf bytes.Buffer
		if err := ctx.Decrypt(bytes.NewReader(data), &buf); err != nil {
			return nil, fmt.Errorf("decrypting archive: %w", err)
		}
		data = buf.Bytes()
	} else if bytes.HasPrefix(data, []byte(ageHeader)) {
		return nil, fmt.Errorf("archive is encrypted; a passphrase is required")
	}

	return a.engine.Import(data), nil
}

// StorePhoto stores photo bytes under the given ID (a fresh ID is
// generated when empty) and returns the ID and blob URI.
func (a *App) StorePhoto(id string, data []byte) (string, string, error) {
	if id == "" {
		id = a.idgen.New()
	}
	uri, err := a.store.StorePhoto(id, data)
	if err != nil {
		return "", "", err
	}
	return id, uri, nil
}

// GetPhotoBytes returns the photo's bytes, or ok=false if absent.
func (a *App) GetPhotoBytes(id string) ([]byte, bool) {
	return a.store.GetPhotoBytes(id)
}

// DeletePhoto removes a photo blob.
func (a *App) DeletePhoto(id string) error {
	return a.store.DeletePhoto(id)
}

// ListPhotoIDs returns the IDs of all stored photos.
func (a *App) ListPhotoIDs() ([]string, error) {
	return a.store.ListPhotoIDs()
}

// PutEntry parses jsonText and stores it under (collection, key).
func (a *App) PutEntry(collection, key, jsonText string) error {
	var value any
	if err := json.Unmarshal([]byte(jsonText), &value); err != nil {
		return fmt.Errorf("value is not valid JSON: %w", err)
	}
	return a.store.Put(collection, key, value)
}

// GetEntry returns the stored value rendered as indented JSON, or
// ok=false if absent.
func (a *App) GetEntry(collection, key string) (string, bool, error) {
	value, ok := a.store.Get(collection, key)
	if !ok {
		return "", false, nil
	}
	text, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("rendering value: %w", err)
	}
	return string(text), true, nil
}

// DeleteEntry removes an entry from a collection.
func (a *App) DeleteEntry(collection, key string) error {
	return a.store.Delete(collection, key)
}

// ListKeys returns all keys in a collection.
func (a *App) ListKeys(collection string) ([]string, error) {
	return a.store.Keys(collection)
}

// Stats returns per-collection entry counts and the photo byte estimate.
func (a *App) Stats() ([]store.BoxStats, int64, error) {
	return a.store.Stats()
}

// Close releases the store backend and the log file.
func (a *App) Close() error {
	err := a.store.Close()

	if a.logFile != nil {
		a.logFile.Close()
	}
	return err
}
