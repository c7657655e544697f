package main

import (
	"fmt"
	"os"
	"syscall"

	"liftbox/internal/app"
	"liftbox/internal/config"
	"liftbox/internal/store"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer
// app.Close(). operation identifies the CLI command being run
// (e.g. "Export", "Import").
func newApp(operation string) (*app.App, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewApp(cfg, operation)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

// readPassphrase prompts for a passphrase without echoing it.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	passphrase, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(passphrase), nil
}

var rootCmd = &cobra.Command{
	Use:   "liftbox",
	Short: "Local workout data store with portable backups",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Store:      %s\n", cfg.Store.Type)
		for _, v := range cfg.Vaults {
			fmt.Printf("Vault:      %s (%s)\n", v.Name, v.Type)
		}
		return nil
	},
}

var configKeygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate archive encryption keys",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SetupEncryption")
		if err != nil {
			return err
		}
		defer a.Close()

		passphrase, err := readPassphrase("Passphrase for private key: ")
		if err != nil {
			return err
		}

		if err := a.SetupEncryption(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Println("Encryption keys generated.")
		return nil
	},
}

// export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export all collections to a backup archive",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		encrypt, _ := cmd.Flags().GetBool("encrypt")
		toVault, _ := cmd.Flags().GetBool("vault")

		a, err := newApp("Export")
		if err != nil {
			return err
		}
		defer a.Close()

		if toVault {
			name, err := a.ExportToVault(encrypt)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Printf("Exported to vault as %s\n", name)
			return nil
		}

		if out == "" {
			out = "liftbox-backup.zip"
			if encrypt {
				out += ".age"
			}
		}
		if err := a.ExportToFile(out, encrypt); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		fmt.Printf("Exported to %s\n", out)
		return nil
	},
}

// import command
var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Import a backup archive",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fromVault, _ := cmd.Flags().GetString("vault")
		encrypted, _ := cmd.Flags().GetBool("encrypted")

		if len(args) == 0 && fromVault == "" {
			return fmt.Errorf("either FILE or --vault NAME is required")
		}

		a, err := newApp("Import")
		if err != nil {
			return err
		}
		defer a.Close()

		var passphrase string
		if encrypted {
			passphrase, err = readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
		}

		var result *store.ImportResult
		if fromVault != "" {
			result, err = a.ImportFromVault(fromVault, passphrase)
		} else {
			result, err = a.ImportFromFile(args[0], passphrase)
		}
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		printImportResult(result)
		return nil
	},
}

func printImportResult(result *store.ImportResult) {
	if result.TopLevelError != "" {
		fmt.Printf("Import failed: %s\n", result.TopLevelError)
		return
	}
	fmt.Printf("Imported: %d\nSkipped:  %d\n", result.Imported, result.Skipped)
	if len(result.Errors) > 0 {
		fmt.Printf("Errors:   %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	}
}

// archives command
var archivesCmd = &cobra.Command{
	Use:   "archives",
	Short: "List backup archives in the vault",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListVaultArchives")
		if err != nil {
			return err
		}
		defer a.Close()

		names, err := a.ListVaultArchives()
		if err != nil {
			return err
		}

		if len(names) == 0 {
			fmt.Println("No archives in vault.")
			return nil
		}
		for _, name := range names {
			fmt.Println(name)
		}
		return nil
	},
}

// photo command
var photoCmd = &cobra.Command{
	Use:   "photo",
	Short: "Manage stored photos",
}

var photoAddCmd = &cobra.Command{
	Use:   "add FILE",
	Short: "Store a photo from a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")

		a, err := newApp("StorePhoto")
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading photo: %w", err)
		}

		id, uri, err := a.StorePhoto(id, data)
		if err != nil {
			return fmt.Errorf("storing photo: %w", err)
		}

		fmt.Printf("Stored photo %s\n%s\n", id, uri)
		return nil
	},
}

var photoGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Write a stored photo to a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		if out == "" {
			out = args[0]
		}

		a, err := newApp("GetPhoto")
		if err != nil {
			return err
		}
		defer a.Close()

		data, ok := a.GetPhotoBytes(args[0])
		if !ok {
			return fmt.Errorf("no photo stored under %q", args[0])
		}

		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("writing photo: %w", err)
		}

		fmt.Printf("Wrote %d bytes to %s\n", len(data), out)
		return nil
	},
}

var photoLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List stored photo IDs",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListPhotos")
		if err != nil {
			return err
		}
		defer a.Close()

		ids, err := a.ListPhotoIDs()
		if err != nil {
			return err
		}

		if len(ids) == 0 {
			fmt.Println("No photos stored.")
			return nil
		}
		for _, id := range ids {
			fmt.Println(id)
		}
		return nil
	},
}

var photoRmCmd = &cobra.Command{
	Use:   "rm ID",
	Short: "Delete a stored photo",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeletePhoto")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeletePhoto(args[0]); err != nil {
			return fmt.Errorf("deleting photo: %w", err)
		}

		fmt.Printf("Deleted photo %s\n", args[0])
		return nil
	},
}

// kv command
var kvCmd = &cobra.Command{
	Use:   "kv",
	Short: "Inspect and edit collection entries",
}

var kvSetCmd = &cobra.Command{
	Use:   "set COLLECTION KEY JSON",
	Short: "Store a JSON value",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("PutEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.PutEntry(args[0], args[1], args[2]); err != nil {
			return fmt.Errorf("storing entry: %w", err)
		}
		return nil
	},
}

var kvGetCmd = &cobra.Command{
	Use:   "get COLLECTION KEY",
	Short: "Print a stored value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		text, ok, err := a.GetEntry(args[0], args[1])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no entry under %s/%s", args[0], args[1])
		}

		fmt.Println(text)
		return nil
	},
}

var kvDelCmd = &cobra.Command{
	Use:   "del COLLECTION KEY",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteEntry")
		if err != nil {
			return err
		}
		defer a.Close()

		return a.DeleteEntry(args[0], args[1])
	},
}

var kvKeysCmd = &cobra.Command{
	Use:   "keys COLLECTION",
	Short: "List keys in a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListKeys")
		if err != nil {
			return err
		}
		defer a.Close()

		keys, err := a.ListKeys(args[0])
		if err != nil {
			return err
		}
		for _, key := range keys {
			fmt.Println(key)
		}
		return nil
	},
}

// stats command
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "View per-collection entry counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Stats")
		if err != nil {
			return err
		}
		defer a.Close()

		stats, photoBytes, err := a.Stats()
		if err != nil {
			return err
		}

		for _, s := range stats {
			fmt.Printf("%-18s %d\n", s.Box, s.Entries)
		}
		fmt.Printf("\nPhoto storage: %d bytes\n", photoBytes)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeygenCmd)

	exportCmd.Flags().StringP("out", "o", "", "Output file (default liftbox-backup.zip)")
	exportCmd.Flags().Bool("encrypt", false, "Encrypt the archive with the configured public key")
	exportCmd.Flags().Bool("vault", false, "Upload the archive to the configured vault")

	importCmd.Flags().String("vault", "", "Import the named archive from the configured vault")
	importCmd.Flags().Bool("encrypted", false, "Archive is encrypted; prompt for the passphrase")

	photoCmd.AddCommand(photoAddCmd)
	photoAddCmd.Flags().String("id", "", "Photo ID (default: generated)")
	photoCmd.AddCommand(photoGetCmd)
	photoGetCmd.Flags().StringP("out", "o", "", "Output file (default: the photo ID)")
	photoCmd.AddCommand(photoLsCmd)
	photoCmd.AddCommand(photoRmCmd)

	kvCmd.AddCommand(kvSetCmd)
	kvCmd.AddCommand(kvGetCmd)
	kvCmd.AddCommand(kvDelCmd)
	kvCmd.AddCommand(kvKeysCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(archivesCmd)
	rootCmd.AddCommand(photoCmd)
	rootCmd.AddCommand(kvCmd)
	rootCmd.AddCommand(statsCmd)
}
