package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gbadb/internal/app"
	"gbadb/internal/config"
	"gbadb/internal/encryption"
	"gbadb/internal/gba"
	"gbadb/internal/watch"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp reads the config and creates an App. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "ImportGame", "SelectSkin").
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

// readPassphrase prompts on stderr and reads a line from the terminal without echo.
func readPassphrase(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading passphrase: %w", err)
	}
	return string(b), nil
}

var rootCmd = &cobra.Command{
	Use:   "gbadb",
	Short: "Game Boy library: games, skins and save states",
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
		encrypt, _ := cmd.Flags().GetBool("encrypt")

		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if encrypt {
			cfg.Encryption.Type = "age"
		}

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		if encrypt {
			pass, err := readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
			confirm, err := readPassphrase("Repeat passphrase: ")
			if err != nil {
				return err
			}
			if pass != confirm {
				return fmt.Errorf("passphrases do not match")
			}
			if err := encryption.NewAgeEncryptor(cfg.Encryption).Setup(pass); err != nil {
				return fmt.Errorf("setting up encryption: %w", err)
			}
			fmt.Printf("Encryption keys written to %s\n", cfg.Encryption.PublicKeyPath)
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
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Assets:      %s %s\n", cfg.Assets.Type, cfg.Assets.Root)
		fmt.Printf("Preferences: %s %s\n", cfg.Preferences.Type, cfg.Preferences.Path)
		fmt.Printf("Encryption:  %s\n", cfg.Encryption.Type)
		fmt.Printf("Skin Inbox:  %s\n", cfg.Skins.InboxDir)
		return nil
	},
}

// game command
var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Manage games",
}

var gameImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Import a ROM, an archive or a folder of them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")

		a, err := newApp("ImportGame")
		if err != nil {
			return err
		}
		defer a.Close()

		games, err := a.ImportGames(args[0], recursive)
		for _, g := range games {
			fmt.Printf("%s  %s  %s\n", g.ID[:12], g.Type.Short(), g.Name)
		}
		fmt.Printf("Imported %d game(s)\n", len(games))
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		return nil
	},
}

var gameListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported games",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListGames")
		if err != nil {
			return err
		}
		defer a.Close()

		games, err := a.ListGames()
		if err != nil {
			return err
		}
		if len(games) == 0 {
			fmt.Println("No games imported.")
			return nil
		}
		for _, g := range games {
			fmt.Printf("%s  %s  %s\n", g.ID, g.Type.Short(), g.Name)
		}
		return nil
	},
}

// skin command
var skinCmd = &cobra.Command{
	Use:   "skin",
	Short: "Manage controller skins",
}

var skinImportCmd = &cobra.Command{
	Use:   "import PATH",
	Short: "Import a .deltaskin archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ImportSkin")
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := a.ImportSkin(args[0])
		if err != nil {
			return fmt.Errorf("import: %w", err)
		}
		fmt.Printf("Imported skin %s (%s)\n", record.Name, record.Identifier)
		return nil
	},
}

var skinListCmd = &cobra.Command{
	Use:   "list",
	Short: "List imported skins",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")

		a, err := newApp("ListSkins")
		if err != nil {
			return err
		}
		defer a.Close()

		skins, err := a.ListSkins(typeName)
		if err != nil {
			return err
		}
		if len(skins) == 0 {
			fmt.Println("No skins imported.")
			return nil
		}
		for _, s := range skins {
			fmt.Printf("%-4s  %-20s  %-30s  %s\n",
				gba.GameType(s.GameType).Short(),
				gba.Orientations(s.Orientations),
				s.Name,
				s.Identifier,
			)
		}
		return nil
	},
}

var skinPreferredCmd = &cobra.Command{
	Use:   "preferred",
	Short: "Show the skin used for each game type",
	RunE: func(cmd *cobra.Command, args []string) error {
		typeName, _ := cmd.Flags().GetString("type")

		a, err := newApp("PreferredSkin")
		if err != nil {
			return err
		}
		defer a.Close()

		skins, err := a.PreferredSkins(typeName)
		if err != nil {
			return err
		}
		for _, s := range skins {
			fmt.Printf("%-4s  %s (%s)\n", gba.GameType(s.GameType).Short(), s.Name, s.Identifier)
		}
		return nil
	},
}

var skinSelectCmd = &cobra.Command{
	Use:   "select IDENTIFIER",
	Short: "Remember a skin as preferred",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("SelectSkin")
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := a.SelectSkin(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Preferred skin: %s\n", record.Name)
		return nil
	},
}

var skinClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the preferred skin",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ClearSkin")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.ClearSkin(); err != nil {
			return err
		}
		fmt.Println("Preferred skin cleared.")
		return nil
	},
}

var skinDeleteCmd = &cobra.Command{
	Use:   "delete IDENTIFIER",
	Short: "Delete an imported skin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteSkin")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSkin(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted skin %s\n", args[0])
		return nil
	},
}

var skinWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Import skins dropped into the inbox",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("WatchSkins")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Println("Watching for skins. Press Ctrl-C to stop.")
		return a.WatchSkins(ctx, func(r watch.Result) {
			if r.Err != nil {
				fmt.Printf("FAIL  %s: %v\n", r.Path, r.Err)
				return
			}
			fmt.Printf("OK    %s (%s)\n", r.Record.Name, r.Record.Identifier)
		})
	},
}

// state command
var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Manage save states",
}

var stateListCmd = &cobra.Command{
	Use:   "list GAME",
	Short: "List save states for a game (identity or filename)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListSaveStates")
		if err != nil {
			return err
		}
		defer a.Close()

		game, states, err := a.ListSaveStates(args[0])
		if err != nil {
			return err
		}
		if len(states) == 0 {
			fmt.Printf("No save states for %s.\n", game.Name)
			return nil
		}
		for _, s := range states {
			lock := ""
			if s.Encrypted {
				lock = "  [encrypted]"
			}
			fmt.Printf("%s  %s  %8d%s\n",
				s.ID,
				s.ModifiedAt.Format("2006-01-02 15:04:05"),
				s.Size,
				lock,
			)
		}
		return nil
	},
}

var stateDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a save state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("DeleteSaveState")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.DeleteSaveState(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted save state %s\n", args[0])
		return nil
	},
}

var stateExportCmd = &cobra.Command{
	Use:   "export ID OUT",
	Short: "Write a save state's raw snapshot to a file",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ExportSaveState")
		if err != nil {
			return err
		}
		defer a.Close()

		record, err := a.FindSaveState(args[0])
		if err != nil {
			return err
		}
		if record.Encrypted {
			pass, err := readPassphrase("Passphrase: ")
			if err != nil {
				return err
			}
			if err := a.Unlock(pass); err != nil {
				return err
			}
		}

		if err := a.ExportSaveState(record.ID, args[1]); err != nil {
			return fmt.Errorf("export: %w", err)
		}
		fmt.Printf("Exported %s to %s\n", record.ID, args[1])
		return nil
	},
}

var stateReconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Remove save state payloads and records that have lost their partner",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ReconcileSaveStates")
		if err != nil {
			return err
		}
		defer a.Close()

		report, err := a.ReconcileSaveStates()
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d orphan payload(s) and %d dangling record(s)\n",
			len(report.OrphanPayloads), len(report.DanglingRecords))
		return nil
	},
}

var stateRekeyCmd = &cobra.Command{
	Use:   "rekey LEGACY_ID GAME",
	Short: "Move save states filed under a legacy identity to a game's content identity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("RekeySaveStates")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.RekeySaveStates(args[0], args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Moved %d save state(s)\n", n)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View library operation history",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp("GetHistory")
		if err != nil {
			return err
		}
		defer a.Close()

		ops, err := a.GetHistory(limit)
		if err != nil {
			return err
		}

		if len(ops) == 0 {
			fmt.Println("No library operations recorded.")
			return nil
		}

		for _, op := range ops {
			duration := ""
			if op.FinishedAt.Valid {
				d := op.FinishedAt.Time.Sub(op.StartedAt)
				duration = d.Truncate(time.Millisecond).String()
			}
			fmt.Printf("#%d  %-19s  %s  %-7s  %-10s  %s\n",
				op.ID,
				op.Operation,
				op.StartedAt.Format("2006-01-02 15:04:05"),
				op.Status,
				duration,
				op.Parameters,
			)
		}
		return nil
	},
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().Bool("encrypt", false, "Encrypt save states with a passphrase-protected age key")
	configCmd.AddCommand(configListCmd)

	// game subcommands
	gameCmd.AddCommand(gameImportCmd)
	gameImportCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	gameCmd.AddCommand(gameListCmd)

	// skin subcommands
	skinCmd.AddCommand(skinImportCmd)
	skinCmd.AddCommand(skinListCmd)
	skinListCmd.Flags().StringP("type", "t", "", "Only show skins for this game type (gba or gbc)")
	skinCmd.AddCommand(skinPreferredCmd)
	skinPreferredCmd.Flags().StringP("type", "t", "", "Only show this game type (gba or gbc)")
	skinCmd.AddCommand(skinSelectCmd)
	skinCmd.AddCommand(skinClearCmd)
	skinCmd.AddCommand(skinDeleteCmd)
	skinCmd.AddCommand(skinWatchCmd)

	// state subcommands
	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateDeleteCmd)
	stateCmd.AddCommand(stateExportCmd)
	stateCmd.AddCommand(stateReconcileCmd)
	stateCmd.AddCommand(stateRekeyCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(gameCmd)
	rootCmd.AddCommand(skinCmd)
	rootCmd.AddCommand(stateCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")
}
