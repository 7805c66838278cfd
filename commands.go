package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stevemurr/bookshelf/handler"
	"github.com/stevemurr/bookshelf/store"
	"github.com/stevemurr/bookshelf/tui"
)

// app holds what the commands share: configuration and the log sink.
type app struct {
	v       *viper.Viper
	cfgFile string
	logSink io.Closer
}

func newApp() *app {
	v := viper.New()
	v.SetDefault("library.backend", "csv")
	v.SetDefault("library.file", "")
	v.SetDefault("log.level", "warn")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size", 10)
	v.SetDefault("log.max_files", 5)
	v.SetDefault("ui.plain", false)
	return &app{v: v}
}

func (a *app) close() {
	if a.logSink != nil {
		_ = a.logSink.Close()
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bookshelf",
		Short:         "Manage a personal library catalog",
		Long:          `bookshelf keeps a list of books in a CSV file and lets you add, search, list and remove them from an interactive menu.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.readConfig(); err != nil {
				return err
			}
			return a.initLogging()
		},
		RunE: a.runMenu,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.cfgFile, "config", "c", "", "config file path (YAML)")
	pf.StringP("file", "f", "", "library path (default library.csv, library.db for sqlite)")
	pf.StringP("backend", "b", "csv", "storage backend: csv, sqlite, memory")
	pf.String("log-level", "warn", "log level: debug, info, warn, error")
	pf.String("log-file", "", "write logs to this rotating file instead of stderr")
	root.Flags().Bool("plain", false, "use line prompts even on a terminal")

	_ = a.v.BindPFlag("library.file", pf.Lookup("file"))
	_ = a.v.BindPFlag("library.backend", pf.Lookup("backend"))
	_ = a.v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = a.v.BindPFlag("log.file", pf.Lookup("log-file"))
	_ = a.v.BindPFlag("ui.plain", root.Flags().Lookup("plain"))

	root.AddCommand(a.listCmd(), a.copyCmd(), versionCmd())
	return root
}

// readConfig loads the config file given with --config, or
// <user config dir>/bookshelf/config.yaml when it exists.
func (a *app) readConfig() error {
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil
		}
		a.v.AddConfigPath(filepath.Join(dir, "bookshelf"))
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if a.cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

func (a *app) openStore() (store.Store, error) {
	return store.New(a.v.GetString("library.backend"), a.v.GetString("library.file"))
}

func (a *app) runMenu(cmd *cobra.Command, args []string) error {
	s, err := a.openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	var ui handler.Prompter
	if !a.v.GetBool("ui.plain") && isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd()) {
		ui = tui.New(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
	} else {
		ui = handler.WithContext(cmd.Context(), handler.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()))
	}
	return handler.New(s, ui, cmd.OutOrStdout()).Run(cmd.Context())
}

func (a *app) listCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print every book and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openStore()
			if err != nil {
				return err
			}
			defer s.Close()
			if _, err := s.EnsureExists(); err != nil {
				return err
			}
			books, err := s.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch output {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(books)
			case "table":
				fmt.Fprintln(out, handler.RenderBooks(books))
				return nil
			default:
				return fmt.Errorf("unknown output format %q (supported: table, json)", output)
			}
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "table", "output format: table, json")
	return cmd
}

func (a *app) copyCmd() *cobra.Command {
	var toBackend, toFile string
	cmd := &cobra.Command{
		Use:   "copy",
		Short: "Copy the library to another backend",
		Long: `Copy replaces the content of the destination library with the books of the
configured library. Example:

  bookshelf copy --to-backend sqlite --to-file library.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := a.openStore()
			if err != nil {
				return err
			}
			defer src.Close()
			dst, err := store.New(toBackend, toFile)
			if err != nil {
				return err
			}
			defer dst.Close()
			n, err := store.Copy(dst, src)
			if err != nil {
				return err
			}
			if toFile == "" {
				toFile = store.DefaultPath(toBackend)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Copied %d book(s) to %s (%s)\n", n, toFile, toBackend)
			return nil
		},
	}
	cmd.Flags().StringVar(&toBackend, "to-backend", "sqlite", "destination backend: csv, sqlite")
	cmd.Flags().StringVar(&toFile, "to-file", "", "destination path (default depends on the backend)")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "bookshelf %s\n", Version)
		},
	}
}
