// Package main provides the dbrowse terminal client: a cobra command
// line front end around the pager library, with a bubbletea TUI for
// scrolling through tables and query results.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"dbrowse/adapters"
	"dbrowse/core"
	"dbrowse/internal/logger"
	"dbrowse/pager"
)

var (
	flagType        string
	flagURL         string
	flagConnections string
	flagQuery       string
	flagPageSize    int
)

var rootCmd = &cobra.Command{
	Use:   "dbrowse [connection]",
	Short: "Interactive database browser",
	Long: `dbrowse opens a terminal browser over a database connection. Rows are
loaded page by page as you scroll, with background prefetching, so even
very large tables open instantly.

Connections are referenced by name from the connections file, or given
ad hoc with --type and --url.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		params, err := resolveParams(args)
		if err != nil {
			return err
		}

		adapter, err := new(adapters.Mux).GetAdapter(params.Expand().Type)
		if err != nil {
			return fmt.Errorf("Mux.GetAdapter: %w", err)
		}

		var opts []pager.Option
		if flagPageSize > 0 {
			opts = append(opts, pager.WithPageSize(flagPageSize))
		}

		model := newBrowser(params, adapter, logger.New(""), flagQuery, opts)

		program := tea.NewProgram(model, tea.WithAltScreen())
		final, err := program.Run()
		if err != nil {
			return fmt.Errorf("program.Run: %w", err)
		}
		if b, ok := final.(*browser); ok && b.fatal != nil {
			return b.fatal
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVar(&flagType, "type", "", fmt.Sprintf("database type for ad hoc connections (%s)", strings.Join(new(adapters.Mux).Types(), ", ")))
	rootCmd.Flags().StringVar(&flagURL, "url", "", "connection URL for ad hoc connections")
	rootCmd.Flags().StringVar(&flagConnections, "connections", "", "path to the connections file (default: <user config dir>/dbrowse/connections.yaml)")
	rootCmd.Flags().StringVar(&flagQuery, "query", "", "open a query result view instead of the table list")
	rootCmd.Flags().IntVar(&flagPageSize, "page-size", 0, "rows fetched per page")
}

func resolveParams(args []string) (*core.ConnectionParams, error) {
	if flagURL != "" {
		if flagType == "" {
			return nil, errors.New("--type is required together with --url")
		}

		name := "adhoc"
		if len(args) > 0 {
			name = args[0]
		}
		return &core.ConnectionParams{Name: name, Type: flagType, URL: flagURL}, nil
	}

	if len(args) == 0 {
		return nil, errors.New("a connection name or --url is required")
	}

	store, err := loadConnections(flagConnections)
	if err != nil {
		return nil, err
	}
	return store.Find(args[0])
}
