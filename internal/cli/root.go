// Package cli implements the command-line interface for the equipment
// catalog.
package cli

import (
	"fmt"
	"os"

	"github.com/sekkipras/eqcat/internal/audit"
	"github.com/sekkipras/eqcat/internal/config"
	"github.com/sekkipras/eqcat/internal/renumber"
	"github.com/sekkipras/eqcat/internal/store"
	"github.com/spf13/cobra"
)

// cmdContext holds common resources for CLI commands
type cmdContext struct {
	Config   *config.Config
	Store    *store.Store
	Recorder *audit.Recorder
}

// Close releases resources held by cmdContext
func (c *cmdContext) Close() {
	if c.Store != nil {
		c.Store.Close()
	}
}

// Coordinator builds the renumbering coordinator over the open store
func (c *cmdContext) Coordinator() *renumber.Coordinator {
	return renumber.NewCoordinator(c.Store, c.Config)
}

// initContext initializes config, store, and audit recorder
func initContext() *cmdContext {
	cfg, err := config.Load()
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to open store: %v", err)
	}

	if err := st.CheckProject(cfg.ProjectID); err != nil {
		st.Close()
		exitError("%v", err)
	}

	return &cmdContext{
		Config:   cfg,
		Store:    st,
		Recorder: audit.NewRecorder(st, cfg),
	}
}

// initContextWithMigrations initializes the context and runs migrations
func initContextWithMigrations() *cmdContext {
	ctx := initContext()

	if err := ctx.Store.RunMigrations(); err != nil {
		ctx.Close()
		exitError("failed to run migrations: %v", err)
	}

	return ctx
}

var rootCmd = &cobra.Command{
	Use:   "eqcat",
	Short: "Equipment catalog",
	Long: `eqcat manages a per-project catalog of engineering equipment: tags,
types, areas, process links and source drawings. It can bulk-rename
equipment tags from a declarative pattern, project the catalog into
relationship trees, and keeps an append-only audit trail of every change.`,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(linkCmd)
	rootCmd.AddCommand(unlinkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(renumberCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(auditCmd)
	rootCmd.AddCommand(drawingCmd)
}

// exitError prints an error and exits
func exitError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(1)
}
