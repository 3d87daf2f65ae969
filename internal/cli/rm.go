package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/sekkipras/eqcat/internal/audit"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <tag>",
	Short: "Retire an equipment record",
	Long: `Mark equipment inactive. Retired equipment is excluded from listing,
renumbering and hierarchy views; its history stays in the audit trail.`,
	Args: cobra.ExactArgs(1),
	Run:  runRm,
}

func runRm(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	eq, err := c.Store.GetByTag(bgCtx, c.Config.ProjectID, args[0])
	if err != nil {
		exitError("%v", err)
	}
	if !eq.IsActive {
		exitError("%s is already retired", eq.Tag)
	}

	before := eq.Snapshot()
	eq.IsActive = false
	eq.UpdatedAt = time.Now().UTC()
	if err := c.Store.Update(bgCtx, eq); err != nil {
		exitError("%v", err)
	}

	entry := audit.NewEntry(c.Config.ProjectID, "equipment", eq.ID, models.ActionDeleted,
		"retired "+eq.Tag, before, nil)
	if err := c.Recorder.Record(bgCtx, entry); err != nil {
		exitError("%v", err)
	}

	color.Yellow("Retired %s", eq.Tag)
}
