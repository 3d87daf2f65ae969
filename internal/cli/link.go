package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sekkipras/eqcat/internal/audit"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/sekkipras/eqcat/internal/renumber"
	"github.com/spf13/cobra"
)

var linkCmd = &cobra.Command{
	Use:   "link <from-tag> <to-tag>",
	Short: "Connect two equipment items in process-flow order",
	Long: `Record that flow leaves <from-tag> and enters <to-tag>. Both sides of
the connection are updated in a single transaction.`,
	Args: cobra.ExactArgs(2),
	Run:  runLink,
}

var unlinkCmd = &cobra.Command{
	Use:   "unlink <from-tag> <to-tag>",
	Short: "Remove the process-flow connection between two equipment items",
	Args:  cobra.ExactArgs(2),
	Run:   runUnlink,
}

func runLink(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	from, to := resolvePair(bgCtx, c, args[0], args[1])

	err := withLinkTx(bgCtx, c, from, to, func(from, to *models.Equipment) {
		from.DownstreamID = to.ID
		to.UpstreamID = from.ID
	}, fmt.Sprintf("linked %s -> %s", from.Tag, to.Tag))
	if err != nil {
		exitError("%v", err)
	}

	color.Green("Linked %s -> %s", from.Tag, to.Tag)
}

func runUnlink(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	from, to := resolvePair(bgCtx, c, args[0], args[1])
	if from.DownstreamID != to.ID && to.UpstreamID != from.ID {
		exitError("%s and %s are not linked", from.Tag, to.Tag)
	}

	err := withLinkTx(bgCtx, c, from, to, func(from, to *models.Equipment) {
		if from.DownstreamID == to.ID {
			from.DownstreamID = ""
		}
		if to.UpstreamID == from.ID {
			to.UpstreamID = ""
		}
	}, fmt.Sprintf("unlinked %s -> %s", from.Tag, to.Tag))
	if err != nil {
		exitError("%v", err)
	}

	color.Green("Unlinked %s -> %s", from.Tag, to.Tag)
}

func resolvePair(ctx context.Context, c *cmdContext, fromTag, toTag string) (models.Equipment, models.Equipment) {
	if fromTag == toTag {
		exitError("cannot link %s to itself", fromTag)
	}
	from, err := c.Store.GetByTag(ctx, c.Config.ProjectID, fromTag)
	if err != nil {
		exitError("%v", err)
	}
	to, err := c.Store.GetByTag(ctx, c.Config.ProjectID, toTag)
	if err != nil {
		exitError("%v", err)
	}
	return from, to
}

// withLinkTx applies mutate to both endpoints and persists them together
// with their audit entries in one transaction.
func withLinkTx(ctx context.Context, c *cmdContext, from, to models.Equipment, mutate func(from, to *models.Equipment), summary string) error {
	tx, err := c.Store.Begin(ctx)
	if err != nil {
		return err
	}

	beforeFrom := from.Snapshot()
	beforeTo := to.Snapshot()
	mutate(&from, &to)
	now := time.Now().UTC()
	from.UpdatedAt = now
	to.UpdatedAt = now

	commit := func(tx renumber.EquipmentTx) error {
		for _, side := range []struct {
			eq     models.Equipment
			before map[string]any
		}{{from, beforeFrom}, {to, beforeTo}} {
			if err := tx.Update(ctx, side.eq); err != nil {
				return err
			}
			entry := audit.NewEntry(c.Config.ProjectID, "equipment", side.eq.ID, models.ActionUpdated,
				summary, side.before, side.eq.Snapshot())
			c.Recorder.Stamp(&entry)
			if err := tx.RecordAudit(ctx, entry); err != nil {
				return err
			}
		}
		return tx.Commit()
	}

	if err := commit(tx); err != nil {
		tx.Rollback()
		return err
	}
	return nil
}
