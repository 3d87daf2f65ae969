package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/sekkipras/eqcat/internal/audit"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set <tag>",
	Short: "Update fields of an equipment record",
	Args:  cobra.ExactArgs(1),
	Run:   runSet,
}

var (
	setType    string
	setArea    string
	setDesc    string
	setDrawing string
)

func init() {
	setCmd.Flags().StringVarP(&setType, "type", "t", "", "Equipment type")
	setCmd.Flags().StringVarP(&setArea, "area", "a", "", "Area / zone")
	setCmd.Flags().StringVarP(&setDesc, "desc", "d", "", "Description")
	setCmd.Flags().StringVar(&setDrawing, "drawing", "", "Source drawing number")
}

func runSet(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	eq, err := c.Store.GetByTag(bgCtx, c.Config.ProjectID, args[0])
	if err != nil {
		exitError("%v", err)
	}

	before := eq.Snapshot()
	changed := false

	if cmd.Flags().Changed("type") {
		eq.EquipmentType = setType
		changed = true
	}
	if cmd.Flags().Changed("area") {
		eq.Area = setArea
		changed = true
	}
	if cmd.Flags().Changed("desc") {
		eq.Description = setDesc
		changed = true
	}
	if cmd.Flags().Changed("drawing") {
		d, err := c.Store.GetDrawingByNumber(bgCtx, c.Config.ProjectID, setDrawing)
		if err != nil {
			exitError("%v", err)
		}
		eq.DrawingID = d.ID
		changed = true
	}

	if !changed {
		exitError("nothing to update, pass at least one of --type, --area, --desc, --drawing")
	}

	eq.UpdatedAt = time.Now().UTC()
	if err := c.Store.Update(bgCtx, eq); err != nil {
		exitError("%v", err)
	}

	entry := audit.NewEntry(c.Config.ProjectID, "equipment", eq.ID, models.ActionUpdated,
		"updated "+eq.Tag, before, eq.Snapshot())
	if err := c.Recorder.Record(bgCtx, entry); err != nil {
		exitError("%v", err)
	}

	color.Green("Updated %s", eq.Tag)
}
