package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sekkipras/eqcat/internal/audit"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/spf13/cobra"
)

var drawingCmd = &cobra.Command{
	Use:   "drawing",
	Short: "Manage source drawings",
}

var drawingAddCmd = &cobra.Command{
	Use:   "add <number>",
	Short: "Register a drawing",
	Args:  cobra.ExactArgs(1),
	Run:   runDrawingAdd,
}

var drawingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered drawings",
	Run:   runDrawingList,
}

var drawingTitle string

func init() {
	drawingAddCmd.Flags().StringVar(&drawingTitle, "title", "", "Drawing title")
	drawingCmd.AddCommand(drawingAddCmd)
	drawingCmd.AddCommand(drawingListCmd)
}

func runDrawingAdd(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	number := args[0]
	if _, err := c.Store.GetDrawingByNumber(bgCtx, c.Config.ProjectID, number); err == nil {
		exitError("drawing %s already exists", number)
	}

	d := models.Drawing{
		ID:        uuid.NewString(),
		ProjectID: c.Config.ProjectID,
		Number:    number,
		Title:     drawingTitle,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.Store.CreateDrawing(bgCtx, d); err != nil {
		exitError("%v", err)
	}

	entry := audit.NewEntry(c.Config.ProjectID, "drawing", d.ID, models.ActionCreated,
		"registered drawing "+number, nil, map[string]any{"number": d.Number, "title": d.Title})
	if err := c.Recorder.Record(bgCtx, entry); err != nil {
		exitError("%v", err)
	}

	color.Green("Registered drawing %s", number)
}

func runDrawingList(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	drawings, err := c.Store.ListDrawings(bgCtx, c.Config.ProjectID)
	if err != nil {
		exitError("%v", err)
	}
	if len(drawings) == 0 {
		fmt.Println("No drawings registered")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NUMBER\tTITLE")
	for _, d := range drawings {
		fmt.Fprintf(w, "%s\t%s\n", d.Number, d.Title)
	}
	w.Flush()
}
