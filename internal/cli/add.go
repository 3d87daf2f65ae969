package cli

import (
	"context"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/sekkipras/eqcat/internal/audit"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <tag>",
	Short: "Add an equipment record",
	Args:  cobra.ExactArgs(1),
	Run:   runAdd,
}

var (
	addType    string
	addArea    string
	addDesc    string
	addDrawing string
)

func init() {
	addCmd.Flags().StringVarP(&addType, "type", "t", "", "Equipment type, e.g. Pump (required)")
	addCmd.Flags().StringVarP(&addArea, "area", "a", "", "Area / zone")
	addCmd.Flags().StringVarP(&addDesc, "desc", "d", "", "Description")
	addCmd.Flags().StringVar(&addDrawing, "drawing", "", "Source drawing number")
	addCmd.MarkFlagRequired("type")
}

func runAdd(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	tag := args[0]
	projectID := c.Config.ProjectID

	if _, err := c.Store.GetByTag(bgCtx, projectID, tag); err == nil {
		exitError("equipment with tag %s already exists", tag)
	}

	drawingID := ""
	if addDrawing != "" {
		d, err := c.Store.GetDrawingByNumber(bgCtx, projectID, addDrawing)
		if err != nil {
			exitError("%v", err)
		}
		drawingID = d.ID
	}

	now := time.Now().UTC()
	eq := models.Equipment{
		ID:            uuid.NewString(),
		ProjectID:     projectID,
		Tag:           tag,
		EquipmentType: addType,
		Description:   addDesc,
		Area:          addArea,
		DrawingID:     drawingID,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := c.Store.CreateEquipment(bgCtx, eq); err != nil {
		exitError("%v", err)
	}

	entry := audit.NewEntry(projectID, "equipment", eq.ID, models.ActionCreated,
		"created "+tag, nil, eq.Snapshot())
	if err := c.Recorder.Record(bgCtx, entry); err != nil {
		exitError("%v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Added %s", tag)
	if addArea != "" {
		green.Printf(" (area %s)", addArea)
	}
	green.Println()
}
