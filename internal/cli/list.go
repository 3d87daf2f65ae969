package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sekkipras/eqcat/internal/models"
	"github.com/sekkipras/eqcat/internal/renumber"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List equipment in the catalog",
	Long: `List active equipment for the current project. Filters combine; a tag
filter accepts * as a wildcard and matches case-insensitively.`,
	Run: runList,
}

var (
	listType   string
	listArea   string
	listTag    string
	listFormat string
)

func init() {
	listCmd.Flags().StringVarP(&listType, "type", "t", "", "Filter by equipment type")
	listCmd.Flags().StringVarP(&listArea, "area", "a", "", "Filter by area")
	listCmd.Flags().StringVar(&listTag, "tag", "", "Filter by tag wildcard, e.g. 'P-1*'")
	listCmd.Flags().StringVarP(&listFormat, "format", "f", "text", "Output format: text or yaml")
}

func runList(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	candidates, err := c.Coordinator().Filter(bgCtx, c.Config.ProjectID, renumber.FilterSpec{
		EquipmentType: listType,
		Area:          listArea,
		TagGlob:       listTag,
	})
	if err != nil {
		exitError("%v", err)
	}

	switch listFormat {
	case "yaml":
		equipment := make([]models.Equipment, 0, len(candidates))
		for _, cand := range candidates {
			eq, err := c.Store.GetByID(bgCtx, cand.EquipmentID)
			if err != nil {
				exitError("%v", err)
			}
			equipment = append(equipment, eq)
		}
		out, err := yaml.Marshal(equipment)
		if err != nil {
			exitError("%v", err)
		}
		fmt.Print(string(out))
	case "text":
		if len(candidates) == 0 {
			fmt.Println("No equipment found")
			return
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "TAG\tTYPE\tAREA")
		for _, cand := range candidates {
			fmt.Fprintf(w, "%s\t%s\t%s\n", cand.CurrentTag, cand.EquipmentType, cand.Area)
		}
		w.Flush()
		fmt.Printf("\n%d item(s)\n", len(candidates))
	default:
		exitError("unknown format %q, expected text or yaml", listFormat)
	}
}
