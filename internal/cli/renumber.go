package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/sekkipras/eqcat/internal/renumber"
	"github.com/spf13/cobra"
)

var renumberCmd = &cobra.Command{
	Use:   "renumber",
	Short: "Bulk-rename equipment tags from a pattern",
	Long: `Rename every matching equipment item to a tag expanded from a pattern.
Patterns may contain {TYPE}, {AREA} and {SEQ:<mask>} placeholders:

  eqcat renumber --type Pump --pattern '{AREA}-{TYPE}-{SEQ:000}' --start 10 --increment 10

Nothing is written until the whole batch validates. Use --dry-run to see
the proposed tags, and --force to proceed past collisions with equipment
outside the batch.`,
	Run: runRenumber,
}

var (
	renumberPattern   string
	renumberStart     int
	renumberIncrement int
	renumberType      string
	renumberArea      string
	renumberTag       string
	renumberDryRun    bool
	renumberForce     bool
)

func init() {
	renumberCmd.Flags().StringVarP(&renumberPattern, "pattern", "p", "", "Tag pattern, e.g. '{AREA}-{TYPE}-{SEQ:000}' (required)")
	renumberCmd.Flags().IntVar(&renumberStart, "start", 1, "First sequence number")
	renumberCmd.Flags().IntVar(&renumberIncrement, "increment", 1, "Sequence step between items")
	renumberCmd.Flags().StringVarP(&renumberType, "type", "t", "", "Filter by equipment type")
	renumberCmd.Flags().StringVarP(&renumberArea, "area", "a", "", "Filter by area")
	renumberCmd.Flags().StringVar(&renumberTag, "tag", "", "Filter by tag wildcard")
	renumberCmd.Flags().BoolVarP(&renumberDryRun, "dry-run", "n", false, "Show proposed tags without writing")
	renumberCmd.Flags().BoolVar(&renumberForce, "force", false, "Apply despite collisions with equipment outside the batch")
	renumberCmd.MarkFlagRequired("pattern")
}

func runRenumber(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	coord := c.Coordinator()
	projectID := c.Config.ProjectID

	candidates, err := coord.Filter(bgCtx, projectID, renumber.FilterSpec{
		EquipmentType: renumberType,
		Area:          renumberArea,
		TagGlob:       renumberTag,
	})
	if err != nil {
		exitError("%v", err)
	}
	if len(candidates) == 0 {
		fmt.Println("No equipment matches the filter")
		return
	}

	preview, err := coord.GeneratePreview(candidates, renumber.PatternSpec{
		Pattern:     renumberPattern,
		StartNumber: renumberStart,
		Increment:   renumberIncrement,
	})
	if err != nil {
		exitError("%v", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CURRENT\t\tPROPOSED")
	for _, cand := range preview {
		fmt.Fprintf(w, "%s\t->\t%s\n", cand.CurrentTag, cand.ProposedTag)
	}
	w.Flush()

	report, err := coord.Validate(bgCtx, projectID, preview)
	if err != nil {
		exitError("%v", err)
	}
	printConflicts(report)

	if renumberDryRun {
		fmt.Printf("\nDry run, %d item(s) would be renamed\n", len(preview))
		return
	}
	if len(report.DuplicateTags) > 0 {
		exitError("batch produces duplicate tags, adjust the pattern or numbering")
	}
	if len(report.StoreConflicts) > 0 && !renumberForce {
		exitError("proposed tags collide with existing equipment, re-run with --force to proceed")
	}

	result, err := coord.Apply(bgCtx, projectID, preview, renumber.ApplyOptions{Override: renumberForce})
	if err != nil {
		for _, item := range result.Errors {
			color.Red("  %s: %v", item.CurrentTag, item.Err)
		}
		exitError("renumbering rolled back: %v", err)
	}

	color.Green("\nRenamed %d item(s)", result.SuccessCount)
}

func printConflicts(report renumber.ConflictReport) {
	if report.Clean() {
		return
	}
	fmt.Println()
	for _, tag := range report.DuplicateTags {
		color.Red("duplicate within batch: %s", tag)
	}
	for _, sc := range report.StoreConflicts {
		color.Yellow("collides with existing %s: %s", sc.ExistingTag, sc.ProposedTag)
	}
}
