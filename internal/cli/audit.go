package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show the change trail",
	Long: `List audit entries for the current project, newest first. Filters
combine. --since accepts RFC 3339 or a plain date like 2026-08-01.`,
	Run: runAudit,
}

var (
	auditEntityType string
	auditAction     string
	auditSince      string
	auditFormat     string
	auditLimit      int
)

func init() {
	auditCmd.Flags().StringVar(&auditEntityType, "entity-type", "", "Filter by entity type, e.g. equipment")
	auditCmd.Flags().StringVar(&auditAction, "action", "", "Filter by action: created, updated, deleted, batch_tagged, synchronized")
	auditCmd.Flags().StringVar(&auditSince, "since", "", "Only entries at or after this time")
	auditCmd.Flags().StringVarP(&auditFormat, "format", "f", "text", "Output format: text or yaml")
	auditCmd.Flags().IntVar(&auditLimit, "limit", 0, "Show at most this many entries, 0 for all")
}

func runAudit(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	filter := models.AuditFilter{
		EntityType: auditEntityType,
		Action:     models.AuditAction(auditAction),
	}
	if auditSince != "" {
		since, err := parseSince(auditSince)
		if err != nil {
			exitError("%v", err)
		}
		filter.SinceUTC = since
	}

	entries, err := c.Recorder.Query(bgCtx, c.Config.ProjectID, filter)
	if err != nil {
		exitError("%v", err)
	}
	if auditLimit > 0 && len(entries) > auditLimit {
		entries = entries[:auditLimit]
	}

	switch auditFormat {
	case "yaml":
		out, err := yaml.Marshal(entries)
		if err != nil {
			exitError("%v", err)
		}
		fmt.Print(string(out))
	case "text":
		if len(entries) == 0 {
			fmt.Println("No audit entries")
			return
		}
		cyan := color.New(color.FgCyan)
		for _, e := range entries {
			cyan.Printf("%s  %-12s %s\n", e.TimestampUTC.Format(time.RFC3339), e.Action, e.ChangeSummary)
			fmt.Printf("    %s %s  by %s (%s)\n", e.EntityType, e.EntityID, e.PerformedBy, e.Source)
		}
	default:
		exitError("unknown format %q, expected text or yaml", auditFormat)
	}
}

func parseSince(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", value)
}
