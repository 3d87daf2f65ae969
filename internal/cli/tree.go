package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sekkipras/eqcat/internal/hierarchy"
	"github.com/sekkipras/eqcat/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Show the catalog as a relationship tree",
	Long: `Project the catalog into a tree. The grouping is picked with --by:

  area     area, then type, then tags
  type     type, then tags
  drawing  source drawing, then tags
  flow     upstream/downstream process order`,
	Run: runTree,
}

var (
	treeBy     string
	treeFormat string
)

func init() {
	treeCmd.Flags().StringVar(&treeBy, "by", "area", "Grouping: area, type, drawing or flow")
	treeCmd.Flags().StringVarP(&treeFormat, "format", "f", "text", "Output format: text or yaml")
}

func runTree(cmd *cobra.Command, args []string) {
	bgCtx := context.Background()
	c := initContextWithMigrations()
	defer c.Close()

	equipment, err := c.Store.FindByProject(bgCtx, c.Config.ProjectID)
	if err != nil {
		exitError("%v", err)
	}
	drawings, err := c.Store.ListDrawings(bgCtx, c.Config.ProjectID)
	if err != nil {
		exitError("%v", err)
	}

	nodes, err := hierarchy.Build(equipment, nil, drawings, models.HierarchyMode(treeBy))
	if err != nil {
		exitError("%v", err)
	}

	switch treeFormat {
	case "yaml":
		out, err := yaml.Marshal(nodes)
		if err != nil {
			exitError("%v", err)
		}
		fmt.Print(string(out))
	case "text":
		if len(nodes) == 0 {
			fmt.Println("Catalog is empty")
			return
		}
		for _, node := range nodes {
			printNode(node, 0)
		}
	default:
		exitError("unknown format %q, expected text or yaml", treeFormat)
	}
}

func printNode(node models.HierarchyNode, depth int) {
	indent := strings.Repeat("  ", depth)
	if node.Equipment != nil {
		fmt.Printf("%s- %s\n", indent, node.Label)
	} else {
		fmt.Printf("%s%s (%d)\n", indent, node.Label, node.ChildCount)
	}
	for _, child := range node.Children {
		printNode(child, depth+1)
	}
}
