package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/sekkipras/eqcat/internal/config"
	"github.com/sekkipras/eqcat/internal/store"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an equipment catalog workspace",
	Long: `Create a .eqcat directory in the current directory with the workspace
configuration and an empty catalog database.`,
	Run: runInit,
}

var (
	initProject  string
	initOperator string
)

func init() {
	initCmd.Flags().StringVarP(&initProject, "project", "p", "", "Project identifier (required)")
	initCmd.Flags().StringVar(&initOperator, "operator", "", "Operator name stamped onto audit entries")
	initCmd.MarkFlagRequired("project")
}

func runInit(cmd *cobra.Command, args []string) {
	cfg, err := config.Initialize(initProject, initOperator)
	if err != nil {
		exitError("%v", err)
	}

	st, err := store.New(cfg.DatabasePath())
	if err != nil {
		exitError("failed to create store: %v", err)
	}
	defer st.Close()

	if err := st.Initialize(); err != nil {
		exitError("failed to initialize store: %v", err)
	}
	if err := st.SetValue("project_id", initProject); err != nil {
		exitError("failed to record project: %v", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("Initialized catalog for project %s\n", initProject)
	fmt.Printf(" workspace: %s\n", cfg.WorkspacePath())
}
