package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"vuedoc/internal/pipeline"
)

var (
	updateBase  string
	updateForce bool
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Incrementally update stored components and documentation from git changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		sync, err := pipeline.NewIncrementalSync(cfg, newLogger(cfg), os.Stdout)
		if err != nil {
			return err
		}
		res, err := sync.Run(cmd.Context(), updateBase, updateForce)
		if err != nil {
			return err
		}
		if res.RunID == "" {
			return nil
		}
		printResult(res)
		return nil
	},
}

func printResult(res *pipeline.Result) {
	okColor.Print("Documentation updated: ")
	fmt.Printf("%d components, %d re-documented, %d removed (sections: %d updated, %d added, %d removed)\n",
		res.Components, res.Affected, res.Removed, res.Update.Updated, res.Update.Added, res.Update.Removed)
}

func init() {
	updateCmd.Flags().StringVar(&updateBase, "base", "HEAD", "Git reference to diff the working tree against")
	updateCmd.Flags().BoolVar(&updateForce, "force", false, "Run a full sync when git reports no changes")
}
