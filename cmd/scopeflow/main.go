package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/scopeflow/scopeflow/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "scopeflow",
	Short: "Reconstruct lexical block structure from control-flow graphs",
	Long: `scopeflow rebuilds the nested block structure of a program from a
region-annotated control-flow graph: nodes are laid out in a deterministic
order that respects forward edges and keeps fall-through runs contiguous,
then folded into a tree of scopes, basic blocks, and exception-handler
blocks matching each node's lexical region chain.

Input is one or more *.cfg.yaml documents describing CFG nodes, edges,
and regions.`,
	Version: version.Short(),
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(NewStructureCmd())
	rootCmd.AddCommand(NewInitCmd())
	rootCmd.AddCommand(NewVersionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
