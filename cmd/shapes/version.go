package main

import (
	"fmt"
	"runtime"

	"github.com/praetorian-inc/shapes/pkg/automaton"
	"github.com/praetorian-inc/shapes/pkg/cluster"
	"github.com/praetorian-inc/shapes/pkg/token"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long:  "Display the version of Shapes and the profile limits it was built with",
	RunE:  runVersion,
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Shapes v%s\n", version)
	fmt.Fprintf(out, "Commit: %s\n", commit)
	fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
	fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(out, "Defaults: cap %d, max length %d (limit %d), fit ratio %.1f\n",
		cluster.DefaultCap, cluster.DefaultMaxLength, cluster.MaxLengthLimit, token.DefaultFitRatio)
	fmt.Fprintf(out, "Automata: %d states max, %d cached\n",
		automaton.DefaultMaxStates, automaton.DefaultCacheSize)
	return nil
}
