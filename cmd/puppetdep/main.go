// Command puppetdep resolves a Puppetfile-style manifest against a
// Puppet Forge-shaped registry.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "puppetdep",
	Short: "Resolve transitive module dependencies for a Puppetfile-style manifest",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
