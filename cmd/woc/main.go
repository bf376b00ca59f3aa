package main

import (
	"fmt"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ssc-oscar/woc-go/internal/env"
	"github.com/ssc-oscar/woc-go/woc"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "woc",
		Short:         "inspect World of Code sharded Git history",
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	cmd.AddCommand(newCommitCmd())
	cmd.AddCommand(newTreeCmd())
	cmd.AddCommand(newBlobCmd())
	cmd.AddCommand(newProjectCmd())
	cmd.AddCommand(newAuthorCmd())

	return cmd
}

// openStore opens a Store from the real filesystem and process
// environment, the same way every subcommand needs one.
func openStore() (*woc.Store, error) {
	return woc.Open(woc.StoreOptions{
		Fs:  afero.NewOsFs(),
		Env: env.NewFromOS(),
	})
}
