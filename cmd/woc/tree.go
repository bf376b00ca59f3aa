package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/internal/errutil"
	"github.com/ssc-oscar/woc-go/oid"
)

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree SHA",
		Short: "list a tree's direct entries",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return treeCmd(cmd.OutOrStdout(), args[0])
	}
	return cmd
}

func treeCmd(out io.Writer, sha string) (err error) {
	id, err := oid.FromHex(sha)
	if err != nil {
		return xerrors.Errorf("%s: %w", sha, err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer errutil.Close(store, &err)

	entries, err := store.Tree(id).Entries()
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%s %s\t%s\n", e.Mode, e.SHA, e.Name)
	}
	return nil
}
