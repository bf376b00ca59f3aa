package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/internal/errutil"
	"github.com/ssc-oscar/woc-go/oid"
)

func newCommitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "commit SHA",
		Short: "print a commit's header and first-line message",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return commitCmd(cmd.OutOrStdout(), args[0])
	}
	return cmd
}

func commitCmd(out io.Writer, sha string) (err error) {
	id, err := oid.FromHex(sha)
	if err != nil {
		return xerrors.Errorf("%s: %w", sha, err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer errutil.Close(store, &err)

	c := store.Commit(id)
	tree, err := c.Tree()
	if err != nil {
		return err
	}
	parents, err := c.ParentSHAs()
	if err != nil {
		return err
	}
	author, err := c.Author()
	if err != nil {
		return err
	}
	msg, err := c.Message()
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "tree %s\n", tree.SHA())
	for _, p := range parents {
		fmt.Fprintf(out, "parent %s\n", p)
	}
	fmt.Fprintf(out, "author %s\n", author)
	fmt.Fprintln(out)
	fmt.Fprintln(out, msg)
	return nil
}
