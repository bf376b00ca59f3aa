package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssc-oscar/woc-go/internal/errutil"
)

func newAuthorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "author IDENT",
		Short: "print an author's projects and changed files",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return authorCmd(cmd.OutOrStdout(), args[0])
	}
	return cmd
}

func authorCmd(out io.Writer, ident string) (err error) {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer errutil.Close(store, &err)

	a := store.Author([]byte(ident))

	projects, err := a.ProjectNames()
	if err != nil {
		return err
	}
	for _, p := range projects {
		fmt.Fprintf(out, "project %s\n", p)
	}

	files, err := a.FileNames()
	if err != nil {
		return err
	}
	for _, f := range files {
		fmt.Fprintf(out, "file %s\n", f)
	}
	return nil
}
