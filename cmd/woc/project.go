package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssc-oscar/woc-go/internal/errutil"
)

func newProjectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project NAME",
		Short: "print a project's URL, head, and tail commits",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return projectCmd(cmd.OutOrStdout(), args[0])
	}
	return cmd
}

func projectCmd(out io.Writer, name string) (err error) {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer errutil.Close(store, &err)

	p := store.Project(name)
	fmt.Fprintf(out, "url %s\n", p.URL())

	if head, ok, err := p.Head(); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "head %s\n", head)
	}

	if tail, ok, err := p.Tail(); err != nil {
		return err
	} else if ok {
		fmt.Fprintf(out, "tail %s\n", tail)
	}

	authors, err := p.AuthorNames()
	if err != nil {
		return err
	}
	for _, a := range authors {
		fmt.Fprintf(out, "author %s\n", a)
	}
	return nil
}
