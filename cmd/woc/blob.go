package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/ssc-oscar/woc-go/internal/errutil"
	"github.com/ssc-oscar/woc-go/oid"
)

func newBlobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blob SHA",
		Short: "print a blob's content",
		Args:  cobra.ExactArgs(1),
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return blobCmd(cmd.OutOrStdout(), args[0])
	}
	return cmd
}

func blobCmd(out io.Writer, sha string) (err error) {
	id, err := oid.FromHex(sha)
	if err != nil {
		return xerrors.Errorf("%s: %w", sha, err)
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer errutil.Close(store, &err)

	data, err := store.Blob(id).Data()
	if err != nil {
		return err
	}
	fmt.Fprint(out, string(data))
	return nil
}
