package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newHDUsCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "hdus FILE",
		Short: "List the HDUs of a product file",
		Long: `Lists the extensions of a product file under the release root, with
their dimensions and row counts. The gzipped twin is probed when the
named file is absent.

  desigo hdus fuji/tiles/80605/20210205/coadd-0-80605-20210205.fits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := opts.openArchive(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			infos, err := a.DescribeFile(ctx, args[0])
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "NO\tNAME\tTYPE\tDIMS\tROWS")
			for _, h := range infos {
				name := h.Name
				if name == "" {
					name = "-"
				}
				rows := "-"
				if h.Type == "BINTABLE" || h.Type == "TABLE" {
					rows = fmt.Sprintf("%d x %d cols", h.Rows, h.Cols)
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", h.Index, name, h.Type, dimsString(h.Dims), rows)
			}
			return tw.Flush()
		},
	}
}

func dimsString(dims []int) string {
	if len(dims) == 0 {
		return "-"
	}
	parts := make([]string, len(dims))
	for i, d := range dims {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, " x ")
}
