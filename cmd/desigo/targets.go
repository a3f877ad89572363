package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/spf13/cobra"

	"github.com/hupe1980/desigo"
	"github.com/hupe1980/desigo/targetcut"
)

func newTargetsCommand(opts *rootOptions) *cobra.Command {
	var cut string

	cmd := &cobra.Command{
		Use:   "targets FILE",
		Short: "Print the fibermap of a spectra product",
		Long: `Prints the targets of a coadd or spectra file: identifier, sky
position and targeting classes, one line per fibermap row.

A --cut narrows the listing to a target class selection, e.g. "QSO",
"ELG,QSO" or "bgs:BGS_BRIGHT".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := opts.openArchive(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.ReadSpectraFile(ctx, args[0])
			if err != nil {
				return err
			}

			if cut != "" {
				scheme, want, err := targetcut.ParseCut(cut)
				if err != nil {
					return err
				}
				sel := targetcut.Cut(schemeColumn(scheme, s.Fibermap), want)
				if s, err = s.Select(sel.Rows()); err != nil {
					return err
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "TARGETID\tRA\tDEC\tFIBER\tCLASSES")
			for _, row := range s.Fibermap.Rows {
				classes := strings.Join(targetcut.Desi.Names(targetcut.Mask(row.DesiTarget)), ",")
				if classes == "" {
					classes = "-"
				}
				fmt.Fprintf(tw, "%d\t%0.2d\t%+0.1d\t%d\t%s\n",
					row.TargetID, sexa.FmtRA(row.RA()), sexa.FmtAngle(row.Dec()), row.Fiber, classes)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&cut, "cut", "", `target class selection, e.g. "QSO,ELG" or "bgs:BGS_BRIGHT"`)
	return cmd
}

// schemeColumn picks the fibermap column a cut scheme interprets.
func schemeColumn(scheme *targetcut.Scheme, fm *desigo.Fibermap) []int64 {
	switch scheme.Column {
	case "BGS_TARGET":
		return fm.BGSTargets()
	case "MWS_TARGET":
		return fm.MWSTargets()
	default:
		return fm.DesiTargets()
	}
}
