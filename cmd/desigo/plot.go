package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/desigo"
	"github.com/hupe1980/desigo/specplot"
)

func newPlotCommand(opts *rootOptions) *cobra.Command {
	var (
		row      int
		targetID int64
		outPath  string
		smooth   int
		model    bool
	)

	cmd := &cobra.Command{
		Use:   "plot FILE",
		Short: "Render a spectrum to an image",
		Long: `Renders one spectrum of a coadd or spectra file, one colored line per
camera band. With --model, the best-fit template from the catalog next
to the file is drawn on top.

The output format follows the --out extension (.png, .svg, .pdf).`,
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

			if cmd.Flags().Changed("target") {
				if row = rowOfTarget(s, targetID); row < 0 {
					return fmt.Errorf("target %d: %w", targetID, desigo.ErrNotFound)
				}
			}

			var overlay map[string][]float64
			if model {
				zb, err := a.ReadZbestFor(ctx, args[0])
				if err != nil {
					return err
				}
				fit, ok := zb.Best(s.Fibermap.Rows[row].TargetID)
				if !ok {
					return fmt.Errorf("no fit for target %d: %w", s.Fibermap.Rows[row].TargetID, desigo.ErrNotFound)
				}
				if overlay, err = a.BestFitModel(ctx, s, fit, row); err != nil {
					return err
				}
			}

			p, err := specplot.Overlay(s, row, overlay, specplot.WithSmoothing(smooth))
			if err != nil {
				return err
			}
			if err := specplot.Save(p, outPath); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "fibermap row to plot")
	cmd.Flags().Int64Var(&targetID, "target", 0, "plot the first row with this TARGETID instead of --row")
	cmd.Flags().StringVar(&outPath, "out", "spectrum.png", "output image path")
	cmd.Flags().IntVar(&smooth, "smooth", 0, "moving average window for the data lines")
	cmd.Flags().BoolVar(&model, "model", false, "overlay the best-fit template model")
	return cmd
}

func rowOfTarget(s *desigo.Spectra, id int64) int {
	for i, r := range s.Fibermap.Rows {
		if r.TargetID == id {
			return i
		}
	}
	return -1
}
