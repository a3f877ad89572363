package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/hupe1980/desigo"
)

func newZcatCommand(opts *rootOptions) *cobra.Command {
	var (
		jsonOut  bool
		goodOnly bool
	)

	cmd := &cobra.Command{
		Use:   "zcat FILE",
		Short: "Print a redshift catalog",
		Long: `Prints the best-fit rows of a zbest or redrock catalog. Naming a
coadd or spectra file prints the catalog sitting next to it instead,
whichever of the zbest and redrock spellings the release carries.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := opts.openArchive(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			zb, err := readCatalog(ctx, a, args[0])
			if err != nil {
				return err
			}

			rows := zb.Rows
			if goodOnly {
				good := zb.Good()
				rows = make([]desigo.ZbestRow, len(good))
				for i, r := range good {
					rows[i] = zb.Rows[r]
				}
			}

			if jsonOut {
				enc := json.NewEncoder(cmd.OutOrStdout())
				for _, r := range rows {
					if err := enc.Encode(zcatRow{
						TargetID:  r.TargetID,
						Spectype:  r.Spectype,
						Subtype:   r.Subtype,
						Z:         r.Z,
						ZErr:      r.ZErr,
						ZWarn:     r.ZWarn,
						DeltaChi2: r.DeltaChi2,
					}); err != nil {
						return err
					}
				}
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 8, 2, ' ', 0)
			fmt.Fprintln(tw, "TARGETID\tSPECTYPE\tSUBTYPE\tZ\tZERR\tZWARN\tDELTACHI2")
			for _, r := range rows {
				subtype := r.Subtype
				if subtype == "" {
					subtype = "-"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%.6f\t%.2e\t%d\t%.1f\n",
					r.TargetID, r.Spectype, subtype, r.Z, r.ZErr, r.ZWarn, r.DeltaChi2)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "emit one JSON object per row")
	cmd.Flags().BoolVar(&goodOnly, "good", false, "only rows without fit warnings (ZWARN == 0)")
	return cmd
}

// zcatRow is the JSON shape of one catalog row.
type zcatRow struct {
	TargetID  int64   `json:"targetid"`
	Spectype  string  `json:"spectype"`
	Subtype   string  `json:"subtype,omitempty"`
	Z         float64 `json:"z"`
	ZErr      float64 `json:"zerr"`
	ZWarn     int64   `json:"zwarn"`
	DeltaChi2 float64 `json:"deltachi2"`
}

// readCatalog reads a catalog by name, or the catalog sibling of a
// spectra product when a coadd or spectra name is given.
func readCatalog(ctx context.Context, a *desigo.Archive, name string) (*desigo.Zbest, error) {
	if desigo.CatalogCandidatesFor(name) != nil {
		return a.ReadZbestFor(ctx, name)
	}
	return a.ReadZbestFile(ctx, name)
}
