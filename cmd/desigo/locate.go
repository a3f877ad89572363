package main

import (
	"errors"
	"fmt"

	"github.com/soniakeys/unit"
	"github.com/spf13/cobra"

	"github.com/hupe1980/desigo"
	"github.com/hupe1980/desigo/healpix"
)

func newLocateCommand(opts *rootOptions) *cobra.Command {
	var (
		tile  int
		night int
		petal int
		ra    float64
		dec   float64
		nside int
	)

	cmd := &cobra.Command{
		Use:   "locate",
		Short: "Resolve the product paths of a tile petal or a sky position",
		Long: `Prints the release paths of the files holding spectra, either for one
petal of a tile observation or for the nested healpix pixel that covers
a sky position (coordinates in degrees).

  desigo locate --tile 80605 --night 20210205 --petal 0
  desigo locate --ra 150.5 --dec 2.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.specprod == "" {
				return fmt.Errorf("%s: %w", desigo.EnvSpecprod, desigo.ErrMissingEnv)
			}
			rel := desigo.Release{Prod: opts.specprod}
			out := cmd.OutOrStdout()

			tileMode := cmd.Flags().Changed("tile")
			skyMode := cmd.Flags().Changed("ra") || cmd.Flags().Changed("dec")
			switch {
			case tileMode == skyMode:
				return errors.New("need either --tile/--night or --ra/--dec")

			case tileMode:
				if !cmd.Flags().Changed("night") {
					return errors.New("--tile needs --night")
				}
				petals := []int{petal}
				if petal < 0 {
					petals = make([]int, desigo.NumPetals)
					for i := range petals {
						petals[i] = i
					}
				}
				for _, p := range petals {
					fmt.Fprintf(out, "coadd:   %s\n", rel.CoaddPath(tile, night, p))
					fmt.Fprintf(out, "zbest:   %s\n", rel.ZbestTileCandidates(tile, night, p)[0])
				}
				return nil

			default:
				if !cmd.Flags().Changed("ra") || !cmd.Flags().Changed("dec") {
					return errors.New("--ra and --dec go together")
				}
				p, err := healpix.New(nside)
				if err != nil {
					return err
				}
				pixel := int(p.RADecToNested(unit.RAFromDeg(ra), unit.AngleFromDeg(dec)))
				fmt.Fprintf(out, "pixel:   %d (nside %d)\n", pixel, nside)
				fmt.Fprintf(out, "spectra: %s\n", rel.SpectraPath(nside, pixel))
				fmt.Fprintf(out, "zbest:   %s\n", rel.ZbestHealpixCandidates(nside, pixel)[0])
				return nil
			}
		},
	}

	cmd.Flags().IntVar(&tile, "tile", 0, "tile number")
	cmd.Flags().IntVar(&night, "night", 0, "observation night, YYYYMMDD")
	cmd.Flags().IntVar(&petal, "petal", -1, "petal 0-9 (default all)")
	cmd.Flags().Float64Var(&ra, "ra", 0, "right ascension in degrees")
	cmd.Flags().Float64Var(&dec, "dec", 0, "declination in degrees")
	cmd.Flags().IntVar(&nside, "nside", 64, "healpix nside the release groups spectra by")
	return cmd
}
