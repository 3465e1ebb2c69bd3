package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/bongkokwei/rsoft-cad/pkg/errors"
	"github.com/bongkokwei/rsoft-cad/pkg/store"
)

// scanOpts holds the sweep flags on top of the shared build flags.
type scanOpts struct {
	designOpts

	param string
	from  float64
	to    float64
	steps int
	force bool
}

func newScanCmd() *cobra.Command {
	opts := &scanOpts{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Sweep a taper parameter and write one design per point",
		Long: `Sweep taper_factor or taper_length over a range and write one design
file per sample point. Points already present in the design index are
skipped unless --force is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, opts)
		},
	}

	addBuildFlags(cmd, &opts.designOpts)
	cmd.Flags().StringVar(&opts.param, "param", "taper_factor", "swept parameter (taper_factor|taper_length)")
	cmd.Flags().Float64Var(&opts.from, "from", 1, "first sample value")
	cmd.Flags().Float64Var(&opts.to, "to", 13, "last sample value")
	cmd.Flags().IntVar(&opts.steps, "steps", 5, "number of sample points")
	cmd.Flags().BoolVar(&opts.force, "force", false, "rebuild points already in the index")
	return cmd
}

func runScan(cmd *cobra.Command, opts *scanOpts) error {
	logger := loggerFromContext(cmd.Context())

	if opts.steps < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "steps must be at least 1, got %d", opts.steps)
	}
	if opts.param != "taper_factor" && opts.param != "taper_length" {
		return errors.New(errors.ErrCodeInvalidInput,
			"unknown sweep parameter %q, want taper_factor or taper_length", opts.param)
	}

	dir, err := resolveStoreDir(opts.storeDir)
	if err != nil {
		return err
	}
	s, err := store.Open(dir)
	if err != nil {
		return err
	}

	p := newProgress(logger)
	written, skipped := 0, 0
	for i := 0; i < opts.steps; i++ {
		value := opts.from
		if opts.steps > 1 {
			value += (opts.to - opts.from) * float64(i) / float64(opts.steps-1)
		}

		point := opts.designOpts
		switch opts.param {
		case "taper_factor":
			point.taperFactor = value
		case "taper_length":
			point.taperLength = value
		}
		point.tag = fmt.Sprintf("%s_%.4g_%s", opts.param, value, uuid.NewString()[:8])

		key := designKey(&point)
		if !opts.force {
			if _, ok, err := s.Get(cmd.Context(), key); err != nil {
				return err
			} else if ok {
				logger.Debug("point already in index, skipping", "param", opts.param, "value", value)
				skipped++
				continue
			}
		}

		logger.Info("building sweep point", "param", opts.param, "value", value)
		d, err := buildDesign(cmd.Context(), logger, &point)
		if err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err,
				"sweep point %s=%g failed", opts.param, value)
		}
		printDetail("%s = %.4g -> %s", opts.param, value, d.Filename)
		written++
	}

	p.done(fmt.Sprintf("Sweep finished, %d written, %d skipped", written, skipped))
	printSuccess("%d designs written to %s", written, styleValue.Render(opts.outDir))
	return nil
}
