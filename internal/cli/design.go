package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/bongkokwei/rsoft-cad/pkg/circuit"
	"github.com/bongkokwei/rsoft-cad/pkg/config"
	"github.com/bongkokwei/rsoft-cad/pkg/errors"
	"github.com/bongkokwei/rsoft-cad/pkg/lantern"
	"github.com/bongkokwei/rsoft-cad/pkg/store"
)

// designOpts holds the flags of the design command.
type designOpts struct {
	kind       string
	arg        string
	configPath string
	sets       []string
	outDir     string
	tag        string

	taperFactor float64
	taperLength float64
	capillaryOD float64
	finalID     float64
	points      int
	sigmoid     bool
	userTaper   string
	launches    []string
	monitor     string
	launchType  string

	noStore  bool
	storeDir string
}

func newDesignCmd() *cobra.Command {
	opts := &designOpts{}

	cmd := &cobra.Command{
		Use:   "design",
		Short: "Build one lantern and write its .ind design file",
		Long: `Build a photonic lantern design and write it as a .ind circuit file.

The --kind flag selects the labelling strategy: "photonic" packs fibres in
rings given as comma-separated counts (--spec "1,6"), "mode_selective"
dedicates one fibre per LP mode up to the given label (--spec LP11).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := loggerFromContext(cmd.Context())
			p := newProgress(logger)

			d, err := buildDesign(cmd.Context(), logger, opts)
			if err != nil {
				return err
			}

			p.done(fmt.Sprintf("Design %s written", d.Filename))
			printSuccess("Wrote %s", styleValue.Render(d.Path))
			printDetail("kind: %s, cores: %d, capillary: %.1f um",
				d.Kind, len(d.CoreMap), d.CapillaryDiameter)
			return nil
		},
	}

	addBuildFlags(cmd, opts)
	cmd.Flags().StringSliceVar(&opts.launches, "launch", nil, "launch port label (repeatable; default: strategy default port)")
	cmd.Flags().StringVar(&opts.tag, "tag", "", "filename tag (default: run id prefix)")
	return cmd
}

// addBuildFlags registers the flags shared by design and scan.
func addBuildFlags(cmd *cobra.Command, opts *designOpts) {
	cmd.Flags().StringVarP(&opts.kind, "kind", "k", lantern.KindModeSelective, "lantern kind (photonic|mode_selective)")
	cmd.Flags().StringVarP(&opts.arg, "spec", "s", "LP11", "kind argument: ring counts or highest LP mode")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "TOML parameter file")
	cmd.Flags().StringArrayVar(&opts.sets, "set", nil, "override a config parameter, e.g. pl_params.Taper_Length=60000")
	cmd.Flags().StringVarP(&opts.outDir, "output", "o", "output", "output directory")
	cmd.Flags().Float64Var(&opts.taperFactor, "taper-factor", 1, "taper factor")
	cmd.Flags().Float64Var(&opts.taperLength, "taper-length", 80000, "taper length in microns")
	cmd.Flags().Float64Var(&opts.capillaryOD, "capillary-od", 900, "capillary outer diameter in microns")
	cmd.Flags().Float64Var(&opts.finalID, "final-id", 40, "final capillary inner diameter in microns")
	cmd.Flags().IntVar(&opts.points, "points", 100, "z samples in the taper model")
	cmd.Flags().BoolVar(&opts.sigmoid, "sigmoid", false, "shape the bundle taper along the sigmoid profile")
	cmd.Flags().StringVar(&opts.userTaper, "user-taper", "", "taper profile data file referenced by the design")
	cmd.Flags().StringVar(&opts.monitor, "monitor", string(circuit.MonitorFiberPower), "monitor type for core pathways")
	cmd.Flags().StringVar(&opts.launchType, "launch-type", string(circuit.LaunchGaussian), "launch field type")
	cmd.Flags().BoolVar(&opts.noStore, "no-store", false, "skip recording the design in the index")
	cmd.Flags().StringVar(&opts.storeDir, "store-dir", "", "design index directory (default: user cache dir)")
}

// loadConfig loads the parameter file (or the defaults) and applies every
// --set override.
func loadConfig(opts *designOpts) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	for _, set := range opts.sets {
		path, value, err := splitOverride(set)
		if err != nil {
			return nil, err
		}
		if err := cfg.Set(path, value); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func splitOverride(set string) (path, value string, err error) {
	for i := 0; i < len(set); i++ {
		if set[i] == '=' {
			return set[:i], set[i+1:], nil
		}
	}
	return "", "", errors.New(errors.ErrCodeInvalidInput,
		"override %q is not of the form group.key=value", set)
}

// fiberDefaults derives the builder's fibre parameters from the numeric
// entries of the pl_params group. Expression-valued entries keep the
// built-in defaults, since only the CAD tool can evaluate them.
func fiberDefaults(cfg *config.Config) lantern.FiberProps {
	fp := lantern.DefaultFiberProps()
	setFromConfig := func(dst *float64, key string) {
		if v, ok := cfg.PLParams.Get(key); ok {
			switch x := v.(type) {
			case float64:
				*dst = x
			case int:
				*dst = float64(x)
			case int64:
				*dst = float64(x)
			}
		}
	}
	setFromConfig(&fp.CoreDia, "Diameter_SM_Core")
	setFromConfig(&fp.CladdingDia, "Diameter_SM_Clad")
	setFromConfig(&fp.CoreIndex, "Index_SMF28_Core_1550")
	setFromConfig(&fp.CladdingIndex, "Index_SMF28_Clad_1550")
	setFromConfig(&fp.BgIndex, "Index_Capillary")
	setFromConfig(&fp.TaperLength, "Taper_Length")
	return fp
}

// segmentTemplates converts the config's segment groups into builder
// templates. The pl_params group travels separately as global parameters, so
// expression-valued template entries resolve inside the written file.
func segmentTemplates(cfg *config.Config) lantern.Templates {
	asProps := func(g *config.Group) *circuit.Properties {
		if g == nil || g.Len() == 0 {
			return nil
		}
		return g.Properties()
	}
	return lantern.Templates{
		CenterCore:     asProps(cfg.CenterCore),
		CenterCladding: asProps(cfg.CenterCladding),
		Core:           asProps(cfg.Core),
		Cladding:       asProps(cfg.Cladding),
		Capillary:      asProps(cfg.Capillary),
		Launch:         asProps(cfg.LaunchField),
	}
}

// buildDesign runs one full build: config, builder, launch fields, write,
// and store record.
func buildDesign(ctx context.Context, logger *log.Logger, opts *designOpts) (*lantern.Design, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	b, err := lantern.New(opts.kind, opts.arg,
		lantern.WithLogger(logger),
		lantern.WithFiberDefaults(fiberDefaults(cfg)),
		lantern.WithTemplates(segmentTemplates(cfg)),
	)
	if err != nil {
		return nil, err
	}

	err = b.CreateLantern(lantern.Params{
		TaperFactor:      opts.taperFactor,
		TaperLength:      opts.taperLength,
		CapillaryOD:      opts.capillaryOD,
		FinalCapillaryID: opts.finalID,
		Points:           opts.points,
		SigmoidTaper:     opts.sigmoid,
		UserTaper:        opts.userTaper,
		Monitor:          circuit.MonitorType(opts.monitor),
		LaunchKind:       circuit.LaunchType(opts.launchType),
		SimParams:        cfg.PLParams.Properties(),
	})
	if err != nil {
		return nil, err
	}

	launches := opts.launches
	if len(launches) == 0 {
		launches = []string{""}
	}
	for _, label := range launches {
		if err := b.AddLaunchField(label, nil); err != nil {
			return nil, err
		}
	}

	d, err := b.Write(opts.outDir, opts.tag)
	if err != nil {
		return nil, err
	}

	if !opts.noStore {
		if err := recordDesign(ctx, opts, d); err != nil {
			logger.Warn("design index update failed", "err", err)
		}
	}
	return d, nil
}

// recordDesign stores the written design in the index, keyed by the build
// parameters that shape the output.
func recordDesign(ctx context.Context, opts *designOpts, d *lantern.Design) error {
	dir, err := resolveStoreDir(opts.storeDir)
	if err != nil {
		return err
	}
	s, err := store.Open(dir)
	if err != nil {
		return err
	}
	key := designKey(opts)
	return s.Put(ctx, key, store.Record{
		RunID:    d.RunID,
		Kind:     d.Kind,
		Path:     d.Path,
		Filename: d.Filename,
		Cores:    len(d.CoreMap),
		Params: map[string]any{
			"spec":         opts.arg,
			"taper_factor": opts.taperFactor,
			"taper_length": opts.taperLength,
			"final_id":     opts.finalID,
			"sigmoid":      opts.sigmoid,
		},
	})
}

// designKey derives the store key from every parameter that changes the
// serialized design.
func designKey(opts *designOpts) string {
	return store.Key(opts.kind, opts.arg, opts.taperFactor, opts.taperLength,
		opts.capillaryOD, opts.finalID, opts.points, opts.sigmoid,
		opts.userTaper, opts.monitor, opts.launchType, opts.launches, opts.sets)
}
