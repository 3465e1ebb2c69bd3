// Package cli implements the rsoft-cad command-line interface.
//
// The CLI builds photonic lantern designs and writes them as .ind files for
// the external CAD tool. Commands:
//   - design: build one lantern and write its design file
//   - layout: print the bundle cross section without writing anything
//   - scan: sweep taper parameters, one design per point
//   - store: manage the design index
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	apperrors "github.com/bongkokwei/rsoft-cad/pkg/errors"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// typically called by the main package with values injected via ldflags.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the rsoft-cad CLI and returns an error if any command fails.
//
// Logging defaults to info level on stderr; --verbose (-v) switches to
// debug. The logger is attached to the command context and retrieved by
// subcommands via loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:           "rsoftcad",
		Short:         "rsoftcad designs photonic lanterns as CAD circuit files",
		Long:          `rsoftcad builds photonic lantern designs: it packs single-mode fibres into a bundle, models the taper down to the multimode end, and writes the result as a .ind circuit file ready for beam propagation.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("rsoftcad %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newDesignCmd())
	root.AddCommand(newLayoutCmd())
	root.AddCommand(newScanCmd())
	root.AddCommand(newStoreCmd())

	err := root.ExecuteContext(ctx)
	if err != nil && !stderrors.Is(err, context.Canceled) {
		if code := apperrors.GetCode(err); code != "" {
			printError("%s (%s)", apperrors.UserMessage(err), code)
		} else {
			printError("%v", err)
		}
	}
	return err
}
