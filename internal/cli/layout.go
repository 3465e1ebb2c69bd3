package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/bongkokwei/rsoft-cad/pkg/lantern"
)

func newLayoutCmd() *cobra.Command {
	var (
		kind string
		arg  string
	)

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the fibre cross-section layout without writing files",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := lantern.New(kind, arg,
				lantern.WithLogger(loggerFromContext(cmd.Context())))
			if err != nil {
				return err
			}
			if err := b.CreateLantern(lantern.Params{}); err != nil {
				return err
			}
			printLayout(b)
			return nil
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", lantern.KindModeSelective, "lantern kind (photonic|mode_selective)")
	cmd.Flags().StringVarP(&arg, "spec", "s", "LP11", "kind argument: ring counts or highest LP mode")
	return cmd
}

func printLayout(b *lantern.Builder) {
	ports := b.Ports()
	sort.Slice(ports, func(i, j int) bool { return ports[i].Label < ports[j].Label })

	fmt.Println(styleTitle.Render(fmt.Sprintf("%s lantern, %d cores", b.Kind(), len(ports))))

	header := fmt.Sprintf("%-8s %12s %12s", "port", "x (um)", "y (um)")
	fmt.Println(styleDim.Render(header))
	fmt.Println(styleDim.Render(strings.Repeat("-", len(header))))
	for _, p := range ports {
		fmt.Printf("%s %s %s\n",
			styleValue.Render(fmt.Sprintf("%-8s", p.Label)),
			styleNumber.Render(fmt.Sprintf("%12.2f", p.X)),
			styleNumber.Render(fmt.Sprintf("%12.2f", p.Y)))
	}

	if mm := b.ModeMap(); mm != nil {
		fmt.Println()
		fmt.Println(styleTitle.Render("mode assignment"))
		for _, label := range mm.Labels() {
			a, _ := mm.Get(label)
			printDetail("%s  core %s  cutoff %.3f  guided %v",
				lipgloss.NewStyle().Bold(true).Render(label), a.CoreID, a.Cutoff, a.Guided)
		}
	}
}
