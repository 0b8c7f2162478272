package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/internal/builder"
)

var checkCmd = &cobra.Command{
	Use:   "check <definition>...",
	Short: "Execute board definitions without writing anything",
	Long: `Parses and executes each definition, reporting the committed board or
the first error (duplicate reference, out-of-range pin, dangling net member, ...).
With --verbose the nets and their members are listed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	files, err := builder.Expand(args)
	if err != nil {
		return err
	}

	var errs []error
	for _, path := range files {
		res, err := builder.Check(cmd.Context(), path)
		if err != nil {
			fmt.Printf("%s %s\n    %v\n", styles.err.Render("✗"), path, err)
			errs = append(errs, err)
			continue
		}

		board := res.Board
		fmt.Printf("%s %s: %d components, %d nets (%s)\n",
			styles.ok.Render("✓"), board.Name(), len(board.Components()), len(board.Nets()), path)

		if verbose {
			for _, c := range board.Components() {
				p := c.Placement()
				fmt.Printf("    %-6s %-10s %-8s %s at (%g, %g, %g°)\n",
					c.Reference(), c.Kind(), c.Value(), c.Footprint().ID(), p.X, p.Y, p.Rotation)
			}
			for _, n := range board.Nets() {
				members := make([]string, 0, n.Len())
				for _, m := range n.Members() {
					members = append(members, m.String())
				}
				fmt.Printf("    net %-10s %s\n", n.Name(), strings.Join(members, ", "))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d of %d definitions failed: %w", len(errs), len(files), errors.Join(errs...))
	}
	return nil
}
