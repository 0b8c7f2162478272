package cmd

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/internal/builder"
	"github.com/OpenTraceLab/pcbgen/pkg/plot"
	"github.com/OpenTraceLab/pcbgen/pkg/script"
)

var (
	plotOut   string
	plotTitle string
)

var plotCmd = &cobra.Command{
	Use:   "plot <definition>",
	Short: "Plot the placement of a board definition",
	Long: `Draws component outlines, pads coloured by net and ratsnest lines.
The image format follows the output extension (png, svg or pdf).`,
	Args: cobra.ExactArgs(1),
	RunE: runPlot,
}

func init() {
	rootCmd.AddCommand(plotCmd)
	plotCmd.Flags().StringVarP(&plotOut, "out", "o", "", "output file (default <board>.png)")
	plotCmd.Flags().StringVar(&plotTitle, "title", "", "plot title (default board name)")
}

func runPlot(cmd *cobra.Command, args []string) error {
	res, err := script.Run(args[0])
	if err != nil {
		return err
	}

	out := plotOut
	if out == "" {
		out = builder.FileName(res.Board.Name()) + ".png"
	}
	if ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(out)), "."); !slices.Contains(plot.Formats, ext) {
		return fmt.Errorf("plot: unsupported image format %q", filepath.Ext(out))
	}

	opts := plotOptions()
	opts.Title = plotTitle
	if err := plot.Save(res.Board, out, opts); err != nil {
		return err
	}
	fmt.Printf("%s %s\n", styles.ok.Render("✓"), out)
	return nil
}
