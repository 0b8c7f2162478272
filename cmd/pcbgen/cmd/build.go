package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"

	"github.com/OpenTraceLab/pcbgen/internal/builder"
	"github.com/OpenTraceLab/pcbgen/internal/shared"
	"github.com/OpenTraceLab/pcbgen/internal/store"
	"github.com/OpenTraceLab/pcbgen/internal/watch"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
	"github.com/OpenTraceLab/pcbgen/pkg/plot"
)

var (
	outDir      string
	formatNames []string
	watchMode   bool
	noHistory   bool
)

var buildCmd = &cobra.Command{
	Use:   "build <definition|dir|pattern>...",
	Short: "Build KiCad artifacts from board definitions",
	Long: `Executes each board definition and writes its artifacts as <board>.<format>.

Arguments may be files, directories (searched recursively) or patterns
such as "boards/**/*.board". Formats: kicad_pcb, net, json, png, svg, pdf.

Successful builds are recorded in the history database unless --no-history
is given or [database] path is empty.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default from config)")
	buildCmd.Flags().StringSliceVarP(&formatNames, "format", "f", nil, "artifact formats (default from config)")
	buildCmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "rebuild definitions when they change")
	buildCmd.Flags().BoolVar(&noHistory, "no-history", false, "do not record builds")
}

func runBuild(cmd *cobra.Command, args []string) error {
	files, err := builder.Expand(args)
	if err != nil {
		return err
	}

	names := formatNames
	if len(names) == 0 {
		names = cfg.Output.Formats
	}
	formats, err := builder.ParseFormats(names)
	if err != nil {
		return err
	}

	dir := outDir
	if dir == "" {
		dir = cfg.Output.Dir
	}

	var recorder builder.Recorder
	if !noHistory && cfg.Database.Path != "" {
		db, err := shared.OpenDatabase(cfg.Database.Path)
		if err != nil {
			return fmt.Errorf("history: %w", err)
		}
		defer db.Close()
		recorder = store.NewBuildRepository(db)
	}

	b := builder.New(builder.Options{
		OutDir:   dir,
		Formats:  formats,
		PCB:      writeOptions(),
		Plot:     plotOptions(),
		Recorder: recorder,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	results, err := b.BuildAll(ctx, files)
	for _, res := range results {
		fmt.Printf("%s %s (%s)\n", styles.ok.Render("✓"), res.Board.Name(), res.Source)
		for _, a := range res.Artifacts {
			fmt.Printf("    %s\n", a.Path)
		}
	}

	if !watchMode {
		return err
	}

	w, werr := watch.New(files, func(ctx context.Context, path string) error {
		_, err := b.Build(ctx, path)
		return err
	}, watch.Options{Debounce: cfg.Watch.Debounce(), Logger: logger})
	if werr != nil {
		return werr
	}
	fmt.Println(styles.help.Render("watching for changes, press Ctrl+C to stop"))
	return w.Run(ctx)
}

func writeOptions() pcb.WriteOptions {
	return pcb.WriteOptions{
		Version:   cfg.KiCad.Version,
		Generator: cfg.KiCad.Generator,
		Thickness: cfg.KiCad.Thickness,
		Margin:    cfg.KiCad.Margin,
	}
}

func plotOptions() plot.Options {
	return plot.Options{
		Width:  vg.Length(cfg.Plot.Width) * vg.Centimeter,
		Height: vg.Length(cfg.Plot.Height) * vg.Centimeter,
	}
}
