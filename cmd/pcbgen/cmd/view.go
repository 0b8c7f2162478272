package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"gioui.org/app"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/unit"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/renderer"
	"github.com/OpenTraceLab/pcbgen/pkg/script"
)

var (
	viewTheme     string
	viewHighlight string
	viewCopper    bool
)

var viewCmd = &cobra.Command{
	Use:   "view <board_file|definition>",
	Short: "View a board in an interactive viewer",
	Long: `Opens a .kicad_pcb file, or builds a board definition in memory, and
shows it in a Gio window with pan, zoom and rotation controls.

Controls:
  Left Click / R    - Rotate 90°
  Left Arrow        - Rotate -90°
  Right Click / F   - Flip board
  Scroll Wheel      - Zoom in/out
  Space             - Fit board to window
  T                 - Next colour theme
  N                 - Toggle ratsnest
  L                 - Toggle reference labels
  C                 - Toggle copper-only layers
  Q / Escape        - Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	rootCmd.AddCommand(viewCmd)
	viewCmd.Flags().StringVar(&viewTheme, "theme", "classic", "colour theme (classic, kicad2020, nord)")
	viewCmd.Flags().StringVar(&viewHighlight, "net", "", "highlight a net")
	viewCmd.Flags().BoolVar(&viewCopper, "copper", false, "show copper layers only")
}

// loadBoard reads a KiCad board, or runs a definition and converts the
// result.
func loadBoard(path string) (*pcb.Board, error) {
	if script.IsDefinition(path) {
		res, err := script.Run(path)
		if err != nil {
			return nil, err
		}
		return pcb.FromDesign(res.Board, writeOptions())
	}
	board, err := pcb.ParseFile(path)
	if err != nil {
		return nil, fmt.Errorf("error parsing board: %w", err)
	}
	return board, nil
}

func runView(cmd *cobra.Command, args []string) error {
	filename := args[0]
	theme, err := renderer.ParseTheme(viewTheme)
	if err != nil {
		return err
	}

	logger.Info("loading board", "path", filename)
	board, err := loadBoard(filename)
	if err != nil {
		return err
	}
	if viewHighlight != "" && board.GetNetInfo(viewHighlight) == nil {
		return fmt.Errorf("net '%s' not found", viewHighlight)
	}

	bbox := board.GetBoundingBox()
	logger.Info("board loaded",
		"footprints", len(board.Footprints),
		"nets", len(board.Nets),
		"size", fmt.Sprintf("%.2fx%.2f mm", bbox.Width(), bbox.Height()))

	layers := renderer.NewLayerConfig()
	if viewCopper {
		layers.ShowCopperOnly()
	}
	r := renderer.New(renderer.Options{
		Theme:        theme,
		Layers:       layers,
		HighlightNet: viewHighlight,
		Ratsnest:     true,
		Labels:       true,
	})

	go func() {
		w := new(app.Window)
		w.Option(app.Title("pcbgen - " + filepath.Base(filename)))
		w.Option(app.Size(unit.Dp(1000), unit.Dp(800)))

		if err := runViewerWindow(w, r, board); err != nil {
			logger.Fatal("viewer failed", "err", err)
		}
		os.Exit(0)
	}()
	app.Main()
	return nil
}

// viewer is the mutable state of one window.
type viewer struct {
	r      *renderer.Renderer
	camera *renderer.Camera
	board  *pcb.Board
	copper bool
}

func runViewerWindow(w *app.Window, r *renderer.Renderer, board *pcb.Board) error {
	v := &viewer{
		r:      r,
		camera: renderer.NewCamera(1000, 800),
		board:  board,
		copper: viewCopper,
	}
	v.camera.Fit(board.GetBoundingBox())

	var ops op.Ops
	fitted := false
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err

		case app.FrameEvent:
			ops.Reset()
			gtx := app.NewContext(&ops, e)
			gtx.Constraints = layout.Exact(e.Size)

			v.camera.UpdateScreenSize(e.Size.X, e.Size.Y)
			if !fitted {
				// the first frame carries the real window size
				v.camera.Fit(board.GetBoundingBox())
				fitted = true
			}

			for {
				ev, ok := gtx.Event(key.Filter{})
				if !ok {
					break
				}
				if ke, ok := ev.(key.Event); ok && ke.State == key.Press {
					if v.handleKey(ke.Name) {
						return nil
					}
					w.Invalidate()
				}
			}

			for {
				ev, ok := gtx.Event(pointer.Filter{
					Kinds:   pointer.Press | pointer.Scroll,
					ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
				})
				if !ok {
					break
				}
				pe, ok := ev.(pointer.Event)
				if !ok {
					continue
				}
				switch pe.Kind {
				case pointer.Press:
					switch pe.Buttons {
					case pointer.ButtonPrimary:
						v.camera.Rotate(90)
					case pointer.ButtonSecondary:
						v.camera.Flip()
					}
				case pointer.Scroll:
					factor := 1.1
					if pe.Scroll.Y > 0 {
						factor = 1 / factor
					}
					v.camera.ZoomAt(float64(pe.Position.X), float64(pe.Position.Y), factor)
				}
				w.Invalidate()
			}

			v.r.Render(gtx, v.camera, v.board)
			e.Frame(&ops)
		}
	}
}

// handleKey applies a key press and reports whether the window should close.
func (v *viewer) handleKey(k key.Name) bool {
	switch k {
	case key.NameEscape, "Q":
		return true
	case "F":
		v.camera.Flip()
	case "R":
		v.camera.Rotate(90)
	case key.NameLeftArrow:
		v.camera.Rotate(-90)
	case key.NameSpace:
		v.camera.Fit(v.board.GetBoundingBox())
	case "T":
		v.r.Theme = (v.r.Theme + 1) % renderer.ColorTheme(len(renderer.ThemeNames))
	case "N":
		v.r.Ratsnest = !v.r.Ratsnest
	case "L":
		v.r.Labels = !v.r.Labels
	case "C":
		v.copper = !v.copper
		if v.copper {
			v.r.Layers.ShowCopperOnly()
		} else {
			v.r.Layers.ShowAll()
		}
	}
	return false
}
