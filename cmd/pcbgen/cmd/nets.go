package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/pcb"
)

var sortNets bool

var netsCmd = &cobra.Command{
	Use:   "nets <board_file> [net_name]",
	Short: "Show net information of a KiCad board",
	Long: `Reads a .kicad_pcb file and displays its nets.

Without net_name: lists all nets with their pad counts
With net_name: shows every pad on that net`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNets,
}

func init() {
	rootCmd.AddCommand(netsCmd)
	netsCmd.Flags().BoolVar(&sortNets, "sort", false, "sort nets by name instead of net number")
}

func runNets(cmd *cobra.Command, args []string) error {
	board, err := pcb.ParseFile(args[0])
	if err != nil {
		return err
	}

	if len(args) == 2 {
		return showNetDetails(board, args[1])
	}
	listAllNets(board)
	return nil
}

func listAllNets(board *pcb.Board) {
	names := board.GetAllNetNames()
	if sortNets {
		sort.Strings(names)
	}

	fmt.Println(styles.title.Render(fmt.Sprintf("%s: %d nets, %d footprints",
		boardTitle(board), len(names), len(board.Footprints))))

	t := newTable("Net", "Code", "Pads")
	for _, name := range names {
		info := board.GetNetInfo(name)
		if info == nil {
			continue
		}
		t.Row(name, strconv.Itoa(info.Net.Number), strconv.Itoa(len(info.Pads)))
	}
	fmt.Println(t.Render())
}

func showNetDetails(board *pcb.Board, netName string) error {
	info := board.GetNetInfo(netName)
	if info == nil {
		return fmt.Errorf("net '%s' not found", netName)
	}

	fmt.Println(styles.title.Render(fmt.Sprintf("Net: %s (number %d)", info.Net.Name, info.Net.Number)))

	t := newTable("Pad", "Shape", "Size (mm)", "Position (mm)")
	for _, p := range info.Pads {
		t.Row(
			p.Reference+"."+p.Pad.Number,
			p.Pad.Shape,
			fmt.Sprintf("%.2f×%.2f", p.Pad.Size.Width, p.Pad.Size.Height),
			fmt.Sprintf("(%.2f, %.2f)", p.Position.X, p.Position.Y),
		)
	}
	fmt.Println(t.Render())

	if len(info.Pads) < 2 {
		fmt.Println(styles.warn.Render("warning: net has fewer than two pads"))
	}
	return nil
}

func boardTitle(board *pcb.Board) string {
	if board.TitleBlock.Title != "" {
		return board.TitleBlock.Title
	}
	return "Board"
}
