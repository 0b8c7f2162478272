package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"

	chewsexp "github.com/chewxy/sexp"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp"
	"github.com/OpenTraceLab/pcbgen/pkg/kicad/sexp/kicadsexp"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Show s-expression statistics of a KiCad file",
	Long: `Parses any KiCad s-expression file (.kicad_pcb, .net, ...) with pcbgen's
own reader and cross-checks the leaf count with an independent parser.
Lists how often each top-level node occurs.`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("File size: %d bytes (%.2f KB)\n", len(data), float64(len(data))/1024)

	exprs, err := kicadsexp.Parse(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	if len(exprs) == 0 {
		return fmt.Errorf("inspect: %s holds no s-expressions", args[0])
	}

	root := exprs[0]
	name, _ := sexp.GetNodeName(root)
	leaves := 0
	for _, e := range exprs {
		leaves += e.LeafCount()
	}
	fmt.Printf("Root: %s, %d top-level expression(s), %d leaves, depth %d\n",
		name, len(exprs), leaves, depth(root))

	// chewxy/sexp is a generic reader with its own tokenizer; a mismatch
	// points at quoting or escaping problems in the file.
	other, err := chewsexp.Parse(bytes.NewReader(data))
	switch {
	case err != nil:
		fmt.Println(styles.warn.Render("independent parser failed: " + err.Error()))
	default:
		otherLeaves := 0
		for _, e := range other {
			if e.IsLeaf() {
				otherLeaves++
				continue
			}
			otherLeaves += e.LeafCount()
		}
		if otherLeaves == leaves && len(other) == len(exprs) {
			fmt.Println(styles.ok.Render("independent parser agrees"))
		} else {
			fmt.Println(styles.warn.Render(fmt.Sprintf("independent parser disagrees: %d expression(s), %d leaves",
				len(other), otherLeaves)))
		}
	}

	counts := make(map[string]int)
	for _, item := range sexp.GetListItems(root) {
		if n, err := sexp.GetNodeName(item); err == nil && !item.IsLeaf() {
			counts[n]++
		}
	}
	nodes := make([]string, 0, len(counts))
	for n := range counts {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool {
		if counts[nodes[i]] != counts[nodes[j]] {
			return counts[nodes[i]] > counts[nodes[j]]
		}
		return nodes[i] < nodes[j]
	})

	t := newTable("Node", "Count")
	for _, n := range nodes {
		t.Row(n, strconv.Itoa(counts[n]))
	}
	fmt.Println(t.Render())
	return nil
}

func depth(s kicadsexp.Sexp) int {
	if s == nil || s.IsLeaf() {
		return 0
	}
	deepest := 0
	for _, item := range sexp.Items(s) {
		deepest = max(deepest, depth(item))
	}
	return deepest + 1
}
