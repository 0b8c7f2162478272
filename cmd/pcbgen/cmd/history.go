package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/pcbgen/internal/shared"
	"github.com/OpenTraceLab/pcbgen/internal/store"
)

var (
	historyBoard  string
	historyLimit  int
	historyLatest bool
	historyClear  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded builds",
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().StringVar(&historyBoard, "board", "", "only builds of this board")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum number of builds (0 for all)")
	historyCmd.Flags().BoolVar(&historyLatest, "latest", false, "show only the most recent build and its artifacts")
	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "delete all recorded builds")
}

func runHistory(cmd *cobra.Command, args []string) error {
	if cfg.Database.Path == "" {
		return fmt.Errorf("history is disabled: [database] path is empty")
	}
	db, err := shared.OpenDatabase(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("history: %w", err)
	}
	defer db.Close()

	if historyClear {
		for {
			version, err := shared.CurrentVersion(db)
			if err != nil {
				return fmt.Errorf("history: %w", err)
			}
			if version == 0 {
				break
			}
			if err := shared.RollbackMigration(db); err != nil {
				return fmt.Errorf("history: %w", err)
			}
		}
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("history: %w", err)
		}
		fmt.Printf("%s history cleared\n", styles.ok.Render("✓"))
		return nil
	}

	repo := store.NewBuildRepository(db)
	if historyLatest {
		return showLatestBuild(cmd.Context(), repo)
	}

	builds, err := repo.List(cmd.Context(), historyBoard, historyLimit)
	if err != nil {
		return err
	}
	if len(builds) == 0 {
		fmt.Println(styles.help.Render("no builds recorded"))
		return nil
	}

	t := newTable("When", "Board", "Components", "Nets", "Artifacts", "Duration", "Source")
	for _, b := range builds {
		t.Row(
			b.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			b.Board,
			strconv.Itoa(b.Components),
			strconv.Itoa(b.Nets),
			strconv.Itoa(len(b.Artifacts)),
			b.Duration.Round(time.Millisecond).String(),
			b.Source,
		)
	}
	fmt.Println(t.Render())

	total, err := repo.Count(cmd.Context(), historyBoard)
	if err != nil {
		return err
	}
	fmt.Println(styles.help.Render(fmt.Sprintf("showing %d of %d builds", len(builds), total)))
	return nil
}

func showLatestBuild(ctx context.Context, repo *store.BuildRepository) error {
	b, err := repo.Latest(ctx, historyBoard)
	if errors.Is(err, store.ErrNotFound) {
		fmt.Println(styles.help.Render("no builds recorded"))
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println(styles.title.Render(fmt.Sprintf("%s built %s", b.Board, b.CreatedAt.Local().Format("2006-01-02 15:04:05"))))
	fmt.Printf("  Source:     %s\n", b.Source)
	fmt.Printf("  Components: %d\n", b.Components)
	fmt.Printf("  Nets:       %d\n", b.Nets)
	fmt.Printf("  Duration:   %s\n", b.Duration.Round(time.Millisecond))
	for _, a := range b.Artifacts {
		fmt.Printf("    %s\n", a)
	}
	return nil
}
