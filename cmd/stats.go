package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Tiliavir/portfolio-api/internal/cache"
	"github.com/Tiliavir/portfolio-api/internal/model"
	"github.com/Tiliavir/portfolio-api/internal/timecalc"
)

var (
	statsFormat string
	statsTop    int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print the GitHub contribution summary",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsFormat, "format", "md", "Output format: md, csv, json")
	statsCmd.Flags().IntVar(&statsTop, "top", 5, "Number of repositories to list by stars (md only)")
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	stats, err := newGitHubClient(cfg, cache.Nop{}).FetchStats(ctx, cfg.GitHub.Username)
	if err != nil {
		return err
	}
	sum := timecalc.Summarize(stats)

	switch statsFormat {
	case "json":
		data, err := json.MarshalIndent(sum, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Println(string(data))
	case "csv":
		fmt.Println("total_contributions,longest_streak,total_stars,repository_count")
		fmt.Printf("%d,%d,%d,%d\n", sum.TotalContributions, sum.LongestStreak, sum.TotalStars, sum.RepositoryCount)
	default: // md
		printStatsMarkdown(os.Stdout, cfg.GitHub.Username, sum, topRepositories(stats.Repositories.Nodes, statsTop))
	}
	return nil
}

func printStatsMarkdown(w io.Writer, username string, sum model.StatsSummary, top []model.Repository) {
	fmt.Fprintf(w, "## GitHub – %s\n\n", username)
	fmt.Fprintf(w, "| Contributions | Longest streak | Stars | Repositories |\n")
	fmt.Fprintf(w, "|---|---|---|---|\n")
	fmt.Fprintf(w, "| %s | %s | %s | %d |\n",
		humanize.Comma(int64(sum.TotalContributions)),
		pluralDays(sum.LongestStreak),
		humanize.Comma(int64(sum.TotalStars)),
		sum.RepositoryCount,
	)
	if len(top) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Repository | Stars | Forks |")
	fmt.Fprintln(w, "|---|---|---|")
	for _, r := range top {
		fmt.Fprintf(w, "| %s | %s | %d |\n", r.Name, humanize.Comma(int64(r.StargazerCount)), r.ForkCount)
	}
}

// topRepositories returns the n most starred repositories, ties by name.
func topRepositories(repos []model.Repository, n int) []model.Repository {
	sorted := append([]model.Repository{}, repos...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].StargazerCount != sorted[j].StargazerCount {
			return sorted[i].StargazerCount > sorted[j].StargazerCount
		}
		return sorted[i].Name < sorted[j].Name
	})
	if n < 0 {
		n = 0
	}
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
