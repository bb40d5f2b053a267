package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/portfolio-api/internal/model"
	"github.com/Tiliavir/portfolio-api/internal/storage"
)

var blogsFormat string

var blogsCmd = &cobra.Command{
	Use:   "blogs",
	Short: "List blog posts from the configured directory",
	Args:  cobra.NoArgs,
	RunE:  runBlogs,
}

func init() {
	blogsCmd.Flags().StringVar(&blogsFormat, "format", "md", "Output format: md, csv, json")
}

func runBlogs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	blogs, err := storage.NewBlogStore(cfg.Blogs.Dir, cfg.Blogs.Extension).ListBlogs(context.Background())
	if err != nil {
		return err
	}

	switch blogsFormat {
	case "json":
		data, err := json.MarshalIndent(map[string][]model.BlogSummary{"blogs": blogs}, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		fmt.Println(string(data))
	case "csv":
		printBlogsCSV(blogs)
	default: // md
		printBlogs(blogs)
	}
	return nil
}

// printBlogs prints newest first, one line per post.
func printBlogs(blogs []model.BlogSummary) {
	if len(blogs) == 0 {
		fmt.Println("No blog posts found.")
		return
	}
	for _, b := range blogs {
		fmt.Printf("%s  %-24s %s\n", b.ModifiedAt.Format("2006-01-02 15:04"), b.Slug, b.Title)
	}
}

func printBlogsCSV(blogs []model.BlogSummary) {
	fmt.Println("slug,title,file_name,created_at,modified_at,preview")
	for _, b := range blogs {
		fmt.Printf("%s,%s,%s,%s,%s,%s\n",
			csvEscape(b.Slug),
			csvEscape(b.Title),
			csvEscape(b.FileName),
			csvEscape(b.CreatedAt.Format(time.RFC3339)),
			csvEscape(b.ModifiedAt.Format(time.RFC3339)),
			csvEscape(b.Preview),
		)
	}
}

// csvEscape wraps a field in quotes if it contains a comma, quote, or newline.
func csvEscape(s string) string {
	if !strings.ContainsAny(s, ",\"\n\r") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
