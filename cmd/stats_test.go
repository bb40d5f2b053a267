package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Tiliavir/portfolio-api/internal/model"
)

func TestTopRepositories(t *testing.T) {
	repos := []model.Repository{
		{Name: "b", StargazerCount: 3},
		{Name: "a", StargazerCount: 3},
		{Name: "c", StargazerCount: 10},
		{Name: "d", StargazerCount: 0},
	}
	got := topRepositories(repos, 3)
	want := []string{"c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Errorf("got[%d] = %s, want %s", i, got[i].Name, name)
		}
	}
	if repos[0].Name != "b" {
		t.Error("input slice was reordered")
	}
	if got := topRepositories(repos, -1); len(got) != 0 {
		t.Errorf("negative n returned %d repos", len(got))
	}
}

func TestPrintStatsMarkdown(t *testing.T) {
	var buf bytes.Buffer
	sum := model.StatsSummary{TotalContributions: 1234567, LongestStreak: 1, TotalStars: 42, RepositoryCount: 3}
	printStatsMarkdown(&buf, "octocat", sum, []model.Repository{{Name: "portfolio", StargazerCount: 12345, ForkCount: 2}})

	out := buf.String()
	for _, want := range []string{"## GitHub – octocat", "| 1,234,567 | 1 day | 42 | 3 |", "| portfolio | 12,345 | 2 |"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
