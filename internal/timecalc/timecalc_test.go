package timecalc_test

import (
	"testing"

	"github.com/Tiliavir/portfolio-api/internal/model"
	"github.com/Tiliavir/portfolio-api/internal/timecalc"
)

// calendar splits counts into weeks of seven days, the way GitHub returns them.
func calendar(total int, counts ...int) model.ContributionCalendar {
	cal := model.ContributionCalendar{TotalContributions: total}
	var week model.ContributionWeek
	for i, c := range counts {
		week.ContributionDays = append(week.ContributionDays, model.ContributionDay{ContributionCount: c})
		if (i+1)%7 == 0 {
			cal.Weeks = append(cal.Weeks, week)
			week = model.ContributionWeek{}
		}
	}
	if len(week.ContributionDays) > 0 {
		cal.Weeks = append(cal.Weeks, week)
	}
	return cal
}

func TestLongestStreak(t *testing.T) {
	tests := []struct {
		name   string
		counts []int
		want   int
	}{
		{"empty", nil, 0},
		{"all zero", []int{0, 0, 0, 0}, 0},
		{"single day", []int{0, 3, 0}, 1},
		{"broken run", []int{1, 1, 0, 1, 1, 1}, 3},
		{"gap filled", []int{1, 1, 1, 1, 1, 1}, 6},
		{"trailing zero", []int{2, 5, 0}, 2},
		{"first run longest", []int{4, 4, 4, 0, 1}, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timecalc.LongestStreak(tt.counts); got != tt.want {
				t.Errorf("LongestStreak(%v) = %d, want %d", tt.counts, got, tt.want)
			}
		})
	}
}

func TestLongestStreakNonDecreasingWhenGapFilled(t *testing.T) {
	counts := []int{1, 0, 1, 1, 0, 0, 1, 1, 1, 0, 1}
	before := timecalc.LongestStreak(counts)
	for i, c := range counts {
		if c != 0 {
			continue
		}
		filled := append([]int(nil), counts...)
		filled[i] = 1
		if after := timecalc.LongestStreak(filled); after < before {
			t.Errorf("filling day %d: streak %d dropped below %d", i, after, before)
		}
	}
}

func TestContributions(t *testing.T) {
	tests := []struct {
		name string
		cal  model.ContributionCalendar
		want timecalc.ContributionStats
	}{
		{"empty calendar", model.ContributionCalendar{}, timecalc.ContributionStats{}},
		{"all zero", calendar(0, 0, 0, 0, 0, 0, 0, 0, 0, 0), timecalc.ContributionStats{}},
		{"reported total wins", calendar(42, 1, 2, 0, 3), timecalc.ContributionStats{Total: 42, LongestStreak: 2}},
		{"sum when unreported", calendar(0, 1, 2, 0, 3), timecalc.ContributionStats{Total: 6, LongestStreak: 2}},
		// A streak running across the week boundary counts as one run.
		{"across weeks", calendar(9, 0, 0, 0, 0, 0, 1, 1, 1, 1, 0), timecalc.ContributionStats{Total: 9, LongestStreak: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := timecalc.Contributions(tt.cal); got != tt.want {
				t.Errorf("Contributions() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	stats := &model.GithubStats{
		ContributionsCollection: model.ContributionsCollection{
			ContributionCalendar: calendar(5, 1, 1, 0, 3),
		},
		Repositories: model.RepositoryConnection{Nodes: []model.Repository{
			{Name: "a", StargazerCount: 10},
			{Name: "b", StargazerCount: 0},
			{Name: "c", StargazerCount: 7},
		}},
	}
	got := timecalc.Summarize(stats)
	want := model.StatsSummary{TotalContributions: 5, LongestStreak: 2, TotalStars: 17, RepositoryCount: 3}
	if got != want {
		t.Errorf("Summarize() = %+v, want %+v", got, want)
	}

	if got := timecalc.Summarize(nil); got != (model.StatsSummary{}) {
		t.Errorf("Summarize(nil) = %+v, want zero", got)
	}
}
