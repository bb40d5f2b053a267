package timecalc

import "github.com/Tiliavir/portfolio-api/internal/model"

// ContributionStats is derived from a contribution calendar.
type ContributionStats struct {
	Total         int `json:"total"`
	LongestStreak int `json:"longestStreak"`
}

// Days flattens weeks into one chronological list of day counts.
func Days(weeks []model.ContributionWeek) []int {
	var out []int
	for _, w := range weeks {
		for _, d := range w.ContributionDays {
			out = append(out, d.ContributionCount)
		}
	}
	return out
}

// LongestStreak returns the longest run of consecutive days with a positive count.
func LongestStreak(counts []int) int {
	longest, current := 0, 0
	for _, c := range counts {
		if c > 0 {
			current++
			if current > longest {
				longest = current
			}
			continue
		}
		current = 0
	}
	return longest
}

// Contributions computes the total and longest streak of a calendar.
// The upstream totalContributions wins over the recomputed sum unless it is zero.
func Contributions(cal model.ContributionCalendar) ContributionStats {
	days := Days(cal.Weeks)
	total := cal.TotalContributions
	if total == 0 {
		for _, c := range days {
			total += c
		}
	}
	return ContributionStats{
		Total:         total,
		LongestStreak: LongestStreak(days),
	}
}

// TotalStars sums stargazerCount across repositories.
func TotalStars(repos []model.Repository) int {
	total := 0
	for _, r := range repos {
		total += r.StargazerCount
	}
	return total
}

// Summarize derives every presentation value from a raw stats payload.
func Summarize(stats *model.GithubStats) model.StatsSummary {
	if stats == nil {
		return model.StatsSummary{}
	}
	c := Contributions(stats.ContributionsCollection.ContributionCalendar)
	return model.StatsSummary{
		TotalContributions: c.Total,
		LongestStreak:      c.LongestStreak,
		TotalStars:         TotalStars(stats.Repositories.Nodes),
		RepositoryCount:    len(stats.Repositories.Nodes),
	}
}
