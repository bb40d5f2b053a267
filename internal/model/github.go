package model

// GithubStats mirrors the `user` object returned by the GitHub GraphQL query.
// Field names match the upstream JSON so the payload can be passed through as is.
type GithubStats struct {
	ContributionsCollection ContributionsCollection `json:"contributionsCollection"`
	Repositories            RepositoryConnection    `json:"repositories"`
}

type ContributionsCollection struct {
	ContributionCalendar ContributionCalendar `json:"contributionCalendar"`
}

// ContributionCalendar keeps weeks and days in upstream order, oldest first.
type ContributionCalendar struct {
	TotalContributions int                `json:"totalContributions"`
	Weeks              []ContributionWeek `json:"weeks"`
}

type ContributionWeek struct {
	ContributionDays []ContributionDay `json:"contributionDays"`
}

type ContributionDay struct {
	ContributionCount int    `json:"contributionCount"`
	Date              string `json:"date"`
	Color             string `json:"color"`
}

type RepositoryConnection struct {
	Nodes []Repository `json:"nodes"`
}

type Repository struct {
	Name           string             `json:"name"`
	StargazerCount int                `json:"stargazerCount"`
	ForkCount      int                `json:"forkCount"`
	URL            string             `json:"url"`
	Description    *string            `json:"description"`
	Languages      LanguageConnection `json:"languages"`
}

type LanguageConnection struct {
	Nodes []Language `json:"nodes"`
}

type Language struct {
	Name  string  `json:"name"`
	Color *string `json:"color"`
}

// StatsSummary holds the values derived from GithubStats. It is never persisted.
type StatsSummary struct {
	TotalContributions int `json:"totalContributions"`
	LongestStreak      int `json:"longestStreak"`
	TotalStars         int `json:"totalStars"`
	RepositoryCount    int `json:"repositoryCount"`
}
