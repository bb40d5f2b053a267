package model

// CatalogItem is one card of a portfolio category (a project, a job, a video...).
type CatalogItem struct {
	ID          string `yaml:"id" json:"id"`
	Artist      string `yaml:"artist" json:"artist"`
	Album       string `yaml:"album" json:"album"`
	Category    string `yaml:"category" json:"category"`
	Label       string `yaml:"label" json:"label"`
	Year        string `yaml:"year" json:"year"`
	Image       string `yaml:"image" json:"image"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Link        string `yaml:"link,omitempty" json:"link,omitempty"`
	Action      string `yaml:"action,omitempty" json:"action,omitempty"`
}
