package domain

// Article is a core entity describing one candidate news item fetched
// from a provider. It is immutable and discarded after extraction; only
// the derived Record is persisted.
type Article struct {
	URL        string
	Title      string
	Excerpt    string
	Body       string
	ReportDate string // YYYY-MM-DD, the date the article reports about
	Source     string
}
