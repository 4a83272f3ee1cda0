package usecase

import "ApagonScanner/internal/domain"

// FilterNew returns the articles whose URL is not in known, preserving
// input order. Every duplicate that slips past this point costs a model
// call and risks double-counting in the store, so this stays a pure
// function with no side effects.
func FilterNew(articles []domain.Article, known map[string]bool) []domain.Article {
	fresh := make([]domain.Article, 0, len(articles))
	for _, article := range articles {
		if known[article.URL] {
			continue
		}
		fresh = append(fresh, article)
	}
	return fresh
}
