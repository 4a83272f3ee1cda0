package store

import (
	"sort"

	"ApagonScanner/internal/domain"
)

// Store is the persistent accumulation target: year → Spanish month →
// ordered extraction records. Links are unique across the whole store;
// the pipeline only ever appends.
type Store map[string]map[string][]domain.Record

// New returns an empty store.
func New() Store {
	return make(Store)
}

// KnownLinks collects every link already present anywhere in the store.
func (s Store) KnownLinks() map[string]bool {
	known := make(map[string]bool)
	for _, months := range s {
		for _, records := range months {
			for _, rec := range records {
				known[rec.Link] = true
			}
		}
	}
	return known
}

// Merge appends every record from the partition whose link is not yet
// known anywhere in the store, preserving insertion order. Replaying
// the same partition is a no-op. Returns the number of records added.
func (s Store) Merge(p Partition) int {
	known := s.KnownLinks()
	added := 0

	years := make([]string, 0, len(p))
	for year := range p {
		years = append(years, year)
	}
	sort.Strings(years)

	for _, year := range years {
		if _, ok := s[year]; !ok {
			s[year] = make(map[string][]domain.Record)
		}
		for _, month := range monthOrder {
			records, ok := p[year][month]
			if !ok {
				continue
			}
			if _, ok := s[year][month]; !ok {
				s[year][month] = []domain.Record{}
			}
			for _, rec := range records {
				if known[rec.Link] {
					continue
				}
				s[year][month] = append(s[year][month], rec)
				known[rec.Link] = true
				added++
			}
		}
	}

	return added
}

// Len returns the total number of records in the store.
func (s Store) Len() int {
	total := 0
	for _, months := range s {
		for _, records := range months {
			total += len(records)
		}
	}
	return total
}
