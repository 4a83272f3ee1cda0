package store

import "sort"

// MonthCount is one row of the store summary.
type MonthCount struct {
	Year  string
	Month string
	Count int
}

// Counts returns per-month record counts ordered by year and calendar
// month, skipping empty buckets.
func (s Store) Counts() []MonthCount {
	years := make([]string, 0, len(s))
	for year := range s {
		years = append(years, year)
	}
	sort.Strings(years)

	var counts []MonthCount
	for _, year := range years {
		for _, month := range monthOrder {
			records, ok := s[year][month]
			if !ok || len(records) == 0 {
				continue
			}
			counts = append(counts, MonthCount{Year: year, Month: month, Count: len(records)})
		}
	}
	return counts
}

// PlantasEnAveria tallies plant names reported under plantas.averia
// across every record, resolving each name through the provided
// canonicalizer. Names the canonicalizer does not recognize are counted
// under their reported spelling.
func (s Store) PlantasEnAveria(resolve func(string) (string, bool)) map[string]int {
	tally := make(map[string]int)
	for _, months := range s {
		for _, records := range months {
			for _, rec := range records {
				for _, name := range averiaPlantas(rec.Data) {
					if canonical, ok := resolve(name); ok {
						name = canonical
					}
					tally[name]++
				}
			}
		}
	}
	return tally
}

func averiaPlantas(datos map[string]any) []string {
	plantas, ok := datos["plantas"].(map[string]any)
	if !ok {
		return nil
	}
	averia, ok := plantas["averia"].([]any)
	if !ok {
		return nil
	}

	var names []string
	for _, entry := range averia {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		if name, ok := fields["planta"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}
