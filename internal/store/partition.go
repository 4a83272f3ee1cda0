package store

import (
	"log/slog"
	"strconv"
	"strings"

	"ApagonScanner/internal/domain"
)

// MonthNames maps month numbers to the Spanish names used as store keys.
var MonthNames = map[int]string{
	1:  "enero",
	2:  "febrero",
	3:  "marzo",
	4:  "abril",
	5:  "mayo",
	6:  "junio",
	7:  "julio",
	8:  "agosto",
	9:  "septiembre",
	10: "octubre",
	11: "noviembre",
	12: "diciembre",
}

// monthOrder keeps iteration deterministic; map order is not.
var monthOrder = []string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Partition groups extraction records by year and Spanish month name.
// It shares the Store shape so a staged day partition can be merged
// directly.
type Partition map[string]map[string][]domain.Record

// Partitioner buckets records by the year and month of their report
// date. Records with missing or malformed dates, or with years outside
// [MinYear, MaxYear], are dropped with a warning; partitioning never
// aborts a run over one bad date.
type Partitioner struct {
	MinYear int
	MaxYear int
	Logger  *slog.Logger
}

// Partition groups the records. The result always carries the full
// year/month skeleton for the configured range, matching the layout of
// the persistent document.
func (p Partitioner) Partition(records []domain.Record) Partition {
	out := make(Partition)
	for year := p.MinYear; year <= p.MaxYear; year++ {
		months := make(map[string][]domain.Record, len(monthOrder))
		for _, name := range monthOrder {
			months[name] = []domain.Record{}
		}
		out[strconv.Itoa(year)] = months
	}

	for _, rec := range records {
		year, month, ok := p.bucketFor(rec.Date)
		if !ok {
			continue
		}
		out[year][month] = append(out[year][month], rec)
	}

	return out
}

func (p Partitioner) bucketFor(fecha string) (year, month string, ok bool) {
	parts := strings.Split(fecha, "-")
	if len(parts) < 2 {
		p.warn("record dropped: malformed fecha", "fecha", fecha)
		return "", "", false
	}

	yearNum, err := strconv.Atoi(parts[0])
	if err != nil || yearNum < p.MinYear || yearNum > p.MaxYear {
		p.warn("record dropped: year out of range", "fecha", fecha)
		return "", "", false
	}

	monthNum, err := strconv.Atoi(parts[1])
	if err != nil {
		p.warn("record dropped: malformed month", "fecha", fecha)
		return "", "", false
	}
	name, found := MonthNames[monthNum]
	if !found {
		p.warn("record dropped: invalid month", "fecha", fecha)
		return "", "", false
	}

	return parts[0], name, true
}

func (p Partitioner) warn(msg string, args ...any) {
	if p.Logger != nil {
		p.Logger.Warn(msg, args...)
	}
}
