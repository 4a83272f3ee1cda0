package store

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ApagonScanner/internal/domain"
)

func partitionOf(t *testing.T, records ...domain.Record) Partition {
	t.Helper()
	return Partitioner{MinYear: 2022, MaxYear: 2025}.Partition(records)
}

func TestMergeAppendsNewRecords(t *testing.T) {
	t.Parallel()

	s := New()
	added := s.Merge(partitionOf(t,
		domain.Record{Link: "https://x/1", Date: "2024-03-07"},
		domain.Record{Link: "https://x/2", Date: "2024-03-08"},
	))

	assert.Equal(t, 2, added)
	require.Len(t, s["2024"]["marzo"], 2)
	assert.Equal(t, "https://x/1", s["2024"]["marzo"][0].Link)
	assert.Equal(t, "https://x/2", s["2024"]["marzo"][1].Link)
}

func TestMergeIsIdempotent(t *testing.T) {
	t.Parallel()

	batch := partitionOf(t,
		domain.Record{Link: "https://x/1", Date: "2024-03-07"},
		domain.Record{Link: "https://x/2", Date: "2025-01-15"},
	)

	s := New()
	first := s.Merge(batch)
	snapshot := New()
	snapshot.Merge(batch)

	second := s.Merge(batch)

	assert.Equal(t, 2, first)
	assert.Equal(t, 0, second)
	if diff := cmp.Diff(snapshot, s); diff != "" {
		t.Fatalf("store changed on replay (-want +got):\n%s", diff)
	}
}

func TestMergeSkipsLinksKnownElsewhereInStore(t *testing.T) {
	t.Parallel()

	s := New()
	s.Merge(partitionOf(t, domain.Record{Link: "https://x/1", Date: "2024-03-07"}))

	// Same link arriving under a different date must still be skipped.
	added := s.Merge(partitionOf(t, domain.Record{Link: "https://x/1", Date: "2024-04-01"}))

	assert.Equal(t, 0, added)
	assert.Empty(t, s["2024"]["abril"])
	assert.Equal(t, 1, s.Len())
}

func TestKnownLinks(t *testing.T) {
	t.Parallel()

	s := New()
	s.Merge(partitionOf(t,
		domain.Record{Link: "https://x/1", Date: "2022-06-01"},
		domain.Record{Link: "https://x/2", Date: "2024-11-20"},
	))

	known := s.KnownLinks()
	assert.True(t, known["https://x/1"])
	assert.True(t, known["https://x/2"])
	assert.False(t, known["https://x/3"])
}

func TestCountsOrderedAndNonEmpty(t *testing.T) {
	t.Parallel()

	s := New()
	s.Merge(partitionOf(t,
		domain.Record{Link: "https://x/1", Date: "2024-03-07"},
		domain.Record{Link: "https://x/2", Date: "2024-03-08"},
		domain.Record{Link: "https://x/3", Date: "2023-12-01"},
	))

	counts := s.Counts()
	require.Len(t, counts, 2)
	assert.Equal(t, MonthCount{Year: "2023", Month: "diciembre", Count: 1}, counts[0])
	assert.Equal(t, MonthCount{Year: "2024", Month: "marzo", Count: 2}, counts[1])
}

func TestPlantasEnAveria(t *testing.T) {
	t.Parallel()

	rec := domain.Record{
		Link: "https://x/1",
		Date: "2024-03-07",
		Data: domain.Datos{
			"plantas": map[string]any{
				"averia": []any{
					map[string]any{"planta": "CTE Guiteras", "unidades": 1.0},
					map[string]any{"planta": "Felton"},
				},
			},
		},
	}

	s := New()
	s.Merge(partitionOf(t, rec))

	resolve := func(name string) (string, bool) {
		if name == "CTE Guiteras" {
			return "Antonio Guiteras", true
		}
		return "", false
	}

	tally := s.PlantasEnAveria(resolve)
	assert.Equal(t, 1, tally["Antonio Guiteras"])
	assert.Equal(t, 1, tally["Felton"])
}
