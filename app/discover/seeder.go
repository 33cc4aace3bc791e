package discover

import (
	"fmt"
	"log/slog"

	"github.com/datkv/itch-creators/app/scrape"
)

// Seeder registers the curated creator list so their histories get
// backfilled without waiting for a feed appearance.
type Seeder struct {
	creators CreatorStore
}

func NewSeeder(creators CreatorStore) *Seeder {
	return &Seeder{creators: creators}
}

// SeedStats distinguishes newly added creators from already known ones.
type SeedStats struct {
	Added   int
	Skipped int
}

// Seed registers each curated creator. Already known creators are left
// untouched and counted as skipped.
func (s *Seeder) Seed(names []string) (SeedStats, error) {
	stats := SeedStats{}

	for _, name := range names {
		existing, err := s.creators.GetCreatorByName(name)
		if err != nil {
			return stats, fmt.Errorf("failed to look up creator %s: %w", name, err)
		}
		if existing != nil {
			stats.Skipped++
			continue
		}

		if _, err := s.creators.UpsertCreator(name, scrape.CreatorProfileURL(name)); err != nil {
			return stats, fmt.Errorf("failed to seed creator %s: %w", name, err)
		}

		stats.Added++
		slog.Info("Seeded creator", "creator", name)
	}

	return stats, nil
}
