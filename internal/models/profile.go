package models

import "time"

// Profile sections that can be reported as degraded.
const (
	SectionStats         = "stats"
	SectionCrownedSpots  = "crowned_spots"
	SectionRecentCatches = "recent_catches"
)

// ProfileStats are read-only aggregates computed by the backend.
type ProfileStats struct {
	TotalCatches     int      `json:"total_catches"`
	CrownedSpots     int      `json:"crowned_spots"`
	RuledTerritories int      `json:"ruled_territories"`
	LargestCatch     *float64 `json:"largest_catch,omitempty"`
	LargestCatchUnit *string  `json:"largest_catch_unit,omitempty"`
	FavoriteSpecies  *string  `json:"favorite_species,omitempty"`
}

// CrownedSpot is a spot where the user holds the top-ranked catch.
type CrownedSpot struct {
	SpotID    string    `json:"spot_id"`
	SpotName  string    `json:"spot_name"`
	Territory string    `json:"territory"`
	Species   string    `json:"species"`
	Weight    float64   `json:"weight"`
	Unit      string    `json:"unit"`
	CaughtAt  time.Time `json:"caught_at"`
}

// ProfileBundle is one consistent snapshot of a profile. Degraded lists the
// sections that could not be computed; the user record is always present.
type ProfileBundle struct {
	User          User          `json:"user"`
	Stats         *ProfileStats `json:"stats,omitempty"`
	CrownedSpots  []CrownedSpot `json:"crowned_spots"`
	RecentCatches []Catch       `json:"recent_catches"`
	Degraded      []string      `json:"degraded,omitempty"`
}

// IsDegraded reports whether section could not be loaded.
func (b *ProfileBundle) IsDegraded(section string) bool {
	for _, s := range b.Degraded {
		if s == section {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the bundle.
func (b *ProfileBundle) Clone() *ProfileBundle {
	if b == nil {
		return nil
	}
	out := *b
	if b.Stats != nil {
		stats := *b.Stats
		out.Stats = &stats
	}
	out.CrownedSpots = append([]CrownedSpot(nil), b.CrownedSpots...)
	out.RecentCatches = append([]Catch(nil), b.RecentCatches...)
	out.Degraded = append([]string(nil), b.Degraded...)
	return &out
}
