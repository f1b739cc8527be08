package leaderboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
)

var t0 = time.Date(2026, 5, 1, 6, 0, 0, 0, time.UTC)

func catch(id, user, spot, species string, weight float64, unit string, offset time.Duration) models.Catch {
	return models.Catch{ID: id, UserID: user, SpotID: spot, Species: species, Weight: weight, Unit: unit, CaughtAt: t0.Add(offset)}
}

func fixtures() ([]models.Catch, map[string]models.Spot) {
	spots := map[string]models.Spot{
		"s1": {ID: "s1", Name: "Mill Pond", Territory: "north"},
		"s2": {ID: "s2", Name: "Reed Bend", Territory: "north"},
		"s3": {ID: "s3", Name: "Deep Lock", Territory: "north"},
		"s4": {ID: "s4", Name: "Quarry", Territory: "south"},
	}
	catches := []models.Catch{
		catch("c1", "ann", "s1", "pike", 5, models.UnitKilograms, 0),
		catch("c2", "bob", "s1", "pike", 10, models.UnitPounds, time.Hour), // 4.5 kg
		catch("c3", "ann", "s2", "bass", 2, models.UnitKilograms, 0),
		catch("c4", "bob", "s3", "carp", 8, models.UnitKilograms, 0),
		catch("c5", "bob", "s4", "carp", 3, models.UnitKilograms, time.Hour),
		catch("c6", "ann", "s4", "carp", 3, models.UnitKilograms, 0),
	}
	return catches, spots
}

func TestLeadersNormalisesUnitsAndBreaksTiesByTime(t *testing.T) {
	catches, _ := fixtures()

	leaders := Leaders(catches)

	assert.Equal(t, "c1", leaders["s1"].ID)
	assert.Equal(t, "c6", leaders["s4"].ID, "earlier catch keeps the crown on a tie")
}

func TestCrownedSpots(t *testing.T) {
	catches, spots := fixtures()

	crowned := CrownedSpots("ann", catches, spots)

	require.Len(t, crowned, 3)
	assert.Equal(t, "s1", crowned[0].SpotID)
	assert.Equal(t, "Mill Pond", crowned[0].SpotName)
	assert.Equal(t, "s4", crowned[1].SpotID)
	assert.Equal(t, "s2", crowned[2].SpotID)
	assert.Empty(t, CrownedSpots("nobody", catches, spots))
}

func TestRuledTerritoriesRequiresStrictLead(t *testing.T) {
	catches, spots := fixtures()

	// north: ann 2 crowns, bob 1; south: ann 1.
	assert.Equal(t, 2, RuledTerritories("ann", catches, spots))
	assert.Equal(t, 0, RuledTerritories("bob", catches, spots))

	tied := append(catches, catch("c7", "bob", "s2", "bass", 9, models.UnitKilograms, 0))
	assert.Equal(t, 1, RuledTerritories("ann", tied, spots))
}

func TestStats(t *testing.T) {
	catches, spots := fixtures()
	var own []models.Catch
	for _, c := range catches {
		if c.UserID == "ann" {
			own = append(own, c)
		}
	}

	stats := Stats("ann", own, catches, spots)

	assert.Equal(t, 3, stats.TotalCatches)
	assert.Equal(t, 3, stats.CrownedSpots)
	assert.Equal(t, 2, stats.RuledTerritories)
	require.NotNil(t, stats.LargestCatch)
	assert.Equal(t, 5.0, *stats.LargestCatch)
	assert.Equal(t, models.UnitKilograms, *stats.LargestCatchUnit)
	require.NotNil(t, stats.FavoriteSpecies)
	assert.Equal(t, "bass", *stats.FavoriteSpecies)
}

func TestStatsWithoutCatches(t *testing.T) {
	stats := Stats("ann", nil, nil, nil)

	assert.Zero(t, stats.TotalCatches)
	assert.Nil(t, stats.LargestCatch)
	assert.Nil(t, stats.FavoriteSpecies)
}
