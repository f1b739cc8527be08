// Package leaderboard derives crowns, territories and profile statistics
// from logged catches.
package leaderboard

import (
	"sort"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
)

// Leaders returns the crown-holding catch of every spot that has catches.
// The heaviest catch (normalised to kg) wins; ties go to the earlier catch.
func Leaders(catches []models.Catch) map[string]models.Catch {
	leaders := make(map[string]models.Catch)
	for _, c := range catches {
		cur, ok := leaders[c.SpotID]
		if !ok || beats(c, cur) {
			leaders[c.SpotID] = c
		}
	}
	return leaders
}

func beats(a, b models.Catch) bool {
	if a.WeightKg() != b.WeightKg() {
		return a.WeightKg() > b.WeightKg()
	}
	return a.CaughtAt.Before(b.CaughtAt)
}

// CrownedSpots lists the spots userID leads, heaviest first. catches must
// contain every catch at the spots of interest; spots maps ids to metadata.
func CrownedSpots(userID string, catches []models.Catch, spots map[string]models.Spot) []models.CrownedSpot {
	crowned := []models.CrownedSpot{}
	for spotID, c := range Leaders(catches) {
		if c.UserID != userID {
			continue
		}
		spot := spots[spotID]
		crowned = append(crowned, models.CrownedSpot{
			SpotID:    spotID,
			SpotName:  spot.Name,
			Territory: spot.Territory,
			Species:   c.Species,
			Weight:    c.Weight,
			Unit:      c.Unit,
			CaughtAt:  c.CaughtAt,
		})
	}
	sort.Slice(crowned, func(i, j int) bool {
		wi := (&models.Catch{Weight: crowned[i].Weight, Unit: crowned[i].Unit}).WeightKg()
		wj := (&models.Catch{Weight: crowned[j].Weight, Unit: crowned[j].Unit}).WeightKg()
		if wi != wj {
			return wi > wj
		}
		return crowned[i].SpotID < crowned[j].SpotID
	})
	return crowned
}

// RuledTerritories counts the territories where userID holds strictly more
// crowns than any other angler.
func RuledTerritories(userID string, catches []models.Catch, spots map[string]models.Spot) int {
	crowns := make(map[string]map[string]int) // territory -> user -> crowns
	for spotID, c := range Leaders(catches) {
		territory := spots[spotID].Territory
		if territory == "" {
			continue
		}
		if crowns[territory] == nil {
			crowns[territory] = make(map[string]int)
		}
		crowns[territory][c.UserID]++
	}

	ruled := 0
	for _, holders := range crowns {
		mine := holders[userID]
		if mine == 0 {
			continue
		}
		top := true
		for uid, n := range holders {
			if uid != userID && n >= mine {
				top = false
				break
			}
		}
		if top {
			ruled++
		}
	}
	return ruled
}

// Stats computes the profile aggregates for userID. own holds the user's
// catches; all holds every catch at the spots the user has fished.
func Stats(userID string, own, all []models.Catch, spots map[string]models.Spot) models.ProfileStats {
	stats := models.ProfileStats{
		TotalCatches:     len(own),
		CrownedSpots:     len(CrownedSpots(userID, all, spots)),
		RuledTerritories: RuledTerritories(userID, all, spots),
	}
	if len(own) == 0 {
		return stats
	}

	largest := own[0]
	species := make(map[string]int)
	for _, c := range own {
		if beats(c, largest) {
			largest = c
		}
		species[c.Species]++
	}
	weight, unit := largest.Weight, largest.Unit
	stats.LargestCatch = &weight
	stats.LargestCatchUnit = &unit

	var fav string
	for name, n := range species {
		if n > species[fav] || (n == species[fav] && name < fav) {
			fav = name
		}
	}
	stats.FavoriteSpecies = &fav
	return stats
}
