package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/models"
	"github.com/Anthony-Yangg/reel-royale2-sub001/internal/profile"
)

var (
	editUsername     string
	editBio          string
	editHomeLocation string
)

var profileCmd = &cobra.Command{
	Use:   "profile [user-id]",
	Short: "Show a profile, your own when no id is given",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProfile,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit your username, bio or home location",
	Long: `Only the flags you pass are changed. Pass an empty value to clear
the bio or home location.

Example:
  reelctl profile edit --bio "Walleye and nothing else"`,
	RunE: runProfileEdit,
}

func init() {
	profileEditCmd.Flags().StringVar(&editUsername, "username", "", "new username")
	profileEditCmd.Flags().StringVar(&editBio, "bio", "", "new bio")
	profileEditCmd.Flags().StringVar(&editHomeLocation, "home-location", "", "new home location")
	profileCmd.AddCommand(profileEditCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	userID := ""
	if len(args) == 1 {
		userID = args[0]
	}
	agg := profile.NewAggregator(a.backend, a.sess, cfg, logger)
	if err := agg.Load(cmd.Context(), userID); err != nil {
		return err
	}
	printProfile(cmd.OutOrStdout(), agg.Snapshot())
	return nil
}

func runProfileEdit(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	var edits profile.Edits
	if cmd.Flags().Changed("username") {
		edits.Username = &editUsername
	}
	if cmd.Flags().Changed("bio") {
		edits.Bio = &editBio
	}
	if cmd.Flags().Changed("home-location") {
		edits.HomeLocation = &editHomeLocation
	}
	if edits == (profile.Edits{}) {
		return fmt.Errorf("nothing to change, pass --username, --bio or --home-location")
	}

	agg := profile.NewAggregator(a.backend, a.sess, cfg, logger)
	if err := agg.Load(cmd.Context(), ""); err != nil {
		return err
	}
	user, err := agg.Save(cmd.Context(), edits)
	if err != nil {
		return err
	}
	if err := saveSession(sessionPath, a.sess); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved profile for @%s\n", user.Username)
	return nil
}

func printProfile(w io.Writer, s profile.State) {
	b := s.Bundle
	if b == nil {
		return
	}
	fmt.Fprintf(w, "@%s\n", b.User.Username)
	if b.User.Bio != nil {
		fmt.Fprintf(w, "  %s\n", *b.User.Bio)
	}
	if b.User.HomeLocation != nil {
		fmt.Fprintf(w, "  Home: %s\n", *b.User.HomeLocation)
	}

	switch {
	case b.Stats != nil:
		st := b.Stats
		fmt.Fprintf(w, "  %d catches  %d crowns  %d territories\n", st.TotalCatches, st.CrownedSpots, st.RuledTerritories)
		if st.LargestCatch != nil && st.LargestCatchUnit != nil {
			fmt.Fprintf(w, "  Largest catch: %.2f %s\n", *st.LargestCatch, *st.LargestCatchUnit)
		}
		if st.FavoriteSpecies != nil {
			fmt.Fprintf(w, "  Favourite species: %s\n", *st.FavoriteSpecies)
		}
	case b.IsDegraded(models.SectionStats):
		fmt.Fprintln(w, "  Stats unavailable")
	}

	fmt.Fprintln(w, "\nCrowned spots")
	if b.IsDegraded(models.SectionCrownedSpots) {
		fmt.Fprintln(w, "  unavailable")
	}
	for _, c := range b.CrownedSpots {
		fmt.Fprintf(w, "  %s (%s): %s %.2f %s\n", c.SpotName, c.Territory, c.Species, c.Weight, c.Unit)
	}

	fmt.Fprintln(w, "\nRecent catches")
	if b.IsDegraded(models.SectionRecentCatches) {
		fmt.Fprintln(w, "  unavailable")
	}
	for _, c := range b.RecentCatches {
		fmt.Fprintf(w, "  %s  %s %.2f %s\n", c.CaughtAt.Format("2006-01-02"), c.Species, c.Weight, c.Unit)
	}
}
