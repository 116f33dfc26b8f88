package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/resvsim/schedule-sim/sim/deck"
)

// validateCmd checks a deck and builds its schedule without running it
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a deck and build its schedule without running it",
	Run: func(cmd *cobra.Command, args []string) {
		setLogLevel()
		if deckPath == "" {
			logrus.Fatalf("--deck is required")
		}
		if err := validateDeck(cmd.OutOrStdout(), deckPath); err != nil {
			logrus.Fatalf("deck %s: %v", deckPath, err)
		}
	},
}

func validateDeck(w io.Writer, path string) error {
	d, err := deck.Load(path)
	if err != nil {
		return err
	}
	sched, err := d.Build()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "deck OK: %s units, %d report steps, %d wells, %d groups\n",
		sched.UnitSystem(), sched.NumReportSteps(), len(sched.AllWellNames()), len(sched.AllGroupNames()))
	return err
}
