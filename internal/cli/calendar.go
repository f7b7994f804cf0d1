package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/storepulse/storepulse/internal/calendar"
	"github.com/storepulse/storepulse/internal/db"
	"github.com/storepulse/storepulse/internal/logging"
	"github.com/storepulse/storepulse/internal/store"
)

var (
	calendarFrom string
	calendarTo   string
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Build or refresh the calendar dimension",
	Long: `Derive one calendar row per date and upsert them into the calendar
table. Without flags the range covers the sales history (min to max
sale date). The command is idempotent: re-running it updates derived
attributes in place and never duplicates a date.

Example:
  storepulse calendar
  storepulse calendar --from 2022-01-01 --to 2023-12-31`,
	RunE: runCalendarCmd,
}

func init() {
	calendarCmd.Flags().StringVar(&calendarFrom, "from", "",
		"first calendar date (YYYY-MM-DD, default: earliest sale date)")
	calendarCmd.Flags().StringVar(&calendarTo, "to", "",
		"last calendar date (YYYY-MM-DD, default: latest sale date)")
}

func runCalendarCmd(cmd *cobra.Command, args []string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if (calendarFrom == "") != (calendarTo == "") {
		return fmt.Errorf("--from and --to must be given together")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.Connection)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	s := store.New(pool)

	var from, to time.Time
	if calendarFrom != "" {
		from, err = time.Parse("2006-01-02", calendarFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		to, err = time.Parse("2006-01-02", calendarTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
	} else {
		var ok bool
		from, to, ok, err = s.SaleDateRange(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no sales to derive a calendar range from; use --from and --to")
		}
	}

	days := calendar.DeriveRange(from, to)
	if days == nil {
		return fmt.Errorf("invalid range: %s is after %s",
			from.Format("2006-01-02"), to.Format("2006-01-02"))
	}

	if err := s.UpsertCalendar(ctx, days); err != nil {
		return err
	}

	if err := db.EnsureMetadataTable(ctx, pool); err != nil {
		return err
	}
	if err := db.SaveMetadata(ctx, pool, db.MetaCalendarFrom, from.Format("2006-01-02")); err != nil {
		return err
	}
	if err := db.SaveMetadata(ctx, pool, db.MetaCalendarTo, to.Format("2006-01-02")); err != nil {
		return err
	}

	logging.Info().
		Str("from", from.Format("2006-01-02")).
		Str("to", to.Format("2006-01-02")).
		Int("days", len(days)).
		Msg("Calendar dimension updated")

	return nil
}
