package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clientdesk/internal/core/domain"
	"github.com/custodia-labs/clientdesk/internal/logger"
)

var (
	eventsOwner  string
	eventsPeriod string
	eventsFrom   string
	eventsTo     string
	eventsJSON   bool
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events from the owner's Google calendar",
	Long: `Lists events from the owner's primary Google calendar.

The window is either a period (today, week or month) or an explicit
--from/--to pair in RFC 3339 form. Weeks start on Sunday.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsOwner, "owner", "", "owner user ID")
	eventsCmd.Flags().StringVar(&eventsPeriod, "period", string(domain.PeriodWeek), "today, week or month")
	eventsCmd.Flags().StringVar(&eventsFrom, "from", "", "window start (RFC 3339)")
	eventsCmd.Flags().StringVar(&eventsTo, "to", "", "window end (RFC 3339)")
	eventsCmd.Flags().BoolVar(&eventsJSON, "json", false, "output events as JSON")
	eventsCmd.MarkFlagsRequiredTogether("from", "to")
	rootCmd.AddCommand(eventsCmd)
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if err := requireOwner(eventsOwner); err != nil {
		return err
	}

	from, to, err := eventsWindow(time.Now())
	if err != nil {
		return err
	}

	a, err := openApp()
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("closing stores", "error", err)
		}
	}()

	events, err := a.calendar.ListEvents(cmd.Context(), eventsOwner, from, to)
	if err != nil {
		return fmt.Errorf("listing events: %w", err)
	}
	if events == nil {
		events = []domain.CalendarEvent{}
	}

	if eventsJSON {
		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal events: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	outputEvents(cmd, events)
	return nil
}

func eventsWindow(now time.Time) (time.Time, time.Time, error) {
	if eventsFrom == "" || eventsTo == "" {
		switch p := domain.Period(eventsPeriod); p {
		case domain.PeriodToday, domain.PeriodWeek, domain.PeriodMonth:
			from, to := domain.WindowForPeriod(p, now)
			return from, to, nil
		default:
			return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q (want today, week or month)", eventsPeriod)
		}
	}

	from, err := time.Parse(time.RFC3339, eventsFrom)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --from: %w", err)
	}
	to, err := time.Parse(time.RFC3339, eventsTo)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid --to: %w", err)
	}
	return from, to, nil
}

func outputEvents(cmd *cobra.Command, events []domain.CalendarEvent) {
	if len(events) == 0 {
		cmd.Println("No events found.")
		return
	}

	p := newPainter(cmd.OutOrStdout())
	day := ""
	for i := range events {
		e := &events[i]
		if d := e.Start.Format("Mon Jan 02"); d != day {
			if day != "" {
				cmd.Println()
			}
			cmd.Println(p.header(d))
			day = d
		}

		when := "all day"
		if !e.AllDay {
			when = e.Start.Format("15:04") + "-" + e.End.Format("15:04")
		}
		line := fmt.Sprintf("  %-11s %s", when, e.Title)
		if e.Location != nil && *e.Location != "" {
			line += " " + p.dim("@ "+*e.Location)
		}
		cmd.Println(line)
	}
}
