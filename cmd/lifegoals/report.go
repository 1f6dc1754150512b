package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"life-goals/internal/api"
	"life-goals/internal/bot"
	"life-goals/internal/calendar"
	"life-goals/internal/config"
	"life-goals/internal/dates"
	"life-goals/internal/heatmap"
	"life-goals/internal/service"
	"life-goals/internal/store"
	"life-goals/internal/timeline"
)

// AccessTokenEnv holds a backend access token for the report commands.
const AccessTokenEnv = "LIFEGOALS_ACCESS_TOKEN"

var heatmapCmd = &cobra.Command{
	Use:   "heatmap",
	Short: "Print the yearly activity heatmap",
	Args:  cobra.NoArgs,
	RunE:  runHeatmap,
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Print the habit calendar for a month",
	Args:  cobra.NoArgs,
	RunE:  runCalendar,
}

var weekCmd = &cobra.Command{
	Use:   "week",
	Short: "Print the weekly planner",
	Args:  cobra.NoArgs,
	RunE:  runWeek,
}

var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Print goals on a shared date axis",
	Args:  cobra.NoArgs,
	RunE:  runTimeline,
}

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Print overdue, due and upcoming goals",
	Long: `Print the deadline notifications: overdue goals, goals due today, goals
due within three days and completed goals.`,
	Args: cobra.NoArgs,
	RunE: runNotify,
}

func init() {
	for _, cmd := range []*cobra.Command{heatmapCmd, calendarCmd, weekCmd, timelineCmd, notifyCmd} {
		cmd.Flags().StringP("username", "u", "", "backend username")
		cmd.Flags().StringP("password", "p", "", "backend password")
		rootCmd.AddCommand(cmd)
	}
	heatmapCmd.Flags().Int("year", 0, "year to show (default: current year)")
	heatmapCmd.Flags().String("mode", string(heatmap.ModeGoals), "intensity: goals, completions or hybrid")
	calendarCmd.Flags().String("month", "", "month as YYYY-MM (default: current month)")
	weekCmd.Flags().String("date", "", "any day of the week as YYYY-MM-DD (default: today)")
}

var headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#89b4fa"))

func writeHeading(w io.Writer, title string) error {
	_, err := fmt.Fprintln(w, headingStyle.Render(title))
	return err
}

// reportEnv is what every report command needs.
type reportEnv struct {
	snap  store.Snapshot
	loc   *time.Location
	today time.Time
}

func loadReport(cmd *cobra.Command) (reportEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return reportEnv{}, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return reportEnv{}, err
	}
	username, _ := cmd.Flags().GetString("username")
	password, _ := cmd.Flags().GetString("password")

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*cfg.APITimeout())
	defer cancel()
	snap, err := fetchSnapshot(ctx, api.New(cfg.APIBaseURL, cfg.APITimeout()), username, password, os.Getenv(AccessTokenEnv))
	if err != nil {
		return reportEnv{}, err
	}
	return reportEnv{snap: snap, loc: loc, today: dates.Today(loc)}, nil
}

// fetchSnapshot signs in with credentials, or uses token when none are
// given, and loads the account's goals and habits.
func fetchSnapshot(ctx context.Context, client *api.Client, username, password, token string) (store.Snapshot, error) {
	if username != "" {
		tokens, err := client.ObtainToken(ctx, username, password)
		if err != nil {
			return store.Snapshot{}, fmt.Errorf("sign in as %s: %w", username, err)
		}
		token = tokens.Access
	}
	if token == "" {
		return store.Snapshot{}, fmt.Errorf("pass --username and --password or set %s", AccessTokenEnv)
	}
	return store.New().Refresh(ctx, 0, client.WithToken(token))
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	year, _ := cmd.Flags().GetInt("year")
	rawMode, _ := cmd.Flags().GetString("mode")
	mode, err := heatmap.ParseMode(rawMode)
	if err != nil {
		return err
	}
	env, err := loadReport(cmd)
	if err != nil {
		return err
	}
	if year == 0 {
		year = env.today.Year()
	}
	return writeHeatmap(cmd.OutOrStdout(), env, year, mode)
}

func writeHeatmap(w io.Writer, env reportEnv, year int, mode heatmap.Mode) error {
	if err := writeHeading(w, "Activity heatmap"); err != nil {
		return err
	}
	result := heatmap.Aggregate(env.snap.Goals, year, env.loc)
	_, err := fmt.Fprintln(w, bot.RenderHeatmap(result, mode))
	return err
}

func runCalendar(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("month")
	env, err := loadReport(cmd)
	if err != nil {
		return err
	}
	year, month, err := bot.ParseMonth(raw, env.today)
	if err != nil {
		return err
	}
	return writeCalendar(cmd.OutOrStdout(), env, year, month)
}

func writeCalendar(w io.Writer, env reportEnv, year int, month time.Month) error {
	if err := writeHeading(w, "Habit calendar"); err != nil {
		return err
	}
	cells := calendar.BuildMonthGrid(year, month, env.snap.Habits, env.loc)
	_, err := fmt.Fprintln(w, bot.RenderMonth(year, month, cells))
	return err
}

func runWeek(cmd *cobra.Command, args []string) error {
	raw, _ := cmd.Flags().GetString("date")
	env, err := loadReport(cmd)
	if err != nil {
		return err
	}
	anchor, err := bot.ParseDay(raw, env.today)
	if err != nil {
		return err
	}
	return writeWeek(cmd.OutOrStdout(), env, anchor)
}

func writeWeek(w io.Writer, env reportEnv, anchor time.Time) error {
	if err := writeHeading(w, "Weekly planner"); err != nil {
		return err
	}
	plan := calendar.PlanWeek(env.snap.Goals, anchor)
	_, err := fmt.Fprintln(w, bot.RenderWeek(plan, env.today))
	return err
}

func runTimeline(cmd *cobra.Command, args []string) error {
	env, err := loadReport(cmd)
	if err != nil {
		return err
	}
	return writeTimeline(cmd.OutOrStdout(), env)
}

func writeTimeline(w io.Writer, env reportEnv) error {
	if err := writeHeading(w, "Goal timeline"); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, bot.RenderTimeline(timeline.Build(env.snap.Goals, env.today)))
	return err
}

func runNotify(cmd *cobra.Command, args []string) error {
	env, err := loadReport(cmd)
	if err != nil {
		return err
	}
	return writeNotify(cmd.OutOrStdout(), env)
}

func writeNotify(w io.Writer, env reportEnv) error {
	text := service.NewReminderService().NotificationsText(env.snap.Goals, env.today)
	_, err := fmt.Fprintln(w, bot.PlainText(text))
	return err
}
