package main

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"
)

var (
	matchID  string
	dryRun   bool
	minute   string
	event    string
	player   string
	assist   string
	cardType string
)

func init() {
	submitCmd.Flags().StringVar(&matchID, "match", "", "The match ID (required)")
	submitCmd.Flags().StringVar(&minute, "minute", "", "The event minute (required)")
	submitCmd.Flags().StringVar(&event, "event", "", "The event label, e.g. Goal, Card, Substitution (required)")
	submitCmd.Flags().StringVar(&player, "player", "", "The player name (outgoing player for substitutions)")
	submitCmd.Flags().StringVar(&assist, "assist", "", "The assisting player (incoming player for substitutions)")
	submitCmd.Flags().StringVar(&cardType, "card", "", "The card type for card events: Yellow or Red")
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute the outcome without persisting or publishing")
	submitCmd.MarkFlagRequired("match")
	submitCmd.MarkFlagRequired("minute")
	submitCmd.MarkFlagRequired("event")

	replayCmd.Flags().StringVar(&matchID, "match", "", "The match ID (required)")
	replayCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Compute outcomes without persisting or publishing")
	replayCmd.MarkFlagRequired("match")

	minutesCmd.Flags().StringVar(&matchID, "match", "", "The match ID (required)")
	minutesCmd.MarkFlagRequired("match")

	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(matchesCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(replayCmd)
	rootCmd.AddCommand(minutesCmd)
	rootCmd.AddCommand(seasonStatsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var matchesCmd = &cobra.Command{
	Use:   "matches",
	Short: "List the matches in the club store",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/matches")
	},
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit a single raw event row",
	RunE: func(cmd *cobra.Command, args []string) error {
		row := map[string]string{
			"Minute": minute,
			"Event":  event,
			"Player": player,
			"Assist": assist,
		}
		if cardType != "" {
			row["Card Type"] = cardType
		}
		body, err := json.Marshal(row)
		if err != nil {
			return err
		}
		return performPostRequest(eventEndpoint("/event"), body)
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay <file.csv>",
	Short: "Replay a CSV of raw event rows through the pipeline",
	Long: `Reads a CSV file whose header row names the event columns (Minute,
Event, Player, Assist, ...) and submits all rows as one ordered batch.
Already-processed rows are skipped by the idempotency guard, so a replay
is always safe.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer f.Close()

		records, err := csv.NewReader(f).ReadAll()
		if err != nil {
			return fmt.Errorf("failed to read CSV file: %w", err)
		}
		if len(records) < 2 {
			return fmt.Errorf("CSV file must have a header row and at least one event row")
		}

		header := records[0]
		rows := make([]map[string]string, 0, len(records)-1)
		for _, record := range records[1:] {
			row := make(map[string]string, len(header))
			for i, col := range header {
				if i < len(record) {
					row[col] = record[i]
				}
			}
			rows = append(rows, row)
		}

		body, err := json.Marshal(rows)
		if err != nil {
			return err
		}
		fmt.Printf("Replaying %d rows\n", len(rows))
		return performPostRequest(eventEndpoint("/events"), body)
	},
}

var minutesCmd = &cobra.Command{
	Use:   "minutes",
	Short: "Show cumulative minutes per player for a match",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/minutes?matchID=" + url.QueryEscape(matchID))
	},
}

var seasonStatsCmd = &cobra.Command{
	Use:   "season-stats [player]",
	Short: "Show season-to-date aggregates",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		endpoint := "/season-stats"
		if len(args) == 1 {
			endpoint += "?player=" + url.QueryEscape(args[0])
		}
		return performGetRequest(endpoint)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func eventEndpoint(path string) string {
	endpoint := path + "?matchID=" + url.QueryEscape(matchID)
	if dryRun {
		endpoint += "&dry_run=true"
	}
	return endpoint
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func performPostRequest(endpoint string, body []byte) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	return printResponse(resp)
}

func printResponse(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
