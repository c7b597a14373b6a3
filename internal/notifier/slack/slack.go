package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/slack-go/slack"

	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/notifier"
	"github.com/fcnordhavn/matchday/internal/payload"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier posts live-ticker messages to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific client.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// SendEventNotification posts a ticker message for one accepted event.
func (s *Notifier) SendEventNotification(p payload.Payload, dryRun bool) (string, error) {
	msg := formatEventMessage(p)
	return s.sendMessage(msg, dryRun)
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return timestamp, nil
}

// formatEventMessage builds the Block Kit message for an event payload.
func formatEventMessage(p payload.Payload) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", headerFor(p), true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%d' — vs %s\nScore: %d-%d", p.Minute, p.Opponent, p.HomeScore, p.AwayScore)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	var contextElements []slack.MixedElement
	switch p.EventType {
	case "goal_scored":
		if p.Assist != "" {
			contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("Assist: %s", p.Assist), true, false))
		}
	case "substitution_made":
		contextElements = append(contextElements, slack.NewTextBlockObject("plain_text", fmt.Sprintf("%s off (%d min), %s on", p.PlayerOut, p.MinutesPlayed, p.PlayerIn), true, false))
	}
	if len(contextElements) > 0 {
		blocks = append(blocks, slack.NewContextBlock("", contextElements...))
	}

	return slack.NewBlockMessage(blocks...)
}

func headerFor(p payload.Payload) string {
	switch p.EventType {
	case "goal_scored":
		return fmt.Sprintf("⚽ GOAL! %s", p.Player)
	case "goal_conceded":
		return "⚽ Goal for the opposition"
	case "card_shown":
		return fmt.Sprintf("🟨 Card for %s", p.Player)
	case "card_second_yellow":
		return fmt.Sprintf("🟥 Second yellow! %s is off", p.Player)
	case "card_opposition":
		return "🟨 Card for the opposition"
	case "substitution_made":
		return "🔄 Substitution"
	case "match_kickoff":
		return "🏟️ Kickoff!"
	case "match_half_time":
		return "⏸️ Half time"
	case "match_second_half":
		return "▶️ Second half underway"
	case "match_full_time":
		return "🏁 Full time"
	}
	return "Match update"
}
