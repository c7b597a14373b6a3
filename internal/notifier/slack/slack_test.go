package slack

import (
	"context"
	"testing"

	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fcnordhavn/matchday/internal/metrics"
	"github.com/fcnordhavn/matchday/internal/payload"
)

// fakeSlackAPI captures posted messages without hitting the network.
type fakeSlackAPI struct {
	calls []string
	err   error
}

func (f *fakeSlackAPI) PostMessageContext(_ context.Context, channelID string, _ ...slackapi.MsgOption) (string, string, error) {
	f.calls = append(f.calls, channelID)
	if f.err != nil {
		return "", "", f.err
	}
	return channelID, "1234.5678", nil
}

func TestSendEventNotification(t *testing.T) {
	api := &fakeSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	ts, err := n.SendEventNotification(payload.Payload{
		EventType: "goal_scored",
		Player:    "Smith",
		Minute:    34,
		Opponent:  "Riverside FC",
		HomeScore: 1,
	}, false)

	require.NoError(t, err)
	assert.Equal(t, "1234.5678", ts)
	require.Len(t, api.calls, 1)
	assert.Equal(t, "C123", api.calls[0])
}

func TestSendEventNotificationDryRun(t *testing.T) {
	api := &fakeSlackAPI{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	ts, err := n.SendEventNotification(payload.Payload{EventType: "match_kickoff"}, true)

	require.NoError(t, err)
	assert.Equal(t, "dry-run-ts", ts)
	assert.Empty(t, api.calls, "dry run must not call the API")
}

func TestFormatEventMessageHeaders(t *testing.T) {
	cases := map[string]payload.Payload{
		"goal":         {EventType: "goal_scored", Player: "Smith"},
		"second":       {EventType: "card_second_yellow", Player: "Jones"},
		"substitution": {EventType: "substitution_made", PlayerOut: "Smith", PlayerIn: "Brown", MinutesPlayed: 70},
		"full time":    {EventType: "match_full_time"},
	}
	for name, p := range cases {
		t.Run(name, func(t *testing.T) {
			msg := formatEventMessage(p)
			require.NotEmpty(t, msg.Blocks.BlockSet)
			_, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
			assert.True(t, ok, "first block should be a header")
		})
	}
}
