package bot

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finbot-ai/finbot/internal/chat"
	"github.com/finbot-ai/finbot/internal/selection"
)

func newTestBot() *Bot {
	return &Bot{
		flows:   make(map[string]*flowState),
		inbound: make(map[string]chan chat.Message),
	}
}

func (b *Bot) addFlow(flowID, ownerID string) *flowState {
	flow := selection.NewFlow(ownerID)
	fs := &flowState{flow: flow, options: flow.Options()}
	b.mu.Lock()
	b.flows[flowID] = fs
	b.mu.Unlock()
	return fs
}

func TestParseCustomID(t *testing.T) {
	flowID, optionID, ok := parseCustomID("finbot:42:stocks")
	require.True(t, ok)
	assert.Equal(t, "42", flowID)
	assert.Equal(t, "stocks", optionID)

	_, _, ok = parseCustomID("otherbot:42:stocks")
	assert.False(t, ok)

	_, _, ok = parseCustomID("finbot:42")
	assert.False(t, ok)
}

func TestButtonRowsSplitAtFive(t *testing.T) {
	flow := selection.NewFlow("owner")
	require.NoError(t, flow.Advance("stocks", "owner"))

	rows := buttonRows("1", flow.Options(), false)
	require.Len(t, rows, 2, "eight instruments need two rows")

	first, ok := rows[0].(discordgo.ActionsRow)
	require.True(t, ok)
	assert.Len(t, first.Components, 5)

	btn, ok := first.Components[0].(discordgo.Button)
	require.True(t, ok)
	assert.Equal(t, "finbot:1:AAPL", btn.CustomID)
	assert.False(t, btn.Disabled)
}

func TestButtonRowsDisabled(t *testing.T) {
	rows := buttonRows("1", selection.NewFlow("owner").Options(), true)
	require.Len(t, rows, 1)
	row := rows[0].(discordgo.ActionsRow)
	for _, c := range row.Components {
		assert.True(t, c.(discordgo.Button).Disabled)
	}
}

func TestToDiscordEmbed(t *testing.T) {
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e := chat.Embed{
		Title:       "Headline",
		URL:         "https://x",
		Description: "summary",
		Fields:      []chat.EmbedField{{Name: "Source", Value: "wire", Inline: true}},
		ImageURL:    "https://img",
		FooterText:  "Finbot News",
		Timestamp:   ts,
	}

	got := toDiscordEmbed(e)
	assert.Equal(t, "Headline", got.Title)
	require.Len(t, got.Fields, 1)
	assert.True(t, got.Fields[0].Inline)
	require.NotNil(t, got.Image)
	assert.Equal(t, "https://img", got.Image.URL)
	require.NotNil(t, got.Footer)
	assert.Equal(t, "2025-06-01T12:00:00Z", got.Timestamp)
}

func TestAdvanceFlowOutcomes(t *testing.T) {
	b := newTestBot()
	b.addFlow("1", "owner")

	out := b.advanceFlow("1", "stocks", "intruder")
	assert.Equal(t, "Not your session.", out.rejection)

	out = b.advanceFlow("1", "stocks", "owner")
	assert.Empty(t, out.rejection)
	assert.Equal(t, "Which instrument do you want to track?", out.prompt)
	assert.Len(t, out.options, 8)

	out = b.advanceFlow("1", "TSLA", "owner")
	require.Empty(t, out.rejection)
	out = b.advanceFlow("1", "6h", "owner")
	require.True(t, out.completed)
	assert.Equal(t, "TSLA", out.result.Ticker)
	assert.Equal(t, "owner", out.ownerID)

	// The completed flow is gone; another click is rejected.
	out = b.advanceFlow("1", "6h", "owner")
	assert.Equal(t, "This selection has expired.", out.rejection)
}

func TestAdvanceFlowUnknownFlow(t *testing.T) {
	out := newTestBot().advanceFlow("missing", "stocks", "owner")
	assert.Equal(t, "This selection has expired.", out.rejection)
}

func TestTakeExpiredFlowStaleGeneration(t *testing.T) {
	b := newTestBot()
	fs := b.addFlow("1", "owner")
	fs.gen = 3

	_, _, ok := b.takeExpiredFlow("1", 2)
	assert.False(t, ok, "a timer from an earlier stage must be a no-op")

	fs2, options, ok := b.takeExpiredFlow("1", 3)
	require.True(t, ok)
	assert.Equal(t, selection.StageTimedOut, fs2.flow.Stage())
	assert.Len(t, options, 2)
}

// A button click and the stage timer can fire on separate goroutines;
// both paths must serialize on the bot mutex around the flow.
func TestAdvanceAndExpireAreSerialized(t *testing.T) {
	b := newTestBot()

	for i := 0; i < 50; i++ {
		flowID := strconv.Itoa(i)
		b.addFlow(flowID, "owner")

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			b.advanceFlow(flowID, "stocks", "owner")
		}()
		go func() {
			defer wg.Done()
			b.takeExpiredFlow(flowID, 0)
		}()
		wg.Wait()
	}

	// Stop any stage timers armed by successful advances.
	b.mu.Lock()
	for _, fs := range b.flows {
		if fs.timer != nil {
			fs.timer.Stop()
		}
	}
	b.mu.Unlock()
}

func TestReadyInDMRoutesToSession(t *testing.T) {
	b := newTestBot()
	inbound := make(chan chat.Message, 1)
	b.mu.Lock()
	b.inbound["u1"] = inbound
	b.mu.Unlock()

	b.onMessageCreate(nil, &discordgo.MessageCreate{Message: &discordgo.Message{
		Content:   "ready",
		GuildID:   "",
		ChannelID: "dm-chan",
		Author:    &discordgo.User{ID: "u1"},
	}})

	select {
	case msg := <-inbound:
		assert.Equal(t, "ready", msg.Content)
		assert.True(t, msg.Private)
	default:
		t.Fatal("DM was not routed to the session loop")
	}

	b.mu.Lock()
	assert.Empty(t, b.flows, "a DM must not start a selection flow")
	b.mu.Unlock()
}

func TestToDiscordEmbedOmitsEmptyParts(t *testing.T) {
	got := toDiscordEmbed(chat.Embed{Title: "bare"})
	assert.Nil(t, got.Image)
	assert.Nil(t, got.Footer)
	assert.Empty(t, got.Timestamp)
}
