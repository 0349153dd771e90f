// Package bot is the Discord adapter: it translates guild messages and
// button interactions into selection-flow calls and runs completed
// selections as DM sessions. All protocol logic lives in the core
// packages; this package only speaks discordgo.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/finbot-ai/finbot/config"
	"github.com/finbot-ai/finbot/internal/chat"
	"github.com/finbot-ai/finbot/internal/selection"
	"github.com/finbot-ai/finbot/internal/session"
)

const (
	// stageTimeout is how long each selection stage stays interactive.
	stageTimeout = 180 * time.Second

	customIDPrefix = "finbot"
	inboundBuffer  = 16
)

// flowState tracks one in-flight selection dialogue and the message
// carrying its buttons.
type flowState struct {
	flow      *selection.Flow
	channelID string
	messageID string
	options   []selection.Option
	timer     *time.Timer
	gen       uint64
}

// Bot runs the Discord surface.
type Bot struct {
	discord *discordgo.Session
	orch    *session.Orchestrator

	nextFlow atomic.Uint64

	mu      sync.Mutex
	ctx     context.Context
	flows   map[string]*flowState
	inbound map[string]chan chat.Message

	dm *dmMessenger
}

// New builds a Bot from config. The Discord connection is opened by Run.
func New(cfg *config.Config, orch *session.Orchestrator) (*Bot, error) {
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	b := &Bot{
		discord: dg,
		orch:    orch,
		flows:   make(map[string]*flowState),
		inbound: make(map[string]chan chat.Message),
		dm:      newDMMessenger(dg),
	}

	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.Identify.Intents = discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages |
		discordgo.IntentMessageContent

	return b, nil
}

// Run opens the gateway connection and blocks until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	b.mu.Lock()
	b.ctx = ctx
	b.mu.Unlock()
	if err := b.discord.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}
	slog.Info("discord bot running")

	<-ctx.Done()
	return b.discord.Close()
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	switch strings.ToLower(content) {
	case "ready":
		// The trigger only works in guild channels; in a DM it is an
		// ordinary message for the session loop.
		if m.GuildID != "" {
			b.startFlow(m)
			return
		}
	case "!ping":
		if _, err := s.ChannelMessageSend(m.ChannelID, "Pong!"); err != nil {
			slog.Warn("ping reply failed", "err", err)
		}
		return
	case "!help":
		if _, err := s.ChannelMessageSendEmbed(m.ChannelID, helpEmbed()); err != nil {
			slog.Warn("help reply failed", "err", err)
		}
		return
	}

	// Anything else in a DM belongs to that user's Q&A session.
	if m.GuildID == "" {
		b.routeDM(m.Author.ID, content)
	}
}

// startFlow posts the asset-class prompt and arms the stage timer.
func (b *Bot) startFlow(m *discordgo.MessageCreate) {
	flow := selection.NewFlow(m.Author.ID)
	flowID := strconv.FormatUint(b.nextFlow.Add(1), 10)
	options := flow.Options()

	msg, err := b.discord.ChannelMessageSendComplex(m.ChannelID, &discordgo.MessageSend{
		Embed: &discordgo.MessageEmbed{
			Title:       "Finbot Tracker",
			Description: flow.Prompt(),
		},
		Components: buttonRows(flowID, options, false),
	})
	if err != nil {
		slog.Warn("selection prompt failed", "channel", m.ChannelID, "err", err)
		return
	}

	fs := &flowState{
		flow:      flow,
		channelID: m.ChannelID,
		messageID: msg.ID,
		options:   options,
	}

	b.mu.Lock()
	b.flows[flowID] = fs
	b.armTimerLocked(flowID, fs)
	b.mu.Unlock()
}

// armTimerLocked schedules stage expiry. The generation guard makes a
// timer that loses the race against a button click a no-op.
func (b *Bot) armTimerLocked(flowID string, fs *flowState) {
	fs.gen++
	gen := fs.gen
	if fs.timer != nil {
		fs.timer.Stop()
	}
	fs.timer = time.AfterFunc(stageTimeout, func() {
		b.expireFlow(flowID, gen)
	})
}

func (b *Bot) expireFlow(flowID string, gen uint64) {
	fs, options, ok := b.takeExpiredFlow(flowID, gen)
	if !ok {
		return
	}

	// Leave the message in place with its buttons disabled.
	disabled := buttonRows(flowID, options, true)
	_, err := b.discord.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    fs.channelID,
		ID:         fs.messageID,
		Components: &disabled,
	})
	if err != nil {
		slog.Warn("disable expired selection failed", "flow", flowID, "err", err)
	}
}

// takeExpiredFlow marks the flow inert and removes it, returning a
// snapshot of its last options. The flow and its options are only
// touched under b.mu; Flow itself is not safe for concurrent use.
func (b *Bot) takeExpiredFlow(flowID string, gen uint64) (*flowState, []selection.Option, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	fs, ok := b.flows[flowID]
	if !ok || fs.gen != gen {
		return nil, nil, false
	}
	fs.flow.Expire()
	delete(b.flows, flowID)
	return fs, fs.options, true
}

func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	flowID, optionID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	out := b.advanceFlow(flowID, optionID, interactionUserID(i))
	switch {
	case out.rejection != "":
		b.respondEphemeral(i, out.rejection)
	case out.completed:
		b.respondUpdate(i, fmt.Sprintf(
			"Tracking **%s** (%s) for %s. Check your DMs.",
			out.result.Instrument, out.result.Ticker, out.result.DurationLabel), nil)
		b.startSession(out.ownerID, out.result)
	default:
		b.respondUpdate(i, out.prompt, buttonRows(flowID, out.options, false))
	}
}

// advanceOutcome is what an interaction should be answered with.
type advanceOutcome struct {
	rejection string

	completed bool
	result    selection.Result
	ownerID   string

	prompt  string
	options []selection.Option
}

// advanceFlow applies one button choice. The whole lookup-advance-read
// sequence holds b.mu so it cannot interleave with the stage timer;
// Flow itself is not safe for concurrent use.
func (b *Bot) advanceFlow(flowID, optionID, userID string) advanceOutcome {
	b.mu.Lock()
	defer b.mu.Unlock()

	fs, found := b.flows[flowID]
	if !found {
		return advanceOutcome{rejection: "This selection has expired."}
	}

	err := fs.flow.Advance(optionID, userID)
	switch {
	case errors.Is(err, selection.ErrNotOwner):
		return advanceOutcome{rejection: "Not your session."}
	case errors.Is(err, selection.ErrInert):
		return advanceOutcome{rejection: "This selection has expired."}
	case err != nil:
		return advanceOutcome{rejection: "That option is not available."}
	}

	if result, done := fs.flow.Result(); done {
		if fs.timer != nil {
			fs.timer.Stop()
		}
		delete(b.flows, flowID)
		return advanceOutcome{completed: true, result: result, ownerID: fs.flow.OwnerID()}
	}

	fs.options = fs.flow.Options()
	b.armTimerLocked(flowID, fs)
	return advanceOutcome{prompt: fs.flow.Prompt(), options: fs.options}
}

// startSession spawns the DM Q&A loop for a completed selection. One
// session per user; a second "ready" while one is live is refused.
func (b *Bot) startSession(userID string, result selection.Result) {
	b.mu.Lock()
	if _, live := b.inbound[userID]; live {
		b.mu.Unlock()
		if err := b.dm.SendText(userID, "You already have an active session."); err != nil {
			slog.Warn("session refusal failed", "user", userID, "err", err)
		}
		return
	}
	inbound := make(chan chat.Message, inboundBuffer)
	b.inbound[userID] = inbound
	ctx := b.ctx
	b.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}

	go func() {
		defer func() {
			b.mu.Lock()
			delete(b.inbound, userID)
			b.mu.Unlock()
		}()
		b.orch.Run(ctx, b.dm, inbound, userID, result.Ticker, result.Days)
	}()
}

// routeDM forwards a private message into the owner's session, if any.
// A full buffer drops the message rather than blocking the gateway.
func (b *Bot) routeDM(userID, content string) {
	b.mu.Lock()
	inbound, ok := b.inbound[userID]
	b.mu.Unlock()
	if !ok {
		return
	}
	select {
	case inbound <- chat.Message{AuthorID: userID, Content: content, Private: true}:
	default:
		slog.Warn("inbound buffer full, dropping message", "user", userID)
	}
}

func (b *Bot) respondEphemeral(i *discordgo.InteractionCreate, text string) {
	err := b.discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		slog.Warn("ephemeral response failed", "err", err)
	}
}

func (b *Bot) respondUpdate(i *discordgo.InteractionCreate, prompt string, components []discordgo.MessageComponent) {
	if components == nil {
		components = []discordgo.MessageComponent{}
	}
	err := b.discord.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{{
				Title:       "Finbot Tracker",
				Description: prompt,
			}},
			Components: components,
		},
	})
	if err != nil {
		slog.Warn("interaction update failed", "err", err)
	}
}

// buttonRows lays options out five to a row, Discord's per-row limit.
func buttonRows(flowID string, options []selection.Option, disabled bool) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	var row []discordgo.MessageComponent
	for _, opt := range options {
		row = append(row, discordgo.Button{
			Label:    opt.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: fmt.Sprintf("%s:%s:%s", customIDPrefix, flowID, opt.ID),
			Disabled: disabled,
		})
		if len(row) == 5 {
			rows = append(rows, discordgo.ActionsRow{Components: row})
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, discordgo.ActionsRow{Components: row})
	}
	return rows
}

func parseCustomID(id string) (flowID, optionID string, ok bool) {
	parts := strings.SplitN(id, ":", 3)
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return "", "", false
	}
	return parts[1], parts[2], true
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func helpEmbed() *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Finbot Help",
		Description: "Track an instrument and ask finance questions about it.",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ready", Value: "Start a tracking session: pick an asset class, an instrument, and a duration."},
			{Name: "Q&A", Value: "After the news digest arrives by DM, ask finance questions for 10 minutes."},
			{Name: "Live data", Value: "Ask for a current price (e.g. \"What's AAPL's price right now?\") to get a live quote."},
			{Name: "!ping", Value: "Check the bot is alive."},
		},
	}
}

// dmMessenger delivers session output over direct messages, caching the
// DM channel per user.
type dmMessenger struct {
	discord *discordgo.Session

	mu       sync.Mutex
	channels map[string]string
}

func newDMMessenger(dg *discordgo.Session) *dmMessenger {
	return &dmMessenger{discord: dg, channels: make(map[string]string)}
}

func (d *dmMessenger) channelFor(userID string) (string, error) {
	d.mu.Lock()
	id, ok := d.channels[userID]
	d.mu.Unlock()
	if ok {
		return id, nil
	}

	ch, err := d.discord.UserChannelCreate(userID)
	if err != nil {
		return "", fmt.Errorf("failed to open DM channel for %s: %w", userID, err)
	}

	d.mu.Lock()
	d.channels[userID] = ch.ID
	d.mu.Unlock()
	return ch.ID, nil
}

func (d *dmMessenger) SendText(userID, text string) error {
	channelID, err := d.channelFor(userID)
	if err != nil {
		return err
	}
	_, err = d.discord.ChannelMessageSend(channelID, text)
	return err
}

func (d *dmMessenger) SendEmbed(userID string, embed chat.Embed) error {
	channelID, err := d.channelFor(userID)
	if err != nil {
		return err
	}
	_, err = d.discord.ChannelMessageSendEmbed(channelID, toDiscordEmbed(embed))
	return err
}

func toDiscordEmbed(e chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		URL:         e.URL,
		Description: e.Description,
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{
			Name:   f.Name,
			Value:  f.Value,
			Inline: f.Inline,
		})
	}
	if e.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	if e.FooterText != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.FooterText}
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.Format(time.RFC3339)
	}
	return out
}
