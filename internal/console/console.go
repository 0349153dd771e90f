// Package console is the local terminal adapter. It drives the same
// selection machine and session loop as the Discord surface, so the
// whole protocol can be exercised offline.
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/charmbracelet/lipgloss"

	"github.com/finbot-ai/finbot/internal/chat"
	"github.com/finbot-ai/finbot/internal/selection"
	"github.com/finbot-ai/finbot/internal/session"
)

// consoleUserID is the fixed owner of the single local session.
const consoleUserID = "console"

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	fieldStyle  = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
	boxStyle    = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)
)

// Console runs a full tracking session against the terminal.
type Console struct {
	orch *session.Orchestrator
	in   io.Reader
	out  io.Writer
}

func New(orch *session.Orchestrator) *Console {
	return &Console{orch: orch, in: os.Stdin, out: os.Stdout}
}

// Run walks the selection prompts and then hands stdin to the Q&A loop.
func (c *Console) Run(ctx context.Context) error {
	result, err := c.selectInstrument()
	if err != nil {
		return err
	}

	fmt.Fprintln(c.out, titleStyle.Render(fmt.Sprintf(
		"Tracking %s (%s) for %s.", result.Instrument, result.Ticker, result.DurationLabel)))

	inbound := make(chan chat.Message, 16)
	go c.readLines(inbound)

	c.orch.Run(ctx, &terminalMessenger{out: c.out}, inbound, consoleUserID, result.Ticker, result.Days)
	return nil
}

func (c *Console) selectInstrument() (selection.Result, error) {
	flow := selection.NewFlow(consoleUserID)

	for {
		if result, done := flow.Result(); done {
			return result, nil
		}

		options := flow.Options()
		labels := make([]string, len(options))
		byLabel := make(map[string]string, len(options))
		for i, opt := range options {
			labels[i] = opt.Label
			byLabel[opt.Label] = opt.ID
		}

		var choice string
		prompt := &survey.Select{
			Message: flow.Prompt(),
			Options: labels,
		}
		if err := survey.AskOne(prompt, &choice); err != nil {
			return selection.Result{}, fmt.Errorf("selection aborted: %w", err)
		}

		if err := flow.Advance(byLabel[choice], consoleUserID); err != nil {
			return selection.Result{}, err
		}
	}
}

// readLines feeds stdin into the session until EOF.
func (c *Console) readLines(inbound chan<- chat.Message) {
	defer close(inbound)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		inbound <- chat.Message{AuthorID: consoleUserID, Content: line, Private: true}
	}
}

// terminalMessenger renders session output with lipgloss instead of
// Discord embeds.
type terminalMessenger struct {
	out io.Writer
}

func (t *terminalMessenger) SendText(userID, text string) error {
	_, err := fmt.Fprintln(t.out, text)
	return err
}

func (t *terminalMessenger) SendEmbed(userID string, embed chat.Embed) error {
	_, err := fmt.Fprintln(t.out, boxStyle.Render(renderEmbed(embed)))
	return err
}

func renderEmbed(e chat.Embed) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(e.Title))
	if e.URL != "" {
		b.WriteString("\n" + footerStyle.Render(e.URL))
	}
	if e.Description != "" {
		b.WriteString("\n\n" + e.Description)
	}
	for _, f := range e.Fields {
		b.WriteString(fmt.Sprintf("\n%s %s", fieldStyle.Render(f.Name+":"), f.Value))
	}
	if e.FooterText != "" {
		footer := e.FooterText
		if !e.Timestamp.IsZero() {
			footer += " | " + e.Timestamp.Format("2006-01-02 15:04 MST")
		}
		b.WriteString("\n\n" + footerStyle.Render(footer))
	}
	return b.String()
}
