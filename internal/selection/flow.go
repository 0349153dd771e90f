// Package selection implements the staged instrument-selection dialogue
// as a finite-state machine. Adapters translate UI events into Advance
// calls; the machine itself has no platform dependencies.
package selection

import (
	"errors"
	"fmt"
)

// Stage is the current step of the selection dialogue.
type Stage int

const (
	StageAssetClass Stage = iota
	StageInstrument
	StageDuration
	StageComplete
	StageTimedOut
)

func (s Stage) String() string {
	switch s {
	case StageAssetClass:
		return "asset_class"
	case StageInstrument:
		return "instrument"
	case StageDuration:
		return "duration"
	case StageComplete:
		return "complete"
	case StageTimedOut:
		return "timed_out"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

var (
	// ErrNotOwner is returned when someone other than the initiating
	// user tries to advance the flow. The state does not change.
	ErrNotOwner = errors.New("selection flow belongs to another user")

	// ErrInert is returned once a stage has timed out or completed.
	ErrInert = errors.New("selection flow no longer accepts choices")

	// ErrUnknownOption is returned for an option ID outside the
	// current stage's fixed set.
	ErrUnknownOption = errors.New("unknown option for current stage")
)

// Option is one enumerated choice at the current stage.
type Option struct {
	ID    string
	Label string
}

// Result is the terminal output of a completed flow.
type Result struct {
	Ticker        string
	Instrument    string
	DurationLabel string
	Days          float64
}

type instrument struct {
	label  string
	ticker string
}

var stockInstruments = []instrument{
	{"Apple Inc.", "AAPL"},
	{"Microsoft Corporation", "MSFT"},
	{"Alphabet Inc.", "GOOGL"},
	{"Amazon.com, Inc.", "AMZN"},
	{"Tesla, Inc.", "TSLA"},
	{"Meta Platforms, Inc.", "META"},
	{"NVIDIA Corporation", "NVDA"},
	{"Berkshire Hathaway Inc.", "BRK-B"},
}

var cryptoInstruments = []instrument{
	{"Bitcoin", "BTC-USD"},
	{"Ethereum", "ETH-USD"},
	{"Binance Coin", "BNB-USD"},
	{"XRP", "XRP-USD"},
	{"Cardano", "ADA-USD"},
	{"Solana", "SOL-USD"},
	{"Dogecoin", "DOGE-USD"},
	{"Polkadot", "DOT-USD"},
}

type duration struct {
	id    string
	label string
	days  float64
}

var durations = []duration{
	{"6h", "6 Hours", 0.25},
	{"3d", "3 Days", 3},
	{"7d", "7 Days", 7},
	{"14d", "14 Days", 14},
}

// Flow is one user's selection dialogue. It is owned by the task
// servicing that user and is not safe for concurrent use.
type Flow struct {
	ownerID     string
	stage       Stage
	instruments []instrument
	ticker      string
	label       string
	result      *Result
}

// NewFlow starts a selection dialogue owned by ownerID.
func NewFlow(ownerID string) *Flow {
	return &Flow{ownerID: ownerID, stage: StageAssetClass}
}

func (f *Flow) OwnerID() string { return f.ownerID }
func (f *Flow) Stage() Stage    { return f.stage }

// Result returns the terminal output once the flow is complete.
func (f *Flow) Result() (Result, bool) {
	if f.result == nil {
		return Result{}, false
	}
	return *f.result, true
}

// Options enumerates the choices available at the current stage.
func (f *Flow) Options() []Option {
	switch f.stage {
	case StageAssetClass:
		return []Option{{ID: "stocks", Label: "Stocks"}, {ID: "crypto", Label: "Crypto"}}
	case StageInstrument:
		opts := make([]Option, len(f.instruments))
		for i, inst := range f.instruments {
			opts[i] = Option{ID: inst.ticker, Label: inst.label}
		}
		return opts
	case StageDuration:
		opts := make([]Option, len(durations))
		for i, d := range durations {
			opts[i] = Option{ID: d.id, Label: d.label}
		}
		return opts
	default:
		return nil
	}
}

// Prompt is the question shown alongside the current stage's options.
func (f *Flow) Prompt() string {
	switch f.stage {
	case StageAssetClass:
		return "What are we tracking today?"
	case StageInstrument:
		return "Which instrument do you want to track?"
	case StageDuration:
		return fmt.Sprintf("Select duration for %s:", f.label)
	default:
		return ""
	}
}

// Advance applies one choice by actingUser. Only the owner may advance;
// anyone else gets ErrNotOwner and the stage is untouched.
func (f *Flow) Advance(optionID, actingUser string) error {
	if actingUser != f.ownerID {
		return ErrNotOwner
	}

	switch f.stage {
	case StageAssetClass:
		switch optionID {
		case "stocks":
			f.instruments = stockInstruments
		case "crypto":
			f.instruments = cryptoInstruments
		default:
			return ErrUnknownOption
		}
		f.stage = StageInstrument
		return nil

	case StageInstrument:
		for _, inst := range f.instruments {
			if inst.ticker == optionID {
				f.ticker = inst.ticker
				f.label = inst.label
				f.stage = StageDuration
				return nil
			}
		}
		return ErrUnknownOption

	case StageDuration:
		for _, d := range durations {
			if d.id == optionID {
				f.result = &Result{
					Ticker:        f.ticker,
					Instrument:    f.label,
					DurationLabel: d.label,
					Days:          d.days,
				}
				f.stage = StageComplete
				return nil
			}
		}
		return ErrUnknownOption

	default:
		return ErrInert
	}
}

// Expire makes the flow inert. Called by the adapter when the current
// stage's 180 second window lapses untouched; no error is surfaced to
// the user, the choices simply stop working.
func (f *Flow) Expire() {
	if f.stage == StageComplete {
		return
	}
	f.stage = StageTimedOut
}
