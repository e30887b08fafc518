package handler

import (
	"errors"
	"io"

	"github.com/peterh/liner"
)

// Prompter reads one line of user input. io.EOF and liner.ErrPromptAborted
// end the session.
type Prompter interface {
	Prompt(prompt string) (string, error)
	PasswordPrompt(prompt string) (string, error)
}

type LinerPrompter struct {
	state *liner.State
}

func NewLinerPrompter() *LinerPrompter {
	state := liner.NewLiner()
	state.SetCtrlCAborts(true)
	return &LinerPrompter{state: state}
}

func (p *LinerPrompter) Prompt(prompt string) (string, error) {
	line, err := p.state.Prompt(prompt)
	if err == nil && line != "" {
		p.state.AppendHistory(line)
	}
	return line, err
}

func (p *LinerPrompter) PasswordPrompt(prompt string) (string, error) {
	return p.state.PasswordPrompt(prompt)
}

// Close restores the terminal mode.
func (p *LinerPrompter) Close() error {
	return p.state.Close()
}

func isQuit(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted)
}
