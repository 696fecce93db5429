package session

import (
	"errors"
	"strings"

	"github.com/peterh/liner"
)

// Prompter asks the operator a yes/no question.
type Prompter interface {
	Confirm(question string) (bool, error)
	Close() error
}

// LinePrompter reads answers from the terminal with liner.
type LinePrompter struct {
	liner *liner.State
}

func NewLinePrompter() *LinePrompter {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	return &LinePrompter{liner: l}
}

// Confirm returns true only for an explicit "y" or "yes". An empty answer
// means no.
func (p *LinePrompter) Confirm(question string) (bool, error) {
	txt, err := p.liner.Prompt(question)
	if err != nil {
		if errors.Is(err, liner.ErrPromptAborted) {
			return false, nil
		}
		return false, err
	}
	return parseAnswer(txt), nil
}

func (p *LinePrompter) Close() error {
	return p.liner.Close()
}

func parseAnswer(txt string) bool {
	switch strings.ToLower(strings.TrimSpace(txt)) {
	case "y", "yes":
		return true
	}
	return false
}
