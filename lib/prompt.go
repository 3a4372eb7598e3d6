package cc2svn

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Decision is the operator's answer to a failed external operation.
type Decision int

const (
	Retry Decision = iota
	Ignore
	Abort
)

// Prompter answers the interactive questions a conversion runs into.
// Implementations hold the ignore-all state themselves, so the policy
// lives with the operator instead of in a package global.
type Prompter interface {
	// RetryIgnoreAbort reports what to do about a failed operation.
	RetryIgnoreAbort(op string, err error) Decision
	// YesNo asks a yes/no question; Enter means yes.
	YesNo(question string) bool
}

// StdinPrompter asks on the terminal. Answering "a" flips it into
// ignore-all mode for the rest of the run.
type StdinPrompter struct {
	in        *bufio.Scanner
	out       io.Writer
	ignoreAll bool
}

func NewStdinPrompter() *StdinPrompter {
	return &StdinPrompter{in: bufio.NewScanner(os.Stdin), out: os.Stdout}
}

func (p *StdinPrompter) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.in.Text()), true
}

func (p *StdinPrompter) RetryIgnoreAbort(op string, err error) Decision {
	if p.ignoreAll {
		return Ignore
	}
	for {
		fmt.Fprintf(p.out, "\nRetry/Ignore/IgnoreAll/Exit? [r/i/a/x] (r:Enter): ")
		answer, ok := p.readLine()
		if !ok {
			// Closed stdin reads as exit, not an endless retry loop.
			return Abort
		}
		switch answer {
		case "", "r":
			return Retry
		case "i":
			return Ignore
		case "a":
			p.ignoreAll = true
			return Ignore
		case "x":
			return Abort
		}
	}
}

func (p *StdinPrompter) YesNo(question string) bool {
	for {
		fmt.Fprintf(p.out, "\n%s [y/n] (y:Enter): ", question)
		answer, ok := p.readLine()
		if !ok {
			return false
		}
		switch answer {
		case "", "y":
			return true
		case "n":
			return false
		}
	}
}

// WithRetry runs fn until it succeeds or the prompter decides otherwise.
// It returns ignored=true when the operator chose to skip past the
// failure, and an error wrapping ErrAborted when they chose to stop.
func WithRetry(p Prompter, log *logrus.Logger, op string, fn func() error) (ignored bool, err error) {
	for {
		err = fn()
		if err == nil {
			return false, nil
		}
		log.Errorf("Command failed: %s: %v", op, err)
		switch p.RetryIgnoreAbort(op, err) {
		case Retry:
			continue
		case Ignore:
			return true, nil
		default:
			return false, fmt.Errorf("%w: %s", ErrAborted, op)
		}
	}
}
