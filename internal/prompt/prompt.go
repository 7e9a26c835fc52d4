// Package prompt implements the interactive questions of the setup
// command.
//
// A Prompter reads answers from an injected reader, so flows are testable
// without a terminal. Passwords are read without echo when standard input
// is a terminal and fall back to a plain line read otherwise.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Valid port range for user-facing services. Ports below 1024 require
// root privileges.
const (
	MinPort = 1024
	MaxPort = 65535
)

// ErrNoMoreInput is returned when the input ends before a question was
// answered.
var ErrNoMoreInput = errors.New("no more input")

// Prompter asks interactive questions.
type Prompter struct {
	reader       *bufio.Reader
	out          io.Writer
	useDefaults  bool
	readPassword func(prompt string) (string, error)
}

// Option adjusts a Prompter.
type Option func(*Prompter)

// WithDefaults makes every question answer itself with its default value,
// for non-interactive runs.
func WithDefaults() Option {
	return func(p *Prompter) {
		p.useDefaults = true
	}
}

// WithPasswordReader replaces the password input, used by tests.
func WithPasswordReader(read func(prompt string) (string, error)) Option {
	return func(p *Prompter) {
		p.readPassword = read
	}
}

// New creates a prompter reading from in and writing questions to out.
func New(in io.Reader, out io.Writer, opts ...Option) *Prompter {
	p := &Prompter{
		reader: bufio.NewReader(in),
		out:    out,
	}

	if file, ok := in.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		p.readPassword = func(prompt string) (string, error) {
			fmt.Fprint(out, prompt)

			password, err := term.ReadPassword(int(file.Fd()))

			fmt.Fprintln(out)

			if err != nil {
				return "", fmt.Errorf("reading password: %w", err)
			}

			return string(password), nil
		}
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// AskInput asks for a line of text. An empty answer yields the default.
func (p *Prompter) AskInput(question, defaultValue string) (string, error) {
	if p.useDefaults {
		return defaultValue, nil
	}

	if defaultValue != "" {
		fmt.Fprintf(p.out, "%s [%s]: ", question, defaultValue)
	} else {
		fmt.Fprintf(p.out, "%s: ", question)
	}

	answer, err := p.readLine()
	if err != nil {
		return "", err
	}

	if answer == "" {
		return defaultValue, nil
	}

	return answer, nil
}

// AskYN asks a yes/no question, re-asking on anything else.
func (p *Prompter) AskYN(question string, defaultYes bool) (bool, error) {
	if p.useDefaults {
		return defaultYes, nil
	}

	hint := "y"
	if !defaultYes {
		hint = "n"
	}

	for {
		fmt.Fprintf(p.out, "%s [%s]: ", question, hint)

		answer, err := p.readLine()
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		fmt.Fprintln(p.out, `Answer either "y" or "n".`)
	}
}

// AskPort asks for a port number in the unprivileged range, re-asking on
// anything else. A taken port is rejected so HTTP and HTTPS never share
// one.
func (p *Prompter) AskPort(question string, defaultPort int, taken ...int) (int, error) {
	if p.useDefaults {
		return defaultPort, nil
	}

	for {
		fmt.Fprintf(p.out, "%s [%d]: ", question, defaultPort)

		answer, err := p.readLine()
		if err != nil {
			return 0, err
		}

		if answer == "" {
			return defaultPort, nil
		}

		port, err := strconv.Atoi(answer)

		switch {
		case err != nil:
			fmt.Fprintln(p.out, "Wrong port number")
		case port < MinPort:
			fmt.Fprintln(p.out, "Do not use port numbers below 1024, they require root privileges")
		case port > MaxPort:
			fmt.Fprintf(p.out, "Max port number is %d\n", MaxPort)
		case portTaken(port, taken):
			fmt.Fprintln(p.out, "Port is already used by another service")
		default:
			return port, nil
		}
	}
}

// AskPassword asks for a non-empty password, confirming it when confirm
// is set. Mismatched confirmations restart the question.
func (p *Prompter) AskPassword(prompt, defaultValue string, confirm bool) (string, error) {
	if p.useDefaults && defaultValue != "" {
		return defaultValue, nil
	}

	for {
		password, err := p.readSecret(prompt)
		if err != nil {
			return "", err
		}

		if password == "" {
			continue
		}

		if confirm {
			confirmation, err := p.readSecret(strings.Replace(prompt, "Enter", "Confirm", 1))
			if err != nil {
				return "", err
			}

			if password != confirmation {
				fmt.Fprintln(p.out, "Passwords are not the same")

				continue
			}
		}

		return password, nil
	}
}

func (p *Prompter) readSecret(prompt string) (string, error) {
	if p.readPassword != nil {
		return p.readPassword(prompt)
	}

	fmt.Fprint(p.out, prompt)

	return p.readLine()
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("%w: %w", ErrNoMoreInput, err)
	}

	return strings.TrimSpace(line), nil
}

func portTaken(port int, taken []int) bool {
	for _, t := range taken {
		if port == t {
			return true
		}
	}

	return false
}
