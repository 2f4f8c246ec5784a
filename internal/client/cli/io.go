package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

//go:generate moq -out io_mock.go . IO

// IO abstracts terminal input and output so commands can be tested
// without a real terminal.
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	ReadInput(prompt string) (string, error)
	ReadPassword(prompt string) (string, error)
}

type stdio struct{}

// NewStdio returns an IO backed by the process terminal
func NewStdio() IO {
	return &stdio{}
}

func (s *stdio) Println(a ...any) {
	fmt.Println(a...)
}

func (s *stdio) Printf(format string, a ...any) {
	fmt.Printf(format, a...)
}

func (s *stdio) ReadInput(prompt string) (string, error) {
	s.Printf("%s", prompt)
	reader := bufio.NewReader(os.Stdin)
	input, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(input), nil
}

// ReadPassword reads a line with terminal echo disabled
func (s *stdio) ReadPassword(prompt string) (string, error) {
	s.Printf("%s", prompt)
	fd := int(os.Stdin.Fd())
	pwBytes, err := term.ReadPassword(fd)
	s.Println("")
	if err != nil {
		return "", err
	}
	return string(pwBytes), nil
}
