package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errInputClosed = errors.New("input closed")

// prompter reads answers line by line. When the input is a terminal,
// secrets are read without echo.
type prompter struct {
	in   *bufio.Reader
	tty  *os.File
	out  io.Writer
	hide bool
}

func newPrompter(in io.Reader, out io.Writer, hide bool) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out, hide: hide}
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.tty = f
	}
	return p
}

// line prints prompt and returns the next line without its terminator.
func (p *prompter) line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	s, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimRight(s, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", errInputClosed
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// secret is like line but does not echo on a terminal.
func (p *prompter) secret(prompt string) (string, error) {
	if !p.hide || p.tty == nil {
		return p.line(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(int(p.tty.Fd()))
	fmt.Fprintln(p.out) // newline after hidden input
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// hidden reports whether secret input is not echoed.
func (p *prompter) hidden() bool {
	return p.hide && p.tty != nil
}
