package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
	"igprofile/pkg/ui/tui"
)

// UsernameQuestion is shown when asking for the profile to scrape.
const UsernameQuestion = "Enter the Instagram username or URL to scrape:"

// PromptUsername asks for a username or profile URL. On a terminal it uses
// the bubbletea prompt; otherwise it reads one line from in.
func PromptUsername(in *os.File, out io.Writer) (string, error) {
	if term.IsTerminal(int(in.Fd())) {
		return tui.RunPrompt(in, out, UsernameQuestion, "username or https://www.instagram.com/<username>/")
	}
	return ReadLine(in, out, UsernameQuestion+" ")
}

// ReadLine prints question and returns the next trimmed line from in.
func ReadLine(in io.Reader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret reads a line without echo when in is a terminal.
func ReadSecret(in *os.File, out io.Writer, question string) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return ReadLine(in, out, question)
	}
	fmt.Fprint(out, question)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(string(b)), nil
}
