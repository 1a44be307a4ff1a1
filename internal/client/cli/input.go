package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrijs2005/skincare/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getSimpleText and getSecret are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getSecret     = GetSecret
)

// GetSimpleText prints a prompt to w and reads a single line of input from
// in. The line is trimmed. io.EOF is returned when input is exhausted.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(in *bufio.Scanner, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(in.Text()), nil
}

// GetSecret prints prompt to w and reads a value from the terminal without
// echo. Used for provider tokens.
func GetSecret(prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+": "); err != nil {
		return "", err
	}
	b, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(b)
	return strings.TrimSpace(string(b)), nil
}
