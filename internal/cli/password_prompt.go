package cli

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// readPromptLine reads one line without its terminator. EOF after a partial
// line still yields the line.
func readPromptLine(input io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(input).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
