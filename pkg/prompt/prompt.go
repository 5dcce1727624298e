package prompt

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// Terminal asks for yes/no confirmation on an interactive console. Anything
// other than an explicit yes declines.
type Terminal struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{In: in, Out: out, reader: bufio.NewReader(in)}
}

func (t *Terminal) Confirm(ctx context.Context, title, message, confirmLabel, cancelLabel string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	fmt.Fprintf(t.Out, "%s\n%s\n%s / %s [y/N]: ", title, message, confirmLabel, cancelLabel)
	line, err := t.reader.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
