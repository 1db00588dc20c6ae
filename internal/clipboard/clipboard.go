// Package clipboard writes lookup results to the system clipboard, falling
// back to an OSC 52 escape sequence on the controlling terminal.
package clipboard

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
)

// ErrUnconfirmed is returned when the text was only handed to the terminal.
// OSC 52 gives no acknowledgement, so delivery cannot be confirmed.
var ErrUnconfirmed = errors.New("clipboard write unconfirmed")

// System is a lookup.Clipboard backed by the OS clipboard.
type System struct {
	writeAll func(string) error
	openTTY  func() (io.WriteCloser, error)
	getenv   func(string) string
}

// New returns a clipboard that uses xclip/xsel/pbcopy/clip.exe when present
// and /dev/tty otherwise.
func New() *System {
	return &System{
		writeAll: clipboard.WriteAll,
		openTTY: func() (io.WriteCloser, error) {
			return os.OpenFile("/dev/tty", os.O_WRONLY, 0)
		},
		getenv: os.Getenv,
	}
}

// WriteText copies text. A nil error means the system clipboard accepted it.
func (s *System) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var systemErr error
	if clipboard.Unsupported {
		systemErr = errors.New("no clipboard utility found")
	} else if systemErr = s.writeAll(text); systemErr == nil {
		return nil
	}

	if err := s.writeOSC52(text); err != nil {
		return errors.Join(systemErr, err)
	}
	return fmt.Errorf("%w: %v", ErrUnconfirmed, systemErr)
}

func (s *System) writeOSC52(text string) error {
	tty, err := s.openTTY()
	if err != nil {
		return fmt.Errorf("open tty: %w", err)
	}
	defer tty.Close()

	seq := osc52(text)
	if s.inTmux() {
		// Passthrough needs allow-passthrough on; the direct write below
		// covers set-clipboard on.
		if _, err := fmt.Fprintf(tty, "\x1bPtmux;\x1b%s\x1b\\", seq); err != nil {
			return err
		}
	}
	_, err = io.WriteString(tty, seq)
	return err
}

func (s *System) inTmux() bool {
	term := s.getenv("TERM")
	return s.getenv("TMUX") != "" ||
		strings.HasPrefix(term, "tmux") ||
		strings.HasPrefix(term, "screen")
}

func osc52(text string) string {
	return "\x1b]52;c;" + base64.StdEncoding.EncodeToString([]byte(text)) + "\x07"
}
