package repl

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
	"unicode"

	"golang.org/x/term"
)

// Control keys understood by LineEditor.
const (
	keyCtrlA     = 1
	keyCtrlC     = 3
	keyCtrlD     = 4
	keyCtrlE     = 5
	keyCtrlH     = 8
	keyCtrlK     = 11
	keyCtrlU     = 21
	keyEscape    = 27
	keyBackspace = 127
)

// LineEditor is a small line editor for a terminal already in raw mode. It
// supports cursor movement, deletion and an in-memory history walked with
// the up and down arrows.
type LineEditor struct {
	in      *bufio.Reader
	out     io.Writer
	buf     []rune
	pos     int
	history []string
	hist    int
}

// NewLineEditor creates a LineEditor reading keystrokes from r and echoing
// to w.
func NewLineEditor(r io.Reader, w io.Writer) *LineEditor {
	return &LineEditor{in: bufio.NewReader(r), out: w}
}

// ReadLine shows prompt and edits a line until Enter. Ctrl-C returns
// ErrInterrupt; Ctrl-D on an empty line returns io.EOF.
func (e *LineEditor) ReadLine(prompt string) (string, error) {
	e.buf = e.buf[:0]
	e.pos = 0
	e.hist = len(e.history)
	e.redraw(prompt)

	for {
		r, _, err := e.in.ReadRune()
		if err != nil {
			return "", err
		}

		switch r {
		case keyCtrlC:
			io.WriteString(e.out, "\r\n")
			return "", ErrInterrupt

		case keyCtrlD:
			if len(e.buf) == 0 {
				io.WriteString(e.out, "\r\n")
				return "", io.EOF
			}
			e.deleteAt(e.pos)

		case '\r', '\n':
			io.WriteString(e.out, "\r\n")
			line := string(e.buf)
			e.remember(line)
			return line, nil

		case keyBackspace, keyCtrlH:
			if e.pos > 0 {
				e.pos--
				e.deleteAt(e.pos)
			}

		case keyCtrlA:
			e.pos = 0

		case keyCtrlE:
			e.pos = len(e.buf)

		case keyCtrlK:
			e.buf = e.buf[:e.pos]

		case keyCtrlU:
			e.buf = e.buf[:0]
			e.pos = 0

		case keyEscape:
			if err := e.escape(); err != nil {
				return "", err
			}

		default:
			if unicode.IsPrint(r) {
				e.insert(r)
			}
		}

		e.redraw(prompt)
	}
}

// escape handles CSI sequences: arrows, Home, End and Delete.
func (e *LineEditor) escape() error {
	r, _, err := e.in.ReadRune()
	if err != nil || r != '[' {
		return err
	}
	code, _, err := e.in.ReadRune()
	if err != nil {
		return err
	}

	switch code {
	case 'A':
		e.recall(-1)
	case 'B':
		e.recall(1)
	case 'C':
		if e.pos < len(e.buf) {
			e.pos++
		}
	case 'D':
		if e.pos > 0 {
			e.pos--
		}
	case 'H':
		e.pos = 0
	case 'F':
		e.pos = len(e.buf)
	case '1', '3', '4':
		if _, _, err := e.in.ReadRune(); err != nil { // trailing '~'
			return err
		}
		switch code {
		case '1':
			e.pos = 0
		case '3':
			e.deleteAt(e.pos)
		case '4':
			e.pos = len(e.buf)
		}
	}
	return nil
}

func (e *LineEditor) insert(r rune) {
	e.buf = append(e.buf, 0)
	copy(e.buf[e.pos+1:], e.buf[e.pos:])
	e.buf[e.pos] = r
	e.pos++
}

func (e *LineEditor) deleteAt(i int) {
	if i < 0 || i >= len(e.buf) {
		return
	}
	e.buf = append(e.buf[:i], e.buf[i+1:]...)
}

func (e *LineEditor) recall(step int) {
	next := e.hist + step
	if next < 0 || next > len(e.history) {
		return
	}
	e.hist = next
	if next == len(e.history) {
		e.buf = e.buf[:0]
	} else {
		e.buf = []rune(e.history[next])
	}
	e.pos = len(e.buf)
}

func (e *LineEditor) remember(line string) {
	if line == "" {
		return
	}
	if n := len(e.history); n > 0 && e.history[n-1] == line {
		return
	}
	e.history = append(e.history, line)
}

func (e *LineEditor) redraw(prompt string) {
	fmt.Fprintf(e.out, "\r\x1b[K%s%s", prompt, string(e.buf))
	if tail := len(e.buf) - e.pos; tail > 0 {
		fmt.Fprintf(e.out, "\x1b[%dD", tail)
	}
}

// TerminalReader reads lines from a terminal with a LineEditor. The terminal
// is in raw mode only while a line is being edited, so Ctrl-C during a reply
// still raises SIGINT.
type TerminalReader struct {
	fd     int
	editor *LineEditor

	mu     sync.Mutex
	raw    *term.State
	closed bool
}

// IsTerminal reports whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewTerminalReader creates a TerminalReader on in, echoing to out. in must
// be a terminal.
func NewTerminalReader(in *os.File, out io.Writer) (*TerminalReader, error) {
	if !IsTerminal(in) {
		return nil, fmt.Errorf("%s is not a terminal", in.Name())
	}
	return &TerminalReader{
		fd:     int(in.Fd()),
		editor: NewLineEditor(in, out),
	}, nil
}

func (r *TerminalReader) ReadLine(prompt string) (string, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return "", io.EOF
	}
	old, err := term.MakeRaw(r.fd)
	if err != nil {
		r.mu.Unlock()
		return "", fmt.Errorf("raw mode: %w", err)
	}
	r.raw = old
	r.mu.Unlock()
	defer r.restore()

	return r.editor.ReadLine(prompt)
}

// Close restores the terminal if a ReadLine is still blocked in raw mode.
// Later calls to ReadLine return io.EOF. It is safe to call more than once.
func (r *TerminalReader) Close() error {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
	return r.restore()
}

func (r *TerminalReader) restore() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.raw == nil {
		return nil
	}
	err := term.Restore(r.fd, r.raw)
	r.raw = nil
	return err
}
