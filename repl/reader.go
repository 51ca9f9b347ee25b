package repl

import (
	"bufio"
	"errors"
	"io"
)

// ErrInterrupt is returned by a LineReader when the user presses Ctrl-C
// while editing a line.
var ErrInterrupt = errors.New("interrupted")

// LineReader reads one line of input after showing prompt. It returns io.EOF
// when input is exhausted. A LineReader that also implements io.Closer is
// closed when the loop stops, including while a ReadLine is still blocked.
type LineReader interface {
	ReadLine(prompt string) (string, error)
}

const maxLineSize = 1 << 20

// ScannerReader reads newline-terminated lines from any io.Reader. Use it
// for pipes, files and tests.
type ScannerReader struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewScannerReader creates a ScannerReader that reads from r and writes
// prompts to w.
func NewScannerReader(r io.Reader, w io.Writer) *ScannerReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	return &ScannerReader{scanner: scanner, out: w}
}

func (r *ScannerReader) ReadLine(prompt string) (string, error) {
	io.WriteString(r.out, prompt)

	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.scanner.Text(), nil
}
