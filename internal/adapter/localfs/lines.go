// Package localfs reads gauge exports from and writes run outputs to the local
// filesystem.
package localfs

import (
	"bufio"
	"fmt"
	"iter"
	"os"
)

// maxLineBytes bounds a single line. Export lines are short; the limit only
// guards against reading a binary file by mistake.
const maxLineBytes = 16 * 1024 * 1024

// ReadError reports a failure to open or read an input file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Lines streams the lines of the file at path without their terminators.
// The file is opened on each iteration and closed when the loop ends, whether
// it runs to completion, fails, or the caller breaks out early. A failure is
// yielded once as a *ReadError and ends the sequence.
func Lines(path string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		f, err := os.Open(path)
		if err != nil {
			yield("", &ReadError{Path: path, Err: err})
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
		for scanner.Scan() {
			if !yield(scanner.Text(), nil) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			yield("", &ReadError{Path: path, Err: err})
		}
	}
}
