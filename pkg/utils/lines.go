package utils

import (
	"bufio"
	"io"
	"strings"
)

// ScanLines calls fn for every line of r, empty ones included, with the line
// ending removed. Lines have no length limit. A final newline does not start
// another line.
func ScanLines(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return err
		}
		if err == io.EOF && line == "" {
			return nil
		}

		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		if ferr := fn(line); ferr != nil {
			return ferr
		}
		if err == io.EOF {
			return nil
		}
	}
}
