package proto

import (
	"fmt"
	"io"
	"strconv"
)

// MaxLengthDigits bounds the decimal length header on the data
// connection. 19 digits cover every positive int64.
const MaxLengthDigits = 19

// AppendLengthHeader appends the wire form of the length header
// (decimal digits plus the '\n' terminator) to dst.
func AppendLengthHeader(dst []byte, n int64) []byte {
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, '\n')
}

// ReadLengthHeader reads the length header from the data connection.
// It consumes bytes one at a time up to the '\n' terminator so that no
// payload bytes are swallowed by read-ahead buffering.
func ReadLengthHeader(r io.Reader) (int64, error) {
	var digits [MaxLengthDigits]byte
	n := 0

	var buf [1]byte
	for {
		if _, err := io.ReadFull(r, buf[:]); err != nil {
			return 0, fmt.Errorf("reading length header: %w", err)
		}
		if buf[0] == '\n' {
			break
		}
		if n >= MaxLengthDigits {
			return 0, fmt.Errorf("length header exceeds %d digits", MaxLengthDigits)
		}
		digits[n] = buf[0]
		n++
	}

	if n == 0 {
		return 0, fmt.Errorf("empty length header")
	}

	length, err := strconv.ParseInt(string(digits[:n]), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed length header %q: %v", digits[:n], err)
	}
	if length < 0 {
		return 0, fmt.Errorf("negative length header %d", length)
	}
	return length, nil
}
