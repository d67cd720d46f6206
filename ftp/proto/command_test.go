package proto

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

// TestParseCommand tests parsing of well-formed and malformed command lines
func TestParseCommand(t *testing.T) {
	testCases := []struct {
		name string
		line string
		want Command
		err  error
	}{
		{
			name: "list",
			line: "-l 51000",
			want: Command{Op: OpList, DataPort: "51000"},
		},
		{
			name: "get",
			line: "-g report.txt 51000",
			want: Command{Op: OpGet, Filename: "report.txt", DataPort: "51000"},
		},
		{
			name: "trailing newline",
			line: "-l 51000\n",
			want: Command{Op: OpList, DataPort: "51000"},
		},
		{
			name: "trailing crlf",
			line: "-g a.bin 6000\r\n",
			want: Command{Op: OpGet, Filename: "a.bin", DataPort: "6000"},
		},
		{
			name: "extra whitespace",
			line: "  -l   51000 ",
			want: Command{Op: OpList, DataPort: "51000"},
		},
		{
			name: "empty",
			line: "",
			err:  ErrEmptyCommand,
		},
		{
			name: "whitespace only",
			line: "   \n",
			err:  ErrEmptyCommand,
		},
		{
			name: "unknown flag",
			line: "-x 51000",
			err:  ErrUnknownOp,
		},
		{
			name: "uppercase flag is unknown",
			line: "-L 51000",
			err:  ErrUnknownOp,
		},
		{
			name: "list without port",
			line: "-l",
			err:  ErrMissingDataPort,
		},
		{
			name: "get without filename",
			line: "-g",
			err:  ErrMissingFilename,
		},
		{
			name: "get without port",
			line: "-g report.txt",
			err:  ErrMissingDataPort,
		},
		{
			name: "list with extra token",
			line: "-l 51000 surplus",
			err:  ErrTrailingTokens,
		},
		{
			name: "get with extra token",
			line: "-g report.txt 51000 surplus",
			err:  ErrTrailingTokens,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd, err := ParseCommand([]byte(tc.line))

			if tc.err != nil {
				if !errors.Is(err, tc.err) {
					t.Fatalf("ParseCommand(%q) error = %v, want %v", tc.line, err, tc.err)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseCommand(%q) unexpected error: %v", tc.line, err)
			}
			if cmd != tc.want {
				t.Errorf("ParseCommand(%q) = %+v, want %+v", tc.line, cmd, tc.want)
			}
		})
	}
}

// TestParseCommandTooLong tests that oversized command lines are rejected
func TestParseCommandTooLong(t *testing.T) {
	line := []byte("-g " + strings.Repeat("a", MaxCommandLen) + " 51000")

	_, err := ParseCommand(line)
	if !errors.Is(err, ErrCommandTooLong) {
		t.Errorf("expected ErrCommandTooLong, got %v", err)
	}
}

// TestCommandFormatRoundTrip tests that formatted commands parse back to
// the original value
func TestCommandFormatRoundTrip(t *testing.T) {
	commands := []Command{
		{Op: OpList, DataPort: "51000"},
		{Op: OpGet, Filename: "report.txt", DataPort: "6001"},
		{Op: OpGet, Filename: "nested/path.bin", DataPort: "50123"},
	}

	for _, cmd := range commands {
		parsed, err := ParseCommand(cmd.Format())
		if err != nil {
			t.Errorf("round trip of %+v failed to parse: %v", cmd, err)
			continue
		}
		if parsed != cmd {
			t.Errorf("round trip mismatch: sent %+v, parsed %+v", cmd, parsed)
		}
	}
}

// TestFormatIsWireCompatible tests the exact wire bytes of the formatter
func TestFormatIsWireCompatible(t *testing.T) {
	got := Command{Op: OpGet, Filename: "report.txt", DataPort: "51000"}.Format()
	want := []byte("-g report.txt 51000")
	if !bytes.Equal(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}

	got = Command{Op: OpList, DataPort: "51000"}.Format()
	want = []byte("-l 51000")
	if !bytes.Equal(got, want) {
		t.Errorf("Format() = %q, want %q", got, want)
	}
}
