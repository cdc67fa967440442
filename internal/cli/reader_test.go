package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{name: "token with newline", input: "eyJhbGciOi.payload.sig\n", want: "eyJhbGciOi.payload.sig"},
		{name: "token piped without newline", input: "eyJhbGciOi.payload.sig", want: "eyJhbGciOi.payload.sig"},
		{name: "surrounding whitespace", input: "  abc  \n", want: "abc"},
		{name: "blank line", input: "\n", want: ""},
		{name: "no input", input: "", wantErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewNonBlockingReader(strings.NewReader(tt.input)).ReadLine(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadLineSequence(t *testing.T) {
	nbr := NewNonBlockingReader(strings.NewReader("first\nsecond"))
	ctx := context.Background()

	line, err := nbr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "first", line)

	line, err = nbr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", line)

	_, err = nbr.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLineCancelled(t *testing.T) {
	t.Run("already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := NewNonBlockingReader(strings.NewReader("y\n")).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})

	t.Run("cancelled while waiting", func(t *testing.T) {
		pr, pw := io.Pipe()
		t.Cleanup(func() {
			_ = pw.Close()
			_ = pr.Close()
		})

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := NewNonBlockingReader(pr).ReadLine(ctx)
		assert.ErrorIs(t, err, ErrInputCancelled)
	})
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		want      bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "long yes", input: " YES \n", want: true},
		{name: "yes without newline", input: "yes", want: true},
		{name: "no", input: "n\n"},
		{name: "empty answer", input: "\n"},
		{name: "end of input", input: ""},
		{name: "assume yes", input: "", assumeYes: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			nbr := NewNonBlockingReader(strings.NewReader(tt.input))

			got, err := nbr.Confirm(context.Background(), &out, "Delete 3 transactions?", tt.assumeYes)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			if !tt.assumeYes {
				assert.Contains(t, out.String(), "Delete 3 transactions? [y/N]")
			}
		})
	}
}
