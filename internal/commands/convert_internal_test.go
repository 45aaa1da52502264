package commands

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadInput_Stdin(t *testing.T) {
	input, source, err := readInput(context.Background(), "-", strings.NewReader("2024-01-01 open Assets:Cash\n"))
	require.NoError(t, err)
	assert.Equal(t, "stdin", source)
	assert.Equal(t, "2024-01-01 open Assets:Cash\n", input)
}

func TestReadInput_CancelWhileWaiting(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := readInput(ctx, "-", pr)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Contains(t, err.Error(), "reading stdin")
	case <-time.After(5 * time.Second):
		t.Fatal("readInput did not return after cancel")
	}
}

func TestReadInput_MissingFile(t *testing.T) {
	_, _, err := readInput(context.Background(), "does-not-exist.beancount", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading input")
}
