package recorder

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestCopyRotated checks chunked copying with size-based segment rotation.
func TestCopyRotated(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "rec.ts")

	payload := bytes.Repeat([]byte("x"), 1000)

	written, segments, err := copyRotated(
		context.Background(), bytes.NewReader(payload), base, 0, 0, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1000, written)
	require.Equal(t, []string{base}, segments)

	info, err := os.Stat(base)
	require.NoError(t, err)
	require.EqualValues(t, 1000, info.Size())
}

// TestCopyRotatedSplitsSegments checks that a small threshold creates
// numbered segment files.
func TestCopyRotatedSplitsSegments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "rec.ts")

	// Two reads of 600 bytes against a 1000-byte threshold must split.
	reader := &chunkedReader{chunks: [][]byte{
		bytes.Repeat([]byte("a"), 600),
		bytes.Repeat([]byte("b"), 600),
	}}

	written, segments, err := copyRotated(context.Background(), reader, base, 0, 1000, nil)
	require.NoError(t, err)
	require.EqualValues(t, 1200, written)
	require.Equal(t, []string{base, filepath.Join(dir, "rec_001.ts")}, segments)

	first, err := os.Stat(base)
	require.NoError(t, err)
	require.EqualValues(t, 600, first.Size())
}

// TestSegmentsSoFar checks that leftover segments from a prior attempt
// are counted by their real names so the retry numbering continues.
func TestSegmentsSoFar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "rec.ts")

	require.Empty(t, segmentsSoFar(base))

	require.NoError(t, os.WriteFile(base, []byte("a"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rec_001.ts"), []byte("b"), 0o600))

	existing := segmentsSoFar(base)
	require.Equal(t, []string{base, filepath.Join(dir, "rec_001.ts")}, existing)

	// The next segment gets the next number, not a dodged variant.
	written, segments, err := copyRotated(
		context.Background(), bytes.NewReader([]byte("cc")), base, len(existing), 0, nil)
	require.NoError(t, err)
	require.EqualValues(t, 2, written)
	require.Equal(t, []string{filepath.Join(dir, "rec_002.ts")}, segments)
}

// TestCopyRotatedProgress checks the progress callback totals.
func TestCopyRotatedProgress(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	base := filepath.Join(dir, "rec.ts")

	var seen []int64

	reader := &chunkedReader{chunks: [][]byte{
		bytes.Repeat([]byte("a"), 100),
		bytes.Repeat([]byte("b"), 200),
	}}

	_, _, err := copyRotated(context.Background(), reader, base, 0, 0, func(n int64) {
		seen = append(seen, n)
	})
	require.NoError(t, err)
	require.Equal(t, []int64{100, 300}, seen)
}

// TestCopyRotatedCancel checks the context stop path.
func TestCopyRotatedCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dir := t.TempDir()

	_, _, err := copyRotated(ctx, bytes.NewReader([]byte("data")),
		filepath.Join(dir, "rec.ts"), 0, 0, nil)
	require.ErrorIs(t, err, context.Canceled)
}

// chunkedReader yields its chunks one Read at a time, then EOF.
type chunkedReader struct {
	chunks [][]byte
	index  int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.index >= len(r.chunks) {
		return 0, io.EOF
	}

	n := copy(p, r.chunks[r.index])
	r.index++

	return n, nil
}
