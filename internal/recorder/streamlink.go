package recorder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/hairoku/hairoku/internal/config"
	"github.com/hairoku/hairoku/internal/logger"
	"github.com/hairoku/hairoku/internal/output"
	"github.com/hairoku/hairoku/internal/toolchain"
)

const (
	// captureChunkSize is the read buffer for stream payloads.
	captureChunkSize = 1 << 20
	// killGracePeriod is how long a capture process gets to exit
	// after termination before being killed.
	killGracePeriod = 5 * time.Second
)

// recordWithStreamlink pipes `streamlink --stdout` into rotated .ts
// segments. Transient failures are retried while attempts remain.
func (e *Engine) recordWithStreamlink(ctx context.Context, req *Request) (*Result, error) {
	streamlinkPath, err := e.Tools.Find(toolchain.Streamlink)
	if err != nil {
		return nil, err
	}

	result := new(Result)
	attempt := 0

	for {
		if ctx.Err() != nil {
			break
		}

		attempt++

		written, segments, runErr := e.captureStreamlinkOnce(ctx, streamlinkPath, req, result.BytesWritten)
		result.SegmentPaths = append(result.SegmentPaths, segments...)
		result.BytesWritten += written

		if runErr == nil {
			// The process ended cleanly, the stream is over.
			break
		}

		if ctx.Err() != nil {
			break
		}

		if attempt > req.RetryCount {
			if result.BytesWritten == 0 {
				return nil, fmt.Errorf("streamlink capture failed: %w", runErr)
			}

			logger.WarnKV(ctx, "giving up reconnecting", "error", runErr, "attempts", attempt)

			break
		}

		logger.InfoKV(ctx, "stream interrupted, retrying",
			"attempt", attempt, "of", req.RetryCount, "wait", req.RetryWait)

		select {
		case <-ctx.Done():
		case <-time.After(req.RetryWait):
		}
	}

	if result.BytesWritten == 0 && ctx.Err() == nil {
		removeEmptySegments(result.SegmentPaths)
		return nil, ErrNoData
	}

	return result, nil
}

// captureStreamlinkOnce runs one streamlink process and drains its
// stdout into size-rotated segments.
func (e *Engine) captureStreamlinkOnce(
	ctx context.Context,
	streamlinkPath string,
	req *Request,
	alreadyWritten int64,
) (int64, []string, error) {
	quality := req.Quality
	if quality == "" {
		quality = config.DefaultQuality
	}

	args := []string{
		"--stdout",
		"--http-timeout", fmt.Sprintf("%d", int(req.HTTPTimeout.Seconds())),
		"--stream-timeout", fmt.Sprintf("%d", int(req.StreamTimeout.Seconds())),
		req.URL,
		quality,
	}

	cmd := exec.CommandContext(ctx, streamlinkPath, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = killGracePeriod

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 0, nil, fmt.Errorf("open streamlink stdout: %w", err)
	}

	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return 0, nil, fmt.Errorf("start streamlink: %w", err)
	}

	threshold := rotationThreshold(req.MaxSizeMB, req.SizeMarginMB)

	written, segments, copyErr := copyRotated(
		ctx, stdout, req.OutputPath, len(segmentsSoFar(req.OutputPath)), threshold,
		func(n int64) {
			if req.OnProgress != nil {
				req.OnProgress(alreadyWritten + n)
			}
		})

	waitErr := cmd.Wait()

	if copyErr != nil && !errors.Is(copyErr, context.Canceled) {
		return written, segments, copyErr
	}

	if waitErr != nil && ctx.Err() == nil {
		return written, segments, fmt.Errorf("streamlink exited: %w", waitErr)
	}

	return written, segments, nil
}

// segmentsSoFar counts existing segments for a base path so retries
// continue numbering instead of reopening finished files. The raw
// names are checked: Segment would dodge an occupied name and stop
// the count one short.
func segmentsSoFar(basePath string) []string {
	var existing []string

	if _, err := os.Stat(basePath); err == nil {
		existing = append(existing, basePath)
	}

	for i := 1; ; i++ {
		candidate := output.SegmentName(basePath, i)
		if _, err := os.Stat(candidate); err != nil {
			break
		}

		existing = append(existing, candidate)
	}

	return existing
}

// copyRotated drains a stream into .ts segments, starting a new one
// whenever the current segment would cross the threshold.
func copyRotated(
	ctx context.Context,
	r io.Reader,
	basePath string,
	startIndex int,
	threshold int64,
	onProgress func(int64),
) (int64, []string, error) {
	var (
		segments       []string
		file           *os.File
		total          int64
		segmentWritten int64
		index          = startIndex
	)

	defer func() {
		if file != nil {
			file.Close()
		}
	}()

	openSegment := func() error {
		path := output.Segment(basePath, index)

		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, config.DefaultFilePermissions)
		if err != nil {
			return fmt.Errorf("open segment file: %w", err)
		}

		file = f
		segments = append(segments, path)
		segmentWritten = 0

		return nil
	}

	buf := make([]byte, captureChunkSize)

	for {
		if err := ctx.Err(); err != nil {
			return total, segments, context.Canceled
		}

		n, readErr := r.Read(buf)

		if n > 0 {
			if file == nil {
				if err := openSegment(); err != nil {
					return total, segments, err
				}
			}

			if threshold > 0 && segmentWritten > 0 && segmentWritten+int64(n) > threshold {
				file.Close()
				file = nil

				index++

				if err := openSegment(); err != nil {
					return total, segments, err
				}
			}

			if _, err := file.Write(buf[:n]); err != nil {
				return total, segments, fmt.Errorf("write segment: %w", err)
			}

			total += int64(n)
			segmentWritten += int64(n)

			if onProgress != nil {
				onProgress(total)
			}
		}

		if readErr != nil {
			if errors.Is(readErr, io.EOF) {
				return total, segments, nil
			}

			return total, segments, fmt.Errorf("read stream: %w", readErr)
		}
	}
}

// removeEmptySegments cleans up zero-byte leftovers of a failed capture.
func removeEmptySegments(paths []string) {
	for _, path := range paths {
		if info, err := os.Stat(path); err == nil && info.Size() == 0 {
			_ = os.Remove(path)
		}
	}
}
