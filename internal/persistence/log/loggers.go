package log

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"antics.dev/internal/sim/world"
)

// DefaultSegmentTicks is how many ticks a TickLogger puts in one file.
const DefaultSegmentTicks = 10_000

// ErrRunExists reports a run directory that already holds a manifest or
// tick log. Runs never share a directory.
var ErrRunExists = errors.New("run directory already in use")

// TickLogger writes one JSON line per tick into zstd-compressed segment
// files under <runDir>/events. Each segment covers a fixed span of ticks
// and is named after its first tick, so name order is tick order. Segment
// files are created exclusively: a second stream into the same directory
// fails with ErrRunExists instead of interleaving with the first.
type TickLogger struct {
	dir   string
	every uint64

	mu    sync.Mutex
	first uint64
	f     *os.File
	enc   *zstd.Encoder
	w     *bufio.Writer
}

func NewTickLogger(runDir string) *TickLogger {
	return NewSegmentedTickLogger(runDir, DefaultSegmentTicks)
}

// NewSegmentedTickLogger is NewTickLogger with a custom segment span.
// every < 1 means one segment for the whole run.
func NewSegmentedTickLogger(runDir string, every uint64) *TickLogger {
	return &TickLogger{dir: EventsDir(runDir), every: every}
}

// EventsDir is where a TickLogger rooted at runDir writes.
func EventsDir(runDir string) string { return filepath.Join(runDir, "events") }

func (l *TickLogger) segmentOf(tick uint64) uint64 {
	if l.every == 0 {
		return 0
	}
	return tick - tick%l.every
}

func (l *TickLogger) WriteTick(entry world.TickLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if seg := l.segmentOf(entry.Tick); l.w == nil || seg != l.first {
		if err := l.openLocked(seg); err != nil {
			return err
		}
	}
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	if _, err := l.w.Write(b); err != nil {
		return err
	}
	return l.w.WriteByte('\n')
}

// Flush pushes buffered lines into the compressor without ending the frame.
func (l *TickLogger) Flush() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.w == nil {
		return nil
	}
	if err := l.w.Flush(); err != nil {
		return err
	}
	return l.enc.Flush()
}

func (l *TickLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *TickLogger) openLocked(first uint64) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	p := SegmentPath(l.dir, first)
	f, err := os.OpenFile(p, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if errors.Is(err, os.ErrExist) {
		return fmt.Errorf("%w: %s", ErrRunExists, p)
	}
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.w = bufio.NewWriterSize(enc, 128*1024)
	l.first = first
	return nil
}

func (l *TickLogger) closeLocked() error {
	var firstErr error
	if l.w != nil {
		firstErr = l.w.Flush()
	}
	if l.enc != nil {
		if err := l.enc.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.enc = nil
	}
	if l.f != nil {
		if err := l.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		l.f = nil
	}
	l.w = nil
	return firstErr
}

// SegmentPath names the segment starting at tick first. The zero padding
// keeps lexical order equal to tick order.
func SegmentPath(eventsDir string, first uint64) string {
	return filepath.Join(eventsDir, fmt.Sprintf("events-%020d.jsonl.zst", first))
}

var _ world.TickLogger = (*TickLogger)(nil)
