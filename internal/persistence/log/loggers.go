package log

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"

	"rtscore.dev/internal/sim/world"
)

const tickFilePrefix = "ticks-"

// TicksDir is where a world directory keeps its tick log.
func TicksDir(worldDir string) string { return filepath.Join(worldDir, "ticks") }

// tickFileName names the segment starting at first. The zero padding keeps
// lexical and tick order the same.
func tickFileName(first uint64) string {
	return fmt.Sprintf("%s%012d.jsonl.zst", tickFilePrefix, first)
}

// TickLogger appends one JSON line per tick to segment files under a world
// directory. Every tick is written as its own complete zstd frame, so a
// reader sees every tick that WriteTick has returned for, even while the
// segment is still open.
type TickLogger struct {
	dir          string
	segmentTicks uint64

	mu       sync.Mutex
	enc      *zstd.Encoder
	f        *os.File
	segStart uint64
	line     []byte
}

// NewTickLogger writes under TicksDir(worldDir). A segment covers
// segmentTicks ticks starting at a multiple of segmentTicks.
func NewTickLogger(worldDir string, segmentTicks int) (*TickLogger, error) {
	if segmentTicks <= 0 {
		return nil, fmt.Errorf("tick log: segment ticks must be positive, got %d", segmentTicks)
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest), zstd.WithEncoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return &TickLogger{dir: TicksDir(worldDir), segmentTicks: uint64(segmentTicks), enc: enc}, nil
}

func (l *TickLogger) WriteTick(entry world.TickLogEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.enc == nil {
		return fmt.Errorf("tick %d: tick log closed", entry.Tick)
	}

	if start := entry.Tick - entry.Tick%l.segmentTicks; l.f == nil || start != l.segStart {
		if err := l.openLocked(start); err != nil {
			return err
		}
	}

	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	l.line = append(append(l.line[:0], b...), '\n')
	frame := l.enc.EncodeAll(l.line, nil)
	if _, err := l.f.Write(frame); err != nil {
		return fmt.Errorf("tick %d: %w", entry.Tick, err)
	}
	return nil
}

// openLocked closes the current segment and opens the one starting at start.
// An existing segment is appended to.
func (l *TickLogger) openLocked(start uint64) error {
	if err := l.closeFileLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(filepath.Join(l.dir, tickFileName(start)), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	l.f = f
	l.segStart = start
	return nil
}

func (l *TickLogger) closeFileLocked() error {
	if l.f == nil {
		return nil
	}
	err := l.f.Close()
	l.f = nil
	return err
}

func (l *TickLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	err := l.closeFileLocked()
	if l.enc != nil {
		_ = l.enc.Close()
		l.enc = nil
	}
	return err
}
