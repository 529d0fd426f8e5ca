package interview

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// TranscriptConfig controls NDJSON transcript logging.
type TranscriptConfig struct {
	Enabled   bool
	Dir       string
	QueueSize int
}

// TranscriptEvent is one logged conversation line.
type TranscriptEvent struct {
	Timestamp string `json:"ts"`
	SessionID string `json:"session_id"`
	Actor     string `json:"actor"`
	Phase     string `json:"phase"`
	Message   string `json:"message"`
}

// TranscriptLogger appends conversation turns to per-session NDJSON files
// through a bounded async queue. Logging never blocks the interview: when
// the queue is full the event is dropped.
type TranscriptLogger struct {
	enabled bool
	dir     string
	ch      chan TranscriptEvent
	done    chan struct{}
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewTranscriptLogger creates a transcript logger. A disabled config
// yields a logger whose Log is a no-op.
func NewTranscriptLogger(cfg TranscriptConfig, logger *slog.Logger) (*TranscriptLogger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Enabled {
		return &TranscriptLogger{logger: logger}, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create transcript directory: %w", err)
	}

	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = 1000
	}

	l := &TranscriptLogger{
		enabled: true,
		dir:     cfg.Dir,
		ch:      make(chan TranscriptEvent, queueSize),
		done:    make(chan struct{}),
		logger:  logger,
	}

	l.wg.Add(1)
	go l.run()

	return l, nil
}

// Log enqueues one event. Safe to call from any goroutine.
func (l *TranscriptLogger) Log(ev TranscriptEvent) {
	if l == nil || !l.enabled {
		return
	}
	if ev.Timestamp == "" {
		ev.Timestamp = time.Now().UTC().Format(time.RFC3339Nano)
	}
	select {
	case l.ch <- ev:
	default:
		l.logger.Warn("transcript queue full, dropping event", "session_id", ev.SessionID)
	}
}

// Close drains the queue and stops the writer goroutine.
func (l *TranscriptLogger) Close() error {
	if l == nil || !l.enabled {
		return nil
	}
	close(l.done)
	l.wg.Wait()
	return nil
}

func (l *TranscriptLogger) run() {
	defer l.wg.Done()
	for {
		select {
		case ev := <-l.ch:
			l.write(ev)
		case <-l.done:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case ev := <-l.ch:
					l.write(ev)
				default:
					return
				}
			}
		}
	}
}

func (l *TranscriptLogger) write(ev TranscriptEvent) {
	line, err := json.Marshal(ev)
	if err != nil {
		l.logger.Warn("failed to marshal transcript event", "error", err)
		return
	}

	path := filepath.Join(l.dir, ev.SessionID+".ndjson")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		l.logger.Warn("failed to open transcript file", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			l.logger.Warn("failed to close transcript file", "path", path, "error", closeErr)
		}
	}()

	if _, err := f.Write(append(line, '\n')); err != nil {
		l.logger.Warn("failed to write transcript line", "path", path, "error", err)
	}
}
