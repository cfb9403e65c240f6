package pose

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// Frame is one externally paced observation: the landmarks for each player
// slot (nil when nobody was detected in that slot) and an optional capture
// time.
type Frame struct {
	Players   []*Landmarks
	Timestamp time.Time
}

// Source defines the interface for pose estimation collaborators.
type Source interface {
	// Next blocks until the next frame is available.
	// Returns io.EOF when the source is exhausted.
	Next(ctx context.Context) (Frame, error)

	// Close releases any resources held by the source.
	Close() error
}

// minTimestampMs is 2001-09-09 in Unix milliseconds. Smaller values are
// relative clocks, which would be clamped against wall-clock frames and
// freeze every timer.
const minTimestampMs = 1_000_000_000_000

// jsonFrame is the wire format shared by the stream source and the
// frame-ingestion socket. TimestampMs is Unix time in milliseconds; zero
// means "stamp on arrival".
type jsonFrame struct {
	Players     []*jsonPerson `json:"players"`
	TimestampMs int64         `json:"timestamp_ms"`
}

type jsonPerson struct {
	Points [][2]float64 `json:"points"`
	Score  float64      `json:"score"`
}

// DecodeFrame parses one JSON frame. A null player entry, or one without
// points, is a "no detection" marker for that slot. A non-zero
// timestamp_ms must be Unix milliseconds.
func DecodeFrame(data []byte) (Frame, error) {
	var raw jsonFrame
	if err := json.Unmarshal(data, &raw); err != nil {
		return Frame{}, fmt.Errorf("parse frame: %w", err)
	}

	frame := Frame{Players: make([]*Landmarks, len(raw.Players))}
	for i, p := range raw.Players {
		if p == nil || len(p.Points) == 0 {
			continue
		}
		lm := FromPairs(p.Points)
		lm.Score = p.Score
		frame.Players[i] = &lm
	}
	if raw.TimestampMs != 0 && raw.TimestampMs < minTimestampMs {
		return Frame{}, fmt.Errorf("parse frame: timestamp_ms %d is not Unix milliseconds", raw.TimestampMs)
	}
	if raw.TimestampMs != 0 {
		frame.Timestamp = time.UnixMilli(raw.TimestampMs)
	}
	return frame, nil
}

// EncodeFrame is the inverse of DecodeFrame.
func EncodeFrame(f Frame) ([]byte, error) {
	raw := jsonFrame{Players: make([]*jsonPerson, len(f.Players))}
	for i, lm := range f.Players {
		if lm == nil {
			continue
		}
		raw.Players[i] = &jsonPerson{Points: lm.Pairs(), Score: lm.Score}
	}
	if !f.Timestamp.IsZero() {
		raw.TimestampMs = f.Timestamp.UnixMilli()
	}
	return json.Marshal(raw)
}

// StreamSource reads newline-delimited JSON frames from a reader.
type StreamSource struct {
	scanner *bufio.Scanner
	closer  io.Closer
}

// NewStreamSource creates a StreamSource over r. If r is an io.Closer it is
// closed by Close.
func NewStreamSource(r io.Reader) *StreamSource {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	s := &StreamSource{scanner: scanner}
	if c, ok := r.(io.Closer); ok {
		s.closer = c
	}
	return s
}

// Next returns the next frame, skipping blank lines.
func (s *StreamSource) Next(ctx context.Context) (Frame, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Frame{}, err
		}
		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return Frame{}, fmt.Errorf("read frame: %w", err)
			}
			return Frame{}, io.EOF
		}
		line := s.scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		return DecodeFrame(line)
	}
}

// Close closes the underlying reader if it is closable.
func (s *StreamSource) Close() error {
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}
