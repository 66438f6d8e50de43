package origin

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// ErrBodyTooLarge is returned when a document exceeds the retention limit.
var ErrBodyTooLarge = errors.New("origin body exceeds retention limit")

// Replayable holds a fully read body that can be consumed any number of times.
type Replayable struct {
	data []byte
}

// ReadReplayable reads r to EOF. A limit <= 0 disables the cap.
func ReadReplayable(r io.Reader, limit int64) (*Replayable, error) {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %d bytes", ErrBodyTooLarge, limit)
	}
	return &Replayable{data: data}, nil
}

// NewReplayable wraps bytes already in memory.
func NewReplayable(data []byte) *Replayable {
	return &Replayable{data: data}
}

// Reader returns an independent reader positioned at the start.
func (b *Replayable) Reader() io.Reader {
	return bytes.NewReader(b.data)
}

// Bytes exposes the retained bytes. Callers must not modify them.
func (b *Replayable) Bytes() []byte {
	return b.data
}

// Len is the retained size in bytes.
func (b *Replayable) Len() int {
	return len(b.data)
}
