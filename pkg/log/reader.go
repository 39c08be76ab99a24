package log

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/meshmodel/mm-go/pkg/wire"
)

// Filter selects events. Zero fields match everything. Opcode, Src and
// DroppedOnly only match message events.
type Filter struct {
	SessionID string
	Direction *Direction
	Layer     *Layer
	Category  *Category

	// TimeStart is inclusive, TimeEnd exclusive.
	TimeStart *time.Time
	TimeEnd   *time.Time

	LocalAddr   *uint16
	Opcode      *wire.Opcode
	Src         *uint16
	DroppedOnly bool
}

func eq[T comparable](want *T, got T) bool { return want == nil || *want == got }

func (f *Filter) matches(ev Event) bool {
	if f.SessionID != "" && ev.SessionID != f.SessionID {
		return false
	}
	if !eq(f.Direction, ev.Direction) || !eq(f.Layer, ev.Layer) ||
		!eq(f.Category, ev.Category) || !eq(f.LocalAddr, ev.LocalAddr) {
		return false
	}
	if f.TimeStart != nil && ev.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !ev.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	if f.Opcode == nil && f.Src == nil && !f.DroppedOnly {
		return true
	}
	m := ev.Message
	return m != nil && eq(f.Opcode, m.Opcode) && eq(f.Src, m.Src) && (m.Dropped || !f.DroppedOnly)
}

// Reader streams events out of a protocol log file.
type Reader struct {
	file   *os.File
	dec    *cbor.Decoder
	filter Filter
}

// NewReader opens path and yields every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens path and yields events matching filter.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{file: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the file.
func (r *Reader) Next() (Event, error) {
	for {
		var ev Event
		err := r.dec.Decode(&ev)
		switch {
		case errors.Is(err, io.EOF):
			return Event{}, io.EOF
		case err != nil:
			return Event{}, fmt.Errorf("decode event: %w", err)
		case r.filter.matches(ev):
			return ev, nil
		}
	}
}

func (r *Reader) Close() error {
	return r.file.Close()
}
