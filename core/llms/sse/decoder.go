// Package sse decodes a line oriented, server-sent-events style byte stream
// into frames.
//
// The decoder does not assume that transport chunks line up with lines. Any
// chunk may end in the middle of a line, in the middle of the `data:` prefix
// or in the middle of a multi-byte character; the unconsumed tail is kept
// until the rest of the line arrives.
package sse

import (
	"bytes"
	"iter"
)

const (
	// DataPrefix marks a line that carries a payload.
	DataPrefix = "data:"
	// CommentPrefix marks a comment line, usually a keep-alive.
	CommentPrefix = ":"
)

type FrameKind int

const (
	FrameBlank FrameKind = iota
	FrameComment
	FrameData
	FrameOther
)

func (k FrameKind) String() string {
	switch k {
	case FrameBlank:
		return "blank"
	case FrameComment:
		return "comment"
	case FrameData:
		return "data"
	default:
		return "other"
	}
}

// Frame is one complete line taken from the stream.
type Frame struct {
	Kind FrameKind
	// Line is the full line without the line terminator.
	Line string
	// Data is the payload of a data frame with the prefix (and the single
	// space that conventionally follows it) removed.
	Data string
}

// Decoder turns raw chunks into data frames. It is not safe for concurrent
// use; one decoder belongs to one stream.
type Decoder struct {
	pending []byte

	// carry holds a data line that was handed back with Unread. It is joined
	// with the next continuation line.
	carry    []byte
	hasCarry bool
	// tentative is set when the last yielded frame joined the carry with a
	// comment-prefixed line. Handing such a frame back abandons it.
	tentative bool

	discarded int
}

func NewDecoder() *Decoder {
	return &Decoder{}
}

// Feed appends chunk to the pending buffer and yields every complete data
// frame found at the front of it. Blank, comment and unrecognised lines are
// dropped. Frames are extracted lazily, so a consumer may call Unread from
// inside the loop and the next extracted line will see it.
func (d *Decoder) Feed(chunk []byte) iter.Seq[Frame] {
	d.pending = append(d.pending, chunk...)

	return func(yield func(Frame) bool) {
		for {
			idx := bytes.IndexByte(d.pending, '\n')
			if idx < 0 {
				return
			}

			line := d.pending[:idx]
			frame, ok := d.takeLine(line)
			d.pending = d.pending[idx+1:]
			if !ok {
				continue
			}
			if !yield(frame) {
				return
			}
		}
	}
}

// Flush yields what can still be decoded once the stream has ended: the final
// line, even though it was never terminated. A fragment handed back with
// Unread that never got its continuation is discarded.
func (d *Decoder) Flush() iter.Seq[Frame] {
	return func(yield func(Frame) bool) {
		defer d.Reset()

		if len(d.pending) > 0 {
			line := d.pending
			d.pending = nil
			if frame, ok := d.takeLine(line); ok {
				if !yield(frame) {
					return
				}
			}
		}

		if d.hasCarry {
			d.dropCarry()
		}
	}
}

// Unread hands a data frame back to the decoder because its payload could not
// be interpreted yet. The payload is re-merged in front of the data that
// follows it: if the next line is a continuation the two are joined and
// yielded again as one frame. A line starting with a colon is tried as a
// continuation too; if that joined frame is handed back again, it is
// abandoned and the line counts as a comment. If the next line starts a new
// data frame or is blank, the handed back fragment is abandoned.
func (d *Decoder) Unread(frame Frame) {
	if d.tentative {
		d.tentative = false
		d.discarded++
		return
	}
	if d.hasCarry {
		d.dropCarry()
	}
	d.carry = append(d.carry[:0], frame.Line...)
	d.hasCarry = true
}

// Discarded returns how many handed back fragments were abandoned.
func (d *Decoder) Discarded() int {
	return d.discarded
}

// Buffered returns the number of bytes waiting for a line terminator.
func (d *Decoder) Buffered() int {
	return len(d.pending)
}

// Reset drops all buffered state so the decoder can be used for a new stream.
func (d *Decoder) Reset() {
	d.pending = nil
	d.carry = d.carry[:0]
	d.hasCarry = false
	d.tentative = false
}

func (d *Decoder) dropCarry() {
	d.carry = d.carry[:0]
	d.hasCarry = false
	d.discarded++
}

// takeLine classifies a raw line and decides whether it produces a frame.
// line aliases the pending buffer and must not be retained.
func (d *Decoder) takeLine(line []byte) (Frame, bool) {
	line = bytes.TrimSuffix(line, []byte{'\r'})

	d.tentative = false
	kind := classify(line)
	if d.hasCarry {
		if kind == FrameOther || kind == FrameComment {
			joined := make([]byte, 0, len(d.carry)+len(line))
			joined = append(joined, d.carry...)
			joined = append(joined, line...)
			d.carry = d.carry[:0]
			d.hasCarry = false
			d.tentative = kind == FrameComment
			return newDataFrame(joined), true
		}
		d.dropCarry()
	}

	if kind != FrameData {
		return Frame{}, false
	}
	return newDataFrame(bytes.Clone(line)), true
}

func classify(line []byte) FrameKind {
	switch {
	case len(bytes.TrimSpace(line)) == 0:
		return FrameBlank
	case bytes.HasPrefix(line, []byte(CommentPrefix)):
		return FrameComment
	case bytes.HasPrefix(line, []byte(DataPrefix)):
		return FrameData
	default:
		return FrameOther
	}
}

func newDataFrame(line []byte) Frame {
	data := bytes.TrimPrefix(line, []byte(DataPrefix))
	data = bytes.TrimPrefix(data, []byte{' '})
	return Frame{Kind: FrameData, Line: string(line), Data: string(data)}
}
