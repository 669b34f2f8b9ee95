package settings

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// maxVarIntBytes is the longest varint encoding of a 32-bit length.
const maxVarIntBytes = 5

// wireReader reads the launcher stream primitives.
type wireReader struct {
	r     *bufio.Reader
	field string
}

func newWireReader(r io.Reader) *wireReader {
	return &wireReader{r: bufio.NewReader(r)}
}

// at names the field being read for error reporting.
func (w *wireReader) at(field string) *wireReader {
	w.field = field
	return w
}

func (w *wireReader) fail(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return formatErr(Truncated, w.field, err)
	}
	return formatErr(IOError, w.field, err)
}

func (w *wireReader) readInt32() (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(w.r, buf[:]); err != nil {
		return 0, w.fail(err)
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func (w *wireReader) readBool() (bool, error) {
	b, err := w.r.ReadByte()
	if err != nil {
		return false, w.fail(err)
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, formatErr(Invalid, w.field, fmt.Errorf("invalid boolean state: %d", b))
	}
}

func (w *wireReader) readVarInt() (uint32, error) {
	var value uint64
	for i := 0; i < maxVarIntBytes; i++ {
		b, err := w.r.ReadByte()
		if err != nil {
			return 0, w.fail(err)
		}
		value |= uint64(b&0x7F) << (7 * i)
		if b&0x80 == 0 {
			if value > math.MaxInt32 {
				return 0, formatErr(Invalid, w.field, fmt.Errorf("varint out of range: %d", value))
			}
			return uint32(value), nil
		}
	}
	return 0, formatErr(Invalid, w.field, errors.New("varint too long"))
}

// readLength reads a varint and rejects values above limit; limit 0 means unbounded.
func (w *wireReader) readLength(limit uint32) (uint32, error) {
	n, err := w.readVarInt()
	if err != nil {
		return 0, err
	}
	if limit > 0 && n > limit {
		return 0, formatErr(Invalid, w.field, fmt.Errorf("length %d exceeds %d", n, limit))
	}
	return n, nil
}

func (w *wireReader) readBytes(limit uint32) ([]byte, error) {
	n, err := w.readLength(limit)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(w.r, buf); err != nil {
		return nil, w.fail(err)
	}
	return buf, nil
}

func (w *wireReader) readString(limit uint32) (string, error) {
	buf, err := w.readBytes(limit)
	if err != nil {
		return "", err
	}
	if !utf8.Valid(buf) {
		return "", formatErr(Invalid, w.field, errors.New("string is not valid UTF-8"))
	}
	return string(buf), nil
}

// wireWriter writes the launcher stream primitives. The first error sticks.
type wireWriter struct {
	w     io.Writer
	field string
	err   error
}

func newWireWriter(w io.Writer) *wireWriter {
	return &wireWriter{w: w}
}

func (w *wireWriter) at(field string) *wireWriter {
	w.field = field
	return w
}

func (w *wireWriter) write(p []byte) {
	if w.err != nil {
		return
	}
	if _, err := w.w.Write(p); err != nil {
		w.err = formatErr(IOError, w.field, err)
	}
}

func (w *wireWriter) writeInt32(v int32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(v))
	w.write(buf[:])
}

func (w *wireWriter) writeBool(v bool) {
	if v {
		w.write([]byte{1})
	} else {
		w.write([]byte{0})
	}
}

func (w *wireWriter) writeVarInt(v uint32) {
	var buf [maxVarIntBytes]byte
	n := 0
	for v >= 0x80 {
		buf[n] = byte(v) | 0x80
		v >>= 7
		n++
	}
	buf[n] = byte(v)
	w.write(buf[:n+1])
}

func (w *wireWriter) writeLength(n int, limit uint32) {
	if w.err != nil {
		return
	}
	if n < 0 || n > math.MaxInt32 || (limit > 0 && uint32(n) > limit) {
		w.err = formatErr(Invalid, w.field, fmt.Errorf("length %d exceeds %d", n, limit))
		return
	}
	w.writeVarInt(uint32(n))
}

func (w *wireWriter) writeBytes(p []byte, limit uint32) {
	w.writeLength(len(p), limit)
	w.write(p)
}

func (w *wireWriter) writeString(s string, limit uint32) {
	if w.err == nil && !utf8.ValidString(s) {
		w.err = formatErr(Invalid, w.field, errors.New("string is not valid UTF-8"))
		return
	}
	w.writeBytes([]byte(s), limit)
}
