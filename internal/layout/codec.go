package layout

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/roach88/journal/internal/ir"
)

var (
	// ErrKindMismatch means stored bytes carry another kind's discriminator.
	ErrKindMismatch = errors.New("layout: discriminator mismatch")

	// ErrSizeMismatch means stored bytes are not exactly SizeOf(kind) long.
	ErrSizeMismatch = errors.New("layout: data size mismatch")
)

// Writer encodes one record of a kind. Fields must be written in declared
// order; the first mistake is sticky and reported by Bytes.
type Writer struct {
	kind   Kind
	fields []Field
	next   int
	buf    []byte
	err    error
}

// NewWriter starts a record of kind, discriminator included.
func NewWriter(kind Kind) *Writer {
	d := Discriminator(kind)
	buf := make([]byte, 0, SizeOf(kind))
	return &Writer{kind: kind, fields: Fields(kind), buf: append(buf, d[:]...)}
}

func (w *Writer) field(name string, width int) (Field, bool) {
	if w.err != nil {
		return Field{}, false
	}
	if w.next >= len(w.fields) {
		w.err = fmt.Errorf("layout: %s has no field after %d, got %q", w.kind, w.next, name)
		return Field{}, false
	}
	f := w.fields[w.next]
	if f.Name != name || (!f.IsText() && f.Width != width) || (f.IsText() && width != 0) {
		w.err = fmt.Errorf("layout: %s field %d is %q, got %q", w.kind, w.next, f.Name, name)
		return Field{}, false
	}
	w.next++
	return f, true
}

// Pubkey writes a 32-byte identity.
func (w *Writer) Pubkey(name string, pk ir.Pubkey) {
	if _, ok := w.field(name, ir.PubkeySize); ok {
		w.buf = append(w.buf, pk[:]...)
	}
}

// Uint64 writes a little-endian u64.
func (w *Writer) Uint64(name string, v uint64) {
	if _, ok := w.field(name, 8); ok {
		w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	}
}

// Int64 writes a little-endian i64.
func (w *Writer) Int64(name string, v int64) {
	if _, ok := w.field(name, 8); ok {
		w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v))
	}
}

// Uint8 writes one byte.
func (w *Writer) Uint8(name string, v uint8) {
	if _, ok := w.field(name, 1); ok {
		w.buf = append(w.buf, v)
	}
}

// Text writes a length-prefixed string padded to the field's capacity.
func (w *Writer) Text(name string, s string) {
	f, ok := w.field(name, 0)
	if !ok {
		return
	}
	if err := f.Fit(s); err != nil {
		w.err = err
		return
	}
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(len(s)))
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, make([]byte, f.MaxLen-len(s))...)
}

// Bytes returns the encoded record, exactly SizeOf(kind) bytes long.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	if w.next != len(w.fields) {
		return nil, fmt.Errorf("layout: %s missing field %q", w.kind, w.fields[w.next].Name)
	}
	if len(w.buf) != SizeOf(w.kind) {
		return nil, fmt.Errorf("%w: %s encoded %d bytes, want %d", ErrSizeMismatch, w.kind, len(w.buf), SizeOf(w.kind))
	}
	return w.buf, nil
}

// Reader decodes one record of a kind. Errors are sticky, see Err.
type Reader struct {
	kind   Kind
	fields []Field
	next   int
	data   []byte
	off    int
	err    error
}

// NewReader validates size and discriminator and positions after it.
func NewReader(kind Kind, data []byte) (*Reader, error) {
	if len(data) != SizeOf(kind) {
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrSizeMismatch, kind, len(data), SizeOf(kind))
	}
	d := Discriminator(kind)
	if string(data[:DiscriminatorSize]) != string(d[:]) {
		return nil, fmt.Errorf("%w: want %s", ErrKindMismatch, kind)
	}
	return &Reader{kind: kind, fields: Fields(kind), data: data, off: DiscriminatorSize}, nil
}

func (r *Reader) field(name string) (Field, bool) {
	if r.err != nil {
		return Field{}, false
	}
	if r.next >= len(r.fields) || r.fields[r.next].Name != name {
		r.err = fmt.Errorf("layout: %s read of %q out of order", r.kind, name)
		return Field{}, false
	}
	f := r.fields[r.next]
	r.next++
	return f, true
}

func (r *Reader) take(f Field) []byte {
	b := r.data[r.off : r.off+f.Size()]
	r.off += f.Size()
	return b
}

// Pubkey reads a 32-byte identity.
func (r *Reader) Pubkey(name string) ir.Pubkey {
	var pk ir.Pubkey
	if f, ok := r.field(name); ok {
		copy(pk[:], r.take(f))
	}
	return pk
}

// Uint64 reads a little-endian u64.
func (r *Reader) Uint64(name string) uint64 {
	if f, ok := r.field(name); ok {
		return binary.LittleEndian.Uint64(r.take(f))
	}
	return 0
}

// Int64 reads a little-endian i64.
func (r *Reader) Int64(name string) int64 {
	return int64(r.Uint64(name))
}

// Uint8 reads one byte.
func (r *Reader) Uint8(name string) uint8 {
	if f, ok := r.field(name); ok {
		return r.take(f)[0]
	}
	return 0
}

// Text reads a length-prefixed string.
func (r *Reader) Text(name string) string {
	f, ok := r.field(name)
	if !ok {
		return ""
	}
	b := r.take(f)
	n := binary.LittleEndian.Uint32(b[:LengthPrefixSize])
	if int(n) > f.MaxLen {
		r.err = fmt.Errorf("layout: %s.%s length %d exceeds capacity %d", r.kind, name, n, f.MaxLen)
		return ""
	}
	return string(b[LengthPrefixSize : LengthPrefixSize+int(n)])
}

// Err returns the first decoding error.
func (r *Reader) Err() error {
	return r.err
}
