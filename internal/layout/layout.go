// Package layout computes the fixed storage footprint of each record kind
// and encodes records into buffers of exactly that size.
//
// Storage cannot grow after allocation, so every variable-length text field
// declares a maximum up front and reserves 4 + max bytes (little-endian u32
// length prefix, then payload). SizeOf and the text bound checks read the
// same Field declarations, so they cannot disagree.
package layout

import (
	"crypto/sha256"
	"fmt"
)

// Kind names a stored record type.
type Kind string

const (
	KindCounter Kind = "OwnerCounter"
	KindRecord  Kind = "JournalRecord"
)

const (
	// DiscriminatorSize is the width of the kind tag leading every record.
	DiscriminatorSize = 8

	// LengthPrefixSize is the width of a text field's length prefix.
	LengthPrefixSize = 4

	MaxTitleChars = 50
	MaxBodyChars  = 280
)

// Field declares one stored field. Fixed fields set Width; text fields set
// MaxLen and reserve LengthPrefixSize + MaxLen bytes.
type Field struct {
	Name   string
	Width  int
	MaxLen int
}

// Text declares a bounded text field.
func Text(name string, maxLen int) Field {
	return Field{Name: name, MaxLen: maxLen}
}

// Fixed declares a fixed-width field.
func Fixed(name string, width int) Field {
	return Field{Name: name, Width: width}
}

// IsText reports whether f is a variable-length text field.
func (f Field) IsText() bool {
	return f.MaxLen > 0
}

// Size is the number of bytes reserved for f.
func (f Field) Size() int {
	if f.IsText() {
		return LengthPrefixSize + f.MaxLen
	}
	return f.Width
}

var kinds = map[Kind][]Field{
	KindCounter: {
		Fixed("owner", 32),
		Fixed("next_sequence", 8),
		Fixed("bump", 1),
	},
	KindRecord: {
		Fixed("owner", 32),
		Fixed("sequence", 8),
		Text("title", MaxTitleChars),
		Text("body", MaxBodyChars),
		Fixed("updated_at", 8),
		Fixed("bump", 1),
	},
}

// Fields returns the declared fields of kind in storage order.
// Panics on an unknown kind; kinds are compile-time constants.
func Fields(kind Kind) []Field {
	fields, ok := kinds[kind]
	if !ok {
		panic(fmt.Sprintf("layout: unknown kind %q", kind))
	}
	return fields
}

// FieldOf returns the declaration of the named field of kind.
func FieldOf(kind Kind, name string) Field {
	for _, f := range Fields(kind) {
		if f.Name == name {
			return f
		}
	}
	panic(fmt.Sprintf("layout: kind %q has no field %q", kind, name))
}

// SizeOf returns the exact number of bytes to allocate for kind:
// the discriminator plus every declared field at its maximum.
func SizeOf(kind Kind) int {
	size := DiscriminatorSize
	for _, f := range Fields(kind) {
		size += f.Size()
	}
	return size
}

// Discriminator returns the 8-byte tag stored at the start of every
// record of kind: sha256("account:" + kind)[:8].
func Discriminator(kind Kind) [DiscriminatorSize]byte {
	sum := sha256.Sum256([]byte("account:" + string(kind)))
	var d [DiscriminatorSize]byte
	copy(d[:], sum[:DiscriminatorSize])
	return d
}

// Rent-exemption parameters of the storage medium.
const (
	// StorageOverhead is charged per allocation on top of the data size.
	StorageOverhead = 128

	// LamportsPerByteYear is the storage price per byte.
	LamportsPerByteYear = 3480

	// ExemptionYears is how many years of rent make an allocation exempt.
	ExemptionYears = 2
)

// MinimumBalance returns the funding that must back an allocation of size bytes.
func MinimumBalance(size int) uint64 {
	return uint64(StorageOverhead+size) * LamportsPerByteYear * ExemptionYears
}
