package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/ir"
)

func TestSizeOf(t *testing.T) {
	// discriminator + owner + next_sequence + bump
	assert.Equal(t, 8+32+8+1, SizeOf(KindCounter))
	// discriminator + owner + sequence + (4+50) + (4+280) + updated_at + bump
	assert.Equal(t, 8+32+8+(4+50)+(4+280)+8+1, SizeOf(KindRecord))
	assert.Equal(t, 395, SizeOf(KindRecord))
}

func TestSizeOfUnknownKindPanics(t *testing.T) {
	assert.Panics(t, func() { SizeOf(Kind("Nope")) })
}

func TestDiscriminatorsDiffer(t *testing.T) {
	assert.NotEqual(t, Discriminator(KindCounter), Discriminator(KindRecord))
}

func TestMinimumBalance(t *testing.T) {
	assert.Equal(t, uint64((128+49)*3480*2), MinimumBalance(SizeOf(KindCounter)))
	assert.Equal(t, uint64(128*3480*2), MinimumBalance(0))
}

func TestFitBoundary(t *testing.T) {
	title := FieldOf(KindRecord, "title")
	body := FieldOf(KindRecord, "body")

	require.NoError(t, title.Fit(strings.Repeat("a", MaxTitleChars)))

	err := title.Fit(strings.Repeat("a", MaxTitleChars+1))
	assert.ErrorIs(t, err, ErrTextTooLong)

	require.NoError(t, body.Fit(strings.Repeat("b", MaxBodyChars)))

	err = body.Fit(strings.Repeat("b", MaxBodyChars+1))
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestFitCountsEncodedBytes(t *testing.T) {
	title := FieldOf(KindRecord, "title")

	// 25 two-byte characters fill the 50-byte budget exactly
	require.NoError(t, title.Fit(strings.Repeat("\u00e9", 25)))

	err := title.Fit(strings.Repeat("\u00e9", 26))
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestFitKeepsTextAsGiven(t *testing.T) {
	title := FieldOf(KindRecord, "title")

	// U+0958 decomposes under NFC and would grow from 3 to 6 bytes.
	raw := strings.Repeat("\u0958", MaxTitleChars/3)
	require.NoError(t, title.Fit(raw))

	data := encodeRecord(t, raw, "cafe\u0301")
	r, err := NewReader(KindRecord, data)
	require.NoError(t, err)
	r.Pubkey("owner")
	r.Uint64("sequence")
	assert.Equal(t, raw, r.Text("title"))
	assert.Equal(t, "cafe\u0301", r.Text("body"))
	require.NoError(t, r.Err())
}

func TestFitRejectsInvalidUTF8(t *testing.T) {
	err := FieldOf(KindRecord, "title").Fit("\xff\xfea")
	assert.ErrorIs(t, err, ErrInvalidText)

	w := NewWriter(KindRecord)
	w.Pubkey("owner", ir.Pubkey{})
	w.Uint64("sequence", 0)
	w.Text("title", "\xff")
	_, err = w.Bytes()
	assert.ErrorIs(t, err, ErrInvalidText)
}

func TestFitRejectsFixedField(t *testing.T) {
	assert.Error(t, FieldOf(KindRecord, "owner").Fit("x"))
}

func encodeRecord(t *testing.T, title, body string) []byte {
	t.Helper()
	var owner ir.Pubkey
	owner[0] = 7

	w := NewWriter(KindRecord)
	w.Pubkey("owner", owner)
	w.Uint64("sequence", 12)
	w.Text("title", title)
	w.Text("body", body)
	w.Int64("updated_at", -5)
	w.Uint8("bump", 254)
	data, err := w.Bytes()
	require.NoError(t, err)
	return data
}

func TestCodecRoundTrip(t *testing.T) {
	data := encodeRecord(t, "title", "body")
	assert.Len(t, data, SizeOf(KindRecord))

	r, err := NewReader(KindRecord, data)
	require.NoError(t, err)
	owner := r.Pubkey("owner")
	seq := r.Uint64("sequence")
	title := r.Text("title")
	body := r.Text("body")
	ts := r.Int64("updated_at")
	bump := r.Uint8("bump")
	require.NoError(t, r.Err())

	assert.Equal(t, byte(7), owner[0])
	assert.Equal(t, uint64(12), seq)
	assert.Equal(t, "title", title)
	assert.Equal(t, "body", body)
	assert.Equal(t, int64(-5), ts)
	assert.Equal(t, uint8(254), bump)
}

func TestCodecFullCapacity(t *testing.T) {
	data := encodeRecord(t, strings.Repeat("t", MaxTitleChars), strings.Repeat("m", MaxBodyChars))
	assert.Len(t, data, SizeOf(KindRecord))
}

func TestWriterOutOfOrder(t *testing.T) {
	w := NewWriter(KindCounter)
	w.Uint64("next_sequence", 1)
	_, err := w.Bytes()
	assert.ErrorContains(t, err, "owner")
}

func TestWriterMissingField(t *testing.T) {
	w := NewWriter(KindCounter)
	w.Pubkey("owner", ir.Pubkey{})
	_, err := w.Bytes()
	assert.ErrorContains(t, err, "next_sequence")
}

func TestWriterTextTooLong(t *testing.T) {
	w := NewWriter(KindRecord)
	w.Pubkey("owner", ir.Pubkey{})
	w.Uint64("sequence", 0)
	w.Text("title", strings.Repeat("x", MaxTitleChars+1))
	_, err := w.Bytes()
	assert.ErrorIs(t, err, ErrTextTooLong)
}

func TestReaderRejectsWrongKind(t *testing.T) {
	w := NewWriter(KindCounter)
	w.Pubkey("owner", ir.Pubkey{})
	w.Uint64("next_sequence", 0)
	w.Uint8("bump", 1)
	data, err := w.Bytes()
	require.NoError(t, err)

	_, err = NewReader(KindRecord, data)
	assert.ErrorIs(t, err, ErrSizeMismatch)

	padded := append(data, make([]byte, SizeOf(KindRecord)-len(data))...)
	_, err = NewReader(KindRecord, padded)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestReaderRejectsCorruptLength(t *testing.T) {
	data := encodeRecord(t, "t", "b")
	// title length prefix follows discriminator, owner and sequence
	data[DiscriminatorSize+32+8] = 0xff

	r, err := NewReader(KindRecord, data)
	require.NoError(t, err)
	r.Pubkey("owner")
	r.Uint64("sequence")
	r.Text("title")
	assert.ErrorContains(t, r.Err(), "exceeds capacity")
}
