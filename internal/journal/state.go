package journal

import (
	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/layout"
)

// Counter is an owner's OwnerCounter.
type Counter struct {
	Owner        ir.Pubkey `json:"owner"`
	NextSequence uint64    `json:"next_sequence"`
	Bump         uint8     `json:"bump"`
}

// MarshalBinary encodes c into exactly layout.SizeOf(KindCounter) bytes.
func (c Counter) MarshalBinary() ([]byte, error) {
	w := layout.NewWriter(layout.KindCounter)
	w.Pubkey("owner", c.Owner)
	w.Uint64("next_sequence", c.NextSequence)
	w.Uint8("bump", c.Bump)
	return w.Bytes()
}

// UnmarshalBinary decodes a stored counter.
func (c *Counter) UnmarshalBinary(data []byte) error {
	r, err := layout.NewReader(layout.KindCounter, data)
	if err != nil {
		return err
	}
	c.Owner = r.Pubkey("owner")
	c.NextSequence = r.Uint64("next_sequence")
	c.Bump = r.Uint8("bump")
	return r.Err()
}

// Record is one JournalRecord.
type Record struct {
	Owner     ir.Pubkey `json:"owner"`
	Sequence  uint64    `json:"sequence"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	UpdatedAt int64     `json:"updated_at"` // Unix seconds, set on create and every update
	Bump      uint8     `json:"bump"`
}

// MarshalBinary encodes r into exactly layout.SizeOf(KindRecord) bytes.
func (r Record) MarshalBinary() ([]byte, error) {
	w := layout.NewWriter(layout.KindRecord)
	w.Pubkey("owner", r.Owner)
	w.Uint64("sequence", r.Sequence)
	w.Text("title", r.Title)
	w.Text("body", r.Body)
	w.Int64("updated_at", r.UpdatedAt)
	w.Uint8("bump", r.Bump)
	return w.Bytes()
}

// UnmarshalBinary decodes a stored record.
func (r *Record) UnmarshalBinary(data []byte) error {
	rd, err := layout.NewReader(layout.KindRecord, data)
	if err != nil {
		return err
	}
	r.Owner = rd.Pubkey("owner")
	r.Sequence = rd.Uint64("sequence")
	r.Title = rd.Text("title")
	r.Body = rd.Text("body")
	r.UpdatedAt = rd.Int64("updated_at")
	r.Bump = rd.Uint8("bump")
	return rd.Err()
}
