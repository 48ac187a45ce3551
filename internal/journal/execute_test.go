package journal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/ledger"
	"github.com/roach88/journal/internal/ledger/ledgertest"
)

func (f *fixture) execute(in ir.Instruction) (Result, error) {
	var res Result
	err := f.l.Update(f.ctx, func(tx ledger.Tx) error {
		var err error
		res, err = f.p.Execute(f.ctx, Invocation{Tx: tx, Now: testNow}, in)
		return err
	})
	return res, err
}

func TestExecute_Lifecycle(t *testing.T) {
	f := newFixture(t, alice)
	base := ir.Instruction{Program: f.p.ID, Signer: alice, Owner: alice}

	in := base
	in.Kind = ir.OpInitializeCounter
	res, err := f.execute(in)
	require.NoError(t, err)
	counterAddr, _, _ := f.p.CounterAddress(alice)
	assert.Equal(t, counterAddr, res.Address)
	assert.Equal(t, counterRent, res.Rent)
	require.NotNil(t, res.Counter)
	assert.Len(t, res.Logs, 1)

	in = base
	in.Kind, in.Title, in.Body = ir.OpCreateRecord, "hello", "world"
	res, err = f.execute(in)
	require.NoError(t, err)
	recordAddr, _, _ := f.p.RecordAddress(alice, 0)
	assert.Equal(t, recordAddr, res.Address)
	assert.Equal(t, uint64(0), res.Sequence)
	assert.Equal(t, recordRent, res.Rent)
	assert.Equal(t, []string{"Journal entry 0 created. Title: hello"}, res.Logs)

	in = base
	in.Kind, in.Sequence, in.Title, in.Body = ir.OpUpdateRecord, 0, "hi", "there"
	res, err = f.execute(in)
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	assert.Equal(t, "hi", res.Record.Title)

	in = base
	in.Kind, in.Sequence = ir.OpDeleteRecord, 0
	res, err = f.execute(in)
	require.NoError(t, err)
	assert.Equal(t, recordRent, res.Reclaimed)
	assert.Equal(t, []string{"Journal entry 0 deleted"}, res.Logs)
}

func TestExecute_BumpFromInstruction(t *testing.T) {
	f := newFixture(t, alice)
	_, bump, err := f.p.CounterAddress(alice)
	require.NoError(t, err)
	wrong := bump + 1

	_, err = f.execute(ir.Instruction{Kind: ir.OpInitializeCounter, Program: f.p.ID, Signer: alice, Owner: alice, Bump: &wrong})
	assert.ErrorIs(t, err, ErrWrongAddress)
}

func TestExecute_RejectsMalformed(t *testing.T) {
	f := newFixture(t, alice)

	_, err := f.execute(ir.Instruction{Kind: "rename_record", Program: f.p.ID, Signer: alice, Owner: alice})
	assert.ErrorContains(t, err, "invalid operation kind")

	_, err = f.execute(ir.Instruction{Kind: ir.OpInitializeCounter, Program: ledgertest.Key(7), Signer: alice, Owner: alice})
	assert.ErrorContains(t, err, "addressed to program")
}

func TestExecute_RejectsEnvironmentOps(t *testing.T) {
	f := newFixture(t, alice)
	_, err := f.execute(ir.Instruction{Kind: ir.OpAirdrop, Program: f.p.ID, Signer: alice, Owner: alice, Lamports: 5})
	assert.ErrorContains(t, err, "not a program instruction")
}
