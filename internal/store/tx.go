package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/roach88/journal/internal/ir"
	"github.com/roach88/journal/internal/ledger"
)

var accountColumns = []string{"address", "owner", "lamports", "data"}

// sqlTx adapts *sql.Tx to ledger.Tx.
type sqlTx struct {
	tx       *sql.Tx
	readOnly bool
}

func (t *sqlTx) Get(ctx context.Context, addr ir.Pubkey) (ledger.Account, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT address, owner, lamports, data
		FROM accounts
		WHERE address = ?
	`, addr[:])

	acct, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, ledger.ErrAccountNotFound
	}
	if err != nil {
		return ledger.Account{}, fmt.Errorf("get account %s: %w", addr, err)
	}
	return acct, nil
}

func (t *sqlTx) Put(ctx context.Context, a ledger.Account) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	data := a.Data
	if data == nil {
		data = []byte{}
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO accounts (address, owner, lamports, data)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(address) DO UPDATE SET
			owner = excluded.owner,
			lamports = excluded.lamports,
			data = excluded.data
	`, a.Address[:], a.Owner[:], lamportsToSQL(a.Lamports), data)
	if err != nil {
		return fmt.Errorf("put account %s: %w", a.Address, err)
	}
	return nil
}

func (t *sqlTx) Delete(ctx context.Context, addr ir.Pubkey) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM accounts WHERE address = ?`, addr[:]); err != nil {
		return fmt.Errorf("delete account %s: %w", addr, err)
	}
	return nil
}

// Scan builds the query from the filter; unset filter fields add no clause.
func (t *sqlTx) Scan(ctx context.Context, f ledger.Filter) ([]ledger.Account, error) {
	query := squirrel.Select(accountColumns...).
		From("accounts").
		OrderBy("address ASC")
	if f.Owner != nil {
		query = query.Where(squirrel.Expr("owner = ?", f.Owner[:]))
	}
	if f.DataSize > 0 {
		query = query.Where("length(data) = ?", f.DataSize)
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("scan accounts: build query: %w", err)
	}

	rows, err := t.tx.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("scan accounts: %w", err)
	}
	defer rows.Close()

	accounts := []ledger.Account{}
	for rows.Next() {
		acct, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan accounts: %w", err)
		}
		accounts = append(accounts, acct)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	return accounts, nil
}

func (t *sqlTx) AppendOperation(ctx context.Context, op ir.Operation) error {
	if t.readOnly {
		return ledger.ErrReadOnly
	}
	args, err := marshalInstruction(op.Instruction)
	if err != nil {
		return fmt.Errorf("append operation: %w", err)
	}
	signature := op.Signature
	if signature == nil {
		signature = []byte{}
	}

	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO operations
		(seq, id, kind, signer, args, signature, executed_at, outcome)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		op.Seq,
		op.ID,
		string(op.Instruction.Kind),
		op.Instruction.Signer[:],
		args,
		signature,
		op.ExecutedAt,
		op.Outcome,
	)
	if err != nil {
		return fmt.Errorf("append operation %s: %w", op.ID, err)
	}
	return nil
}

// Operations returns the log ordered by seq.
func (t *sqlTx) Operations(ctx context.Context) ([]ir.Operation, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT seq, id, args, signature, executed_at, outcome
		FROM operations
		ORDER BY seq ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	ops := []ir.Operation{}
	for rows.Next() {
		var (
			op   ir.Operation
			args string
		)
		if err := rows.Scan(&op.Seq, &op.ID, &args, &op.Signature, &op.ExecutedAt, &op.Outcome); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		if op.Instruction, err = unmarshalInstruction(args); err != nil {
			return nil, fmt.Errorf("operation %s: %w", op.ID, err)
		}
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return ops, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (ledger.Account, error) {
	var (
		addr, owner []byte
		lamports    int64
		data        []byte
	)
	if err := row.Scan(&addr, &owner, &lamports, &data); err != nil {
		return ledger.Account{}, err
	}

	var (
		acct ledger.Account
		err  error
	)
	if acct.Address, err = pubkeyFromColumn("address", addr); err != nil {
		return ledger.Account{}, err
	}
	if acct.Owner, err = pubkeyFromColumn("owner", owner); err != nil {
		return ledger.Account{}, err
	}
	acct.Lamports = lamportsFromSQL(lamports)
	acct.Data = data
	if acct.Data == nil {
		acct.Data = []byte{}
	}
	return acct, nil
}
