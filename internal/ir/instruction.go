package ir

import (
	"crypto/ed25519"
	"encoding/json"
	"fmt"
)

// DomainInstruction prefixes every signing payload.
// The version suffix leaves room for a future payload format.
const DomainInstruction = "journal/instruction/v1"

// OpKind names an operation: one of the four journal operations, or an
// airdrop applied by the environment itself.
type OpKind string

const (
	OpInitializeCounter OpKind = "initialize_counter"
	OpCreateRecord      OpKind = "create_record"
	OpUpdateRecord      OpKind = "update_record"
	OpDeleteRecord      OpKind = "delete_record"

	// OpAirdrop credits Owner with Lamports. It is not signed.
	OpAirdrop OpKind = "airdrop"
)

// ValidOpKinds defines allowed operation kinds.
var ValidOpKinds = map[OpKind]bool{
	OpInitializeCounter: true,
	OpCreateRecord:      true,
	OpUpdateRecord:      true,
	OpDeleteRecord:      true,
	OpAirdrop:           true,
}

// IsProgramOp reports whether k is executed by the journal program.
func (k OpKind) IsProgramOp() bool {
	return ValidOpKinds[k] && k != OpAirdrop
}

// Instruction is a single request to the journal program.
//
// Owner selects the namespace the addressed records are derived from.
// Signer is the identity whose signature the environment verifies; the
// program compares it against the owner (create, initialize) or the
// record's stored owner (update, delete).
type Instruction struct {
	Kind     OpKind `json:"kind"`
	Program  Pubkey `json:"program"`
	Signer   Pubkey `json:"signer"`
	Owner    Pubkey `json:"owner"`
	Sequence uint64 `json:"sequence"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	Lamports uint64 `json:"lamports"`
	Bump     *uint8 `json:"bump,omitempty"` // Caller-supplied disambiguator, optional
}

// Args returns the instruction as a canonical-JSON-ready object.
// Only fields meaningful for the kind are included.
func (in Instruction) Args() map[string]any {
	args := map[string]any{
		"kind":    string(in.Kind),
		"program": in.Program,
		"signer":  in.Signer,
		"owner":   in.Owner,
	}
	switch in.Kind {
	case OpCreateRecord:
		args["title"] = in.Title
		args["body"] = in.Body
	case OpUpdateRecord:
		args["sequence"] = in.Sequence
		args["title"] = in.Title
		args["body"] = in.Body
	case OpDeleteRecord:
		args["sequence"] = in.Sequence
	case OpAirdrop:
		args["lamports"] = in.Lamports
	}
	if in.Bump != nil {
		args["bump"] = *in.Bump
	}
	return args
}

// CanonicalArgs returns the RFC 8785 encoding of Args.
func (in Instruction) CanonicalArgs() ([]byte, error) {
	data, err := MarshalCanonical(in.Args())
	if err != nil {
		return nil, fmt.Errorf("instruction %s: %w", in.Kind, err)
	}
	return data, nil
}

// SigningPayload returns the bytes a signer signs.
// Format: domain + 0x00 + canonical args. The null byte separator
// prevents domain/data boundary ambiguity.
func (in Instruction) SigningPayload() ([]byte, error) {
	args, err := in.CanonicalArgs()
	if err != nil {
		return nil, err
	}
	payload := make([]byte, 0, len(DomainInstruction)+1+len(args))
	payload = append(payload, DomainInstruction...)
	payload = append(payload, 0x00)
	payload = append(payload, args...)
	return payload, nil
}

// Validate checks the instruction is structurally complete.
// Content bounds are the program's concern, not checked here.
func (in Instruction) Validate() error {
	if !ValidOpKinds[in.Kind] {
		return fmt.Errorf("invalid operation kind %q", in.Kind)
	}
	if in.Signer.IsZero() {
		return fmt.Errorf("%s: signer is required", in.Kind)
	}
	if in.Owner.IsZero() {
		return fmt.Errorf("%s: owner is required", in.Kind)
	}
	if in.Kind == OpAirdrop && in.Lamports == 0 {
		return fmt.Errorf("%s: lamports must be positive", in.Kind)
	}
	return nil
}

// ParseInstruction decodes canonical args back into an Instruction.
func ParseInstruction(data []byte) (Instruction, error) {
	var in Instruction
	if err := json.Unmarshal(data, &in); err != nil {
		return Instruction{}, fmt.Errorf("parse instruction: %w", err)
	}
	return in, nil
}

// SignedInstruction pairs an instruction with the signer's signature
// over its SigningPayload.
type SignedInstruction struct {
	Instruction Instruction `json:"instruction"`
	Signature   []byte      `json:"signature"`
}

// Sign signs in's SigningPayload with key. The key is expected to belong
// to in.Signer; that is checked by whoever verifies the signature.
func Sign(key ed25519.PrivateKey, in Instruction) (SignedInstruction, error) {
	payload, err := in.SigningPayload()
	if err != nil {
		return SignedInstruction{}, err
	}
	return SignedInstruction{Instruction: in, Signature: ed25519.Sign(key, payload)}, nil
}

// Verify reports whether the signature is valid for the instruction's
// signer.
func (s SignedInstruction) Verify() bool {
	if len(s.Signature) != ed25519.SignatureSize {
		return false
	}
	payload, err := s.Instruction.SigningPayload()
	if err != nil {
		return false
	}
	return ed25519.Verify(s.Instruction.Signer.Ed25519(), payload, s.Signature)
}
