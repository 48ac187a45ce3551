package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalScenario = `
name: minimal
description: "one counter"
actors: [alice]
steps:
  - op: airdrop
    owner: alice
    lamports: 5000000
  - op: initialize_counter
    owner: alice
assertions:
  - type: counter
    owner: alice
    next_sequence: 0
`

func TestLoadScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	require.NoError(t, os.WriteFile(path, []byte(minimalScenario), 0o644))

	s, err := LoadScenario(path)
	require.NoError(t, err)

	assert.Equal(t, "minimal", s.Name)
	assert.Equal(t, []string{"alice"}, s.Actors)
	require.Len(t, s.Steps, 2)
	assert.Equal(t, uint64(5000000), s.Steps[0].Lamports)
	assert.Nil(t, s.Steps[1].Expect)
	require.Len(t, s.Assertions, 1)
	require.NotNil(t, s.Assertions[0].NextSequence)
	assert.Equal(t, uint64(0), *s.Assertions[0].NextSequence)
}

func TestLoadScenario_FileNotFound(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read scenario file")
}

func TestParseScenario_UnknownField(t *testing.T) {
	_, err := ParseScenario([]byte(minimalScenario + "asertions: []\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing name",
			yaml:    "description: d\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\n",
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			yaml:    "name: n\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\n",
			wantErr: "description is required",
		},
		{
			name:    "no actors",
			yaml:    "name: n\ndescription: d\nsteps: [{op: airdrop, owner: a}]\n",
			wantErr: "actors list is required",
		},
		{
			name:    "duplicate actor",
			yaml:    "name: n\ndescription: d\nactors: [a, a]\nsteps: [{op: airdrop, owner: a}]\n",
			wantErr: "duplicate name",
		},
		{
			name:    "no steps",
			yaml:    "name: n\ndescription: d\nactors: [a]\n",
			wantErr: "steps list is required",
		},
		{
			name:    "unknown op",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: transfer, owner: a}]\n",
			wantErr: `unknown op "transfer"`,
		},
		{
			name:    "unknown owner",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: initialize_counter, owner: b}]\n",
			wantErr: `owner "b" is not an actor`,
		},
		{
			name:    "unknown signer",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: initialize_counter, owner: a, signer: z}]\n",
			wantErr: `signer "z" is not an actor`,
		},
		{
			name:    "expect without outcome",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: initialize_counter, owner: a, expect: {sequence: 1}}]\n",
			wantErr: "outcome is required",
		},
		{
			name:    "bad program",
			yaml:    "name: n\ndescription: d\nprogram: nope0\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\n",
			wantErr: "program",
		},
		{
			name:    "unknown assertion",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\nassertions: [{type: final_state}]\n",
			wantErr: `unknown assertion type "final_state"`,
		},
		{
			name:    "counter without next_sequence",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\nassertions: [{type: counter, owner: a}]\n",
			wantErr: "next_sequence is required",
		},
		{
			name:    "records without sequences",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\nassertions: [{type: records, owner: a}]\n",
			wantErr: "sequences is required",
		},
		{
			name:    "balance for unknown actor",
			yaml:    "name: n\ndescription: d\nactors: [a]\nsteps: [{op: airdrop, owner: a}]\nassertions: [{type: balance, actor: b, lamports: 1}]\n",
			wantErr: `actor "b" is not an actor`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScenario([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
