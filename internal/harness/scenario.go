package harness

import (
	"bytes"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/roach88/journal/internal/ir"
)

// Scenario is a scripted sequence of journal operations with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Program overrides the program id (base58). Empty means the default.
	Program string `yaml:"program,omitempty"`

	// Actors lists every name a step may use as owner or signer.
	Actors []string `yaml:"actors"`

	// Steps run in order through one engine.
	Steps []Step `yaml:"steps"`

	// Assertions are checked against the ledger after the last step.
	Assertions []Assertion `yaml:"assertions"`
}

// Step submits one operation.
type Step struct {
	Op       string `yaml:"op"`
	Owner    string `yaml:"owner"`
	Signer   string `yaml:"signer,omitempty"` // Defaults to Owner
	Sequence uint64 `yaml:"sequence,omitempty"`
	Title    string `yaml:"title,omitempty"`
	Body     string `yaml:"body,omitempty"`
	Lamports uint64 `yaml:"lamports,omitempty"`
	Bump     *uint8 `yaml:"bump,omitempty"`

	// Expect checks the step's outcome. If nil the step must commit.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect is the expected outcome of a step.
type Expect struct {
	// Outcome is OK or a rejection code such as NOT_FOUND.
	Outcome string `yaml:"outcome"`

	// Sequence is the record sequence a committed record op touched.
	Sequence *uint64 `yaml:"sequence,omitempty"`
}

// Assertion validates final ledger state or the trace.
type Assertion struct {
	Type         string   `yaml:"type"`
	Owner        string   `yaml:"owner,omitempty"`
	Actor        string   `yaml:"actor,omitempty"`
	Sequence     uint64   `yaml:"sequence,omitempty"`
	NextSequence *uint64  `yaml:"next_sequence,omitempty"`
	Title        *string  `yaml:"title,omitempty"`
	Body         *string  `yaml:"body,omitempty"`
	Sequences    []uint64 `yaml:"sequences,omitempty"`
	Lamports     *uint64  `yaml:"lamports,omitempty"`
	Outcome      string   `yaml:"outcome,omitempty"`
	Count        int      `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertCounter      = "counter"
	AssertRecord       = "record"
	AssertRecordAbsent = "record_absent"
	AssertRecords      = "records"
	AssertBalance      = "balance"
	AssertOutcomeCount = "outcome_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Unknown fields are rejected so typos fail loudly.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Actors) == 0 {
		return fmt.Errorf("actors list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	if s.Program != "" {
		if _, err := ir.ParsePubkey(s.Program); err != nil {
			return fmt.Errorf("program: %w", err)
		}
	}

	for i, a := range s.Actors {
		if a == "" {
			return fmt.Errorf("actors[%d]: empty name", i)
		}
		if slices.Index(s.Actors, a) != i {
			return fmt.Errorf("actors[%d]: duplicate name %q", i, a)
		}
	}

	for i, step := range s.Steps {
		if !ir.ValidOpKinds[ir.OpKind(step.Op)] {
			return fmt.Errorf("steps[%d]: unknown op %q", i, step.Op)
		}
		if !slices.Contains(s.Actors, step.Owner) {
			return fmt.Errorf("steps[%d]: owner %q is not an actor", i, step.Owner)
		}
		if step.Signer != "" && !slices.Contains(s.Actors, step.Signer) {
			return fmt.Errorf("steps[%d]: signer %q is not an actor", i, step.Signer)
		}
		if step.Expect != nil && step.Expect.Outcome == "" {
			return fmt.Errorf("steps[%d].expect: outcome is required", i)
		}
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(i, a, s.Actors); err != nil {
			return err
		}
	}
	return nil
}

func validateAssertion(index int, a Assertion, actors []string) error {
	needOwner := func() error {
		if !slices.Contains(actors, a.Owner) {
			return fmt.Errorf("assertions[%d]: owner %q is not an actor", index, a.Owner)
		}
		return nil
	}

	switch a.Type {
	case AssertCounter:
		if a.NextSequence == nil {
			return fmt.Errorf("assertions[%d]: next_sequence is required for counter", index)
		}
		return needOwner()
	case AssertRecord, AssertRecordAbsent:
		return needOwner()
	case AssertRecords:
		if a.Sequences == nil {
			return fmt.Errorf("assertions[%d]: sequences is required for records (use [] for none)", index)
		}
		return needOwner()
	case AssertBalance:
		if !slices.Contains(actors, a.Actor) {
			return fmt.Errorf("assertions[%d]: actor %q is not an actor", index, a.Actor)
		}
		if a.Lamports == nil {
			return fmt.Errorf("assertions[%d]: lamports is required for balance", index)
		}
	case AssertOutcomeCount:
		if a.Outcome == "" {
			return fmt.Errorf("assertions[%d]: outcome is required for outcome_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative", index)
		}
	case "":
		return fmt.Errorf("assertions[%d]: type is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
