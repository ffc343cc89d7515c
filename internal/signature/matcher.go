// Package signature provides the CEL-based fraud pattern matcher. Signatures
// are registered predicates over the check input (synthetic identities,
// fraud-ring membership, sequential account numbers); none are bundled, so
// the matcher reports nothing until signatures are loaded.
package signature

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/reshadx/fraudguard/internal/domain"
)

// Matcher compiles and evaluates fraud signatures.
type Matcher struct {
	mu       sync.RWMutex
	env      *cel.Env
	compiled map[string]*compiledSignature
}

type compiledSignature struct {
	config  *domain.Signature
	program cel.Program
}

// NewMatcher creates a signature matcher with the check-input variables
// available to expressions.
func NewMatcher() (*Matcher, error) {
	env, err := cel.NewEnv(
		cel.Variable("user_id", cel.StringType),
		cel.Variable("account_id", cel.StringType),
		cel.Variable("transaction_id", cel.StringType),
		cel.Variable("recipient_id", cel.StringType),
		cel.Variable("amount", cel.IntType),
		cel.Variable("device_id", cel.StringType),
		cel.Variable("ip_address", cel.StringType),
		cel.Variable("user_agent", cel.StringType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Matcher{
		env:      env,
		compiled: make(map[string]*compiledSignature),
	}, nil
}

// Validate compiles a signature without loading it.
func (m *Matcher) Validate(sig *domain.Signature) error {
	if sig == nil {
		return fmt.Errorf("signature is required")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := m.compile(sig)
	return err
}

// Load compiles and loads a signature into the matcher.
func (m *Matcher) Load(sig *domain.Signature) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	compiled, err := m.compile(sig)
	if err != nil {
		return err
	}

	m.compiled[sig.ID] = compiled
	return nil
}

// LoadAll compiles and loads multiple signatures, skipping disabled ones.
func (m *Matcher) LoadAll(sigs []*domain.Signature) error {
	for _, sig := range sigs {
		if sig.Enabled {
			if err := m.Load(sig); err != nil {
				return err
			}
		}
	}
	return nil
}

// Reload replaces all loaded signatures. Enables hot-reloading from the
// database.
func (m *Matcher) Reload(sigs []*domain.Signature) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := make(map[string]*compiledSignature)
	for _, sig := range sigs {
		if !sig.Enabled {
			continue
		}
		compiled, err := m.compile(sig)
		if err != nil {
			return err
		}
		next[sig.ID] = compiled
	}

	m.compiled = next
	return nil
}

// Match evaluates every loaded signature against the input and returns a
// flag per matching signature. A signature that fails to evaluate is skipped.
func (m *Matcher) Match(ctx context.Context, input *domain.CheckInput) []domain.FraudFlag {
	m.mu.RLock()
	sigs := make([]*compiledSignature, 0, len(m.compiled))
	for _, s := range m.compiled {
		sigs = append(sigs, s)
	}
	m.mu.RUnlock()

	if len(sigs) == 0 {
		return nil
	}

	activation := map[string]any{
		"user_id":        input.UserID,
		"account_id":     input.AccountID,
		"transaction_id": input.TransactionID,
		"recipient_id":   input.RecipientID,
		"amount":         input.AmountMinor,
		"device_id":      "",
		"ip_address":     "",
		"user_agent":     "",
	}
	if input.Device != nil {
		activation["device_id"] = input.Device.DeviceID
		activation["ip_address"] = input.Device.IPAddress
		activation["user_agent"] = input.Device.UserAgent
	}

	var flags []domain.FraudFlag
	for _, sig := range sigs {
		out, _, err := sig.program.Eval(activation)
		if err != nil {
			continue
		}
		matched, ok := out.(types.Bool)
		if !ok || !bool(matched) {
			continue
		}

		desc := sig.config.Description
		if desc == "" {
			desc = fmt.Sprintf("matched fraud signature %q", sig.config.Name)
		}
		flags = append(flags, domain.FraudFlag{
			Type:        domain.FlagKnownFraudPattern,
			Severity:    sig.config.Severity,
			Description: desc,
			Score:       sig.config.Score,
		})
	}

	return flags
}

// Count returns the number of loaded signatures.
func (m *Matcher) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.compiled)
}

// Close cleans up the matcher.
func (m *Matcher) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.compiled = make(map[string]*compiledSignature)
	return nil
}

func (m *Matcher) compile(sig *domain.Signature) (*compiledSignature, error) {
	ast, issues := m.env.Compile(sig.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile signature %s: %w", sig.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("signature %s: expression must return bool, got %s", sig.ID, ast.OutputType())
	}

	program, err := m.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for signature %s: %w", sig.ID, err)
	}

	return &compiledSignature{
		config:  sig,
		program: program,
	}, nil
}
