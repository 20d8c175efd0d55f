package core

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// HeaderPredicate checks a decoded header. It returns nil to accept it.
type HeaderPredicate func(header []string) error

// ExpectHeader accepts a header whose comma-joined form equals the trimmed
// literal exactly.
func ExpectHeader(literal string) HeaderPredicate {
	want := strings.TrimSpace(literal)
	return func(header []string) error {
		got := strings.TrimSpace(strings.Join(header, ","))
		if got == want {
			return nil
		}
		diff := DiffHeader(strings.Split(got, ","), strings.Split(want, ","))
		if len(diff) == 0 {
			return decodeErrorf("validate header", ErrHeaderMismatch, "got %q, want %q", got, want)
		}
		return decodeErrorf("validate header", ErrHeaderMismatch, "%s", summarizeDiff(diff))
	}
}

// Contract is a named expected header.
type Contract struct {
	Key     string   `yaml:"key" json:"key"`
	Label   string   `yaml:"label" json:"label"`
	Columns []string `yaml:"columns" json:"columns"`
}

// HeaderLine returns the columns joined with commas.
func (c Contract) HeaderLine() string {
	return strings.Join(c.Columns, ",")
}

// Predicate returns the exact-match check for this contract.
func (c Contract) Predicate() HeaderPredicate {
	return ExpectHeader(c.HeaderLine())
}

func (c Contract) validate() error {
	if strings.TrimSpace(c.Key) == "" {
		return fmt.Errorf("contract key is required")
	}
	if len(c.Columns) == 0 {
		return fmt.Errorf("contract %s: columns are required", c.Key)
	}
	return nil
}

// ContractRegistry holds the header contracts a service can validate against.
type ContractRegistry struct {
	mu        sync.RWMutex
	contracts map[string]Contract
}

// NewContractRegistry returns an empty registry.
func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{contracts: make(map[string]Contract)}
}

// Register adds or replaces a contract.
func (r *ContractRegistry) Register(c Contract) error {
	if err := c.validate(); err != nil {
		return err
	}
	if c.Label == "" {
		c.Label = c.Key
	}
	c.Columns = cloneStrings(c.Columns)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts[c.Key] = c
	return nil
}

// Get returns a contract by key.
func (r *ContractRegistry) Get(key string) (Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[key]
	return c, ok
}

// Lookup is Get returning a ConfigError for an unknown key.
func (r *ContractRegistry) Lookup(key string) (Contract, error) {
	c, ok := r.Get(key)
	if !ok {
		return Contract{}, configErrorf("lookup contract", ErrUnknownContract, "%q", key)
	}
	return c, nil
}

// All returns every contract sorted by key.
func (r *ContractRegistry) All() []Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})
	return result
}

// contractFile is the YAML layout read by LoadFile.
type contractFile struct {
	Contracts []Contract `yaml:"contracts"`
}

// Load registers every contract in a YAML document.
func (r *ContractRegistry) Load(data []byte) error {
	var f contractFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse contracts: %w", err)
	}
	for _, c := range f.Contracts {
		if err := r.Register(c); err != nil {
			return fmt.Errorf("load contracts: %w", err)
		}
	}
	return nil
}

// LoadFile reads contracts from a YAML file.
func (r *ContractRegistry) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read contracts file: %w", err)
	}
	return r.Load(data)
}

var (
	builtinContracts   []Contract
	builtinContractsMu sync.Mutex
)

// RegisterBuiltin adds a contract to the default set. Intended for init
// functions; panics on a duplicate or invalid contract.
func RegisterBuiltin(c Contract) {
	if err := c.validate(); err != nil {
		panic(err)
	}

	builtinContractsMu.Lock()
	defer builtinContractsMu.Unlock()

	for _, existing := range builtinContracts {
		if existing.Key == c.Key {
			panic(fmt.Sprintf("contract already registered: %s", c.Key))
		}
	}
	builtinContracts = append(builtinContracts, c)
}

// DefaultContracts returns a new registry holding the builtin contracts.
func DefaultContracts() *ContractRegistry {
	r := NewContractRegistry()

	builtinContractsMu.Lock()
	defer builtinContractsMu.Unlock()

	for _, c := range builtinContracts {
		// validated in RegisterBuiltin
		_ = r.Register(c)
	}
	return r
}
