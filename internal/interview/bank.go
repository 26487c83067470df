package interview

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultBankYAML []byte

// Bank maps a topic to its candidate questions. The General entry serves
// resume-based sessions and topics without their own entry.
type Bank map[string][]string

// DefaultBank returns the bundled question bank.
func DefaultBank() (Bank, error) {
	return ParseBank(defaultBankYAML)
}

// ParseBank decodes a YAML document of topic -> questions.
func ParseBank(data []byte) (Bank, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse question bank: %w", err)
	}
	return BankFromMap(raw)
}

// LoadBankFile reads a YAML question bank from path.
func LoadBankFile(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question bank %q: %w", path, err)
	}
	return ParseBank(data)
}

// BankFromMap decodes an untyped map, such as a config section, into a Bank.
// Topic keys are matched to the fixed topic names ignoring case.
func BankFromMap(raw map[string]any) (Bank, error) {
	var decoded map[string][]string
	if err := mapstructure.Decode(raw, &decoded); err != nil {
		return nil, fmt.Errorf("decode question bank: %w", err)
	}

	bank := make(Bank, len(decoded))
	for key, questions := range decoded {
		name := strings.TrimSpace(key)
		if canonical, ok := CanonicalTopic(name); ok {
			name = canonical
		} else if strings.EqualFold(name, generalBankID) {
			name = generalBankID
		}

		for _, q := range questions {
			if q = strings.TrimSpace(q); q != "" {
				bank[name] = append(bank[name], q)
			}
		}
	}

	if len(bank) == 0 {
		return nil, fmt.Errorf("question bank is empty")
	}

	return bank, nil
}

// Merge returns a copy of b with the entries of override replacing its own.
func (b Bank) Merge(override Bank) Bank {
	merged := make(Bank, len(b)+len(override))
	for k, v := range b {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// Questions returns the candidates for topic, falling back to General.
func (b Bank) Questions(topic string) []string {
	if qs := b[topic]; len(qs) > 0 {
		return qs
	}
	return b[generalBankID]
}
