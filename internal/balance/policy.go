package balance

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy holds the balances granted to newly provisioned accounts.
type Policy struct {
	Defaults Balances
}

type policyFile struct {
	Defaults map[string]int `yaml:"defaults"`
}

func DefaultPolicy() Policy {
	return Policy{Defaults: Balances{
		AnnualLeave:    21,
		SickLeave:      10,
		CasualLeave:    5,
		MaternityLeave: 90,
		PaternityLeave: 10,
		UnpaidLeave:    0,
	}}
}

// LoadPolicy reads a YAML policy; leave types it omits keep the built-in default.
func LoadPolicy(path string) (Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read leave policy: %w", err)
	}
	return ParsePolicy(raw)
}

func ParsePolicy(raw []byte) (Policy, error) {
	var pf policyFile
	if err := yaml.Unmarshal(raw, &pf); err != nil {
		return Policy{}, fmt.Errorf("parse leave policy: %w", err)
	}

	overrides, err := FromMap(pf.Defaults)
	if err != nil {
		return Policy{}, fmt.Errorf("parse leave policy: %w", err)
	}

	p := DefaultPolicy()
	for lt, days := range overrides {
		p.Defaults[lt] = days
	}
	return p, nil
}

func (p Policy) InitialBalances() Balances {
	return p.Defaults.Clone().Normalize()
}
