package balance

import (
	"encoding/json"
	"fmt"

	balanceerrors "github.com/jackson951/flexileave-app-sub001/internal/balance/errors"

	"gorm.io/datatypes"
)

// Balances maps every recognized leave type to its remaining day count.
type Balances map[LeaveType]int

// Normalize fills missing leave types with zero.
func (b Balances) Normalize() Balances {
	out := make(Balances, len(AllLeaveTypes))
	for _, lt := range AllLeaveTypes {
		out[lt] = b[lt]
	}
	return out
}

func (b Balances) Validate() error {
	for lt, days := range b {
		if !lt.Valid() {
			return fmt.Errorf("%w: %s", balanceerrors.ErrUnknownLeaveType, lt)
		}
		if days < 0 {
			return fmt.Errorf("%w: %s", balanceerrors.ErrNegativeBalance, lt)
		}
	}
	return nil
}

func (b Balances) Clone() Balances {
	out := make(Balances, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}

// Decode reads the users.leave_balances column. Unknown keys are rejected.
func Decode(raw datatypes.JSON) (Balances, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return Balances{}.Normalize(), nil
	}

	var m map[string]int
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("decode leave balances: %w", err)
	}

	out := make(Balances, len(m))
	for k, v := range m {
		out[LeaveType(k)] = v
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out.Normalize(), nil
}

func Encode(b Balances) (datatypes.JSON, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	m := make(map[string]int, len(AllLeaveTypes))
	for lt, v := range b.Normalize() {
		m[string(lt)] = v
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// FromMap converts request payloads keyed by leave-type name.
func FromMap(m map[string]int) (Balances, error) {
	out := make(Balances, len(m))
	for k, v := range m {
		lt, err := ParseLeaveType(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %s", err, k)
		}
		out[lt] = v
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}

func (b Balances) ToMap() map[string]int {
	m := make(map[string]int, len(b))
	for lt, v := range b {
		m[string(lt)] = v
	}
	return m
}
