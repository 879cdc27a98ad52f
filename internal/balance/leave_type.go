package balance

import (
	balanceerrors "github.com/jackson951/flexileave-app-sub001/internal/balance/errors"
)

type LeaveType string

const (
	AnnualLeave    LeaveType = "AnnualLeave"
	SickLeave      LeaveType = "SickLeave"
	CasualLeave    LeaveType = "CasualLeave"
	MaternityLeave LeaveType = "MaternityLeave"
	PaternityLeave LeaveType = "PaternityLeave"
	UnpaidLeave    LeaveType = "UnpaidLeave"
)

var AllLeaveTypes = []LeaveType{
	AnnualLeave,
	SickLeave,
	CasualLeave,
	MaternityLeave,
	PaternityLeave,
	UnpaidLeave,
}

func ParseLeaveType(v string) (LeaveType, error) {
	lt := LeaveType(v)
	if !lt.Valid() {
		return "", balanceerrors.ErrUnknownLeaveType
	}
	return lt, nil
}

func (t LeaveType) Valid() bool {
	for _, known := range AllLeaveTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Capped reports whether requests of this type are limited by the stored balance.
func (t LeaveType) Capped() bool {
	return t != UnpaidLeave
}

func (t LeaveType) String() string {
	return string(t)
}
