package leave

import (
	"time"

	"github.com/jackson951/flexileave-app-sub001/internal/attachment"
)

type CreateLeaveRequest struct {
	LeaveType        string   `json:"leave_type" binding:"required,oneof=AnnualLeave SickLeave CasualLeave MaternityLeave PaternityLeave UnpaidLeave"`
	StartDate        string   `json:"start_date" binding:"required"`
	EndDate          string   `json:"end_date" binding:"required"`
	Reason           string   `json:"reason" binding:"required,max=2000"`
	EmergencyContact string   `json:"emergency_contact" binding:"max=120"`
	EmergencyPhone   string   `json:"emergency_phone" binding:"max=40"`
	FileIDs          []string `json:"file_ids" binding:"omitempty,dive,uuid"`
}

// UpdateLeaveRequest is a partial update; nil fields keep their stored value.
type UpdateLeaveRequest struct {
	LeaveType        *string  `json:"leave_type" binding:"omitempty,oneof=AnnualLeave SickLeave CasualLeave MaternityLeave PaternityLeave UnpaidLeave"`
	StartDate        *string  `json:"start_date"`
	EndDate          *string  `json:"end_date"`
	Reason           *string  `json:"reason" binding:"omitempty,min=1,max=2000"`
	EmergencyContact *string  `json:"emergency_contact" binding:"omitempty,max=120"`
	EmergencyPhone   *string  `json:"emergency_phone" binding:"omitempty,max=40"`
	FileIDs          []string `json:"file_ids" binding:"omitempty,dive,uuid"`
	RemoveFileIDs    []string `json:"remove_file_ids" binding:"omitempty,dive,uuid"`
}

type RejectLeaveRequest struct {
	Reason string `json:"rejection_reason" binding:"required,max=2000"`
}

type ListLeavesFilter struct {
	Status   string
	UserID   string
	Page     int
	PageSize int
}

type LeaveResponse struct {
	ID               string                    `json:"id"`
	UserID           string                    `json:"user_id"`
	LeaveType        string                    `json:"leave_type"`
	StartDate        string                    `json:"start_date"`
	EndDate          string                    `json:"end_date"`
	Days             int                       `json:"days"`
	Reason           string                    `json:"reason"`
	EmergencyContact string                    `json:"emergency_contact,omitempty"`
	EmergencyPhone   string                    `json:"emergency_phone,omitempty"`
	Status           string                    `json:"status"`
	RejectionReason  *string                   `json:"rejection_reason,omitempty"`
	ActionedBy       *string                   `json:"actioned_by,omitempty"`
	ActionedAt       *string                   `json:"actioned_at,omitempty"`
	SubmittedAt      string                    `json:"submitted_at"`
	Files            []attachment.FileResponse `json:"files"`
}

func mapToResponse(l Leave) LeaveResponse {
	resp := LeaveResponse{
		ID:               l.ID.String(),
		UserID:           l.UserID.String(),
		LeaveType:        l.LeaveType,
		StartDate:        l.StartDate.Format(DateLayout),
		EndDate:          l.EndDate.Format(DateLayout),
		Days:             l.Days,
		Reason:           l.Reason,
		EmergencyContact: l.EmergencyContact,
		EmergencyPhone:   l.EmergencyPhone,
		Status:           l.Status,
		RejectionReason:  l.RejectionReason,
		SubmittedAt:      l.SubmittedAt.Format(time.RFC3339),
		Files:            attachment.MapToListResponse(l.Files),
	}
	if l.ActionedBy != nil {
		v := l.ActionedBy.String()
		resp.ActionedBy = &v
	}
	if l.ActionedAt != nil {
		v := l.ActionedAt.Format(time.RFC3339)
		resp.ActionedAt = &v
	}
	return resp
}

func mapToListResponse(leaves []Leave) []LeaveResponse {
	resp := make([]LeaveResponse, len(leaves))
	for i, l := range leaves {
		resp[i] = mapToResponse(l)
	}
	return resp
}
