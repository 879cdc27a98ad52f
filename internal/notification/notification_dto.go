package notification

import (
	"encoding/json"
	"time"
)

type ListFilter struct {
	UnreadOnly bool
	Type       string
	Page       int
	PageSize   int
}

type SendSystemRequest struct {
	RecipientIDs []string `json:"recipient_ids" binding:"omitempty,dive,uuid"`
	Title        string   `json:"title" binding:"required,max=255"`
	Message      string   `json:"message" binding:"required"`
}

type SendSystemResponse struct {
	Sent int `json:"sent"`
}

type UnreadCountResponse struct {
	Count int64 `json:"count"`
}

type NotificationResponse struct {
	ID          string          `json:"id"`
	RecipientID string          `json:"recipient_id"`
	TriggeredBy *string         `json:"triggered_by"`
	LeaveID     *string         `json:"leave_id"`
	Type        string          `json:"type"`
	Title       string          `json:"title"`
	Message     string          `json:"message"`
	IsRead      bool            `json:"is_read"`
	Metadata    json.RawMessage `json:"metadata,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

func mapToResponse(n Notification) NotificationResponse {
	resp := NotificationResponse{
		ID:          n.ID.String(),
		RecipientID: n.RecipientID.String(),
		Type:        n.Type,
		Title:       n.Title,
		Message:     n.Message,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
	if n.TriggeredByID != nil {
		v := n.TriggeredByID.String()
		resp.TriggeredBy = &v
	}
	if n.LeaveID != nil {
		v := n.LeaveID.String()
		resp.LeaveID = &v
	}
	if len(n.Metadata) > 0 {
		resp.Metadata = json.RawMessage(n.Metadata)
	}
	return resp
}

func mapToListResponse(items []Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, mapToResponse(n))
	}
	return out
}
