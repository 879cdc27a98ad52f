package attachment

import "time"

type FileResponse struct {
	ID           string    `json:"id"`
	LeaveID      *string   `json:"leave_id"`
	UploadedBy   string    `json:"uploaded_by"`
	OriginalName string    `json:"original_name"`
	MimeType     string    `json:"mime_type"`
	Size         int64     `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
}

func MapToResponse(f File) FileResponse {
	var leaveID *string
	if f.LeaveID != nil {
		v := f.LeaveID.String()
		leaveID = &v
	}
	return FileResponse{
		ID:           f.ID.String(),
		LeaveID:      leaveID,
		UploadedBy:   f.UploadedBy.String(),
		OriginalName: f.OriginalName,
		MimeType:     f.MimeType,
		Size:         f.Size,
		CreatedAt:    f.CreatedAt,
	}
}

func MapToListResponse(files []File) []FileResponse {
	out := make([]FileResponse, 0, len(files))
	for _, f := range files {
		out = append(out, MapToResponse(f))
	}
	return out
}
