package dto

type TrackEventRequest struct {
	EventType   string                 `json:"eventType"`
	UserID      string                 `json:"userId,omitempty"`
	UserEmail   string                 `json:"userEmail,omitempty"`
	ExtensionID string                 `json:"extensionId,omitempty"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type TrackEventResponse struct {
	Success bool   `json:"success"`
	EventID string `json:"eventId"`
}

type SummaryResponse struct {
	Success bool             `json:"success"`
	Since   string           `json:"since"`
	Counts  map[string]int64 `json:"counts"`
}
