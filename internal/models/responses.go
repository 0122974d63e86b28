package models

type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type UploadResponse struct {
	ID           string `json:"id,omitempty"`
	Filename     string `json:"filename,omitempty"`
	OriginalName string `json:"original_name"`
	SizeBytes    int64  `json:"size_bytes"`
	PageCount    int    `json:"page_count"`
}

type ParseUploadResponse struct {
	Document UploadResponse `json:"document"`
	Resume   ParsedResume   `json:"resume"`
}
