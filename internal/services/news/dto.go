package news

import "time"

// DigestRequest asks the service to digest raw source text into articles.
type DigestRequest struct {
	SourceName string `json:"source_name"`
	Text       string `json:"text"`
}

// ArticleDTO represents the article data returned to clients
type ArticleDTO struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     *string   `json:"description"`
	URL             string    `json:"url"`
	PublicationDate time.Time `json:"publication_date"`
	SourceName      string    `json:"source_name"`
	Category        []string  `json:"category"`
	RelevanceScore  float64   `json:"relevance_score"`
	LLMSummary      *string   `json:"llm_summary,omitempty"`
	SearchScore     *float64  `json:"search_score,omitempty"`
}

// DigestResponse is the result of one digest run.
type DigestResponse struct {
	Articles []ArticleDTO `json:"articles"`
	Meta     MetaInfo     `json:"meta"`
}

// MetaInfo represents metadata about a response
type MetaInfo struct {
	Total      int    `json:"total"`
	SourceName string `json:"source_name,omitempty"`
	Strategy   string `json:"strategy,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}
