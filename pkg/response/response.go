package response

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Pagination carries the paging metadata of a list response.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// PaginatedResponse is a success response with paging metadata.
type PaginatedResponse struct {
	Response
	Pagination Pagination `json:"pagination"`
}

// SuccessWithPagination wraps a list payload together with paging metadata
func SuccessWithPagination(statusCode int, data interface{}, page, limit int, total int64) PaginatedResponse {
	return PaginatedResponse{
		Response:   Success(statusCode, data),
		Pagination: Pagination{Page: page, Limit: limit, Total: total},
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}
