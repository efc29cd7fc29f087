package api

type HTTPError struct {
	StatusCode int
	Code       string
	Message    string
	ErrorLog   error
}

func (e *HTTPError) Error() string {
	return e.Message
}

type ApiError struct {
	Error string `json:"message"`
	Code  string `json:"code,omitempty"`
}
