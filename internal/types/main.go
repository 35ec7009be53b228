// Package apiResponses describes the response envelope for the OpenAPI docs.
package apiResponses

type BaseBase struct {
	Status    int    `example:"200"`
	Success   bool   `example:"true"`
	Message   string `example:"Ok"`
	Timestamp string `example:"2026-05-04T12:30:00.253429709Z" format:"date-time"`
}

type BaseResponse struct {
	BaseBase
	Data any
}

type BaseError struct {
	BaseBase
}

type BadRequestError struct {
	BaseBase
	Status  int    `default:"400"`
	Success bool   `default:"false"`
	Message string `example:"rating: must be at most 5"`
}

type NotFoundError struct {
	BaseBase
	Status  int    `default:"404"`
	Success bool   `default:"false"`
	Message string `example:"survey session 12: not found"`
}

type ConflictError struct {
	BaseBase
	Status  int    `default:"409"`
	Success bool   `default:"false"`
	Message string `example:"session 12 already completed with score 4.25: conflict"`
}

// TooManyRequestsError is sent with a Retry-After header in seconds
type TooManyRequestsError struct {
	BaseBase
	Status  int    `default:"429"`
	Success bool   `default:"false"`
	Message string `example:"Too many requests, please try again in 60 seconds"`
}

type InternalServerError struct {
	BaseBase
	Status  int    `default:"500"`
	Success bool   `default:"false"`
	Message string `default:"Internal Server Error"`
}
