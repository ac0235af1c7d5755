// Package apierror defines the problem-details bodies returned by the
// gateway's HTTP surface. Every error response is a flat JSON object with a
// stable "type" discriminator and a human-readable "title".
package apierror

import (
	"encoding/json"
	"net/http"
)

type InvalidParam struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type Body struct {
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Detail        string         `json:"detail,omitempty"`
	InvalidParams []InvalidParam `json:"invalidParams,omitempty"`
}

func Unexpected() Body {
	return Body{
		Type:  "INTERNAL_SERVER_ERROR",
		Title: "an unexpected error has occurred.",
	}
}

func Unauthorized() Body {
	return Body{
		Type:  "UNAUTHORIZED",
		Title: "invalid Authorization Header.",
	}
}

func NotFound(detail string) Body {
	return Body{
		Type:   "NOT_FOUND",
		Title:  "Resource not found.",
		Detail: detail,
	}
}

func RateLimited() Body {
	return Body{
		Type:  "TOO_MANY_REQUESTS",
		Title: "Usage limit has been exceeded.",
	}
}

func ValidationFailed(params []InvalidParam) Body {
	return Body{
		Type:          "UNPROCESSABLE_ENTITY",
		Title:         "validation Error.",
		InvalidParams: params,
	}
}

// Write serializes a problem body with the given status code.
func Write(w http.ResponseWriter, status int, body Body) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
