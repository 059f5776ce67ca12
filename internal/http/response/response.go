// Package response holds the JSON envelopes every handler writes.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the wire form of a handler failure. Code is a stable
// machine-readable tag; Message is for humans.
type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondError writes the error envelope with the given status. A nil err
// still yields a well-formed body.
func RespondError(c *gin.Context, status int, code string, err error) {
	env := ErrorEnvelope{Error: APIError{Message: "unknown error", Code: code}}
	if err != nil {
		env.Error.Message = err.Error()
	}
	c.JSON(status, env)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
