package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/agilecoach-backend/internal/domain/aggregates"
	"github.com/yungbote/agilecoach-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondErr picks the status and code from err. Internal failures never
// leak their message.
func RespondErr(c *gin.Context, err error) {
	status, code := Classify(err)
	if err != nil {
		_ = c.Error(err)
	}
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) {
		if v := apiErr.RetryAfterSeconds(); v != "" {
			c.Header("Retry-After", v)
		}
	}
	if status >= http.StatusInternalServerError && status != http.StatusBadGateway {
		RespondError(c, status, code, errors.New("internal error"))
		return
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		RespondError(c, status, code, errors.New(aggErr.Public()))
		return
	}
	RespondError(c, status, code, err)
}

// Classify maps an error onto an HTTP status and error code.
func Classify(err error) (int, string) {
	var apiErr *apierr.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 {
		code := apiErr.Code
		if code == "" {
			code = http.StatusText(apiErr.Status)
		}
		return apiErr.Status, code
	}
	code := domainagg.CodeOf(err)
	switch code {
	case domainagg.CodeValidation:
		return http.StatusBadRequest, string(code)
	case domainagg.CodeNotFound:
		return http.StatusNotFound, string(code)
	case domainagg.CodeInvalidState, domainagg.CodeConflict:
		return http.StatusConflict, string(code)
	case domainagg.CodeUpstreamGeneration:
		return http.StatusBadGateway, string(code)
	}
	return http.StatusInternalServerError, string(domainagg.CodeInternal)
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
