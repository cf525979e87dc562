package response

import "github.com/gin-gonic/gin"

const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeValidation         = 40001
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeNotFound           = 40400
	CodeTooFrequent        = 42900
	CodeInternalServer     = 50000
)

type APIResponse struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
	Data    interface{}       `json:"data,omitempty"`
}

func OK(c *gin.Context, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: "ok",
		Data:    data,
	})
}

// Message is OK with a banner text instead of "ok".
func Message(c *gin.Context, message string, data interface{}) {
	c.JSON(200, APIResponse{
		Code:    CodeOK,
		Message: message,
		Data:    data,
	})
}

func Error(c *gin.Context, httpStatus, code int, message string) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData keeps a payload next to the error, e.g. the submitted form.
func ErrorWithData(c *gin.Context, httpStatus, code int, message string, data interface{}) {
	c.JSON(httpStatus, APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// Invalid reports field errors alongside the echoed input.
func Invalid(c *gin.Context, errs map[string]string, data interface{}) {
	c.JSON(400, APIResponse{
		Code:    CodeValidation,
		Message: "please correct the errors below",
		Errors:  errs,
		Data:    data,
	})
}
