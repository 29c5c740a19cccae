package schedule

import "github.com/gin-gonic/gin"

// Response is the envelope of every JSON reply.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// Success sends a successful response with the given status code.
func Success(c *gin.Context, code int, message string, data any) {
	c.JSON(code, Response{Status: "success", Message: message, Data: data})
}

// Error sends an error response and aborts the chain.
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, Response{Status: "error", Message: message})
}
