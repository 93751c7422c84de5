package response

import "github.com/gin-gonic/gin"

// RespondJSON writes an Envelope with the given HTTP code. Every handler in
// the API goes through here so error and success bodies stay shaped alike.
func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, Envelope{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}
