package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// readBody đọc raw body (cần nguyên byte để verify chữ ký webhook)
func readBody(c *gin.Context, limit int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
	return io.ReadAll(c.Request.Body)
}
