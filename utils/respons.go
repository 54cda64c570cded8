package utils

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

type JSONResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func RespondJSON(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, JSONResponse{
		Status:  code >= 200 && code < 300,
		Message: message,
		Data:    data,
	})
}

func RespondError(c *gin.Context, code int, err error) {
	c.JSON(code, JSONResponse{
		Status:  false,
		Message: err.Error(),
		Data:    nil,
	})
}

// RespondAppError memilih status HTTP dari taksonomi error, lalu log jika 5xx.
// Pesan internal tidak dibocorkan ke client untuk error repository.
func RespondAppError(c *gin.Context, err error) {
	code := StatusFor(err)
	if code >= http.StatusInternalServerError {
		ErrorLogger.WithFields(map[string]interface{}{
			"method": c.Request.Method,
			"path":   c.FullPath(),
			"status": code,
		}).Error(err)
	}

	if code == http.StatusInternalServerError {
		RespondError(c, code, errInternal)
		return
	}
	RespondError(c, code, err)
}

var errInternal = errors.New("something went wrong, please try again")
