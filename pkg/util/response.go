package util

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type SuccessResponse struct {
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
	Message string      `json:"message"`
	Status  int         `json:"status"`
}

func HandleSuccess(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
	})
}

func HandleSuccessMeta(c *gin.Context, statusCode int, message string, data, meta interface{}) {
	c.JSON(statusCode, SuccessResponse{
		Status:  statusCode,
		Message: message,
		Data:    data,
		Meta:    meta,
	})
}

type ErrorResponse struct {
	Error  string `json:"error,omitempty"`
	Status int    `json:"status"`
}

func HandleError(c *gin.Context, statusCode int, err error) {
	entry := Log.WithFields(logrus.Fields{
		"status": statusCode,
		"path":   c.FullPath(),
	})
	if id, ok := c.Get(RequestIDKey); ok {
		entry = entry.WithField("request_id", id)
	}
	if statusCode >= 500 {
		entry.WithError(err).Error("request failed")
	} else {
		entry.WithError(err).Warn("request rejected")
	}

	c.AbortWithStatusJSON(statusCode, ErrorResponse{
		Error:  err.Error(),
		Status: statusCode,
	})
}

// RequestIDKey is the gin context key holding the per-request id.
const RequestIDKey = "request_id"

type PaginationArgs struct {
	Sort  string
	Limit int
	Skip  int
}

type Pagination struct {
	Limit int   `json:"limit"`
	Skip  int   `json:"skip"`
	Count int64 `json:"count"`
}
