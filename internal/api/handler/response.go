package handler

import (
	"github.com/gin-gonic/gin"
)

// envelope is the uniform response wrapper. Success responses carry the
// payload under "response"; error responses carry a message there instead.
type envelope struct {
	Status   string      `json:"status"`
	Response interface{} `json:"response"`
}

func respondSuccess(c *gin.Context, httpStatus int, payload interface{}) {
	c.JSON(httpStatus, envelope{Status: "success", Response: payload})
}

func respondError(c *gin.Context, httpStatus int, message string) {
	c.JSON(httpStatus, envelope{Status: "error", Response: message})
}
