package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mybus-app/service-transit/internal/domain"
)

// ErrorBody is the error half of the response envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Envelope is the JSON shape of every API response.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// Success writes a 200 response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Success: true, Data: data})
}

// Created writes a 201 response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Envelope{Success: true, Data: data})
}

// BadRequest writes a 400 response.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Envelope{
		Error: &ErrorBody{Code: domain.ErrCodeValidation, Message: message},
	})
}

// Error maps err to a status code via its DomainError code.
func Error(c *gin.Context, err error) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		c.JSON(http.StatusInternalServerError, Envelope{
			Error: &ErrorBody{Code: domain.ErrCodeInternal, Message: "internal server error"},
		})
		return
	}
	c.JSON(statusFor(de.Code), Envelope{
		Error: &ErrorBody{Code: de.Code, Message: de.Error()},
	})
}

func statusFor(code string) int {
	switch code {
	case domain.ErrCodeNotFound:
		return http.StatusNotFound
	case domain.ErrCodeValidation:
		return http.StatusBadRequest
	case domain.ErrCodeConflict:
		return http.StatusConflict
	case domain.ErrCodeUpstream:
		return http.StatusBadGateway
	case domain.ErrCodeLocation:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
