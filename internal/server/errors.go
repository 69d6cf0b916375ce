package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/joseph-ayodele/quote-compare/internal/common"
)

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// httpStatus maps an error chain onto a status code and public error code.
func httpStatus(err error) (int, string) {
	code := common.CodeOf(err)
	switch {
	case errors.Is(err, common.ErrUploadRejected):
		if code == common.CodeFileTooLarge {
			return http.StatusRequestEntityTooLarge, code
		}
		return http.StatusBadRequest, common.CodeUploadRejected
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound, common.CodeNotFound
	case errors.Is(err, common.ErrUnauthorized):
		return http.StatusUnauthorized, common.CodeUnauthorized
	case errors.Is(err, common.ErrConflict):
		if code == "" {
			code = "CONFLICT"
		}
		return http.StatusConflict, code
	case errors.Is(err, common.ErrInvalidInput), errors.Is(err, common.ErrValidation):
		return http.StatusBadRequest, common.CodeInvalidInput
	}
	return http.StatusInternalServerError, common.CodeInternal
}

func (s *Server) writeError(c *gin.Context, err error) {
	status, code := httpStatus(err)
	msg := "internal error"
	if status < 500 {
		var ae *common.AppError
		if errors.As(err, &ae) {
			msg = ae.Message
		} else {
			msg = err.Error()
		}
	} else {
		s.logger.Error("http.error", "req_id", c.GetString(ctxRequestID), "path", c.FullPath(), "error", err)
	}
	c.JSON(status, errorResponse{Error: errorBody{Code: code, Message: msg}})
}
