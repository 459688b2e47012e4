package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/vidshare/backend/internal/errs"
)

// ErrorResponse sends a standardized error response
func ErrorResponse(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message})
}

// respondError maps err onto a status and the {"message", "error"} body.
// Server-side failures are logged here so handlers don't have to.
func respondError(c *gin.Context, err error) {
	status, message, detail := errs.Describe(err)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"error", err,
		)
	}

	body := gin.H{"message": message}
	if detail != "" {
		body["error"] = detail
	}
	c.JSON(status, body)
}

func paramID(c *gin.Context, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, errs.Validation("invalid " + name)
	}
	return id, nil
}

// formFile reads an optional multipart file. A missing part, or a request
// that is not multipart at all, yields nil.
func formFile(c *gin.Context, field string, maxBytes int64) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, errs.Validation("invalid multipart form")
	}
	if fh.Size > maxBytes {
		return nil, errs.Validation("File too large")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, errs.Internal("failed to read upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
	if err != nil {
		return nil, errs.Internal("failed to read upload", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, errs.Validation("File too large")
	}
	return data, nil
}
