package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/filekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

const internalErrorMessage = "Internal server error"

// statusFor maps an error kind to an HTTP status. notFound is the status to
// use for not_found, which differs on the login route.
func statusFor(kind common.Kind, notFound int) int {
	switch kind {
	case common.KindValidation, common.KindConflict, common.KindAuthentication:
		return http.StatusBadRequest
	case common.KindNotFound:
		return notFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"message": ...}. Causes are logged, never sent.
func (s *Server) writeError(c *gin.Context, err error, notFound int) {
	ctx := c.Request.Context()

	var e *common.Error
	if !errors.As(err, &e) {
		s.logger.Error(ctx, "unhandled error", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": internalErrorMessage})
		return
	}

	status := statusFor(e.Kind, notFound)
	if status >= http.StatusInternalServerError {
		s.logger.Error(ctx, "request failed", "path", c.Request.URL.Path, "kind", string(e.Kind), "error", err)
	}

	if e.Kind == common.KindPartialDelete {
		c.JSON(status, gin.H{
			"message":    e.Message,
			"reconcile":  e.Reconcile,
			"id":         e.RecordID,
			"storageKey": e.StorageKey,
		})
		return
	}

	msg := e.Message
	if msg == "" {
		msg = internalErrorMessage
	}
	c.JSON(status, gin.H{"message": msg})
}
