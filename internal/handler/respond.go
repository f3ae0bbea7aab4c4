package handler

import (
	"linklet/internal/transport/httpdto"
	linklet_errors "linklet/pkg/errors"

	"github.com/gin-gonic/gin"
)

// respondError translates a service error into the envelope and status the
// sentinel it wraps maps to.
func respondError(c *gin.Context, err error) {
	c.JSON(linklet_errors.HTTPStatus(err), httpdto.NewErrorResponse(err.Error(), linklet_errors.Code(err)))
}
