// Package http adapts the application core to a JSON API. Handlers stay
// thin: resolve identity, call the core, translate errors to status codes.
package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/visaflow/visa-assistant/internal/docai"
	"github.com/visaflow/visa-assistant/internal/models"
)

// errorBody is the uniform error payload.
type errorBody struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// writeError maps core errors onto HTTP status codes. Unknown errors become
// opaque 500s; the cause stays in the server log only.
func writeError(c *gin.Context, err error) {
	var upstream *docai.UpstreamError

	switch {
	case errors.Is(err, models.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, errorBody{Error: "authentication required"})
	case errors.Is(err, models.ErrUnauthorized):
		c.JSON(http.StatusForbidden, errorBody{Error: "access denied"})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, errorBody{Error: "not found"})
	case errors.As(err, &upstream):
		c.JSON(http.StatusBadGateway, errorBody{
			Error:   "upstream service failure",
			Details: []string{upstream.Error()},
		})
	default:
		c.JSON(http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}

func writeValidationFailure(c *gin.Context, errs []string) {
	c.JSON(http.StatusUnprocessableEntity, errorBody{
		Error:   "validation failed",
		Details: errs,
	})
}
