package httpadapter

import (
	"net/http"

	"github.com/munidigital/tramites-assistant/internal/core/domain"
)

// Capability failures (embedding, search, generation, statistics) surface as
// 502: the request was valid but an upstream dependency failed. Overload and
// session-store outages are 503, worth retrying.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrEmbedding),
		domain.IsKind(err, domain.ErrSearch),
		domain.IsKind(err, domain.ErrGeneration),
		domain.IsKind(err, domain.ErrStatistics):
		return http.StatusBadGateway
	case domain.IsKind(err, domain.ErrTemporary),
		domain.IsKind(err, domain.ErrSessionStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
