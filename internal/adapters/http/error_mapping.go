package httpadapter

import (
	"net/http"

	"github.com/kirillkom/pdf-rag-engine/internal/core/domain"
)

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrTimeout):
		return http.StatusGatewayTimeout
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrRetrieval),
		domain.IsKind(err, domain.ErrGeneration),
		domain.IsKind(err, domain.ErrEncoding),
		domain.IsKind(err, domain.ErrIndexing):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
