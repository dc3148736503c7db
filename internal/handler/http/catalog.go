package http

import (
	"net/http"

	"github.com/aurahq/aura_service/internal/catalog"
	"github.com/aurahq/aura_service/pkg/response"
)

// CatalogHandler serves the built-in topic and book catalogs.
type CatalogHandler struct{}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler() *CatalogHandler {
	return &CatalogHandler{}
}

// Topics handles GET /api/v1/catalogs/topics
func (h *CatalogHandler) Topics(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"topics": catalog.Topics(),
	})
}

// Books handles GET /api/v1/catalogs/books
func (h *CatalogHandler) Books(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]interface{}{
		"books": catalog.Books(),
	})
}
