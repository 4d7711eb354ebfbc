package httpapi

import (
	"github.com/go-chi/chi/v5"
)

// MountSwagger is a mount point for generated API docs; a no-op until a
// docs package is generated for this service.
func MountSwagger(r chi.Router) {}
