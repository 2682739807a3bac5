package router

import (
	"os"
	"path/filepath"

	"sellerlift/backend/pkg/validator"
)

// AddOpenAPIValidation enables schema validation for incoming requests and
// serves the schema file itself under /api/docs. A missing schema file only
// logs a warning so local development works without one.
func (r *Router) AddOpenAPIValidation(schemaPath string) {
	if _, err := os.Stat(schemaPath); os.IsNotExist(err) {
		r.Logger.Warn("OpenAPI schema not found, request validation disabled", "path", schemaPath)
		return
	}

	v, err := validator.NewRequestValidator(schemaPath)
	if err != nil {
		r.Logger.Error("Failed to load OpenAPI schema", "error", err)
		return
	}

	r.Engine.Use(v.Middleware())
	r.Engine.Static("/api/docs", filepath.Dir(schemaPath))
	r.Logger.Info("OpenAPI request validation enabled", "schema", schemaPath)
}
