package validator

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
	"github.com/gin-gonic/gin"
)

// RequestValidator checks incoming requests against an OpenAPI 3 schema.
// Requests for paths the schema does not describe pass through untouched,
// so the schema can lag behind the route surface without breaking anything.
type RequestValidator struct {
	schemaPath string

	mu     sync.RWMutex
	doc    *openapi3.T
	router routers.Router
}

// NewRequestValidator loads and validates the schema at schemaPath.
func NewRequestValidator(schemaPath string) (*RequestValidator, error) {
	v := &RequestValidator{schemaPath: schemaPath}
	if err := v.Reload(); err != nil {
		return nil, err
	}
	return v, nil
}

// Reload re-reads the schema from disk, swapping it in atomically.
func (v *RequestValidator) Reload() error {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromFile(v.schemaPath)
	if err != nil {
		return fmt.Errorf("load openapi schema %s: %w", v.schemaPath, err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return fmt.Errorf("openapi schema %s is invalid: %w", v.schemaPath, err)
	}
	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return fmt.Errorf("build openapi router: %w", err)
	}

	v.mu.Lock()
	v.doc = doc
	v.router = router
	v.mu.Unlock()
	return nil
}

// Middleware rejects requests whose shape violates the schema with a 400.
func (v *RequestValidator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		v.mu.RLock()
		router := v.router
		v.mu.RUnlock()

		route, pathParams, err := router.FindRoute(c.Request)
		if err != nil {
			// Path not in the schema; let the handler decide.
			c.Next()
			return
		}

		input := &openapi3filter.RequestValidationInput{
			Request:    c.Request,
			PathParams: pathParams,
			Route:      route,
			Options: &openapi3filter.Options{
				AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
			},
		}
		if err := openapi3filter.ValidateRequest(c.Request.Context(), input); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": fmt.Sprintf("request does not match API schema: %v", err),
				},
			})
			return
		}

		c.Next()
	}
}
