package docs

import (
	_ "embed"
	"net/http"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

const docPath = "/docs/swagger.yaml"

//go:embed swagger.yaml
var openAPIDoc []byte

// RegisterRoutes mounts Swagger UI under /docs, backed by the embedded
// OpenAPI document.
func RegisterRoutes(r chi.Router) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/docs/index.html", http.StatusFound)
	})
	r.Get(docPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(openAPIDoc)
	})
	r.Get("/docs/*", httpSwagger.Handler(
		httpSwagger.URL(docPath),
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("list"),
	))
}
