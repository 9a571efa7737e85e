// internal/api/static.go
package api

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	apperrors "healing-guide/internal/common/errors"

	"github.com/gin-gonic/gin"
)

// spaHandler serves the built frontend. Unknown /api paths get a JSON
// 404, every other path falls back to index.html.
func spaHandler(staticDir string) gin.HandlerFunc {
	return func(c *gin.Context) {
		urlPath := c.Request.URL.Path
		if urlPath == "/api" || strings.HasPrefix(urlPath, "/api/") {
			_ = c.Error(apperrors.NewNotFoundError("Endpoint not found"))
			return
		}
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			_ = c.Error(apperrors.NewNotFoundError("Endpoint not found"))
			return
		}

		clean := path.Clean("/" + urlPath)
		if clean != "/" {
			file := filepath.Join(staticDir, filepath.FromSlash(clean))
			if info, err := os.Stat(file); err == nil && !info.IsDir() {
				c.File(file)
				return
			}
		}

		index := filepath.Join(staticDir, "index.html")
		if _, err := os.Stat(index); err != nil {
			_ = c.Error(apperrors.NewNotFoundError("index.html not found"))
			return
		}
		c.File(index)
	}
}
