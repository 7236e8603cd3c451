package api

import (
	_ "embed"
	"net/http"
	"net/url"

	"alcyxob/liftlog/internal/service"

	"github.com/gin-gonic/gin"
)

const loginPath = "/login"

//go:embed web/index.html
var indexHTML []byte

// PagePaths are the client-side routes served with the app shell.
var PagePaths = []string{
	"/",
	"/plan",
	"/templates",
	"/templates/:id/edit",
	"/runner",
	"/runner/:id",
	"/recap",
	"/past",
	"/past/:id",
	"/analytics",
	"/workout/:id",
	loginPath,
}

// PageGate redirects visitors without a valid session to the login page,
// remembering where they were going.
func PageGate(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == loginPath {
			c.Next()
			return
		}
		token, err := bearerToken(c)
		if err == nil {
			_, err = authService.Authenticate(c.Request.Context(), token)
		}
		if err != nil {
			c.Redirect(http.StatusFound, loginPath+"?next="+url.QueryEscape(c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func serveIndex(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
}
