package dashboard

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	HelloTitle   = "🏠 My First Dashboard!"
	HelloMessage = "If you can see this, you're already a dashboard developer!"
)

var helloTemplate = template.Must(template.New("hello.html").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>{{ .title }}</title></head>
<body>
<h1>{{ .title }}</h1>
<p>{{ .message }}</p>
{{ if .restaurant }}<p>Serving the menu of <strong>{{ .restaurant }}</strong>.</p>{{ end }}
</body>
</html>
`))

func (s *Server) handleHello(c *gin.Context) {
	c.HTML(http.StatusOK, "hello.html", gin.H{
		"title":      HelloTitle,
		"message":    HelloMessage,
		"restaurant": s.cfg.RestaurantName,
	})
}
