package handler

import (
	"net/http"

	"github.com/CageChen/filedesk/internal/util"
	"github.com/gin-gonic/gin"
)

// RouterOptions wires the router's collaborators.
type RouterOptions struct {
	Files FileService

	// IsMarkdown selects files the preview endpoint renders; nil disables it.
	IsMarkdown func(name string) bool

	// Changes serves /ws when non-nil.
	Changes *WSHandler
}

// NewRouter builds the gin engine for the filedesk API.
func NewRouter(opts RouterOptions) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.RedirectTrailingSlash = false
	r.HandleMethodNotAllowed = true

	r.Use(gin.Recovery())
	r.Use(requestIDMiddleware())
	r.Use(accessLogMiddleware(util.GetLogger("http")))
	r.Use(corsMiddleware())

	fileHandler := NewFileHandler(opts.Files, opts.IsMarkdown)

	files := r.Group("/files")
	{
		files.GET("", fileHandler.List)
		files.GET("/*name", fileHandler.Read)
		files.POST("/*name", fileHandler.Create)
		files.DELETE("/*name", fileHandler.Delete)
	}
	r.GET("/preview/*name", fileHandler.Preview)

	if opts.Changes != nil {
		r.GET("/ws", opts.Changes.HandleWS)
	}

	r.NoRoute(endpointNotFound)
	r.NoMethod(func(c *gin.Context) {
		// Only named file routes answer 405; the bare collection is GET only.
		if c.Request.URL.Path == "/files" {
			endpointNotFound(c)
			return
		}
		respond(c, http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	return r
}

func endpointNotFound(c *gin.Context) {
	respond(c, http.StatusNotFound, gin.H{"error": "Endpoint not found"})
}
