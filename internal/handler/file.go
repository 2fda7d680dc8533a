// Package handler provides the HTTP handlers for the filedesk REST API.
package handler

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/CageChen/filedesk/internal/files"
	"github.com/CageChen/filedesk/internal/markdown"
	"github.com/gin-gonic/gin"
)

// FileService is the set of file operations the handlers call.
type FileService interface {
	Create(name, content string) files.Result
	Read(name string) files.ReadResult
	Delete(name string) files.Result
	List() files.ListResult
}

// FileHandler maps /files requests onto a FileService
type FileHandler struct {
	files      FileService
	renderer   *markdown.Renderer
	isMarkdown func(name string) bool
}

// NewFileHandler creates a new file handler. isMarkdown decides which files
// the preview endpoint will render.
func NewFileHandler(svc FileService, isMarkdown func(name string) bool) *FileHandler {
	return &FileHandler{
		files:      svc,
		renderer:   markdown.NewRenderer(),
		isMarkdown: isMarkdown,
	}
}

// filename extracts the {name} segment of a catch-all route.
func filename(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("name"), "/")
}

// respond writes an indented JSON object.
func respond(c *gin.Context, status int, body gin.H) {
	c.IndentedJSON(status, body)
}

func requireFilename(c *gin.Context) (string, bool) {
	name := filename(c)
	if name == "" {
		respond(c, http.StatusBadRequest, gin.H{"error": "Filename is required"})
		return "", false
	}
	return name, true
}

// List returns every entry of the base directory
func (h *FileHandler) List(c *gin.Context) {
	res := h.files.List()
	if !res.Success {
		respond(c, http.StatusInternalServerError, gin.H{"error": res.Message})
		return
	}
	respond(c, http.StatusOK, gin.H{"files": res.Files})
}

// Read returns the content of a single file
func (h *FileHandler) Read(c *gin.Context) {
	name, ok := requireFilename(c)
	if !ok {
		return
	}

	res := h.files.Read(name)
	if !res.Success {
		respond(c, http.StatusNotFound, gin.H{"error": res.Message})
		return
	}
	respond(c, http.StatusOK, gin.H{
		"filename": name,
		"content":  res.Content,
		"message":  res.Message,
	})
}

// Create stores the request body as a new file
func (h *FileHandler) Create(c *gin.Context) {
	name, ok := requireFilename(c)
	if !ok {
		return
	}

	body, err := c.GetRawData()
	if err != nil {
		respond(c, http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Error reading request body: %v", err)})
		return
	}

	res := h.files.Create(name, string(body))
	if !res.Success {
		respond(c, http.StatusBadRequest, gin.H{"error": res.Message})
		return
	}
	respond(c, http.StatusCreated, gin.H{
		"filename": name,
		"message":  res.Message,
	})
}

// Delete removes a single file
func (h *FileHandler) Delete(c *gin.Context) {
	name, ok := requireFilename(c)
	if !ok {
		return
	}

	res := h.files.Delete(name)
	if !res.Success {
		respond(c, http.StatusNotFound, gin.H{"error": res.Message})
		return
	}
	respond(c, http.StatusOK, gin.H{
		"filename": name,
		"message":  res.Message,
	})
}

// Preview renders a markdown file to HTML
func (h *FileHandler) Preview(c *gin.Context) {
	name, ok := requireFilename(c)
	if !ok {
		return
	}
	if h.isMarkdown == nil || !h.isMarkdown(name) {
		respond(c, http.StatusBadRequest, gin.H{"error": fmt.Sprintf("File '%s' is not a markdown file", name)})
		return
	}

	res := h.files.Read(name)
	if !res.Success {
		respond(c, http.StatusNotFound, gin.H{"error": res.Message})
		return
	}

	p, err := h.renderer.Render([]byte(res.Content))
	if err != nil {
		respond(c, http.StatusInternalServerError, gin.H{"error": "failed to render markdown: " + err.Error()})
		return
	}
	respond(c, http.StatusOK, gin.H{
		"filename": name,
		"title":    p.Title,
		"html":     p.HTML,
		"toc":      p.Outline,
	})
}
