package controller

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/bassista/mkdoc/internal/status"
)

// PreviewController serves the rendered page and the build status.
type PreviewController struct {
	status     status.Reader
	outputPath string
}

// NewPreviewController creates a new PreviewController.
func NewPreviewController(st status.Reader, outputPath string) *PreviewController {
	return &PreviewController{
		status:     st,
		outputPath: outputPath,
	}
}

// Page streams the output file as written by the last successful render.
func (pc *PreviewController) Page(c *gin.Context) {
	info, err := os.Stat(pc.outputPath)
	if err != nil {
		if os.IsNotExist(err) {
			c.JSON(http.StatusNotFound, gin.H{"error": "output not rendered yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if info.IsDir() {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "output path is a directory"})
		return
	}

	c.Header("Cache-Control", "no-store")
	c.File(pc.outputPath)
}

// Status returns the current build status as JSON.
func (pc *PreviewController) Status(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, pc.status.Snapshot())
}
