package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/bassista/mkdoc/internal/logger"
	"github.com/bassista/mkdoc/internal/report"
)

// ErrorReporting forwards panics and 5xx responses to rep.
// On panic, it reports and re-panics to allow gin.Recovery to handle the response.
func ErrorReporting(rep report.Reporter) gin.HandlerFunc {
	if rep == nil || !rep.Enabled() {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				rep.Report(fmt.Errorf("panic: %s %s: %v\n%s", c.Request.Method, c.Request.URL.Path, rec, debug.Stack()), "panic", "http")
				logger.WithComponent("http").Error("recovered from panic, reported: ", rec)
				panic(rec)
			}
		}()

		c.Next()

		if status := c.Writer.Status(); status >= 500 {
			rep.Report(fmt.Errorf("HTTP %d: %s %s", status, c.Request.Method, c.Request.URL.Path), "5XX", "http")
			logger.WithComponent("http").Warnf("reported HTTP %d for %s %s", status, c.Request.Method, c.Request.URL.Path)
		}
	}
}
