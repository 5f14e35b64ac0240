package logging

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const clientIDHeader = "x-ipc-client-id"

// GinRequestLogger logs every HTTP request a bridge host's gin.Engine
// serves (scheme-handler bridging, preload delivery, devrelay
// websocket upgrades) tagged with the requesting client's ID.
func GinRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		clientID := c.GetHeader(clientIDHeader)
		if clientID == "" {
			clientID = uuid.NewString()[:8]
		}

		c.Next()

		latency := time.Since(start).Truncate(time.Millisecond)
		statusCode := c.Writer.Status()
		method := c.Request.Method
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		line := fmt.Sprintf("%3d | %10v | %-7s \"%s\"", statusCode, latency, method, path)
		if errorMessage != "" {
			line = line + " | " + errorMessage
		}

		entry := WithClient(clientID)
		switch {
		case statusCode >= http.StatusInternalServerError:
			entry.Error(line)
		case statusCode >= http.StatusBadRequest:
			entry.Warn(line)
		default:
			entry.Info(line)
		}
	}
}

// GinRecovery recovers panics raised while handling scheme-handler or
// preload requests and logs the stack instead of crashing the host
// process.
func GinRecovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if err, ok := recovered.(error); ok && errors.Is(err, http.ErrAbortHandler) {
			panic(http.ErrAbortHandler)
		}

		log.WithFields(log.Fields{
			"panic": recovered,
			"stack": string(debug.Stack()),
			"path":  c.Request.URL.Path,
		}).Error("recovered from panic")

		c.AbortWithStatus(http.StatusInternalServerError)
	})
}
