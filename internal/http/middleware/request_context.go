package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/clinicscribe-backend/internal/platform/ctxutil"
)

const (
	headerSessionID = "X-Session-Id"
	// ContextSessionID is the gin key handlers set once the session is known.
	ContextSessionID = "session_id"
)

// AttachSessionContext copies a client supplied session id onto the request
// context. Handlers that learn the session from the body call SetSession.
func AttachSessionContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := strings.TrimSpace(c.GetHeader(headerSessionID))
		if sid == "" {
			sid = strings.TrimSpace(c.Query("session_id"))
		}
		if sid != "" {
			SetSession(c, sid)
		}
		c.Next()
	}
}

func SetSession(c *gin.Context, sessionID string) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return
	}
	c.Request = c.Request.WithContext(ctxutil.WithSessionID(c.Request.Context(), sessionID))
	c.Set(ContextSessionID, sessionID)
	c.Writer.Header().Set(headerSessionID, sessionID)
}
