package middleware

import (
	"bytes"
	"net/http"

	"openbook/internal/pkg/config"

	"github.com/gin-gonic/gin"
	gocache "github.com/patrickmn/go-cache"
)

// ResponseCache memoizes successful GET responses for a short TTL.
// Calendar and resource listings are read far more often than bookings
// change, and a stale-by-seconds answer is acceptable there.
type ResponseCache struct {
	store *gocache.Cache
}

type cachedResponse struct {
	status      int
	contentType string
	body        []byte
}

func NewResponseCache(cfg config.CacheConfig) *ResponseCache {
	return &ResponseCache{
		store: gocache.New(cfg.CalendarTTL, cfg.CleanupInterval),
	}
}

func (rc *ResponseCache) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.URL.RequestURI()
		if entry, found := rc.store.Get(key); found {
			cached := entry.(cachedResponse)
			c.Data(cached.status, cached.contentType, cached.body)
			c.Abort()
			return
		}

		writer := &captureWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = writer

		c.Next()

		if writer.Status() == http.StatusOK {
			rc.store.SetDefault(key, cachedResponse{
				status:      writer.Status(),
				contentType: writer.Header().Get("Content-Type"),
				body:        writer.body.Bytes(),
			})
		}
	}
}

type captureWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
