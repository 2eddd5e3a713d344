package bootstrap

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware("https://app.example"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/x", nil))
	assert.Equal(t, http.StatusNoContent, w.Code, "预检请求直接返回")
	assert.Equal(t, "https://app.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "PATCH")
}

func TestLoggerMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	r := gin.New()
	r.Use(LoggerMiddleware(log))
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/missing?q=1", nil))

	assert.Contains(t, buf.String(), `"level":"warning"`)
	assert.Contains(t, buf.String(), `"path":"/missing?q=1"`)
	assert.Contains(t, buf.String(), `"status_code":404`)
}

func TestNewLogger(t *testing.T) {
	log := NewLogger(&Config{AppEnv: "production", LogLevel: "warn"})
	_, isJSON := log.Formatter.(*logrus.JSONFormatter)
	assert.True(t, isJSON, "生产环境使用 JSON 格式")
	assert.Equal(t, logrus.WarnLevel, log.GetLevel())

	log = NewLogger(&Config{AppEnv: "development", LogLevel: "debug"})
	_, isText := log.Formatter.(*logrus.TextFormatter)
	assert.True(t, isText)
	assert.Equal(t, logrus.DebugLevel, log.GetLevel())
}
