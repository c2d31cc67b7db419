package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/m-mizutani/gt"
)

func settingsRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/api/settings/ai", GetAISettings)
	r.PUT("/api/settings/ai", UpdateAISettings)
	r.POST("/api/settings/ai/test", TestOllamaConnection)
	return r
}

func send(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUpdateAISettings(t *testing.T) {
	InitRuntimeConfig("http://localhost:11434", "llama3")
	r := settingsRouter()

	t.Run("requires base url", func(t *testing.T) {
		w := send(r, http.MethodPut, "/api/settings/ai", `{}`)
		gt.Equal(t, w.Code, http.StatusBadRequest)
	})

	t.Run("rejects non-http url", func(t *testing.T) {
		w := send(r, http.MethodPut, "/api/settings/ai", `{"ollama_base_url":"ftp://host"}`)
		gt.Equal(t, w.Code, http.StatusBadRequest)
		gt.Equal(t, GetRuntimeOllamaBaseURL(), "http://localhost:11434")
	})

	t.Run("updates url and keeps model", func(t *testing.T) {
		w := send(r, http.MethodPut, "/api/settings/ai", `{"ollama_base_url":"http://gpu-box:11434/"}`)
		gt.Equal(t, w.Code, http.StatusOK)
		gt.Equal(t, GetRuntimeOllamaBaseURL(), "http://gpu-box:11434")
		gt.Equal(t, GetRuntimeOllamaModel(), "llama3")

		w = send(r, http.MethodGet, "/api/settings/ai", "")
		var resp map[string]interface{}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.Equal(t, resp["ollama_base_url"], "http://gpu-box:11434")
	})
}

func TestOllamaConnectionCheck(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3:latest"},{"name":"mistral"}]}`))
	}))
	defer ollama.Close()

	InitRuntimeConfig(ollama.URL, "llama3")
	r := settingsRouter()

	t.Run("uses current setting without body", func(t *testing.T) {
		w := send(r, http.MethodPost, "/api/settings/ai/test", "")
		gt.Equal(t, w.Code, http.StatusOK)

		var resp struct {
			Connected bool     `json:"connected"`
			Models    []string `json:"models"`
		}
		gt.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		gt.True(t, resp.Connected)
		gt.A(t, resp.Models).Length(2)
	})

	t.Run("unreachable server", func(t *testing.T) {
		down := httptest.NewServer(http.NotFoundHandler())
		url := down.URL
		down.Close()

		w := send(r, http.MethodPost, "/api/settings/ai/test", `{"ollama_base_url":"`+url+`"}`)
		gt.Equal(t, w.Code, http.StatusServiceUnavailable)
	})
}
