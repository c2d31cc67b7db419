package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

const (
	DefaultOllamaBaseURL = "http://localhost:11434"
	DefaultOllamaModel   = "llama3"
)

// OllamaService implements Provider using an Ollama server
type OllamaService struct {
	getBaseURL func() string // Dynamic getter for BaseURL
	getModel   func() string // Dynamic getter for Model
	httpClient *http.Client
}

// NewOllamaService creates a new Ollama service
func NewOllamaService(baseURL, model string) *OllamaService {
	if baseURL == "" {
		baseURL = DefaultOllamaBaseURL
	}
	if model == "" {
		model = DefaultOllamaModel
	}
	return NewOllamaServiceWithGetters(
		func() string { return baseURL },
		func() string { return model },
	)
}

// NewOllamaServiceWithGetters creates a new Ollama service whose endpoint and model can change at runtime
func NewOllamaServiceWithGetters(getBaseURL, getModel func() string) *OllamaService {
	return &OllamaService{
		getBaseURL: getBaseURL,
		getModel:   getModel,
		httpClient: &http.Client{},
	}
}

func (o *OllamaService) baseURL() string {
	return strings.TrimRight(o.getBaseURL(), "/")
}

// Model returns the currently configured model
func (o *OllamaService) Model() string {
	return o.getModel()
}

// Generate implements Provider
func (o *OllamaService) Generate(ctx context.Context, prompt string) (*Completion, error) {
	model := o.getModel()
	payload := map[string]interface{}{
		"model":  model,
		"prompt": prompt,
		"stream": false,
		"options": map[string]interface{}{
			"temperature": 0.4,
			"num_predict": 1200,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal ollama request")
	}

	var result struct {
		Response string `json:"response"`
		Done     bool   `json:"done"`
	}
	if err := o.call(ctx, http.MethodPost, "/api/generate", body, &result); err != nil {
		return nil, goerr.Wrap(err, "ollama generate failed", goerr.V("model", model))
	}

	return &Completion{Text: strings.TrimSpace(result.Response), Model: model}, nil
}

// Ping lists the models installed on the server, which also proves it is reachable
func (o *OllamaService) Ping(ctx context.Context) ([]string, error) {
	var result struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := o.call(ctx, http.MethodGet, "/api/tags", nil, &result); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

func (o *OllamaService) call(ctx context.Context, method, path string, body []byte, out interface{}) error {
	url := o.baseURL() + path

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return goerr.Wrap(err, "failed to create ollama request", goerr.V("url", url))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "ollama request failed", goerr.V("url", url))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return goerr.Wrap(err, "failed to read ollama response")
	}

	if resp.StatusCode != http.StatusOK {
		return goerr.New("ollama API error",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return goerr.Wrap(err, "failed to parse ollama response")
	}
	return nil
}
