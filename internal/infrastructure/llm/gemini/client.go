package gemini

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/munidigital/tramites-assistant/internal/infrastructure/resilience"
)

// Client talks to the Generative Language REST API. One client is shared by
// the embedder and the generator.
type Client struct {
	baseURL    string
	apiKey     string
	genModel   string
	embedModel string
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(baseURL, apiKey, genModel, embedModel string, exec *resilience.Executor) *Client {
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultPolicy())
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		genModel:   genModel,
		embedModel: embedModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		exec:       exec,
	}
}

type Embedder struct {
	client *Client
}

func NewEmbedder(client *Client) *Embedder {
	return &Embedder{client: client}
}

func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	request := map[string]any{
		"content": map[string]any{
			"parts": []map[string]string{{"text": text}},
		},
	}

	var response struct {
		Embedding struct {
			Values []float32 `json:"values"`
		} `json:"embedding"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:embedContent", e.client.embedModel)
	err := e.client.exec.Run(ctx, "embed", func(ctx context.Context) error {
		return e.client.postJSON(ctx, path, request, &response, "embed")
	}, classifyGeminiError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed query", err)
	}
	if len(response.Embedding.Values) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	return response.Embedding.Values, nil
}

func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	requests := make([]map[string]any, 0, len(texts))
	for _, text := range texts {
		requests = append(requests, map[string]any{
			"model": "models/" + e.client.embedModel,
			"content": map[string]any{
				"parts": []map[string]string{{"text": text}},
			},
		})
	}
	request := map[string]any{"requests": requests}

	var response struct {
		Embeddings []struct {
			Values []float32 `json:"values"`
		} `json:"embeddings"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:batchEmbedContents", e.client.embedModel)
	err := e.client.exec.Run(ctx, "embed_batch", func(ctx context.Context) error {
		return e.client.postJSON(ctx, path, request, &response, "embed batch")
	}, classifyGeminiError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("embed documents", err)
	}
	if len(response.Embeddings) != len(texts) {
		return nil, fmt.Errorf("got %d embeddings for %d texts", len(response.Embeddings), len(texts))
	}

	out := make([][]float32, len(response.Embeddings))
	for i, emb := range response.Embeddings {
		out[i] = emb.Values
	}
	return out, nil
}

type Generator struct {
	client *Client
}

func NewGenerator(client *Client) *Generator {
	return &Generator{client: client}
}

func (g *Generator) GenerateAnswer(ctx context.Context, query, contextBlock, history string) (string, error) {
	request := map[string]any{
		"systemInstruction": map[string]any{
			"parts": []map[string]string{{"text": systemPrompt}},
		},
		"contents": []map[string]any{
			{
				"role":  "user",
				"parts": []map[string]string{{"text": buildAnswerPrompt(query, contextBlock, history)}},
			},
		},
		"generationConfig": map[string]any{
			"temperature":     0.2,
			"maxOutputTokens": 2048,
		},
	}

	var response struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", g.client.genModel)
	err := g.client.exec.Run(ctx, "generate", func(ctx context.Context) error {
		return g.client.postJSON(ctx, path, request, &response, "generate")
	}, classifyGeminiError)
	if err != nil {
		return "", wrapTemporaryIfNeeded("generate answer", err)
	}
	if len(response.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in generation response")
	}

	var b strings.Builder
	for _, part := range response.Candidates[0].Content.Parts {
		b.WriteString(part.Text)
	}
	answer := strings.TrimSpace(b.String())
	if answer == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return answer, nil
}
