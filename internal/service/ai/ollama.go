package ai

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"
)

// ollamaBackend adapts the official Ollama client to the Backend surface.
type ollamaBackend struct {
	client *api.Client
}

func newOllamaBackend(host string) (*ollamaBackend, error) {
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("invalid backend host %q: %w", host, err)
	}
	return &ollamaBackend{
		client: api.NewClient(base, &http.Client{Timeout: 30 * time.Second}),
	}, nil
}

func (b *ollamaBackend) ListModels(ctx context.Context) ([]string, error) {
	resp, err := b.client.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel reports whether the model is registered with the backend. Any
// lookup failure counts as not registered, so startup falls through to
// CreateModel.
func (b *ollamaBackend) HasModel(ctx context.Context, name string) bool {
	_, err := b.client.Show(ctx, &api.ShowRequest{Model: name})
	return err == nil
}

func (b *ollamaBackend) CreateModel(ctx context.Context, name, path string) error {
	req := &api.CreateRequest{Model: name, Path: path}
	return b.client.Create(ctx, req, func(resp api.ProgressResponse) error {
		if resp.Status != "" {
			log.Printf("[ai] create %s: %s", name, resp.Status)
		}
		return nil
	})
}
