package ai

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino-ext/components/model/ollama"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/abhishekr/deepchat/internal/config"
)

var (
	// ErrBackendUnavailable signals the model server could not be reached.
	ErrBackendUnavailable = errors.New("model backend unavailable")
	// ErrModelLoadFailed signals the target model is not registered and
	// could not be registered from the configured path.
	ErrModelLoadFailed = errors.New("model load failed")
	// ErrGenerationFailed signals a failed or malformed completion.
	ErrGenerationFailed = errors.New("generation failed")
)

// State tracks gateway initialization progress.
type State int

const (
	StateUninitialized State = iota
	StateCheckingService
	StateCheckingModel
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateCheckingService:
		return "checking-service"
	case StateCheckingModel:
		return "checking-model"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Backend is the narrow lifecycle surface of the model server. Tests
// substitute a double for the real Ollama client.
type Backend interface {
	ListModels(ctx context.Context) ([]string, error)
	HasModel(ctx context.Context, name string) bool
	CreateModel(ctx context.Context, name, path string) error
}

// Gateway mediates all model access: lifecycle checks at construction
// and single-turn generation afterwards. A gateway that fails its checks
// is unusable; the owning process must not start serving.
type Gateway struct {
	backend   Backend
	chatModel model.BaseChatModel
	cfg       config.AIConfig
	state     State
}

// New builds a gateway against a real Ollama server and runs the
// readiness checks. Failure here is fatal for the caller.
func New(ctx context.Context, cfg config.AIConfig) (*Gateway, error) {
	backend, err := newOllamaBackend(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}

	chatModel, err := ollama.NewChatModel(ctx, &ollama.ChatModelConfig{
		BaseURL: cfg.Host,
		Model:   cfg.Model,
		Timeout: cfg.GenerateTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create chat model: %v", ErrBackendUnavailable, err)
	}

	return NewWithBackend(ctx, backend, chatModel, cfg)
}

// NewWithBackend wires explicit collaborators. Tests use it with doubles.
func NewWithBackend(ctx context.Context, backend Backend, chatModel model.BaseChatModel, cfg config.AIConfig) (*Gateway, error) {
	g := &Gateway{
		backend:   backend,
		chatModel: chatModel,
		cfg:       cfg,
		state:     StateUninitialized,
	}

	if err := g.ensureReady(ctx); err != nil {
		g.state = StateFailed
		return nil, err
	}

	g.state = StateReady
	log.Printf("[ai] gateway ready, model=%s", cfg.Model)
	return g, nil
}

// ensureReady verifies the backend is reachable and the target model is
// registered, registering it from the configured path when absent.
func (g *Gateway) ensureReady(ctx context.Context) error {
	g.state = StateCheckingService
	models, err := g.backend.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	log.Printf("[ai] backend reachable, available models: %s", strings.Join(models, ", "))

	g.state = StateCheckingModel
	if g.backend.HasModel(ctx, g.cfg.Model) {
		log.Printf("[ai] model %s found", g.cfg.Model)
		return nil
	}

	if g.cfg.ModelPath == "" {
		return fmt.Errorf("%w: model %q is not registered and MODEL_PATH is not set", ErrModelLoadFailed, g.cfg.Model)
	}

	log.Printf("[ai] model %s not registered, loading from %s", g.cfg.Model, g.cfg.ModelPath)
	if err := g.backend.CreateModel(ctx, g.cfg.Model, g.cfg.ModelPath); err != nil {
		return fmt.Errorf("%w: %v", ErrModelLoadFailed, err)
	}
	log.Printf("[ai] model %s loaded", g.cfg.Model)
	return nil
}

// State reports the current lifecycle state.
func (g *Gateway) State() State {
	return g.state
}

// GenerateReply runs a single-turn completion for the prompt. Stored
// history is deliberately not sent to the backend; each call stands
// alone.
func (g *Gateway) GenerateReply(ctx context.Context, prompt string) (string, error) {
	if g.state != StateReady {
		return "", fmt.Errorf("%w: gateway is %s", ErrGenerationFailed, g.state)
	}

	ctx, cancel := context.WithTimeout(ctx, g.cfg.GenerateTimeout)
	defer cancel()

	resp, err := g.chatModel.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: backend returned an empty completion", ErrGenerationFailed)
	}

	return resp.Content, nil
}
