package observability

import (
	"context"
	"log"
	"os"
	"time"

	langfuse "github.com/henomis/langfuse-go"
	"github.com/henomis/langfuse-go/model"

	"github.com/Conceptual-Machines/prdgen-api/internal/config"
	"github.com/Conceptual-Machines/prdgen-api/internal/llm"
)

// LangfuseClient traces LLM generations through the henomis SDK. A client
// without an underlying SDK handle is inert: every method on it, and on the
// traces and generations it hands out, is a no-op. Callers never branch on
// whether tracing is configured.
type LangfuseClient struct {
	client *langfuse.Langfuse
	ctx    context.Context
}

var globalClient *LangfuseClient

// InitializeLangfuse wires up the process-wide Langfuse client. The henomis
// SDK reads LANGFUSE_PUBLIC_KEY and LANGFUSE_SECRET_KEY from the environment.
func InitializeLangfuse(ctx context.Context, cfg *config.Config) *LangfuseClient {
	globalClient = &LangfuseClient{ctx: ctx}

	if !cfg.LangfuseEnabled || cfg.LangfuseSecretKey == "" {
		log.Println("⚠️  Langfuse not configured (LANGFUSE_ENABLED=false or LANGFUSE_SECRET_KEY not set)")
		return globalClient
	}

	globalClient.client = langfuse.New(ctx)
	log.Printf("✅ Langfuse initialized (host: %s)", cfg.LangfuseHost)
	log.Printf("🔍 Langfuse: Public key set: %v, Secret key set: %v",
		os.Getenv("LANGFUSE_PUBLIC_KEY") != "",
		os.Getenv("LANGFUSE_SECRET_KEY") != "")
	return globalClient
}

// GetClient returns the process-wide client, or an inert one before
// InitializeLangfuse has run.
func GetClient() *LangfuseClient {
	if globalClient == nil {
		return &LangfuseClient{ctx: context.Background()}
	}
	return globalClient
}

// StartTrace opens a named trace. The returned trace is inert when Langfuse
// is unavailable or the SDK rejects the create.
func (c *LangfuseClient) StartTrace(ctx context.Context, name string, metadata map[string]interface{}) *Trace {
	if c.client == nil {
		return &Trace{ctx: ctx}
	}

	trace, err := c.client.Trace(&model.Trace{Name: name, Metadata: metadata})
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse trace: %v", err)
		return &Trace{ctx: ctx}
	}

	log.Printf("🔍 Langfuse: trace %s started (name: %s)", trace.ID, name)
	return &Trace{client: c.client, trace: trace, ctx: ctx}
}

// Trace groups the observations of one request.
type Trace struct {
	client *langfuse.Langfuse
	trace  *model.Trace
	ctx    context.Context
}

func (t *Trace) live() bool {
	return t.client != nil && t.trace != nil
}

// Generation opens a generation observation under this trace.
func (t *Trace) Generation(name string, metadata map[string]interface{}) *Generation {
	if !t.live() {
		return &Generation{ctx: t.ctx}
	}

	start := time.Now()
	gen, err := t.client.Generation(&model.Generation{
		TraceID:   t.trace.ID,
		Name:      name,
		StartTime: &start,
		Metadata:  metadata,
	}, nil)
	if err != nil {
		log.Printf("⚠️  Failed to create Langfuse generation: %v", err)
		return &Generation{ctx: t.ctx}
	}

	return &Generation{client: t.client, generation: gen, ctx: t.ctx}
}

// Finish flushes every queued observation of this trace to Langfuse. The SDK
// batches events, so nothing is guaranteed to have left the process before
// this call.
func (t *Trace) Finish() {
	if !t.live() {
		return
	}
	log.Printf("🔍 Langfuse: flushing trace %s", t.trace.ID)
	t.client.Flush(t.ctx)
}

// Generation is one model call recorded under a trace.
type Generation struct {
	client     *langfuse.Langfuse
	generation *model.Generation
	ctx        context.Context
}

func (g *Generation) live() bool {
	return g.client != nil && g.generation != nil
}

// Input records what was sent to the model.
func (g *Generation) Input(input interface{}) {
	if g.live() {
		g.generation.Input = input
	}
}

// SetLevel marks the observation level, e.g. "ERROR" for failed calls.
func (g *Generation) SetLevel(level string) {
	if g.live() {
		g.generation.Level = model.ObservationLevel(level)
	}
}

// Metadata merges the given keys into the generation's metadata. Later calls
// win on key collisions.
func (g *Generation) Metadata(metadata map[string]interface{}) {
	if g.live() {
		g.generation.Metadata = mergeMetadata(g.generation.Metadata, metadata)
	}
}

// LogStreamResult records a finished streaming generation. The document text
// is never retained, so only token counts, fragment counts, and cost go out.
func (g *Generation) LogStreamResult(modelName string, result *llm.StreamResult, metadata map[string]interface{}) {
	if !g.live() {
		return
	}

	cost := CalculateCost(modelName, result.Usage)
	g.generation.Model = modelName
	g.generation.Usage = model.Usage{
		Input:     int(result.Usage.InputTokens),
		Output:    int(result.Usage.OutputTokens),
		Total:     int(result.Usage.TotalTokens),
		Unit:      model.ModelUsageUnitTokens,
		TotalCost: cost,
	}

	g.Metadata(map[string]interface{}{
		"model":     modelName,
		"cost_usd":  cost,
		"fragments": result.Fragments,
	})
	g.Metadata(metadata)
}

// Finish stamps the end time and queues the generation for sending.
func (g *Generation) Finish() {
	if !g.live() {
		return
	}

	end := time.Now()
	g.generation.EndTime = &end
	if _, err := g.client.GenerationEnd(g.generation); err != nil {
		log.Printf("⚠️  Failed to end Langfuse generation: %v", err)
	}
}

// mergeMetadata folds add into existing, which the SDK types as a bare
// interface{}. Anything that is not a string map gets replaced outright.
func mergeMetadata(existing interface{}, add map[string]interface{}) interface{} {
	current, ok := existing.(map[string]interface{})
	if !ok || current == nil {
		current = make(map[string]interface{}, len(add))
	}
	for k, v := range add {
		current[k] = v
	}
	return current
}
