package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/hyperjump/bidsift/internal/models"
)

const geminiSystemInstruction = `You classify construction bid documents by filename.
Each filename comes from a bid package for a commercial construction project.
Given a list of filenames and a set of candidate trade codes, decide for every
filename which trade its document most likely belongs to, and how confident you
are on a 0 to 1 scale. Use filename conventions common in construction: spec
section numbers (e.g. "10 14 00" is signage, "08 80 00" is glazing), schedule
names, drawing prefixes, and trade vocabulary. A filename that clearly belongs
to none of the candidates still gets the closest candidate, with low confidence.
Reply with one entry per filename, echoing the filename exactly as given.`

// GeminiClassifier classifies filenames through the Gemini API with a
// JSON-constrained response. Replies are schema-validated before they are
// trusted; anything malformed fails the batch so the resilient decorator
// can retry it.
type GeminiClassifier struct {
	client     *genai.Client
	model      string
	candidates []string
	schema     *jsonschema.Schema
	logger     *zap.Logger
}

// GeminiOption configures a GeminiClassifier.
type GeminiOption func(*GeminiClassifier)

// WithGeminiLogger sets the logger.
func WithGeminiLogger(logger *zap.Logger) GeminiOption {
	return func(g *GeminiClassifier) {
		g.logger = logger
	}
}

// WithCandidateTrades supplies the trade codes the model may predict.
// Without it the model only sees the queried trade.
func WithCandidateTrades(trades []string) GeminiOption {
	return func(g *GeminiClassifier) {
		g.candidates = trades
	}
}

// NewGeminiClassifier builds a classifier for the configured model. The
// API key comes from config; an empty key is an immediate error rather
// than a failure on first use.
func NewGeminiClassifier(ctx context.Context, config *ClassifierConfig, opts ...GeminiOption) (*GeminiClassifier, error) {
	if config == nil {
		config = DefaultClassifierConfig()
	}
	config.ApplyDefaults()
	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini classifier requires an API key")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	schema, err := compileClassificationSchema()
	if err != nil {
		return nil, err
	}

	g := &GeminiClassifier{
		client: client,
		model:  config.Model,
		schema: schema,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Classify sends one batch of filenames to the model and returns results
// aligned to the input order. Filenames the model invented are dropped;
// filenames it skipped are simply absent from the result.
func (g *GeminiClassifier) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	if len(filenames) == 0 {
		return nil, nil
	}

	contents := []*genai.Content{
		{Role: "system", Parts: []*genai.Part{{Text: geminiSystemInstruction}}},
		{Role: "user", Parts: []*genai.Part{{Text: g.buildPrompt(trade, filenames)}}},
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiResponseSchema(),
	})
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}

	parsed, err := parseClassifications(g.schema, resp.Text())
	if err != nil {
		return nil, err
	}
	return alignToInput(parsed, filenames, g.logger), nil
}

// buildPrompt lists the candidate trades and the filenames to classify.
func (g *GeminiClassifier) buildPrompt(trade string, filenames []string) string {
	candidates := g.candidates
	if len(candidates) == 0 {
		candidates = []string{trade}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Candidate trade codes: %s\n", strings.Join(candidates, ", "))
	fmt.Fprintf(&b, "The caller is searching for documents of trade %q.\n\n", trade)
	b.WriteString("Classify each of the following filenames:\n")
	for _, name := range filenames {
		fmt.Fprintf(&b, "- %s\n", name)
	}
	return b.String()
}

// alignToInput reorders model results to input order, keyed by lowercase
// filename. Results for filenames never asked about are logged and
// discarded.
func alignToInput(parsed []models.ClassificationResult, filenames []string, logger *zap.Logger) []models.ClassificationResult {
	byName := make(map[string]models.ClassificationResult, len(parsed))
	asked := make(map[string]bool, len(filenames))
	for _, name := range filenames {
		asked[strings.ToLower(name)] = true
	}
	for _, res := range parsed {
		key := strings.ToLower(res.Filename)
		if !asked[key] {
			logger.Warn("model classified a filename it was not asked about",
				zap.String("filename", res.Filename))
			continue
		}
		byName[key] = res
	}
	results := make([]models.ClassificationResult, 0, len(filenames))
	for _, name := range filenames {
		if res, ok := byName[strings.ToLower(name)]; ok {
			res.Filename = name
			results = append(results, res)
		}
	}
	return results
}
