package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"google.golang.org/genai"

	"github.com/hyperjump/bidsift/internal/models"
)

// classificationSchemaJSON validates the model's reply before anything is
// unmarshalled into typed results. Confidence is deliberately unbounded
// here; out-of-range values are clamped rather than failing the batch.
const classificationSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "properties": {
      "filename": {"type": "string", "minLength": 1},
      "trade": {"type": "string"},
      "confidence": {"type": "number"},
      "rationale": {"type": "string"}
    },
    "required": ["filename", "trade", "confidence"]
  }
}`

// wireClassification is one element of the model's JSON reply.
type wireClassification struct {
	Filename   string  `json:"filename"`
	Trade      string  `json:"trade"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// compileClassificationSchema compiles the reply validator once per
// classifier.
func compileClassificationSchema() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("classification.json", strings.NewReader(classificationSchemaJSON)); err != nil {
		return nil, fmt.Errorf("add classification schema: %w", err)
	}
	schema, err := compiler.Compile("classification.json")
	if err != nil {
		return nil, fmt.Errorf("compile classification schema: %w", err)
	}
	return schema, nil
}

// parseClassifications validates raw model output against schema and maps
// it into results, clamping confidence into [0,1].
func parseClassifications(schema *jsonschema.Schema, raw string) ([]models.ClassificationResult, error) {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("model reply is not JSON: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return nil, fmt.Errorf("model reply does not match schema: %w", err)
	}
	var wire []wireClassification
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}
	results := make([]models.ClassificationResult, 0, len(wire))
	for _, w := range wire {
		results = append(results, models.ClassificationResult{
			Filename:       w.Filename,
			PredictedTrade: strings.ToLower(strings.TrimSpace(w.Trade)),
			Confidence:     clampConfidence(w.Confidence),
			Rationale:      w.Rationale,
		})
	}
	return results, nil
}

// geminiResponseSchema mirrors classificationSchemaJSON on the request
// side so the model is steered toward the expected shape.
func geminiResponseSchema() *genai.Schema {
	item := &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"filename":   {Type: genai.TypeString, Description: "The filename exactly as given in the prompt."},
			"trade":      {Type: genai.TypeString, Description: "Lowercase trade code this document most likely belongs to."},
			"confidence": {Type: genai.TypeNumber, Description: "How certain the prediction is, from 0 to 1."},
			"rationale":  {Type: genai.TypeString, Description: "One short sentence explaining the prediction."},
		},
		Required: []string{"filename", "trade", "confidence"},
	}
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: item,
	}
}
