package llmbridge

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/pricing.yaml
var pricingYAML []byte

// Pricing Philosophy:
//
// The embedded table provides PRICE METADATA for cost estimates and UX.
// Prices drift as providers publish new rates, so library users can override
// the embedded table with LoadFromFile or SetModelPrice. Billing remains the
// provider's job; this is for previews and dashboards.

// ModelPrice is the published per-million-token rate for one model.
type ModelPrice struct {
	InputPer1M  float64 `yaml:"input_per_1m"`
	OutputPer1M float64 `yaml:"output_per_1m"`
}

// priceConfig is the YAML document shape.
type priceConfig struct {
	Version     string                `yaml:"version"`
	LastUpdated string                `yaml:"last_updated"`
	Models      map[string]ModelPrice `yaml:"models"`
}

// PriceTable maps model names to published rates. Construct one with
// NewPriceTable; instances are explicitly owned by the caller and safe for
// concurrent use.
type PriceTable struct {
	mu     sync.RWMutex
	models map[string]ModelPrice
}

// NewPriceTable returns a table seeded from the embedded pricing config.
func NewPriceTable() (*PriceTable, error) {
	var cfg priceConfig
	if err := yaml.Unmarshal(pricingYAML, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal embedded pricing config: %w", err)
	}
	return &PriceTable{models: cfg.Models}, nil
}

// LoadFromFile merges rates from a YAML file over the current table. The file
// format matches the embedded config; models it names are replaced, others
// are kept.
func (t *PriceTable) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read pricing file: %w", err)
	}
	var cfg priceConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal pricing file: %w", err)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	for model, price := range cfg.Models {
		t.models[model] = price
	}
	return nil
}

// SetModelPrice registers or replaces the rate for one model.
func (t *PriceTable) SetModelPrice(model string, price ModelPrice) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.models[model] = price
}

// ModelPrice returns the rate for a model and whether it is known.
func (t *PriceTable) ModelPrice(model string) (ModelPrice, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	p, ok := t.models[model]
	return p, ok
}

// Cost returns the dollar cost of an exchange at the model's published rate.
// Unknown models cost zero.
func (t *PriceTable) Cost(model string, usage Usage) float64 {
	p, ok := t.ModelPrice(model)
	if !ok {
		return 0
	}
	return (float64(usage.PromptTokens)*p.InputPer1M + float64(usage.CompletionTokens)*p.OutputPer1M) / 1e6
}
