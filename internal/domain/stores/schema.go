package stores

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// documentSchema constrains the persisted network configuration. Stores are
// keyed by arbitrary ids; each must carry the fields Add also requires.
const documentSchema = `{
  "type": "object",
  "required": ["stores", "global_settings"],
  "properties": {
    "stores": {
      "type": "object",
      "minProperties": 1,
      "additionalProperties": {
        "type": "object",
        "required": ["name", "address", "type", "size_category", "target_audience", "avg_daily_visitors"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "address": {"type": "string", "minLength": 1},
          "type": {"type": "string", "enum": ["premium", "mass_market", "business"]},
          "size_category": {"type": "string", "enum": ["small", "medium", "large"]},
          "target_audience": {"type": "string", "minLength": 1},
          "avg_daily_visitors": {"type": "integer", "minimum": 1},
          "weather_sensitivity": {"type": "number", "minimum": 0, "maximum": 1},
          "forecast_horizon_days": {"type": "integer", "minimum": 1},
          "safety_stock_ratio": {"type": "number", "minimum": 0},
          "active": {"type": "boolean"}
        }
      }
    },
    "global_settings": {
      "type": "object",
      "properties": {
        "max_forecast_horizon_days": {"type": "integer", "minimum": 1},
        "currency": {"type": "string"},
        "timezone": {"type": "string"}
      }
    }
  }
}`

// validateDocument checks raw JSON against the document schema.
func validateDocument(raw []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(documentSchema),
		gojsonschema.NewBytesLoader(raw),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStores, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		msgs = append(msgs, e.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidStores, strings.Join(msgs, "; "))
}
