package ingestion

import (
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"github.com/trialforge/platform/pkg/common/logger"
	"github.com/trialforge/platform/pkg/common/models"
)

// Validator structurally checks raw records before reconciliation.
// Rejection is a normal control-flow outcome, not an error.
type Validator struct {
	requiredFields []string
}

func NewValidator() *Validator {
	return &Validator{requiredFields: []string{"NCTId"}}
}

// Validate returns the coerced record and true, or nil and false when a
// mandatory field is missing. Empty and all-whitespace strings normalize to
// nil; unparseable or negative numerics normalize to nil.
func (v *Validator) Validate(trial models.RawTrialRecord) (models.RawTrialRecord, bool) {
	for _, field := range v.requiredFields {
		if isBlank(trial[field]) {
			logger.Log.WithField("field", field).Warn("Missing required field")
			return nil, false
		}
	}

	validated := make(models.RawTrialRecord, len(trial))
	for key, value := range trial {
		if key == "EnrollmentCount" {
			validated[key] = coerceCount(value)
			continue
		}

		switch t := value.(type) {
		case nil:
			validated[key] = nil
		case string:
			trimmed := strings.TrimSpace(t)
			if trimmed == "" {
				validated[key] = nil
			} else {
				validated[key] = trimmed
			}
		case int, int8, int16, int32, int64, float32, float64:
			n := cast.ToFloat64(t)
			if n < 0 {
				validated[key] = nil
			} else {
				validated[key] = cast.ToInt(t)
			}
		default:
			validated[key] = value
		}
	}

	return validated, true
}

// coerceCount parses an enrollment count, stripping thousands separators,
// failing to nil rather than erroring. Negative counts are never valid.
func coerceCount(value interface{}) interface{} {
	switch t := value.(type) {
	case nil:
		return nil
	case string:
		cleaned := strings.TrimSpace(strings.ReplaceAll(t, ",", ""))
		if cleaned == "" {
			return nil
		}
		n, err := strconv.Atoi(cleaned)
		if err != nil || n < 0 {
			return nil
		}
		return n
	default:
		n, err := cast.ToIntE(t)
		if err != nil || n < 0 {
			return nil
		}
		return n
	}
}

func isBlank(value interface{}) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
