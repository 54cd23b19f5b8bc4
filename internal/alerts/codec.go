// Package alerts defines the typed document schemas embedded in alert
// rule and source configuration JSON columns, and the lenient decoding
// rules for shapes written by older clients.
package alerts

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mirador-dev/mirador/internal/types"
	"gorm.io/datatypes"
)

// TriggerConfig is the shape stored in alert_rules.triggers.
type TriggerConfig struct {
	Keywords           []string `json:"keywords"`
	SentimentThreshold string   `json:"sentimentThreshold"`
}

// ChannelConfig is the shape stored in alert_rules.channels.
type ChannelConfig struct {
	NotificationChannels []string `json:"notificationChannels"`
}

// MonitoringConfig is the shape stored in source_configurations.monitoring_config.
type MonitoringConfig struct {
	Keywords  []string `json:"keywords"`
	Languages []string `json:"languages"`
}

func EncodeTriggers(t TriggerConfig) (datatypes.JSON, error) {
	raw, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("encode triggers: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func EncodeChannels(c ChannelConfig) (datatypes.JSON, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("encode channels: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func EncodeMonitoring(m MonitoringConfig) (datatypes.JSON, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode monitoring config: %w", err)
	}
	return datatypes.JSON(raw), nil
}

// DecodeTriggers never fails: malformed stored shapes degrade instead
// of erroring. A keywords value that is not a string array comes back
// as a one-element slice holding its JSON representation, and an
// unrecognized sentiment threshold falls back to "any".
func DecodeTriggers(raw datatypes.JSON) TriggerConfig {
	var doc struct {
		Keywords           json.RawMessage `json:"keywords"`
		SentimentThreshold json.RawMessage `json:"sentimentThreshold"`
	}

	cfg := TriggerConfig{Keywords: []string{}, SentimentThreshold: types.SentimentAny}

	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return cfg
	}

	cfg.Keywords = coerceStringSlice(doc.Keywords)

	var threshold string
	if json.Unmarshal(doc.SentimentThreshold, &threshold) == nil && types.ValidSentiment(threshold) {
		cfg.SentimentThreshold = threshold
	}

	return cfg
}

// DecodeChannels applies the same leniency as DecodeTriggers.
func DecodeChannels(raw datatypes.JSON) ChannelConfig {
	var doc struct {
		NotificationChannels json.RawMessage `json:"notificationChannels"`
	}

	cfg := ChannelConfig{NotificationChannels: []string{}}

	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return cfg
	}

	cfg.NotificationChannels = coerceStringSlice(doc.NotificationChannels)
	return cfg
}

// DecodeMonitoring tolerates missing or malformed monitoring documents.
func DecodeMonitoring(raw datatypes.JSON) MonitoringConfig {
	cfg := MonitoringConfig{Keywords: []string{}, Languages: []string{}}

	var doc struct {
		Keywords  json.RawMessage `json:"keywords"`
		Languages json.RawMessage `json:"languages"`
	}

	if len(raw) == 0 || json.Unmarshal(raw, &doc) != nil {
		return cfg
	}

	cfg.Keywords = coerceStringSlice(doc.Keywords)
	cfg.Languages = coerceStringSlice(doc.Languages)
	return cfg
}

// coerceStringSlice returns the decoded string array, or wraps any
// other non-null value as a single element so reads never fail on a
// malformed document.
func coerceStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return []string{}
	}

	var values []string
	if err := json.Unmarshal(raw, &values); err == nil {
		return values
	}

	return []string{string(raw)}
}

// SplitKeywords tokenizes the free-text keyword input: split on commas,
// trim whitespace, drop empties. Quoted phrases are kept as-is.
func SplitKeywords(input string) []string {
	var keywords []string

	for _, token := range strings.Split(input, ",") {
		trimmed := strings.TrimSpace(token)
		if trimmed != "" {
			keywords = append(keywords, trimmed)
		}
	}

	return keywords
}

// JoinKeywords reverses SplitKeywords for form prefill.
func JoinKeywords(keywords []string) string {
	return strings.Join(keywords, ", ")
}

// ValidateTriggers checks the shape written on rule create/update.
func ValidateTriggers(t TriggerConfig) error {
	if len(t.Keywords) == 0 {
		return fmt.Errorf("at least one keyword is required")
	}

	if !types.ValidSentiment(t.SentimentThreshold) {
		return fmt.Errorf("invalid sentiment threshold: %s", t.SentimentThreshold)
	}

	return nil
}

// ValidateChannels checks the shape written on rule create/update.
func ValidateChannels(c ChannelConfig) error {
	if len(c.NotificationChannels) == 0 {
		return fmt.Errorf("at least one notification channel is required")
	}

	for _, channel := range c.NotificationChannels {
		if !types.ValidChannel(channel) {
			return fmt.Errorf("unknown notification channel: %s", channel)
		}
	}

	return nil
}
