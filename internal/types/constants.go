package types

import (
	"os"
	"strings"
)

const ContextUserKey = "user"

// Profile roles.
const (
	RoleAdmin  = "admin"
	RoleEditor = "editor"
	RoleViewer = "viewer"
)

// Notification lifecycle statuses, ordered. Transitions only move forward.
const (
	StatusNew      = "new"
	StatusRead     = "read"
	StatusResolved = "resolved"
)

// Notification priorities.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Sentiment thresholds accepted in alert rule triggers.
const (
	SentimentAny      = "any"
	SentimentNegative = "negative"
	SentimentPositive = "positive"
)

// NotificationChannels are the delivery media an alert rule can select.
var NotificationChannels = []string{"app", "email", "slack"}

// SourcePlatforms are the data-source kinds a SourceConfiguration can monitor.
var SourcePlatforms = []string{"twitter", "facebook", "instagram", "blogs", "forums", "news"}

func ValidStatus(s string) bool {
	return s == StatusNew || s == StatusRead || s == StatusResolved
}

func ValidPriority(p string) bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

func ValidSentiment(s string) bool {
	return s == SentimentAny || s == SentimentNegative || s == SentimentPositive
}

func ValidChannel(c string) bool {
	return contains(NotificationChannels, c)
}

func ValidSourcePlatform(p string) bool {
	return contains(SourcePlatforms, p)
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	AllowedOrigins = initAllowedOrigins()
)

func initAllowedOrigins() []string {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		origins = append(origins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		envOrigins := strings.Split(allowedOrigins, ",")
		for _, origin := range envOrigins {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
	}

	return origins
}
