package api

import (
	"time"

	"github.com/garunski/extension-conductor/pkg/framework/extensions"
)

type HealthStatus struct {
	Status     string                     `json:"status"`
	Version    string                     `json:"version,omitempty"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components,omitempty"`
}

type ComponentStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ExtensionListResponse struct {
	Extensions extensions.State `json:"extensions"`
	Count      int              `json:"count"`
}

type DeleteRequest struct {
	IDs []string `json:"ids"`
}

type ValidateRequest struct {
	StoreURL string `json:"storeUrl"`
}

type CleanupResponse struct {
	Deleted int       `json:"deleted"`
	Before  time.Time `json:"before"`
}
