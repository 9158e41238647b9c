package core

// ModelDescriptor is one entry of the external model catalog. Name is the identity.
type ModelDescriptor struct {
	Name           string   `json:"name"`
	DisplayName    string   `json:"displayName"`
	Publisher      string   `json:"publisher"`
	Registry       string   `json:"registryName"`
	Version        string   `json:"version"`
	License        string   `json:"license"`
	InferenceTasks []string `json:"inferenceTasks"`
	Summary        string   `json:"summary"`
	Description    string   `json:"description,omitempty"`
}

// FriendlyName returns the display name, falling back to the model name.
func (m ModelDescriptor) FriendlyName() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// ParameterSpec describes one request parameter accepted by a model.
type ParameterSpec struct {
	Key         string `json:"key"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Default     any    `json:"default,omitempty"`
	Required    bool   `json:"required,omitempty"`
}

// ModelSchema is the per-model invocation schema.
type ModelSchema struct {
	Parameters   []ParameterSpec `json:"parameters"`
	Capabilities map[string]bool `json:"capabilities"`
}
