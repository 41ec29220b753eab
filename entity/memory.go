package entity

import (
	"time"
)

type (
	// Memory is a durable fact or observation scoped to one organization
	// and optionally one user. OrganizationID is the tenant isolation
	// boundary and is immutable after creation.
	Memory struct {
		ID             string     `json:"id"`
		OrganizationID string     `json:"organizationId"`
		UserID         string     `json:"userId,omitempty"`
		Content        string     `json:"content"`
		MemoryType     MemoryType `json:"memoryType"`

		// ImportanceScore is assigned by the write path, in [0, 1].
		ImportanceScore float64        `json:"importanceScore"`
		Metadata        map[string]any `json:"metadata,omitempty"`

		CreatedAt      time.Time `json:"createdAt"`
		LastAccessedAt time.Time `json:"lastAccessedAt"`
		AccessCount    int       `json:"accessCount"`

		ContentEmbedding []float32 `json:"-"`
	}

	MemoryType = string
)

const (
	MemoryTypePreference  MemoryType = "preference"
	MemoryTypeInteraction MemoryType = "interaction"
	MemoryTypeInsight     MemoryType = "insight"
	MemoryTypeFact        MemoryType = "fact"
)
