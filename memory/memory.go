package memory

import (
	"time"

	"github.com/nucleusmind/contextengine/entity"
)

type (
	// Scope is the tenant boundary of every read and write. An empty
	// UserID means all users of the organization.
	Scope struct {
		OrganizationID string `json:"organizationId"`
		UserID         string `json:"userId,omitempty"`
	}

	// ScoredMemory holds a memory with its retrieval similarity score
	ScoredMemory struct {
		Memory *entity.Memory `json:"memory"`

		// Relevance is the similarity of the memory to the query (0.0~1.0)
		Relevance float64 `json:"relevance"`
	}

	SearchOptions struct {
		Limit int

		// Types restricts results to the given memory types when non-empty.
		Types []entity.MemoryType

		// Since excludes memories created before the given time when set.
		Since time.Time
	}
)

func (s Scope) IsValid() bool {
	return s.OrganizationID != ""
}

// Contains reports whether the memory belongs to this scope.
func (s Scope) Contains(m *entity.Memory) bool {
	if m.OrganizationID != s.OrganizationID {
		return false
	}
	if s.UserID != "" && m.UserID != "" && m.UserID != s.UserID {
		return false
	}
	return true
}
