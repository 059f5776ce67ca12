package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Node is a claim/statement vertex in the veracity graph. Weight is a
// denormalized cache of the current VeracityScoreRecord value and is kept
// consistent with it by the scorer.
type Node struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	Label  string  `gorm:"column:label;not null" json:"label"`
	Weight float64 `gorm:"column:weight;not null;default:0.5" json:"weight"`

	// IsImmutable marks ground-truth nodes. Their weight is fixed at 1.0
	// and the scorer never recomputes them.
	IsImmutable bool `gorm:"column:is_immutable;not null;default:false" json:"is_immutable"`

	// PrimarySourceID is a weak back-reference to the node this one was
	// derived from, used only by provenance walks.
	PrimarySourceID *uuid.UUID `gorm:"type:uuid;index:idx_node_primary_source" json:"primary_source_id,omitempty"`

	// Properties is an opaque attribute bag. The engine never interprets
	// its contents.
	Properties datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Node) TableName() string { return "graph_node" }

// Edge is a typed, directed relationship between two nodes. It carries its
// own veracity weight with the same domain and invariants as Node.Weight.
type Edge struct {
	ID uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

	SourceNodeID uuid.UUID `gorm:"type:uuid;not null;index:idx_edge_source" json:"source_node_id"`
	TargetNodeID uuid.UUID `gorm:"type:uuid;not null;index:idx_edge_target" json:"target_node_id"`

	EdgeTypeID string `gorm:"column:edge_type_id;not null;index:idx_edge_type" json:"edge_type_id"`

	Weight      float64 `gorm:"column:weight;not null;default:0.5" json:"weight"`
	IsImmutable bool    `gorm:"column:is_immutable;not null;default:false" json:"is_immutable"`

	Properties datatypes.JSON `gorm:"column:properties;type:jsonb" json:"properties,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Edge) TableName() string { return "graph_edge" }

// EdgeFilter narrows adjacency lookups. Zero values mean no constraint.
type EdgeFilter struct {
	EdgeTypeID string
	MinWeight  float64
}
