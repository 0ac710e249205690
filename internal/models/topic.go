// Package models defines the domain types shared by the converter stages.
package models

import "time"

// TopicKind identifies the shape of an emitted topic.
type TopicKind string

const (
	KindWarehouse     TopicKind = "warehouse"
	KindTask          TopicKind = "task"
	KindConcept       TopicKind = "concept"
	KindConceptParent TopicKind = "concept-parent"
)

// Topic is one emitted unit. A concept-parent is never written to disk; it
// only groups its Children for the navigation map. NavTitle, when set, is the
// label the map shows instead of Title.
type Topic struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	NavTitle   string    `json:"nav_title,omitempty"`
	Kind       TopicKind `json:"kind"`
	SourcePath string    `json:"source_path"`
	File       string    `json:"file,omitempty"`
	Children   []Topic   `json:"children,omitempty"`
}

// FileMetadata is a lightweight representation returned by storage list operations.
type FileMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
