package domain

import "time"

type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

type PublishMetadata struct {
	Caption    string     `json:"caption"`
	Category   string     `json:"category"`
	Visibility Visibility `json:"visibility"`
}

// Package is what an export sink receives: the flattened render plus the
// declarative composition so a player can re-render overlays itself.
type Package struct {
	ProjectID   string
	Artifact    Artifact
	Composition Composition
	Metadata    PublishMetadata
}

type PublicationStatus string

const (
	PublicationSucceeded PublicationStatus = "succeeded"
	PublicationFailed    PublicationStatus = "failed"
)

// Publication records one export attempt against one sink.
type Publication struct {
	ID          int
	ProjectID   string
	Sink        string
	ArtifactURI string
	Status      PublicationStatus
	Error       string
	CreatedAt   time.Time
}
