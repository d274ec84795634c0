package openprofile

import (
	"time"

	"github.com/openprofile/openprofile/visibility"
)

// WellKnownProfile is the node descriptor served under
// /.well-known/openprofile and fetched from federation peers.
type WellKnownProfile struct {
	Version   string            `json:"version"`
	Domain    string            `json:"domain"`
	Endpoints map[string]string `json:"endpoints"`
}

// ProfileStatus is the optional presence blurb shown next to a
// profile, supplied by the status collaborator.
type ProfileStatus struct {
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// ProfileAction is the wire form of one eligible contact action.
type ProfileAction struct {
	Title    string `json:"title"`
	Priority int    `json:"priority"`
	Icon     string `json:"icon"`
	Target   string `json:"target"`
}

// ProfileDocument is the assembled profile page payload. Parameters
// keeps catalog order on the wire; withheld fields appear as null.
type ProfileDocument struct {
	UserID            string                `json:"userId"`
	Parameters        visibility.Projection `json:"parameters"`
	IsAvatarDisplayed bool                  `json:"isAvatarDisplayed"`
	Actions           []ProfileAction       `json:"actions"`
	Status            *ProfileStatus        `json:"status,omitempty"`
}

// ProfileEvent is published whenever a profile property changes.
type ProfileEvent struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Property  string    `json:"property,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	EventPropertyUpdated = "property.updated"
)
