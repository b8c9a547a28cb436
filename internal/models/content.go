package models

import "fmt"

// ContentKind names one of the three content tables.
type ContentKind string

const (
	KindSnippet ContentKind = "snippet"
	KindDoc     ContentKind = "doc"
	KindBug     ContentKind = "bug"
)

func ParseContentKind(s string) (ContentKind, error) {
	switch ContentKind(s) {
	case KindSnippet, KindDoc, KindBug:
		return ContentKind(s), nil
	}
	return "", fmt.Errorf("unknown content kind %q", s)
}

// ContentRef identifies exactly one content item by kind and public id.
// Construct it with NewContentRef so an empty or double target cannot exist.
type ContentRef struct {
	Kind ContentKind `json:"kind"`
	ID   string      `json:"id"`
}

func NewContentRef(kind, id string) (ContentRef, error) {
	k, err := ParseContentKind(kind)
	if err != nil {
		return ContentRef{}, err
	}
	if id == "" {
		return ContentRef{}, fmt.Errorf("missing content id")
	}
	return ContentRef{Kind: k, ID: id}, nil
}

// Room is the live-channel room key for this content item.
func (r ContentRef) Room() string {
	return "content:" + r.ID
}
