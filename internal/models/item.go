package models

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Status of one upload item.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusSuccess   Status = "success"
	StatusError     Status = "error"
)

// URLNotFound is stored as the public URL of an upload that the remote side
// accepted without naming a URL. Such items never count as shareable.
const URLNotFound = "(url not found in response)"

var ErrInvalidTransition = errors.New("invalid status transition")

// validTransitions is keyed by current status. Nothing returns to Idle and
// terminal states are only reachable from Uploading.
var validTransitions = map[Status]map[Status]bool{
	StatusIdle:      {StatusUploading: true},
	StatusUploading: {StatusUploading: true, StatusSuccess: true, StatusError: true},
	StatusSuccess:   {StatusUploading: true},
	StatusError:     {StatusUploading: true},
}

// Fields carries the outcome attached to a transition.
type Fields struct {
	PublicURL    string
	ErrorMessage string
}

// Item is one file's upload state. Items are values: every change produces
// a new Item that replaces the old one by ID.
type Item struct {
	ID           string
	File         File
	Status       Status
	Progress     int
	PublicURL    string
	ErrorMessage string
}

func NewItem(f File) Item {
	return Item{ID: uuid.NewString(), File: f, Status: StatusIdle}
}

func CanTransition(from, to Status) bool {
	return validTransitions[from][to]
}

// TransitionTo moves the item to status, checking the transition table and
// that exactly the outcome field matching the target is populated.
func (it Item) TransitionTo(status Status, f Fields) (Item, error) {
	if !CanTransition(it.Status, status) {
		return it, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, it.Status, status)
	}

	switch status {
	case StatusUploading:
		if f.PublicURL != "" || f.ErrorMessage != "" {
			return it, fmt.Errorf("%w: uploading carries no outcome", ErrInvalidTransition)
		}
		it.Progress = 0
	case StatusSuccess:
		if f.PublicURL == "" || f.ErrorMessage != "" {
			return it, fmt.Errorf("%w: success needs a url and no error", ErrInvalidTransition)
		}
		it.Progress = 100
	case StatusError:
		if f.ErrorMessage == "" || f.PublicURL != "" {
			return it, fmt.Errorf("%w: error needs a message and no url", ErrInvalidTransition)
		}
	}

	it.Status = status
	it.PublicURL = f.PublicURL
	it.ErrorMessage = f.ErrorMessage
	return it, nil
}

func (it Item) Start() (Item, error) {
	return it.TransitionTo(StatusUploading, Fields{})
}

func (it Item) Succeed(url string) (Item, error) {
	return it.TransitionTo(StatusSuccess, Fields{PublicURL: url})
}

func (it Item) Fail(msg string) (Item, error) {
	return it.TransitionTo(StatusError, Fields{ErrorMessage: msg})
}

// WithProgress records progress while uploading; other states ignore it.
func (it Item) WithProgress(p int) Item {
	if it.Status != StatusUploading {
		return it
	}
	it.Progress = min(max(p, 0), 100)
	return it
}

// HasURL reports whether the item is a success with a real URL.
func (it Item) HasURL() bool {
	return it.Status == StatusSuccess && it.PublicURL != "" && it.PublicURL != URLNotFound
}
