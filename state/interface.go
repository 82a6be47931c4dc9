package state

import (
	"github.com/jmorel/arkplay/resume"
)

// Interface defines the state manager contract for dependency injection
// and testing. It combines the resume persistence backend with the
// queue snapshot store.
type Interface interface {
	SaveProgress(p resume.Progress) error
	GetProgress(itemIdentifier, filename string) (*resume.Progress, error)
	DeleteProgress(itemIdentifier, filename string) error
	ListProgress(video bool) ([]resume.Progress, error)
	SaveQueue(state QueueState)
	GetQueue() (*QueueState, error)
	Close() error
}

// Verify Manager implements Interface at compile time.
var _ Interface = (*Manager)(nil)
