package process

import (
	"slices"
	"sync"

	"github.com/google/uuid"
)

const (
	ReturnFailure = 0
	ReturnSuccess = 1
)

// Info is the record a task leaves for each run.
type Info struct {
	UniqueID   uuid.UUID
	Name       string
	ReturnCode int
	Message    string
}

// Succeeded reports whether the run returned ReturnSuccess.
func (i Info) Succeeded() bool { return i.ReturnCode == ReturnSuccess }

// InfoContainer collects Info records from concurrently running tasks.
type InfoContainer struct {
	mu    sync.Mutex
	infos []Info
}

func (c *InfoContainer) Add(info Info) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.infos = append(c.infos, info)
}

// All returns the records in the order they were added.
func (c *InfoContainer) All() []Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	return slices.Clone(c.infos)
}

// ByName returns every record left by tasks with the given name.
func (c *InfoContainer) ByName(name string) []Info {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Info
	for _, info := range c.infos {
		if info.Name == name {
			out = append(out, info)
		}
	}
	return out
}
