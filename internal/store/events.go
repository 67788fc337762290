package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

const eventFile = "event.json"

// EventCatalog holds the static event description of every summit, read once
// from <dir>/<summit>/event.json.
type EventCatalog struct {
	events map[string]json.RawMessage
}

func LoadEventCatalog(dir string) (*EventCatalog, error) {
	c := &EventCatalog{events: map[string]json.RawMessage{}}

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), eventFile)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("%s is not valid JSON", path)
		}
		c.events[e.Name()] = json.RawMessage(data)
	}
	return c, nil
}

func (c *EventCatalog) Get(name string) (json.RawMessage, bool) {
	ev, ok := c.events[name]
	return ev, ok
}

func (c *EventCatalog) Names() []string {
	names := make([]string, 0, len(c.events))
	for name := range c.events {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
