// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package measure

import (
	"errors"

	"github.com/bureau-foundation/hwcount/lib/counter"
)

// Selection names the events of a counter set: a configured preset, an
// explicit event list, or both (preset events first).
type Selection struct {
	Preset string   `json:"preset,omitempty"`
	Events []string `json:"events,omitempty"`
}

// ErrEmptySelection is returned by Build for a Selection with no
// preset and no events.
var ErrEmptySelection = errors.New("measure: no preset or events given")

// Build builds a Ready counter set for selection on the calling thread. On
// failure nothing is left allocated.
func (selection Selection) Build(subsystem *counter.Subsystem) (*counter.Ready, error) {
	if selection.Preset == "" && len(selection.Events) == 0 {
		return nil, ErrEmptySelection
	}
	builder, err := counter.NewBuilder(subsystem)
	if err != nil {
		return nil, err
	}
	if selection.Preset != "" {
		if builder, err = builder.UsePreset(selection.Preset); err != nil {
			return nil, err
		}
	}
	for _, event := range selection.Events {
		if builder, err = builder.AddEventByName(event); err != nil {
			return nil, err
		}
	}
	return builder.Build()
}
