package model

import (
	"encoding/json"
	"time"
)

// ActionSequence is an ordered, persisted list of Actions representing one
// recording. It is appended to while recording and immutable once saved.
type ActionSequence struct {
	ID        string
	Name      string
	CreatedAt time.Time
	Actions   []Action
}

// ActionCount returns the number of non-delay actions.
func (s *ActionSequence) ActionCount() int {
	n := 0
	for _, a := range s.Actions {
		if _, ok := a.(Delay); !ok {
			n++
		}
	}
	return n
}

// TotalDuration returns the sum of all explicit delays.
func (s *ActionSequence) TotalDuration() time.Duration {
	var secs float64
	for _, a := range s.Actions {
		if d, ok := a.(Delay); ok {
			secs += d.Seconds
		}
	}
	return time.Duration(secs * float64(time.Second))
}

// sequenceEnvelope is the on-disk shape of an ActionSequence.
type sequenceEnvelope struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	CreatedAt time.Time         `json:"createdAt"`
	Actions   []json.RawMessage `json:"actions"`
}

// MarshalJSON encodes the sequence with each action in its discriminated
// envelope form.
func (s ActionSequence) MarshalJSON() ([]byte, error) {
	env := sequenceEnvelope{
		ID:        s.ID,
		Name:      s.Name,
		CreatedAt: s.CreatedAt,
		Actions:   make([]json.RawMessage, 0, len(s.Actions)),
	}
	for _, a := range s.Actions {
		raw, err := MarshalAction(a)
		if err != nil {
			return nil, err
		}
		env.Actions = append(env.Actions, raw)
	}
	return json.Marshal(env)
}

// UnmarshalJSON decodes a sequence saved by MarshalJSON.
func (s *ActionSequence) UnmarshalJSON(data []byte) error {
	var env sequenceEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	actions := make([]Action, 0, len(env.Actions))
	for _, raw := range env.Actions {
		a, err := UnmarshalAction(raw)
		if err != nil {
			return err
		}
		actions = append(actions, a)
	}
	s.ID = env.ID
	s.Name = env.Name
	s.CreatedAt = env.CreatedAt
	s.Actions = actions
	return nil
}
