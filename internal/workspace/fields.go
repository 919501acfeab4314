package workspace

import (
	"github.com/rendis/atelier/internal/streaming"
	"github.com/rendis/atelier/pkg/schema"
)

// OutputArm selects the success or error branch of a process node's
// outputs for the output mutation operations.
type OutputArm string

const (
	OutputSuccess OutputArm = "success"
	OutputError   OutputArm = "error"
)

// processData returns the node's data as a process variant, or nil when
// the id is unknown or the node is any other kind. Every field and step
// mutation routes through this guard: a non-process node is never touched,
// not even partially. Caller holds s.mu.
func (s *Store) processData(id string) *schema.ProcessData {
	n := s.graphs[s.activeTab].NodeByID(id)
	if n == nil {
		return nil
	}
	pd, ok := n.Data.(*schema.ProcessData)
	if !ok {
		return nil
	}
	return pd
}

// AddInput appends a field to a process node's inputs. Silent no-op for
// unknown ids and non-process nodes.
func (s *Store) AddInput(id string, f schema.Field) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	pd.Inputs = append(pd.Inputs, f.Clone())
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// RemoveInput removes the named field from a process node's inputs.
// Unknown names leave the node unchanged.
func (s *Store) RemoveInput(id, name string) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	pd.Inputs = removeField(pd.Inputs, name)
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// UpdateInput replaces the named field on a process node's inputs with f.
// The field keeps its list position; a rename is allowed (match is on the
// old name).
func (s *Store) UpdateInput(id, name string, f schema.Field) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	replaceField(pd.Inputs, name, f)
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// AddOutput appends a field to the chosen output arm of a process node.
func (s *Store) AddOutput(id string, arm OutputArm, f schema.Field) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	switch arm {
	case OutputSuccess:
		pd.Outputs.Success = append(pd.Outputs.Success, f.Clone())
	case OutputError:
		pd.Outputs.Error = append(pd.Outputs.Error, f.Clone())
	}
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// RemoveOutput removes the named field from the chosen output arm.
func (s *Store) RemoveOutput(id string, arm OutputArm, name string) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	switch arm {
	case OutputSuccess:
		pd.Outputs.Success = removeField(pd.Outputs.Success, name)
	case OutputError:
		pd.Outputs.Error = removeField(pd.Outputs.Error, name)
	}
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// UpdateOutput replaces the named field on the chosen output arm.
func (s *Store) UpdateOutput(id string, arm OutputArm, name string, f schema.Field) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	switch arm {
	case OutputSuccess:
		replaceField(pd.Outputs.Success, name, f)
	case OutputError:
		replaceField(pd.Outputs.Error, name, f)
	}
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// AddStep appends a step to a process node's step list.
func (s *Store) AddStep(id string, step schema.Step) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	pd.Steps = append(pd.Steps, step.Clone())
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// RemoveStep removes the step with the given step id.
func (s *Store) RemoveStep(id, stepID string) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	for i := range pd.Steps {
		if pd.Steps[i].ID == stepID {
			pd.Steps = append(pd.Steps[:i], pd.Steps[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// UpdateStep replaces the step with the matching id wholesale, keeping its
// position in the list.
func (s *Store) UpdateStep(id string, step schema.Step) {
	s.mu.Lock()
	pd := s.processData(id)
	if pd == nil {
		s.mu.Unlock()
		return
	}
	for i := range pd.Steps {
		if pd.Steps[i].ID == step.ID {
			pd.Steps[i] = step.Clone()
			break
		}
	}
	s.mu.Unlock()

	s.publish(streaming.EventNodeUpdated, id, "")
}

// removeField drops the first field whose name matches.
func removeField(fields []schema.Field, name string) []schema.Field {
	for i := range fields {
		if fields[i].Name == name {
			return append(fields[:i], fields[i+1:]...)
		}
	}
	return fields
}

// replaceField swaps the first field whose name matches for a deep copy
// of f, in place.
func replaceField(fields []schema.Field, name string, f schema.Field) {
	for i := range fields {
		if fields[i].Name == name {
			fields[i] = f.Clone()
			return
		}
	}
}
