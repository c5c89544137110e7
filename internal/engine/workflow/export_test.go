package workflow

import "go.trai.ch/cargonode/internal/core/domain"

// GetStepStatusMap returns a copy of the internal step status map.
// This is exported for testing purposes only.
func (e *Executor) GetStepStatusMap() map[domain.InternedString]StepStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	statusMap := make(map[domain.InternedString]StepStatus, len(e.stepStatus))
	for k, v := range e.stepStatus {
		statusMap[k] = v
	}
	return statusMap
}
