package hub

// Callbacks exposes the hub's lifecycle hooks to the embedding
// orchestrator. All fields are optional; nil hooks are skipped. Hooks are
// invoked outside the hub lock and never after Shutdown returns.
type Callbacks struct {
	OnWorkerConnected    func(workerID string)
	OnWorkerDisconnected func(workerID string)

	OnTaskComplete func(workerID, taskID string, result interface{})
	OnTaskError    func(workerID, taskID, errMsg string)
	OnTaskProgress func(workerID, taskID string, progress float64, message string)

	// OnWorkerReadyForTermination fires once per worker, after the
	// in-flight task of a terminate-marked worker finishes and before the
	// raw task outcome is forwarded.
	OnWorkerReadyForTermination func(workerID string)
}

func (c Callbacks) workerConnected(workerID string) {
	if c.OnWorkerConnected != nil {
		c.OnWorkerConnected(workerID)
	}
}

func (c Callbacks) workerDisconnected(workerID string) {
	if c.OnWorkerDisconnected != nil {
		c.OnWorkerDisconnected(workerID)
	}
}

func (c Callbacks) taskComplete(workerID, taskID string, result interface{}) {
	if c.OnTaskComplete != nil {
		c.OnTaskComplete(workerID, taskID, result)
	}
}

func (c Callbacks) taskError(workerID, taskID, errMsg string) {
	if c.OnTaskError != nil {
		c.OnTaskError(workerID, taskID, errMsg)
	}
}

func (c Callbacks) taskProgress(workerID, taskID string, progress float64, message string) {
	if c.OnTaskProgress != nil {
		c.OnTaskProgress(workerID, taskID, progress, message)
	}
}

func (c Callbacks) workerReadyForTermination(workerID string) {
	if c.OnWorkerReadyForTermination != nil {
		c.OnWorkerReadyForTermination(workerID)
	}
}
