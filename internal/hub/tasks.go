package hub

import (
	"github.com/codefionn/workhub/internal/logger"
	"github.com/codefionn/workhub/internal/protocol"
)

// AssignTask hands a task to a worker. Returns false when the worker is
// unknown or already busy; a worker holds at most one task at a time.
func (h *Hub) AssignTask(workerID, taskID, taskType string, payload interface{}) bool {
	h.mu.Lock()
	w, ok := h.workers[workerID]
	if !ok || w.CurrentTaskID != "" {
		h.mu.Unlock()
		return false
	}
	w.CurrentTaskID = taskID
	w.CurrentTaskType = taskType
	t := w.conn
	h.mu.Unlock()

	t.Send(protocol.NewTaskAssign(taskID, taskType, payload))
	logger.Info("Task %s (%s) assigned to %s", taskID, taskType, workerID)
	return true
}

// MarkForTermination flags a worker to retire once its current task
// finishes. The flag is one-way, never interrupts an in-flight task, and
// only makes the worker ineligible for new assignment; eviction still
// requires disconnect or heartbeat timeout.
func (h *Hub) MarkForTermination(workerID string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, ok := h.workers[workerID]
	if !ok {
		return false
	}
	w.PendingTermination = true
	return true
}

// FindAvailableWorker returns the first registry-order worker that is
// idle, not pending termination and advertises the capability.
func (h *Hub) FindAvailableWorker(capability string) (string, bool) {
	return h.FindAvailableWorkerForAny([]string{capability})
}

// FindAvailableWorkerForAny is FindAvailableWorker over a capability set.
// First match wins; there is no load balancing.
func (h *Hub) FindAvailableWorkerForAny(capabilities []string) (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, id := range h.workerOrder {
		w := h.workers[id]
		if w != nil && w.available() && w.hasAnyCapability(capabilities) {
			return id, true
		}
	}
	return "", false
}

// clearTask resets a worker's task fields and reports whether the
// ready-for-termination hook should fire; hub lock must not be held.
func (h *Hub) clearTask(c *connection) (fireReady bool, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	w, found := h.workers[c.id]
	if !found {
		return false, false
	}
	w.CurrentTaskID = ""
	w.CurrentTaskType = ""
	if w.PendingTermination && !w.terminationNotified {
		w.terminationNotified = true
		return true, true
	}
	return false, true
}

func (h *Hub) handleTaskComplete(c *connection, data []byte) {
	var f protocol.TaskCompleteFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid task:complete frame"))
		return
	}

	fireReady, ok := h.clearTask(c)
	if !ok {
		c.t.Send(protocol.NewError("not a registered worker"))
		return
	}

	// Contract: the termination hook fires before the raw outcome is
	// forwarded, so the orchestrator sees the worker retire first.
	if fireReady {
		h.callbacks.workerReadyForTermination(c.id)
	}
	h.callbacks.taskComplete(c.id, f.TaskID, f.Result)
}

func (h *Hub) handleTaskError(c *connection, data []byte) {
	var f protocol.TaskErrorFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid task:error frame"))
		return
	}

	fireReady, ok := h.clearTask(c)
	if !ok {
		c.t.Send(protocol.NewError("not a registered worker"))
		return
	}

	if fireReady {
		h.callbacks.workerReadyForTermination(c.id)
	}
	h.callbacks.taskError(c.id, f.TaskID, f.Error)
}

// handleTaskProgress forwards progress without mutating task state
func (h *Hub) handleTaskProgress(c *connection, data []byte) {
	var f protocol.TaskProgressFrame
	if err := protocol.Unmarshal(data, &f); err != nil {
		c.t.Send(protocol.NewError("invalid task:progress frame"))
		return
	}

	h.mu.Lock()
	_, ok := h.workers[c.id]
	h.mu.Unlock()
	if !ok {
		c.t.Send(protocol.NewError("not a registered worker"))
		return
	}

	h.callbacks.taskProgress(c.id, f.TaskID, f.Progress, f.Message)
}
