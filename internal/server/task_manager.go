package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TaskStatus defines the possible states of a task.
type TaskStatus string

const (
	TaskStatusStarted   TaskStatus = "started"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task represents a campaign refresh running in the background.
type Task struct {
	mu sync.RWMutex
	v  TaskView
}

// TaskView is a point-in-time copy of a task, safe to encode.
type TaskView struct {
	ID              string     `json:"id"`
	Kind            string     `json:"kind"`
	Target          string     `json:"target"`
	Status          TaskStatus `json:"status"`
	ProgressMessage string     `json:"progress_message,omitempty"`
	Error           string     `json:"error,omitempty"`
	Result          any        `json:"result,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	FinishedAt      time.Time  `json:"finished_at,omitzero"`
}

// TaskManager tracks all asynchronous tasks.
type TaskManager struct {
	tasks map[string]*Task
	mu    sync.RWMutex
}

// NewTaskManager creates a new task manager.
func NewTaskManager() *TaskManager {
	return &TaskManager{
		tasks: make(map[string]*Task),
	}
}

// NewTask creates a new task, registers it, and returns it.
func (tm *TaskManager) NewTask(kind, target string) *Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task := &Task{v: TaskView{
		ID:        uuid.NewString(),
		Kind:      kind,
		Target:    target,
		Status:    TaskStatusStarted,
		CreatedAt: time.Now().UTC(),
	}}
	tm.tasks[task.v.ID] = task
	return task
}

// GetTask safely retrieves a task by its ID.
func (tm *TaskManager) GetTask(id string) (*Task, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	task, found := tm.tasks[id]
	return task, found
}

// --- Methods for updating a Task ---

// ID returns the task identifier.
func (t *Task) ID() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.v.ID
}

// View returns a copy of the task state.
func (t *Task) View() TaskView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.v
}

// SetStatus updates the status of the task.
func (t *Task) SetStatus(status TaskStatus) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.v.Status = status
}

// SetProgress updates the progress message for the task.
func (t *Task) SetProgress(message string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.v.ProgressMessage = message
}

// Complete marks the task as done and stores its result.
func (t *Task) Complete(result any) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.v.Status = TaskStatusCompleted
	t.v.Result = result
	t.v.FinishedAt = time.Now().UTC()
}

// SetError marks the task as failed and records the error message.
func (t *Task) SetError(err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.v.Status = TaskStatusFailed
	t.v.Error = err.Error()
	t.v.FinishedAt = time.Now().UTC()
}
