package influx

import (
	"context"
	"fmt"
	"net/url"
)

type TaskStatus string

const (
	TaskStatusActive   TaskStatus = "active"
	TaskStatusInactive TaskStatus = "inactive"
)

type Label struct {
	ID         string            `json:"id,omitempty"`
	OrgID      string            `json:"orgID,omitempty"`
	Name       string            `json:"name,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

type Task struct {
	ID              string     `json:"id,omitempty"`
	OrgID           string     `json:"orgID,omitempty"`
	Org             string     `json:"org,omitempty"`
	OwnerID         string     `json:"ownerID,omitempty"`
	Name            string     `json:"name,omitempty"`
	Description     string     `json:"description,omitempty"`
	Status          TaskStatus `json:"status,omitempty"`
	Flux            string     `json:"flux,omitempty"`
	Every           string     `json:"every,omitempty"`
	Cron            string     `json:"cron,omitempty"`
	Offset          string     `json:"offset,omitempty"`
	LatestCompleted string     `json:"latestCompleted,omitempty"`
	Labels          []Label    `json:"labels,omitempty"`
	CreatedAt       string     `json:"createdAt,omitempty"`
	UpdatedAt       string     `json:"updatedAt,omitempty"`
}

// TaskUpdate contains the members of a task to modify; nil members are left
// untouched.
type TaskUpdate struct {
	Name        *string     `json:"name,omitempty"`
	Description *string     `json:"description,omitempty"`
	Status      *TaskStatus `json:"status,omitempty"`
	Flux        *string     `json:"flux,omitempty"`
	Every       *string     `json:"every,omitempty"`
	Cron        *string     `json:"cron,omitempty"`
	Offset      *string     `json:"offset,omitempty"`
}

type TaskFilter struct {
	Org    string
	OrgID  string
	UserID string
}

type Run struct {
	ID           string `json:"id,omitempty"`
	TaskID       string `json:"taskID,omitempty"`
	Status       string `json:"status,omitempty"`
	ScheduledFor string `json:"scheduledFor,omitempty"`
	StartedAt    string `json:"startedAt,omitempty"`
	FinishedAt   string `json:"finishedAt,omitempty"`
	RequestedAt  string `json:"requestedAt,omitempty"`
}

type LogEvent struct {
	RunID   string `json:"runID,omitempty"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

type taskCreation struct {
	Org   string `json:"org,omitempty"`
	OrgID string `json:"orgID,omitempty"`
	Flux  string `json:"flux"`
}

func taskPath(id string, subpaths ...string) string {
	// Escaping is done when the request uri is built.
	p := "/api/v2/tasks/" + id
	for _, subpath := range subpaths {
		p += "/" + subpath
	}

	return p
}

// CreateTask creates a task in the organization named org.
func (c *APIClient) CreateTask(ctx context.Context, org, flux string) (*Task, error) {
	return c.createTask(ctx, taskCreation{Org: org, Flux: flux})
}

func (c *APIClient) CreateTaskByOrgID(ctx context.Context, orgID, flux string) (*Task, error) {
	return c.createTask(ctx, taskCreation{OrgID: orgID, Flux: flux})
}

func (c *APIClient) createTask(ctx context.Context, creation taskCreation) (*Task, error) {
	var task Task

	err := c.request(ctx, "POST", "/api/v2/tasks", nil, &creation, &task)
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (c *APIClient) Task(ctx context.Context, id string) (*Task, error) {
	var task Task

	if err := c.request(ctx, "GET", taskPath(id), nil, nil, &task); err != nil {
		return nil, err
	}

	return &task, nil
}

func (c *APIClient) Tasks(ctx context.Context, filter TaskFilter) ([]Task, error) {
	query := url.Values{}
	if filter.Org != "" {
		query.Set("org", filter.Org)
	}
	if filter.OrgID != "" {
		query.Set("orgID", filter.OrgID)
	}
	if filter.UserID != "" {
		query.Set("user", filter.UserID)
	}

	var res struct {
		Tasks []Task `json:"tasks"`
	}

	if err := c.request(ctx, "GET", "/api/v2/tasks", query, nil, &res); err != nil {
		return nil, err
	}

	return res.Tasks, nil
}

func (c *APIClient) UpdateTask(ctx context.Context, id string, update TaskUpdate) (*Task, error) {
	var task Task

	err := c.request(ctx, "PATCH", taskPath(id), nil, &update, &task)
	if err != nil {
		return nil, err
	}

	return &task, nil
}

func (c *APIClient) UpdateTaskStatus(ctx context.Context, id string, status TaskStatus) (*Task, error) {
	return c.UpdateTask(ctx, id, TaskUpdate{Status: &status})
}

func (c *APIClient) UpdateTaskScript(ctx context.Context, id, flux string) (*Task, error) {
	return c.UpdateTask(ctx, id, TaskUpdate{Flux: &flux})
}

func (c *APIClient) DeleteTask(ctx context.Context, id string) error {
	return c.request(ctx, "DELETE", taskPath(id), nil, nil, nil)
}

func (c *APIClient) AddTaskLabel(ctx context.Context, taskID, labelID string) (*Label, error) {
	reqBody := struct {
		LabelID string `json:"labelID"`
	}{
		LabelID: labelID,
	}

	var res struct {
		Label Label `json:"label"`
	}

	err := c.request(ctx, "POST", taskPath(taskID, "labels"), nil,
		&reqBody, &res)
	if err != nil {
		return nil, err
	}

	return &res.Label, nil
}

func (c *APIClient) AddTaskLabels(ctx context.Context, taskID string, labelIDs []string) ([]Label, error) {
	labels := make([]Label, 0, len(labelIDs))

	for _, labelID := range labelIDs {
		label, err := c.AddTaskLabel(ctx, taskID, labelID)
		if err != nil {
			return labels, fmt.Errorf("cannot add label %q: %w", labelID, err)
		}

		labels = append(labels, *label)
	}

	return labels, nil
}

func (c *APIClient) RemoveTaskLabel(ctx context.Context, taskID, labelID string) error {
	return c.request(ctx, "DELETE", taskPath(taskID, "labels", labelID),
		nil, nil, nil)
}

func (c *APIClient) RemoveTaskLabels(ctx context.Context, taskID string, labelIDs []string) error {
	for _, labelID := range labelIDs {
		if err := c.RemoveTaskLabel(ctx, taskID, labelID); err != nil {
			return fmt.Errorf("cannot remove label %q: %w", labelID, err)
		}
	}

	return nil
}

func (c *APIClient) TaskRuns(ctx context.Context, taskID string) ([]Run, error) {
	var res struct {
		Runs []Run `json:"runs"`
	}

	err := c.request(ctx, "GET", taskPath(taskID, "runs"), nil, nil, &res)
	if err != nil {
		return nil, err
	}

	return res.Runs, nil
}

func (c *APIClient) StartTaskRun(ctx context.Context, taskID string) (*Run, error) {
	var run Run

	err := c.request(ctx, "POST", taskPath(taskID, "runs"), nil,
		struct{}{}, &run)
	if err != nil {
		return nil, err
	}

	return &run, nil
}

func (c *APIClient) TaskRunLogs(ctx context.Context, taskID, runID string) ([]LogEvent, error) {
	var res struct {
		Events []LogEvent `json:"events"`
	}

	err := c.request(ctx, "GET", taskPath(taskID, "runs", runID, "logs"),
		nil, nil, &res)
	if err != nil {
		return nil, err
	}

	return res.Events, nil
}

// CloneTask creates a copy of a task, with the same script and labels, in
// the organization of the original task.
func (c *APIClient) CloneTask(ctx context.Context, taskID string) (*Task, error) {
	task, err := c.Task(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("cannot fetch task: %w", err)
	}

	clone, err := c.CreateTaskByOrgID(ctx, task.OrgID, task.Flux)
	if err != nil {
		return nil, fmt.Errorf("cannot create task: %w", err)
	}

	labelIDs := make([]string, len(task.Labels))
	for i, label := range task.Labels {
		labelIDs[i] = label.ID
	}

	labels, err := c.AddTaskLabels(ctx, clone.ID, labelIDs)
	if err != nil {
		return nil, fmt.Errorf("cannot copy labels: %w", err)
	}

	clone.Labels = labels

	return clone, nil
}
