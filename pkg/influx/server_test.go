package influx

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/julienschmidt/httprouter"
	"github.com/klauspost/compress/gzip"
)

type writeRequest struct {
	Query  map[string]string
	Header http.Header
	Lines  []string
}

// testServer is a minimal in-memory imitation of the InfluxDB API.
type testServer struct {
	*httptest.Server

	Token       string
	WriteStatus int

	writes []writeRequest
	orgs   map[string]*Organization
	tasks  map[string]*Task
	labels map[string]*Label
	runs   map[string][]Run
	nextID int

	lock sync.Mutex
}

func newTestServer(t *testing.T) *testServer {
	s := testServer{
		Token:       "test-token",
		WriteStatus: 204,

		orgs:   make(map[string]*Organization),
		tasks:  make(map[string]*Task),
		labels: make(map[string]*Label),
		runs:   make(map[string][]Run),
	}

	router := httprouter.New()

	router.GET("/api/v2/", s.hGetRoutes)
	router.POST("/api/v2/write", s.hPostWrite)

	router.GET("/api/v2/orgs", s.hGetOrgs)
	router.POST("/api/v2/orgs", s.hPostOrgs)
	router.GET("/api/v2/orgs/:id", s.hGetOrg)

	router.GET("/api/v2/tasks", s.hGetTasks)
	router.POST("/api/v2/tasks", s.hPostTasks)
	router.GET("/api/v2/tasks/:id", s.hGetTask)
	router.PATCH("/api/v2/tasks/:id", s.hPatchTask)
	router.DELETE("/api/v2/tasks/:id", s.hDeleteTask)
	router.POST("/api/v2/tasks/:id/labels", s.hPostTaskLabels)
	router.DELETE("/api/v2/tasks/:id/labels/:labelID", s.hDeleteTaskLabel)
	router.GET("/api/v2/tasks/:id/runs", s.hGetTaskRuns)
	router.POST("/api/v2/tasks/:id/runs", s.hPostTaskRuns)
	router.GET("/api/v2/tasks/:id/runs/:runID/logs", s.hGetTaskRunLogs)

	s.Server = httptest.NewServer(s.authenticate(router))
	t.Cleanup(s.Server.Close)

	return &s
}

func (s *testServer) Writes() []writeRequest {
	s.lock.Lock()
	defer s.lock.Unlock()

	return append([]writeRequest{}, s.writes...)
}

func (s *testServer) AddLabel(name string) *Label {
	s.lock.Lock()
	defer s.lock.Unlock()

	label := Label{ID: s.generateID(), Name: name}
	s.labels[label.ID] = &label

	return &label
}

func (s *testServer) generateID() string {
	s.nextID++
	return fmt.Sprintf("%016x", s.nextID)
}

func (s *testServer) authenticate(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if req.Header.Get("Authorization") != "Token "+s.Token {
			s.replyError(w, 401, "unauthorized", "unauthorized access")
			return
		}

		h.ServeHTTP(w, req)
	})
}

func (s *testServer) reply(w http.ResponseWriter, status int, value interface{}) {
	if value == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(value)
}

func (s *testServer) replyError(w http.ResponseWriter, status int, code, format string, args ...interface{}) {
	s.reply(w, status, map[string]string{
		"code":    code,
		"message": fmt.Sprintf(format, args...),
	})
}

func (s *testServer) decode(w http.ResponseWriter, req *http.Request, dest interface{}) bool {
	if err := json.NewDecoder(req.Body).Decode(dest); err != nil {
		s.replyError(w, 400, "invalid", "invalid request body: %v", err)
		return false
	}

	return true
}

func (s *testServer) hGetRoutes(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	s.reply(w, 200, map[string]string{
		"orgs":  "/api/v2/orgs",
		"tasks": "/api/v2/tasks",
		"write": "/api/v2/write",
	})
}

func (s *testServer) hPostWrite(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var r io.Reader = req.Body

	if req.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(req.Body)
		if err != nil {
			s.replyError(w, 400, "invalid", "invalid gzip body: %v", err)
			return
		}
		defer gz.Close()

		r = gz
	}

	data, err := io.ReadAll(r)
	if err != nil {
		s.replyError(w, 400, "invalid", "cannot read body: %v", err)
		return
	}

	query := make(map[string]string)
	for name := range req.URL.Query() {
		query[name] = req.URL.Query().Get(name)
	}

	body := strings.TrimSuffix(string(data), "\n")

	s.lock.Lock()
	s.writes = append(s.writes, writeRequest{
		Query:  query,
		Header: req.Header.Clone(),
		Lines:  strings.Split(body, "\n"),
	})
	status := s.WriteStatus
	s.lock.Unlock()

	if status >= 300 {
		s.replyError(w, status, "invalid", "unable to parse '%s'", body)
		return
	}

	w.WriteHeader(status)
}

func (s *testServer) hGetOrgs(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	name := req.URL.Query().Get("org")

	s.lock.Lock()
	defer s.lock.Unlock()

	orgs := []Organization{}
	for _, org := range s.orgs {
		if name == "" || org.Name == name {
			orgs = append(orgs, *org)
		}
	}

	s.reply(w, 200, map[string]interface{}{"orgs": orgs})
}

func (s *testServer) hPostOrgs(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var org Organization
	if !s.decode(w, req, &org) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	org.ID = s.generateID()
	s.orgs[org.ID] = &org

	s.reply(w, 201, &org)
}

func (s *testServer) hGetOrg(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()

	org, found := s.orgs[params.ByName("id")]
	if !found {
		s.replyError(w, 404, "not found", "organization not found")
		return
	}

	s.reply(w, 200, org)
}

func (s *testServer) findOrgByName(name string) *Organization {
	for _, org := range s.orgs {
		if org.Name == name {
			return org
		}
	}

	return nil
}

func (s *testServer) hGetTasks(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	query := req.URL.Query()

	s.lock.Lock()
	defer s.lock.Unlock()

	tasks := []Task{}
	for _, task := range s.tasks {
		if org := query.Get("org"); org != "" && task.Org != org {
			continue
		}
		if orgID := query.Get("orgID"); orgID != "" && task.OrgID != orgID {
			continue
		}
		if user := query.Get("user"); user != "" && task.OwnerID != user {
			continue
		}

		tasks = append(tasks, *task)
	}

	s.reply(w, 200, map[string]interface{}{"tasks": tasks})
}

func (s *testServer) hPostTasks(w http.ResponseWriter, req *http.Request, _ httprouter.Params) {
	var creation taskCreation
	if !s.decode(w, req, &creation) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var org *Organization
	if creation.OrgID != "" {
		org = s.orgs[creation.OrgID]
	} else {
		org = s.findOrgByName(creation.Org)
	}

	if org == nil {
		s.replyError(w, 404, "not found", "organization not found")
		return
	}

	task := Task{
		ID:      s.generateID(),
		OrgID:   org.ID,
		Org:     org.Name,
		OwnerID: "user-1",
		Status:  TaskStatusActive,
		Flux:    creation.Flux,
	}

	s.tasks[task.ID] = &task

	s.reply(w, 201, &task)
}

func (s *testServer) hGetTask(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()

	task, found := s.tasks[params.ByName("id")]
	if !found {
		s.replyError(w, 404, "not found", "task not found")
		return
	}

	s.reply(w, 200, task)
}

func (s *testServer) hPatchTask(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	var update TaskUpdate
	if !s.decode(w, req, &update) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	task, found := s.tasks[params.ByName("id")]
	if !found {
		s.replyError(w, 404, "not found", "task not found")
		return
	}

	if update.Name != nil {
		task.Name = *update.Name
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Status != nil {
		task.Status = *update.Status
	}
	if update.Flux != nil {
		task.Flux = *update.Flux
	}
	if update.Every != nil {
		task.Every = *update.Every
	}
	if update.Cron != nil {
		task.Cron = *update.Cron
	}
	if update.Offset != nil {
		task.Offset = *update.Offset
	}

	s.reply(w, 200, task)
}

func (s *testServer) hDeleteTask(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()

	id := params.ByName("id")
	if _, found := s.tasks[id]; !found {
		s.replyError(w, 404, "not found", "task not found")
		return
	}

	delete(s.tasks, id)

	s.reply(w, 204, nil)
}

func (s *testServer) hPostTaskLabels(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	var reqBody struct {
		LabelID string `json:"labelID"`
	}
	if !s.decode(w, req, &reqBody) {
		return
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	task, found := s.tasks[params.ByName("id")]
	if !found {
		s.replyError(w, 404, "not found", "task not found")
		return
	}

	label, found := s.labels[reqBody.LabelID]
	if !found {
		s.replyError(w, 404, "not found", "label not found")
		return
	}

	task.Labels = append(task.Labels, *label)

	s.reply(w, 201, map[string]interface{}{"label": label})
}

func (s *testServer) hDeleteTaskLabel(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()

	task, found := s.tasks[params.ByName("id")]
	if !found {
		s.replyError(w, 404, "not found", "task not found")
		return
	}

	labelID := params.ByName("labelID")

	labels := []Label{}
	for _, label := range task.Labels {
		if label.ID != labelID {
			labels = append(labels, label)
		}
	}

	if len(labels) == len(task.Labels) {
		s.replyError(w, 404, "not found", "label not found")
		return
	}

	task.Labels = labels

	s.reply(w, 204, nil)
}

func (s *testServer) hGetTaskRuns(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()

	runs := s.runs[params.ByName("id")]
	if runs == nil {
		runs = []Run{}
	}

	s.reply(w, 200, map[string]interface{}{"runs": runs})
}

func (s *testServer) hPostTaskRuns(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	s.lock.Lock()
	defer s.lock.Unlock()

	taskID := params.ByName("id")
	if _, found := s.tasks[taskID]; !found {
		s.replyError(w, 404, "not found", "task not found")
		return
	}

	run := Run{
		ID:     s.generateID(),
		TaskID: taskID,
		Status: "scheduled",
	}

	s.runs[taskID] = append(s.runs[taskID], run)

	s.reply(w, 201, &run)
}

func (s *testServer) hGetTaskRunLogs(w http.ResponseWriter, req *http.Request, params httprouter.Params) {
	runID := params.ByName("runID")

	events := []LogEvent{
		{RunID: runID, Time: "2023-06-01T12:00:00Z", Message: "Started task from script"},
		{RunID: runID, Time: "2023-06-01T12:00:01Z", Message: "Completed(success)"},
	}

	s.reply(w, 200, map[string]interface{}{"events": events})
}
