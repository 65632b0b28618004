package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/quarrylabs/quarry/pkg/core"
)

// SQLRequest records one SQL call the fake gateway received.
type SQLRequest struct {
	ConnectionID string
	Endpoint     string
	Query        string
	Params       []any
	DSN          string
}

// GatewayServer is an in-process fake of the gateway's HTTP contract.
// SQL results are scripted per query text; storage is a real in-memory
// object store with prefix, delimiter, and continuation-token semantics.
type GatewayServer struct {
	t   testing.TB
	srv *httptest.Server

	mu         sync.Mutex
	results    map[string]*core.QueryResult
	errors     map[string]scriptedError
	requests   []SQLRequest
	containers map[string]*fakeContainer
	pageSize   int
	listCalls  int
	deleted    []string
}

type scriptedError struct {
	status  int
	message string
}

type fakeContainer struct {
	createdAt time.Time
	objects   map[string]fakeObject
}

type fakeObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// NewGatewayServer starts a fake gateway. It shuts down with the test.
func NewGatewayServer(t testing.TB) *GatewayServer {
	g := &GatewayServer{
		t:          t,
		results:    make(map[string]*core.QueryResult),
		errors:     make(map[string]scriptedError),
		containers: make(map[string]*fakeContainer),
		pageSize:   1000,
	}

	r := chi.NewRouter()
	r.Route("/sql/{connectionID}", func(r chi.Router) {
		r.Post("/query", g.handleSQL("query"))
		r.Post("/execute", g.handleSQL("execute"))
	})
	r.Route("/storage/{connectionID}", func(r chi.Router) {
		r.Post("/containers", g.handleListContainers)
		r.Post("/containers/create", g.handleCreateContainer)
		r.Post("/objects", g.handleListObjects)
		r.Post("/object/details", g.handleObjectDetails)
		r.Post("/object/presign", g.handlePresign)
		r.Post("/object/delete", g.handleDeleteObjects)
		r.Post("/upload", g.handleUpload)
	})

	g.srv = httptest.NewServer(r)
	t.Cleanup(g.srv.Close)
	return g
}

// URL returns the fake gateway's base URL.
func (g *GatewayServer) URL() string { return g.srv.URL }

// ScriptResult sets the result returned for an exact query text.
func (g *GatewayServer) ScriptResult(query string, result *core.QueryResult) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.results[query] = result
}

// ScriptError makes an exact query text fail with the given status and message.
func (g *GatewayServer) ScriptError(query string, status int, message string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.errors[query] = scriptedError{status: status, message: message}
}

// Requests returns the SQL calls received so far.
func (g *GatewayServer) Requests() []SQLRequest {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]SQLRequest(nil), g.requests...)
}

// CreateContainer seeds an empty container.
func (g *GatewayServer) CreateContainer(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ensureContainer(name)
}

// PutObject seeds one object.
func (g *GatewayServer) PutObject(container, key string, data []byte) {
	g.mu.Lock()
	defer g.mu.Unlock()
	c := g.ensureContainer(container)
	c.objects[key] = fakeObject{
		data:         data,
		contentType:  "application/octet-stream",
		lastModified: time.Now().UTC().Truncate(time.Second),
	}
}

// HasObject reports whether the object exists.
func (g *GatewayServer) HasObject(container, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.containers[container]
	if !ok {
		return false
	}
	_, ok = c.objects[key]
	return ok
}

// ObjectCount returns the number of objects in a container.
func (g *GatewayServer) ObjectCount(container string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.containers[container]
	if !ok {
		return 0
	}
	return len(c.objects)
}

// SetPageSize caps how many entries one object listing returns.
func (g *GatewayServer) SetPageSize(n int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pageSize = n
}

// ListObjectCalls returns how many object listings were served.
func (g *GatewayServer) ListObjectCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.listCalls
}

// DeletedKeys returns every key deleted so far, in deletion order and with
// repeats, so tests can assert exactly-once deletion.
func (g *GatewayServer) DeletedKeys() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.deleted...)
}

func (g *GatewayServer) ensureContainer(name string) *fakeContainer {
	c, ok := g.containers[name]
	if !ok {
		c = &fakeContainer{
			createdAt: time.Now().UTC().Truncate(time.Second),
			objects:   make(map[string]fakeObject),
		}
		g.containers[name] = c
	}
	return c
}

func (g *GatewayServer) handleSQL(endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query  string `json:"query"`
			Params []any  `json:"params"`
			DSN    string `json:"dsn"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeMessage(w, http.StatusBadRequest, "invalid request body")
			return
		}

		g.mu.Lock()
		g.requests = append(g.requests, SQLRequest{
			ConnectionID: chi.URLParam(r, "connectionID"),
			Endpoint:     endpoint,
			Query:        req.Query,
			Params:       req.Params,
			DSN:          req.DSN,
		})
		scripted, hasErr := g.errors[req.Query]
		result, hasResult := g.results[req.Query]
		g.mu.Unlock()

		if hasErr {
			writeMessage(w, scripted.status, scripted.message)
			return
		}
		if !hasResult {
			writeMessage(w, http.StatusInternalServerError, fmt.Sprintf("no scripted result for query: %s", req.Query))
			return
		}
		writeJSON(w, result)
	}
}

func (g *GatewayServer) handleListContainers(w http.ResponseWriter, r *http.Request) {
	g.mu.Lock()
	names := make([]string, 0, len(g.containers))
	for name := range g.containers {
		names = append(names, name)
	}
	sort.Strings(names)
	containers := make([]core.Container, 0, len(names))
	for _, name := range names {
		containers = append(containers, core.Container{Name: name, CreatedAt: g.containers[name].createdAt})
	}
	g.mu.Unlock()

	writeJSON(w, containers)
}

func (g *GatewayServer) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeMessage(w, http.StatusBadRequest, "container name required")
		return
	}

	g.mu.Lock()
	if _, exists := g.containers[req.Name]; exists {
		g.mu.Unlock()
		writeMessage(w, http.StatusConflict, fmt.Sprintf("container %q already exists", req.Name))
		return
	}
	c := g.ensureContainer(req.Name)
	created := core.Container{Name: req.Name, CreatedAt: c.createdAt}
	g.mu.Unlock()

	writeJSON(w, created)
}

func (g *GatewayServer) handleListObjects(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Container         string `json:"container"`
		Prefix            string `json:"prefix"`
		Delimiter         string `json:"delimiter"`
		MaxKeys           int    `json:"maxKeys"`
		ContinuationToken string `json:"continuationToken"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.listCalls++

	c, ok := g.containers[req.Container]
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("container %q not found", req.Container))
		return
	}

	keys := make([]string, 0, len(c.objects))
	for key := range c.objects {
		if strings.HasPrefix(key, req.Prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	// Roll keys up into page entries first: an object, or one common-prefix
	// group covering a contiguous run of keys. Groups never split across
	// pages, and a group's position is its last raw key.
	type entry struct {
		isPrefix bool
		prefix   string
		key      string
	}
	var entries []entry
	for i := 0; i < len(keys); {
		key := keys[i]
		if req.Delimiter != "" {
			rest := strings.TrimPrefix(key, req.Prefix)
			if idx := strings.Index(rest, req.Delimiter); idx >= 0 {
				p := req.Prefix + rest[:idx+len(req.Delimiter)]
				j := i
				for j < len(keys) && strings.HasPrefix(keys[j], p) {
					j++
				}
				entries = append(entries, entry{isPrefix: true, prefix: p, key: keys[j-1]})
				i = j
				continue
			}
		}
		entries = append(entries, entry{key: key})
		i++
	}

	limit := g.pageSize
	if req.MaxKeys > 0 && req.MaxKeys < limit {
		limit = req.MaxKeys
	}

	result := core.ListObjectsResult{
		Objects:  []core.StorageObject{},
		Prefixes: []string{},
	}
	count := 0
	for _, e := range entries {
		// The token is the last key of the previous page; resume after it.
		if req.ContinuationToken != "" && e.key <= req.ContinuationToken {
			continue
		}
		if count == limit {
			result.IsTruncated = true
			break
		}
		if e.isPrefix {
			result.Prefixes = append(result.Prefixes, e.prefix)
		} else {
			result.Objects = append(result.Objects, storageObject(e.key, c.objects[e.key]))
		}
		result.ContinuationToken = e.key
		count++
	}
	if !result.IsTruncated {
		result.ContinuationToken = ""
	}

	writeJSON(w, result)
}

func (g *GatewayServer) handleObjectDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Container string `json:"container"`
		Key       string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.containers[req.Container]
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("container %q not found", req.Container))
		return
	}
	o, ok := c.objects[req.Key]
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("object %q not found", req.Key))
		return
	}

	writeJSON(w, core.ObjectDetails{
		StorageObject: storageObject(req.Key, o),
		StorageClass:  "STANDARD",
	})
}

func (g *GatewayServer) handlePresign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Container string `json:"container"`
		Key       string `json:"key"`
		ExpiresIn int    `json:"expiresIn"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ExpiresIn <= 0 {
		writeMessage(w, http.StatusBadRequest, "expiresIn must be positive")
		return
	}

	writeJSON(w, map[string]string{
		"url": fmt.Sprintf("https://signed.example/%s/%s?expires=%d", req.Container, req.Key, req.ExpiresIn),
	})
}

func (g *GatewayServer) handleDeleteObjects(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Container string   `json:"container"`
		Keys      []string `json:"keys"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	c, ok := g.containers[req.Container]
	if !ok {
		writeMessage(w, http.StatusNotFound, fmt.Sprintf("container %q not found", req.Container))
		return
	}
	for _, key := range req.Keys {
		delete(c.objects, key)
		g.deleted = append(g.deleted, key)
	}

	writeJSON(w, map[string]int{"deleted": len(req.Keys)})
}

func (g *GatewayServer) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid multipart body")
		return
	}
	container := r.FormValue("container")
	key := r.FormValue("key")
	if container == "" || key == "" {
		writeMessage(w, http.StatusBadRequest, "container and key required")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "file part required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "unreadable file part")
		return
	}

	g.mu.Lock()
	c := g.ensureContainer(container)
	c.objects[key] = fakeObject{
		data:         data,
		contentType:  header.Header.Get("Content-Type"),
		lastModified: time.Now().UTC().Truncate(time.Second),
	}
	o := c.objects[key]
	g.mu.Unlock()

	writeJSON(w, storageObject(key, o))
}

func storageObject(key string, o fakeObject) core.StorageObject {
	return core.StorageObject{
		Key:          key,
		Name:         path.Base(key),
		Size:         int64(len(o.data)),
		LastModified: o.lastModified,
		ETag:         fmt.Sprintf("%q", fmt.Sprintf("%x-%d", len(o.data), o.lastModified.Unix())),
		ContentType:  o.contentType,
		IsFolder:     strings.HasSuffix(key, "/"),
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
