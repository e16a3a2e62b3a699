package server

import (
	"cmp"
	"encoding/json"
	"io"
	"maps"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/metricflow/pkg/canvas"
	"github.com/matzehuels/metricflow/pkg/canvas/svg"
	"github.com/matzehuels/metricflow/pkg/errors"
	"github.com/matzehuels/metricflow/pkg/graph"
	"github.com/matzehuels/metricflow/pkg/render/nodelink"
	"github.com/matzehuels/metricflow/pkg/session"
	"github.com/matzehuels/metricflow/pkg/spec"
)

// =============================================================================
// Canvases
// =============================================================================

func (s *Server) handleListCanvases(w http.ResponseWriter, r *http.Request) {
	ids, err := s.store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"canvases": ids})
}

func (s *Server) handleCreateCanvas(w http.ResponseWriter, r *http.Request) {
	doc, err := readDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if path := r.URL.Query().Get("spec"); path != "" {
		if doc, err = s.withSpecFile(path, doc); err != nil {
			s.writeError(w, err)
			return
		}
	}
	id := session.GenerateID()
	c, surf, err := s.NewCanvas(id, doc.Options, doc.Nodes)
	if err != nil {
		s.writeError(w, err)
		return
	}
	sess := session.NewWithID(id, c, surf)
	if err := s.store.Set(r.Context(), sess); err != nil {
		s.writeError(w, err)
		return
	}
	s.logger.Debug("created canvas", "id", id, "nodes", c.Len())
	writeSnapshot(w, http.StatusCreated, withID(c.Snapshot(), id))
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var snap graph.Snapshot
	sess.View(func(c *canvas.Canvas, _ *svg.Surface) { snap = c.Snapshot() })
	writeSnapshot(w, http.StatusOK, withID(snap, sess.ID))
}

func (s *Server) handleDeleteCanvas(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == DefaultCanvasID {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "the default canvas cannot be deleted"))
		return
	}
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var doc []byte
	sess.View(func(_ *canvas.Canvas, surf *svg.Surface) { doc = surf.Bytes() })
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(doc)
}

// =============================================================================
// Nodes and links
// =============================================================================

func (s *Server) handleGraphviz(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	format, err := nodelink.ParseFormat(cmp.Or(r.URL.Query().Get("format"), string(nodelink.FormatSVG)))
	if err != nil {
		s.writeError(w, err)
		return
	}
	detailed, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))

	var dot string
	sess.View(func(c *canvas.Canvas, _ *svg.Surface) {
		dot = nodelink.ToDOT(withID(c.Snapshot(), sess.ID), nodelink.Options{
			Detailed:  detailed,
			LinkColor: c.Options().LinkColor,
		})
	})

	data, err := s.graphviz.Render(r.Context(), dot, format)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	_, _ = w.Write(data)
}

func (s *Server) handleCreateNodes(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	doc, err := readDocument(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	var snap graph.Snapshot
	err = sess.Do(func(c *canvas.Canvas) error {
		err := c.CreateNodes(doc.Nodes...)
		snap = c.Snapshot()
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeSnapshot(w, http.StatusCreated, withID(snap, sess.ID))
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "node")
	var (
		node  graph.Node
		found bool
	)
	sess.View(func(c *canvas.Canvas, _ *svg.Surface) {
		if n, ok := c.Node(id); ok {
			node, found = n.Snapshot(), true
		}
	})
	if !found {
		s.writeError(w, errors.New(errors.ErrCodeNotFound, "node %q not found", id))
		return
	}
	writeJSON(w, http.StatusOK, node)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "node")
	var removed bool
	_ = sess.Do(func(c *canvas.Canvas) error {
		removed = c.RemoveNode(id)
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

type linkRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

func (s *Server) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var req linkRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode link"))
		return
	}
	if req.Source == "" || req.Target == "" {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "source and target are required"))
		return
	}
	var created bool
	_ = sess.Do(func(c *canvas.Canvas) error {
		created = c.CreateLink(req.Source, req.Target)
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]bool{"created": created})
}

func (s *Server) handleRedraw(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	var n int
	_ = sess.Do(func(c *canvas.Canvas) error {
		n = c.RedrawConnectors()
		return nil
	})
	writeJSON(w, http.StatusOK, map[string]int{"redrawn": n})
}

// =============================================================================
// Helpers
// =============================================================================

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return sess, true
}

// readDocument decodes a request body in any spec shape. An empty body or
// empty object is an empty document.
func readDocument(r *http.Request) (spec.Document, error) {
	var raw any
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&raw); err != nil {
		if err == io.EOF {
			return spec.Document{}, nil
		}
		return spec.Document{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode request body")
	}
	if m, ok := raw.(map[string]any); ok && len(m) == 0 {
		return spec.Document{}, nil
	}
	return spec.Decode(raw)
}

// withSpecFile loads a spec file below SpecDir and merges the request
// document into it: request options win, request nodes are appended.
func (s *Server) withSpecFile(path string, req spec.Document) (spec.Document, error) {
	if s.cfg.SpecDir == "" {
		return spec.Document{}, errors.New(errors.ErrCodeInvalidInput, "loading spec files is disabled")
	}
	if err := errors.ValidatePath(path); err != nil {
		return spec.Document{}, err
	}
	doc, err := spec.LoadFile(filepath.Join(s.cfg.SpecDir, filepath.FromSlash(path)))
	if err != nil {
		return spec.Document{}, err
	}
	if len(req.Options) > 0 {
		merged := make(map[string]any, len(doc.Options)+len(req.Options))
		maps.Copy(merged, doc.Options)
		maps.Copy(merged, req.Options)
		doc.Options = merged
	}
	doc.Nodes = append(doc.Nodes, req.Nodes...)
	return doc, nil
}

func withID(s graph.Snapshot, id string) graph.Snapshot {
	s.ID = id
	return s
}

func writeSnapshot(w http.ResponseWriter, status int, snap graph.Snapshot) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = graph.Write(snap, w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code"`
}

// statusFor maps error codes to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{Error: errors.UserMessage(err), Code: code})
}
