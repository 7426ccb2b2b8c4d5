package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mesh-intelligence/docflow/pkg/types"
)

// dateLayout is the wire format of document dates in request bodies.
const dateLayout = "2006-01-02"

// CreateLinkRequest is the body of POST /api/v1/links.
type CreateLinkRequest struct {
	SourceKind string `json:"source_kind" validate:"required,oneof=incoming outgoing"`
	SourceID   string `json:"source_id" validate:"required"`
	TargetKind string `json:"target_kind" validate:"required,oneof=incoming outgoing"`
	TargetID   string `json:"target_id" validate:"required"`
	LinkType   string `json:"link_type" validate:"required,oneof=reply follow_up related"`
}

// PutDocumentRequest is the body of PUT /api/v1/documents/{kind}/{id}.
type PutDocumentRequest struct {
	Number          string `json:"number" validate:"max=64"`
	Date            string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Subject         string `json:"subject" validate:"max=1024"`
	CounterpartName string `json:"counterpart_name" validate:"max=256"`
}

func (s *Server) createLink(w http.ResponseWriter, r *http.Request) {
	actor := r.Header.Get(ActorHeader)
	if actor == "" {
		s.respondError(w, http.StatusBadRequest, ActorHeader+" header is required")
		return
	}

	var req CreateLinkRequest
	if !s.decode(w, r, &req) {
		return
	}

	link, err := s.store.CreateLink(r.Context(), types.NewLink{
		Source:   types.Ref(types.DocumentKind(req.SourceKind), req.SourceID),
		Target:   types.Ref(types.DocumentKind(req.TargetKind), req.TargetID),
		LinkType: types.LinkType(req.LinkType),
		ActorID:  actor,
	})
	if err != nil {
		s.fail(w, r, "create link", err)
		return
	}
	s.metrics.linksCreated.Inc()
	s.logger.Info("link created", "id", link.LinkID, "source", link.Source(), "target", link.Target(),
		"type", link.LinkType, "actor", actor)
	s.respondJSON(w, http.StatusCreated, link)
}

func (s *Server) getLink(w http.ResponseWriter, r *http.Request) {
	link, err := s.store.GetLink(r.Context(), chi.URLParam(r, "linkID"))
	if err != nil {
		s.fail(w, r, "get link", err)
		return
	}
	s.respondJSON(w, http.StatusOK, link)
}

func (s *Server) deleteLink(w http.ResponseWriter, r *http.Request) {
	actor := r.Header.Get(ActorHeader)
	if actor == "" {
		s.respondError(w, http.StatusBadRequest, ActorHeader+" header is required")
		return
	}

	linkID := chi.URLParam(r, "linkID")
	if err := s.store.DeleteLink(r.Context(), linkID, actor); err != nil {
		s.fail(w, r, "delete link", err)
		return
	}
	s.metrics.linksDeleted.Inc()
	s.logger.Info("link deleted", "id", linkID, "actor", actor)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) putDocument(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.documentRef(w, r)
	if !ok {
		return
	}

	var req PutDocumentRequest
	if !s.decode(w, r, &req) {
		return
	}

	doc := types.Document{
		DocumentRef: ref,
		DocumentInfo: types.DocumentInfo{
			Number:          req.Number,
			Subject:         req.Subject,
			CounterpartName: req.CounterpartName,
		},
	}
	if req.Date != "" {
		// Format already checked by the validator.
		doc.Date, _ = time.Parse(dateLayout, req.Date)
	}

	if err := s.store.PutDocument(r.Context(), doc); err != nil {
		s.fail(w, r, "put document", err)
		return
	}
	s.respondJSON(w, http.StatusOK, doc)
}

func (s *Server) documentLinks(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.documentRef(w, r)
	if !ok {
		return
	}

	views, err := s.links.GetLinksFor(r.Context(), ref)
	if err != nil {
		s.fail(w, r, "list links", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{
		"document": ref,
		"links":    views,
	})
}

func (s *Server) documentFlow(w http.ResponseWriter, r *http.Request) {
	ref, ok := s.documentRef(w, r)
	if !ok {
		return
	}

	start := time.Now()
	view, err := s.flows.GetDocumentFlow(r.Context(), ref)
	if err != nil {
		s.fail(w, r, "build flow", err)
		return
	}
	s.metrics.flowNodes.Observe(float64(len(view.Nodes)))
	s.logger.Debug("flow served", "root", ref, "nodes", len(view.Nodes), "took", time.Since(start))
	s.respondJSON(w, http.StatusOK, view)
}

// documentRef parses the {kind}/{id} path parameters.
func (s *Server) documentRef(w http.ResponseWriter, r *http.Request) (types.DocumentRef, bool) {
	kind, err := types.ParseDocumentKind(chi.URLParam(r, "kind"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return types.DocumentRef{}, false
	}
	ref := types.Ref(kind, chi.URLParam(r, "id"))
	if err := ref.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return types.DocumentRef{}, false
	}
	return ref, true
}

// decode reads a JSON body into dst and validates it, writing a 400 on
// failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, formatValidationError(err))
		return false
	}
	return true
}
