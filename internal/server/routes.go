package server

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rcliao/recall/internal/errs"
	"github.com/rcliao/recall/internal/model"
	"github.com/rcliao/recall/internal/redact"
	"github.com/rcliao/recall/internal/store"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 8 << 20

// Options configures the mounted routes.
type Options struct {
	Redactor *redact.Redactor // nil stores text as given
	Logger   *slog.Logger     // nil discards
	Now      func() time.Time // nil means time.Now
}

type handlers struct {
	store    *store.Store
	redactor *redact.Redactor
	log      *slog.Logger
	now      func() time.Time
}

// Register mounts the memory API on r so host applications can serve it
// under their own router.
func Register(r chi.Router, s *store.Store, opts Options) {
	h := &handlers{store: s, redactor: opts.Redactor, log: opts.Logger, now: opts.Now}
	if h.log == nil {
		h.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if h.now == nil {
		h.now = time.Now
	}

	r.Get("/health", h.health)
	r.Get("/stats", h.stats)
	r.Post("/search", h.search)
	r.Post("/context", h.context)
	r.Post("/purge", h.purge)
	r.Route("/items", func(r chi.Router) {
		r.Post("/", h.createItem)
		r.Post("/batch", h.createBatch)
		r.Get("/", h.listItems)
		r.Get("/{id}", h.getItem)
		r.Patch("/{id}", h.updateItem)
		r.Delete("/{id}", h.deleteItem)
	})
}

// createRequest is an item plus an optional relative expiry.
type createRequest struct {
	model.Item
	TTL string `json:"ttl,omitempty"`
}

type searchRequest struct {
	Query          string     `json:"query"`
	Kind           model.Kind `json:"kind,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	IncludeExpired bool       `json:"include_expired,omitempty"`
	Limit          *int       `json:"limit,omitempty"`
}

type contextRequest struct {
	Query  string     `json:"query"`
	Kind   model.Kind `json:"kind,omitempty"`
	Tags   []string   `json:"tags,omitempty"`
	Budget int        `json:"budget,omitempty"`
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.store.Stats(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *handlers) createItem(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	it, err := h.prepare(r, req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.store.Add(r.Context(), it); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, it)
}

func (h *handlers) createBatch(w http.ResponseWriter, r *http.Request) {
	var reqs []createRequest
	if err := decode(w, r, &reqs); err != nil {
		h.fail(w, r, err)
		return
	}
	items := make([]model.Item, 0, len(reqs))
	for _, req := range reqs {
		it, err := h.prepare(r, req)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		items = append(items, it)
	}
	if err := h.store.AddMany(r.Context(), items); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int{"count": len(items)})
}

func (h *handlers) listItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p := store.ListParams{
		Kind: model.Kind(q.Get("kind")),
		Tags: q["tag"],
	}
	var err error
	if p.IncludeExpired, err = queryBool(q.Get("include_expired")); err != nil {
		h.fail(w, r, err)
		return
	}
	if p.Limit, err = queryLimit(q.Get("limit")); err != nil {
		h.fail(w, r, err)
		return
	}

	items, err := h.store.List(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *handlers) getItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	it, ok, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.fail(w, r, notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handlers) updateItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var patch model.Patch
	if err := decode(w, r, &patch); err != nil {
		h.fail(w, r, err)
		return
	}
	if patch.Text != nil {
		text := h.redactText(r, id, *patch.Text)
		patch.Text = &text
	}

	it, ok, err := h.store.Update(r.Context(), id, patch)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !ok {
		h.fail(w, r, notFound(id))
		return
	}
	writeJSON(w, http.StatusOK, it)
}

func (h *handlers) deleteItem(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.store.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if !removed {
		h.fail(w, r, notFound(id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	results, err := h.store.Search(r.Context(), store.SearchParams{
		Query:          req.Query,
		Kind:           req.Kind,
		Tags:           req.Tags,
		IncludeExpired: req.IncludeExpired,
		Limit:          req.Limit,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *handlers) context(w http.ResponseWriter, r *http.Request) {
	var req contextRequest
	if err := decode(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.store.Context(r.Context(), store.ContextParams{
		Query:  req.Query,
		Kind:   req.Kind,
		Tags:   req.Tags,
		Budget: req.Budget,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *handlers) purge(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.PurgeExpired(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": n})
}

// prepare fills server-side defaults and redacts the text.
func (h *handlers) prepare(r *http.Request, req createRequest) (model.Item, error) {
	it := req.Item
	now := h.now()
	if it.ID == "" {
		it.ID = model.NewID()
	}
	if it.CreatedAt == "" {
		it.CreatedAt = model.Now(now)
	}
	if req.TTL != "" {
		exp, err := model.ExpiryAfter(now, req.TTL)
		if err != nil {
			return model.Item{}, errs.Wrap(err, errs.CodeServerRequestInvalid, "invalid ttl")
		}
		it.ExpiresAt = exp
	}
	it.Text = h.redactText(r, it.ID, it.Text)
	return it, nil
}

func (h *handlers) redactText(r *http.Request, id, text string) string {
	if h.redactor == nil {
		return text
	}
	res := h.redactor.Redact(text)
	if res.HadSecrets {
		h.log.WarnContext(r.Context(), "redacted secrets from item text", "id", id, "matches", res.Matches)
	}
	return res.RedactedText
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.log.ErrorContext(r.Context(), "request failed",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	} else {
		h.log.DebugContext(r.Context(), "request rejected",
			"method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, err)
}

func notFound(id string) error {
	return errs.New(errs.CodeServerItemNotFound, "item not found", errs.Field("id", id))
}

func queryBool(v string) (bool, error) {
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errs.Errorf(errs.CodeServerRequestInvalid, "include_expired must be a boolean, got %q", v)
	}
	return b, nil
}

func queryLimit(v string) (*int, error) {
	if v == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, errs.Errorf(errs.CodeServerRequestInvalid, "limit must be an integer, got %q", v)
	}
	return store.Limit(n), nil
}
