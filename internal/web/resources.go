package web

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// resource serves the five REST operations of one entity type. In is the
// request body type and Out the response type; they differ only for test
// cases, which are written by reference id and read with names resolved.
type resource[In, Out any] struct {
	list   func(ctx context.Context) ([]Out, error)
	get    func(ctx context.Context, id int64) (Out, error)
	create func(ctx context.Context, in In) (Out, error)
	update func(ctx context.Context, id int64, in In) (Out, error)
	remove func(ctx context.Context, id int64) error
}

func (res resource[In, Out]) routes(s *Server) chi.Router {
	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		items, err := res.list(r.Context())
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, nonNil(items))
	})

	r.Post("/", func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			s.respondError(w, r, err)
			return
		}
		out, err := res.create(r.Context(), in)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, out)
	})

	r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		out, err := res.get(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Put("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			s.respondError(w, r, err)
			return
		}
		out, err := res.update(r.Context(), id, in)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, out)
	})

	r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := parseID(r, "id")
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := res.remove(r.Context(), id); err != nil {
			s.respondError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	return r
}

// handleSubModulesByModule lists the sub-modules of one module.
func (s *Server) handleSubModulesByModule(w http.ResponseWriter, r *http.Request) {
	moduleID, err := parseID(r, "moduleID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items, err := s.service.ListSubModulesByModule(r.Context(), moduleID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// handleTestCasesByModule lists the test cases of one module.
func (s *Server) handleTestCasesByModule(w http.ResponseWriter, r *http.Request) {
	moduleID, err := parseID(r, "moduleID")
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	items, err := s.service.ListTestCasesByModule(r.Context(), moduleID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}
