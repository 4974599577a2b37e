package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tobiasgrant/tasksync/internal/models"
)

// respondJSON writes a JSON body with the given status.
func (s *Server) respondJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.WithError(err).Error("Encode response failed")
	}
}

// respondError writes the JSON error envelope the client transport decodes.
func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}

// storeStatus maps a store failure to an HTTP status.
func storeStatus(err error) int {
	var terr *models.TransportError
	if errors.As(err, &terr) && terr.StatusCode != 0 {
		return terr.StatusCode
	}
	return http.StatusInternalServerError
}

// broadcast pushes the current collection to stream subscribers.
func (s *Server) broadcast(r *http.Request) {
	tasks, err := s.store.GetAll(r.Context())
	if err != nil {
		s.logger.WithError(err).Warn("Snapshot broadcast skipped")
		return
	}
	s.hub.Broadcast(tasks)
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.GetAll(r.Context())
	if err != nil {
		s.respondError(w, storeStatus(err), models.ErrorMessage(err))
		return
	}
	s.respondJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	task, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, storeStatus(err), models.ErrorMessage(err))
		return
	}
	s.respondJSON(w, http.StatusOK, task)
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input models.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.validate.Struct(input); err != nil {
		s.respondError(w, http.StatusBadRequest, "title must be 2-100 characters")
		return
	}

	task, err := s.store.Create(r.Context(), input)
	if err != nil {
		s.respondError(w, storeStatus(err), models.ErrorMessage(err))
		return
	}

	s.logger.WithField("task_id", task.ID).Info("Task created")
	s.respondJSON(w, http.StatusCreated, task)
	s.broadcast(r)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var patch models.UpdateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if patch.Empty() {
		s.respondError(w, http.StatusBadRequest, models.ErrEmptyPatch.Error())
		return
	}

	if err := s.validate.Struct(patch); err != nil {
		s.respondError(w, http.StatusBadRequest, "title must be 2-100 characters")
		return
	}

	task, err := s.store.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		s.respondError(w, storeStatus(err), models.ErrorMessage(err))
		return
	}

	s.respondJSON(w, http.StatusOK, task)
	s.broadcast(r)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.store.Delete(r.Context(), id); err != nil {
		s.respondError(w, storeStatus(err), models.ErrorMessage(err))
		return
	}

	s.logger.WithField("task_id", id).Info("Task deleted")
	s.respondJSON(w, http.StatusNoContent, nil)
	s.broadcast(r)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.store.GetAll(r.Context())
	if err != nil {
		s.respondError(w, storeStatus(err), models.ErrorMessage(err))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	s.hub.Register(conn, tasks)

	// Drain control frames; the stream is push-only.
	go func() {
		defer s.hub.Unregister(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
