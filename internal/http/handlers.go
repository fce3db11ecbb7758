package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"maple-boss-api/internal/bosscode"
	"maple-boss-api/internal/models"
	"maple-boss-api/internal/service"
	"maple-boss-api/internal/store"

	"github.com/go-chi/chi/v5"
)

const maxBodyBytes = 1 << 20

type Handlers struct {
	svc *service.Service
}

func NewHandlers(svc *service.Service) *Handlers { return &Handlers{svc: svc} }

func (h *Handlers) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": "v0.2.0",
	})
}

func (h *Handlers) Codes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, bosscode.Table())
}

func (h *Handlers) DecodeCode(w http.ResponseWriter, r *http.Request) {
	id, err := bosscode.DecodeBossCode(chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, id)
}

// Registry always answers with the envelope, including on failure, so
// remote registry clients can read the error message.
func (h *Handlers) Registry(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Registry(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.RegistryEnvelope{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, models.RegistryEnvelope{Success: true, Data: list})
}

func (h *Handlers) CrystalValue(w http.ResponseWriter, r *http.Request) {
	boss, diff, ok := bossParams(w, r)
	if !ok {
		return
	}
	v, err := h.svc.CrystalValue(r.Context(), boss, diff)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boss": boss, "difficulty": diff, "value": v})
}

func (h *Handlers) RegistryID(w http.ResponseWriter, r *http.Request) {
	boss, diff, ok := bossParams(w, r)
	if !ok {
		return
	}
	id, err := h.svc.RegistryID(r.Context(), boss, diff)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"boss": boss, "difficulty": diff, "id": id})
}

func (h *Handlers) CrystalHistory(w http.ResponseWriter, r *http.Request) {
	boss, diff, ok := bossParams(w, r)
	if !ok {
		return
	}
	limit := 25
	if s := r.URL.Query().Get("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	list, err := h.svc.CrystalHistory(r.Context(), boss, diff, limit)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type entriesRequest struct {
	Entries []models.BossLoadoutEntry `json:"entries"`
}

type decodeRequest struct {
	Config string `json:"config"`
}

func (h *Handlers) Encode(w http.ResponseWriter, r *http.Request) {
	var req entriesRequest
	if !readJSON(w, r, &req) {
		return
	}
	cfg, dropped := h.svc.Encode(r.Context(), req.Entries)
	writeJSON(w, http.StatusOK, map[string]any{"config": cfg, "dropped": nonNil(dropped)})
}

func (h *Handlers) Decode(w http.ResponseWriter, r *http.Request) {
	var req decodeRequest
	if !readJSON(w, r, &req) {
		return
	}
	entries, dropped := h.svc.Decode(req.Config)
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "dropped": nonNil(dropped)})
}

func (h *Handlers) Characters(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.Characters(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *Handlers) CharacterBosses(w http.ResponseWriter, r *http.Request) {
	loadout, err := h.svc.CharacterBosses(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	loadout.Dropped = nonNil(loadout.Dropped)
	writeJSON(w, http.StatusOK, loadout)
}

func (h *Handlers) SaveCharacterBosses(w http.ResponseWriter, r *http.Request) {
	var req entriesRequest
	if !readJSON(w, r, &req) {
		return
	}
	res, err := h.svc.SaveCharacterBosses(r.Context(), chi.URLParam(r, "name"), req.Entries)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res.Dropped = nonNil(res.Dropped)
	writeJSON(w, http.StatusOK, res)
}

func (h *Handlers) DeleteCharacter(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCharacter(r.Context(), chi.URLParam(r, "name")); err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RefreshRegistry(r.Context())
	if errors.Is(err, service.ErrRemoteRegistry) {
		writeError(w, statusFor(err), err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "updated": n})
}

// bossParams reads boss and difficulty query parameters, accepting any
// casing, and writes a 400 when either is missing or unknown.
func bossParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	q := r.URL.Query()
	for _, p := range []string{"boss", "difficulty"} {
		if q.Get(p) == "" {
			writeError(w, http.StatusBadRequest, errMissing(p))
			return "", "", false
		}
	}
	boss, ok := bosscode.CanonicalBossName(q.Get("boss"))
	if !ok {
		writeError(w, http.StatusBadRequest, badReq("unknown boss: "+q.Get("boss")))
		return "", "", false
	}
	diff, ok := bosscode.CanonicalDifficulty(q.Get("difficulty"))
	if !ok {
		writeError(w, http.StatusBadRequest, badReq("unknown difficulty: "+q.Get("difficulty")))
		return "", "", false
	}
	return boss, diff, true
}

func readJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, badReq("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

func nonNil(d bosscode.Diagnostics) bosscode.Diagnostics {
	if d == nil {
		return bosscode.Diagnostics{}
	}
	return d
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, bosscode.ErrNotInRegistry):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRemoteRegistry):
		return http.StatusConflict
	case errors.As(err, new(badReq)):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

type badReq string

func (e badReq) Error() string { return string(e) }

func errMissing(p string) error { return badReq("missing parameter: " + p) }
