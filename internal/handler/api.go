package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"tramboard/internal/notify"
)

// ErrorResponse is the body of a failed API call.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Stop is a directory entry as returned by the API.
type Stop struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// RecentResponse is the body of GET /api/recent.
type RecentResponse struct {
	Recent []string `json:"recent"`
}

// FavoritesResponse is the body of GET /api/favorites.
type FavoritesResponse struct {
	Favorites []string `json:"favorites"`
}

type favoriteRequest struct {
	Name string `json:"name"`
}

// FavoriteResponse reports a favorite mutation.
type FavoriteResponse struct {
	Name      string   `json:"name"`
	Favorite  bool     `json:"favorite"`
	Favorites []string `json:"favorites"`
}

// APIDepartures runs a query and returns the query.Result as JSON. The
// notification goes to the calling client's open event streams.
func (h *Handler) APIDepartures(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ctx := notify.WithTarget(r.Context(), notify.Target{Client: clientID(w, r)})
	res := h.orch.Submit(ctx, q.Get("q"), disambiguator(q.Get("choice")))
	logQuery(ctx, q.Get("q"), res)
	h.writeJSONStatus(w, statusFor(res.Kind), res)
}

// APIStops lists the directory stops matching q, or all of them.
func (h *Handler) APIStops(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))

	stops := []Stop{}
	if term == "" {
		for _, e := range h.dir.Entries() {
			stops = append(stops, Stop{Name: e.Name, ID: e.ID})
		}
	} else {
		for _, name := range h.dir.Match(term) {
			id, _ := h.dir.Lookup(name)
			stops = append(stops, Stop{Name: name, ID: id})
		}
	}
	h.writeJSON(w, stops)
}

// APIRecent returns the recent stops.
func (h *Handler) APIRecent(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, RecentResponse{Recent: nonNil(h.orch.Recent())})
}

// APIClearRecent empties the recent stops.
func (h *Handler) APIClearRecent(w http.ResponseWriter, r *http.Request) {
	h.orch.ClearRecent(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

// APIFavorites returns the favorite stops.
func (h *Handler) APIFavorites(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, FavoritesResponse{Favorites: nonNil(h.orch.Favorites())})
}

// APIToggleFavorite flips the favorite state of the posted name.
func (h *Handler) APIToggleFavorite(w http.ResponseWriter, r *http.Request) {
	name, ok := h.readName(w, r)
	if !ok {
		return
	}
	fav := h.orch.ToggleFavorite(r.Context(), name)
	h.writeJSON(w, FavoriteResponse{Name: name, Favorite: fav, Favorites: nonNil(h.orch.Favorites())})
}

// APIRemoveFavorite removes the posted name from the favorites.
func (h *Handler) APIRemoveFavorite(w http.ResponseWriter, r *http.Request) {
	name, ok := h.readName(w, r)
	if !ok {
		return
	}
	h.orch.RemoveFavorite(r.Context(), name)
	h.writeJSON(w, FavoriteResponse{Name: name, Favorite: false, Favorites: nonNil(h.orch.Favorites())})
}

func (h *Handler) readName(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req favoriteRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		h.writeError(w, "invalid JSON body", http.StatusBadRequest)
		return "", false
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.writeError(w, "missing name", http.StatusBadRequest)
		return "", false
	}
	return name, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, data any) {
	h.writeJSONStatus(w, http.StatusOK, data)
}

func (h *Handler) writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("encoding JSON response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, message string, status int) {
	h.writeJSONStatus(w, status, ErrorResponse{Error: message})
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
