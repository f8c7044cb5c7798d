package handler

import (
	"net/http"
	"strings"

	"tramboard/internal/notify"
	"tramboard/internal/query"
	"tramboard/internal/resolver"
	"tramboard/internal/templates"
)

// Board serves the departure board.
// Without q it shows the search form and the stop lists. With q it runs a
// query; choice, when present, answers the disambiguation for several matches.
func (h *Handler) Board(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	data := templates.Board{
		Term: q.Get("q"),
		Msgs: h.msgs,
	}

	title := "tramboard"
	if q.Has("q") {
		// The page being rendered replaces the one that submitted the query,
		// so the notification waits for this page's event stream.
		ctx := notify.WithTarget(r.Context(), notify.Target{Client: clientID(w, r), NextPage: true})
		res := h.orch.Submit(ctx, data.Term, disambiguator(q.Get("choice")))
		logQuery(ctx, data.Term, res)
		data.Result = &res
		if res.Stop.Name != "" {
			title = res.Stop.Name + " · tramboard"
		}
	}

	// Lists are read after the query so a successful one shows up in recent.
	data.Favorites = h.orch.Favorites()
	for _, name := range h.orch.Recent() {
		data.Recent = append(data.Recent, templates.RecentItem{Name: name, Favorite: h.orch.IsFavorite(name)})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.BoardPage(h.page(title), data).Render(r.Context(), w); err != nil {
		h.logger.Error("rendering board", "error", err)
	}
}

// ToggleFavorite handles the star button of a recent stop. Form posts land
// back on the bare board so the redirect does not run the query again.
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name != "" {
		h.orch.ToggleFavorite(r.Context(), name)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// RemoveFavorite handles the remove button of a favorite.
func (h *Handler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	if name := strings.TrimSpace(r.FormValue("name")); name != "" {
		h.orch.RemoveFavorite(r.Context(), name)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// ClearRecent empties the recent list.
func (h *Handler) ClearRecent(w http.ResponseWriter, r *http.Request) {
	h.orch.ClearRecent(r.Context())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// disambiguator answers with choice, or nil when no choice was submitted so
// the result lists the candidates instead.
func disambiguator(choice string) resolver.Disambiguator {
	if strings.TrimSpace(choice) == "" {
		return nil
	}
	return resolver.Choice(choice)
}

// statusFor maps a query outcome to an HTTP status for the JSON API.
func statusFor(k query.Kind) int {
	switch k {
	case query.EmptyTerm:
		return http.StatusBadRequest
	case query.NoMatch:
		return http.StatusNotFound
	case query.InvalidSelection:
		return http.StatusUnprocessableEntity
	case query.NetworkError:
		return http.StatusBadGateway
	default:
		return http.StatusOK
	}
}
