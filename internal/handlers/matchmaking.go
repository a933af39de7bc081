// internal/handlers/matchmaking.go
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/matchmaking"
)

// detect runs one detection cycle on demand and returns the open proposals.
func (a *API) detect(w http.ResponseWriter, r *http.Request) {
	out, err := a.svc.Detect(r.Context(), viewer(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if out.Proposals == nil {
		out.Proposals = []matchmaking.MatchProposal{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) accept(w http.ResponseWriter, r *http.Request) {
	m, err := a.svc.Accept(r.Context(), viewer(r), chi.URLParam(r, "proposalID"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) reject(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.Reject(r.Context(), viewer(r), chi.URLParam(r, "proposalID")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// estimate forecasts a lobby fill time when ?lobby_id is given, otherwise the
// viewer's queue wait.
func (a *API) estimate(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := optionalID(r.URL.Query().Get("lobby_id"), "lobby_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}

	var f matchmaking.Forecast
	if lobbyID != nil {
		f, err = a.svc.EstimateForLobby(r.Context(), *lobbyID)
	} else {
		f, err = a.svc.EstimateForQueue(r.Context(), viewer(r))
	}
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (a *API) watch(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LobbyID string `json:"lobby_id"`
	}
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	lobbyID, err := optionalID(req.LobbyID, "lobby_id")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	wt := a.watchers.Watch(viewer(r), lobbyID)
	writeJSON(w, http.StatusAccepted, wt.Status())
}

func (a *API) watchStatus(w http.ResponseWriter, r *http.Request) {
	wt, ok := a.watchers.Get(viewer(r))
	if !ok {
		a.fail(w, r, errs.NotFound("no active watch"))
		return
	}
	writeJSON(w, http.StatusOK, wt.Status())
}

func (a *API) unwatch(w http.ResponseWriter, r *http.Request) {
	if !a.watchers.Unwatch(viewer(r)) {
		a.fail(w, r, errs.NotFound("no active watch"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
