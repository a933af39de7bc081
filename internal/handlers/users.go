package handlers

import (
	"net/http"

	"github.com/jason-s-yu/premade/internal/finder"
	"github.com/jason-s-yu/premade/internal/models"
)

func (a *API) history(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	recs, err := a.svc.History(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []models.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": recs})
}

func (a *API) reputation(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	rep, err := a.svc.Reputation(r.Context(), userID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (a *API) profile(w http.ResponseWriter, r *http.Request) {
	p, err := a.svc.Profile(r.Context(), viewer(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type profileRequest struct {
	Nickname        string   `json:"nickname"`
	IconURL         string   `json:"icon_url"`
	RiotID          string   `json:"riot_id"`
	RolesPreference []string `json:"roles_preference"`
	PlaystyleTags   []string `json:"playstyle_tags"`
	RankSolo        string   `json:"rank_solo"`
	RankFlex        string   `json:"rank_flex"`
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	roles, err := models.ParseRoleSet(req.RolesPreference)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	solo, err := models.ParseOptionalRank(req.RankSolo)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	flex, err := models.ParseOptionalRank(req.RankFlex)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	p, err := a.svc.UpdateProfile(r.Context(), viewer(r), finder.ProfileInput{
		Nickname:        req.Nickname,
		IconURL:         req.IconURL,
		RiotID:          req.RiotID,
		RolesPreference: roles,
		PlaystyleTags:   req.PlaystyleTags,
		RankSolo:        solo,
		RankFlex:        flex,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
