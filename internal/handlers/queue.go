package handlers

import (
	"net/http"

	"github.com/jason-s-yu/premade/internal/finder"
	"github.com/jason-s-yu/premade/internal/models"
)

type enterQueueRequest struct {
	GameMode       string   `json:"game_mode"`
	PreferredRoles []string `json:"preferred_roles"`
	RankMin        string   `json:"required_rank_min"`
	RankMax        string   `json:"required_rank_max"`
	PlaystyleTags  []string `json:"playstyle_tags"`
}

func (req enterQueueRequest) input() (finder.EnterQueueInput, error) {
	mode, err := models.ParseGameMode(req.GameMode)
	if err != nil {
		return finder.EnterQueueInput{}, err
	}
	roles, err := models.ParseRoleSet(req.PreferredRoles)
	if err != nil {
		return finder.EnterQueueInput{}, err
	}
	rankMin, err := models.ParseOptionalRank(req.RankMin)
	if err != nil {
		return finder.EnterQueueInput{}, err
	}
	rankMax, err := models.ParseOptionalRank(req.RankMax)
	if err != nil {
		return finder.EnterQueueInput{}, err
	}
	return finder.EnterQueueInput{
		GameMode:       mode,
		PreferredRoles: roles,
		RankMin:        rankMin,
		RankMax:        rankMax,
		PlaystyleTags:  req.PlaystyleTags,
	}, nil
}

func (a *API) enterQueue(w http.ResponseWriter, r *http.Request) {
	var req enterQueueRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	entry, err := a.svc.EnterQueue(r.Context(), viewer(r), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (a *API) leaveQueue(w http.ResponseWriter, r *http.Request) {
	if err := a.svc.LeaveQueue(r.Context(), viewer(r)); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
