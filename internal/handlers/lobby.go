// internal/handlers/lobby.go
package handlers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/premade/internal/errs"
	"github.com/jason-s-yu/premade/internal/finder"
	"github.com/jason-s-yu/premade/internal/membership"
	"github.com/jason-s-yu/premade/internal/models"
)

type createLobbyRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	GameMode       string     `json:"game_mode"`
	PreferredRoles []string   `json:"preferred_roles"`
	RankMin        string     `json:"required_rank_min"`
	RankMax        string     `json:"required_rank_max"`
	PlaystyleTags  []string   `json:"playstyle_tags"`
	MaxMembers     int        `json:"max_members"`
	ScheduledTime  *time.Time `json:"scheduled_time"`
}

func (req createLobbyRequest) input() (finder.CreateLobbyInput, error) {
	mode, err := models.ParseGameMode(req.GameMode)
	if err != nil {
		return finder.CreateLobbyInput{}, err
	}
	roles, err := models.ParseRoleSet(req.PreferredRoles)
	if err != nil {
		return finder.CreateLobbyInput{}, err
	}
	rankMin, err := models.ParseOptionalRank(req.RankMin)
	if err != nil {
		return finder.CreateLobbyInput{}, err
	}
	rankMax, err := models.ParseOptionalRank(req.RankMax)
	if err != nil {
		return finder.CreateLobbyInput{}, err
	}
	return finder.CreateLobbyInput{
		Title:          req.Title,
		Description:    req.Description,
		GameMode:       mode,
		PreferredRoles: roles,
		RankMin:        rankMin,
		RankMax:        rankMax,
		PlaystyleTags:  req.PlaystyleTags,
		MaxMembers:     req.MaxMembers,
		ScheduledTime:  req.ScheduledTime,
	}, nil
}

func (a *API) createLobby(w http.ResponseWriter, r *http.Request) {
	var req createLobbyRequest
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		a.fail(w, r, err)
		return
	}
	lobby, err := a.svc.CreateLobby(r.Context(), viewer(r), in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, lobby)
}

func (a *API) leaveLobby(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := pathID(r, "lobbyID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	m, err := a.svc.Members().Leave(r.Context(), lobbyID, viewer(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) kickMember(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := pathID(r, "lobbyID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req struct {
		UserID string `json:"user_id"`
	}
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	target, err := uuid.Parse(req.UserID)
	if err != nil {
		a.fail(w, r, errs.Validation("invalid user_id"))
		return
	}
	m, err := a.svc.Members().Kick(r.Context(), lobbyID, viewer(r), target)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (a *API) closeLobby(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := pathID(r, "lobbyID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	recs, err := a.svc.Members().Close(r.Context(), lobbyID, viewer(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if recs == nil {
		recs = []models.HistoryRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": recs})
}

func (a *API) lobbyDetail(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := pathID(r, "lobbyID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	d, err := a.svc.Members().Detail(r.Context(), lobbyID)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (a *API) participants(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := pathID(r, "lobbyID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	ps, err := a.svc.Members().Participants(r.Context(), lobbyID, viewer(r))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if ps == nil {
		ps = []membership.Participant{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"participants": ps})
}

func (a *API) submitEvaluations(w http.ResponseWriter, r *http.Request) {
	lobbyID, err := pathID(r, "lobbyID")
	if err != nil {
		a.fail(w, r, err)
		return
	}
	var req struct {
		Evaluations []membership.EvaluationInput `json:"evaluations"`
	}
	if err := decode(r, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	evals, err := a.svc.Members().SubmitEvaluations(r.Context(), lobbyID, viewer(r), req.Evaluations)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"evaluations": evals})
}
