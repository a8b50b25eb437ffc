package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/gorilla/mux"
)

func (a *API) listPoints(w http.ResponseWriter, r *http.Request) {
	filter, ok := models.ParsePointFilter(r.URL.Query().Get("status"))
	if !ok {
		a.writeError(w, r, common.ErrorValidation)
		return
	}

	list, err := a.points.List(r.Context(), filter)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) searchPoints(w http.ResponseWriter, r *http.Request) {
	list, err := a.points.Search(r.Context(), r.URL.Query().Get("prefix"))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createPoint(w http.ResponseWriter, r *http.Request) {
	var in models.PointInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	p, err := a.points.Create(r.Context(), in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updatePoint(w http.ResponseWriter, r *http.Request) {
	var in models.PointInput
	if err := decodeJSON(w, r, &in); err != nil {
		a.writeError(w, r, err)
		return
	}

	p, err := a.points.Update(r.Context(), mux.Vars(r)["id"], in)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deletePoint(w http.ResponseWriter, r *http.Request) {
	if err := a.points.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
