package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/invaders/internal/common"
	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/gorilla/mux"
)

func (a *API) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	resp, err := a.credentials.Login(r.Context(), req.UsernameHash, req.PasswordHash)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) lookupCredential(w http.ResponseWriter, r *http.Request) {
	hash := r.URL.Query().Get("usernameHash")
	if hash == "" {
		a.writeError(w, r, common.ErrorValidation)
		return
	}

	resp, err := a.credentials.Lookup(r.Context(), hash)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) createCredential(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCredentialRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	c, err := a.credentials.Create(r.Context(), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	if err := a.credentials.ResetPassword(r.Context(), mux.Vars(r)["id"], req); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
