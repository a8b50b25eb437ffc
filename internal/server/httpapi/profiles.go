package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/invaders/internal/models"
	"github.com/gorilla/mux"
)

func (a *API) listProfiles(w http.ResponseWriter, r *http.Request) {
	list, err := a.profiles.List(r.Context(), CredentialIDFrom(r.Context()))
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (a *API) createProfile(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	p, err := a.profiles.Create(r.Context(), CredentialIDFrom(r.Context()), req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	p, err := a.profiles.Update(r.Context(), CredentialIDFrom(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (a *API) deleteProfile(w http.ResponseWriter, r *http.Request) {
	if err := a.profiles.Delete(r.Context(), CredentialIDFrom(r.Context()), mux.Vars(r)["id"]); err != nil {
		a.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) requestAvatarUpload(w http.ResponseWriter, r *http.Request) {
	var req models.AvatarUploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		a.writeError(w, r, err)
		return
	}

	resp, err := a.profiles.RequestAvatarUpload(r.Context(), CredentialIDFrom(r.Context()), mux.Vars(r)["id"], req)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
