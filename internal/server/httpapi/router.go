package httpapi

import (
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/invaders/internal/logging"
	"github.com/gorilla/mux"
)

type API struct {
	credentials CredentialService
	profiles    ProfileService
	points      PointService
	observer    RequestObserver
	logger      logging.Logger
}

// NewAPI wires the handlers. observer may be nil.
func NewAPI(cs CredentialService, ps ProfileService, pts PointService, observer RequestObserver, l logging.Logger) *API {
	return &API{
		credentials: cs,
		profiles:    ps,
		points:      pts,
		observer:    observer,
		logger:      l.With("module", "http_api"),
	}
}

func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.Use(a.requestID, a.observe)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprintln(w, "OK")
	}).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/credentials/login", a.login).Methods("POST")
	api.HandleFunc("/credentials/lookup", a.lookupCredential).Methods("GET")
	api.HandleFunc("/credentials", a.createCredential).Methods("POST")
	api.HandleFunc("/credentials/{id}/password", a.resetPassword).Methods("PUT")

	protected := api.NewRoute().Subrouter()
	protected.Use(a.authenticate)

	protected.HandleFunc("/profiles", a.listProfiles).Methods("GET")
	protected.HandleFunc("/profiles", a.createProfile).Methods("POST")
	protected.HandleFunc("/profiles/{id}", a.updateProfile).Methods("PUT")
	protected.HandleFunc("/profiles/{id}", a.deleteProfile).Methods("DELETE")
	protected.HandleFunc("/profiles/{id}/avatar", a.requestAvatarUpload).Methods("POST")

	protected.HandleFunc("/points", a.listPoints).Methods("GET")
	protected.HandleFunc("/points/search", a.searchPoints).Methods("GET")
	protected.HandleFunc("/points", a.createPoint).Methods("POST")
	protected.HandleFunc("/points/{id}", a.updatePoint).Methods("PUT")
	protected.HandleFunc("/points/{id}", a.deletePoint).Methods("DELETE")

	return r
}
