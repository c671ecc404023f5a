package handler

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"

	"github.com/go-storefront-gateway/internal/application/account"
	"github.com/go-storefront-gateway/internal/infrastructure/backend"
	"github.com/go-storefront-gateway/internal/pkg/validate"
)

// AccountHandler handles signup, signin, logout and session introspection.
type AccountHandler struct {
	svc      account.Service
	sessions SessionFactory
}

func NewAccountHandler(svc account.Service, sessions SessionFactory) *AccountHandler {
	return &AccountHandler{svc: svc, sessions: sessions}
}

// landingPath is where a successful form submission lands.
const landingPath = "/"

func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req backend.SignUpRequest
	form, err := decodeBody(r, &req, func(v url.Values) {
		req.Email, req.Password = v.Get("email"), v.Get("password")
		req.Name, req.Phone = v.Get("name"), v.Get("phone")
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.SignUp(r.Context(), req, h.sessions(w, r))
	if err != nil {
		writeError(w, errorStatus(err), errorMessage(err))
		return
	}
	if form {
		http.Redirect(w, r, landingPath, http.StatusSeeOther)
		return
	}
	env := AuthEnvelope{UserID: res.UserID, Authenticated: res.Authenticated, ConfirmationRequired: res.ConfirmationRequired}
	if res.ConfirmationRequired {
		env.Message = "Check your inbox to confirm your email."
	}
	writeJSON(w, http.StatusCreated, env)
}

func (h *AccountHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req backend.SignInRequest
	form, err := decodeBody(r, &req, func(v url.Values) {
		req.Email, req.Password = v.Get("email"), v.Get("password")
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	res, err := h.svc.SignIn(r.Context(), req, h.sessions(w, r))
	if err != nil {
		writeError(w, errorStatus(err), errorMessage(err))
		return
	}
	if form {
		http.Redirect(w, r, landingPath, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{UserID: res.UserID, Authenticated: true})
}

func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.svc.Logout(r.Context(), h.sessions(w, r))
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}

func (h *AccountHandler) Current(w http.ResponseWriter, r *http.Request) {
	cur := h.svc.Current(r.Context(), h.sessions(w, r))
	writeJSON(w, http.StatusOK, SessionEnvelope{
		Authenticated: cur.Authenticated,
		UserID:        cur.UserID,
		PendingEmail:  cur.PendingEmail,
		Profile:       cur.Profile,
	})
}

// decodeBody reads a JSON body into dst, or hands a form-encoded body to fromForm. form reports
// which of the two the request carried.
func decodeBody(r *http.Request, dst interface{}, fromForm func(url.Values)) (form bool, err error) {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/x-www-form-urlencoded" {
		if err := r.ParseForm(); err != nil {
			return true, err
		}
		fromForm(r.PostForm)
		return true, nil
	}
	return false, json.NewDecoder(r.Body).Decode(dst)
}
