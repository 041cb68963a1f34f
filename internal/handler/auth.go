package handler

import (
	"net/http"

	"github.com/sheetal/scoops-api/internal/domain/auth"
	"github.com/sheetal/scoops-api/internal/domain/business"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerRequest struct {
	Username      string `json:"username"`
	Password      string `json:"password"`
	BusinessName  string `json:"business_name"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type profileRequest struct {
	Name          *string `json:"name"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
}

// login handles POST /api/auth/login. Bad credentials produce the same
// message whether the username is unknown or the password is wrong.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	u, err := h.authSvc.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserView(u))
}

// register handles POST /api/auth/register: creates a business and its
// customer account in one step.
func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	u, err := h.authSvc.Register(r.Context(), auth.RegisterRequest{
		Username:      req.Username,
		Password:      req.Password,
		BusinessName:  req.BusinessName,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, toUserView(u))
}

// me handles GET /api/auth/me.
func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if u == nil {
		writeDomainError(w, r, auth.ErrUnauthenticated)
		return
	}
	writeJSON(w, r, http.StatusOK, toUserView(u))
}

// updateProfile handles PATCH /api/auth/me: partial update of the caller's
// linked business contact details.
func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if u == nil {
		writeDomainError(w, r, auth.ErrUnauthenticated)
		return
	}

	var req profileRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "invalid JSON body")
		return
	}

	b, err := h.authSvc.UpdateProfile(r.Context(), u, business.ProfileUpdate{
		Name:          req.Name,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
	})
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	u.BusinessName = b.Name
	writeJSON(w, r, http.StatusOK, toUserView(u))
}

// listBusinesses handles GET /api/businesses/. Admin-only.
func (h *Handler) listBusinesses(w http.ResponseWriter, r *http.Request) {
	u, err := h.caller(r)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	list, err := h.authSvc.ListBusinesses(r.Context(), u)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	views := make([]businessView, len(list))
	for i := range list {
		views[i] = toBusinessView(&list[i])
	}
	writeJSON(w, r, http.StatusOK, views)
}
