package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/http"
	"regexp"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ayush/auth-server/internal/logging"
	"github.com/ayush/auth-server/internal/models"
)

const maxBodyBytes = 1 << 20

// response is the envelope written by every auth endpoint.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// Handler holds auth-related HTTP handlers.
type Handler struct {
	svc    *Service
	logger *slog.Logger
}

func NewHandler(svc *Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the auth endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/sign-up", h.Register)
	r.Post("/sign-in", h.Login)
	r.Post("/find-user", h.Find)
	r.Post("/delete-user", h.Delete)
	r.Get("/get-user-tags", h.Tags)
}

// Register creates a new user.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRegister(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "invalid request body"})
		return
	}

	user, err := h.svc.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, "User Registration Failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "User Registration Successful", Data: user})
}

// Login authenticates a user.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeBody(w, r, &req, func(f formValues) {
		req.Username = f.get("username")
		req.Password = models.Password(f.get("password"))
	}); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "invalid request body"})
		return
	}

	user, err := h.svc.Login(r.Context(), req)
	if err != nil {
		h.fail(w, r, "Login Failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Login Successful", Data: user})
}

// Find returns a user by email.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.decodeRef(w, r)
	if !ok {
		return
	}
	user, err := h.svc.Find(r.Context(), ref.Username)
	if err != nil {
		h.fail(w, r, "Find User Failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "Found User", Data: user})
}

// Delete removes a user by email.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	ref, ok := h.decodeRef(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), ref.Username); err != nil {
		h.fail(w, r, "Delete User Failed", err)
		return
	}
	writeJSON(w, http.StatusOK, response{Success: true, Message: "User Deleted"})
}

// Tags lists the accepted user tags.
func (h *Handler) Tags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, response{Success: true, Message: "User Tags", Data: h.svc.Tags()})
}

func (h *Handler) decodeRef(w http.ResponseWriter, r *http.Request) (models.UserRef, bool) {
	var ref models.UserRef
	if err := decodeBody(w, r, &ref, func(f formValues) {
		ref.Username = f.get("username")
	}); err != nil || ref.Username == "" {
		writeJSON(w, http.StatusBadRequest, response{Message: "username is required"})
		return ref, false
	}
	return ref, true
}

// fail maps a service error onto a status code. Store and unknown errors are
// logged with their cause and reported with a generic message.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, prefix string, err error) {
	var ve *ValidationError
	switch Classify(err) {
	case KindValidation:
		errors.As(err, &ve)
		writeJSON(w, http.StatusBadRequest, response{
			Message: fmt.Sprintf("%s: invalid %s (%s)", prefix, ve.Field, ve.Rule),
		})
	case KindAlreadyExists:
		writeJSON(w, http.StatusConflict, response{Message: prefix + ": user already exists"})
	case KindNotFound:
		writeJSON(w, http.StatusNotFound, response{Message: prefix + ": user not found"})
	case KindPasswordMismatch:
		writeJSON(w, http.StatusUnauthorized, response{Message: prefix + ": password mismatch"})
	default:
		logging.LogError(r.Context(), h.logger, prefix, err)
		writeJSON(w, http.StatusInternalServerError, response{Message: prefix + ": internal error"})
	}
}

type formValues map[string][]string

func (f formValues) get(key string) string {
	if v := f[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}

// decodeBody reads JSON into dst, or calls fromForm for urlencoded and
// multipart bodies.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any, fromForm func(formValues)) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		if err := r.ParseForm(); err != nil {
			return err
		}
		fromForm(formValues(r.PostForm))
		return nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return err
		}
		fromForm(formValues(r.MultipartForm.Value))
		return nil
	}
	return json.NewDecoder(r.Body).Decode(dst)
}

var indexedTag = regexp.MustCompile(`^user_tags\[(\d+)\]$`)

func decodeRegister(w http.ResponseWriter, r *http.Request) (models.RegisterRequest, error) {
	var req models.RegisterRequest
	err := decodeBody(w, r, &req, func(f formValues) {
		req.FirstName = f.get("first_name")
		req.LastName = f.get("last_name")
		req.UserType = f.get("user_type")
		req.Email = f.get("email_id")
		req.Password = models.Password(f.get("password"))
		req.Tags = formTags(f)
	})
	return req, err
}

// formTags collects user_tags values, given either as repeated user_tags keys
// or as user_tags[N] keys ordered by N.
func formTags(f formValues) []string {
	tags := append([]string(nil), f["user_tags"]...)

	type indexed struct {
		n   int
		val string
	}
	var byIndex []indexed
	for key, vals := range f {
		m := indexedTag.FindStringSubmatch(key)
		if m == nil || len(vals) == 0 {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		byIndex = append(byIndex, indexed{n: n, val: vals[0]})
	}
	sort.Slice(byIndex, func(i, j int) bool { return byIndex[i].n < byIndex[j].n })
	for _, t := range byIndex {
		tags = append(tags, t.val)
	}
	return tags
}
