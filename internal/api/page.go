package api

import (
	"embed"
	"html/template"
	"net/http"

	"bookingrisk/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type pageData struct {
	Title     string
	Fields    []fieldView
	Result    *models.Prediction
	Error     string
	RequestID string
}

type fieldView struct {
	models.Field
	Value string
}

func (f fieldView) IsChoice() bool {
	return f.Kind == models.KindChoice || f.Kind == models.KindFlag
}

func (s *HTTPServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	in := s.loadInput(r, sessionID)
	s.render(w, r, http.StatusOK, in, nil, "")
}

// handleSubmit runs the "Predict Cancellation" action: it stores the
// submitted values for the session and renders the result under the form.
func (s *HTTPServer) handleSubmit(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, s.loadInput(r, sessionID), nil, "could not read the submitted form")
		return
	}

	in := models.DefaultInput()
	for _, f := range models.Fields() {
		raw := r.PostForm.Get(f.Name)
		if raw == "" {
			continue
		}
		if err := in.Set(f.Name, raw); err != nil {
			s.render(w, r, http.StatusBadRequest, s.loadInput(r, sessionID), nil, err.Error())
			return
		}
	}
	in.Clamp()

	if s.deps.Forms != nil {
		if err := s.deps.Forms.SaveInput(r.Context(), sessionID, in); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("form state not saved")
		}
	}

	if !s.allowPrediction(r) {
		s.render(w, r, http.StatusTooManyRequests, in, nil, "Too many predictions, please wait a minute.")
		return
	}

	prediction, err := s.deps.Predictor.Predict(r.Context(), in)
	if err != nil {
		status, msg := predictionErrorStatus(err)
		zerolog.Ctx(r.Context()).Error().Err(err).Int("status", status).Msg("prediction request failed")
		s.render(w, r, status, in, nil, msg)
		return
	}

	s.render(w, r, http.StatusOK, in, prediction, "")
}

func (s *HTTPServer) handleReset(w http.ResponseWriter, r *http.Request) {
	sessionID := s.sessionID(w, r)
	if s.deps.Forms != nil {
		if err := s.deps.Forms.Reset(r.Context(), sessionID); err != nil {
			zerolog.Ctx(r.Context()).Warn().Err(err).Msg("form state not cleared")
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *HTTPServer) loadInput(r *http.Request, sessionID string) models.BookingInput {
	if s.deps.Forms == nil {
		return models.DefaultInput()
	}
	return s.deps.Forms.LoadInput(r.Context(), sessionID)
}

func (s *HTTPServer) render(w http.ResponseWriter, r *http.Request, status int, in models.BookingInput, result *models.Prediction, errMsg string) {
	catalogue := models.Fields()
	fields := make([]fieldView, 0, len(catalogue))
	for _, f := range catalogue {
		fields = append(fields, fieldView{Field: f, Value: in.Get(f.Name)})
	}

	data := pageData{
		Title:     s.cfg.Title,
		Fields:    fields,
		Result:    result,
		Error:     errMsg,
		RequestID: requestIDFrom(r.Context()),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("render page")
	}
}

// sessionID returns the browser session from the cookie, issuing a new one
// when it is missing or malformed.
func (s *HTTPServer) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(s.session.CookieName); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     s.session.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   s.session.TTLSeconds,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}
