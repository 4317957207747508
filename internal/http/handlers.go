package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"paghetta/internal/core"
	applog "paghetta/internal/log"
)

// Messages shown in the page. Store failures never expose the cause.
const (
	msgEmptyPerson   = "Please enter a name."
	msgPersonTooLong = "That name is too long."
	msgUnknownTask   = "Please pick a task from the list."
	msgInvalidInput  = "Please check the form and try again."
	msgStoreWrite    = "Could not record the chore. Please try again."
	msgStoreRead     = "Could not load the latest records. Please try again."
	msgRateLimited   = "Too many submissions. Please wait a minute and try again."
)

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	JSONResponse(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady checks templates and the store. Remote sheets are not pinged.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]string)

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["templates"] = "ok"
	}

	if s.service == nil {
		checks["store"] = "not_configured"
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else if err := s.service.Ready(ctx); err != nil {
		checks["store"] = "failed: " + err.Error()
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	} else {
		checks["store"] = "ok"
	}

	JSONResponse(httpStatus, map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

type taskOption struct {
	Task   string
	Amount int64
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Templates not loaded",
			applog.FieldPath, r.URL.Path,
			applog.FieldErrorType, applog.ErrorTypeConfiguration)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	items := s.service.Prices().Items()
	data := struct {
		Tasks       []taskOption
		RecentLimit int
	}{RecentLimit: s.service.RecentLimit()}
	for _, it := range items {
		data.Tasks = append(data.Tasks, taskOption{Task: it.Task, Amount: it.Amount})
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logger.WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldOperation, applog.OpRender)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	NewHTMXResponse().BodyHTML(buf.String()).Write(w)
}

// handleCreateChore records one chore. Validation problems answer 422 and
// store failures 500; the page stays usable in both cases.
func (s *Server) handleCreateChore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	form, errResp := ParseChoreForm(w, r)
	if errResp != nil {
		errResp.Write(w)
		return
	}

	res, err := s.service.Submit(ctx, form.Person, form.Task)
	if err != nil {
		var ve *core.ValidationError
		switch {
		case errors.As(err, &ve):
			logger.WarnContext(ctx, "Chore rejected",
				applog.NewFields().
					WithChore(form.Person, form.Task, 0).
					WithError(err).
					WithErrorType(applog.ErrorTypeValidation).
					ToSlice()...)
			msg := validationMessage(ve)
			if wantsJSON(r) {
				JSONResponse(http.StatusUnprocessableEntity, map[string]string{"error": msg, "field": ve.Field}).Write(w)
				return
			}
			WarningResponse(http.StatusUnprocessableEntity, msg).
				TriggerNotification(NotificationWarning, msg, 4000).
				Write(w)
		default:
			applog.NewStructuredLogger(logger).LogError(ctx, "Chore not recorded", err,
				applog.ComponentChores, applog.OpSubmit,
				applog.NewFields().
					WithChore(form.Person, form.Task, 0).
					WithErrorType(applog.ErrorTypeStore))
			if wantsJSON(r) {
				JSONResponse(http.StatusInternalServerError, map[string]string{"error": msgStoreWrite}).Write(w)
				return
			}
			InternalServerError(msgStoreWrite).
				TriggerErrorNotification(msgStoreWrite).
				Write(w)
		}
		return
	}

	e := res.Event
	if wantsJSON(r) {
		JSONResponse(http.StatusOK, map[string]interface{}{
			"timestamp": core.FormatTimestamp(e.Timestamp),
			"task":      e.Task,
			"amount":    e.Amount,
			"person":    e.Person,
			"ref":       res.Ref,
		}).Write(w)
		return
	}

	body, err := s.render("chore_result.html", struct {
		Person, Task string
		Amount       int64
		Timestamp    string
	}{e.Person, e.Task, e.Amount, core.FormatTimestamp(e.Timestamp)})
	if err != nil {
		logger.WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Chore result render failed",
			applog.FieldError, err,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldOperation, applog.OpRender)
		body = `<div class="success" role="status">` + formatAmount(s.currency, e.Amount) + `</div>`
	}

	NewHTMXResponse().
		TriggerChoreCreated(e.Person, e.Task, e.Amount).
		TriggerFormReset().
		TriggerSuccessNotification(fmt.Sprintf("%s: %s recorded", e.Person, e.Task)).
		BodyHTML(body).
		Write(w)
}

func validationMessage(ve *core.ValidationError) string {
	switch {
	case errors.Is(ve, core.ErrEmptyPerson):
		return msgEmptyPerson
	case errors.Is(ve, core.ErrPersonTooLong):
		return msgPersonTooLong
	case errors.Is(ve, core.ErrUnknownTask):
		return msgUnknownTask
	default:
		return msgInvalidInput
	}
}

type summaryView struct {
	Empty      bool
	Error      string
	Totals     []core.PersonTotal
	Recent     []recentRow
	GrandTotal int64
}

type recentRow struct {
	Timestamp string
	Task      string
	Amount    int64
	Person    string
}

func newSummaryView(sum core.Summary) summaryView {
	v := summaryView{
		Empty:      sum.Empty,
		Totals:     sum.Totals,
		GrandTotal: sum.GrandTotal(),
	}
	for _, e := range sum.Recent {
		v.Recent = append(v.Recent, recentRow{
			Timestamp: core.FormatTimestamp(e.Timestamp),
			Task:      e.Task,
			Amount:    e.Amount,
			Person:    e.Person,
		})
	}
	return v
}

// handleSummaryFragment renders the "show latest" partial: an empty-state
// notice, or per-person totals and the recent rows. On a store failure only
// the error notice is rendered.
func (s *Server) handleSummaryFragment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := applog.FromContext(ctx)

	status := http.StatusOK
	var view summaryView
	sum, err := s.service.Summarize(ctx)
	if err != nil {
		applog.NewStructuredLogger(logger).LogError(ctx, "Summary read failed", err,
			applog.ComponentChores, applog.OpSummarize,
			applog.NewFields().WithErrorType(applog.ErrorTypeStore))
		status = http.StatusInternalServerError
		view = summaryView{Error: msgStoreRead}
	} else {
		view = newSummaryView(sum)
	}

	body, rerr := s.render("summary.html", view)
	if rerr != nil {
		logger.WithComponent(applog.ComponentTemplate).ErrorContext(ctx, "Summary render failed",
			applog.FieldError, rerr,
			applog.FieldErrorType, applog.ErrorTypeInternal,
			applog.FieldOperation, applog.OpRender)
		InternalServerError(msgStoreRead).Write(w)
		return
	}
	NewHTMXResponse().Status(status).BodyHTML(body).Write(w)
}

type summaryJSON struct {
	Empty      bool             `json:"empty"`
	Totals     []personJSON     `json:"totals"`
	Recent     []choreJSON      `json:"recent"`
	GrandTotal int64            `json:"grand_total"`
	Prices     []core.PriceItem `json:"prices,omitempty"`
}

type personJSON struct {
	Person string `json:"person"`
	Total  int64  `json:"total"`
}

type choreJSON struct {
	Timestamp string `json:"timestamp"`
	Task      string `json:"task"`
	Amount    int64  `json:"amount"`
	Person    string `json:"person"`
}

func (s *Server) handleSummaryJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sum, err := s.service.Summarize(ctx)
	if err != nil {
		applog.NewStructuredLogger(applog.FromContext(ctx)).LogError(ctx, "Summary read failed", err,
			applog.ComponentChores, applog.OpSummarize,
			applog.NewFields().WithErrorType(applog.ErrorTypeStore))
		JSONResponse(http.StatusInternalServerError, map[string]string{"error": msgStoreRead}).Write(w)
		return
	}

	out := summaryJSON{
		Empty:      sum.Empty,
		Totals:     []personJSON{},
		Recent:     []choreJSON{},
		GrandTotal: sum.GrandTotal(),
	}
	if r.URL.Query().Get("prices") == "1" {
		out.Prices = s.service.Prices().Items()
	}
	for _, t := range sum.Totals {
		out.Totals = append(out.Totals, personJSON{Person: t.Person, Total: t.Total})
	}
	for _, e := range sum.Recent {
		out.Recent = append(out.Recent, choreJSON{
			Timestamp: core.FormatTimestamp(e.Timestamp),
			Task:      e.Task,
			Amount:    e.Amount,
			Person:    e.Person,
		})
	}
	JSONResponse(http.StatusOK, out).Write(w)
}

func (s *Server) handleRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldPath, r.URL.Path)
	TooManyRequestsError(msgRateLimited).Write(w)
}

func (s *Server) render(name string, data interface{}) (string, error) {
	if s.templates == nil {
		return "", errors.New("templates not loaded")
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
