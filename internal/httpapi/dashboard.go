package httpapi

import (
    "errors"
    "net/http"

    "github.com/tinoosan/escrow/internal/errs"
    "github.com/tinoosan/escrow/internal/escrow"
    "github.com/tinoosan/escrow/internal/view"
)

// GET /v1/dashboard?email=
func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
    v, err := s.svc.Dashboard(r.Context(), emailFrom(r.Context()))
    if err != nil { s.writeServiceErr(w, r, err); return }
    toJSON(w, http.StatusOK, toDashboardResponse(v))
}

// GET /v1/dashboard/balance-sheet?email=
func (s *Server) getBalanceSheet(w http.ResponseWriter, r *http.Request) {
    sh, err := s.svc.BalanceSheet(r.Context(), emailFrom(r.Context()))
    if err != nil { s.writeServiceErr(w, r, err); return }
    toJSON(w, http.StatusOK, toSheetResponse(sh))
}

// POST /v1/cache/invalidate
func (s *Server) invalidateCache(w http.ResponseWriter, r *http.Request) {
    if err := s.svc.Invalidate(r.Context()); err != nil {
        s.writeServiceErr(w, r, errors.Join(errs.ErrUnavailable, err))
        return
    }
    w.WriteHeader(http.StatusNoContent)
}

// GET /dashboard?email= renders the HTML page.
func (s *Server) dashboardPage(w http.ResponseWriter, r *http.Request) {
    email := escrow.NormalizeEmail(r.URL.Query().Get("email"))
    if email == "" {
        s.renderError(w, r, http.StatusBadRequest, "Enter the email address of your account to see your dashboard.")
        return
    }
    v, err := s.svc.Dashboard(r.Context(), email)
    if err != nil {
        status, _, msg := statusFor(err)
        if status >= http.StatusInternalServerError {
            s.log.Error("dashboard page failed", "email", email, "status", status, "err", err)
        }
        s.renderError(w, r, status, msg)
        return
    }
    if err := s.views.Render(w, http.StatusOK, "dashboard", view.TemplateData{Title: "Escrow Dashboard", Data: v}); err != nil {
        s.log.Error("render dashboard", "err", err)
        http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
    }
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, msg string) {
    data := view.TemplateData{Title: http.StatusText(status), Data: msg}
    if err := s.views.Render(w, status, "error", data); err != nil {
        s.log.Error("render error page", "path", r.URL.Path, "err", err)
        http.Error(w, msg, status)
    }
}
