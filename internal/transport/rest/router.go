package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/adiwardana/expense-approval/internal/approval"
	"github.com/adiwardana/expense-approval/internal/auth"
	"github.com/adiwardana/expense-approval/internal/currency"
	"github.com/adiwardana/expense-approval/internal/expense"
	"github.com/adiwardana/expense-approval/internal/ocr"
	"github.com/adiwardana/expense-approval/internal/transport/middleware"
	"github.com/adiwardana/expense-approval/internal/transport/swagger"
	"github.com/adiwardana/expense-approval/internal/user"
)

type Handlers struct {
	Auth     *auth.Handler
	User     *user.Handler
	Expense  *expense.Handler
	Approval *approval.Handler
	Currency *currency.Handler
	OCR      *ocr.Handler
}

func RegisterAllRoutes(router *chi.Mux, db *sql.DB, h Handlers, allowedOrigins string, logger *slog.Logger) {
	healthHandler := NewHealthHandler(db)

	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// OpenAPI spec + swagger UI outside the API prefix
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	router.Handle("/swagger/*", swagger.Handler())

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/signup", h.Auth.Signup)
			sr.Post("/login", h.Auth.Login)
			sr.Post("/refresh", h.Auth.RefreshToken)
		})

		// Everything below requires an authenticated user.
		r.Group(func(pr chi.Router) {
			pr.Use(h.Auth.AuthMiddleware)

			pr.Route("/users", func(ur chi.Router) {
				ur.Get("/me", h.User.GetCurrentUser)
				ur.Get("/", h.User.ListUsers)
				ur.Post("/", h.User.CreateUser)
				ur.Get("/{id}", h.User.GetUser)
				ur.Patch("/{id}", h.User.UpdateUser)
				ur.Delete("/{id}", h.User.DeleteUser)
			})

			pr.Route("/expenses", func(er chi.Router) {
				er.Post("/", h.Expense.CreateExpense)
				er.Get("/", h.Expense.ListExpenses)
				er.Get("/{id}", h.Expense.GetExpense)
			})

			pr.Route("/approvals", func(ar chi.Router) {
				ar.Get("/", h.Approval.ListPending)
				ar.Post("/{id}/approve", h.Approval.Approve)
				ar.Post("/{id}/reject", h.Approval.Reject)
			})

			pr.Get("/currencies", h.Currency.GetCurrencies)
			pr.Post("/currencies/convert", h.Currency.Convert)

			pr.Post("/ocr", h.OCR.Extract)
		})
	})
}
