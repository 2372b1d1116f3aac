package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sigainv/siga-backend/internal/auth"
	"github.com/sigainv/siga-backend/internal/config"
	"github.com/sigainv/siga-backend/internal/db"
	"github.com/sigainv/siga-backend/internal/image"
	"github.com/sigainv/siga-backend/internal/rbac"
	"github.com/sigainv/siga-backend/internal/workflow"
)

type Server struct {
	cfg       *config.Config
	database  Database
	sessions  *auth.Store
	requests  *workflow.RequestService
	loans     *workflow.LoanService
	corporate *workflow.CorporateService
	images    *image.Processor
}

// Database is the handler-facing slice of internal/database.Database.
type Database interface {
	Queries() *db.Queries
	Pool() *pgxpool.Pool
}

func NewServer(cfg *config.Config, database Database, sessions *auth.Store,
	requests *workflow.RequestService, loans *workflow.LoanService,
	corporate *workflow.CorporateService, images *image.Processor) *Server {
	return &Server{
		cfg:       cfg,
		database:  database,
		sessions:  sessions,
		requests:  requests,
		loans:     loans,
		corporate: corporate,
		images:    images,
	}
}

// Routes mounts every handler on a chi router. The auth middleware guards
// everything below /login.
func (s *Server) Routes(authmw *auth.Middleware) chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.HealthCheck)
	r.Get("/readyz", s.ReadinessCheck)
	r.Post("/login", s.Login)

	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireSession)

		r.Post("/logout", s.Logout)
		r.Get("/me", s.CurrentUser)
		r.Get("/dashboard", s.Dashboard)
		r.Get("/approvers", s.ListApprovers)

		r.Route("/materials", func(r chi.Router) {
			r.Use(authmw.RequireModule(rbac.ModuleMaterials))
			r.Get("/", s.ListMaterials)
			r.With(authmw.RequireAction(rbac.ModuleMaterials, rbac.ActionCreate)).Post("/", s.CreateMaterial)
			r.Get("/{id}", s.GetMaterial)
			r.With(authmw.RequireAction(rbac.ModuleMaterials, rbac.ActionEdit)).Put("/{id}", s.UpdateMaterial)
			r.With(authmw.RequireAction(rbac.ModuleMaterials, rbac.ActionDelete)).Delete("/{id}", s.DeleteMaterial)
			r.With(authmw.RequireAction(rbac.ModuleMaterials, rbac.ActionEdit)).Post("/{id}/image", s.UploadMaterialImage)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Use(authmw.RequireModule(rbac.ModuleMaterials))
			r.Get("/", s.ListRequests)
			r.With(authmw.RequireAction(rbac.ModuleRequests, rbac.ActionCreate)).Post("/", s.CreateRequest)
			r.Get("/{id}", s.GetRequest)
			r.With(authmw.RequireAction(rbac.ModuleRequests, rbac.ActionApprove)).Post("/{id}/approve", s.ApproveRequest)
			r.With(authmw.RequireAction(rbac.ModuleRequests, rbac.ActionPartialApprove)).Post("/{id}/approve_partial", s.ApproveRequestPartial)
			r.With(authmw.RequireAction(rbac.ModuleRequests, rbac.ActionReject)).Post("/{id}/reject", s.RejectRequest)
		})

		r.Route("/offices", func(r chi.Router) {
			r.Get("/", s.ListOffices)
			r.Get("/detail/{id}", s.OfficeDetail)
			r.With(authmw.RequireAction(rbac.ModuleOffices, rbac.ActionCreate)).Post("/", s.CreateOffice)
			r.With(authmw.RequireAction(rbac.ModuleOffices, rbac.ActionEdit)).Put("/{id}", s.UpdateOffice)
			r.With(authmw.RequireAction(rbac.ModuleOffices, rbac.ActionDelete)).Delete("/{id}", s.DeleteOffice)
		})

		r.Route("/corporate", func(r chi.Router) {
			r.Use(authmw.RequireModule(rbac.ModuleCorporate))
			r.Get("/", s.ListCorporateItems)
			r.Get("/stats", s.CorporateStats)
			r.With(authmw.RequireAction(rbac.ModuleCorporate, rbac.ActionCreate)).Post("/", s.CreateCorporateItem)
			r.Get("/{id}", s.GetCorporateItem)
			r.With(authmw.RequireAction(rbac.ModuleCorporate, rbac.ActionEdit)).Put("/{id}", s.UpdateCorporateItem)
			r.With(authmw.RequireAction(rbac.ModuleCorporate, rbac.ActionDelete)).Delete("/{id}", s.DeleteCorporateItem)
			r.With(authmw.RequireAction(rbac.ModuleCorporate, rbac.ActionAssign)).Post("/{id}/assign", s.AssignCorporateItem)
			r.Get("/{id}/assignments", s.ListItemAssignments)
			r.Get("/categories", s.ListCategories)
			r.Get("/suppliers", s.ListSuppliers)
		})

		r.Route("/loans", func(r chi.Router) {
			r.Use(authmw.RequireModule(rbac.ModuleLoans))
			r.Get("/", s.ListLoans)
			r.With(authmw.RequireAction(rbac.ModuleLoans, rbac.ActionCreate)).Post("/", s.CreateLoan)
			r.Get("/elements", s.ListElements)
			r.With(authmw.RequireAction(rbac.ModuleLoans, rbac.ActionManage)).Post("/elements", s.CreateElement)
			r.With(authmw.RequireAction(rbac.ModuleLoans, rbac.ActionApprove)).Post("/{id}/approve", s.ApproveLoan)
			r.With(authmw.RequireAction(rbac.ModuleLoans, rbac.ActionPartialApprove)).Post("/{id}/approve_partial", s.ApproveLoanPartial)
			r.With(authmw.RequireAction(rbac.ModuleLoans, rbac.ActionReject)).Post("/{id}/reject", s.RejectLoan)
			r.With(authmw.RequireAction(rbac.ModuleLoans, rbac.ActionReturn)).Post("/{id}/return", s.ReturnLoan)
		})

		r.Route("/reports", func(r chi.Router) {
			r.Use(authmw.RequireModule(rbac.ModuleReports))
			r.Get("/requests", s.RequestsReport)
			r.Get("/requests/export", s.ExportRequestsCSV)
			r.Get("/materials", s.MaterialsReport)
			r.Get("/materials/export", s.ExportMaterialsCSV)
			r.Get("/materials/{id}", s.MaterialDetailReport)
			r.With(authmw.RequireModule(rbac.ModuleCorporate)).Get("/inventory", s.InventoryReport)
			r.With(authmw.RequireModule(rbac.ModuleCorporate)).Get("/inventory/export", s.ExportInventoryCSV)
		})
	})

	r.Handle("/static/uploads/*", http.StripPrefix("/static/uploads/",
		http.FileServer(http.Dir(s.cfg.Uploads.Dir))))

	return r
}
