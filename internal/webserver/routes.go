package webserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/irtassedat/qrmenu-gateway/internal/backend"
)

// The public surface is what a customer scanning a QR code hits; the
// /admin tree is staff-only. Brand-wide screens (branches, users,
// templates, integrations, categories) are super_admin territory; the
// rest is shared with branch managers, scoped to their own branch.
func (w *Webserver) registerRoutes() {
	w.e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	// Public menu
	w.e.GET("/menu", w.branchListHandler)
	w.e.GET("/menu/:branchId", w.menuHandler)
	w.e.GET("/product/:id", w.productHandler)
	w.e.POST("/confirm", w.orderHandler)
	w.e.POST("/feedback", w.feedbackHandler)
	w.e.GET("/qr/:branchId", w.qrHandler)

	// Auth
	w.e.POST("/auth/login", w.loginHandler)
	w.e.POST("/auth/logout", w.logoutHandler)

	anyStaff := w.guard.Require()
	w.e.GET("/auth/me", w.meHandler, anyStaff)
	w.e.PUT("/auth/change-password", w.changePasswordHandler, anyStaff)

	// Shared admin screens: super_admin and branch_manager
	shared := w.e.Group("/admin", w.guard.Require(backend.RoleSuperAdmin, backend.RoleBranchManager))
	shared.GET("/dashboard", w.dashboardHandler)
	shared.GET("/branch-products", w.listBranchProductsHandler)
	shared.POST("/branch-products", w.createBranchProductHandler)
	shared.PUT("/branch-products/:id", w.updateBranchProductHandler)
	shared.DELETE("/branch-products/:id", w.deleteBranchProductHandler)
	shared.GET("/orders", w.listOrdersHandler)
	shared.PATCH("/orders/:id", w.updateOrderStatusHandler)
	shared.GET("/loyalty/programs", w.listLoyaltyProgramsHandler)
	shared.POST("/loyalty/programs", w.createLoyaltyProgramHandler)
	shared.PUT("/loyalty/programs/:id", w.updateLoyaltyProgramHandler)
	shared.GET("/loyalty/programs/:id/cards", w.listLoyaltyCardsHandler)
	shared.POST("/loyalty/programs/:id/stamps", w.stampLoyaltyCardHandler)

	// super_admin only
	super := shared.Group("", w.guard.Require(backend.RoleSuperAdmin))
	super.GET("/branches", w.listBranchesHandler)
	super.POST("/branches", w.createBranchHandler)
	super.PUT("/branches/:id", w.updateBranchHandler)
	super.DELETE("/branches/:id", w.deleteBranchHandler)
	super.GET("/users", w.listUsersHandler)
	super.POST("/users", w.createUserHandler)
	super.PUT("/users/:id", w.updateUserHandler)
	super.DELETE("/users/:id", w.deleteUserHandler)
	super.GET("/categories", w.listCategoriesHandler)
	super.POST("/categories", w.createCategoryHandler)
	super.PUT("/categories/:id", w.updateCategoryHandler)
	super.DELETE("/categories/:id", w.deleteCategoryHandler)
	super.GET("/templates", w.listTemplatesHandler)
	super.POST("/templates", w.createTemplateHandler)
	super.PUT("/templates/:id", w.updateTemplateHandler)
	super.DELETE("/templates/:id", w.deleteTemplateHandler)
	super.POST("/templates/:id/assign", w.assignTemplateHandler)
	super.GET("/integrations", w.listIntegrationsHandler)
	super.PUT("/integrations/:id", w.updateIntegrationHandler)
}
