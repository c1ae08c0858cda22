package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"property-management-backend/config"
	"property-management-backend/internal/model"
	"property-management-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.RequestLogger(h.logger))

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)
	// Login attempts per client are throttled far below the general limit.
	loginLimiter := mw.RateLimiter(rate.Every(time.Second), 5)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	can := func(module string, c model.Capability) gin.HandlerFunc {
		return mw.RequirePermission(module, c)
	}

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.POST("/login", loginLimiter, h.Login)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	authed := api.Group("")
	authed.Use(mw.Authenticate(h.tokens, h.store.Users(), h.logger), mw.InvalidateOnWrite(cacheStore))
	{
		authed.POST("/logout", h.Logout)
		authed.GET("/session", h.GetSession)

		authed.GET("/dashboard", can(model.ModuleDashboard, model.CanView), caching, h.GetDashboard)

		// Addresses and floors
		authed.GET("/addresses", can(model.ModuleAddresses, model.CanView), h.ListAddresses)
		authed.POST("/addresses", can(model.ModuleAddresses, model.CanAdd), h.CreateAddress)
		authed.GET("/addresses/stats", can(model.ModuleAddresses, model.CanView), caching, h.GetAddressStats)
		authed.POST("/addresses/import", can(model.ModuleAddresses, model.CanAdd), h.ImportAddresses)
		authed.GET("/addresses/export", can(model.ModuleAddresses, model.CanView), h.ExportAddresses)
		authed.GET("/addresses/:id", can(model.ModuleAddresses, model.CanView), h.GetAddress)
		authed.PUT("/addresses/:id", can(model.ModuleAddresses, model.CanEdit), h.UpdateAddress)
		authed.DELETE("/addresses/:id", can(model.ModuleAddresses, model.CanDelete), h.DeleteAddress)
		authed.GET("/addresses/:id/floors", can(model.ModuleAddresses, model.CanView), h.ListFloors)
		authed.POST("/addresses/:id/floors", can(model.ModuleAddresses, model.CanAdd), h.AddFloor)
		authed.GET("/addresses/:id/residents", can(model.ModuleResidents, model.CanView), h.ResidentsByAddress)
		authed.GET("/floors/:id", can(model.ModuleAddresses, model.CanView), h.GetFloor)
		authed.PUT("/floors/:id", can(model.ModuleAddresses, model.CanEdit), h.UpdateFloor)
		authed.PUT("/floors/:id/shop_count", can(model.ModuleAddresses, model.CanEdit), h.UpdateShopCount)
		authed.DELETE("/floors/:id", can(model.ModuleAddresses, model.CanDelete), h.DeleteFloor)
		authed.GET("/floors/:id/residents", can(model.ModuleResidents, model.CanView), h.ResidentsByFloor)

		// Residents and allotments
		authed.GET("/residents", can(model.ModuleResidents, model.CanView), h.ListResidents)
		authed.POST("/residents", can(model.ModuleResidents, model.CanAdd), h.CreateResident)
		authed.GET("/residents/:id", can(model.ModuleResidents, model.CanView), h.GetResident)
		authed.PUT("/residents/:id", can(model.ModuleResidents, model.CanEdit), h.UpdateResident)
		authed.DELETE("/residents/:id", can(model.ModuleResidents, model.CanDelete), h.DeactivateResident)
		authed.POST("/residents/:id/allotments", can(model.ModuleResidents, model.CanEdit), h.Allot)
		authed.DELETE("/residents/:id/allotments/:address_id", can(model.ModuleResidents, model.CanEdit), h.RemoveAllotment)
		authed.GET("/allotments", can(model.ModuleResidents, model.CanView), h.ListAllotments)

		// Finance
		authed.GET("/charges", can(model.ModuleFinancial, model.CanView), h.ListCharges)
		authed.POST("/charges", can(model.ModuleFinancial, model.CanAdd), h.CreateCharge)
		authed.GET("/charges/:id", can(model.ModuleFinancial, model.CanView), h.GetCharge)
		authed.PUT("/charges/:id", can(model.ModuleFinancial, model.CanEdit), h.UpdateCharge)
		authed.DELETE("/charges/:id", can(model.ModuleFinancial, model.CanDelete), h.DeleteCharge)
		authed.GET("/records", can(model.ModuleFinancial, model.CanView), h.ListRecords)
		authed.POST("/records", can(model.ModuleFinancial, model.CanAdd), h.CreateRecord)
		authed.GET("/records/pending_total", can(model.ModuleFinancial, model.CanView), h.GetPendingDues)
		authed.GET("/records/:id", can(model.ModuleFinancial, model.CanView), h.GetRecord)
		authed.PUT("/records/:id", can(model.ModuleFinancial, model.CanEdit), h.UpdateRecord)
		authed.DELETE("/records/:id", can(model.ModuleFinancial, model.CanDelete), h.DeleteRecord)
		authed.POST("/records/:id/pay", can(model.ModuleFinancial, model.CanEdit), h.MarkPaid)

		// Complaints
		authed.GET("/complaints", can(model.ModuleComplaints, model.CanView), h.ListComplaints)
		authed.POST("/complaints", can(model.ModuleComplaints, model.CanAdd), h.CreateComplaint)
		authed.GET("/complaints/:id", can(model.ModuleComplaints, model.CanView), h.GetComplaint)
		authed.PUT("/complaints/:id", can(model.ModuleComplaints, model.CanEdit), h.UpdateComplaint)
		authed.PUT("/complaints/:id/status", can(model.ModuleComplaints, model.CanEdit), h.UpdateComplaintStatus)
		authed.DELETE("/complaints/:id", can(model.ModuleComplaints, model.CanDelete), h.DeleteComplaint)

		// Users and permissions
		authed.GET("/users", can(model.ModuleUsers, model.CanView), h.ListUsers)
		authed.POST("/users", can(model.ModuleUsers, model.CanAdd), h.CreateUser)
		authed.GET("/users/:id", can(model.ModuleUsers, model.CanView), h.GetUser)
		authed.PUT("/users/:id", can(model.ModuleUsers, model.CanEdit), h.UpdateUser)
		authed.PUT("/users/:id/password", can(model.ModuleUsers, model.CanEdit), h.SetUserPassword)
		authed.PUT("/users/:id/permissions", can(model.ModuleUsers, model.CanEdit), h.SetUserPermissions)
		authed.POST("/users/:id/deactivate", can(model.ModuleUsers, model.CanEdit), h.DeactivateUser)
		authed.DELETE("/users/:id", can(model.ModuleUsers, model.CanDelete), h.DeleteUser)
		authed.GET("/permissions", can(model.ModuleUsers, model.CanView), h.ListPermissions)
		authed.POST("/permissions", can(model.ModuleUsers, model.CanAdd), h.CreatePermission)

		// Push subscriptions of the current user
		authed.GET("/subscriptions", h.GetSubscriptions)
		authed.PUT("/subscriptions", h.PutSubscription)
		authed.DELETE("/subscriptions", h.DeleteSubscription)
	}

	return r
}
