package controllers

import (
	"net/http"
	"strings"

	"agrimarket-api-io/api/internal/helpers"
	"agrimarket-api-io/api/pkg/models"
	"agrimarket-api-io/api/pkg/services"
	"agrimarket-api-io/api/pkg/util"

	"github.com/gin-gonic/gin"
)

type ApplicationController struct {
	applicationService services.ApplicationService
}

func InitApplicationController(applicationService services.ApplicationService) *ApplicationController {
	return &ApplicationController{applicationService: applicationService}
}

// SubmitFarmerApplication handles POST /api/vendors/farmer/applications
func (ac *ApplicationController) SubmitFarmerApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		var req models.FarmerApplicationRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		farmer, err := ac.applicationService.SubmitFarmerApplication(ctx, actor.UserID, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Farmer application submitted", farmer)
	}
}

// SubmitDeliveryAgentApplication handles POST /api/vendors/delivery-agent/applications
func (ac *ApplicationController) SubmitDeliveryAgentApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}

		var req models.DeliveryAgentApplicationRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		agent, err := ac.applicationService.SubmitDeliveryAgentApplication(ctx, actor.UserID, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusCreated, "Delivery agent application submitted", agent)
	}
}

// GetMyApplications handles GET /api/vendors/:role/applications
func (ac *ApplicationController) GetMyApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		role, ok := ParseVendorRoleParam(c, "role")
		if !ok {
			return
		}

		applications, err := ac.applicationService.GetMyApplications(ctx, actor.UserID, role)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", applications)
	}
}

// UpdateAvailability handles PUT /api/vendors/:role/availability
func (ac *ApplicationController) UpdateAvailability() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		role, ok := ParseVendorRoleParam(c, "role")
		if !ok {
			return
		}

		var req models.AvailabilityRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		if err := ac.applicationService.UpdateAvailability(ctx, actor.UserID, role, *req.IsAvailable); err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Availability updated", gin.H{"isAvailable": *req.IsAvailable})
	}
}

// RateDeliveryAgent handles POST /api/delivery-agents/:id/rating
func (ac *ApplicationController) RateDeliveryAgent() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		agentID, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}

		var req models.RatingRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		agent, err := ac.applicationService.RateDeliveryAgent(ctx, actor.UserID, agentID, req.Rating)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Rating recorded", gin.H{
			"rating":      agent.Rating,
			"ratingCount": agent.RatingCount,
		})
	}
}

// GetApplication handles GET /admin/applications/:id and GET /api/applications/:id
func (ac *ApplicationController) GetApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		role, ok := optionalVendorRole(c, "role")
		if !ok {
			return
		}

		application, err := ac.applicationService.GetApplication(ctx, actor, id, role)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", application)
	}
}

// ListApplications handles GET /admin/applications
func (ac *ApplicationController) ListApplications() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		role, ok := optionalVendorRole(c, "role")
		if !ok {
			return
		}

		filter := models.ApplicationFilter{
			Role:  role,
			City:  strings.TrimSpace(c.Query("city")),
			State: strings.TrimSpace(c.Query("state")),
		}
		if raw := c.Query("status"); raw != "" {
			status, err := models.ParseApplicationStatus(raw)
			if err != nil {
				util.HandleError(c, http.StatusBadRequest, err)
				return
			}
			filter.Status = status
		}

		paginationArgs := helpers.GetPaginationArgs(c)
		applications, count, err := ac.applicationService.ListApplications(ctx, filter, paginationArgs)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		HandlePaginationAndResponse(c, applications, count, paginationArgs, "success")
	}
}

// ApplicationStats handles GET /admin/applications/stats
func (ac *ApplicationController) ApplicationStats() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		stats, err := ac.applicationService.ApplicationStats(ctx)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "success", stats)
	}
}

// ReviewApplication handles PUT /admin/applications/:id/review
func (ac *ApplicationController) ReviewApplication() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := WithTimeout(c)
		defer cancel()

		actor, ok := CurrentActor(c)
		if !ok {
			return
		}
		id, ok := ParseObjectIDParam(c, "id")
		if !ok {
			return
		}
		role, ok := optionalVendorRole(c, "role")
		if !ok {
			return
		}

		var req models.ReviewApplicationRequest
		if !BindJSONAndValidate(c, &req) {
			return
		}

		application, err := ac.applicationService.ReviewApplication(ctx, actor.UserID, id, role, req)
		if err != nil {
			HandleServiceError(c, err)
			return
		}

		util.HandleSuccess(c, http.StatusOK, "Application reviewed", application)
	}
}
