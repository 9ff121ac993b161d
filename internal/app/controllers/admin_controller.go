package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

// AdminController handles administrator management
type AdminController struct {
	adminService services.AdminService
	logger       zerolog.Logger
}

// NewAdminController creates a new AdminController
func NewAdminController(adminService services.AdminService, logger zerolog.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// ListAdmins godoc
// @Summary List administrators
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.AdminResponse}
// @Router /admins [get]
func (c *AdminController) ListAdmins(ctx *gin.Context) {
	admins, err := c.adminService.ListAdmins(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAdminResponses(admins), ""))
}

// GetAdmin godoc
// @Summary Get an administrator
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 200 {object} dto.APIResponse{data=dto.AdminResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admins/{id} [get]
func (c *AdminController) GetAdmin(ctx *gin.Context) {
	id, ok := parseAdminID(ctx)
	if !ok {
		return
	}

	admin, err := c.adminService.GetAdminByID(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAdminResponse(admin), ""))
}

// CreateAdmin godoc
// @Summary Add an administrator
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateAdminRequest true "New administrator"
// @Success 201 {object} dto.APIResponse{data=dto.AdminResponse}
// @Failure 409 {object} dto.ErrorResponse "Email already registered"
// @Router /admins [post]
func (c *AdminController) CreateAdmin(ctx *gin.Context) {
	var req dto.CreateAdminRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	admin, err := c.adminService.CreateAdmin(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Str("email", req.Email).Msg("Failed to add admin")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewAdminResponse(admin), "Admin added successfully!"))
}

// UpdateAdmin godoc
// @Summary Update an administrator
// @Description A blank password keeps the current one.
// @Tags admins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Param request body dto.UpdateAdminRequest true "Changes"
// @Success 200 {object} dto.APIResponse{data=dto.AdminResponse}
// @Router /admins/{id} [put]
func (c *AdminController) UpdateAdmin(ctx *gin.Context) {
	id, ok := parseAdminID(ctx)
	if !ok {
		return
	}

	var req dto.UpdateAdminRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	admin, err := c.adminService.UpdateAdmin(ctx.Request.Context(), id, req.Email, req.Password)
	if err != nil {
		c.logger.Warn().Err(err).Int64("adminID", id).Msg("Failed to update admin")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewAdminResponse(admin), "Admin updated successfully!"))
}

// DeleteAdmin godoc
// @Summary Delete an administrator
// @Tags admins
// @Produce json
// @Security BearerAuth
// @Param id path int true "Admin ID"
// @Success 200 {object} dto.APIResponse
// @Router /admins/{id} [delete]
func (c *AdminController) DeleteAdmin(ctx *gin.Context) {
	id, ok := parseAdminID(ctx)
	if !ok {
		return
	}

	if err := c.adminService.DeleteAdmin(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Admin deleted successfully!"))
}

func parseAdminID(ctx *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.HandleAPIError(ctx, apperrors.NewValidationError("id", "Invalid admin ID"))
		return 0, false
	}
	return id, true
}
