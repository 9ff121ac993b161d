package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/services"
)

// LegacyController serves the unauthenticated JSON endpoint older clients poll.
// Responses are bare, without the /api/v1 envelope.
type LegacyController struct {
	studentService services.StudentService
	logger         zerolog.Logger
}

// NewLegacyController creates a new LegacyController
func NewLegacyController(studentService services.StudentService, logger zerolog.Logger) *LegacyController {
	return &LegacyController{
		studentService: studentService,
		logger:         logger,
	}
}

// GetStudents godoc
// @Summary Full student list (legacy)
// @Tags legacy
// @Produce json
// @Success 200 {array} dto.StudentResponse
// @Failure 500 {object} dto.LegacyErrorResponse
// @Router /api/get_students [get]
func (c *LegacyController) GetStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx.Request.Context())
	if err != nil {
		c.logger.Error().Err(err).Msg("Failed to list students")
		ctx.JSON(http.StatusInternalServerError, dto.LegacyErrorResponse{Error: "failed to load students"})
		return
	}
	ctx.JSON(http.StatusOK, dto.NewStudentResponses(students, c.studentService.ImageURL))
}
