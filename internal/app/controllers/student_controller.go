package controllers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/yigit/campus/internal/app/models"
	"github.com/yigit/campus/internal/app/models/dto"
	"github.com/yigit/campus/internal/app/services"
	"github.com/yigit/campus/internal/middleware"
	"github.com/yigit/campus/internal/pkg/apperrors"
)

// imageField is the multipart field carrying the student photo
const imageField = "image"

// StudentController handles student record endpoints
type StudentController struct {
	studentService services.StudentService
	maxUploadBytes int64
	logger         zerolog.Logger
}

// NewStudentController creates a new StudentController. maxUploadMB <= 0 disables the size check.
func NewStudentController(studentService services.StudentService, maxUploadMB int, logger zerolog.Logger) *StudentController {
	return &StudentController{
		studentService: studentService,
		maxUploadBytes: int64(maxUploadMB) << 20,
		logger:         logger,
	}
}

// ListStudents godoc
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.StudentResponse}
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	students, err := c.studentService.ListStudents(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponses(students, c.studentService.ImageURL), ""))
}

// GetStudent godoc
// @Summary Get a student by ID number
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param idno path string true "Student ID number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{idno} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.GetStudent(ctx.Request.Context(), ctx.Param("idno"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(student, c.studentService.ImageURL), ""))
}

// CreateStudent godoc
// @Summary Add a student
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param idno formData string true "ID number"
// @Param lastname formData string true "Last name"
// @Param firstname formData string true "First name"
// @Param course formData string true "Course"
// @Param level formData string true "Level"
// @Param image formData file false "Photo"
// @Success 201 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 409 {object} dto.ErrorResponse "ID number already in use"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var req dto.CreateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	photo, closePhoto, err := c.photoFromRequest(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer closePhoto()

	student := &models.Student{
		IDNo:      req.IDNo,
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Course:    req.Course,
		Level:     req.Level,
	}
	if err := c.studentService.CreateStudent(ctx.Request.Context(), student, photo); err != nil {
		c.logger.Warn().Err(err).Str("idno", req.IDNo).Msg("Failed to add student")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(dto.NewStudentResponse(student, c.studentService.ImageURL), "Student added successfully!"))
}

// UpdateStudent godoc
// @Summary Update a student
// @Description Sending no image keeps the current photo.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param idno path string true "Student ID number"
// @Success 200 {object} dto.APIResponse{data=dto.StudentResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{idno} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.RespondValidationError(ctx, err)
		return
	}

	photo, closePhoto, err := c.photoFromRequest(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	defer closePhoto()

	student := &models.Student{
		IDNo:      ctx.Param("idno"),
		LastName:  req.LastName,
		FirstName: req.FirstName,
		Course:    req.Course,
		Level:     req.Level,
	}
	if err := c.studentService.UpdateStudent(ctx.Request.Context(), student, photo); err != nil {
		c.logger.Warn().Err(err).Str("idno", student.IDNo).Msg("Failed to update student")
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewStudentResponse(student, c.studentService.ImageURL), "Student updated successfully!"))
}

// DeleteStudent godoc
// @Summary Delete a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param idno path string true "Student ID number"
// @Success 200 {object} dto.APIResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /students/{idno} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	idno := ctx.Param("idno")
	if err := c.studentService.DeleteStudent(ctx.Request.Context(), idno); err != nil {
		c.logger.Warn().Err(err).Str("idno", idno).Msg("Failed to delete student")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(nil, "Student deleted successfully!"))
}

// photoFromRequest opens the optional photo upload. The returned close func is
// always safe to call.
func (c *StudentController) photoFromRequest(ctx *gin.Context) (*services.Photo, func(), error) {
	noop := func() {}

	header, err := ctx.FormFile(imageField)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, noop, nil
		}
		return nil, noop, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	if strings.TrimSpace(header.Filename) == "" {
		return nil, noop, nil
	}
	if c.maxUploadBytes > 0 && header.Size > c.maxUploadBytes {
		return nil, noop, apperrors.NewValidationError(imageField, fmt.Sprintf("Image must be at most %d MB", c.maxUploadBytes>>20))
	}

	file, err := header.Open()
	if err != nil {
		return nil, noop, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
	}
	return &services.Photo{Filename: header.Filename, Content: file}, closer(file, c.logger), nil
}

func closer(file multipart.File, logger zerolog.Logger) func() {
	return func() {
		if err := file.Close(); err != nil {
			logger.Debug().Err(err).Msg("Failed to close uploaded file")
		}
	}
}
