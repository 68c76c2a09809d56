package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/app/services"
	"github.com/learnway/member/internal/middleware"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/filestorage"
	"github.com/learnway/member/internal/pkg/helpers"
	"github.com/rs/zerolog"
)

// MemberController handles member registration, profile and admin operations
type MemberController struct {
	memberService services.MemberService
	images        filestorage.ImageStore
	logger        zerolog.Logger
}

// NewMemberController creates a new MemberController
func NewMemberController(memberService services.MemberService, images filestorage.ImageStore, logger zerolog.Logger) *MemberController {
	return &MemberController{
		memberService: memberService,
		images:        images,
		logger:        logger,
	}
}

// formValues returns the submitted text fields of a form request
func formValues(ctx *gin.Context) map[string][]string {
	if ctx.Request.MultipartForm != nil {
		return ctx.Request.MultipartForm.Value
	}
	return ctx.Request.PostForm
}

// Join handles member registration
// @Summary Register a new member
// @Tags members
// @Accept multipart/form-data
// @Produce json
// @Success 201 {object} dto.APIResponse{data=dto.MemberFormResponse} "Member registered"
// @Failure 400 {object} dto.ErrorResponse "Invalid form or password mismatch"
// @Failure 409 {object} dto.ErrorResponse "Member id already in use"
// @Router /members/join [post]
func (c *MemberController) Join(ctx *gin.Context) {
	var req dto.JoinRequest
	if err := ctx.ShouldBind(&req); err != nil {
		c.logger.Debug().Err(err).Msg("Invalid join form")
		middleware.HandleBindingError(ctx, err)
		return
	}

	slots, err := dto.TargetUniSlotsFromForm(formValues(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	req.TargetUnis = slots
	req.Avatar = filestorage.FromFileHeader(req.Image)

	member, err := c.memberService.Join(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	form := dto.NewMemberFormResponse(member, c.images.Resolve(member.Image))
	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(form, "Member registered successfully"))
}

// CheckID reports whether a login id is still available
// @Summary Check member id availability
// @Tags members
// @Produce json
// @Param memberId query string true "Login id"
// @Success 200 {object} dto.APIResponse{data=dto.CheckIDResponse}
// @Router /members/check-id [get]
func (c *MemberController) CheckID(ctx *gin.Context) {
	memberID := strings.TrimSpace(ctx.Query("memberId"))
	if memberID == "" {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Member id is required").
			WithField("memberId")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	taken, err := c.memberService.IsUsernameTaken(ctx.Request.Context(), memberID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CheckIDResponse{
		MemberID:  memberID,
		Available: !taken,
	}, ""))
}

// GetMe returns the profile edit form of the authenticated member
// @Summary Get current member form
// @Tags members
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MemberFormResponse}
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /members/me [get]
func (c *MemberController) GetMe(ctx *gin.Context) {
	memberID, ok := middleware.CurrentMemberID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	form, err := c.memberService.GetMemberInfo(ctx.Request.Context(), memberID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(form, ""))
}

// UpdateMe applies the profile edit form of the authenticated member
// @Summary Update current member
// @Tags members
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MemberFormResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Router /members/me [put]
func (c *MemberController) UpdateMe(ctx *gin.Context) {
	memberID, ok := middleware.CurrentMemberID(ctx)
	if !ok {
		middleware.HandleAPIError(ctx, apperrors.ErrTokenInvalid)
		return
	}

	var req dto.UpdateMemberRequest
	if err := ctx.ShouldBind(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	slots, err := dto.TargetUniSlotsFromForm(formValues(ctx))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	req.TargetUnis = slots
	req.Avatar = filestorage.FromFileHeader(req.NewImage)

	member, err := c.memberService.UpdateMemberInfo(ctx.Request.Context(), memberID, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	form := dto.NewMemberFormResponse(member, c.images.Resolve(member.Image))
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(form, "Member updated successfully"))
}

// ListMembers returns a page of members, filtered by name when the name query is set
// @Summary List members
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param name query string false "Name fragment"
// @Param page query int false "0-based page" default(0)
// @Param size query int false "Page size" default(5)
// @Success 200 {object} dto.APIResponse{data=dto.MemberListResponse}
// @Failure 403 {object} dto.ErrorResponse
// @Router /admin/members [get]
func (c *MemberController) ListMembers(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)

	var (
		resp *dto.MemberListResponse
		err  error
	)
	if name := strings.TrimSpace(ctx.Query("name")); name != "" {
		resp, err = c.memberService.SearchMembersByName(ctx.Request.Context(), name, page, size)
	} else {
		resp, err = c.memberService.FindAllMembers(ctx.Request.Context(), page, size)
	}
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}

// UpdateNote overwrites the admin note of a member
// @Summary Update member note
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Member id"
// @Success 200 {object} dto.APIResponse{data=dto.MemberResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/members/{id}/note [patch]
func (c *MemberController) UpdateNote(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid member id").
			WithDetails("ID must be a positive number")
		ctx.JSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
		return
	}

	var req dto.UpdateNoteRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindingError(ctx, err)
		return
	}

	member, err := c.memberService.UpdateMemberNote(ctx.Request.Context(), id, req.Note)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewMemberResponse(member, c.images.Resolve(member.Image)), "Note updated"))
}
