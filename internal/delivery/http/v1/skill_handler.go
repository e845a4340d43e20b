package v1

import (
	"bytes"
	"net/http"

	"techgallery-backend/internal/delivery/http/middleware"
	"techgallery-backend/internal/delivery/http/response"
	"techgallery-backend/internal/domain"
	"techgallery-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

type SkillHandler struct {
	skillUC domain.SkillUsecase
	users   domain.UserDirectory
}

func NewSkillHandler(protected *gin.RouterGroup, skillUC domain.SkillUsecase, users domain.UserDirectory, importLimit gin.HandlerFunc) {
	handler := &SkillHandler{skillUC: skillUC, users: users}

	skills := protected.Group("/skills")
	{
		skills.POST("", handler.AddOrUpdate)
		skills.GET("", handler.List)
		skills.POST("/import", importLimit, handler.Import)
		skills.GET("/:techId", handler.Get)
		skills.GET("/:techId/history", handler.History)
	}

	protected.GET("/users/:userId/skills/:techId", handler.GetForUser)
}

type AddSkillRequest struct {
	TechnologyID string `json:"technology_id" example:"java"`
	Value        *int   `json:"value" example:"4"`
}

// AddOrUpdate godoc
// @Summary      Rate a technology
// @Description  Creates the caller's new rating for a technology. The previous active rating, if any, is inactivated and kept as history.
// @Tags         skills
// @Accept       json
// @Produce      json
// @Param        skill  body      AddSkillRequest  true  "Skill JSON"
// @Success      201    {object}  response.Response{data=domain.Skill}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      404    {object}  response.Response
// @Router       /skills [post]
// @Security     BearerAuth
func (h *SkillHandler) AddOrUpdate(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	// An empty body or a JSON null reaches the usecase as a missing skill.
	var skill *domain.Skill
	if body = bytes.TrimSpace(body); len(body) > 0 && !bytes.Equal(body, []byte("null")) {
		var req AddSkillRequest
		if err := binding.JSON.BindBody(body, &req); err != nil {
			c.Error(apperror.BadRequest("Invalid JSON body"))
			return
		}
		skill = &domain.Skill{TechnologyID: req.TechnologyID, Value: req.Value}
	}

	created, err := h.skillUC.AddOrUpdateSkill(c, skill, middleware.CallerFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Skill saved", created)
}

// List godoc
// @Summary      List my skills
// @Description  Active skill ratings of the caller
// @Tags         skills
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.Skill}
// @Failure      400  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /skills [get]
// @Security     BearerAuth
func (h *SkillHandler) List(c *gin.Context) {
	skills, err := h.skillUC.ListUserSkills(c, middleware.CallerFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User skills", skills)
}

// Get godoc
// @Summary      Get my skill for a technology
// @Tags         skills
// @Produce      json
// @Param        techId  path      string  true  "Technology ID"
// @Success      200     {object}  response.Response{data=domain.Skill}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /skills/{techId} [get]
// @Security     BearerAuth
func (h *SkillHandler) Get(c *gin.Context) {
	skill, err := h.skillUC.GetUserSkill(c, c.Param("techId"), middleware.CallerFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User skill", skill)
}

// History godoc
// @Summary      Rating history for a technology
// @Description  Every rating of the caller for the technology, newest first
// @Tags         skills
// @Produce      json
// @Param        techId  path      string  true  "Technology ID"
// @Success      200     {object}  response.Response{data=[]domain.Skill}
// @Failure      401     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /skills/{techId}/history [get]
// @Security     BearerAuth
func (h *SkillHandler) History(c *gin.Context) {
	history, err := h.skillUC.GetUserSkillHistory(c, c.Param("techId"), middleware.CallerFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User skill history", history)
}

// GetForUser godoc
// @Summary      Get a user's skill for a technology
// @Description  data is null when the user has not rated the technology
// @Tags         skills
// @Produce      json
// @Param        userId  path      string  true  "Directory user ID"
// @Param        techId  path      string  true  "Technology ID"
// @Success      200     {object}  response.Response{data=domain.Skill}
// @Failure      404     {object}  response.Response
// @Router       /users/{userId}/skills/{techId} [get]
// @Security     BearerAuth
func (h *SkillHandler) GetForUser(c *gin.Context) {
	user, err := h.users.GetByID(c, c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	if user == nil {
		c.Error(apperror.NotFound(domain.MsgUserNotInDirectory))
		return
	}

	skill, err := h.skillUC.GetUserSkillForUser(c, c.Param("techId"), user)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "User skill", skill)
}

// Import godoc
// @Summary      Bulk import skills
// @Description  Applies feed records in order; the first failure aborts the rest of the batch.
// @Tags         skills
// @Accept       json
// @Produce      json
// @Param        records  body      []domain.ImportUserSkillRecord  true  "Feed records"
// @Success      200      {object}  response.Response{data=domain.ImportResult}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      429      {object}  response.Response
// @Router       /skills/import [post]
// @Security     BearerAuth
func (h *SkillHandler) Import(c *gin.Context) {
	var records []domain.ImportUserSkillRecord
	if err := c.ShouldBindJSON(&records); err != nil {
		c.Error(apperror.BadRequest("Invalid JSON body, expected an array of records"))
		return
	}

	result, err := h.skillUC.ImportUserSkills(c, records, middleware.CallerFromContext(c))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Skills imported", result)
}
