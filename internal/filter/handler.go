package filter

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatfilter/internal/constants"
	"chatfilter/internal/logger"
	"chatfilter/pkg/errors"
)

// BanRequest is the body of POST /api/v1/bans.
type BanRequest struct {
	State          string   `json:"state" binding:"required"`
	Channel        string   `json:"channel"`
	Command        string   `json:"command"`
	Invocation     string   `json:"invocation"`
	User           string   `json:"user"`
	Actor          *Actor   `json:"actor" binding:"required"`
	ContextChannel *Channel `json:"context_channel" binding:"required"`
}

// CheckResponse is the body of GET /api/v1/bans/check.
type CheckResponse struct {
	Banned bool        `json:"banned"`
	Rule   *FilterRule `json:"rule,omitempty"`
}

type Handler struct {
	service *Service
	query   *Query
	logger  logger.Logger
}

func NewHandler(service *Service, query *Query, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		query:   query,
		logger:  log,
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	if errors.IsDomain(err) || errors.IsValidation(err) {
		h.logger.InfowCtx(c.Request.Context(), "Request rejected", "error", err, "path", c.Request.URL.Path)
	} else {
		h.logger.ErrorwCtx(c.Request.Context(), "Request error", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	v1 := router.Group("/api/v1")
	{
		bans := v1.Group("/bans")
		{
			bans.POST("", h.ApplyBan)
			bans.GET("", h.ListBans)
			bans.GET("/check", h.CheckBan)
			bans.GET("/:id", h.GetBan)
			bans.GET("/:id/versions", h.GetBanVersions)
		}

		v1.GET("/audit", h.GetAuditLogs)
	}
}

// ApplyBan godoc
// @Summary      Ban or unban a scope
// @Description  Toggles the rule matching the scope, or creates it
// @Tags         bans
// @Accept       json
// @Produce      json
// @Param        request  body      BanRequest  true  "Ban request"
// @Success      200      {object}  Result
// @Success      201      {object}  Result
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      403      {object}  Result
// @Failure      404      {object}  Result
// @Failure      409      {object}  Result
// @Failure      422      {object}  Result
// @Failure      500      {object}  Result
// @Router       /bans [post]
func (h *Handler) ApplyBan(c *gin.Context) {
	var req BanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err)))
		return
	}

	state, err := ParseState(req.State)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithDetail("field", "state")))
		return
	}

	params := Params{
		Channel:    req.Channel,
		Command:    req.Command,
		Invocation: req.Invocation,
		User:       req.User,
	}
	result := h.service.ApplyBanRequest(c.Request.Context(), state, params, *req.Actor, *req.ContextChannel)

	switch {
	case result.Success && result.Created:
		c.JSON(http.StatusCreated, result)
	case result.Success:
		c.JSON(http.StatusOK, result)
	default:
		c.JSON(errors.StatusOfCode(result.Kind), result)
	}
}

// ListBans godoc
// @Summary      List ban rules
// @Description  Lists all ban rules, optionally filtered by a CEL expression over rule
// @Tags         bans
// @Produce      json
// @Param        filter  query     string  false  "CEL expression, e.g. rule.active && rule.user == 42"
// @Success      200     {array}   FilterRule
// @Failure      400     {object}  errors.ErrorResponse
// @Router       /bans [get]
func (h *Handler) ListBans(c *gin.Context) {
	rules, err := h.query.Filter(c.Request.Context(), h.service.Store().List(), c.Query("filter"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rules)
}

// CheckBan godoc
// @Summary      Check whether an invocation is banned
// @Tags         bans
// @Produce      json
// @Param        channel     query     int     false  "Channel ID"
// @Param        command     query     int     false  "Command ID"
// @Param        invocation  query     string  false  "Invocation"
// @Param        user        query     int     false  "User ID"
// @Success      200         {object}  CheckResponse
// @Failure      400         {object}  errors.ErrorResponse
// @Router       /bans/check [get]
func (h *Handler) CheckBan(c *gin.Context) {
	var target Scope
	for _, field := range []struct {
		name string
		dest *int64
		ok   *bool
	}{
		{"channel", &target.Channel.Int64, &target.Channel.Valid},
		{"command", &target.Command.Int64, &target.Command.Valid},
		{"user", &target.User.Int64, &target.User.Valid},
	} {
		raw := c.Query(field.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithDetail("field", field.name)))
			return
		}
		*field.dest, *field.ok = v, true
	}
	if invocation := c.Query("invocation"); invocation != "" {
		target.Invocation.String, target.Invocation.Valid = invocation, true
	}

	rule, banned := h.service.Store().IsBanned(target)
	c.JSON(http.StatusOK, CheckResponse{Banned: banned, Rule: rule})
}

// GetBan godoc
// @Summary      Get a ban rule by ID
// @Tags         bans
// @Produce      json
// @Param        id   path      int  true  "Rule ID"
// @Success      200  {object}  FilterRule
// @Failure      404  {object}  errors.ErrorResponse
// @Router       /bans/{id} [get]
func (h *Handler) GetBan(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	rule, err := h.service.Store().Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, rule)
}

// GetBanVersions godoc
// @Summary      Get the version history of a ban rule
// @Tags         bans
// @Produce      json
// @Param        id   path      int  true  "Rule ID"
// @Success      200  {array}   RuleVersion
// @Failure      500  {object}  errors.ErrorResponse
// @Router       /bans/{id}/versions [get]
func (h *Handler) GetBanVersions(c *gin.Context) {
	id, ok := h.ruleID(c)
	if !ok {
		return
	}

	versions, err := h.service.Store().Versions(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, versions)
}

// GetAuditLogs godoc
// @Summary      Get audit logs
// @Tags         audit
// @Produce      json
// @Param        rule_id  query     int  false  "Only entries for this rule"
// @Param        limit    query     int  false  "Number of entries (default 100)"
// @Success      200      {array}   AuditLog
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /audit [get]
func (h *Handler) GetAuditLogs(c *gin.Context) {
	var ruleID *int64
	if raw := c.Query("rule_id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithDetail("field", "rule_id")))
			return
		}
		ruleID = &v
	}

	limit := constants.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	logs, err := h.service.Store().AuditLogs(c.Request.Context(), ruleID, limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

func (h *Handler) ruleID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errors.ToErrorResponse(errors.ErrValidation.WithCause(err).WithDetail("field", "id")))
		return 0, false
	}
	return id, true
}
