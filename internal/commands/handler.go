package commands

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"chatfilter/internal/filter"
	"chatfilter/internal/logger"
	"chatfilter/pkg/errors"
)

type ExecuteRequest struct {
	Message string          `json:"message" binding:"required"`
	Actor   *filter.Actor   `json:"actor" binding:"required"`
	Channel *filter.Channel `json:"channel" binding:"required"`
}

type ExecuteResponse struct {
	Handled bool   `json:"handled"`
	Reply   *Reply `json:"reply,omitempty"`
}

type HelpResponse struct {
	Command string   `json:"command"`
	Aliases []string `json:"aliases"`
	Lines   []string `json:"lines"`
}

type Handler struct {
	router *Router
	logger logger.Logger
}

func NewHandler(router *Router, log logger.Logger) *Handler {
	return &Handler{
		router: router,
		logger: log,
	}
}

func (h *Handler) RegisterRoutes(router gin.IRouter) {
	cmds := router.Group("/api/v1/commands")
	{
		cmds.GET("", h.ListCommands)
		cmds.POST("/execute", h.Execute)
		cmds.GET("/:name/help", h.Help)
	}
}

func (h *Handler) HandleError(c *gin.Context, err error) {
	if errors.IsDomain(err) || errors.IsValidation(err) {
		h.logger.InfowCtx(c.Request.Context(), "Command rejected", "error", err, "path", c.Request.URL.Path)
	} else {
		h.logger.ErrorwCtx(c.Request.Context(), "Command error", "error", err, "path", c.Request.URL.Path)
	}

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}

// Execute godoc
// @Summary      Execute a chat line
// @Description  Runs a prefixed chat line through the command router and returns the bot's reply
// @Tags         commands
// @Accept       json
// @Produce      json
// @Param        request  body      ExecuteRequest  true  "Chat line"
// @Success      200      {object}  ExecuteResponse
// @Failure      400      {object}  errors.ErrorResponse
// @Failure      404      {object}  errors.ErrorResponse
// @Failure      500      {object}  errors.ErrorResponse
// @Router       /commands/execute [post]
func (h *Handler) Execute(c *gin.Context) {
	var req ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.HandleError(c, errors.ErrValidation.WithCause(err))
		return
	}

	reply, err := h.router.Handle(c.Request.Context(), Message{
		Text:    req.Message,
		Actor:   *req.Actor,
		Channel: *req.Channel,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExecuteResponse{Handled: reply != nil, Reply: reply})
}

// ListCommands godoc
// @Summary      List chat commands
// @Tags         commands
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /commands [get]
func (h *Handler) ListCommands(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"prefix":   h.router.Prefix(),
		"commands": h.router.Names(),
	})
}

// Help godoc
// @Summary      Command usage
// @Tags         commands
// @Produce      json
// @Param        name  path      string  true  "Command name or alias"
// @Success      200   {object}  HelpResponse
// @Failure      404   {object}  errors.ErrorResponse
// @Router       /commands/{name}/help [get]
func (h *Handler) Help(c *gin.Context) {
	name := c.Param("name")
	cmd, ok := h.router.Lookup(name)
	if !ok {
		h.HandleError(c, errors.ErrNotFound.WithDetail("kind", "command").WithDetail("name", name))
		return
	}

	c.JSON(http.StatusOK, HelpResponse{
		Command: cmd.Name(),
		Aliases: cmd.Aliases(),
		Lines:   cmd.Help(h.router.Prefix()),
	})
}
