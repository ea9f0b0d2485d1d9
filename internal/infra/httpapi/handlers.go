package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"toolcatalog/internal/app/catalog"
	"toolcatalog/internal/domain"
	"toolcatalog/internal/infra/catalog/query"
)

func filtersFromQuery(c *gin.Context) query.Filters {
	return query.Filters{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Pricing:  c.Query("pricing"),
	}
}

func (h *handler) listPublic(c *gin.Context) {
	tools, err := h.service.List(c.Request.Context(), catalog.ListOptions{
		Visibility: domain.VisibilityPublic,
		Filters:    filtersFromQuery(c),
	})
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tools)
}

func (h *handler) listAdmin(c *gin.Context) {
	opts := catalog.ListOptions{
		Visibility: domain.VisibilityAdmin,
		Filters:    filtersFromQuery(c),
	}
	if raw := strings.TrimSpace(c.Query("published")); raw != "" {
		published, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(c, h.logger, domain.E(domain.CodeInvalidArgument, "http.list_admin", "Invalid published filter", domain.ErrInvalidRequest))
			return
		}
		opts.Published = &published
	}

	tools, err := h.service.List(c.Request.Context(), opts)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tools)
}

func (h *handler) compare(c *gin.Context) {
	tools, err := h.service.Compare(c.Request.Context(), c.Query("ids"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tools)
}

func (h *handler) getPublic(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tool, err := h.service.Get(c.Request.Context(), id)
	if err == nil && !tool.Published {
		err = domain.E(domain.CodeNotFound, "http.get_tool", "Tool not found", domain.ErrToolNotFound)
	}
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tool)
}

func (h *handler) getAdmin(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	tool, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tool)
}

func (h *handler) categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context(), domain.VisibilityPublic)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *handler) create(c *gin.Context) {
	var input catalog.ToolCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, h.logger, invalidBody("http.create_tool", err))
		return
	}
	tool, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	h.logger.Info("tool created", zap.Int("id", tool.ID))
	c.JSON(http.StatusCreated, tool)
}

func (h *handler) update(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var input catalog.ToolUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		writeError(c, h.logger, invalidBody("http.update_tool", err))
		return
	}
	tool, err := h.service.Update(c.Request.Context(), id, input)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, tool)
}

func (h *handler) delete(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *handler) pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		writeError(c, h.logger, domain.E(domain.CodeInvalidArgument, "http.path_id", "Invalid tool ID", domain.ErrInvalidRequest))
		return 0, false
	}
	return id, true
}

func invalidBody(op string, err error) error {
	return domain.E(domain.CodeInvalidArgument, op, "Invalid request body", err)
}
