package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/your-org/partsboard/internal/auth"
	"github.com/your-org/partsboard/internal/editflow"
	"github.com/your-org/partsboard/internal/listview"
	"github.com/your-org/partsboard/internal/selection"
	"github.com/your-org/partsboard/internal/workspace"
	"github.com/your-org/partsboard/pkg/dto"
)

const ctxWorkspace = "handlers.workspace"

// WorkspaceHandler drives the session's dashboard. Every command answers with the
// recomposed view so the client never has to reconcile state itself.
type WorkspaceHandler struct {
	workspaces *workspace.Manager
}

func NewWorkspaceHandler(workspaces *workspace.Manager) *WorkspaceHandler {
	return &WorkspaceHandler{workspaces: workspaces}
}

// Attach resolves the workspace of the session. It must run after SessionMiddleware.
func (h *WorkspaceHandler) Attach() gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := auth.SessionFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		ws := h.workspaces.Get(workspace.Session{
			ID:    sess.ID.String(),
			Token: sess.Token,
			User:  sess.User,
			IP:    sess.IP,
		})
		c.Set(ctxWorkspace, ws)
		c.Next()
	}
}

func current(c *gin.Context) *workspace.Workspace {
	return c.MustGet(ctxWorkspace).(*workspace.Workspace)
}

// view answers with the composed dashboard; ?wait=false returns at once with
// loading sections instead of waiting for the backend.
func (h *WorkspaceHandler) view(c *gin.Context, status int) {
	wait := true
	if v, err := strconv.ParseBool(c.Query("wait")); err == nil {
		wait = v
	}
	c.JSON(status, current(c).View(c.Request.Context(), wait))
}

func (h *WorkspaceHandler) View(c *gin.Context) {
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Query(c *gin.Context) {
	c.JSON(http.StatusOK, workspace.QueryDTO(current(c).Query()))
}

func (h *WorkspaceHandler) UpdateQuery(c *gin.Context) {
	var req dto.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := current(c).UpdateQuery(req.CustomerID, req.Limit, req.Page, req.ModelPage); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

// LoadQuery replaces the view state with the URL query of a shared link.
func (h *WorkspaceHandler) LoadQuery(c *gin.Context) {
	ws := current(c)
	ws.SetQuery(listview.ParseQuery(c.Request.URL.Query()))
	c.JSON(http.StatusOK, workspace.QueryDTO(ws.Query()))
}

func (h *WorkspaceHandler) Search(c *gin.Context) {
	var req dto.SearchInputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	current(c).TypeSearch(req.Value)
	h.view(c, http.StatusAccepted)
}

func (h *WorkspaceHandler) SelectInspection(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	current(c).SelectInspection(&id)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) ClearInspection(c *gin.Context) {
	current(c).SelectInspection(nil)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) SelectModel(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	current(c).SelectModel(&id)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) ClearModel(c *gin.Context) {
	current(c).SelectModel(nil)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) ModelDetail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := current(c).OpenModelDetail(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) SubpartDetail(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	if _, err := current(c).OpenSubpartDetail(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

// Toggle flips a flag, or sets it when the body carries {"value": bool}. Turning an
// edit mode on seeds it like /edit/begin.
func (h *WorkspaceHandler) Toggle(c *gin.Context) {
	flag, ok := selection.ParseFlag(c.Param("flag"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown flag " + strconv.Quote(c.Param("flag"))})
		return
	}
	var req dto.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := current(c).Toggle(c.Request.Context(), flag, req.Value); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) BeginEdit(c *gin.Context) {
	scope, ok := bindScope(c)
	if !ok {
		return
	}
	if _, err := current(c).BeginEdit(c.Request.Context(), scope); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Stage(c *gin.Context) {
	var req dto.StageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := current(c).Stage(req.SubpartID, *req.InUse); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Contact(c *gin.Context) {
	var req dto.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	current(c).Contact(req.Email, req.Remove)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Reason(c *gin.Context) {
	var req dto.ReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	scope, err := editflow.ParseScope(req.Scope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	current(c).SetReason(scope, req.Reason)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Confirm(c *gin.Context) {
	scope, ok := bindScope(c)
	if !ok {
		return
	}
	if _, err := current(c).Confirm(c.Request.Context(), scope); err != nil {
		respondError(c, err)
		return
	}
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Cancel(c *gin.Context) {
	scope, ok := bindScope(c)
	if !ok {
		return
	}
	current(c).Cancel(scope)
	h.view(c, http.StatusOK)
}

func (h *WorkspaceHandler) Submit(c *gin.Context) {
	scope, ok := bindScope(c)
	if !ok {
		return
	}
	ws := current(c)
	res, err := ws.Submit(c.Request.Context(), scope)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.SubmitResponse{
		Submitted: len(res.Request.Subparts),
		Changes:   workspace.ChangeDTOs(res.Changes),
	}
	if res.Response != nil {
		resp.Message = res.Response.Message
	}
	view := ws.View(c.Request.Context(), true)
	resp.View = &view
	c.JSON(http.StatusOK, resp)
}

// Refresh drops every cached query of the workspace and reloads the view.
func (h *WorkspaceHandler) Refresh(c *gin.Context) {
	ws := current(c)
	n := ws.Refresh()
	c.JSON(http.StatusOK, dto.RefreshResponse{
		Invalidated: n,
		View:        ws.View(c.Request.Context(), true),
	})
}

func bindScope(c *gin.Context) (editflow.Scope, bool) {
	var req dto.ScopeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	scope, err := editflow.ParseScope(req.Scope)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return "", false
	}
	return scope, true
}
