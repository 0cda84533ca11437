package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/mesh-intelligence/chatkeep/internal/metrics"
	"github.com/mesh-intelligence/chatkeep/pkg/conversation"
	"github.com/mesh-intelligence/chatkeep/pkg/title"
	"github.com/mesh-intelligence/chatkeep/pkg/types"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// SyncUserResponse is the response body for POST /api/v1/users/sync.
type SyncUserResponse struct {
	User    *types.User `json:"user"`
	Created bool        `json:"created"`
}

func (s *Server) handleSyncUser(c echo.Context) error {
	var id types.Identity
	if err := c.Bind(&id); err != nil {
		return badRequest(err)
	}
	u, created, err := s.mgr.SyncUser(c.Request().Context(), id)
	if err != nil {
		return s.fail(c, err)
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, SyncUserResponse{User: u, Created: created})
}

// TitleRequest is the request body for POST /api/v1/titles. Without an
// assistant text the first-message heuristic is used.
type TitleRequest struct {
	UserText      string `json:"userText"`
	AssistantText string `json:"assistantText,omitempty"`
}

// TitleResponse is the response body for POST /api/v1/titles.
type TitleResponse struct {
	Title    string `json:"title"`
	Strategy string `json:"strategy"`
}

func (s *Server) handleTitle(c echo.Context) error {
	var req TitleRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	if strings.TrimSpace(req.AssistantText) == "" {
		return c.JSON(http.StatusOK, TitleResponse{
			Title:    title.FromFirstMessage(req.UserText),
			Strategy: metrics.StrategyFirstMessage,
		})
	}
	return c.JSON(http.StatusOK, TitleResponse{
		Title:    title.FromExchange(req.UserText, req.AssistantText),
		Strategy: metrics.StrategyExchange,
	})
}

// CreateChatRequest is the request body for POST /api/v1/chats. An empty
// content creates an empty "New Chat".
type CreateChatRequest struct {
	Content  string  `json:"content"`
	FolderID *string `json:"folderId,omitempty"`
}

func (s *Server) handleCreateChat(c echo.Context) error {
	var req CreateChatRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	ctx := c.Request().Context()

	var chat *types.Chat
	var err error
	if strings.TrimSpace(req.Content) == "" {
		chat, err = s.mgr.NewChat(ctx, ownerOf(c), req.FolderID)
	} else {
		chat, err = s.mgr.StartChat(ctx, ownerOf(c), req.Content, req.FolderID)
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, chat)
}

// handleListChats accepts optional folderId and pinned query parameters.
func (s *Server) handleListChats(c echo.Context) error {
	var q conversation.ChatQuery
	if folderID := c.QueryParam("folderId"); folderID != "" {
		q.FolderID = &folderID
	}
	if raw := c.QueryParam("pinned"); raw != "" {
		pinned, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "pinned must be true or false")
		}
		q.Pinned = &pinned
	}

	chats, err := s.mgr.ListChats(c.Request().Context(), ownerOf(c), q)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chats)
}

func (s *Server) handleGetChat(c echo.Context) error {
	chat, err := s.mgr.GetChat(c.Request().Context(), ownerOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chat)
}

func (s *Server) handleUpdateChat(c echo.Context) error {
	var upd types.ChatUpdate
	if err := c.Bind(&upd); err != nil {
		return badRequest(err)
	}
	chat, err := s.mgr.UpdateChat(c.Request().Context(), ownerOf(c), c.Param("id"), upd)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, chat)
}

func (s *Server) handleDeleteChat(c echo.Context) error {
	if err := s.mgr.DeleteChat(c.Request().Context(), ownerOf(c), c.Param("id")); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListMessages(c echo.Context) error {
	msgs, err := s.mgr.ListMessages(c.Request().Context(), ownerOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, msgs)
}

// AppendMessageRequest is the request body for POST
// /api/v1/chats/:id/messages.
type AppendMessageRequest struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

func (s *Server) handleAppendMessage(c echo.Context) error {
	var req AppendMessageRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	out, err := s.mgr.AppendMessage(c.Request().Context(), ownerOf(c), c.Param("id"), req.Content, req.Role)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

func (s *Server) handleListFolders(c echo.Context) error {
	folders, err := s.mgr.ListFolders(c.Request().Context(), ownerOf(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, folders)
}

// FolderRequest is the request body for creating or renaming a folder.
type FolderRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleCreateFolder(c echo.Context) error {
	var req FolderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	folder, err := s.mgr.CreateFolder(c.Request().Context(), ownerOf(c), req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, folder)
}

func (s *Server) handleRenameFolder(c echo.Context) error {
	var req FolderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	folder, err := s.mgr.RenameFolder(c.Request().Context(), ownerOf(c), c.Param("id"), req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, folder)
}

// ReorderRequest is the request body for PUT /api/v1/folders/order.
type ReorderRequest struct {
	FolderIDs []string `json:"folderIds"`
}

func (s *Server) handleReorderFolders(c echo.Context) error {
	var req ReorderRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(err)
	}
	folders, err := s.mgr.ReorderFolders(c.Request().Context(), ownerOf(c), req.FolderIDs)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, folders)
}

// DeleteFolderResponse reports how many chats were unfiled.
type DeleteFolderResponse struct {
	Detached int `json:"detached"`
}

func (s *Server) handleDeleteFolder(c echo.Context) error {
	n, err := s.mgr.DeleteFolder(c.Request().Context(), ownerOf(c), c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, DeleteFolderResponse{Detached: n})
}

func (s *Server) handleSidebar(c echo.Context) error {
	groups, err := s.mgr.Sidebar(c.Request().Context(), ownerOf(c))
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, groups)
}
