package rest

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/totegamma/concrnt-aspects/internal/domain"
	"github.com/totegamma/concrnt-aspects/internal/present/rest/middleware"
	"github.com/totegamma/concrnt-aspects/internal/present/rest/presenter"
	"github.com/totegamma/concrnt-aspects/internal/usecase"
)

// MaxLimit caps the page size a client may request.
const MaxLimit = 100

type Handler struct {
	visibility   *usecase.VisibilityUsecase
	relationship *usecase.RelationshipUsecase
	post         *usecase.PostUsecase
	auth         *middleware.AuthMiddleware
}

func NewHandler(
	visibility *usecase.VisibilityUsecase,
	relationship *usecase.RelationshipUsecase,
	post *usecase.PostUsecase,
	auth *middleware.AuthMiddleware,
) *Handler {
	return &Handler{
		visibility:   visibility,
		relationship: relationship,
		post:         post,
		auth:         auth,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.handleHealth)

	api := e.Group("/api/v1", h.auth.IdentifyIdentity, middleware.RequireUser)
	api.GET("/stream", h.handleStream)

	api.GET("/posts/:id", h.handleGetPost)
	api.POST("/posts", h.handleCreatePost)
	api.PATCH("/posts/:id", h.handleEditPost)
	api.POST("/posts/:id/publish", h.handlePublishPost)
	api.PUT("/posts/:id/visibilities/:aspect", h.handleSetHidden)

	api.POST("/people", h.handleDiscoverPerson)
	api.GET("/people/:id/posts", h.handlePostsFrom)
	api.GET("/people/:id/contact", h.handleContactFor)
	api.POST("/people/:id/contact/accept", h.handleAcceptContact)
	api.GET("/people/:id/aspects", h.handleAspectsWithPerson)

	api.GET("/aspects", h.handleAspects)
	api.POST("/aspects", h.handleCreateAspect)
	api.GET("/aspects/people", h.handlePeopleInAspects)

	api.POST("/contacts", h.handleCreateContact)
	api.POST("/contacts/move", h.handleMoveContact)
	api.POST("/contacts/:id/aspects/:aspect", h.handleAddToAspect)
	api.DELETE("/contacts/:id/aspects/:aspect", h.handleRemoveFromAspect)
}

type pageResponse struct {
	Posts      []domain.Post `json:"posts"`
	NextCursor string        `json:"next_cursor,omitempty"`
}

func newPage(posts []domain.Post, opts domain.QueryOptions) pageResponse {
	page := pageResponse{Posts: posts}
	if next := opts.NextCursor(posts); next != nil {
		page.NextCursor = next.String()
	}
	return page
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleStream(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	opts, err := parseQueryOptions(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	posts, applied, err := h.visibility.VisiblePosts(ctx, viewer, opts)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cached(c, newPage(posts, applied))
}

func (h *Handler) handleGetPost(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post id")
	}

	post, err := h.visibility.FindVisiblePostByID(ctx, viewer, id)
	if err != nil {
		return presenter.Error(c, err)
	}
	if post == nil {
		return presenter.NotFound(c, "post not found")
	}
	return presenter.Cached(c, post)
}

func (h *Handler) handleCreatePost(c echo.Context) error {
	ctx := c.Request().Context()
	author, _ := middleware.Requester(c)

	var input domain.NewPost
	if err := c.Bind(&input); err != nil {
		return presenter.BadRequest(c, err)
	}

	post, err := h.post.Create(ctx, author, input)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, post)
}

type editRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleEditPost(c echo.Context) error {
	ctx := c.Request().Context()
	author, _ := middleware.Requester(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post id")
	}

	var req editRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	post, err := h.post.Edit(ctx, author, id, req.Text)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

func (h *Handler) handlePublishPost(c echo.Context) error {
	ctx := c.Request().Context()
	author, _ := middleware.Requester(c)

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post id")
	}

	post, err := h.post.Publish(ctx, author, id)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, post)
}

type hiddenRequest struct {
	Hidden bool `json:"hidden"`
}

func (h *Handler) handleSetHidden(c echo.Context) error {
	ctx := c.Request().Context()
	author, _ := middleware.Requester(c)

	postID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid post id")
	}
	aspectID, err := strconv.ParseInt(c.Param("aspect"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid aspect id")
	}

	var req hiddenRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.post.SetHidden(ctx, author, postID, aspectID, req.Hidden); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, domain.PostVisibility{PostID: postID, AspectID: aspectID, Hidden: req.Hidden})
}

type discoverRequest struct {
	Handle string `json:"handle"`
}

func (h *Handler) handleDiscoverPerson(c echo.Context) error {
	ctx := c.Request().Context()

	var req discoverRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	person, err := h.relationship.DiscoverPerson(ctx, req.Handle)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, person)
}

func (h *Handler) handlePostsFrom(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid person id")
	}

	opts, err := parseQueryOptions(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	posts, applied, err := h.visibility.PostsFrom(ctx, viewer, personID, opts)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Cached(c, newPage(posts, applied))
}

func (h *Handler) handleContactFor(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid person id")
	}

	contact, err := h.relationship.ContactForPersonID(ctx, viewer, personID)
	if err != nil {
		return presenter.Error(c, err)
	}
	if contact == nil {
		return presenter.NotFound(c, "contact not found")
	}
	return presenter.OK(c, contact)
}

func (h *Handler) handleAspectsWithPerson(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid person id")
	}

	aspects, err := h.relationship.AspectsWithPerson(ctx, viewer, personID)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, aspects)
}

func (h *Handler) handleAspects(c echo.Context) error {
	ctx := c.Request().Context()
	owner, _ := middleware.Requester(c)

	aspects, err := h.relationship.Aspects(ctx, owner)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, aspects)
}

type aspectRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreateAspect(c echo.Context) error {
	ctx := c.Request().Context()
	owner, _ := middleware.Requester(c)

	var req aspectRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	aspect, err := h.relationship.CreateAspect(ctx, owner, req.Name)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, aspect)
}

func (h *Handler) handlePeopleInAspects(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	aspectIDs, err := parseIDList(c.QueryParam("aspect_ids"))
	if err != nil {
		return presenter.Error(c, err)
	}
	filter, err := domain.ParsePeopleFilter(c.QueryParam("type"))
	if err != nil {
		return presenter.Error(c, err)
	}

	people, err := h.relationship.PeopleInAspects(ctx, viewer, aspectIDs, filter)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, people)
}

type contactRequest struct {
	PersonID  int64   `json:"personID"`
	AspectIDs []int64 `json:"aspectIDs"`
	Pending   bool    `json:"pending"`
}

func (h *Handler) handleCreateContact(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	var req contactRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	contact, err := h.relationship.CreateContact(ctx, viewer, req.PersonID, req.Pending, req.AspectIDs)
	if err != nil {
		return presenter.Error(c, err)
	}
	return presenter.Created(c, contact)
}

type moveRequest struct {
	PersonID int64 `json:"personID"`
	From     int64 `json:"from"`
	To       int64 `json:"to"`
}

func (h *Handler) handleMoveContact(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	var req moveRequest
	if err := c.Bind(&req); err != nil {
		return presenter.BadRequest(c, err)
	}

	if err := h.relationship.MoveContact(ctx, viewer, req.PersonID, req.From, req.To); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleAcceptContact(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	personID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return presenter.BadRequestMessage(c, "invalid person id")
	}

	if err := h.relationship.AcceptContact(ctx, viewer, personID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleAddToAspect(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	contactID, aspectID, err := membershipParams(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	if err := h.relationship.AddContactToAspect(ctx, viewer, contactID, aspectID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, domain.AspectMembership{AspectID: aspectID, ContactID: contactID})
}

func (h *Handler) handleRemoveFromAspect(c echo.Context) error {
	ctx := c.Request().Context()
	viewer, _ := middleware.Requester(c)

	contactID, aspectID, err := membershipParams(c)
	if err != nil {
		return presenter.Error(c, err)
	}

	if err := h.relationship.RemoveContactFromAspect(ctx, viewer, contactID, aspectID); err != nil {
		return presenter.Error(c, err)
	}
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func membershipParams(c echo.Context) (int64, int64, error) {
	contactID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, 0, domain.InvalidOptionError{Option: "id", Reason: "invalid contact id"}
	}
	aspectID, err := strconv.ParseInt(c.Param("aspect"), 10, 64)
	if err != nil {
		return 0, 0, domain.InvalidOptionError{Option: "aspect", Reason: "invalid aspect id"}
	}
	return contactID, aspectID, nil
}

// parseQueryOptions reads type, aspect_ids, order, limit and max_time.
// The limit is capped at MaxLimit; everything else is validated downstream.
func parseQueryOptions(c echo.Context) (domain.QueryOptions, error) {
	var opts domain.QueryOptions

	opts.Type = domain.PostType(c.QueryParam("type"))

	if raw := c.QueryParam("aspect_ids"); raw != "" {
		ids, err := parseIDList(raw)
		if err != nil {
			return opts, err
		}
		opts.ByMembersOf = ids
	}

	if raw := c.QueryParam("order"); raw != "" {
		order, err := domain.ParseOrder(raw)
		if err != nil {
			return opts, err
		}
		opts.Order = order
	}

	if raw := c.QueryParam("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			return opts, domain.InvalidOptionError{Option: "limit", Reason: "not an integer"}
		}
		if limit > MaxLimit {
			limit = MaxLimit
		}
		opts.Limit = limit
	}

	if raw := c.QueryParam("max_time"); raw != "" {
		cursor, err := domain.ParseCursor(raw)
		if err != nil {
			return opts, err
		}
		opts.MaxTime = &cursor
	}

	return opts, nil
}

// parseIDList reads a comma separated id list. An absent list is empty; a
// present one must name at least one id.
func parseIDList(raw string) ([]int64, error) {
	ids := []int64{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, domain.InvalidOptionError{Option: "aspect_ids", Reason: "invalid id " + part}
		}
		ids = append(ids, id)
	}
	if raw != "" && len(ids) == 0 {
		return nil, domain.InvalidOptionError{Option: "aspect_ids", Reason: "empty list"}
	}
	return ids, nil
}
