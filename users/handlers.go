package users

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focus-hub/pkg/auth"
	"focus-hub/pkg/rest"
)

type Handlers interface {
	PostUser(gctx *gin.Context)
	GetUsers(gctx *gin.Context)
}

type handlers struct {
	repository Repository
}

func NewHandlers(repository Repository) Handlers {
	return &handlers{repository: repository}
}

func Routes(router gin.IRoutes, h Handlers) {
	router.POST("/user", h.PostUser)
	router.GET("/users", h.GetUsers)
}

func (h *handlers) PostUser(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	var profile Profile

	err = rest.BindJSON(gctx, &profile)
	if err != nil {
		rest.Abort(gctx, "user validation failed", err)
		return
	}

	saved, created, err := h.repository.Register(ctx, &User{
		Email:    owner,
		Name:     profile.User.Name,
		PhotoURL: profile.User.PhotoURL,
	})
	if err != nil {
		rest.Abort(gctx, "saving user failed", err)
		return
	}

	if !created {
		rest.Abort(gctx, "User already Exist. Please login instead", rest.Conflict("user %s already registered", owner))
		return
	}

	gctx.JSON(http.StatusCreated, saved)
}

func (h *handlers) GetUsers(gctx *gin.Context) {
	users, err := h.repository.List(gctx.Request.Context())
	if err != nil {
		rest.Abort(gctx, "listing users failed", err)
		return
	}

	gctx.JSON(http.StatusOK, users)
}
