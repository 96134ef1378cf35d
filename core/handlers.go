package core

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"focus-hub/pkg/auth"
	"focus-hub/pkg/rest"
)

type Handlers interface {
	Kind() Kind
	List(gctx *gin.Context)
	Create(gctx *gin.Context)
	Get(gctx *gin.Context)
	Update(gctx *gin.Context)
	Delete(gctx *gin.Context)
}

type handlers struct {
	service Service
}

func NewHandlers(service Service) Handlers {
	return &handlers{service: service}
}

// Routes mounts the handlers of one kind, e.g. GET /classes and POST /class.
func Routes(router gin.IRoutes, h Handlers) {
	single := "/" + h.Kind().String()

	router.GET("/"+h.Kind().table(), auth.VerifyEmail(), h.List)
	router.POST(single, h.Create)
	router.GET(single+"/:id", h.Get)
	router.PATCH(single+"/:id", h.Update)
	router.DELETE(single+"/:id", h.Delete)
}

func (h *handlers) Kind() Kind {
	return h.service.Kind()
}

func (h *handlers) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	// "type" is the historical name of the mode parameter.
	mode := gctx.Query("mode")
	if mode == "" {
		mode = gctx.Query("type")
	}

	listing, err := h.service.List(ctx, owner, ListRequest{
		Mode:     mode,
		View:     gctx.Query("view"),
		Timezone: gctx.Query("timezone"),
		Page:     gctx.Query("page"),
		Limit:    gctx.Query("limit"),
	})
	if err != nil {
		rest.Abort(gctx, "listing failed", err)
		return
	}

	gctx.JSON(http.StatusOK, listing)
}

func (h *handlers) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	draft := h.service.Kind().NewDraft()

	err = rest.BindJSON(gctx, draft)
	if err != nil {
		rest.Abort(gctx, h.Kind().String()+" validation failed", err)
		return
	}

	saved, err := h.service.Create(ctx, owner, draft)
	if err != nil {
		rest.Abort(gctx, "saving "+h.Kind().String()+" failed", err)
		return
	}

	gctx.JSON(http.StatusCreated, saved)
}

func (h *handlers) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	item, err := h.service.Get(ctx, owner, gctx.Param("id"))
	if err != nil {
		rest.Abort(gctx, "getting "+h.Kind().String()+" failed", err)
		return
	}

	gctx.JSON(http.StatusOK, item)
}

func (h *handlers) Update(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	patch := h.service.Kind().NewPatch()

	// Unknown fields, owner among them, are rejected.
	err = rest.DecodeStrict(gctx.Request.Body, patch)
	if err != nil {
		rest.Abort(gctx, h.Kind().String()+" validation failed", err)
		return
	}

	updated, err := h.service.Update(ctx, owner, gctx.Param("id"), patch)
	if err != nil {
		rest.Abort(gctx, "updating "+h.Kind().String()+" failed", err)
		return
	}

	gctx.JSON(http.StatusOK, updated)
}

func (h *handlers) Delete(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	id := gctx.Param("id")

	err = h.service.Delete(ctx, owner, id)
	if err != nil {
		rest.Abort(gctx, "deleting "+h.Kind().String()+" failed", err)
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}
