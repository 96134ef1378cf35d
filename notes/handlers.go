package notes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"focus-hub/pkg/auth"
	"focus-hub/pkg/rest"
)

type Handlers interface {
	GetNotes(gctx *gin.Context)
	PostNote(gctx *gin.Context)
	GetNote(gctx *gin.Context)
	PatchNote(gctx *gin.Context)
	DeleteNote(gctx *gin.Context)
}

type handlers struct {
	repository Repository
	sanitizer  Sanitizer
}

func NewHandlers(repository Repository, sanitizer Sanitizer) Handlers {
	return &handlers{repository: repository, sanitizer: sanitizer}
}

func Routes(router gin.IRoutes, h Handlers) {
	router.GET("/notes", auth.VerifyEmail(), h.GetNotes)
	router.POST("/note", h.PostNote)
	router.GET("/note/:id", h.GetNote)
	router.PATCH("/note/:id", h.PatchNote)
	router.DELETE("/note/:id", h.DeleteNote)
}

func (h *handlers) GetNotes(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	notes, err := h.repository.List(ctx, owner, subjectFilter(gctx.Query("subject")))
	if err != nil {
		rest.Abort(gctx, "listing notes failed", err)
		return
	}

	gctx.JSON(http.StatusOK, notes)
}

func (h *handlers) PostNote(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, err := auth.Owner(ctx)
	if err != nil {
		rest.Abort(gctx, "unauthorized access", err)
		return
	}

	var draft NoteDraft

	err = rest.BindJSON(gctx, &draft)
	if err != nil {
		rest.Abort(gctx, "note validation failed", err)
		return
	}

	saved, err := h.repository.Insert(ctx, &Note{
		Owner:   owner,
		Title:   draft.Title,
		Subject: draft.Subject,
		Content: h.sanitizer.Sanitize(draft.Content),
	})
	if err != nil {
		rest.Abort(gctx, "saving note failed", err)
		return
	}

	gctx.JSON(http.StatusCreated, saved)
}

func (h *handlers) GetNote(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, id, err := ownerAndId(gctx)
	if err != nil {
		rest.Abort(gctx, "getting note failed", err)
		return
	}

	note, err := h.repository.FindById(ctx, owner, id)
	if err != nil {
		rest.Abort(gctx, "getting note failed", err)
		return
	}

	if note == nil {
		rest.Abort(gctx, "Note not found", rest.NotFound("note %s not found", id))
		return
	}

	gctx.JSON(http.StatusOK, note)
}

func (h *handlers) PatchNote(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, id, err := ownerAndId(gctx)
	if err != nil {
		rest.Abort(gctx, "updating note failed", err)
		return
	}

	var patch NotePatch

	err = rest.DecodeStrict(gctx.Request.Body, &patch)
	if err != nil {
		rest.Abort(gctx, "note validation failed", err)
		return
	}

	if patch.Content != nil {
		clean := h.sanitizer.Sanitize(*patch.Content)
		patch.Content = &clean
	}

	note, err := h.repository.Update(ctx, owner, id, patch)
	if err != nil {
		rest.Abort(gctx, "updating note failed", err)
		return
	}

	if note == nil {
		rest.Abort(gctx, "Note not found", rest.NotFound("note %s not found", id))
		return
	}

	gctx.JSON(http.StatusOK, note)
}

func (h *handlers) DeleteNote(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	owner, id, err := ownerAndId(gctx)
	if err != nil {
		rest.Abort(gctx, "deleting note failed", err)
		return
	}

	deleted, err := h.repository.Delete(ctx, owner, id)
	if err != nil {
		rest.Abort(gctx, "deleting note failed", err)
		return
	}

	if !deleted {
		rest.Abort(gctx, "Note not found", rest.NotFound("note %s not found", id))
		return
	}

	gctx.JSON(http.StatusOK, gin.H{"id": id, "deleted": true})
}

func ownerAndId(gctx *gin.Context) (string, string, error) {
	owner, err := auth.Owner(gctx.Request.Context())
	if err != nil {
		return "", "", err
	}

	id := gctx.Param("id")

	err = uuid.Validate(id)
	if err != nil {
		return "", "", rest.Validation("invalid id %q", id)
	}

	return owner, id, nil
}
