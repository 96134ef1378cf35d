package quiz

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"focus-hub/pkg/rest"
)

type Request struct {
	Subject  string `json:"subject"  validate:"required,max=100"`
	SubTopic string `json:"subTopic" validate:"required,max=100"`
	Level    string `json:"level"    validate:"required,max=100"`
	Language string `json:"language" validate:"required,max=100"`
}

func (r Request) Prompt() string {
	return fmt.Sprintf("generate 5 questions with answers on %s at %s and level %s subject or topic on %s language",
		r.Subject, r.SubTopic, r.Level, r.Language)
}

type Handlers interface {
	PostQuiz(gctx *gin.Context)
}

type handlers struct {
	generator Generator
}

func NewHandlers(generator Generator) Handlers {
	return &handlers{generator: generator}
}

func Routes(router gin.IRoutes, h Handlers) {
	router.POST("/gemini", h.PostQuiz)
}

func (h *handlers) PostQuiz(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	var req Request

	err := rest.BindJSON(gctx, &req)
	if err != nil {
		rest.Abort(gctx, "quiz validation failed", err)
		return
	}

	text, err := h.generator.Generate(ctx, req.Prompt())
	if err != nil {
		rest.Abort(gctx, "Failed to generate quiz", err)
		return
	}

	log.Ctx(ctx).Debug().Str("subject", req.Subject).Int("length", len(text)).Msg("quiz generated")
	gctx.String(http.StatusOK, text)
}
