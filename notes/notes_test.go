package notes

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"focus-hub/pkg/auth"
)

const noteId = "0b8f6a4e-2d7c-4f1a-9e3b-5c6d7e8f9a0b"

// MockRepository is a mock of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) List(ctx context.Context, owner string, subject string) ([]Note, error) {
	args := m.Called(ctx, owner, subject)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]Note), args.Error(1)
}

func (m *MockRepository) Insert(ctx context.Context, note *Note) (*Note, error) {
	args := m.Called(ctx, note)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockRepository) FindById(ctx context.Context, owner string, id string) (*Note, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, owner string, id string, patch NotePatch) (*Note, error) {
	args := m.Called(ctx, owner, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).(*Note), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, owner string, id string) (bool, error) {
	args := m.Called(ctx, owner, id)
	return args.Bool(0), args.Error(1)
}

func newContext(method string, target string, body string, params ...gin.Param) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	gctx, _ := gin.CreateTestContext(w)
	gctx.Request = httptest.NewRequest(method, target, bytes.NewBufferString(body))
	gctx.Request = gctx.Request.WithContext(auth.WithIdentity(gctx.Request.Context(), &auth.Identity{UID: "uid-1", Email: "u@x.com"}))
	gctx.Params = params

	return gctx, w
}

func TestSubjectFilter(t *testing.T) {
	t.Parallel()

	for _, placeholder := range []string{"", "all", "ALL", "undefined", "null", " Null "} {
		assert.Empty(t, subjectFilter(placeholder), placeholder)
	}

	assert.Equal(t, "Physics", subjectFilter("Physics"))
}

func TestSanitizer(t *testing.T) {
	t.Parallel()

	clean := NewSanitizer().Sanitize(`<p style="color:red">hi <a href="https://x.test" target="_blank">x</a></p>` +
		`<img src="https://img.test/a.png" alt="a" onerror="alert(1)"><script>alert(1)</script>`)

	assert.NotContains(t, clean, "<script")
	assert.NotContains(t, clean, "onerror")
	assert.Contains(t, clean, `style=`)
	assert.Contains(t, clean, `src="https://img.test/a.png"`)
	assert.Contains(t, clean, `alt="a"`)
	assert.Contains(t, clean, `href="https://x.test"`)
}

func TestHandlers_GetNotes(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		target         string
		wantSubject    string
		mockErr        error
		expectedStatus int
	}{
		{name: "all subjects", target: "/notes?email=u@x.com&subject=all", wantSubject: "", expectedStatus: http.StatusOK},
		{name: "one subject", target: "/notes?subject=Physics", wantSubject: "Physics", expectedStatus: http.StatusOK},
		{name: "store failure", target: "/notes", wantSubject: "", mockErr: errors.New("timeout"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(MockRepository)
			repo.On("List", mock.Anything, "u@x.com", tt.wantSubject).Return([]Note{}, tt.mockErr)

			gctx, w := newContext(http.MethodGet, tt.target, "")
			NewHandlers(repo, NewSanitizer()).GetNotes(gctx)

			assert.Equal(t, tt.expectedStatus, w.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestHandlers_PostNote(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	repo := new(MockRepository)
	repo.On("Insert", mock.Anything, mock.MatchedBy(func(note *Note) bool {
		return note.Owner == "u@x.com" && note.Content == "<b>bold</b>"
	})).Return(&Note{Id: noteId, Owner: "u@x.com"}, nil)

	gctx, w := newContext(http.MethodPost, "/note", `{"title":"T","subject":"S","content":"<b>bold</b><script>x()</script>"}`)
	NewHandlers(repo, NewSanitizer()).PostNote(gctx)

	assert.Equal(t, http.StatusCreated, w.Code)
	repo.AssertExpectations(t)

	gctx, w = newContext(http.MethodPost, "/note", `{"subject":"S"}`)
	NewHandlers(repo, NewSanitizer()).PostNote(gctx)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_NoteById(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	content := "<i>new</i>"
	id := gin.Param{Key: "id", Value: noteId}

	tests := []struct {
		name           string
		run            func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder
		expectedStatus int
	}{
		{
			name: "get",
			run: func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder {
				repo.On("FindById", mock.Anything, "u@x.com", noteId).Return(&Note{Id: noteId}, nil)
				gctx, w := newContext(http.MethodGet, "/note/"+noteId, "", id)
				h.GetNote(gctx)

				return w
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "get missing",
			run: func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder {
				repo.On("FindById", mock.Anything, "u@x.com", noteId).Return(nil, nil)
				gctx, w := newContext(http.MethodGet, "/note/"+noteId, "", id)
				h.GetNote(gctx)

				return w
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "get malformed id",
			run: func(h Handlers, _ *MockRepository) *httptest.ResponseRecorder {
				gctx, w := newContext(http.MethodGet, "/note/1", "", gin.Param{Key: "id", Value: "1"})
				h.GetNote(gctx)

				return w
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "patch sanitizes content",
			run: func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder {
				repo.On("Update", mock.Anything, "u@x.com", noteId, NotePatch{Content: &content}).Return(&Note{Id: noteId}, nil)
				gctx, w := newContext(http.MethodPatch, "/note/"+noteId, `{"content":"<i>new</i><script>x()</script>"}`, id)
				h.PatchNote(gctx)

				return w
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "patch rejects owner",
			run: func(h Handlers, _ *MockRepository) *httptest.ResponseRecorder {
				gctx, w := newContext(http.MethodPatch, "/note/"+noteId, `{"owner":"m@x.com"}`, id)
				h.PatchNote(gctx)

				return w
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "patch not owned",
			run: func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder {
				repo.On("Update", mock.Anything, "u@x.com", noteId, mock.Anything).Return(nil, nil)
				gctx, w := newContext(http.MethodPatch, "/note/"+noteId, `{"title":"x"}`, id)
				h.PatchNote(gctx)

				return w
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "delete",
			run: func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder {
				repo.On("Delete", mock.Anything, "u@x.com", noteId).Return(true, nil)
				gctx, w := newContext(http.MethodDelete, "/note/"+noteId, "", id)
				h.DeleteNote(gctx)

				return w
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "delete not owned",
			run: func(h Handlers, repo *MockRepository) *httptest.ResponseRecorder {
				repo.On("Delete", mock.Anything, "u@x.com", noteId).Return(false, nil)
				gctx, w := newContext(http.MethodDelete, "/note/"+noteId, "", id)
				h.DeleteNote(gctx)

				return w
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(MockRepository)
			w := tt.run(NewHandlers(repo, NewSanitizer()), repo)

			assert.Equal(t, tt.expectedStatus, w.Code)
			repo.AssertExpectations(t)
		})
	}
}

func TestRepository_List(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)
	columns := []string{"id", "owner", "title", "subject", "content", "created_at", "updated_at"}

	tests := []struct {
		name    string
		subject string
		sql     string
		args    []any
	}{
		{name: "every subject", sql: "FROM notes WHERE owner = $1 ORDER BY created_at DESC", args: []any{"u@x.com"}},
		{name: "one subject", subject: "Physics", sql: "FROM notes WHERE owner = $1 AND subject = $2 ORDER BY", args: []any{"u@x.com", "Physics"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			mock.ExpectQuery(regexp.QuoteMeta(tt.sql)).
				WithArgs(tt.args...).
				WillReturnRows(pgxmock.NewRows(columns).AddRow(noteId, "u@x.com", "T", "Physics", "<p>x</p>", now, nil))

			notes, err := NewRepository(mock).List(context.Background(), "u@x.com", tt.subject)
			require.NoError(t, err)
			require.Len(t, notes, 1)
			assert.Equal(t, "<p>x</p>", notes[0].Content)
			assert.Nil(t, notes[0].UpdatedAt)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRepository_Update(t *testing.T) {
	t.Parallel()

	now := time.Now().Truncate(time.Second)
	title := "New title"
	columns := []string{"id", "owner", "title", "subject", "content", "created_at", "updated_at"}

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE notes SET title = COALESCE($3, title)")).
		WithArgs(noteId, "u@x.com", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows(columns).AddRow(noteId, "u@x.com", title, "Physics", "", now, &now))

	note, err := NewRepository(mock).Update(context.Background(), "u@x.com", noteId, NotePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, title, note.Title)
	require.NotNil(t, note.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}
