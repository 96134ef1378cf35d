package core

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"focus-hub/pkg/auth"
	"focus-hub/pkg/rest"
)

// withCaller stands in for the authentication middleware.
func withCaller(email string) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		if email != "" {
			ctx := auth.WithIdentity(gctx.Request.Context(), &auth.Identity{UID: "uid-" + email, Email: email})
			gctx.Request = gctx.Request.WithContext(ctx)
		}

		gctx.Next()
	}
}

func newTestEngine(t *testing.T, caller string, svc Service) (*httptest.ResponseRecorder, *gin.Engine) {
	t.Helper()

	w := httptest.NewRecorder()
	_, engine := gin.CreateTestContext(w)
	engine.Use(withCaller(caller))
	Routes(engine, NewHandlers(svc))

	return w, engine
}

func serve(t *testing.T, caller string, svc Service, method string, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var payload []byte
	if s, ok := body.(string); ok {
		payload = []byte(s)
	} else if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(t, err)
	}

	w, engine := newTestEngine(t, caller, svc)
	engine.ServeHTTP(w, httptest.NewRequest(method, target, bytes.NewBuffer(payload)))

	return w
}

func TestHandlers_Create(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	start := testNow.Add(24 * time.Hour)
	valid := map[string]any{
		"subject":    "Physics",
		"startTime":  start,
		"endTime":    start.Add(time.Hour),
		"instructor": "Dr. Rahman",
		"color":      "#123456",
		"day":        "Sunday",
	}

	tests := []struct {
		name           string
		caller         string
		body           any
		mockSetup      func(repo *MockRepository)
		expectedStatus int
	}{
		{
			name:   "success",
			caller: "u@x.com",
			body:   valid,
			mockSetup: func(repo *MockRepository) {
				repo.On("Overlaps", mock.Anything, "u@x.com", mock.Anything, "").Return(false, nil)
				repo.On("Insert", mock.Anything, mock.MatchedBy(func(item *ScheduledItem) bool {
					return item.Owner == "u@x.com"
				})).Return(&ScheduledItem{Id: "uuid-1", Owner: "u@x.com", Subject: "Physics"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "owner in payload is ignored",
			caller: "u@x.com",
			body: map[string]any{
				"subject": "Physics", "startTime": start, "endTime": start.Add(time.Hour),
				"instructor": "Dr. Rahman", "color": "#123456", "day": "Sunday", "owner": "mallory@x.com",
			},
			mockSetup: func(repo *MockRepository) {
				repo.On("Overlaps", mock.Anything, "u@x.com", mock.Anything, "").Return(false, nil)
				repo.On("Insert", mock.Anything, mock.MatchedBy(func(item *ScheduledItem) bool {
					return item.Owner == "u@x.com"
				})).Return(&ScheduledItem{Id: "uuid-1", Owner: "u@x.com"}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:   "overlap conflict",
			caller: "u@x.com",
			body:   valid,
			mockSetup: func(repo *MockRepository) {
				repo.On("Overlaps", mock.Anything, "u@x.com", mock.Anything, "").Return(true, nil)
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "ordering violation",
			caller: "u@x.com",
			body: map[string]any{
				"subject": "Physics", "startTime": start, "endTime": start.Add(-time.Hour),
				"instructor": "Dr. Rahman", "color": "#123456", "day": "Sunday",
			},
			mockSetup:      func(*MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "invalid json",
			caller:         "u@x.com",
			body:           "invalid",
			mockSetup:      func(*MockRepository) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unauthenticated",
			body:           valid,
			mockSetup:      func(*MockRepository) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "store failure",
			caller: "u@x.com",
			body:   valid,
			mockSetup: func(repo *MockRepository) {
				repo.On("Overlaps", mock.Anything, "u@x.com", mock.Anything, "").Return(false, nil)
				repo.On("Insert", mock.Anything, mock.Anything).Return(nil, errors.New("pq: connection refused"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := new(MockRepository)
			tt.mockSetup(repo)

			w := serve(t, tt.caller, NewService(KindClass, repo, testOptions()), http.MethodPost, "/class", tt.body)

			assert.Equal(t, tt.expectedStatus, w.Code)
			repo.AssertExpectations(t)

			if tt.expectedStatus == http.StatusInternalServerError {
				assert.NotContains(t, w.Body.String(), "connection refused")
			}
		})
	}
}

func TestHandlers_List(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name           string
		target         string
		expectedStatus int
		check          func(t *testing.T, body []byte)
	}{
		{
			name:           "defaults",
			target:         "/tasks",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var listing struct {
					View       string          `json:"view"`
					Mode       string          `json:"mode"`
					Page       int             `json:"page"`
					Limit      int             `json:"limit"`
					TotalCount int64           `json:"totalCount"`
					TotalPages int             `json:"totalPages"`
					Items      []ScheduledItem `json:"items"`
				}
				require.NoError(t, json.Unmarshal(body, &listing))
				assert.Equal(t, "flat", listing.View)
				assert.Equal(t, "next", listing.Mode)
				assert.Equal(t, 1, listing.Page)
				assert.Equal(t, 5, listing.Limit)
				assert.Equal(t, int64(2), listing.TotalCount)
				assert.Len(t, listing.Items, 2)
			},
		},
		{
			name:           "type alias and group view",
			target:         "/tasks?type=next&view=group&timezone=Asia/Dhaka&email=u@x.com",
			expectedStatus: http.StatusOK,
			check: func(t *testing.T, body []byte) {
				var listing struct {
					Items []DayBucket `json:"items"`
				}
				require.NoError(t, json.Unmarshal(body, &listing))
				require.Len(t, listing.Items, 1)
				assert.Equal(t, 2, listing.Items[0].Count)
			},
		},
		{name: "invalid mode", target: "/tasks?mode=soon", expectedStatus: http.StatusBadRequest},
		{name: "invalid view", target: "/tasks?view=tree", expectedStatus: http.StatusBadRequest},
		{name: "invalid timezone", target: "/tasks?timezone=Not/AZone", expectedStatus: http.StatusBadRequest},
		{name: "someone else's email", target: "/tasks?email=other@x.com", expectedStatus: http.StatusForbidden},
	}

	repo := &memRepository{}
	day := testNow.Add(24 * time.Hour)
	seed(t, repo, "u@x.com", day, day.Add(time.Hour))
	svc := NewService(KindTask, repo, testOptions())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := serve(t, "u@x.com", svc, http.MethodGet, tt.target, nil)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.check != nil {
				tt.check(t, w.Body.Bytes())
			}
		})
	}
}

func TestHandlers_GetUpdateDelete(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	start := testNow.Add(24 * time.Hour)

	newItem := func(t *testing.T, svc Service) *ScheduledItem {
		t.Helper()

		item, err := svc.Create(ctx, "u@x.com", &TaskDraft{Title: "Essay", StartTime: start, EndTime: start.Add(time.Hour)})
		require.NoError(t, err)

		return item
	}

	tests := []struct {
		name           string
		caller         string
		method         string
		path           func(id string) string
		body           any
		expectedStatus int
	}{
		{name: "get", caller: "u@x.com", method: http.MethodGet, path: func(id string) string { return "/task/" + id }, expectedStatus: http.StatusOK},
		{name: "get not owned", caller: "m@x.com", method: http.MethodGet, path: func(id string) string { return "/task/" + id }, expectedStatus: http.StatusNotFound},
		{name: "get malformed id", caller: "u@x.com", method: http.MethodGet, path: func(string) string { return "/task/42" }, expectedStatus: http.StatusBadRequest},
		{name: "patch", caller: "u@x.com", method: http.MethodPatch, path: func(id string) string { return "/task/" + id }, body: `{"completed":true}`, expectedStatus: http.StatusOK},
		{name: "patch unknown field", caller: "u@x.com", method: http.MethodPatch, path: func(id string) string { return "/task/" + id }, body: `{"owner":"m@x.com"}`, expectedStatus: http.StatusBadRequest},
		{name: "patch not owned", caller: "m@x.com", method: http.MethodPatch, path: func(id string) string { return "/task/" + id }, body: `{"completed":true}`, expectedStatus: http.StatusNotFound},
		{name: "delete", caller: "u@x.com", method: http.MethodDelete, path: func(id string) string { return "/task/" + id }, expectedStatus: http.StatusOK},
		{name: "delete not owned", caller: "m@x.com", method: http.MethodDelete, path: func(id string) string { return "/task/" + id }, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc := NewService(KindTask, &memRepository{}, testOptions())
			item := newItem(t, svc)

			w := serve(t, tt.caller, svc, tt.method, tt.path(item.Id), tt.body)
			assert.Equal(t, tt.expectedStatus, w.Code, w.Body.String())

			if tt.expectedStatus != http.StatusOK {
				var body rest.Error
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
				assert.NotEmpty(t, body.Message)
			}

			if tt.name == "patch" {
				assert.True(t, strings.Contains(w.Body.String(), `"completed":true`))
			}
		})
	}
}
