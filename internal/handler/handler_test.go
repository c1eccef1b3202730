package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"facebrain/config"
	"facebrain/internal/clarifai"
	"facebrain/internal/domain/user"
	"facebrain/internal/handler"
	"facebrain/internal/repository"
	"facebrain/internal/services"
	facebrain_errors "facebrain/pkg/errors"
	"facebrain/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	noFacesURL  = "https://example.com/landscape.jpg"
	twoFacesURL = "https://example.com/couple.jpg"
)

type stubDetector struct {
	err error
}

func (d *stubDetector) DetectFaces(ctx context.Context, imageURL string) (*clarifai.Result, error) {
	if d.err != nil {
		return nil, d.err
	}
	regions := 0
	if imageURL == twoFacesURL {
		regions = 2
	}
	return &clarifai.Result{
		Status:  clarifai.Status{Code: clarifai.StatusSuccess},
		Regions: regions,
		Raw:     json.RawMessage(fmt.Sprintf(`{"status":{"code":10000},"outputs":[{"data":{"regions":%d}}]}`, regions)),
	}, nil
}

type brokenRepo struct {
	*repository.MemoryUserRepository
}

func (brokenRepo) Register(ctx context.Context, u *user.User, hash string) error {
	return fmt.Errorf("%w: relation \"login\" does not exist", facebrain_errors.ErrStore)
}

func (brokenRepo) GetUserByID(ctx context.Context, id int64) (user.User, error) {
	return user.User{}, fmt.Errorf("%w: connection refused", facebrain_errors.ErrStore)
}

type testAPI struct {
	engine   *gin.Engine
	detector *stubDetector
}

func newTestAPI(t *testing.T, repo repository.UserRepository, exposeErrors bool) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{BcryptCost: 4, DBTimeout: time.Second, ClarifaiTimeout: time.Second}
	l := logger.NewNop()
	detector := &stubDetector{}

	auth := handler.NewAuthHandler(services.NewAuthService(repo, nil, cfg, l), exposeErrors)
	profiles := handler.NewUserHandler(services.NewUserService(repo, nil, cfg, l))
	images := handler.NewImageHandler(services.NewImageService(repo, detector, nil, cfg, l))

	engine := gin.New()
	engine.POST("/signin", auth.SignIn)
	engine.POST("/register", auth.Register)
	engine.GET("/profile/:id", profiles.Profile)
	engine.PUT("/image", images.Submit)

	return &testAPI{engine: engine, detector: detector}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)
	return rec
}

type registerBody struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Fields  map[string]bool `json:"fields"`
	Field   string          `json:"field"`
	Error   string          `json:"error"`
	User    struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Email   string `json:"email"`
		Entries int64  `json:"entries"`
	} `json:"user"`
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestScenario_RegisterSignInAndSubmitImages(t *testing.T) {
	api := newTestAPI(t, repository.NewMemoryUserRepository(), false)
	creds := map[string]string{"email": "a@b.com", "name": "A", "password": "secret1"}

	rec := api.do(t, http.MethodPost, "/register", creds)
	require.Equal(t, http.StatusCreated, rec.Code)
	reg := decode[registerBody](t, rec)
	assert.True(t, reg.Success)
	assert.Equal(t, "a@b.com", reg.User.Email)
	assert.Equal(t, int64(0), reg.User.Entries)
	assert.NotContains(t, rec.Body.String(), "hash")

	rec = api.do(t, http.MethodPost, "/signin", map[string]string{"email": "a@b.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, rec.Code)
	signedIn := decode[map[string]any](t, rec)
	assert.EqualValues(t, reg.User.ID, signedIn["id"])
	assert.NotContains(t, signedIn, "hash")

	rec = api.do(t, http.MethodPut, "/image", map[string]any{"id": reg.User.ID, "input": noFacesURL})
	require.Equal(t, http.StatusOK, rec.Code)
	noFaces := decode[map[string]json.RawMessage](t, rec)
	assert.JSONEq(t, `0`, string(noFaces["entries"]))
	assert.JSONEq(t, `{"status":{"code":10000},"outputs":[{"data":{"regions":0}}]}`, string(noFaces["clarifaiResponse"]))

	rec = api.do(t, http.MethodPut, "/image", map[string]any{"id": fmt.Sprint(reg.User.ID), "input": twoFacesURL})
	require.Equal(t, http.StatusOK, rec.Code)
	twoFaces := decode[map[string]json.RawMessage](t, rec)
	assert.JSONEq(t, `1`, string(twoFaces["entries"]))

	rec = api.do(t, http.MethodGet, fmt.Sprintf("/profile/%d", reg.User.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	profile := decode[map[string]any](t, rec)
	assert.EqualValues(t, 1, profile["entries"])
}

func TestSignIn_Errors(t *testing.T) {
	api := newTestAPI(t, repository.NewMemoryUserRepository(), false)
	api.do(t, http.MethodPost, "/register", map[string]string{"email": "a@b.com", "name": "A", "password": "secret1"})

	tests := []struct {
		name string
		body any
		want string
	}{
		{"missing password", map[string]string{"email": "a@b.com"}, "incorrect form submission"},
		{"malformed body", "{not json", "incorrect form submission"},
		{"wrong password", map[string]string{"email": "a@b.com", "password": "secret2"}, "wrong credentials"},
		{"unknown email", map[string]string{"email": "x@b.com", "password": "secret1"}, "wrong credentials"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := api.do(t, http.MethodPost, "/signin", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tc.want, decode[string](t, rec))
		})
	}
}

func TestRegister_Errors(t *testing.T) {
	api := newTestAPI(t, repository.NewMemoryUserRepository(), false)
	require.Equal(t, http.StatusCreated,
		api.do(t, http.MethodPost, "/register", map[string]string{"email": "taken@b.com", "name": "T", "password": "secret1"}).Code)

	rec := api.do(t, http.MethodPost, "/register", map[string]string{"name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	missing := decode[registerBody](t, rec)
	assert.False(t, missing.Success)
	assert.Equal(t, "All fields are required", missing.Message)
	assert.Equal(t, map[string]bool{"email": true, "name": false, "password": true}, missing.Fields)

	rec = api.do(t, http.MethodPost, "/register", map[string]string{"email": "nope", "name": "A", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid email format", decode[registerBody](t, rec).Message)

	rec = api.do(t, http.MethodPost, "/register", map[string]string{"email": "a@b.com", "name": "A", "password": "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Password must be at least 6 characters", decode[registerBody](t, rec).Message)

	rec = api.do(t, http.MethodPost, "/register", map[string]string{"email": "TAKEN@b.com", "name": "A", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	dup := decode[registerBody](t, rec)
	assert.Equal(t, "Email already exists", dup.Message)
	assert.Equal(t, "email", dup.Field)
}

func TestRegister_FailureDetailOnlyInDevelopment(t *testing.T) {
	repo := brokenRepo{repository.NewMemoryUserRepository()}
	body := map[string]string{"email": "a@b.com", "name": "A", "password": "secret1"}

	prod := newTestAPI(t, repo, false).do(t, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusInternalServerError, prod.Code)
	prodBody := decode[registerBody](t, prod)
	assert.Equal(t, "Registration failed", prodBody.Message)
	assert.Empty(t, prodBody.Error)

	dev := newTestAPI(t, repo, true).do(t, http.MethodPost, "/register", body)
	assert.Equal(t, http.StatusInternalServerError, dev.Code)
	assert.Contains(t, decode[registerBody](t, dev).Error, "does not exist")
}

func TestProfile_Errors(t *testing.T) {
	api := newTestAPI(t, repository.NewMemoryUserRepository(), false)

	rec := api.do(t, http.MethodGet, "/profile/42", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not found", decode[string](t, rec))

	rec = api.do(t, http.MethodGet, "/profile/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Not found", decode[string](t, rec))

	broken := newTestAPI(t, brokenRepo{repository.NewMemoryUserRepository()}, false)
	rec = broken.do(t, http.MethodGet, "/profile/1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Error getting users", decode[string](t, rec))
}

func TestProfile_IsIdempotent(t *testing.T) {
	api := newTestAPI(t, repository.NewMemoryUserRepository(), false)
	reg := decode[registerBody](t, api.do(t, http.MethodPost, "/register",
		map[string]string{"email": "a@b.com", "name": "A", "password": "secret1"}))

	path := fmt.Sprintf("/profile/%d", reg.User.ID)
	first := api.do(t, http.MethodGet, path, nil)
	second := api.do(t, http.MethodGet, path, nil)

	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.Bytes(), second.Body.Bytes())
}

func TestImage_Errors(t *testing.T) {
	api := newTestAPI(t, repository.NewMemoryUserRepository(), false)
	reg := decode[registerBody](t, api.do(t, http.MethodPost, "/register",
		map[string]string{"email": "a@b.com", "name": "A", "password": "secret1"}))

	rec := api.do(t, http.MethodPut, "/image", map[string]any{"id": reg.User.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/image", map[string]any{"id": "abc", "input": twoFacesURL})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPut, "/image", map[string]any{"id": 999, "input": twoFacesURL})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User not found", decode[string](t, rec))

	api.detector.err = fmt.Errorf("%w: dial tcp: i/o timeout", clarifai.ErrUnavailable)
	rec = api.do(t, http.MethodPut, "/image", map[string]any{"id": reg.User.ID, "input": twoFacesURL})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error processing image", decode[string](t, rec))

	api.detector.err = &clarifai.StatusError{Status: clarifai.Status{Code: 21200, Description: "Model does not exist"}}
	rec = api.do(t, http.MethodPut, "/image", map[string]any{"id": reg.User.ID, "input": twoFacesURL})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Error in face detection", decode[string](t, rec))
}

func TestImage_LookupFailure(t *testing.T) {
	api := newTestAPI(t, brokenRepo{repository.NewMemoryUserRepository()}, false)

	rec := api.do(t, http.MethodPut, "/image", map[string]any{"id": 1, "input": twoFacesURL})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Database error", decode[string](t, rec))
}
