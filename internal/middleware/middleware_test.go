package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/learnway/member/internal/app/models/dto"
	"github.com/learnway/member/internal/pkg/apperrors"
	"github.com/learnway/member/internal/pkg/auth"
	"github.com/learnway/member/internal/pkg/session"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	UseFormFieldNames()
}

func TestHandleAPIError_StatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   dto.ErrorCode
		field  string
	}{
		{apperrors.NewFieldError("username", apperrors.ErrDuplicateIdentity, "taken"), http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, "username"},
		{apperrors.NewFieldError("confirmPassword", apperrors.ErrPasswordMismatch, "no match"), http.StatusBadRequest, dto.ErrorCodePasswordMismatch, "confirmPassword"},
		{apperrors.NewFieldError("telecom", apperrors.ErrInvalidFieldValue, "bad"), http.StatusBadRequest, dto.ErrorCodeInvalidFieldValue, "telecom"},
		{fmt.Errorf("load: %w", apperrors.ErrMemberNotFound), http.StatusNotFound, dto.ErrorCodeResourceNotFound, ""},
		{fmt.Errorf("%w: disk full", apperrors.ErrFileIO), http.StatusInternalServerError, dto.ErrorCodeFileStorage, ""},
		{apperrors.ErrInvalidCredentials, http.StatusUnauthorized, dto.ErrorCodeInvalidCredentials, ""},
		{errors.New("boom"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, ""},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		HandleAPIError(c, tc.err)

		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		var resp dto.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		assert.Equal(t, tc.code, resp.Error.Code, tc.err.Error())
		assert.Equal(t, tc.field, resp.Error.Field, tc.err.Error())
	}
}

type signupForm struct {
	Username string `form:"username" binding:"required"`
	Email    string `form:"email" binding:"omitempty,email"`
}

func TestHandleBindingError_ReportsFormFieldNames(t *testing.T) {
	router := gin.New()
	router.POST("/join", func(c *gin.Context) {
		var form signupForm
		if err := c.ShouldBind(&form); err != nil {
			HandleBindingError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodPost, "/join", strings.NewReader("email=not-an-email"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	var resp dto.ValidationErrors
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 2)
	fields := []string{resp.Errors[0].Field, resp.Errors[1].Field}
	assert.ElementsMatch(t, []string{"username", "email"}, fields)
}

func newAuthRouter(t *testing.T, identities session.IdentityStore) (*gin.Engine, *auth.JWTService) {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", AccessTokenExp: time.Hour, TokenIssuer: "test"})
	m := NewAuthMiddleware(jwtService, identities, zerolog.Nop())

	router := gin.New()
	router.GET("/me", m.JWTAuth(), func(c *gin.Context) {
		memberID, _ := CurrentMemberID(c)
		c.String(http.StatusOK, memberID)
	})
	router.GET("/admin", m.JWTAuth(), m.RoleRequired("ROLE_ADMIN"), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router, jwtService
}

func doGet(router *gin.Engine, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuth(t *testing.T) {
	router, jwtService := newAuthRouter(t, session.NewMemoryStore())

	assert.Equal(t, http.StatusUnauthorized, doGet(router, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doGet(router, "/me", "not.a.token").Code)

	token, _, err := jwtService.GenerateAccessToken("minji", "ROLE_USER")
	require.NoError(t, err)
	w := doGet(router, "/me", token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "minji", w.Body.String())
}

func TestRoleRequired_UsesStoredIdentity(t *testing.T) {
	identities := session.NewMemoryStore()
	router, jwtService := newAuthRouter(t, identities)

	token, _, err := jwtService.GenerateAccessToken("minji", "ROLE_USER")
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, doGet(router, "/admin", token).Code)

	require.NoError(t, identities.Save(context.Background(), session.Identity{MemberID: "minji", Role: "ROLE_ADMIN"}))
	assert.Equal(t, http.StatusOK, doGet(router, "/admin", token).Code)
}

func TestLimitBodySize(t *testing.T) {
	router := gin.New()
	router.Use(LimitBodySize(8))
	router.POST("/upload", func(c *gin.Context) {
		if _, err := c.GetRawData(); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123456789")))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("0123")))
	assert.Equal(t, http.StatusOK, w.Code)
}
