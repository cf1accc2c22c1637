package middleware

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/werta666/jifen-go/utils"
)

func TestMain(m *testing.M) {
	os.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newAuthTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(ctx *gin.Context) {
		identity, _ := GetIdentity(ctx)
		utils.Success(ctx, gin.H{"user_id": identity.ID, "is_admin": identity.IsAdmin})
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"ok": true})
	})
	return r
}

func doRequest(r *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := newAuthTestRouter()

	w := doRequest(r, "/me", "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, "/me", "NotBearer abc")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doRequest(r, "/me", "Bearer not.a.token")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := utils.GenerateToken(5, "carol", false, time.Hour)
	require.NoError(t, err)
	w = doRequest(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"user_id":5`)
}

func TestAuthRequiredExpiredToken(t *testing.T) {
	r := newAuthTestRouter()

	token, err := utils.GenerateToken(5, "carol", false, -time.Hour)
	require.NoError(t, err)
	w := doRequest(r, "/me", "Bearer "+token)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequired(t *testing.T) {
	r := newAuthTestRouter()

	token, err := utils.GenerateToken(5, "carol", false, time.Hour)
	require.NoError(t, err)
	w := doRequest(r, "/admin", "Bearer "+token)
	require.Equal(t, http.StatusForbidden, w.Code)

	adminToken, err := utils.GenerateToken(1, "root", true, time.Hour)
	require.NoError(t, err)
	w = doRequest(r, "/admin", "Bearer "+adminToken)
	require.Equal(t, http.StatusOK, w.Code)
}
