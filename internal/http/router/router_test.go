package router

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/sponsorship-backend/internal/config"
	"github.com/ignatzorin/sponsorship-backend/internal/http/handlers"
	"github.com/ignatzorin/sponsorship-backend/internal/models"
	"github.com/ignatzorin/sponsorship-backend/internal/service"
	"github.com/ignatzorin/sponsorship-backend/internal/twilio"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *service.TokenManager) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Env:             "test",
		RateLimitLimit:  100,
		RateLimitPeriod: time.Minute,
		OTPRateLimit:    100,
	}
	tokens := service.NewTokenManager("access-secret-for-tests", "refresh-secret-for-tests", time.Minute, time.Hour)

	// сервисы без хранилища: проверяются только маршруты и ранние отказы
	h := Handlers{
		OTP:   handlers.NewOTPHandler(service.NewOTPService(twilio.NewClient(config.TwilioConfig{}), nil)),
		Admin: handlers.NewAdminHandler(service.NewModerationService(nil, nil, nil, nil), nil),
	}
	return SetupRouter(cfg, h, tokens), tokens
}

func tokenFor(t *testing.T, tokens *service.TokenManager, userType models.UserType) string {
	t.Helper()
	pair, _, _, err := tokens.GeneratePair(&models.User{ID: uuid.New(), UserType: userType})
	require.NoError(t, err)
	return pair.AccessToken
}

func TestOTPRoutesArePostOnly(t *testing.T) {
	r, _ := setupTestRouter(t)

	for _, path := range []string{"/api/twilio/send-otp", "/api/twilio/verify-otp"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusMethodNotAllowed, w.Code, path)
	}
}

func TestOTPSend_InvalidPhone(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/twilio/send-otp", bytes.NewBufferString(`{"phone":"12345"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "E.164")
}

func TestAdminRoutes(t *testing.T) {
	r, tokens := setupTestRouter(t)
	path := "/api/admin/opportunities/" + uuid.NewString() + "/reject"

	reject := func(token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(`{"reason":"  "}`))
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusUnauthorized, reject("").Code)
	assert.Equal(t, http.StatusUnauthorized, reject("garbage").Code)
	assert.Equal(t, http.StatusForbidden, reject(tokenFor(t, tokens, models.UserTypeBrand)).Code)

	// пустая причина отсекается до обращения к базе
	w := reject(tokenFor(t, tokens, models.UserTypeAdmin))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "error")
}

func TestUUIDParamValidated(t *testing.T) {
	r, tokens := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/admin/posts/not-a-uuid/approve", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, tokens, models.UserTypeAdmin))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
