package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Nutrición Deportiva":     "nutricion-deportiva",
		"  ¡Rutina de 5 días!  ":  "rutina-de-5-dias",
		"Expiración de membresía": "expiracion-de-membresia",
		"Proteína -- Whey / 2kg":  "proteina-whey-2kg",
		"":                        "",
		"¿?":                      "",
	}
	for in, want := range cases {
		assert.Equal(t, want, Slugify(in), in)
	}
}

func TestTokenManager(t *testing.T) {
	_, err := NewTokenManager("short", time.Hour)
	assert.Error(t, err)

	m, err := NewTokenManager("0123456789abcdef-secret", time.Hour)
	require.NoError(t, err)
	token, err := m.Generate("u-1", "ana@example.com", "admin", true)
	require.NoError(t, err)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.Subject)
	assert.True(t, claims.IsAdmin)

	other, err := NewTokenManager("another-secret-0123456789", time.Hour)
	require.NoError(t, err)
	_, err = other.Validate(token)
	assert.Error(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Validate(token)
	assert.Error(t, err)
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("GYM_TEST_BOOL", "yes")
	t.Setenv("GYM_TEST_INT", "x")
	t.Setenv("GYM_TEST_LIST", "a, ,b")
	t.Setenv("GYM_TEST_DUR", "90m")

	assert.True(t, GetenvBool("GYM_TEST_BOOL", false))
	assert.Equal(t, 7, GetenvInt("GYM_TEST_INT", 7))
	assert.Equal(t, []string{"a", "b"}, GetenvList("GYM_TEST_LIST", nil))
	assert.Equal(t, 90*time.Minute, GetenvDuration("GYM_TEST_DUR", time.Hour))
	assert.Equal(t, "fallback", Getenv("GYM_TEST_UNSET", "fallback"))

	assert.Equal(t, 20, ParsePositiveInt("-3", 20))
	assert.Equal(t, 5, ParsePositiveInt("5", 20))
}

func TestRespondValidationFailed(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondValidationFailed(c, "Key: 'email' failed on the 'email' tag")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, c.IsAborted())
	var body struct {
		Error APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, ErrCodeValidationFailed, body.Error.Code)
	assert.Contains(t, body.Error.Details, "email")
}
