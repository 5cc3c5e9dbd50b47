//go:build e2e

package auth

import (
	"encoding/json"
	"net/http"
	"testing"

	"openbook/tests/common/dbtest"
	"openbook/tests/e2e"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AuthSuite struct {
	e2e.SharedSuite
}

func TestAuthSuite(t *testing.T) {
	suite.Run(t, new(AuthSuite))
}

func (s *AuthSuite) TestLogin() {
	s.Run("valid credentials return a token and set the cookie", func() {
		rec := s.Request(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    dbtest.StandardEmail,
			"password": dbtest.SeedPassword,
		})
		require.Equal(s.T(), http.StatusOK, rec.Code)

		var resp struct {
			AccessToken string `json:"accessToken"`
			UserID      string `json:"userId"`
			Group       string `json:"group"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.NotEmpty(s.T(), resp.AccessToken)
		require.Equal(s.T(), dbtest.StandardUserID.String(), resp.UserID)
		require.Equal(s.T(), "standard", resp.Group)

		cookies := rec.Result().Cookies()
		var found bool
		for _, c := range cookies {
			if c.Name == "access_token" && c.Value != "" {
				found = true
			}
		}
		require.True(s.T(), found, "access token cookie not set")
	})

	s.Run("wrong password is rejected", func() {
		rec := s.Request(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    dbtest.StandardEmail,
			"password": "wrong-password",
		})
		require.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	})

	s.Run("unknown email is rejected identically", func() {
		rec := s.Request(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "ghost@example.com",
			"password": dbtest.SeedPassword,
		})
		require.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	})

	s.Run("malformed email fails validation", func() {
		rec := s.Request(http.MethodPost, "/api/auth/login", "", map[string]string{
			"email":    "not-an-email",
			"password": dbtest.SeedPassword,
		})
		require.Equal(s.T(), http.StatusBadRequest, rec.Code)
	})
}

func (s *AuthSuite) TestMe() {
	s.Run("returns the authenticated user", func() {
		token := s.Login(dbtest.PremiumEmail)

		rec := s.Request(http.MethodGet, "/api/auth/me", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)

		var resp struct {
			Email string `json:"email"`
			Group string `json:"group"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(s.T(), dbtest.PremiumEmail, resp.Email)
		require.Equal(s.T(), "premium", resp.Group)
	})

	s.Run("requires authentication", func() {
		rec := s.Request(http.MethodGet, "/api/auth/me", "", nil)
		require.Equal(s.T(), http.StatusUnauthorized, rec.Code)
	})
}

func (s *AuthSuite) TestLimits() {
	s.Run("standard limits reflect the group policy", func() {
		token := s.Login(dbtest.StandardEmail)

		rec := s.Request(http.MethodGet, "/api/users/me/limits", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)

		var resp struct {
			Group              string `json:"group"`
			MaxBookingHours    int    `json:"maxBookingHours"`
			MaxAdvanceDays     int    `json:"maxAdvanceDays"`
			MaxConcurrent      int    `json:"maxConcurrent"`
			MaxExtendHours     int    `json:"maxExtendHours"`
			CurrentNonTerminal int    `json:"currentNonTerminal"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(s.T(), "standard", resp.Group)
		require.Equal(s.T(), 8, resp.MaxBookingHours)
		require.Equal(s.T(), 7, resp.MaxAdvanceDays)
		require.Equal(s.T(), 2, resp.MaxConcurrent)
		require.Equal(s.T(), 4, resp.MaxExtendHours)
		require.Equal(s.T(), 0, resp.CurrentNonTerminal)
	})

	s.Run("admin limits are unlimited", func() {
		token := s.Login(dbtest.AdminEmail)

		rec := s.Request(http.MethodGet, "/api/users/me/limits", token, nil)
		require.Equal(s.T(), http.StatusOK, rec.Code)

		var resp struct {
			MaxBookingHours int `json:"maxBookingHours"`
			MaxConcurrent   int `json:"maxConcurrent"`
			MaxExtendHours  int `json:"maxExtendHours"`
		}
		require.NoError(s.T(), json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Equal(s.T(), -1, resp.MaxBookingHours)
		require.Equal(s.T(), -1, resp.MaxConcurrent)
		require.Equal(s.T(), 24, resp.MaxExtendHours)
	})
}
