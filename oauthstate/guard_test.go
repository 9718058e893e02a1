package oauthstate_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/csv-sheet-sync/oauthstate"
	"github.com/stretchr/testify/require"
)

// issue runs Issue and returns the token with the cookie it set
func issue(t *testing.T, g *oauthstate.Guard) (string, *http.Cookie) {
	t.Helper()
	rec := httptest.NewRecorder()
	token, err := g.Issue(rec)
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return token, cookies[0]
}

func verify(g *oauthstate.Guard, cookie *http.Cookie, candidate string) (bool, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodGet, "/auth/google/callback", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	return g.Verify(rec, req, candidate), rec
}

func TestIssue(t *testing.T) {
	g := oauthstate.NewGuard(10 * time.Minute)
	token, cookie := issue(t, g)

	require.Len(t, token, 48)
	require.Equal(t, oauthstate.CookieName, cookie.Name)
	require.Equal(t, token, cookie.Value)
	require.Equal(t, "/", cookie.Path)
	require.True(t, cookie.HttpOnly)
	require.True(t, cookie.Secure)
	require.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	require.Equal(t, 600, cookie.MaxAge)

	other, _ := issue(t, g)
	require.NotEqual(t, token, other)
}

func TestVerify(t *testing.T) {
	g := oauthstate.NewGuard(0)
	token, cookie := issue(t, g)

	t.Run("empty candidate", func(t *testing.T) {
		ok, _ := verify(g, cookie, "")
		require.False(t, ok)
	})

	t.Run("no cookie", func(t *testing.T) {
		ok, _ := verify(g, nil, token)
		require.False(t, ok)
	})

	t.Run("different token", func(t *testing.T) {
		ok, _ := verify(g, cookie, token[:47]+"x")
		require.False(t, ok)
	})

	t.Run("prefix of token", func(t *testing.T) {
		ok, _ := verify(g, cookie, token[:20])
		require.False(t, ok)
	})

	t.Run("match deletes cookie", func(t *testing.T) {
		ok, rec := verify(g, cookie, token)
		require.True(t, ok)

		cleared := rec.Result().Cookies()
		require.Len(t, cleared, 1)
		require.Equal(t, oauthstate.CookieName, cleared[0].Name)
		require.Equal(t, "", cleared[0].Value)
		require.Less(t, cleared[0].MaxAge, 0)
	})

	t.Run("failure leaves cookie alone", func(t *testing.T) {
		_, rec := verify(g, cookie, "nope")
		require.Empty(t, rec.Result().Cookies())
	})
}

func TestVerify_SingleUse(t *testing.T) {
	g := oauthstate.NewGuard(0)
	token, cookie := issue(t, g)

	ok, rec := verify(g, cookie, token)
	require.True(t, ok)

	// the browser applies the deletion, so the replayed callback carries no state cookie
	jar := rec.Result().Cookies()[0]
	require.Less(t, jar.MaxAge, 0)
	ok, _ = verify(g, nil, token)
	require.False(t, ok)
}
