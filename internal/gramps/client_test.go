package gramps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/EdgarM73/gramps-ha/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient_Validation(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"HTTP scheme", "http://gramps.local", false},
		{"HTTPS scheme", "https://gramps.local:5000", false},
		{"Trailing slash accepted", "https://gramps.local/", false},
		{"FTP rejected", "ftp://gramps.local", true},
		{"Missing scheme", "gramps.local", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient(tt.url, "", "")
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, c)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, c)
				assert.False(t, strings.HasSuffix(c.BaseURL, config.HandleSeparator),
					"BaseURL must not keep a trailing slash")
			}
		})
	}
}

func TestClient_ListPeople(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, config.APIPeoplePath, r.URL.Path)
		assert.Empty(t, r.Header.Get(config.HeaderAuth), "No token expected without credentials")

		w.Header().Set(config.HeaderContentType, config.MimeJSON)
		_, _ = w.Write([]byte(`[
			{"primary_name": {"first_name": "Jean", "surname_list": [{"surname": "Dupont"}]},
			 "event_ref_list": [{"ref": "e1"}], "birth_ref_index": 0},
			{"primary_name": {"first_name": "Marie"}}
		]`))
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "", "")
	require.NoError(t, err)

	people, err := c.ListPeople(context.Background())
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, "Jean", people[0].PrimaryName.FirstName)
	assert.Equal(t, 0, people[0].BirthRefIndex)
	// Absent indexes decode to the unknown sentinel, not zero.
	assert.Equal(t, config.RefIndexUnknown, people[1].BirthRefIndex)
	assert.Equal(t, config.RefIndexUnknown, people[1].DeathRefIndex)
}

func TestClient_FetchEvent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case config.APIEventsPath + "e0001":
			_, _ = w.Write([]byte(`{"type": {"string": "Birth"}, "date": {"dateval": [15, 6, 1990]}}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "", "")
	require.NoError(t, err)

	event, err := c.FetchEvent(context.Background(), "e0001")
	require.NoError(t, err)
	assert.Equal(t, "Birth", event.Type.Label)
	require.Len(t, event.Dateval(), 3)

	// A 404 maps to ErrNotFound so callers can treat it as missing data.
	_, err = c.FetchEvent(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_Authentication(t *testing.T) {
	const token = "test-token-123"
	var authCalls int

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case config.APITokenPath:
			authCalls++
			assert.Equal(t, http.MethodPost, r.Method)

			var creds map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
			assert.Equal(t, "admin", creds["username"])
			assert.Equal(t, "secret", creds["password"])

			_, _ = w.Write([]byte(`{"access_token": "` + token + `"}`))

		case config.APIPeoplePath:
			assert.Equal(t, config.BearerPrefix+token, r.Header.Get(config.HeaderAuth))
			_, _ = w.Write([]byte(`[]`))

		default:
			http.NotFound(w, r)
		}
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "admin", "secret")
	require.NoError(t, err)

	// Two requests; the token must be obtained once and reused.
	_, err = c.ListPeople(context.Background())
	require.NoError(t, err)
	_, err = c.ListPeople(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, authCalls, "Token must be reused across requests")
}

func TestClient_AuthenticationFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "admin", "wrong")
	require.NoError(t, err)

	_, err = c.ListPeople(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrAuthFailed)
}

func TestClient_UnexpectedStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer ts.Close()

	c, err := NewClient(ts.URL, "", "")
	require.NoError(t, err)

	_, err = c.ListPeople(context.Background())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), config.ErrUnexpectedCode)
}

func TestSanitizeURL(t *testing.T) {
	assert.Equal(t, "https://host/api/people/",
		sanitizeURL("https://host/api/people/?token=secret"))
}
