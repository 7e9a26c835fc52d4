package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konverso-ai/kbot-installer/pkg/rest"
)

func TestNew(t *testing.T) {
	t.Parallel()
	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := rest.New(nil)
		require.ErrorIs(t, err, rest.ErrConfigRequired)
	})

	t.Run("missing base URL", func(t *testing.T) {
		t.Parallel()

		_, err := rest.New(&rest.Config{})
		require.ErrorIs(t, err, rest.ErrBaseURLRequired)
	})

	t.Run("trailing slash is removed", func(t *testing.T) {
		t.Parallel()

		client, err := rest.New(&rest.Config{BaseURL: "https://api.example.com/"})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", client.BaseURL())
	})

	t.Run("scheme defaults to https", func(t *testing.T) {
		t.Parallel()

		client, err := rest.New(&rest.Config{BaseURL: "api.example.com"})
		require.NoError(t, err)
		assert.Equal(t, "https://api.example.com", client.BaseURL())
	})

	t.Run("timeout defaults", func(t *testing.T) {
		t.Parallel()

		client, err := rest.New(&rest.Config{BaseURL: "https://api.example.com"})
		require.NoError(t, err)
		assert.Equal(t, 30*time.Second, client.Timeout())
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Dispatch(t *testing.T) {
	t.Parallel()
	t.Run("chain dispatches a single request", func(t *testing.T) {
		t.Parallel()

		var calls int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt64(&calls, 1)

			assert.Equal(t, "GET", request.Method)
			assert.Equal(t, "/api/v1/users/123/posts", request.URL.Path)
			assert.Equal(t, "sort=date&limit=10", request.URL.RawQuery)

			_ = json.NewEncoder(writer).Encode([]map[string]string{{"title": "hello"}})
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		resp, err := client.Path("api", "v1", "users").
			Param(123).
			Path("posts").
			Query("sort", "date").
			Query("limit", 10).
			Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.True(t, resp.IsSuccess())
		assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

		var posts []map[string]string

		require.NoError(t, resp.JSON(&posts))
		assert.Equal(t, "hello", posts[0]["title"])
	})

	t.Run("post sends a JSON body", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "POST", request.Method)
			assert.Equal(t, "application/json", request.Header.Get("Content-Type"))

			var body map[string]string

			_ = json.NewDecoder(request.Body).Decode(&body)
			assert.Equal(t, "new post", body["title"])

			writer.WriteHeader(http.StatusCreated)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		resp, err := client.Path("posts").Post(context.Background(), map[string]string{"title": "new post"})
		require.NoError(t, err)
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("unauthorized returns the response and an authentication error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusUnauthorized)
			_, _ = writer.Write([]byte(`{"message":"bad credentials"}`))
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		resp, err := client.Path("private").Get(context.Background())
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.True(t, rest.IsAuthentication(err))

		authErr := &rest.AuthenticationError{}
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
		assert.Contains(t, string(authErr.Body), "bad credentials")
	})

	t.Run("forbidden maps to an authentication error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Path("private").Get(context.Background())
		require.Error(t, err)
		assert.True(t, rest.IsAuthentication(err))
	})

	t.Run("server error returns the response and an HTTP error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusInternalServerError)
			_, _ = writer.Write([]byte(`{"message":"database unavailable"}`))
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		resp, err := client.Path("items").Get(context.Background())
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		httpErr, ok := rest.AsHTTPError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)
		assert.Contains(t, string(httpErr.Body), "database unavailable")
	})

	t.Run("not found is recognizable", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			writer.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Path("missing").Get(context.Background())
		require.Error(t, err)
		assert.True(t, rest.IsNotFound(err))
	})

	t.Run("timeout returns no response", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			time.Sleep(300 * time.Millisecond)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL, Timeout: 30 * time.Millisecond})
		require.NoError(t, err)

		resp, err := client.Path("slow").Get(context.Background())
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, rest.IsTimeout(err))

		timeoutErr := &rest.TimeoutError{}
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, "GET", timeoutErr.Method)
		assert.Equal(t, 30*time.Millisecond, timeoutErr.Deadline)
	})

	t.Run("invalid chain never reaches the network", func(t *testing.T) {
		t.Parallel()

		var calls int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt64(&calls, 1)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Path("users").Param(1).Param(2).Get(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, rest.ErrParamRebound)
		assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
	})

	t.Run("request headers from options", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "abc123", request.Header.Get("X-Trace"))
			assert.Equal(t, "yes", request.Header.Get("X-Extra"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{BaseURL: server.URL})
		require.NoError(t, err)

		_, err = client.Path("items").Get(context.Background(),
			rest.WithHeader("X-Trace", "abc123"),
			rest.WithHeaders(map[string]string{"X-Extra": "yes"}))
		require.NoError(t, err)
	})
}

//nolint:funlen // Test functions can be longer for comprehensive testing
func TestClient_Authentication(t *testing.T) {
	t.Parallel()
	t.Run("basic auth header", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			username, password, ok := request.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "admin", username)
			assert.Equal(t, "secret", password)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := rest.NewWithBasicAuth(server.URL, "admin", "secret")
		require.NoError(t, err)

		_, err = client.Path("items").Get(context.Background())
		require.NoError(t, err)
	})

	t.Run("bearer token header", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "Bearer tok-1", request.Header.Get("Authorization"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := rest.NewWithToken(server.URL, "tok-1")
		require.NoError(t, err)

		_, err = client.Path("items").Get(context.Background())
		require.NoError(t, err)
	})

	t.Run("api key header", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "k-42", request.Header.Get("X-API-Key"))
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := rest.NewWithAPIKey(server.URL, "k-42")
		require.NoError(t, err)

		_, err = client.Path("items").Get(context.Background())
		require.NoError(t, err)
	})

	t.Run("api key in query follows chain parameters", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			assert.Equal(t, "page=2&api_key=k-42", request.URL.RawQuery)
			writer.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{
			BaseURL: server.URL,
			Auth:    rest.APIKeyAuth{Key: "k-42", Name: "api_key", InQuery: true},
		})
		require.NoError(t, err)

		_, err = client.Path("items").Query("page", 2).Get(context.Background())
		require.NoError(t, err)
	})

	t.Run("unapplicable credentials fail before dispatch", func(t *testing.T) {
		t.Parallel()

		var calls int64

		server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			atomic.AddInt64(&calls, 1)
		}))
		defer server.Close()

		client, err := rest.New(&rest.Config{
			BaseURL: server.URL,
			Auth:    rest.BasicAuth{Password: "only-password"},
		})
		require.NoError(t, err)

		resp, err := client.Path("items").Get(context.Background())
		require.Error(t, err)
		assert.Nil(t, resp)
		assert.True(t, rest.IsAuthentication(err))
		assert.ErrorIs(t, err, rest.ErrMissingCredentials)
		assert.Equal(t, int64(0), atomic.LoadInt64(&calls))
	})
}
