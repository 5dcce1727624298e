package apiclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/campusdesk/campusdesk/pkg/serrors"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestClient_DecodesSuccessEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/things", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"t-1"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, quietLogger())
	var out struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, c.Get(context.Background(), "/api/v1/things", &out))
	require.Len(t, out.Data, 1)
	require.Equal(t, "t-1", out.Data[0].ID)
}

func TestClient_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, "sekrit", time.Second, quietLogger())
	require.NoError(t, c.Delete(context.Background(), "/x"))
}

func TestClient_RejectionCarriesStatusAndFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"duplicate","errors":{"EmployeeNo":"already exists"}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, quietLogger())
	err := c.Post(context.Background(), "/x", map[string]string{}, nil)

	var apiErr *serrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusConflict, apiErr.Status)
	require.Equal(t, "duplicate", apiErr.Message)
	require.Equal(t, "already exists", apiErr.Fields["EmployeeNo"])

	// Classified, this becomes a conflict the form can merge back.
	var conflict *serrors.ConflictError
	require.True(t, errors.As(serrors.Classify(err), &conflict))
}

func TestClient_UnreachableHostIsTransport(t *testing.T) {
	c := New("http://127.0.0.1:1", "", 200*time.Millisecond, quietLogger())
	err := c.Get(context.Background(), "/x", nil)

	var apiErr *serrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Zero(t, apiErr.Status)

	var transport *serrors.TransportError
	require.True(t, errors.As(serrors.Classify(err), &transport))
}

func TestClient_PlainErrorBodyGetsStatusMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, "", time.Second, quietLogger())
	err := c.Get(context.Background(), "/x", nil)

	var apiErr *serrors.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Contains(t, apiErr.Message, "500")
}
