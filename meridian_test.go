package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func TestAuthenticate(t *testing.T) {
	mockRoundTripper := &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodPost, req.Method)
			require.Equal(t, "/customer/login", req.URL.Path, "Unexpected request URL")

			var credentials map[string]string
			require.NoError(t, json.NewDecoder(req.Body).Decode(&credentials))
			require.Equal(t, "example@example.com", credentials["email"])
			require.Equal(t, "hunter2", credentials["password"])

			return jsonResponse(http.StatusOK, `{"accessToken": "token-123"}`), nil
		},
	}

	service := NewMeridianService(mockRoundTripper)
	token, err := service.Authenticate("example@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "token-123", token)
}

func TestAuthenticateBadCredentials(t *testing.T) {
	mockRoundTripper := &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusUnauthorized, `{"error": "invalid credentials"}`), nil
		},
	}

	service := NewMeridianService(mockRoundTripper)
	_, err := service.Authenticate("example@example.com", "wrong")
	require.ErrorIs(t, err, ErrAuth)
}

func TestAuthenticateMissingToken(t *testing.T) {
	mockRoundTripper := &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, `{}`), nil
		},
	}

	service := NewMeridianService(mockRoundTripper)
	_, err := service.Authenticate("example@example.com", "hunter2")
	require.ErrorIs(t, err, ErrAuth)
}

func TestFetchConsumptionCsv(t *testing.T) {
	document := "HDR,,,,,,,,,,,,\nDET,,,,,,E,,,15/03/2023 10:30:00,,RD,1.5"

	mockRoundTripper := &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/reports/consumption_data.csv", req.URL.Path, "Unexpected request URL")
			require.Equal(t, "Bearer token-123", req.Header.Get("Authorization"))

			return jsonResponse(http.StatusOK, document), nil
		},
	}

	service := NewMeridianService(mockRoundTripper)
	got, err := service.FetchConsumptionCsv("token-123")
	require.NoError(t, err)
	require.Equal(t, document, got)
}

func TestFetchConsumptionCsvServerError(t *testing.T) {
	mockRoundTripper := &MockRoundTripper{
		Handler: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusInternalServerError, ""), nil
		},
	}

	service := NewMeridianService(mockRoundTripper)
	_, err := service.FetchConsumptionCsv("token-123")
	require.ErrorIs(t, err, ErrFetch)
}
