package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const meridianBaseURL = "https://secure.meridianenergy.co.nz"

// MeridianService handles interactions with the Meridian Energy customer portal.
type MeridianService struct {
	client  *http.Client
	baseURL string
}

// NewMeridianService creates a new MeridianService over the given transport.
func NewMeridianService(rt http.RoundTripper) *MeridianService {
	return &MeridianService{
		client:  &http.Client{Transport: rt},
		baseURL: meridianBaseURL,
	}
}

// Authenticate logs into the customer portal and returns an access token.
func (s *MeridianService) Authenticate(email, password string) (string, error) {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	resp, err := s.client.Post(s.baseURL+"/customer/login", "application/json", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: calling login: %v", ErrAuth, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: login returned %s", ErrAuth, resp.Status)
	}

	var payload struct {
		AccessToken string `json:"accessToken"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("%w: decoding login response: %v", ErrAuth, err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("%w: login response contained no access token", ErrAuth)
	}

	return payload.AccessToken, nil
}

// FetchConsumptionCsv downloads the complete EIEP 13A consumption export.
func (s *MeridianService) FetchConsumptionCsv(token string) (string, error) {
	req, err := http.NewRequest(http.MethodGet, s.baseURL+"/reports/consumption_data.csv", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: downloading consumption data: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: consumption download returned %s", ErrFetch, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: reading consumption data: %v", ErrFetch, err)
	}

	return string(data), nil
}
