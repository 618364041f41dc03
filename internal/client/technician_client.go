package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gadgetarian/service-tracker/internal/config"
	"github.com/gadgetarian/service-tracker/internal/domain"
)

// ErrUpstream wraps every failure talking to the technician backend.
var ErrUpstream = errors.New("technician backend unavailable")

type technicianPayload struct {
	Code     string `json:"kode_teknisi"`
	Name     string `json:"nama_teknisi"`
	Phone    string `json:"nomor_telepon"`
	Password string `json:"password,omitempty"`
}

// TechnicianClient talks to the external technician registry.
type TechnicianClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewTechnicianClient builds a client from configuration.
func NewTechnicianClient(cfg config.TechnicianConfig) *TechnicianClient {
	return &TechnicianClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout()},
	}
}

// List fetches every registered technician.
func (c *TechnicianClient) List(ctx context.Context) ([]domain.Technician, error) {
	var payload []technicianPayload
	if err := c.do(ctx, http.MethodGet, nil, &payload); err != nil {
		return nil, err
	}
	technicians := make([]domain.Technician, 0, len(payload))
	for _, p := range payload {
		technicians = append(technicians, domain.Technician{Code: p.Code, Name: p.Name, Phone: p.Phone})
	}
	return technicians, nil
}

// Create registers a technician and returns the backend's decoded reply.
func (c *TechnicianClient) Create(ctx context.Context, technician domain.Technician) (map[string]any, error) {
	body := technicianPayload{
		Code:     technician.Code,
		Name:     technician.Name,
		Phone:    technician.Phone,
		Password: technician.Password,
	}
	var reply map[string]any
	if err := c.do(ctx, http.MethodPost, body, &reply); err != nil {
		return nil, err
	}
	return reply, nil
}

func (c *TechnicianClient) do(ctx context.Context, method string, body any, out any) error {
	if c.baseURL == "" {
		return fmt.Errorf("%w: base URL is not configured", ErrUpstream)
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/teknisi", reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUpstream, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	return nil
}
