package booking

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Booking is an existing reservation returned by the booking service. The
// date/slot fields are raw because the service still emits all three
// historical shapes.
type Booking struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	OrderID           string          `json:"order_id"`
	Status            string          `json:"status"`
	PreferredDate     json.RawMessage `json:"preferred_date"`
	PreferredTimeSlot json.RawMessage `json:"preferred_time_slot"`
}

// Slots returns the booking's preferences in canonical form.
func (b Booking) Slots() []DateSlot {
	return NormalizeSlots(b.PreferredDate, b.PreferredTimeSlot)
}

// CreateRequest is the normalized booking-creation payload.
type CreateRequest struct {
	UserID            string            `json:"user_id"`
	OrderID           string            `json:"orderId"`
	PreferredDate     []string          `json:"preferredDate"`
	PreferredTimeSlot map[string]string `json:"preferredTimeSlot"`
	NumberOfPeople    int               `json:"numberOfPeople"`
	Members           []Member          `json:"members"`
}

type Member struct {
	Name   string `json:"name"`
	Age    int    `json:"age,omitempty"`
	Gender string `json:"gender,omitempty"`
}

// Service is what the materializer needs from the booking collaborator. The
// access token is optional: the webhook path has no end-user credentials and
// passes "".
type Service interface {
	ListUserBookings(ctx context.Context, userID, accessToken string) ([]Booking, error)
	CreateBooking(ctx context.Context, req CreateRequest, accessToken string) error
}

// Client talks to the booking service over HTTP with a bounded timeout.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) ListUserBookings(ctx context.Context, userID, accessToken string) ([]Booking, error) {
	url := fmt.Sprintf("%s/api/v1/bookings?user_id=%s", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("booking service: list bookings status %d: %s", resp.StatusCode, body)
	}
	var out struct {
		Bookings []Booking `json:"bookings"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	return out.Bookings, nil
}

func (c *Client) CreateBooking(ctx context.Context, r CreateRequest, accessToken string) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/bookings", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("booking service: create booking status %d: %s", resp.StatusCode, body)
	}
	return nil
}
