// Package bookingsvc resolves bookings through the booking microservice's
// internal endpoint.
package bookingsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"concierge/internal/app/concierge"
	"concierge/internal/domain/trip"
)

const (
	internalKeyHeader = "x-internal-api-key"
	unknownLocation   = "Unknown Location"
	defaultProperty   = "Property"
)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	probe      *http.Client
	logger     *slog.Logger
}

func New(baseURL, apiKey string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		probe:      &http.Client{Timeout: 2 * time.Second},
		logger:     logger,
	}
}

type bookingPayload struct {
	ID           string         `json:"_id"`
	AltID        string         `json:"id"`
	CheckInDate  string         `json:"checkInDate"`
	CheckOutDate string         `json:"checkOutDate"`
	Guests       *int           `json:"guests"`
	Property     propertyFields `json:"property"`
}

type propertyFields struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
	Zipcode string `json:"zipcode"`
}

// Booking maps every failure, including a rejected key, to ErrBookingNotFound.
func (c *Client) Booking(ctx context.Context, id trip.BookingID) (trip.BookingContext, error) {
	endpoint := fmt.Sprintf("%s/bookings/internal/%s", c.baseURL, url.PathEscape(string(id)))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return trip.BookingContext{}, err
	}
	req.Header.Set(internalKeyHeader, c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "booking lookup failed", "booking_id", id, "error", err)
		return trip.BookingContext{}, fmt.Errorf("%w: %s", concierge.ErrBookingNotFound, id)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.logger.WarnContext(ctx, "booking service rejected internal api key", "booking_id", id)
		return trip.BookingContext{}, fmt.Errorf("%w: %s", concierge.ErrBookingNotFound, id)
	case resp.StatusCode != http.StatusOK:
		c.logger.InfoContext(ctx, "booking not found", "booking_id", id, "status", resp.StatusCode)
		return trip.BookingContext{}, fmt.Errorf("%w: %s", concierge.ErrBookingNotFound, id)
	}

	var payload bookingPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WarnContext(ctx, "booking payload unreadable", "booking_id", id, "error", err)
		return trip.BookingContext{}, fmt.Errorf("%w: %s", concierge.ErrBookingNotFound, id)
	}
	booking, err := toBookingContext(payload, id)
	if err != nil {
		c.logger.WarnContext(ctx, "booking dates unreadable", "booking_id", id, "error", err)
		return trip.BookingContext{}, fmt.Errorf("%w: %s", concierge.ErrBookingNotFound, id)
	}
	return booking, nil
}

func toBookingContext(p bookingPayload, requested trip.BookingID) (trip.BookingContext, error) {
	start, err := trip.ParseDate(p.CheckInDate)
	if err != nil {
		return trip.BookingContext{}, err
	}
	end, err := trip.ParseDate(p.CheckOutDate)
	if err != nil {
		return trip.BookingContext{}, err
	}
	id := requested
	switch {
	case p.ID != "":
		id = trip.BookingID(p.ID)
	case p.AltID != "":
		id = trip.BookingID(p.AltID)
	}
	guests := 1
	if p.Guests != nil {
		guests = *p.Guests
	}
	name := p.Property.Name
	if name == "" {
		name = defaultProperty
	}
	b := trip.BookingContext{
		BookingID:    id,
		PropertyName: name,
		City:         p.Property.City,
		State:        p.Property.State,
		Country:      p.Property.Country,
		Zipcode:      p.Property.Zipcode,
		StartDate:    start,
		EndDate:      end,
		Guests:       guests,
	}
	b.Location = b.DisplayLocation()
	if b.Location == "" {
		b.Location = unknownLocation
	}
	return b, nil
}

// Reachable probes GET /health with a short timeout.
func (c *Client) Reachable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.probe.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

var _ concierge.BookingSource = (*Client)(nil)
