// Package notification delivers patient-facing messages (SMS and WhatsApp)
// through an external gateway, with template rendering, in-memory delivery
// tracking, retry, and Echo HTTP handlers.
package notification

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// Channel represents the delivery channel for a message.
type Channel string

const (
	ChannelSMS      Channel = "sms"
	ChannelWhatsApp Channel = "whatsapp"
)

// Message represents a single outbound message.
type Message struct {
	ID           string            `json:"id"`
	Channel      Channel           `json:"channel"`
	Recipient    string            `json:"recipient"`
	Body         string            `json:"body"`
	TemplateID   string            `json:"template_id,omitempty"`
	TemplateData map[string]string `json:"template_data,omitempty"`
	Status       string            `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	SentAt       *time.Time        `json:"sent_at,omitempty"`
	Error        string            `json:"error,omitempty"`
}

// Sender delivers a rendered message over a channel.
type Sender interface {
	Send(ctx context.Context, channel Channel, to, body string) error
}

// ---------------------------------------------------------------------------
// Gateway sender
// ---------------------------------------------------------------------------

// GatewaySender posts messages to an HTTP messaging gateway.
type GatewaySender struct {
	client *resty.Client
	token  string
}

// NewGatewaySender creates a GatewaySender for the given gateway base URL.
func NewGatewaySender(baseURL, token string) *GatewaySender {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond)
	return &GatewaySender{client: client, token: token}
}

type gatewayPayload struct {
	Channel string `json:"channel"`
	To      string `json:"to"`
	Body    string `json:"body"`
}

// Send posts the message to the gateway's /messages endpoint.
func (s *GatewaySender) Send(ctx context.Context, channel Channel, to, body string) error {
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.token).
		SetBody(gatewayPayload{Channel: string(channel), To: to, Body: body}).
		Post("/messages")
	if err != nil {
		return fmt.Errorf("gateway request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("gateway returned %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// ---------------------------------------------------------------------------
// Template engine
// ---------------------------------------------------------------------------

// Template defines a reusable message template.
type Template struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Body    string  `json:"body"`
	Channel Channel `json:"channel"`
}

// TemplateEngine manages message templates and renders them with data.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{
		templates: make(map[string]*Template),
	}
	e.registerBuiltIn()
	return e
}

func (e *TemplateEngine) registerBuiltIn() {
	builtIn := []Template{
		{
			ID:      "admission-confirmed",
			Name:    "Admission Confirmed",
			Body:    "Dear {{patient_name}}, your admission (UHID {{uhid}}) on {{date}} is confirmed. Bed: {{bed}}, attending doctor: {{doctor}}.",
			Channel: ChannelWhatsApp,
		},
		{
			ID:      "payment-receipt",
			Name:    "Payment Receipt",
			Body:    "Dear {{patient_name}}, we received your payment of Rs. {{amount}} on {{date}}. Total deposit: Rs. {{total_deposit}}.",
			Channel: ChannelSMS,
		},
		{
			ID:      "discharge-summary",
			Name:    "Discharge Summary",
			Body:    "Dear {{patient_name}}, you were discharged on {{date}}. Net bill: Rs. {{net_total}}, balance due: Rs. {{due}}.",
			Channel: ChannelWhatsApp,
		},
		{
			ID:      "due-reminder",
			Name:    "Due Reminder",
			Body:    "Dear {{patient_name}}, a balance of Rs. {{due}} is pending on your bill (UHID {{uhid}}). Kindly settle at the front desk.",
			Channel: ChannelSMS,
		},
	}
	for i := range builtIn {
		t := builtIn[i]
		e.templates[t.ID] = &t
	}
}

// RegisterTemplate adds or replaces a template in the engine.
func (e *TemplateEngine) RegisterTemplate(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement using the
// supplied data map. Keys present in the template but absent from data are left
// as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (body string, channel Channel, err error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", "", fmt.Errorf("template %q not found", templateID)
	}

	body = t.Body
	for k, v := range data {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body, t.Channel, nil
}

// ---------------------------------------------------------------------------
// Mock sender (test double)
// ---------------------------------------------------------------------------

// SendCall records a single call to Send.
type SendCall struct {
	Channel Channel
	To      string
	Body    string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	calls      []SendCall
	ShouldFail bool
	FailError  string
}

// Send records the call and optionally returns an error.
func (m *MockSender) Send(_ context.Context, channel Channel, to, body string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, SendCall{Channel: channel, To: to, Body: body})
	if m.ShouldFail {
		return errors.New(m.FailError)
	}
	return nil
}

// Calls returns a copy of recorded calls.
func (m *MockSender) Calls() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// ---------------------------------------------------------------------------
// Dispatcher
// ---------------------------------------------------------------------------

// Dispatcher orchestrates sending, tracking, and retrieval of messages.
// Delivery failures are recorded and logged but never bubble up to the
// billing and admission workflows that trigger them.
type Dispatcher struct {
	sender    Sender
	templates *TemplateEngine
	mu        sync.RWMutex
	messages  map[string]*Message
}

// NewDispatcher constructs a Dispatcher.
func NewDispatcher(sender Sender, tpl *TemplateEngine) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		templates: tpl,
		messages:  make(map[string]*Message),
	}
}

// Send dispatches a message through its channel, assigns an ID and timestamps,
// and tracks the result in-memory.
func (d *Dispatcher) Send(ctx context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.CreatedAt = time.Now().UTC()
	m.Status = "pending"

	sendErr := d.sender.Send(ctx, m.Channel, m.Recipient, m.Body)
	if sendErr != nil {
		m.Status = "failed"
		m.Error = sendErr.Error()
		log.Warn().Err(sendErr).
			Str("message_id", m.ID).
			Str("channel", string(m.Channel)).
			Str("recipient", m.Recipient).
			Msg("Message delivery failed")
	} else {
		m.Status = "sent"
		sentAt := time.Now().UTC()
		m.SentAt = &sentAt
	}

	d.mu.Lock()
	d.messages[m.ID] = m
	d.mu.Unlock()

	return sendErr
}

// SendFromTemplate renders a template and sends the resulting message.
func (d *Dispatcher) SendFromTemplate(ctx context.Context, templateID string, data map[string]string, recipient string) (*Message, error) {
	body, channel, err := d.templates.Render(templateID, data)
	if err != nil {
		return nil, fmt.Errorf("render template: %w", err)
	}

	m := &Message{
		Channel:      channel,
		Recipient:    recipient,
		Body:         body,
		TemplateID:   templateID,
		TemplateData: data,
	}

	if err := d.Send(ctx, m); err != nil {
		return m, err
	}
	return m, nil
}

// Notify renders and sends a template in the background. It is the
// fire-and-forget entry point used by domain services; failures are logged
// by Send and never reported to the caller.
func (d *Dispatcher) Notify(templateID string, data map[string]string, recipient string) {
	if recipient == "" {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		//nolint:errcheck
		d.SendFromTemplate(ctx, templateID, data, recipient)
	}()
}

// Get retrieves a message by ID.
func (d *Dispatcher) Get(_ context.Context, id string) (*Message, error) {
	d.mu.RLock()
	m, ok := d.messages[id]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("message %q not found", id)
	}
	return m, nil
}

// ListByRecipient returns messages for a given recipient, up to limit.
func (d *Dispatcher) ListByRecipient(_ context.Context, recipient string, limit int) ([]*Message, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var result []*Message
	for _, m := range d.messages {
		if m.Recipient == recipient {
			result = append(result, m)
			if len(result) >= limit {
				break
			}
		}
	}
	return result, nil
}

// Retry re-sends a failed message. Returns an error if the message is not in
// "failed" status.
func (d *Dispatcher) Retry(ctx context.Context, id string) error {
	d.mu.RLock()
	m, ok := d.messages[id]
	d.mu.RUnlock()
	if !ok {
		return fmt.Errorf("message %q not found", id)
	}
	if m.Status != "failed" {
		return fmt.Errorf("message %q is not in failed status (current: %s)", id, m.Status)
	}

	sendErr := d.sender.Send(ctx, m.Channel, m.Recipient, m.Body)

	d.mu.Lock()
	if sendErr != nil {
		m.Status = "failed"
		m.Error = sendErr.Error()
	} else {
		m.Status = "sent"
		sentAt := time.Now().UTC()
		m.SentAt = &sentAt
		m.Error = ""
	}
	d.mu.Unlock()

	return sendErr
}

// Stats returns counts of messages grouped by status.
func (d *Dispatcher) Stats(_ context.Context) map[string]int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	stats := make(map[string]int)
	for _, m := range d.messages {
		stats[m.Status]++
	}
	return stats
}

// ---------------------------------------------------------------------------
// HTTP handler
// ---------------------------------------------------------------------------

// Handler exposes message operations over HTTP via Echo.
type Handler struct {
	dispatcher *Dispatcher
}

// NewHandler creates a new Handler.
func NewHandler(d *Dispatcher) *Handler {
	return &Handler{dispatcher: d}
}

// RegisterRoutes registers all message routes on the given Echo group.
func (h *Handler) RegisterRoutes(g *echo.Group) {
	g.POST("/messages/send", h.HandleSend)
	g.POST("/messages/send-template", h.HandleSendTemplate)
	g.GET("/messages/stats", h.HandleStats)
	g.GET("/messages/:id", h.HandleGet)
	g.GET("/messages", h.HandleList)
	g.POST("/messages/:id/retry", h.HandleRetry)
}

type sendRequest struct {
	Channel   Channel `json:"channel"`
	Recipient string  `json:"recipient"`
	Body      string  `json:"body"`
}

// HandleSend handles POST /messages/send.
func (h *Handler) HandleSend(c echo.Context) error {
	var req sendRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	m := &Message{
		Channel:   req.Channel,
		Recipient: req.Recipient,
		Body:      req.Body,
	}

	// Return the message either way so the caller can see the ID and
	// delivery status.
	h.dispatcher.Send(c.Request().Context(), m)
	return c.JSON(http.StatusCreated, m)
}

type sendTemplateRequest struct {
	TemplateID string            `json:"template_id"`
	Recipient  string            `json:"recipient"`
	Data       map[string]string `json:"data"`
}

// HandleSendTemplate handles POST /messages/send-template.
func (h *Handler) HandleSendTemplate(c echo.Context) error {
	var req sendTemplateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	m, err := h.dispatcher.SendFromTemplate(c.Request().Context(), req.TemplateID, req.Data, req.Recipient)
	if err != nil && m == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusCreated, m)
}

// HandleGet handles GET /messages/:id.
func (h *Handler) HandleGet(c echo.Context) error {
	id := c.Param("id")
	m, err := h.dispatcher.Get(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, m)
}

// HandleList handles GET /messages?recipient=...
func (h *Handler) HandleList(c echo.Context) error {
	recipient := c.QueryParam("recipient")
	if recipient == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "recipient query parameter is required"})
	}

	list, err := h.dispatcher.ListByRecipient(c.Request().Context(), recipient, 100)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, list)
}

// HandleRetry handles POST /messages/:id/retry.
func (h *Handler) HandleRetry(c echo.Context) error {
	id := c.Param("id")
	if err := h.dispatcher.Retry(c.Request().Context(), id); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	m, _ := h.dispatcher.Get(c.Request().Context(), id)
	return c.JSON(http.StatusOK, m)
}

// HandleStats handles GET /messages/stats.
func (h *Handler) HandleStats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.dispatcher.Stats(c.Request().Context()))
}
