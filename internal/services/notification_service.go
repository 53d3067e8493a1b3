package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/NumanIbnMazid/restaurant-management/pkg/utils"
)

// NotificationEvent identifies what happened; each event maps to a fixed
// title/body template on the staff devices.
type NotificationEvent string

const (
	EventOrderReceived       NotificationEvent = "Received"
	EventOrderCancelled      NotificationEvent = "OrderCancel"
	EventItemsCancelled      NotificationEvent = "OrderItemsCancel"
	EventCallStaff           NotificationEvent = "CallStaff"
	EventCallStaffForPayment NotificationEvent = "CallStaffForPayment"
)

// NotificationParams carries the values the event templates interpolate.
type NotificationParams struct {
	TableNo   int
	OrderNo   int64
	FoodNames []string
	Message   string
}

// NotificationSender delivers a best-effort push notification to a set of
// device tokens. Callers treat delivery failures as log-and-continue: a
// failed push never rolls back the order operation that triggered it.
type NotificationSender interface {
	Send(event NotificationEvent, tokens []string, params NotificationParams) error
}

// FCMConfig is the injected configuration for the FCM sender. Credentials
// come from the environment at startup, never from process-wide state.
type FCMConfig struct {
	ServerKey string
	Endpoint  string
	Timeout   time.Duration
}

type fcmSender struct {
	cfg    FCMConfig
	client *http.Client
}

// NewFCMSender creates a push notification sender backed by the FCM legacy
// HTTP API.
func NewFCMSender(cfg FCMConfig) NotificationSender {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "https://fcm.googleapis.com/fcm/send"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &fcmSender{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type fcmMessage struct {
	Notification    fcmNotification   `json:"notification"`
	Data            map[string]string `json:"data"`
	RegistrationIDs []string          `json:"registration_ids"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func buildNotification(event NotificationEvent, params NotificationParams) (fcmNotification, bool) {
	switch event {
	case EventOrderReceived:
		return fcmNotification{
			Title: "Received",
			Body:  fmt.Sprintf("An order has been placed for table %d", params.TableNo),
		}, true
	case EventOrderCancelled:
		return fcmNotification{
			Title: "Order Cancelled",
			Body:  fmt.Sprintf("Order no %d has been cancelled", params.OrderNo),
		}, true
	case EventItemsCancelled:
		return fcmNotification{
			Title: "Order Items Cancelled",
			Body:  fmt.Sprintf("%s cancelled", strings.Join(params.FoodNames, ", ")),
		}, true
	case EventCallStaff:
		return fcmNotification{
			Title: "Calling Waiter",
			Body:  fmt.Sprintf("Customer from table no %d is looking for you", params.TableNo),
		}, true
	case EventCallStaffForPayment:
		body := fmt.Sprintf("Customer from table no %d is asking for the bill", params.TableNo)
		if params.Message != "" {
			body = fmt.Sprintf("Customer from table no %d is looking for you for %s payment", params.TableNo, params.Message)
		}
		return fcmNotification{
			Title: "Calling Waiter for payment",
			Body:  body,
		}, true
	default:
		return fcmNotification{}, false
	}
}

func (s *fcmSender) Send(event NotificationEvent, tokens []string, params NotificationParams) error {
	if len(tokens) == 0 {
		return nil
	}
	notification, ok := buildNotification(event, params)
	if !ok {
		return fmt.Errorf("unknown notification event %q", event)
	}

	data := map[string]string{
		"event":   string(event),
		"sent_at": time.Now().Format(time.RFC3339),
	}
	if params.OrderNo != 0 {
		data["order_no"] = utils.Int64ToStr(params.OrderNo)
	}
	message := fcmMessage{
		Notification:    notification,
		Data:            data,
		RegistrationIDs: tokens,
	}

	payload, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to encode fcm payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build fcm request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+s.cfg.ServerKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("fcm request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}
	return nil
}
