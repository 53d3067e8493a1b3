package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFCMSenderSend(t *testing.T) {
	var received fcmMessage
	var authHeader string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sender := NewFCMSender(FCMConfig{
		ServerKey: "test-key",
		Endpoint:  server.URL,
		Timeout:   time.Second,
	})

	err := sender.Send(EventOrderReceived, []string{"tok-1", "tok-2"}, NotificationParams{TableNo: 5})
	require.NoError(t, err)

	assert.Equal(t, "key=test-key", authHeader)
	assert.Equal(t, []string{"tok-1", "tok-2"}, received.RegistrationIDs)
	assert.Equal(t, "Received", received.Notification.Title)
	assert.Contains(t, received.Notification.Body, "table 5")
	assert.Equal(t, string(EventOrderReceived), received.Data["event"])
}

func TestFCMSenderNoTokensIsNoOp(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	sender := NewFCMSender(FCMConfig{Endpoint: server.URL})
	require.NoError(t, sender.Send(EventOrderReceived, nil, NotificationParams{}))
	assert.False(t, called)
}

func TestFCMSenderNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	sender := NewFCMSender(FCMConfig{Endpoint: server.URL})
	err := sender.Send(EventCallStaff, []string{"tok"}, NotificationParams{TableNo: 2})
	assert.Error(t, err)
}

func TestBuildNotificationTemplates(t *testing.T) {
	tests := []struct {
		event     NotificationEvent
		params    NotificationParams
		wantTitle string
		wantBody  string
	}{
		{EventOrderReceived, NotificationParams{TableNo: 3}, "Received", "An order has been placed for table 3"},
		{EventOrderCancelled, NotificationParams{OrderNo: 12}, "Order Cancelled", "Order no 12 has been cancelled"},
		{EventItemsCancelled, NotificationParams{FoodNames: []string{"Ramen", "Cola"}}, "Order Items Cancelled", "Ramen, Cola cancelled"},
		{EventCallStaff, NotificationParams{TableNo: 8}, "Calling Waiter", "Customer from table no 8 is looking for you"},
		{EventCallStaffForPayment, NotificationParams{TableNo: 8}, "Calling Waiter for payment", "Customer from table no 8 is asking for the bill"},
		{EventCallStaffForPayment, NotificationParams{TableNo: 8, Message: "card"}, "Calling Waiter for payment", "Customer from table no 8 is looking for you for card payment"},
	}
	for _, tt := range tests {
		n, ok := buildNotification(tt.event, tt.params)
		require.True(t, ok, "event %s", tt.event)
		assert.Equal(t, tt.wantTitle, n.Title)
		assert.Equal(t, tt.wantBody, n.Body)
	}

	_, ok := buildNotification(NotificationEvent("bogus"), NotificationParams{})
	assert.False(t, ok)
}
