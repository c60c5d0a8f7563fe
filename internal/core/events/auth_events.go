package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeSessionLogin         = "session.login"
	EventTypeSessionLoginFailed   = "session.login_failed"
	EventTypeSessionRefreshed     = "session.refreshed"
	EventTypeSessionReuseDetected = "session.reuse_detected"
	EventTypeSessionRevoked       = "session.revoked"

	EventTypeRegistrationSubmitted = "registration.submitted"
	EventTypeRegistrationAccepted  = "registration.accepted"
	EventTypeRegistrationRejected  = "registration.rejected"
	EventTypeNotificationFailed    = "notification.failed"
)

func newBaseEvent(eventType string, data map[string]interface{}) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

type SessionEvent struct {
	BaseEvent
	AccountID string `json:"account_id"`
	TokenID   string `json:"token_id"`
	ClientIP  string `json:"client_ip"`
	Reason    string `json:"reason,omitempty"`
}

func NewSessionEvent(eventType, accountID, tokenID, clientIP, reason string) *SessionEvent {
	return &SessionEvent{
		BaseEvent: newBaseEvent(eventType, map[string]interface{}{
			"account_id": accountID,
			"token_id":   tokenID,
			"client_ip":  clientIP,
			"reason":     reason,
		}),
		AccountID: accountID,
		TokenID:   tokenID,
		ClientIP:  clientIP,
		Reason:    reason,
	}
}

type RegistrationEvent struct {
	BaseEvent
	RequestID string `json:"request_id"`
	AccountID string `json:"account_id,omitempty"`
	Email     string `json:"email"`
	Role      string `json:"role,omitempty"`
}

func NewRegistrationEvent(eventType, requestID, accountID, email, role string) *RegistrationEvent {
	return &RegistrationEvent{
		BaseEvent: newBaseEvent(eventType, map[string]interface{}{
			"request_id": requestID,
			"account_id": accountID,
			"email":      email,
			"role":       role,
		}),
		RequestID: requestID,
		AccountID: accountID,
		Email:     email,
		Role:      role,
	}
}

type NotificationFailedEvent struct {
	BaseEvent
	Outcome string `json:"outcome"`
	Error   string `json:"error"`
}

func NewNotificationFailedEvent(outcome string, err error) *NotificationFailedEvent {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &NotificationFailedEvent{
		BaseEvent: newBaseEvent(EventTypeNotificationFailed, map[string]interface{}{
			"outcome": outcome,
			"error":   msg,
		}),
		Outcome: outcome,
		Error:   msg,
	}
}
