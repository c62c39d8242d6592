package realtime

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Role is the kind of user a socket authenticated as.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
	RoleDriver   Role = "driver"
)

var Roles = []Role{RoleAdmin, RoleCustomer, RoleDriver}

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCustomer, RoleDriver:
		return true
	}
	return false
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}

// Frame types on the wire.
const (
	FrameAuth         = "auth"
	FrameConnected    = "connected"
	FrameNotification = "notification"
)

// ConnectedMessage acknowledges a successful auth frame.
const ConnectedMessage = "تم الاتصال بنجاح"

// AuthFrame is the only frame clients send.
type AuthFrame struct {
	Type     string `json:"type"`
	UserID   string `json:"userId"`
	UserType Role   `json:"userType"`
}

type ConnectedFrame struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Notification is the envelope every server push is wrapped in.
type Notification[T any] struct {
	Type string `json:"type"`
	Data T      `json:"data"`
}

func NewNotification[T any](data T) Notification[T] {
	return Notification[T]{Type: FrameNotification, Data: data}
}

// Known payloads sent by the HTTP layer. Any JSON-encodable value is
// accepted as a payload; these keep the common ones consistent.

// OrderEvent tells drivers, admins or a customer about an order change.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"orderId"`
	Status    string    `json:"status,omitempty"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Announcement is a free-text message pushed by an admin.
type Announcement struct {
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

const (
	EventNewOrder     = "new_order"
	EventOrderStatus  = "order_status"
	EventAnnouncement = "announcement"
)

var (
	// errNotAuth marks well-formed frames of another type; they are ignored.
	errNotAuth       = errors.New("not an auth frame")
	errMissingUserID = errors.New("auth frame missing userId")
)

// decodeAuth parses a client frame. It returns errNotAuth for frames that
// are valid JSON but not auth frames.
func decodeAuth(data []byte) (*AuthFrame, error) {
	var f AuthFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("invalid frame: %w", err)
	}
	if f.Type != FrameAuth {
		return nil, errNotAuth
	}
	if f.UserID == "" {
		return nil, errMissingUserID
	}
	if !f.UserType.Valid() {
		return nil, fmt.Errorf("unknown role %q", f.UserType)
	}
	return &f, nil
}

func encodeNotification(payload any) ([]byte, error) {
	data, err := json.Marshal(NewNotification(payload))
	if err != nil {
		return nil, fmt.Errorf("encode notification: %w", err)
	}
	return data, nil
}

var connectedFrame = mustEncode(ConnectedFrame{Type: FrameConnected, Message: ConnectedMessage})

func mustEncode(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
