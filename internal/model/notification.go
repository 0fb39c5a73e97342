package model

// Notification event types pushed to WebSocket clients
const (
	NotificationAppointmentCreated = "appointment_created"
	NotificationAppointmentUpdate  = "appointment_update"
	NotificationPong               = "pong"
)

// Notification is the {type, data} envelope delivered over WebSocket
type Notification struct {
	Type    string      `json:"type"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}
