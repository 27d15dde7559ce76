package services

import (
	"encoding/json"
	"log"

	"epa-asset-api-server/internal/socket"
)

// NotificationService bắn thông báo best-effort qua WebSocket hub.
// Chỉ được gọi SAU khi transaction đã commit; lỗi ở đây không bao giờ
// unwind trạng thái đã ghi, chỉ log.
type NotificationService struct {
	Hub *socket.Hub
}

func (s *NotificationService) Notify(recipients []string, event string, payload interface{}) {
	message, err := json.Marshal(map[string]interface{}{
		"event":   event,
		"payload": payload,
	})
	if err != nil {
		log.Printf("notification payload marshal failed for event %s: %v", event, err)
		return
	}

	for _, recipient := range recipients {
		if err := s.Hub.Send(recipient, message); err != nil {
			log.Printf("notification to %s failed for event %s: %v", recipient, event, err)
		}
	}
}
