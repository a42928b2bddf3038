package httpapi

import (
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/SirClappington/signjobs/internal/reminder"
)

// handleCheckReminder runs one sweep. It is meant to be hit by an external
// scheduler at least every five minutes.
func (s *Server) handleCheckReminder(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.Reminders.Scan(r.Context(), s.now())
	switch {
	case errors.Is(err, reminder.ErrSweepBusy):
		writeText(w, http.StatusConflict, "busy")
	case err != nil:
		s.Log.Error("reminder sweep", zap.Error(err), zap.Int("notified", len(jobs)))
		writeText(w, http.StatusInternalServerError, "error")
	default:
		writeText(w, http.StatusOK, "checked")
	}
}

func (s *Server) handleTestMessage(w http.ResponseWriter, r *http.Request) {
	msg := "ทดสอบแจ้งเตือนจากระบบ " + s.ShopName + " 🚀"
	if err := s.Gateway.SendText(r.Context(), s.Recipient, msg); err != nil {
		s.Log.Warn("test message failed", zap.Error(err))
		writeText(w, http.StatusBadGateway, "ส่งข้อความไม่สำเร็จ")
		return
	}
	writeText(w, http.StatusOK, "ส่งข้อความทดสอบแล้ว")
}
