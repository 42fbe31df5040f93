package services

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/taskbridge/taskbridge/db"
	"github.com/taskbridge/taskbridge/internal/models"
	"gorm.io/datatypes"
)

// DeletedMarker is the payload recorded for delete actions instead of the
// entity's last state.
const DeletedMarker = "deleted"

// RecordHistory appends one audit record for a mutation. It is synchronous
// and its error must reach the caller: an incomplete trail is a correctness
// failure, not a logging gap.
func RecordHistory(model models.HistoryModel, action models.HistoryAction, data interface{}, userID uint) error {
	payload, err := json.Marshal(data)

	if err != nil {
		return fmt.Errorf("marshal history snapshot: %w", err)
	}

	entry := models.History{
		Model:     model,
		Action:    action,
		Data:      datatypes.JSON(payload),
		UserID:    userID,
		Timestamp: time.Now(),
	}

	return db.DB.Create(&entry).Error
}

// RecordDeletion appends a delete record carrying the fixed marker.
func RecordDeletion(model models.HistoryModel, userID uint) error {
	return RecordHistory(model, models.HistoryActionDelete, DeletedMarker, userID)
}
