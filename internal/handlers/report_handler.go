package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/internal/reports"
	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

// FetchReviewRows loads the full pending-review queue for export, oldest first.
func FetchReviewRows() ([]reports.ReviewRow, error) {
	var events []models.PaymentEvent
	err := config.DB.
		Where("reconciliation_status = ?", models.ReconStatusPendingReview).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}

	rows := make([]reports.ReviewRow, 0, len(events))
	for _, ev := range events {
		rows = append(rows, reports.ReviewRow{
			EventID:     ev.ID,
			ExternalID:  ev.ExternalID,
			PhoneNumber: ev.PhoneNumber,
			Amount:      ev.Amount,
			TransTime:   ev.TransTime,
			ReceivedAt:  ev.CreatedAt,
			Score:       ev.ConfidenceScore,
			Notes:       ev.ReconciliationNotes,
		})
	}
	return rows, nil
}

// ExportReviewQueueHandler streams the review queue as an xlsx download.
func ExportReviewQueueHandler(c *gin.Context) {
	rows, err := FetchReviewRows()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch review queue"})
		return
	}

	f, err := reports.BuildReviewQueueWorkbook(rows)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build workbook"})
		return
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write workbook"})
		return
	}

	filename := "review-queue-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}
