package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dmuchai/Rent-Management-System-sub001/config"
	"github.com/dmuchai/Rent-Management-System-sub001/models"
)

type ChannelInput struct {
	LandlordID        uint   `json:"landlordId" binding:"required"`
	BankName          string `json:"bankName" binding:"required"`
	BankPaybillNumber string `json:"bankPaybillNumber" binding:"required"`
	BankAccountNumber string `json:"bankAccountNumber" binding:"required"`
}

// CreateChannelHandler registers a bank paybill destination for a landlord.
// The (paybill, account) pair must be unique so inbound payments resolve to
// exactly one landlord.
func CreateChannelHandler(c *gin.Context) {
	var input ChannelInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	channel := models.LandlordPaymentChannel{
		LandlordID:        input.LandlordID,
		BankName:          input.BankName,
		BankPaybillNumber: input.BankPaybillNumber,
		BankAccountNumber: input.BankAccountNumber,
		Active:            true,
	}
	// The unique index on (paybill, account) is the authority on duplicates;
	// a pre-flight SELECT would race with concurrent inserts.
	if err := config.DB.Create(&channel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "This paybill and account pair is already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create channel"})
		return
	}

	c.JSON(http.StatusCreated, channel)
}

// ListChannelsHandler returns registered channels with pagination.
func ListChannelsHandler(c *gin.Context) {
	var channels []models.LandlordPaymentChannel
	var totalRows int64

	query := config.DB.Model(&models.LandlordPaymentChannel{})
	if landlordID := c.Query("landlordId"); landlordID != "" {
		query = query.Where("landlord_id = ?", landlordID)
	}

	if err := query.Count(&totalRows).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count channels"})
		return
	}

	if err := query.Scopes(Paginate(c)).Order("id ASC").Find(&channels).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch channels"})
		return
	}

	c.JSON(http.StatusOK, CreatePaginatedResponse(c, channels, totalRows))
}

// DeactivateChannelHandler retires a channel so it no longer resolves
// payments. The row is kept for the audit history of past matches.
func DeactivateChannelHandler(c *gin.Context) {
	channelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid channel ID"})
		return
	}

	var channel models.LandlordPaymentChannel
	if err := config.DB.First(&channel, channelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Channel not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		}
		return
	}

	if err := config.DB.Model(&channel).Update("active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate channel"})
		return
	}

	// Drop the cached resolution so the deactivation takes effect at once.
	if config.RDB != nil {
		cacheKey := fmt.Sprintf("paychan:%s:%s", channel.BankPaybillNumber, channel.BankAccountNumber)
		config.RDB.Del(config.Ctx, cacheKey)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Channel deactivated"})
}
