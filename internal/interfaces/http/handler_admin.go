package http

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"project_navbat/internal/entities"
	"project_navbat/internal/infrastructure"
	"project_navbat/internal/repository"
)

// AdminHandler serves the shop owner dashboard API. Every route it backs
// sits behind AuthRequired, so the tenant is always the JWT owner.
type AdminHandler struct {
	store *repository.Store
	hub   *infrastructure.Hub
	fleet *infrastructure.Fleet
}

func NewAdminHandler(store *repository.Store, hub *infrastructure.Hub, fleet *infrastructure.Fleet) *AdminHandler {
	return &AdminHandler{store: store, hub: hub, fleet: fleet}
}

// Me returns the authenticated owner's account.
func (h *AdminHandler) Me(c *gin.Context) {
	owner, err := h.store.Owners.GetByID(c.Request.Context(), OwnerID(c))
	if err != nil || owner == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Owner not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":        owner.ID,
		"username":  owner.Username,
		"shop_name": owner.ShopName,
		"is_active": owner.IsActive,
		"token_set": owner.BotToken != "",
	})
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	ownerID := OwnerID(c)
	stats, err := h.store.Bookings.Stats(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetStatus reports whether this owner's bot currently holds a fleet session.
func (h *AdminHandler) GetStatus(c *gin.Context) {
	ownerID := OwnerID(c)
	owner, err := h.store.Owners.GetByID(c.Request.Context(), ownerID)
	if err != nil || owner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load owner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token_set":      owner.BotToken != "",
		"is_active":      owner.IsActive,
		"fleet_sessions": h.fleet.SessionCount(),
	})
}

func (h *AdminHandler) ListBookings(c *gin.Context) {
	ownerID := OwnerID(c)

	if c.Query("active") == "true" {
		queue, err := h.store.Bookings.ActiveQueue(c.Request.Context(), ownerID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load queue"})
			return
		}
		c.JSON(http.StatusOK, queue)
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 100
	}
	bookings, err := h.store.Bookings.ListForOwner(c.Request.Context(), ownerID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load bookings"})
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// CreateBooking registers a walk-in customer at the counter. Walk-ins have
// no chat, so they never receive turn notifications.
func (h *AdminHandler) CreateBooking(c *gin.Context) {
	ownerID := OwnerID(c)

	var req struct {
		Name    string `json:"name"`
		Tel     string `json:"tel"`
		Service string `json:"service"`
		Barber  string `json:"barber"`
		Time    string `json:"time"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}
	if !ValidateLength(req.Name, 1, MaxNameLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name required"})
		return
	}

	booking := entities.Booking{
		OwnerID: ownerID,
		Name:    SanitizeString(req.Name),
		Tel:     SanitizeString(req.Tel),
		Service: SanitizeString(req.Service),
		Barber:  SanitizeString(req.Barber),
		Time:    SanitizeString(req.Time),
	}
	created, err := h.store.Bookings.Create(c.Request.Context(), booking)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create booking"})
		return
	}

	h.hub.Publish(entities.NewBookingEvent(created))
	c.JSON(http.StatusCreated, created)
}

func (h *AdminHandler) CallBooking(c *gin.Context) {
	h.setStatus(c, entities.StatusCalled)
}

func (h *AdminHandler) StartBooking(c *gin.Context) {
	h.setStatus(c, entities.StatusInProgress)
}

func (h *AdminHandler) CancelBooking(c *gin.Context) {
	h.setStatus(c, entities.StatusCancelled)
}

// DoneBooking finishes a visit and, for chat customers, schedules the
// rebook reminder.
func (h *AdminHandler) DoneBooking(c *gin.Context) {
	ownerID := OwnerID(c)
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	ctx := c.Request.Context()
	booking, err := h.store.Bookings.Get(ctx, bookingID, ownerID)
	if err != nil || booking == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	if err := h.store.Bookings.SetStatus(ctx, bookingID, ownerID, entities.StatusDone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update booking"})
		return
	}
	h.hub.Publish(entities.StatusEvent(ownerID, bookingID, entities.StatusDone))

	if booking.ChatID != 0 {
		days := reminderDays(ctx, h.store, ownerID)
		if err := h.store.Reminders.Create(ctx, ownerID, booking.ChatID, booking.Barber, days); err != nil {
			// The visit is already finished; a missed reminder is not worth a 500.
			log.Printf("[admin] reminder schedule failed for booking %d: %v", bookingID, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": entities.StatusDone})
}

func (h *AdminHandler) setStatus(c *gin.Context, status string) {
	ownerID := OwnerID(c)
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	if err := h.store.Bookings.SetStatus(c.Request.Context(), bookingID, ownerID, status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	h.hub.Publish(entities.StatusEvent(ownerID, bookingID, status))
	c.JSON(http.StatusOK, gin.H{"status": status})
}

func (h *AdminHandler) ListBarbers(c *gin.Context) {
	barbers, err := h.store.Catalog.ListBarbers(c.Request.Context(), OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load barbers"})
		return
	}
	c.JSON(http.StatusOK, barbers)
}

func (h *AdminHandler) AddBarber(c *gin.Context) {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !ValidateLength(req.Name, 1, MaxNameLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Barber name required"})
		return
	}

	barber := &entities.Barber{OwnerID: OwnerID(c), Name: SanitizeString(req.Name), IsActive: true}
	if err := h.store.Catalog.AddBarber(c.Request.Context(), barber); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add barber"})
		return
	}
	c.JSON(http.StatusCreated, barber)
}

func (h *AdminHandler) ToggleBarber(c *gin.Context) {
	barberID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barber id"})
		return
	}
	if err := h.store.Catalog.ToggleBarber(c.Request.Context(), barberID, OwnerID(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barber not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "toggled"})
}

func (h *AdminHandler) DeleteBarber(c *gin.Context) {
	barberID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid barber id"})
		return
	}
	if err := h.store.Catalog.DeleteBarber(c.Request.Context(), barberID, OwnerID(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Barber not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminHandler) ListServices(c *gin.Context) {
	services, err := h.store.Catalog.ListServices(c.Request.Context(), OwnerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load services"})
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *AdminHandler) AddService(c *gin.Context) {
	var req struct {
		Name     string `json:"name"`
		Price    int    `json:"price"`
		Duration string `json:"duration"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || !ValidateLength(req.Name, 1, MaxNameLength) || req.Price < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Service name and non-negative price required"})
		return
	}

	service := &entities.Service{
		OwnerID:  OwnerID(c),
		Name:     SanitizeString(req.Name),
		Price:    req.Price,
		Duration: SanitizeString(req.Duration),
	}
	if err := h.store.Catalog.AddService(c.Request.Context(), service); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add service"})
		return
	}
	c.JSON(http.StatusCreated, service)
}

func (h *AdminHandler) DeleteService(c *gin.Context) {
	serviceID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service id"})
		return
	}
	if err := h.store.Catalog.DeleteService(c.Request.Context(), serviceID, OwnerID(c)); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *AdminHandler) GetSettings(c *gin.Context) {
	ownerID := OwnerID(c)
	ctx := c.Request.Context()

	settings, err := h.store.Settings.GetAll(ctx, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	owner, err := h.store.Owners.GetByID(ctx, ownerID)
	if err != nil || owner == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load owner"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"settings":  settings,
		"shop_name": owner.ShopName,
		"token_set": owner.BotToken != "",
	})
}

// UpdateSettings applies a partial update. A bot_token change takes effect
// on the fleet manager's next reconcile tick.
func (h *AdminHandler) UpdateSettings(c *gin.Context) {
	ownerID := OwnerID(c)
	ctx := c.Request.Context()

	var req struct {
		ShopName *string           `json:"shop_name"`
		BotToken *string           `json:"bot_token"`
		Settings map[string]string `json:"settings"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	if req.ShopName != nil {
		name := SanitizeString(*req.ShopName)
		if !ValidateLength(name, 1, MaxNameLength) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid shop name"})
			return
		}
		if err := h.store.Owners.UpdateShopName(ctx, ownerID, name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update shop name"})
			return
		}
	}
	if req.BotToken != nil {
		if err := h.store.Owners.SetBotToken(ctx, ownerID, SanitizeString(*req.BotToken)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update bot token"})
			return
		}
	}
	for key, value := range req.Settings {
		if (key == repository.SettingWorkStart || key == repository.SettingWorkEnd) && !ValidClock(value) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Work hours must be HH:MM"})
			return
		}
		if err := h.store.Settings.Set(ctx, ownerID, key, SanitizeString(value)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// reminderDays reads the shop's rebook cadence, defaulting to 30 days.
func reminderDays(ctx context.Context, store *repository.Store, ownerID int) int {
	settings, err := store.Settings.GetAll(ctx, ownerID)
	if err != nil {
		return 30
	}
	days, err := strconv.Atoi(settings["reminder_days"])
	if err != nil || days < 1 {
		return 30
	}
	return days
}
