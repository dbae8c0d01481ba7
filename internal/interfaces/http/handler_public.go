package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"project_navbat/internal/entities"
	"project_navbat/internal/infrastructure"
	"project_navbat/internal/repository"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboards are served from arbitrary origins (local files, hosted panels).
	CheckOrigin: func(r *http.Request) bool { return true },
}

// PublicHandler serves unauthenticated tenant data for queue display
// screens, plus the dashboard websocket feed.
type PublicHandler struct {
	store *repository.Store
	hub   *infrastructure.Hub
}

func NewPublicHandler(store *repository.Store, hub *infrastructure.Hub) *PublicHandler {
	return &PublicHandler{store: store, hub: hub}
}

// QueueSocket upgrades the request and keeps the connection registered
// until the client goes away. Inbound frames are drained and discarded;
// the feed is one-way.
func (h *PublicHandler) QueueSocket(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed: %v", err)
		return
	}

	conn := infrastructure.NewDashboardConn(ws)
	h.hub.Register(conn)
	defer h.hub.Unregister(conn)

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *PublicHandler) GetQueue(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	queue, err := h.store.Bookings.ActiveQueue(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load queue"})
		return
	}
	// Public screens show ticket progress, not customer contact details.
	type entry struct {
		Num    int    `json:"num"`
		Barber string `json:"barber"`
		Time   string `json:"time"`
		Status string `json:"status"`
	}
	out := make([]entry, 0, len(queue))
	for _, b := range queue {
		out = append(out, entry{Num: b.Num, Barber: b.Barber, Time: b.Time, Status: b.Status})
	}
	c.JSON(http.StatusOK, out)
}

func (h *PublicHandler) GetServices(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	services, err := h.store.Catalog.ListServices(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load services"})
		return
	}
	c.JSON(http.StatusOK, services)
}

func (h *PublicHandler) GetBarbers(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	barbers, err := h.store.Catalog.ListActiveBarbers(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load barbers"})
		return
	}
	c.JSON(http.StatusOK, barbers)
}

func (h *PublicHandler) GetSettings(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	settings, err := h.store.Settings.GetAll(ctx, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	shop, err := h.store.Owners.ShopName(ctx, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop_name": shop, "settings": settings})
}

// CreateBooking takes a web walk-in (no Telegram chat attached).
func (h *PublicHandler) CreateBooking(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}

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
	if !ValidateLength(req.Name, 1, MaxNameLength) || !ValidateLength(req.Tel, 1, MaxPhoneLength) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and phone required"})
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

	c.JSON(http.StatusCreated, gin.H{"num": created.Num, "id": created.ID})
}

func (h *PublicHandler) CancelBooking(c *gin.Context) {
	ownerID, ok := ownerParam(c)
	if !ok {
		return
	}
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid booking id"})
		return
	}

	if err := h.store.Bookings.SetStatus(c.Request.Context(), bookingID, ownerID, entities.StatusCancelled); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	h.hub.Publish(entities.StatusEvent(ownerID, bookingID, entities.StatusCancelled))
	c.JSON(http.StatusOK, gin.H{"status": entities.StatusCancelled})
}

func ownerParam(c *gin.Context) (int, bool) {
	ownerID, err := strconv.Atoi(c.Param("owner_id"))
	if err != nil || ownerID < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid owner id"})
		return 0, false
	}
	return ownerID, true
}
