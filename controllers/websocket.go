package controllers

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/middlewares"
	"github.com/AnthonioFuentes09/OPERA-STRIX-1-API/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsClient struct {
	Conn   *websocket.Conn
	UserID uint
}

var (
	wsClients   = make(map[*websocket.Conn]wsClient)
	wsClientsMu sync.Mutex
)

// HandleWebSocket registers an authenticated websocket client. The server
// pushes reservation-availability and overdue notices; client messages are
// discarded.
func HandleWebSocket(c *gin.Context) {
	userID, ok := middlewares.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Autenticación requerida"})
		return
	}

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	wsClientsMu.Lock()
	wsClients[conn] = wsClient{Conn: conn, UserID: userID}
	wsClientsMu.Unlock()

	defer func() {
		wsClientsMu.Lock()
		delete(wsClients, conn)
		wsClientsMu.Unlock()
		conn.Close()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// notifyUser sends a JSON payload to every open connection of one user.
func notifyUser(userID uint, payload map[string]interface{}) {
	msg, _ := json.Marshal(payload)

	wsClientsMu.Lock()
	defer wsClientsMu.Unlock()
	for _, client := range wsClients {
		if client.UserID == userID {
			client.Conn.WriteMessage(websocket.TextMessage, msg)
		}
	}
}

// NotifyReservationAvailable tells the reservation's owner that a copy of
// the book is being held for them.
func NotifyReservationAvailable(res models.Reservation, book models.Book) {
	notifyUser(res.UsuarioID, map[string]interface{}{
		"tipo":      "reserva_disponible",
		"mensaje":   "El libro '" + book.Titulo + "' está disponible para retiro",
		"reservaId": res.ID,
		"libroId":   book.ID,
	})
}

// NotifyLoanOverdue warns a user that a loan is past its return date.
func NotifyLoanOverdue(loan models.Loan, book models.Book) {
	notifyUser(loan.UsuarioID, map[string]interface{}{
		"tipo":       "prestamo_vencido",
		"mensaje":    "El préstamo del libro '" + book.Titulo + "' está vencido",
		"prestamoId": loan.ID,
		"libroId":    book.ID,
	})
}
