package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
	"github.com/daaqui-joyas/salesbot/internal/utils"
)

var (
	balanceWords = []string{"cuanto", "falta", "pagar", "saldo", "restante"}
	paymentWords = []string{"numero", "yape", "plin", "cuenta"}
)

const trackingPause = 2 * time.Second

// ErrInvalidRequest marks a request rejected before anything was sent.
var ErrInvalidRequest = errors.New("invalid request")

func (c *Conversation) pendingSale(ctx context.Context, userID string) *models.Sale {
	sale, err := c.store.FindPendingSale(ctx, userID)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Sale.Warn("failed to look up pending sale", slog.String("customer_id", userID), slog.Any("error", err))
		}
		return nil
	}
	return sale
}

// followUpPendingSale answers customers who already paid the deposit and
// write about the balance. It returns false when the message is not a
// follow-up, so the funnel handles it.
func (c *Conversation) followUpPendingSale(ctx context.Context, snap *catalog.Snapshot, in models.Inbound, sale *models.Sale) bool {
	text := in.Payload
	switch {
	case in.Kind != models.KindImage && containsAny(text, balanceWords):
		c.deliver(ctx, in.UserID, []models.OutboundMessage{models.Text(fmt.Sprintf(
			"¡Hola %s! 😊 Claro, tu saldo restante para el pedido es de *%s*. Quedo atento a tu comprobante para enviarte la clave secreta. ✨",
			in.DisplayName, formatSoles(sale.Balance)))})
		return true
	case in.Kind != models.KindImage && containsAny(text, paymentWords):
		c.deliver(ctx, in.UserID, []models.OutboundMessage{models.Text(fmt.Sprintf(
			"¡Por supuesto! Puedes realizar el pago final a nuestro Yape/Plin: *%s* a nombre de *%s*.\n\n"+
				"No olvides enviarme la captura para darte tu clave. ¡Gracias! 🔑",
			snap.Business.YapeNumber, snap.Business.YapeHolder))})
		return true
	case in.Kind == models.KindImage && sale.IsShalom():
		c.alertBalancePayment(ctx, in, sale)
		c.deliver(ctx, in.UserID, []models.OutboundMessage{models.Text(
			"¡Gracias! 🙌🏽 Recibí tu comprobante. Lo validaremos y en breve te enviaremos tu clave secreta de recojo. 🔑")})
		return true
	}
	return false
}

// alertBalancePayment tells the admin that a customer probably paid the
// balance, with the pickup key from the ledger when there is one.
func (c *Conversation) alertBalancePayment(ctx context.Context, in models.Inbound, sale *models.Sale) {
	logger.Sale.Info("possible balance payment received",
		slog.String("event", "sale.balance_image"),
		slog.String("customer_id", in.UserID),
		slog.String("sale_id", sale.ID),
	)
	if c.admin == nil {
		logger.Sale.Warn("no admin channel for balance payment alert", slog.String("customer_id", in.UserID))
		return
	}

	key, err := c.store.FindPickupKey(ctx, in.UserID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		logger.Sale.Warn("failed to look up pickup key", slog.String("customer_id", in.UserID), slog.Any("error", err))
	}

	alert := fmt.Sprintf("🔔 *¡Atención! Posible Pago Final Recibido* 🔔\n\n"+
		"El cliente *%s* (%s) con un pedido pendiente acaba de enviar una imagen.\n", in.DisplayName, in.UserID)
	if key == "" {
		alert += "*Clave:* No encontrada en el registro.\n\n" +
			"Busca la clave y envíala con:\n`clave " + in.UserID + " LA_CLAVE_SECRETA`"
		c.notifyAdmin(ctx, "Posible pago final", alert)
		return
	}
	alert += "*Clave Encontrada en el registro:* `" + key + "`"
	c.notifyAdmin(ctx, "Posible pago final", alert)
	c.sleep(ctx, c.pause(time.Second))
	c.notifyAdmin(ctx, "Comando de clave", "clave "+in.UserID+" "+key)
}

func (c *Conversation) notifyAdmin(ctx context.Context, subject, body string) {
	if err := c.admin.NotifyAdmin(ctx, subject, body); err != nil {
		logger.Sale.Warn("failed to notify admin", slog.String("subject", subject), slog.Any("error", err))
	}
}

func (c *Conversation) pause(d time.Duration) time.Duration {
	if d > c.cfg.PauseMax {
		return c.cfg.PauseMax
	}
	return d
}

func isPickupKeyCommand(text string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(text)), "clave ")
}

// handlePickupKeyCommand runs "clave <numero> <clave>" sent by the admin:
// the key goes to the customer and is stored on their ledger row.
func (c *Conversation) handlePickupKeyCommand(ctx context.Context, adminID, text string) {
	logger.Sale.Info("admin command received", slog.String("event", "admin.command"), slog.String("admin", adminID))
	parts := strings.Fields(text)
	if len(parts) != 3 {
		c.deliver(ctx, adminID, []models.OutboundMessage{models.Text("❌ Error: Usa: clave <numero> <clave>")})
		return
	}
	target, key := parts[1], parts[2]
	if !utils.ValidPhone(target) || utils.NormalizePhone(target) != strings.TrimPrefix(target, "+") {
		c.deliver(ctx, adminID, []models.OutboundMessage{models.Text(fmt.Sprintf("❌ Error: El número '%s' no parece válido.", target))})
		return
	}
	target = utils.NormalizePhone(target)

	failed := c.deliver(ctx, target, []models.OutboundMessage{models.Text(fmt.Sprintf(
		"¡Gracias por confirmar tu pago! ✨\n\n"+
			"Aquí tienes tu clave secreta para recoger tu pedido en la agencia:\n\n"+
			"🔑 *CLAVE:* %s\n\n"+
			"¡Que disfrutes tu joya!", key))})
	if failed > 0 {
		c.deliver(ctx, adminID, []models.OutboundMessage{models.Text(fmt.Sprintf("❌ Error: No se pudo enviar la clave a %s.", target))})
		return
	}

	if err := c.store.SetPickupKey(ctx, target, key); err != nil {
		logger.Sale.Warn("failed to store pickup key",
			slog.String("event", "admin.pickup_key_not_stored"),
			slog.String("customer_id", target),
			slog.Any("error", err),
		)
	}
	c.deliver(ctx, adminID, []models.OutboundMessage{models.Text(fmt.Sprintf("✅ Clave '%s' enviada a %s.", key, target))})
}

// TrackingRequest carries the agency shipment data for a customer.
type TrackingRequest struct {
	ToNumber   string
	OrderNo    string
	PickupCode string
}

// SendTracking sends the three shipment messages to a customer. It fails
// with ErrInvalidRequest on missing data and ErrDelivery when nothing could
// be sent.
func (c *Conversation) SendTracking(ctx context.Context, req TrackingRequest) error {
	to := utils.NormalizePhone(req.ToNumber)
	if to == "" || strings.TrimSpace(req.OrderNo) == "" {
		return fmt.Errorf("%w: to_number and nro_orden are required", ErrInvalidRequest)
	}

	name := "cliente"
	if customer, err := c.store.GetCustomer(ctx, to); err == nil && customer.ProfileName != "" {
		name = customer.ProfileName
	}
	brand := c.catalog.Current().Business.Brand

	first := fmt.Sprintf("¡Hola %s! 👋🏽✨\n\n¡Excelentes noticias! Tu pedido de %s ha sido enviado. 🚚\n\n"+
		"Datos para seguimiento Shalom:\n👉🏽 *Nro. de Orden:* %s", name, brand, req.OrderNo)
	if req.PickupCode != "" {
		first += "\n👉🏽 *Código de Recojo:* " + req.PickupCode
	}
	first += "\n\nA continuación, los pasos a seguir:"

	msgs := []models.OutboundMessage{
		models.Text(first),
		models.Text("*Pasos para una entrega exitosa:* 👇\n\n" +
			"*1. HAZ EL SEGUIMIENTO:* 📲\nDescarga la app *\"Mi Shalom\"*. Si eres nuevo, regístrate. Con los datos de arriba, podrás ver el estado de tu paquete.\n\n" +
			"*2. PAGA EL SALDO CUANDO LLEGUE:* 💳\nCuando la app confirme que tu pedido llegó a la agencia, yapea o plinea el saldo restante. Haz este paso *antes de ir a la agencia*.\n\n" +
			"*3. AVISA Y RECIBE TU CLAVE:* 🔑\nApenas nos envíes la captura de tu pago, lo validaremos y te daremos la *clave secreta de recojo*. ¡La necesitarás junto a tu DNI! 🎁").After(trackingPause),
		models.Text("✨ *¡Ya casi es tuya! Tu último paso es el más importante.* ✨\n\n" +
			"Para darte atención prioritaria, responde este chat con la *captura de tu pago*.\n\n" +
			"¡Estaremos atentos para enviarte tu clave al instante! La necesitarás junto a tu DNI para recibir tu joya. 🎁").After(trackingPause),
	}

	unlock := c.locks.Lock(to)
	defer unlock()
	if failed := c.deliver(ctx, to, msgs); failed == len(msgs) {
		return flowError(ErrDelivery, "send_tracking", fmt.Errorf("no message reached %s", to))
	}
	logger.Msg.Info("tracking sent", slog.String("event", "msg.tracking_sent"), slog.String("to", to), slog.String("order", req.OrderNo))
	return nil
}

// NotifyAdmin forwards a free-form alert to the admin channels.
func (c *Conversation) NotifyAdmin(ctx context.Context, message string) error {
	if c.admin == nil {
		return ErrNoAdmin
	}
	return c.admin.NotifyAdmin(ctx, "Notificación", message)
}
