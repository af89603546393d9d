package services

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

// Pacing hints between consecutive messages.
const (
	pauseShort = time.Second
	pauseLong  = 1500 * time.Millisecond
)

// Button ids of the fixed prompts.
const (
	ButtonMenuProducts  = "menu_productos"
	ButtonMenuFAQ       = "menu_faq"
	ButtonOccasionSelf  = "occ_para_mi"
	ButtonOccasionGift  = "occ_regalo"
	ButtonUpsellOffer   = "upsell_oferta"
	ButtonUpsellSingle  = "upsell_continuar"
	ButtonLocationLima  = "loc_lima"
	ButtonLocationProv  = "loc_provincia"
	ButtonConfirmRoute  = "btn_confirmo"
	faqBridge           = "¡Espero haber aclarado tu duda! 😊 Continuando..."
	msgConfused         = "Estoy un poco confundido. Si deseas reiniciar, escribe 'cancelar'."
	msgProductGone      = "Lo siento, este producto ya no está disponible. Por favor, empieza de nuevo."
	msgSaleFailed       = "¡Uy! Hubo un problema al registrar tu pedido. Un asesor se pondrá en contacto contigo."
	msgStoreUnavailable = "¡Uy! Tuvimos un problema técnico. Por favor, escríbeme nuevamente en unos minutos. 🙏🏽"
	msgCancelled        = "Hecho. He cancelado el proceso. Si necesitas algo más, escríbeme. 😊"
	msgCancelPending    = "Entendido. No tienes un proceso de compra activo. Si necesitas ayuda con tu pedido pendiente, escríbeme. 😊"
	msgSessionExpired   = "¡Hola de nuevo! 👋🏽 Tu conversación anterior quedó en pausa por un tiempo, así que empezamos otra vez. ✨"
	msgUnsupportedKind  = "Por ahora solo puedo procesar mensajes de texto e imágenes. 😊"
	msgDistrictUnknown  = "No pude reconocer ese distrito. Por favor, intenta escribirlo de nuevo."
	msgDetailsAsText    = "Por favor, envíame tus datos de envío en un mensaje de texto. ✍🏽"
)

var yesNo = []models.ChoiceOption{{ID: ButtonYes, Title: "Sí"}, {ID: ButtonNo, Title: "No"}}

// staticPrompts are the questions re-sent when a choice is not understood.
var staticPrompts = map[models.State]models.OutboundMessage{
	models.StateMenuChoice: models.Choice("¿En qué te puedo ayudar hoy? 😊",
		models.ChoiceOption{ID: ButtonMenuProducts, Title: "Ver productos"},
		models.ChoiceOption{ID: ButtonMenuFAQ, Title: "Preguntas frecuentes"},
	),
	models.StateOccasionResponse: models.Choice("Cuéntame, ¿es un tesoro para ti o un regalo para alguien especial?",
		models.ChoiceOption{ID: ButtonOccasionSelf, Title: "Es para mí"},
		models.ChoiceOption{ID: ButtonOccasionGift, Title: "Es un regalo"},
	),
	models.StatePurchaseDecision: models.Choice("¿Te gustaría coordinar tu pedido ahora para asegurar el tuyo? (Sí/No)", yesNo...),
	models.StateUpsellDecision: models.Choice("Para continuar, por favor, respóndeme con una de estas dos palabras:\n👉🏽 Escribe *oferta* para ampliar tu pedido.\n👉🏽 Escribe *continuar* para llevar solo un collar.",
		models.ChoiceOption{ID: ButtonUpsellOffer, Title: "Oferta"},
		models.ChoiceOption{ID: ButtonUpsellSingle, Title: "Continuar"},
	),
	models.StateLocation: models.Choice("Para empezar a coordinar el envío, por favor, dime: ¿eres de *Lima* o de *provincia*?",
		models.ChoiceOption{ID: ButtonLocationLima, Title: "Lima"},
		models.ChoiceOption{ID: ButtonLocationProv, Title: "Provincia"},
	),
	models.StateLimaDistrict:          models.Text("¡Genial! ✨ Para saber qué tipo de envío te corresponde, por favor, dime: ¿en qué distrito te encuentras? 📍"),
	models.StateProvinceDistrict:      models.Text("¡Entendido! Para continuar, por favor, indícame tu *provincia y distrito*. ✍🏽\n\n📝 *Ej: Arequipa, Arequipa*"),
	models.StateDeliveryDetails:       models.Text("Para registrar tu pedido, envíame en *un solo mensaje* tu *Nombre Completo, Dirección exacta* y una *Referencia*.\n\n📝 *Ej: Ana Pérez, Jr. Gamarra 123, Depto 501, La Victoria. Al lado de la farmacia.*"),
	models.StateShalomDetails:         models.Text("Bríndame en un solo mensaje tu *Nombre Completo, DNI* y la *dirección exacta de la agencia Shalom* donde recogerás. ✍🏽\n\n📝 *Ej: Juan Quispe, 45678901, Av. Pardo 123, Miraflores.*"),
	models.StateShalomAgreement:       models.Choice("¿Estás de acuerdo con el adelanto? (Sí/No)", yesNo...),
	models.StateShalomExperience:      models.Choice("¿Alguna vez has recogido un pedido en una agencia Shalom? 🙋🏽‍♀️ (Sí/No)", yesNo...),
	models.StateShalomAgencyKnowledge: models.Choice("¿Conoces la dirección de alguna agencia Shalom cerca a ti? (Sí/No)", yesNo...),
	models.StateFinalConfirmation:     models.Choice("¿Confirmas que todo es correcto? (Sí/No)", yesNo...),
	models.StateLimaPaymentAgreement:  models.Choice("¿Procedemos? (Sí/No)", yesNo...),
	models.StateLimaPayment:           models.Text("Estoy esperando la *captura de pantalla* de tu pago. 😊"),
	models.StateShalomPayment:         models.Text("Estoy esperando la *captura de pantalla* de tu pago. 😊"),
	models.StateDeliveryConfirmationLima: models.Choice("Por favor, responde a este mensaje con la palabra *CONFIRMO* para asegurar tu entrega.",
		models.ChoiceOption{ID: ButtonConfirmRoute, Title: "CONFIRMO"},
	),
}

// prompt returns the question for a state. Product and FAQ menus are built
// from the live catalog.
func (m *Machine) prompt(t *turn, state models.State) []models.OutboundMessage {
	switch state {
	case models.StateProductChoice:
		return []models.OutboundMessage{m.productMenu(t)}
	case models.StateFAQChoice:
		return []models.OutboundMessage{faqMenu(t.snap.FAQ.Topics)}
	}
	if msg, ok := staticPrompts[state]; ok {
		return []models.OutboundMessage{msg}
	}
	return []models.OutboundMessage{models.Text(msgConfused)}
}

func (m *Machine) productMenu(t *turn) models.OutboundMessage {
	products, err := m.products.ListActiveProducts(t.ctx)
	if err != nil {
		logger.Flow.Warn("failed to list products", slog.String("event", "flow.products_unavailable"), slog.Any("error", err))
	}
	if len(products) == 0 {
		return models.Text("En este momento estamos renovando nuestro catálogo. ✨ Escribe *girasol* para conocer nuestro collar estrella.")
	}
	if len(products) <= models.MaxChoiceOptions {
		options := make([]models.ChoiceOption, 0, len(products))
		for _, p := range products {
			options = append(options, models.ChoiceOption{ID: p.ID, Title: buttonTitle(p.Name)})
		}
		return models.Choice("¿Qué joya te gustaría conocer? 💎", options...)
	}
	var b strings.Builder
	b.WriteString("¿Qué joya te gustaría conocer? 💎 Escribe el número:\n")
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. %s (%s)", i+1, p.Name, formatSoles(p.BasePrice))
	}
	return models.Text(b.String())
}

func faqMenu(topics []models.FAQTopic) models.OutboundMessage {
	var b strings.Builder
	b.WriteString("¿Sobre qué tema tienes dudas? Escribe el número o tu pregunta: 🤔\n")
	for i, topic := range topics {
		fmt.Fprintf(&b, "\n%d. %s", i+1, topic.Title)
	}
	return models.Text(b.String())
}

// buttonTitle trims a label to the 20 characters WhatsApp allows on buttons.
func buttonTitle(s string) string {
	r := []rune(s)
	if len(r) <= 20 {
		return s
	}
	return string(r[:19]) + "…"
}
