package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/daaqui-joyas/salesbot/internal/metrics"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

var (
	selfWords = []string{"yo", "mismo", "misma", "personal", "engreirme", "tesoro", "mio", "mia"}
	giftWords = []string{"regalo", "regalar", "obsequio", "sorpresa", "alguien", "cumpleanos", "aniversario",
		"mama", "mami", "madre", "papa", "papi", "padre", "esposa", "esposo", "novia", "novio", "enamorada", "enamorado",
		"pareja", "hermana", "hermano", "hija", "hijo", "amiga", "amigo", "tia", "tio", "abuela", "abuelo",
		"prima", "primo", "sobrina", "sobrino", "suegra", "suegro", "companera", "companero", "jefa", "jefe"}
	singleWords = []string{"continuar", "continua", "solo uno", "uno solo", "solo un", "individual"}
)

func (m *Machine) onMenuChoice(t *turn) bool {
	switch {
	case t.in.Payload == ButtonMenuProducts || strings.TrimSpace(t.text) == "1" || m.matcher.HasWord(t.text, "productos", "producto", "catalogo", "joyas", "comprar"):
		t.moveTo(models.StateProductChoice)
		t.send(m.prompt(t, models.StateProductChoice)...)
		return true
	case t.in.Payload == ButtonMenuFAQ || strings.TrimSpace(t.text) == "2" || m.matcher.HasWord(t.text, "preguntas", "pregunta", "dudas", "duda", "consulta"):
		t.moveTo(models.StateFAQChoice)
		t.send(m.prompt(t, models.StateFAQChoice)...)
		return true
	}
	return false
}

func (m *Machine) onProductChoice(t *turn) bool {
	p := m.chooseProduct(t)
	if p == nil {
		return false
	}
	m.startProduct(t, p)
	return true
}

func (m *Machine) onFAQChoice(t *turn) bool {
	var topic, answer string
	if n, err := strconv.Atoi(strings.TrimSpace(t.text)); err == nil && n >= 1 && n <= len(t.snap.FAQ.Topics) {
		topic = t.snap.FAQ.Topics[n-1].Key
		a, ok := m.matcher.TopicAnswer(t.snap, topic, nil)
		if !ok {
			return false
		}
		answer = a
	} else {
		var ok bool
		if topic, answer, ok = m.matcher.Answer(t.snap, t.text, nil); !ok {
			return false
		}
	}
	metrics.RecordFAQAnswer(topic)
	t.send(models.Text(answer))
	t.send(models.Text("Si tienes otra consulta, escríbeme cuando quieras. 😊").After(pauseShort))
	t.end()
	return true
}

func (m *Machine) onOccasion(t *turn) bool {
	var opener string
	switch {
	case t.in.Payload == ButtonOccasionGift || m.matcher.HasWord(t.text, giftWords...):
		t.session.Occasion = models.OccasionGift
		opener = "¡Qué lindo detalle! 🎁 Será un regalo inolvidable."
	case t.in.Payload == ButtonOccasionSelf || isSelfAnswer(m.matcher, t.text):
		t.session.Occasion = models.OccasionSelf
		opener = "¡Maravillosa elección! ✨ Te lo mereces."
	default:
		if _, _, ok := m.matcher.Answer(t.snap, t.text, t.session); ok {
			return false
		}
		opener = "¡Excelente! ✨"
	}

	p := t.product
	if p.Images.Packaging != "" {
		t.send(models.Image(p.Images.Packaging))
	}
	material := p.Details.Material
	if material == "" {
		material = "material de alta calidad"
	}
	magic := p.Details.Magic
	if magic == "" {
		magic = "Su piedra central es termocromática, cambia de color con tu temperatura."
	}
	packaging := p.Details.Packaging
	if packaging == "" {
		packaging = "viene en una hermosa caja de regalo"
	}
	t.send(models.Text(fmt.Sprintf("%s El *%s* es pura energía. Aquí tienes todos los detalles:\n\n"+
		"💎 *Material:* %s ¡Hipoalergénico y no se oscurece!\n"+
		"🔮 *La Magia:* %s\n"+
		"🎁 *Presentación:* %s", opener, p.Name, material, magic, packaging)).After(pauseShort))
	t.send(models.Text(fmt.Sprintf("Para tu total seguridad, somos %s, un negocio formal con *RUC %s*. ¡Tu compra es 100%% segura! 🇵🇪",
		t.snap.Business.Brand, t.snap.Business.RUC)).After(pauseLong))
	t.moveTo(models.StatePurchaseDecision)
	t.send(m.prompt(t, models.StatePurchaseDecision)...)
	return true
}

// isSelfAnswer accepts "para mí" only when "mi" closes the answer, so
// "para mi novio" is not read as a purchase for oneself.
func isSelfAnswer(m *Matcher, text string) bool {
	if m.HasWord(text, selfWords...) {
		return true
	}
	ws := words(text)
	return len(ws) > 0 && ws[len(ws)-1] == "mi"
}

func (m *Machine) onPurchaseDecision(t *turn) bool {
	switch {
	case m.matcher.IsYes(t.text):
		upsell := t.snap.Campaign.Upsell
		if !upsell.Active {
			t.session.IsUpsell = false
			t.moveTo(models.StateLocation)
			t.send(models.Text("¡Excelente elección! ✨"))
			t.send(m.prompt(t, models.StateLocation)...)
			return true
		}
		if t.product.Images.Upsell != "" {
			t.send(models.Image(t.product.Images.Upsell))
		}
		t.send(models.Text(upsell.Pitch).After(pauseShort))
		t.moveTo(models.StateUpsellDecision)
		t.send(m.prompt(t, models.StateUpsellDecision)...)
		return true
	case m.matcher.IsNo(t.text):
		t.send(models.Text("Entendido. Si cambias de opinión, aquí estaré. ¡Que tengas un buen día! 😊"))
		t.end()
		return true
	}
	return false
}

func (m *Machine) onUpsellDecision(t *turn) bool {
	upsell := t.snap.Campaign.Upsell
	switch {
	case t.in.Payload == ButtonUpsellOffer || containsAny(t.text, []string{"oferta"}):
		if upsell.Active {
			t.session.ProductName = upsell.Name
			t.session.ProductPrice = upsell.Price
			t.session.IsUpsell = true
			t.send(models.Text("¡Genial! Has elegido la oferta. ✨"))
		} else {
			t.session.IsUpsell = false
			t.send(models.Text("¡Perfecto! Continuamos con tu collar individual. ✨"))
		}
	case t.in.Payload == ButtonUpsellSingle || containsAny(t.text, singleWords):
		t.session.IsUpsell = false
		t.send(models.Text("¡Perfecto! Continuamos con tu collar individual. ✨"))
	default:
		return false
	}
	t.moveTo(models.StateLocation)
	for _, msg := range m.prompt(t, models.StateLocation) {
		t.send(msg.After(pauseShort))
	}
	return true
}

func (m *Machine) onLocation(t *turn) bool {
	switch {
	case t.in.Payload == ButtonLocationLima || m.matcher.HasWord(t.text, "lima"):
		t.session.Province = "Lima"
		t.moveTo(models.StateLimaDistrict)
	case t.in.Payload == ButtonLocationProv || m.matcher.HasWord(t.text, "provincia", "provincias"):
		t.moveTo(models.StateProvinceDistrict)
	default:
		return false
	}
	t.send(m.prompt(t, t.session.State)...)
	return true
}

func (m *Machine) onLimaDistrict(t *turn) {
	district, coverage := NewDistrictResolver(t.snap.Rules).NormalizeAndCheck(t.text)
	switch coverage {
	case WithCoverage:
		s := t.session
		s.District = district
		s.ShippingType = models.ShippingLimaDelivery
		s.PaymentMethod = models.PaymentCashOnDelivery
		t.moveTo(models.StateDeliveryDetails)
		t.send(models.Text("¡Excelente! Tenemos cobertura en *" + district + "*. 🏙️"))
		t.send(m.prompt(t, models.StateDeliveryDetails)...)
	case WithoutCoverage:
		t.session.District = district
		m.offerShalom(t, district)
	default:
		t.send(models.Text(msgDistrictUnknown))
		t.save()
	}
}

func (m *Machine) onProvinceDistrict(t *turn) {
	province, district := ParseProvinceDistrict(t.text)
	if province == "" {
		t.send(m.prompt(t, models.StateProvinceDistrict)...)
		t.save()
		return
	}
	t.session.Province = province
	t.session.District = district
	m.offerShalom(t, district)
}

// offerShalom moves the order to agency pickup with a deposit.
func (m *Machine) offerShalom(t *turn, place string) {
	s := t.session
	if s.Province == "Lima" {
		s.ShippingType = models.ShippingLimaShalom
	} else {
		s.ShippingType = models.ShippingProvinceShalom
	}
	s.PaymentMethod = models.PaymentDepositBalance
	deposit := t.snap.Deposit(s.ShippingType, s.ProductPrice)
	t.moveTo(models.StateShalomAgreement)
	t.send(models.Text(fmt.Sprintf("Entendido. ✅ Para *%s*, los envíos son por agencia *Shalom* y requieren un adelanto de *%s* como compromiso de recojo. 🤝",
		place, formatSoles(deposit))))
	t.send(m.prompt(t, models.StateShalomAgreement)...)
}

func (m *Machine) onDetails(t *turn) {
	if t.in.Kind == models.KindImage {
		t.send(models.Text(msgDetailsAsText))
		t.save()
		return
	}
	s := t.session
	s.CustomerDetails = strings.TrimSpace(t.in.Payload)
	t.moveTo(models.StateFinalConfirmation)
	t.send(models.Text(fmt.Sprintf("¡Gracias! Revisa que todo esté correcto:\n\n"+
		"*Resumen del Pedido*\n"+
		"💎 %s\n"+
		"💵 Total: %s\n"+
		"🚚 Envío: *%s* - ¡Gratis!\n"+
		"💳 Pago: %s\n\n"+
		"*Datos de Entrega*\n"+
		"%s", s.ProductName, formatSoles(s.ProductPrice), s.ShippingLabel(), s.PaymentMethod, s.CustomerDetails)))
	t.send(m.prompt(t, models.StateFinalConfirmation)...)
}

func (m *Machine) onShalomAgreement(t *turn) bool {
	switch {
	case m.matcher.IsYes(t.text):
		t.moveTo(models.StateShalomExperience)
		t.send(models.Text("¡Genial! Para hacer el proceso más fácil, cuéntame:"))
		t.send(m.prompt(t, models.StateShalomExperience)...)
		return true
	case m.matcher.IsNo(t.text):
		t.send(models.Text("Comprendo. Si cambias de opinión, aquí estaré. ¡Gracias! 😊"))
		t.end()
		return true
	}
	return false
}

func (m *Machine) onShalomExperience(t *turn) bool {
	switch {
	case m.matcher.IsYes(t.text):
		t.moveTo(models.StateShalomDetails)
		t.send(models.Text("¡Excelente! Entonces ya conoces el proceso. ✅"))
		t.send(m.prompt(t, models.StateShalomDetails)...)
		return true
	case m.matcher.IsNo(t.text):
		t.moveTo(models.StateShalomAgencyKnowledge)
		t.send(models.Text("¡No te preocupes! Te explico: Shalom es una empresa de envíos. Te damos un código de seguimiento, y cuando tu pedido llega a la agencia, nos yapeas el saldo restante. Apenas confirmemos, te damos la clave secreta para el recojo. ¡Es 100% seguro! 🔒"))
		t.send(m.prompt(t, models.StateShalomAgencyKnowledge)...)
		return true
	}
	return false
}

func (m *Machine) onAgencyKnowledge(t *turn) bool {
	switch {
	case m.matcher.IsYes(t.text):
		t.moveTo(models.StateShalomDetails)
		t.send(models.Text("¡Perfecto! Por favor, bríndame en un solo mensaje tu *Nombre Completo, DNI* y la *dirección de esa agencia Shalom*. ✍🏽\n\n📝 *Ej: Carlos Ruiz, 87654321, Jr. Gamarra 456, Trujillo.*"))
		return true
	case m.matcher.IsNo(t.text):
		t.send(models.Text("Entiendo. 😔 Te recomiendo buscar en Google 'Shalom agencias' para encontrar la más cercana. ¡Gracias por tu interés!"))
		t.end()
		return true
	}
	return false
}

func (m *Machine) onFinalConfirmation(t *turn) bool {
	s := t.session
	switch {
	case m.matcher.IsYes(t.text):
		s.Deposit = t.snap.Deposit(s.ShippingType, s.ProductPrice)
		if s.ShippingType == models.ShippingLimaDelivery {
			t.moveTo(models.StateLimaPaymentAgreement)
			t.send(models.Text(fmt.Sprintf("¡Perfecto! Tu pedido contra entrega está listo para ser agendado. ✨\n\n"+
				"Nuestras rutas de reparto para %s 🚚 ya se están llenando y tenemos *cupos limitados* ⚠️. Para asegurar tu espacio y priorizar tu entrega, solo solicitamos un adelanto de *%s*.\n\n"+
				"Este pequeño monto confirma tu compromiso y nos permite seguir ofreciendo *envío gratis* a clientes serios como tú. Por supuesto, se descuenta del total.",
				t.snap.DeliveryDay(m.today()), formatSoles(s.Deposit))))
			t.send(m.prompt(t, models.StateLimaPaymentAgreement)...)
			return true
		}
		t.moveTo(models.StateShalomPayment)
		t.send(models.Text(fmt.Sprintf("¡Genial! Puedes realizar el adelanto de *%s* a nuestra cuenta:\n\n"+
			"💳 *YAPE / PLIN:* %s\n"+
			"👤 *Titular:* %s\n"+
			"🔒 Tu compra es 100%% segura (*RUC %s*).\n\n"+
			"Una vez realizado, envíame la *captura de pantalla* para validar tu pedido.",
			formatSoles(s.Deposit), t.snap.Business.YapeNumber, t.snap.Business.YapeHolder, t.snap.Business.RUC)))
		return true
	case m.matcher.IsNo(t.text):
		if s.ShippingType == models.ShippingLimaDelivery {
			t.moveTo(models.StateDeliveryDetails)
		} else {
			t.moveTo(models.StateShalomDetails)
		}
		t.send(models.Text("¡Claro, lo corregimos! 😊 Por favor, envíame nuevamente la información de envío completa en un solo mensaje."))
		return true
	}
	return false
}

func (m *Machine) onLimaPaymentAgreement(t *turn) bool {
	switch {
	case m.matcher.IsYes(t.text):
		t.moveTo(models.StateLimaPayment)
		t.send(models.Text(fmt.Sprintf("¡Genial! Puedes realizar el adelanto de *%s* a:\n\n"+
			"💳 *YAPE / PLIN:* %s\n"+
			"👤 *Titular:* %s\n\n"+
			"Una vez realizado, envíame la *captura de pantalla* para validar.",
			formatSoles(t.session.Deposit), t.snap.Business.YapeNumber, t.snap.Business.YapeHolder)))
		return true
	case m.matcher.IsNo(t.text):
		t.send(models.Text("Entendido. Si cambias de opinión, aquí estaré. ¡Gracias!"))
		t.end()
		return true
	}
	return false
}

func (m *Machine) onPaymentProof(t *turn) bool {
	if t.text != models.TokenPaymentProof {
		return false
	}
	sale, err := m.finalizer.Finalize(t.ctx, t.session)
	if err != nil {
		t.fail(err)
		t.send(models.Text(msgSaleFailed))
		t.save()
		return true
	}
	t.res.Committed = true

	if sale.ShippingType == models.ShippingLimaDelivery {
		day := t.snap.DeliveryDay(m.today())
		t.send(models.Text(fmt.Sprintf("¡Adelanto confirmado, gracias! ✨ Aquí tienes el resumen final de tu pedido y los detalles de la entrega:\n\n"+
			"*Tu Pedido en Detalle:*\n"+
			"💰 Costo Total: %s\n"+
			"✅ Adelanto Recibido: - %s\n"+
			"------------------------------------\n"+
			"💵 *Saldo a Pagar al recibir: %s*\n\n"+
			"*Entrega Programada:*\n"+
			"🗓️ Día: %s\n"+
			"⏰ Horario: %s\n\n"+
			"A continuación, te pediré un último paso para asegurar tu envío.",
			formatSoles(sale.Price), formatSoles(sale.Deposit), formatSoles(sale.Balance), titleCase(day), t.snap.Rules.LimaDeliveryWindow)))
		t.send(models.Text(fmt.Sprintf("¡Ya casi es tuya! 💎\n\n"+
			"Para garantizar una entrega exitosa *%s*, por favor confirma que habrá alguien disponible para recibir tu joya y pagar el saldo 💵.\n\n"+
			"👉 Solo responde *CONFIRMO* y tu pedido quedará asegurado en la ruta. 🚚✨", day)).After(pauseLong))
		t.moveTo(models.StateDeliveryConfirmationLima)
		return true
	}

	leadTime := "3-5 días hábiles"
	if sale.ShippingType == models.ShippingLimaShalom {
		leadTime = "1-2 días hábiles"
	}
	t.send(models.Text(fmt.Sprintf("¡Adelanto confirmado, gracias! ✨ Aquí tienes el resumen final de tu pedido:\n\n"+
		"*Tu Pedido en Detalle:*\n"+
		"💰 Costo Total: %s\n"+
		"✅ Adelanto Recibido: - %s\n"+
		"------------------------------------\n"+
		"💵 *Saldo a Pagar: %s*",
		formatSoles(sale.Price), formatSoles(sale.Deposit), formatSoles(sale.Balance))))
	t.send(models.Text("📝 *Próximos Pasos:*\n\n"+
		"⏳ En las próximas 24h hábiles te enviaremos tu código de seguimiento 📲. El tiempo de entrega en agencia es de *"+leadTime+"* 📦.").After(pauseLong))
	t.end()
	return true
}

func (m *Machine) onDeliveryConfirmation(t *turn) bool {
	if t.in.Payload != ButtonConfirmRoute && !containsAny(t.text, []string{"confirmo"}) {
		return false
	}
	t.send(models.Text("¡Listo! ✅ Tu pedido ha sido *confirmado en la ruta* 🚚.\n\n" +
		"De parte de todo el equipo de *" + t.snap.Business.Brand + "*, ¡muchas gracias por tu compra! 🎉😊"))
	t.end()
	return true
}
