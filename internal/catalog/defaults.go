package catalog

import "github.com/daaqui-joyas/salesbot/internal/models"

// CampaignProductID is the product advertised when no campaign is configured.
const CampaignProductID = "collar-girasol-radiant-01"

// Default deposits in soles.
const (
	DefaultDepositLimaDelivery = 10.0
	DefaultDepositShalom       = 20.0
)

// DefaultRules are used when the shipping rules document is missing.
func DefaultRules() models.BusinessRules {
	return models.BusinessRules{
		DepositShalom:       DefaultDepositShalom,
		DepositLimaDelivery: DefaultDepositLimaDelivery,
		CoverageDistricts: []string{
			"Miraflores", "San Isidro", "Surquillo", "San Borja", "Santiago de Surco",
			"Barranco", "Chorrillos", "Lince", "Jesús María", "Magdalena del Mar",
			"Pueblo Libre", "San Miguel", "La Victoria", "Breña", "Cercado de Lima",
			"Rímac", "San Luis", "Ate", "Santa Anita", "La Molina",
			"Los Olivos", "Independencia", "San Martín de Porres", "Comas",
			"San Juan de Lurigancho", "El Agustino", "San Juan de Miraflores",
			"Villa María del Triunfo", "Villa El Salvador",
		},
		AllDistricts: []string{
			"Miraflores", "San Isidro", "Surquillo", "San Borja", "Santiago de Surco",
			"Barranco", "Chorrillos", "Lince", "Jesús María", "Magdalena del Mar",
			"Pueblo Libre", "San Miguel", "La Victoria", "Breña", "Cercado de Lima",
			"Rímac", "San Luis", "Ate", "Santa Anita", "La Molina",
			"Los Olivos", "Independencia", "San Martín de Porres", "Comas",
			"San Juan de Lurigancho", "El Agustino", "San Juan de Miraflores",
			"Villa María del Triunfo", "Villa El Salvador", "Carabayllo", "Puente Piedra",
			"Ancón", "Santa Rosa", "Lurigancho", "Chaclacayo", "Cieneguilla",
			"Pachacámac", "Lurín", "Punta Hermosa", "Punta Negra", "San Bartolo",
			"Santa María del Mar", "Pucusana", "Callao", "Bellavista", "La Perla",
			"La Punta", "Carmen de la Legua", "Ventanilla", "Mi Perú",
		},
		DistrictAbbreviations: models.OrderedMap[string]{
			{Key: "sjl", Value: "San Juan de Lurigancho"},
			{Key: "sjm", Value: "San Juan de Miraflores"},
			{Key: "smp", Value: "San Martín de Porres"},
			{Key: "vmt", Value: "Villa María del Triunfo"},
			{Key: "ves", Value: "Villa El Salvador"},
			{Key: "surco", Value: "Santiago de Surco"},
			{Key: "magdalena", Value: "Magdalena del Mar"},
			{Key: "cercado", Value: "Cercado de Lima"},
		},
		WeekdayDeliveryDay: "mañana",
		WeekendDeliveryDay: "el Lunes",
		LimaDeliveryWindow: "durante el día",
	}
}

// DefaultBusinessData is used when the business data document is missing.
func DefaultBusinessData() models.BusinessData {
	return models.BusinessData{
		Brand:      "Daaqui Joyas",
		RUC:        "RUC_NO_CONFIGURADO",
		YapeHolder: "TITULAR_NO_CONFIGURADO",
		YapeNumber: "YAPE_NO_CONFIGURADO",
	}
}

// DefaultFAQ is used when the FAQ document is missing.
func DefaultFAQ() models.FAQ {
	return models.FAQ{
		Keywords: models.OrderedMap[[]string]{
			{Key: "precio", Value: []string{"precio", "valor", "costo"}},
			{Key: "envio", Value: []string{"envío", "envio", "delivery", "mandan", "entrega", "cuesta el envío"}},
			{Key: "pago", Value: []string{"pago", "métodos de pago", "contraentrega", "contra entrega", "yape", "plin"}},
			{Key: "tienda", Value: []string{"tienda", "local", "ubicación", "ubicacion", "dirección", "direccion"}},
			{Key: "transferencia", Value: []string{"transferencia", "banco", "bcp", "interbank", "cuenta", "transferir"}},
			{Key: "material", Value: []string{"material", "acero", "alergia", "hipoalergenico"}},
			{Key: "cuidados", Value: []string{"mojar", "agua", "oxida", "negro", "cuidar", "limpiar", "cuidados"}},
			{Key: "garantia", Value: []string{"garantía", "garantia", "falla", "defectuoso", "roto"}},
			{Key: "cambios_devoluciones", Value: []string{"cambio", "cambiar", "devolución", "devoluciones", "devuelvo"}},
			{Key: "stock", Value: []string{"stock", "disponible", "tienen", "hay", "unidades"}},
		},
		Responses: map[string]string{
			"precio":               "Nuestro *Collar Mágico Girasol Radiant* está por campaña a *S/ 69.00*, ¡con envío gratis a todo el Perú! 🚚",
			"envio":                "¡Enviamos a todo el Perú! 🚚 En Lima tenemos delivery contra entrega en distritos con cobertura y, para el resto del país, enviamos por agencia *Shalom*.",
			"pago":                 "Aceptamos *Yape*, *Plin* y efectivo contra entrega en Lima. Para envíos por agencia Shalom se paga un adelanto y el saldo al llegar tu pedido. 💳",
			"tienda":               "Por ahora somos una tienda *100% online* 🛍️, así que te enviamos tu joya hasta tu casa o agencia más cercana.",
			"transferencia":        "Por el momento trabajamos con *Yape* y *Plin*, que son inmediatos y seguros. 💳",
			"material":             "Nuestras joyas son de *acero inoxidable quirúrgico* 💎: hipoalergénicas, no se oscurecen y no causan alergia.",
			"cuidados":             "¡Puedes usarla tranquila! ✨ El acero inoxidable no se oxida ni se pone negro. Para que dure más, evita perfumes directos y guárdala en su cajita.",
			"garantia":             "Todas nuestras joyas tienen *garantía* 🛡️. Si llega con alguna falla, escríbenos y lo solucionamos.",
			"cambios_devoluciones": "Si tu joya llega con algún defecto, la cambiamos sin costo. 🔄 Solo avísanos dentro de las 48 horas de recibida.",
			"stock":                "¡Sí, tenemos unidades disponibles! ✨ Escribe *girasol* para conocer nuestro collar estrella.",
		},
		Topics: []models.FAQTopic{
			{Key: "precio", Title: "Precio"},
			{Key: "envio", Title: "Envíos"},
			{Key: "pago", Title: "Métodos de pago"},
			{Key: "material", Title: "Material"},
			{Key: "cuidados", Title: "Cuidados"},
			{Key: "garantia", Title: "Garantía"},
		},
	}
}

// DefaultCampaign is used when the campaign document is missing.
func DefaultCampaign() models.Campaign {
	return models.Campaign{
		ProductID: CampaignProductID,
		Phrases: []string{
			"hola, quiero más información del collar girasol",
			"quiero información del collar mágico",
		},
		Keywords: []string{"girasol", "radiant", "precio", "cambia de color"},
		Upsell:   DefaultUpsell(),
	}
}

// DefaultUpsell is the two-necklace bundle offered after the purchase decision.
func DefaultUpsell() models.Upsell {
	return models.Upsell{
		Active: true,
		Name:   "Oferta 2x Collares Mágicos + Cadenas",
		Price:  99.00,
		Pitch: "¡Excelente elección! Pero espera... por decidir llevar tu collar, ¡acabas de desbloquear una oferta exclusiva! ✨\n\n" +
			"Añade un segundo Collar Mágico y te incluimos de regalo dos cadenas de diseño italiano.\n\n" +
			"Tu pedido se ampliaría a:\n" +
			"✨ 2 Collares Mágicos\n🎁 2 Cadenas de Regalo\n🎀 2 Cajitas Premium\n" +
			"💎 Todo por un único pago de S/ 99.00",
	}
}
