package models

// BusinessRules are the shipping rules of the store.
type BusinessRules struct {
	DepositShalom         float64            `json:"adelanto_shalom" yaml:"adelanto_shalom"`
	DepositLimaDelivery   float64            `json:"adelanto_lima_delivery" yaml:"adelanto_lima_delivery"`
	CoverageDistricts     []string           `json:"distritos_cobertura_delivery" yaml:"distritos_cobertura_delivery"`
	AllDistricts          []string           `json:"distritos_lima_total" yaml:"distritos_lima_total"`
	DistrictAbbreviations OrderedMap[string] `json:"abreviaturas_distritos" yaml:"abreviaturas_distritos"`
	WeekdayDeliveryDay    string             `json:"mensaje_dia_habil" yaml:"mensaje_dia_habil"`
	WeekendDeliveryDay    string             `json:"mensaje_fin_de_semana" yaml:"mensaje_fin_de_semana"`
	LimaDeliveryWindow    string             `json:"horario_entrega_lima" yaml:"horario_entrega_lima"`
}

// BusinessData identifies the business towards customers.
type BusinessData struct {
	Brand      string `json:"marca" yaml:"marca"`
	RUC        string `json:"ruc" yaml:"ruc"`
	YapeHolder string `json:"titular_yape" yaml:"titular_yape"`
	YapeNumber string `json:"yape_numero" yaml:"yape_numero"`
}

// FAQ maps topics to trigger keywords and canned answers. Keyword topics
// are tried in document order.
type FAQ struct {
	Keywords  OrderedMap[[]string] `json:"palabras_clave" yaml:"palabras_clave"`
	Responses map[string]string    `json:"respuestas" yaml:"respuestas"`
	Topics    []FAQTopic           `json:"temas_menu" yaml:"temas_menu"`
}

// FAQTopic is an entry of the FAQ menu.
type FAQTopic struct {
	Key   string `json:"clave" yaml:"clave"`
	Title string `json:"titulo" yaml:"titulo"`
}

// Campaign describes the advertised product and its upsell.
type Campaign struct {
	ProductID string   `json:"producto_id" yaml:"producto_id"`
	Phrases   []string `json:"frases" yaml:"frases"`
	Keywords  []string `json:"palabras_clave" yaml:"palabras_clave"`
	Upsell    Upsell   `json:"upsell" yaml:"upsell"`
}

// Upsell replaces the single item with a bundle when accepted.
type Upsell struct {
	Active bool    `json:"activo" yaml:"activo"`
	Name   string  `json:"nombre" yaml:"nombre"`
	Price  float64 `json:"precio" yaml:"precio"`
	Pitch  string  `json:"mensaje" yaml:"mensaje"`
}
