package models

// State is the position of a session in the sales funnel.
type State string

const (
	StateMenuChoice               State = "awaiting_menu_choice"
	StateProductChoice            State = "awaiting_product_choice"
	StateFAQChoice                State = "awaiting_faq_choice"
	StateOccasionResponse         State = "awaiting_occasion_response"
	StatePurchaseDecision         State = "awaiting_purchase_decision"
	StateUpsellDecision           State = "awaiting_upsell_decision"
	StateLocation                 State = "awaiting_location"
	StateLimaDistrict             State = "awaiting_lima_district"
	StateProvinceDistrict         State = "awaiting_province_district"
	StateDeliveryDetails          State = "awaiting_delivery_details"
	StateShalomAgreement          State = "awaiting_shalom_agreement"
	StateShalomExperience         State = "awaiting_shalom_experience"
	StateShalomAgencyKnowledge    State = "awaiting_shalom_agency_knowledge"
	StateShalomDetails            State = "awaiting_shalom_details"
	StateFinalConfirmation        State = "awaiting_final_confirmation"
	StateLimaPaymentAgreement     State = "awaiting_lima_payment_agreement"
	StateLimaPayment              State = "awaiting_lima_payment"
	StateShalomPayment            State = "awaiting_shalom_payment"
	StateDeliveryConfirmationLima State = "awaiting_delivery_confirmation_lima"
)

// AllStates lists every known state in funnel order.
var AllStates = []State{
	StateMenuChoice,
	StateProductChoice,
	StateFAQChoice,
	StateOccasionResponse,
	StatePurchaseDecision,
	StateUpsellDecision,
	StateLocation,
	StateLimaDistrict,
	StateProvinceDistrict,
	StateDeliveryDetails,
	StateShalomAgreement,
	StateShalomExperience,
	StateShalomAgencyKnowledge,
	StateShalomDetails,
	StateFinalConfirmation,
	StateLimaPaymentAgreement,
	StateLimaPayment,
	StateShalomPayment,
	StateDeliveryConfirmationLima,
}

// Known reports whether s is one of the declared states.
func (s State) Known() bool {
	for _, k := range AllStates {
		if k == s {
			return true
		}
	}
	return false
}

// FreeText reports whether the state consumes arbitrary text as its payload.
func (s State) FreeText() bool {
	switch s {
	case StateLimaDistrict, StateProvinceDistrict, StateDeliveryDetails, StateShalomDetails:
		return true
	}
	return false
}

// AwaitsPaymentProof reports whether an image in this state is a payment receipt.
func (s State) AwaitsPaymentProof() bool {
	return s == StateLimaPayment || s == StateShalomPayment
}

// NeedsProduct reports whether handling the state requires a resolvable product.
func (s State) NeedsProduct() bool {
	switch s {
	case StateMenuChoice, StateProductChoice, StateFAQChoice:
		return false
	}
	return true
}
