package models

// DefaultTaxRate applies when no settings record exists.
const DefaultTaxRate = 0.05

// PaymentMethods enables or disables each payment option at checkout.
type PaymentMethods struct {
	Cash        bool `json:"cash"`
	MobileMoney bool `json:"mobileMoney"`
}

// AppSettings is the venue-wide singleton. ID is empty when defaults are in effect.
type AppSettings struct {
	ID             string         `json:"id,omitempty"`
	TaxRate        float64        `json:"taxRate"`
	PaymentMethods PaymentMethods `json:"paymentMethods"`
}

func DefaultSettings() AppSettings {
	return AppSettings{
		TaxRate:        DefaultTaxRate,
		PaymentMethods: PaymentMethods{Cash: true, MobileMoney: true},
	}
}

// Allows reports whether the payment method is enabled.
func (s AppSettings) Allows(pm PaymentMethod) bool {
	switch pm {
	case PaymentCash:
		return s.PaymentMethods.Cash
	case PaymentMobileMoney:
		return s.PaymentMethods.MobileMoney
	}
	return false
}

// ClampTaxRate limits a rate to [0,1].
func ClampTaxRate(rate float64) float64 {
	if rate < 0 {
		return 0
	}
	if rate > 1 {
		return 1
	}
	return rate
}
