package models

// HearingAid is one row of the device catalog. Attribute columns are
// nullable: an unset attribute must not exclude the device from negative
// filters.
type HearingAid struct {
	ID            int64   `db:"id" json:"id"`
	Manufacturer  string  `db:"manufacturer" json:"manufacturer"`
	Model         string  `db:"model" json:"model"`
	Style         *string `db:"style" json:"style,omitempty"`
	BatteryType   *string `db:"battery_type" json:"battery_type,omitempty"`
	PowerLevel    *string `db:"power_level" json:"power_level,omitempty"`
	Bluetooth     *string `db:"bluetooth" json:"bluetooth,omitempty"`
	PriceCategory *string `db:"price_category" json:"price_category,omitempty"`
}
